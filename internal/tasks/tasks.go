package tasks

import "encoding/json"

// 定义任务类型常量
const (
	// TypePresenceSweep 周期性的空闲参与者清扫任务
	TypePresenceSweep = "presence:sweep"
)

// PresenceSweepPayload 是清扫任务的载荷。
// 空闲判定的 cutoff 在执行时刻计算 (now - 空闲阈值)，不随任务入队，
// 否则排队延迟会把陈旧的 cutoff 带进执行。
type PresenceSweepPayload struct{}

// NewPresenceSweepTask 序列化清扫任务的载荷。
func NewPresenceSweepTask() ([]byte, error) {
	return json.Marshal(PresenceSweepPayload{})
}
