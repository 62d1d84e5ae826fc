package domain

import "time"

// Everyone 是广播收件人的保留标识，status 通知和公开消息都发给它。
const Everyone = "everyone"

// 消息类型。客户端只能发送 broadcast/private 两种，
// status 由系统在参与者进出聊天室时生成。
const (
	KindBroadcast = "broadcast-message"
	KindPrivate   = "private-message"
	KindStatus    = "status"
)

// Message 表示消息日志中的一条记录。
// 主键自增，因此 ID 顺序即插入顺序，也就是聊天时间线的展示顺序。
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`            // 消息唯一标识符 (主键，自增)
	From      string    `gorm:"size:191;index;not null" json:"from"` // 发送者昵称 (status 消息为相关参与者的名字)
	To        string    `gorm:"size:191;index;not null" json:"to"`   // 收件人昵称，或广播目标 "everyone"
	Text      string    `gorm:"type:text;not null" json:"text"`      // 消息正文 (入库前已去除 HTML 并 trim)
	Kind      string    `gorm:"size:32;not null" json:"type"`        // 消息类型，见上方常量
	Time      string    `gorm:"size:16;not null" json:"time"`        // 追加时刻的格式化时间 "HH:MM:SS"，之后不可变
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"-"`       // 记录创建时间 (仅用于审计)
}

// ValidKind 判断 kind 是否为客户端允许发送的消息类型。
// status 不在其中：它只能由系统路径写入。
func ValidKind(kind string) bool {
	return kind == KindBroadcast || kind == KindPrivate
}

// VisibleTo 判断消息对请求者 requester 是否可见。
// 广播和 status 对所有人可见；私信只有发送者和收件人可见。
// 该规则在读取时逐条求值，不是存储属性。
func (m Message) VisibleTo(requester string) bool {
	if m.Kind == KindBroadcast || m.Kind == KindStatus {
		return true
	}
	return m.From == requester || m.To == requester
}
