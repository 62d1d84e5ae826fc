// Package domain 定义了聊天室后端使用的数据结构 (数据库模型)。
package domain

import "time"

// Participant 表示当前在聊天室内的一个参与者。
// Name 即身份标识：同一时间每个名字最多只有一条记录。
type Participant struct {
	Name         string    `gorm:"primaryKey;size:191" json:"name"` // 参与者昵称 (主键，大小写敏感)
	LastActivity time.Time `gorm:"index;not null" json:"lastStatus"` // 最后一次活跃时间 (DATETIME(3)，毫秒精度，心跳时更新)
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"-"`          // 加入时间 (GORM 自动填充)
}
