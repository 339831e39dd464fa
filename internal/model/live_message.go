package model

import "time"

// LiveMessage 直播聊天消息表 — 对应 live_messages
// 追加写入、不可编辑；BIGSERIAL 主键用于同一时刻消息的稳定排序
type LiveMessage struct {
	MessageID int64     `gorm:"primaryKey;autoIncrement"           json:"message_id"`
	SessionID string    `gorm:"type:uuid;not null"                 json:"session_id"`
	SenderID  string    `gorm:"type:uuid;not null"                 json:"sender_id"`
	Content   string    `gorm:"type:text;not null"                 json:"content"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// 关联
	Sender *User `gorm:"foreignKey:SenderID;references:UserID" json:"sender,omitempty"`
}

// TableName 指定表名
func (LiveMessage) TableName() string { return "live_messages" }
