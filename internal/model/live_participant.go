package model

import "time"

// LiveParticipant 直播参与记录表 — 对应 live_participants
// LeftAt 为空表示"在场"；部分唯一索引保证同一用户同一课次最多一条在场记录
type LiveParticipant struct {
	ParticipantID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participant_id"`
	SessionID     string     `gorm:"type:uuid;not null"                             json:"session_id"`
	UserID        string     `gorm:"type:uuid;not null"                             json:"user_id"`
	JoinedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"joined_at"`
	LeftAt        *time.Time `json:"left_at,omitempty"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (LiveParticipant) TableName() string { return "live_participants" }

// IsOpen 判断参与记录是否仍在场
func (p *LiveParticipant) IsOpen() bool { return p.LeftAt == nil }
