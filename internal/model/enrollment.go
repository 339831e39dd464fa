package model

import "time"

// Enrollment 选课记录表 — 对应 enrollments
// (StudentID, CourseID) 唯一约束由数据库兜底
type Enrollment struct {
	EnrollmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID    string     `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID     string     `gorm:"type:uuid;not null"                             json:"course_id"`
	EnrolledAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"enrolled_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	BaseModel

	// 关联
	Student *User   `gorm:"foreignKey:StudentID;references:UserID"   json:"student,omitempty"`
	Course  *Course `gorm:"foreignKey:CourseID;references:CourseID"  json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
