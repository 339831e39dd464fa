package model

// Rating 课程评分表 — 对应 ratings
// 每个学生对每门课程最多一条评分，重复评分走 upsert 覆盖
type Rating struct {
	RatingID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rating_id"`
	StudentID string `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID  string `gorm:"type:uuid;not null"                             json:"course_id"`
	Score     int    `gorm:"type:smallint;not null"                         json:"score"` // 1-5
	Review    string `gorm:"type:text;not null;default:''"                  json:"review"`
	BaseModel

	// 关联
	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

// TableName 指定表名
func (Rating) TableName() string { return "ratings" }
