package model

// Category 课程分类表 — 对应 categories
type Category struct {
	CategoryID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"category_id"`
	Name        string `gorm:"type:varchar(100);not null;unique"              json:"name"`
	Description string `gorm:"type:text;not null;default:''"                  json:"description"`
	BaseModel
}

// TableName 指定表名
func (Category) TableName() string { return "categories" }
