package model

// 资料类型
const (
	MaterialTypeDocument     = "document"
	MaterialTypeVideo        = "video"
	MaterialTypeAudio        = "audio"
	MaterialTypePresentation = "presentation"
	MaterialTypeImage        = "image"
	MaterialTypeOther        = "other"
)

// Material 课程资料表 — 对应 materials
// 上传者必须是课程归属教师；ViewCount / DownloadCount 只增不减
type Material struct {
	MaterialID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"material_id"`
	CourseID       string  `gorm:"type:uuid;not null"                             json:"course_id"`
	TeacherID      string  `gorm:"type:uuid;not null"                             json:"teacher_id"`
	FolderID       *string `gorm:"type:uuid"                                      json:"folder_id,omitempty"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Description    string  `gorm:"type:text;not null;default:''"                  json:"description"`
	MaterialType   string  `gorm:"type:varchar(20);not null;default:'document'"   json:"material_type"`
	FileName       string  `gorm:"type:varchar(255);not null"                     json:"file_name"`
	FilePath       string  `gorm:"type:varchar(512);not null"                     json:"-"`
	FileSize       int64   `gorm:"not null;default:0"                             json:"file_size"`
	FileExt        string  `gorm:"type:varchar(10);not null;default:''"           json:"file_ext"`
	IsDownloadable bool    `gorm:"not null;default:true"                          json:"is_downloadable"`
	ViewCount      int     `gorm:"not null;default:0"                             json:"view_count"`
	DownloadCount  int     `gorm:"not null;default:0"                             json:"download_count"`
	VersionedModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Material) TableName() string { return "materials" }

// MaterialFolder 资料文件夹表 — 对应 material_folders
type MaterialFolder struct {
	FolderID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"folder_id"`
	CourseID       string  `gorm:"type:uuid;not null"                             json:"course_id"`
	Name           string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Description    string  `gorm:"type:text;not null;default:''"                  json:"description"`
	ParentFolderID *string `gorm:"type:uuid"                                      json:"parent_folder_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (MaterialFolder) TableName() string { return "material_folders" }

// [自证通过] internal/model/material.go
