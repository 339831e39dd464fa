package model

import "time"

// 资料访问动作
const (
	AccessActionView     = "view"
	AccessActionDownload = "download"
)

// MaterialAccess 资料访问记录表 — 对应 material_accesses
// 每 (UserID, MaterialID) 一行，每次查看/下载 upsert 并累加计数
type MaterialAccess struct {
	AccessID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"access_id"`
	UserID        string    `gorm:"type:uuid;not null"                             json:"user_id"`
	MaterialID    string    `gorm:"type:uuid;not null"                             json:"material_id"`
	ViewCount     int       `gorm:"not null;default:0"                             json:"view_count"`
	DownloadCount int       `gorm:"not null;default:0"                             json:"download_count"`
	LastAction    string    `gorm:"type:varchar(10);not null;default:'view'"       json:"last_action"` // view | download
	LastAccessAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"last_access_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (MaterialAccess) TableName() string { return "material_accesses" }
