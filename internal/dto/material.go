package dto

// ── 资料模块 DTO ──

// CreateFolderRequest 创建资料文件夹请求
type CreateFolderRequest struct {
	Name           string  `json:"name"             binding:"required,min=1,max=100"`
	Description    string  `json:"description"      binding:"omitempty"`
	ParentFolderID *string `json:"parent_folder_id" binding:"omitempty,uuid"`
}

// FolderResponse 文件夹响应
type FolderResponse struct {
	ID             string  `json:"id"`
	CourseID       string  `json:"course_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	ParentFolderID *string `json:"parent_folder_id,omitempty"`
}

// UploadMaterialRequest 上传资料的表单字段（文件本体走 multipart）
type UploadMaterialRequest struct {
	Title          string  `form:"title"           binding:"required,min=1,max=200"`
	Description    string  `form:"description"     binding:"omitempty"`
	MaterialType   string  `form:"material_type"   binding:"omitempty,oneof=document video audio presentation image other"`
	FolderID       *string `form:"folder_id"       binding:"omitempty,uuid"`
	IsDownloadable *bool   `form:"is_downloadable" binding:"omitempty"`
}

// MaterialResponse 资料响应
type MaterialResponse struct {
	ID             string `json:"id"`
	CourseID       string `json:"course_id"`
	FolderID       string `json:"folder_id,omitempty"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	MaterialType   string `json:"material_type"`
	FileName       string `json:"file_name"`
	FileSize       int64  `json:"file_size"`
	FileExt        string `json:"file_ext"`
	IsDownloadable bool   `json:"is_downloadable"`
	ViewCount      int    `json:"view_count"`
	DownloadCount  int    `json:"download_count"`
	CreatedAt      string `json:"created_at"`
}

// DownloadLinkResponse 时效性下载链接响应
type DownloadLinkResponse struct {
	DownloadURL string `json:"download_url"`
	ExpiresIn   int    `json:"expires_in"` // 秒
}

// MaterialStatsResponse 资料访问统计响应（教师/管理员）
type MaterialStatsResponse struct {
	MaterialID     string               `json:"material_id"`
	TotalViews     int                  `json:"total_views"`
	TotalDownloads int                  `json:"total_downloads"`
	Accesses       []MaterialAccessItem `json:"accesses"`
}

// MaterialAccessItem 单个用户的访问统计
type MaterialAccessItem struct {
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name,omitempty"`
	ViewCount     int    `json:"view_count"`
	DownloadCount int    `json:"download_count"`
	LastAction    string `json:"last_action"`
	LastAccessAt  string `json:"last_access_at"`
}
