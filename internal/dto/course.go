package dto

// ── 课程分类 DTO ──

// CategoryRequest 创建/更新分类请求
type CategoryRequest struct {
	Name        string `json:"name"        binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty"`
}

// CategoryResponse 分类响应
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ── 课程 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title            string `json:"title"             binding:"required,min=1,max=200"`
	Description      string `json:"description"       binding:"omitempty"`
	ShortDescription string `json:"short_description" binding:"omitempty,max=300"`
	CategoryID       string `json:"category_id"       binding:"required,uuid"`
	Difficulty       string `json:"difficulty"        binding:"omitempty,oneof=beginner intermediate advanced"`
	Capacity         *int   `json:"capacity"          binding:"omitempty,min=1"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Title            *string `json:"title"             binding:"omitempty,min=1,max=200"`
	Description      *string `json:"description"       binding:"omitempty"`
	ShortDescription *string `json:"short_description" binding:"omitempty,max=300"`
	CategoryID       *string `json:"category_id"       binding:"omitempty,uuid"`
	Difficulty       *string `json:"difficulty"        binding:"omitempty,oneof=beginner intermediate advanced"`
	Capacity         *int    `json:"capacity"          binding:"omitempty,min=1"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	PaginationRequest
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Difficulty string `form:"difficulty"  binding:"omitempty,oneof=beginner intermediate advanced"`
	Keyword    string `form:"keyword"     binding:"omitempty,max=100"`
}

// CourseResponse 课程响应
type CourseResponse struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	ShortDescription string            `json:"short_description,omitempty"`
	Category         *CategoryResponse `json:"category,omitempty"`
	Teacher          *UserResponse     `json:"teacher,omitempty"`
	Difficulty       string            `json:"difficulty"`
	Status           string            `json:"status"`
	Capacity         *int              `json:"capacity,omitempty"`
	EnrolledCount    int               `json:"enrolled_count"`
	AvailableSlots   *int              `json:"available_slots,omitempty"` // 未设容量时为空
	AverageRating    float64           `json:"average_rating"`
	RatingCount      int               `json:"rating_count"`
	PublishedAt      string            `json:"published_at,omitempty"`
	CreatedAt        string            `json:"created_at"`
}
