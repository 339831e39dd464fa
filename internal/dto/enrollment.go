package dto

// ── 选课模块 DTO ──

// EnrollmentResponse 选课记录响应
type EnrollmentResponse struct {
	ID          string          `json:"id"`
	CourseID    string          `json:"course_id"`
	StudentID   string          `json:"student_id"`
	EnrolledAt  string          `json:"enrolled_at"`
	CompletedAt string          `json:"completed_at,omitempty"`
	Course      *CourseResponse `json:"course,omitempty"`
	Student     *UserResponse   `json:"student,omitempty"`
}

// ── 评分模块 DTO ──

// RateCourseRequest 课程评分请求
// Score 的 1-5 区间校验在 Service 层完成，以便返回统一的业务错误
type RateCourseRequest struct {
	Score  int    `json:"score"  binding:"required"`
	Review string `json:"review" binding:"omitempty,max=2000"`
}

// RatingResponse 单条评分响应
type RatingResponse struct {
	ID        string        `json:"id"`
	CourseID  string        `json:"course_id"`
	Score     int           `json:"score"`
	Review    string        `json:"review,omitempty"`
	Student   *UserResponse `json:"student,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

// RateCourseResponse 评分后的课程聚合视图
type RateCourseResponse struct {
	Rating        RatingResponse `json:"rating"`
	AverageRating float64        `json:"average_rating"`
	RatingCount   int            `json:"rating_count"`
}
