package dto

// ── 直播模块 DTO ──

// ScheduleSessionRequest 排课请求
type ScheduleSessionRequest struct {
	Title           string `json:"title"            binding:"required,min=1,max=200"`
	Description     string `json:"description"      binding:"omitempty"`
	ScheduledAt     string `json:"scheduled_at"     binding:"required"` // RFC3339
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=15"`
}

// AttachRecordingRequest 挂载课次录像请求
// 录像为外部存储的不透明引用，本服务只记录地址
type AttachRecordingRequest struct {
	RecordingURL string `json:"recording_url" binding:"required,url"`
}

// PostMessageRequest 发送聊天消息请求
type PostMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// SessionResponse 直播课次响应
type SessionResponse struct {
	ID              string `json:"id"`
	CourseID        string `json:"course_id"`
	TeacherID       string `json:"teacher_id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	ScheduledAt     string `json:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	StartedAt       string `json:"started_at,omitempty"`
	EndedAt         string `json:"ended_at,omitempty"`
	RecordingURL    string `json:"recording_url,omitempty"`
}

// ParticipantResponse 参与记录响应
type ParticipantResponse struct {
	ID       string        `json:"id"`
	UserID   string        `json:"user_id"`
	User     *UserResponse `json:"user,omitempty"`
	JoinedAt string        `json:"joined_at"`
	LeftAt   string        `json:"left_at,omitempty"`
}

// MessageResponse 聊天消息响应
type MessageResponse struct {
	ID        int64         `json:"id"`
	SessionID string        `json:"session_id"`
	Sender    *UserResponse `json:"sender,omitempty"`
	Content   string        `json:"content"`
	CreatedAt string        `json:"created_at"`
}
