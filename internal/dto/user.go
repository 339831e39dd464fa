package dto

// ── 用户模块 DTO ──

// UserResponse 用户基础信息响应
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Bio      string `json:"bio,omitempty"`
	Phone    string `json:"phone,omitempty"`
	IsActive bool   `json:"is_active"`
}

// UpdateProfileRequest 更新个人资料请求
// 角色与邮箱不在此处修改；角色创建后不可变
type UpdateProfileRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=2,max=100"`
	Bio   *string `json:"bio"   binding:"omitempty,max=500"`
	Phone *string `json:"phone" binding:"omitempty,max=20"`
}

// UserListRequest 用户列表查询参数（管理员）
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=teacher student admin"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}
