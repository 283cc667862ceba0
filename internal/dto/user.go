package dto

// ── 用户管理模块 DTO ──

// CreateUserRequest 创建用户请求（仅管理员）
type CreateUserRequest struct {
	Username       string `json:"username"        binding:"required,min=2,max=50"`
	Name           string `json:"name"            binding:"required,min=1,max=100"`
	Email          string `json:"email"           binding:"required,email"`
	Password       string `json:"password"        binding:"required,min=8,max=72"`
	Role           string `json:"role"            binding:"required,oneof=student teacher admin"`
	GraduationYear *int   `json:"graduation_year" binding:"omitempty,min=2000,max=2100"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name           *string `json:"name"            binding:"omitempty,min=1,max=100"`
	Email          *string `json:"email"           binding:"omitempty,email"`
	Role           *string `json:"role"            binding:"omitempty,oneof=student teacher admin"`
	GraduationYear *int    `json:"graduation_year" binding:"omitempty,min=2000,max=2100"`
	Version        int     `json:"version"         binding:"required,min=1"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Role string `form:"role" binding:"omitempty,oneof=student teacher admin"`
	PaginationRequest
}
