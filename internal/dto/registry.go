package dto

// ── 教室 / 指导教师 / 用户组 DTO ──

// CreateRoomRequest 创建教室请求
type CreateRoomRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=100"`
	Capacity int    `json:"capacity" binding:"omitempty,min=-1"` // -1 表示不限
}

// UpdateRoomRequest 更新教室请求
type UpdateRoomRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=1,max=100"`
	Capacity *int    `json:"capacity" binding:"omitempty,min=-1"`
}

// RoomResponse 教室响应
type RoomResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateSponsorRequest 创建指导教师请求
type CreateSponsorRequest struct {
	Name             string  `json:"name"              binding:"required,min=1,max=100"`
	UserID           *string `json:"user_id"           binding:"omitempty,uuid"` // 为空表示外聘教师
	OnlineAttendance bool    `json:"online_attendance"`
}

// UpdateSponsorRequest 更新指导教师请求
type UpdateSponsorRequest struct {
	Name             *string `json:"name"              binding:"omitempty,min=1,max=100"`
	UserID           *string `json:"user_id"           binding:"omitempty,uuid"`
	OnlineAttendance *bool   `json:"online_attendance"`
}

// SponsorResponse 指导教师响应
type SponsorResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	User             *UserBrief `json:"user,omitempty"`
	OnlineAttendance bool       `json:"online_attendance"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
}

// CreateGroupRequest 创建用户组请求
type CreateGroupRequest struct {
	Name        string `json:"name"        binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// GroupMemberRequest 增删组成员请求
type GroupMemberRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=1,dive,uuid"`
}

// GroupResponse 用户组响应
type GroupResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Members     []UserBrief `json:"members,omitempty"`
	CreatedAt   string      `json:"created_at"`
}
