package dto

// ── 排期模块 DTO ──

// ScheduleActivityRequest 排期请求：将活动安排进节次
// 同一 (节次, 活动) 已有排期时返回既有排期而不重复创建
type ScheduleActivityRequest struct {
	BlockID    string `json:"block_id"    binding:"required,uuid"`
	ActivityID string `json:"activity_id" binding:"required,uuid"`
}

// UpdateScheduledActivityRequest 更新排期请求
// 覆盖字段为 nil 表示继承活动模板默认
type UpdateScheduledActivityRequest struct {
	Capacity      *int    `json:"capacity"       binding:"omitempty,min=-1"`
	ClearCapacity bool    `json:"clear_capacity"` // 为 true 时清除显式容量，回退推导
	Title         *string `json:"title"          binding:"omitempty,max=100"`
	ClearTitle    bool    `json:"clear_title"`
	Comment       *string `json:"comment"        binding:"omitempty,max=1000"`
	AdminComments *string `json:"admin_comments" binding:"omitempty,max=1000"`

	Restricted     *bool `json:"restricted"`
	Sticky         *bool `json:"sticky"`
	BothBlocks     *bool `json:"both_blocks"`
	Special        *bool `json:"special"`
	Administrative *bool `json:"administrative"`

	RoomIDs    []string `json:"room_ids"    binding:"omitempty,dive,uuid"` // nil 不变，空数组清空覆盖
	SponsorIDs []string `json:"sponsor_ids" binding:"omitempty,dive,uuid"`

	Version int `json:"version" binding:"required,min=1"`
}

// ScheduledActivityResponse 排期响应
type ScheduledActivityResponse struct {
	ID              string         `json:"id"`
	Block           BlockBrief     `json:"block"`
	Activity        ActivityBrief  `json:"activity"`
	Status          string         `json:"status"`
	AttendanceTaken bool           `json:"attendance_taken"`
	DisplayName     string         `json:"display_name"`
	Comment         string         `json:"comment"`
	AdminComments   string         `json:"admin_comments,omitempty"` // 仅管理员可见
	TrueCapacity    int            `json:"true_capacity"`            // -1 表示不限
	SignupCount     int64          `json:"signup_count"`
	Rooms           []RoomBrief    `json:"rooms,omitempty"`
	Sponsors        []SponsorBrief `json:"sponsors,omitempty"`

	Restricted     bool `json:"restricted"`
	Sticky         bool `json:"sticky"`
	BothBlocks     bool `json:"both_blocks"`
	Special        bool `json:"special"`
	Administrative bool `json:"administrative"`

	Created bool `json:"created,omitempty"` // 排期操作是否新建了该行

	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ScheduledActivityListRequest 按活动查询历史排期参数
type ScheduledActivityListRequest struct {
	ActivityID string `form:"activity_id" binding:"required,uuid"`
	PaginationRequest
}
