package dto

// ── 批量操作模块 DTO ──

// GroupSignupRequest 按用户组批量报名请求
type GroupSignupRequest struct {
	GroupID             string `json:"group_id"              binding:"required,uuid"`
	ScheduledActivityID string `json:"scheduled_activity_id" binding:"required,uuid"`
	// Background 为 true 时异步执行，完成后通知发起人
	Background bool `json:"background"`
}

// Assignment 单条分配：指定用户报指定排期
type Assignment struct {
	UserID              string `json:"user_id"               binding:"required,uuid"`
	ScheduledActivityID string `json:"scheduled_activity_id" binding:"required,uuid"`
}

// DistributeRequest 分配请求，两种形态二选一：
//   - assignments：管理员逐人指定去向
//   - unsigned_block_id + scheduled_activity_ids：把该节次内尚未报名的
//     在册学生按给定排期顺序轮转分配
type DistributeRequest struct {
	Assignments          []Assignment `json:"assignments"            binding:"omitempty,dive"`
	UnsignedBlockID      string       `json:"unsigned_block_id"      binding:"omitempty,uuid"`
	ScheduledActivityIDs []string     `json:"scheduled_activity_ids" binding:"omitempty,dive,uuid"`
}

// TransferRequest 整体转移报名请求：源排期全部成员转入目标排期
// to_scheduled_activity_id 为空表示仅退课（unsignup）
type TransferRequest struct {
	FromScheduledActivityID string `json:"from_scheduled_activity_id" binding:"required,uuid"`
	ToScheduledActivityID   string `json:"to_scheduled_activity_id"   binding:"omitempty,uuid"`
}

// BulkOpResponse 批量操作结果
type BulkOpResponse struct {
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	// Background 为 true 表示任务已转入后台，计数在完成通知中给出
	Background bool            `json:"background,omitempty"`
	Failures   []BulkOpFailure `json:"failures,omitempty"`
}

// BulkOpFailure 单个用户的失败明细
type BulkOpFailure struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Reason   string `json:"reason"`
}
