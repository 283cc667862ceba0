package dto

// ── 报名模块 DTO ──

// AddSignupRequest 报名请求
// user_id 仅管理员代报时允许指定，普通用户只能为自己报名
type AddSignupRequest struct {
	UserID              string `json:"user_id"               binding:"omitempty,uuid"`
	ScheduledActivityID string `json:"scheduled_activity_id" binding:"required,uuid"`
	Force               bool   `json:"force"`             // 仅管理员：无视业务规则强制报名
	NoAfterDeadline     bool   `json:"no_after_deadline"`  // 仅管理员：锁定后补报不标记补报位
}

// SignupResponse 报名记录响应
type SignupResponse struct {
	ID                string                     `json:"id"`
	User              *UserBrief                 `json:"user,omitempty"`
	ScheduledActivity *ScheduledActivityResponse `json:"scheduled_activity,omitempty"`
	Block             *BlockBrief                `json:"block,omitempty"`
	AfterDeadline     bool                       `json:"after_deadline"`
	PassAccepted      bool                       `json:"pass_accepted"`
	WasAbsent         bool                       `json:"was_absent"`
	ArchivedWasAbsent bool                       `json:"archived_was_absent"`
	CreatedAt         string                     `json:"created_at"`
}

// AddSignupResponse 报名操作结果
// both_blocks 联报时 paired 为同日另一节次产生的报名
type AddSignupResponse struct {
	Signup *SignupResponse `json:"signup"`
	Paired *SignupResponse `json:"paired,omitempty"`
}

// SignupConflictResponse 报名被拒时的违规明细
type SignupConflictResponse struct {
	Violations []SignupViolation `json:"violations"`
}

// SignupViolation 单条违规
type SignupViolation struct {
	Code    string `json:"code"`    // 违规类型，见 service.Violation*
	Message string `json:"message"` // 面向当前操作者的文案
}

// RosterResponse 排期名单响应
// 受限活动里无权查看的成员折叠为 hidden_count
type RosterResponse struct {
	ScheduledActivityID string        `json:"scheduled_activity_id"`
	Viewable            []RosterEntry `json:"viewable"`
	HiddenCount         int           `json:"hidden_count"`
	Capacity            int           `json:"capacity"` // -1 表示不限
}

// RosterEntry 名单条目
type RosterEntry struct {
	SignupID      string    `json:"signup_id"`
	User          UserBrief `json:"user"`
	AfterDeadline bool      `json:"after_deadline"`
	PassAccepted  bool      `json:"pass_accepted"`
	WasAbsent     bool      `json:"was_absent"`
	AbsenceCount  int64     `json:"absence_count,omitempty"` // 仅管理员视图
}

// PassDecisionRequest 补报审批请求
type PassDecisionRequest struct {
	Accept bool `json:"accept"`
}
