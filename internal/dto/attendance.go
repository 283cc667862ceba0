package dto

// ── 考勤模块 DTO ──

// TakeAttendanceRequest 记考勤请求
// present_user_ids 为到场用户，名单内其余在册报名记缺勤
type TakeAttendanceRequest struct {
	PresentUserIDs []string `json:"present_user_ids" binding:"omitempty,dive,uuid"`
}

// TakeAttendanceResponse 记考勤结果
type TakeAttendanceResponse struct {
	ScheduledActivityID string `json:"scheduled_activity_id"`
	Present             int    `json:"present"`
	Absent              int    `json:"absent"`
	PendingPassesAbsent int    `json:"pending_passes_absent"` // 未批准补报自动记缺勤数
}

// BulkAttendanceResponse 批量考勤结果
type BulkAttendanceResponse struct {
	Processed int `json:"processed"` // 本次记完考勤的排期数
	Skipped   int `json:"skipped"`   // 执行时复核不通过而跳过的排期数
}

// AbsenceResponse 缺勤统计响应
type AbsenceResponse struct {
	User         UserBrief `json:"user"`
	AbsenceCount int64     `json:"absence_count"`
	OverLimit    bool      `json:"over_limit"`
}

// ArchiveAbsencesResponse 缺勤归档结果
type ArchiveAbsencesResponse struct {
	Archived int64 `json:"archived"`
}
