package dto

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	UnreadOnly bool `form:"unread_only"`
	PaginationRequest
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	IsRead      bool    `json:"is_read"`
	RelatedType *string `json:"related_type,omitempty"`
	RelatedID   *string `json:"related_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// MarkReadRequest 标记已读请求
type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids" binding:"omitempty,dive,uuid"`
	All             bool     `json:"all"`
}

// UpdatePreferenceRequest 更新通知偏好请求
type UpdatePreferenceRequest struct {
	ActivityCancelled *bool `json:"activity_cancelled"`
	RoomChanged       *bool `json:"room_changed"`
	SignupTransferred *bool `json:"signup_transferred"`
	Absence           *bool `json:"absence"`
	SignupReminder    *bool `json:"signup_reminder"`
}

// PreferenceResponse 通知偏好响应
type PreferenceResponse struct {
	ActivityCancelled bool `json:"activity_cancelled"`
	RoomChanged       bool `json:"room_changed"`
	SignupTransferred bool `json:"signup_transferred"`
	Absence           bool `json:"absence"`
	SignupReminder    bool `json:"signup_reminder"`
}
