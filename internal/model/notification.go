package model

// 通知类型
const (
	NotifyActivityCancelled = "activity_cancelled"
	NotifyRoomChanged       = "room_changed"
	NotifySignupTransferred = "signup_transferred"
	NotifyAbsence           = "absence"
	NotifySignupReminder    = "signup_reminder"
	NotifyPassResult        = "pass_result"
	NotifyBulkResult        = "bulk_result"
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(30)"                               json:"related_type,omitempty"` // block | scheduled_activity | signup
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// NotificationPreference 通知偏好表 — 对应 notification_preferences（与 users 1:1）
type NotificationPreference struct {
	UserID            string `gorm:"type:uuid;primaryKey"  json:"user_id"`
	ActivityCancelled bool   `gorm:"not null;default:true" json:"activity_cancelled"`
	RoomChanged       bool   `gorm:"not null;default:true" json:"room_changed"`
	SignupTransferred bool   `gorm:"not null;default:true" json:"signup_transferred"`
	Absence           bool   `gorm:"not null;default:true" json:"absence"`
	SignupReminder    bool   `gorm:"not null;default:true" json:"signup_reminder"`
	BaseModel
}

// TableName 指定表名
func (NotificationPreference) TableName() string { return "notification_preferences" }

// Allows 指定类型的通知是否被用户偏好允许
// 未知类型默认允许（如批量操作结果通知）
func (p *NotificationPreference) Allows(notifyType string) bool {
	switch notifyType {
	case NotifyActivityCancelled:
		return p.ActivityCancelled
	case NotifyRoomChanged:
		return p.RoomChanged
	case NotifySignupTransferred:
		return p.SignupTransferred
	case NotifyAbsence:
		return p.Absence
	case NotifySignupReminder:
		return p.SignupReminder
	default:
		return true
	}
}
