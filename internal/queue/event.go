package queue

import "time"

// 事件 routing key
const (
	RouteNotificationCreated = "notification.created"
	RouteActivityCancelled   = "activity.cancelled"
	RouteBulkOpFinished      = "bulk.finished"
)

// NotificationEvent 通知创建事件：下游消费者（邮件/推送网关）据此投递
type NotificationEvent struct {
	NotificationID string    `json:"notification_id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ActivityCancelledEvent 排期取消事件
type ActivityCancelledEvent struct {
	ScheduledActivityID string    `json:"scheduled_activity_id"`
	ActivityName        string    `json:"activity_name"`
	BlockDate           string    `json:"block_date"`
	BlockLetter         string    `json:"block_letter"`
	AffectedUserIDs     []string  `json:"affected_user_ids"`
	OccurredAt          time.Time `json:"occurred_at"`
}

// BulkOpFinishedEvent 批量操作完成事件
type BulkOpFinishedEvent struct {
	Operation  string    `json:"operation"` // group_signup | distribute | transfer
	ActorID    string    `json:"actor_id"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	OccurredAt time.Time `json:"occurred_at"`
}
