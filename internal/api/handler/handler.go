package handler

import "campus-portal/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth              *AuthHandler
	User              *UserHandler
	Registry          *RegistryHandler
	Activity          *ActivityHandler
	Block             *BlockHandler
	ScheduledActivity *ScheduledActivityHandler
	Signup            *SignupHandler
	Attendance        *AttendanceHandler
	Bulk              *BulkHandler
	Notification      *NotificationHandler
	Export            *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:              NewAuthHandler(svc.Auth),
		User:              NewUserHandler(svc.User),
		Registry:          NewRegistryHandler(svc.Registry),
		Activity:          NewActivityHandler(svc.Activity),
		Block:             NewBlockHandler(svc.Block),
		ScheduledActivity: NewScheduledActivityHandler(svc.ScheduledActivity),
		Signup:            NewSignupHandler(svc.Signup),
		Attendance:        NewAttendanceHandler(svc.Attendance),
		Bulk:              NewBulkHandler(svc.Bulk),
		Notification:      NewNotificationHandler(svc.Notification),
		Export:            NewExportHandler(svc.Export),
	}
}
