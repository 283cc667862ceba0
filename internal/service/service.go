package service

import (
	"go.uber.org/zap"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/queue"
	"campus-portal/backend/internal/repository"
	"campus-portal/backend/pkg/jwt"
	"campus-portal/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth              AuthService
	User              UserService
	Registry          RegistryService
	Activity          ActivityService
	Block             BlockService
	ScheduledActivity ScheduledActivityService
	Signup            SignupService
	Attendance        AttendanceService
	Bulk              BulkService
	Notification      NotificationService
	Export            ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	pub *queue.Publisher,
	logger *zap.Logger,
) *Service {
	notification := NewNotificationService(repo, pub, logger)
	signup := NewSignupService(cfg, repo, notification, logger)

	return &Service{
		Auth:              NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:              NewUserService(repo, logger),
		Registry:          NewRegistryService(repo, logger),
		Activity:          NewActivityService(repo, logger),
		Block:             NewBlockService(cfg, repo, logger),
		ScheduledActivity: NewScheduledActivityService(repo, notification, pub, logger),
		Signup:            signup,
		Attendance:        NewAttendanceService(cfg, repo, notification, logger),
		Bulk:              NewBulkService(repo, signup, notification, pub, logger),
		Notification:      notification,
		Export:            NewExportService(repo, logger),
	}
}
