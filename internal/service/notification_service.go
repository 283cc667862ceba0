package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/queue"
	"campus-portal/backend/internal/repository"
)

var ErrNotificationNotFound = errors.New("通知不存在")

// NotificationService 通知业务接口
// 站内通知落库为主路径；MQ 事件投递为旁路，失败不影响主流程
type NotificationService interface {
	// Notify 给单个用户发通知，偏好关闭时静默跳过
	Notify(ctx context.Context, userID, notifyType, title, content string, relatedType, relatedID string)
	// NotifyUsers 批量通知，逐用户应用偏好
	NotifyUsers(ctx context.Context, userIDs []string, notifyType, title, content string, relatedType, relatedID string)
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, req *dto.MarkReadRequest) error
	Delete(ctx context.Context, userID, notificationID string) error
	GetPreference(ctx context.Context, userID string) (*dto.PreferenceResponse, error)
	UpdatePreference(ctx context.Context, userID string, req *dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error)
}

type notificationService struct {
	repo   *repository.Repository
	pub    *queue.Publisher
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, pub *queue.Publisher, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, pub: pub, logger: logger}
}

func (s *notificationService) Notify(ctx context.Context, userID, notifyType, title, content string, relatedType, relatedID string) {
	pref, err := s.repo.Notification.GetPreference(ctx, userID)
	if err != nil {
		s.logger.Warn("查询通知偏好失败", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if !pref.Allows(notifyType) {
		return
	}

	n := model.Notification{
		UserID:  userID,
		Type:    notifyType,
		Title:   title,
		Content: content,
	}
	if relatedType != "" {
		n.RelatedType = &relatedType
		n.RelatedID = &relatedID
	}
	if err := s.repo.Notification.Create(ctx, &n); err != nil {
		s.logger.Error("写入通知失败", zap.String("user_id", userID), zap.Error(err))
		return
	}

	s.pub.Publish(ctx, queue.RouteNotificationCreated, queue.NotificationEvent{
		NotificationID: n.NotificationID,
		UserID:         userID,
		Type:           notifyType,
		Title:          title,
		Content:        content,
		OccurredAt:     time.Now(),
	})
}

func (s *notificationService) NotifyUsers(ctx context.Context, userIDs []string, notifyType, title, content string, relatedType, relatedID string) {
	for _, userID := range userIDs {
		s.Notify(ctx, userID, notifyType, title, content, relatedType, relatedID)
	}
}

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	notifications, total, err := s.repo.Notification.ListByUser(ctx, userID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.NotificationResponse, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		out[i] = dto.NotificationResponse{
			ID:          n.NotificationID,
			Type:        n.Type,
			Title:       n.Title,
			Content:     n.Content,
			IsRead:      n.IsRead,
			RelatedType: n.RelatedType,
			RelatedID:   n.RelatedID,
			CreatedAt:   n.CreatedAt.Format(timeLayout),
		}
	}
	return out, total, nil
}

func (s *notificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.Notification.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("统计未读通知失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, req *dto.MarkReadRequest) error {
	if req.All {
		return s.repo.Notification.MarkAllRead(ctx, userID)
	}
	return s.repo.Notification.MarkRead(ctx, userID, req.NotificationIDs)
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if err := s.repo.Notification.Delete(ctx, userID, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("删除通知失败", zap.String("id", notificationID), zap.Error(err))
		return err
	}
	return nil
}

func (s *notificationService) GetPreference(ctx context.Context, userID string) (*dto.PreferenceResponse, error) {
	pref, err := s.repo.Notification.GetPreference(ctx, userID)
	if err != nil {
		s.logger.Error("查询通知偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toPreferenceResponse(pref), nil
}

func (s *notificationService) UpdatePreference(ctx context.Context, userID string, req *dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error) {
	pref, err := s.repo.Notification.GetPreference(ctx, userID)
	if err != nil {
		return nil, err
	}
	applyBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	applyBool(&pref.ActivityCancelled, req.ActivityCancelled)
	applyBool(&pref.RoomChanged, req.RoomChanged)
	applyBool(&pref.SignupTransferred, req.SignupTransferred)
	applyBool(&pref.Absence, req.Absence)
	applyBool(&pref.SignupReminder, req.SignupReminder)

	if err := s.repo.Notification.UpsertPreference(ctx, pref); err != nil {
		s.logger.Error("更新通知偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toPreferenceResponse(pref), nil
}

func toPreferenceResponse(p *model.NotificationPreference) *dto.PreferenceResponse {
	return &dto.PreferenceResponse{
		ActivityCancelled: p.ActivityCancelled,
		RoomChanged:       p.RoomChanged,
		SignupTransferred: p.SignupTransferred,
		Absence:           p.Absence,
		SignupReminder:    p.SignupReminder,
	}
}
