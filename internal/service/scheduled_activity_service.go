package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/queue"
	"campus-portal/backend/internal/repository"
)

// ── 排期模块业务错误 ──

var (
	ErrScheduledNotFound     = errors.New("排期不存在")
	ErrScheduledNotCancelled = errors.New("排期未处于取消状态")
	ErrScheduledHasSignups   = errors.New("排期下仍有报名，不可删除")
	ErrScheduleDeleted       = errors.New("已删除的活动不可排期")
)

// ScheduledActivityService 排期业务接口
type ScheduledActivityService interface {
	// Schedule 将活动排入节次；同一 (节次, 活动) 已有排期时返回既有排期
	Schedule(ctx context.Context, req *dto.ScheduleActivityRequest, actorID string) (*dto.ScheduledActivityResponse, error)
	GetByID(ctx context.Context, id string, isAdmin bool) (*dto.ScheduledActivityResponse, error)
	ListByBlock(ctx context.Context, blockID string, isAdmin bool) ([]dto.ScheduledActivityResponse, error)
	ListByActivity(ctx context.Context, req *dto.ScheduledActivityListRequest) ([]dto.ScheduledActivityResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateScheduledActivityRequest, actorID string) (*dto.ScheduledActivityResponse, error)
	// Cancel 取消排期：报名保留，供考勤批量记缺勤或后续恢复
	Cancel(ctx context.Context, id string, actorID string) error
	Uncancel(ctx context.Context, id string, actorID string) error
	// Delete 物理删除排期：仅限无任何报名时
	Delete(ctx context.Context, id string) error
}

type scheduledActivityService struct {
	repo     *repository.Repository
	notifier NotificationService
	pub      *queue.Publisher
	logger   *zap.Logger
}

// NewScheduledActivityService 创建 ScheduledActivityService 实例
func NewScheduledActivityService(
	repo *repository.Repository,
	notifier NotificationService,
	pub *queue.Publisher,
	logger *zap.Logger,
) ScheduledActivityService {
	return &scheduledActivityService{repo: repo, notifier: notifier, pub: pub, logger: logger}
}

func (s *scheduledActivityService) Schedule(ctx context.Context, req *dto.ScheduleActivityRequest, actorID string) (*dto.ScheduledActivityResponse, error) {
	block, err := s.repo.Block.GetByID(ctx, req.BlockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		s.logger.Error("查询节次失败", zap.Error(err))
		return nil, err
	}
	activity, err := s.repo.Activity.GetByID(ctx, req.ActivityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		s.logger.Error("查询活动失败", zap.Error(err))
		return nil, err
	}
	if activity.IsDeleted() {
		return nil, ErrScheduleDeleted
	}

	sa, created, err := s.repo.ScheduledActivity.GetOrCreate(ctx, block.BlockID, activity.ActivityID, &actorID)
	if err != nil {
		s.logger.Error("排期失败",
			zap.String("block_id", req.BlockID), zap.String("activity_id", req.ActivityID), zap.Error(err))
		return nil, err
	}
	if created {
		s.logger.Info("新建排期",
			zap.String("scheduled_activity_id", sa.ScheduledActivityID),
			zap.String("activity", activity.Name),
			zap.String("block", block.Date.Format(dateLayout)+" "+block.BlockLetter))
	}

	resp, err := s.toResponse(ctx, sa, true)
	if err != nil {
		return nil, err
	}
	resp.Created = created
	return resp, nil
}

func (s *scheduledActivityService) GetByID(ctx context.Context, id string, isAdmin bool) (*dto.ScheduledActivityResponse, error) {
	sa, err := s.repo.ScheduledActivity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduledNotFound
		}
		s.logger.Error("查询排期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toResponse(ctx, sa, isAdmin)
}

func (s *scheduledActivityService) ListByBlock(ctx context.Context, blockID string, isAdmin bool) ([]dto.ScheduledActivityResponse, error) {
	if _, err := s.repo.Block.GetByID(ctx, blockID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	list, err := s.repo.ScheduledActivity.ListByBlock(ctx, blockID)
	if err != nil {
		s.logger.Error("查询节次排期失败", zap.String("block_id", blockID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.ScheduledActivityResponse, 0, len(list))
	for i := range list {
		resp, err := s.toResponse(ctx, &list[i], isAdmin)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *scheduledActivityService) ListByActivity(ctx context.Context, req *dto.ScheduledActivityListRequest) ([]dto.ScheduledActivityResponse, int64, error) {
	list, total, err := s.repo.ScheduledActivity.ListByActivity(ctx, req.ActivityID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询活动排期历史失败", zap.String("activity_id", req.ActivityID), zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.ScheduledActivityResponse, 0, len(list))
	for i := range list {
		resp, err := s.toResponse(ctx, &list[i], true)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *resp)
	}
	return out, total, nil
}

func (s *scheduledActivityService) Update(ctx context.Context, id string, req *dto.UpdateScheduledActivityRequest, actorID string) (*dto.ScheduledActivityResponse, error) {
	sa, err := s.repo.ScheduledActivity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduledNotFound
		}
		s.logger.Error("查询排期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	roomsChanged := false
	if req.ClearCapacity {
		sa.Capacity = nil
	} else if req.Capacity != nil {
		sa.Capacity = req.Capacity
	}
	if req.ClearTitle {
		sa.Title = nil
	} else if req.Title != nil {
		sa.Title = req.Title
	}
	if req.Comment != nil {
		sa.Comment = *req.Comment
	}
	if req.AdminComments != nil {
		sa.AdminComments = *req.AdminComments
	}
	applyBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	applyBool(&sa.Restricted, req.Restricted)
	applyBool(&sa.Sticky, req.Sticky)
	applyBool(&sa.BothBlocks, req.BothBlocks)
	applyBool(&sa.Special, req.Special)
	applyBool(&sa.Administrative, req.Administrative)

	sa.Version = req.Version
	sa.UpdatedBy = &actorID

	if err := s.repo.ScheduledActivity.Update(ctx, sa); err != nil {
		s.logger.Error("更新排期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.RoomIDs != nil {
		if err := s.repo.ScheduledActivity.ReplaceRooms(ctx, id, req.RoomIDs); err != nil {
			s.logger.Error("替换排期教室失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		roomsChanged = true
	}
	if req.SponsorIDs != nil {
		if err := s.repo.ScheduledActivity.ReplaceSponsors(ctx, id, req.SponsorIDs); err != nil {
			s.logger.Error("替换排期教师失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
	}

	// 教室变更通知在册学生
	if roomsChanged && s.notifier != nil {
		s.notifyRoomChanged(ctx, sa)
	}

	fresh, err := s.repo.ScheduledActivity.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, fresh, true)
}

func (s *scheduledActivityService) Cancel(ctx context.Context, id string, actorID string) error {
	sa, err := s.repo.ScheduledActivity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduledNotFound
		}
		s.logger.Error("查询排期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if sa.IsCancelled() {
		return nil
	}

	if err := s.cancelOne(ctx, sa, actorID); err != nil {
		return err
	}

	// 联报排期成对取消，另一半不能单独留在可报状态
	if sa.IsBothBlocks() {
		paired, err := s.pairedScheduled(ctx, sa)
		if err != nil {
			return err
		}
		if paired != nil && !paired.IsCancelled() {
			if err := s.cancelOne(ctx, paired, actorID); err != nil {
				return err
			}
		}
	}
	return nil
}

// cancelOne 取消单个排期：落库、通知在册学生并广播事件
func (s *scheduledActivityService) cancelOne(ctx context.Context, sa *model.ScheduledActivity, actorID string) error {
	id := sa.ScheduledActivityID
	if err := s.repo.ScheduledActivity.SetStatus(ctx, id, model.ScheduledStatusCancelled, actorID); err != nil {
		s.logger.Error("取消排期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("排期已取消", zap.String("id", id), zap.String("actor", actorID))

	signups, err := s.repo.Signup.ListByScheduledActivity(ctx, id)
	if err != nil {
		s.logger.Warn("查询报名名单失败", zap.String("id", id), zap.Error(err))
		return nil
	}
	affected := make([]string, 0, len(signups))
	for i := range signups {
		affected = append(affected, signups[i].UserID)
	}
	if s.notifier != nil && sa.Block != nil {
		title := "活动取消通知"
		content := fmt.Sprintf("你报名的「%s」（%s %s节）已取消，请重新选课。",
			sa.DisplayName(), sa.Block.Date.Format(dateLayout), sa.Block.BlockLetter)
		s.notifier.NotifyUsers(ctx, affected, model.NotifyActivityCancelled, title, content, "scheduled_activity", id)
	}
	if sa.Block != nil {
		s.pub.Publish(ctx, queue.RouteActivityCancelled, queue.ActivityCancelledEvent{
			ScheduledActivityID: id,
			ActivityName:        sa.DisplayName(),
			BlockDate:           sa.Block.Date.Format(dateLayout),
			BlockLetter:         sa.Block.BlockLetter,
			AffectedUserIDs:     affected,
			OccurredAt:          time.Now(),
		})
	}
	return nil
}

func (s *scheduledActivityService) Uncancel(ctx context.Context, id string, actorID string) error {
	sa, err := s.repo.ScheduledActivity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduledNotFound
		}
		return err
	}
	if !sa.IsCancelled() {
		return ErrScheduledNotCancelled
	}
	if err := s.repo.ScheduledActivity.SetStatus(ctx, id, model.ScheduledStatusActive, actorID); err != nil {
		s.logger.Error("恢复排期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("排期已恢复", zap.String("id", id), zap.String("actor", actorID))

	// 成对取消的另一半一并恢复
	if sa.IsBothBlocks() {
		paired, err := s.pairedScheduled(ctx, sa)
		if err != nil {
			return err
		}
		if paired != nil && paired.IsCancelled() {
			if err := s.repo.ScheduledActivity.SetStatus(ctx, paired.ScheduledActivityID, model.ScheduledStatusActive, actorID); err != nil {
				s.logger.Error("恢复配对排期失败", zap.String("id", paired.ScheduledActivityID), zap.Error(err))
				return err
			}
			s.logger.Info("配对排期已恢复", zap.String("id", paired.ScheduledActivityID), zap.String("actor", actorID))
		}
	}
	return nil
}

// pairedScheduled 同日另一节次上同一活动的排期；不看取消状态，不存在时返回 nil
func (s *scheduledActivityService) pairedScheduled(ctx context.Context, sa *model.ScheduledActivity) (*model.ScheduledActivity, error) {
	if sa.Block == nil {
		return nil, nil
	}
	siblings, err := s.repo.Block.SiblingsSameDay(ctx, sa.Block)
	if err != nil {
		s.logger.Error("查询同日节次失败", zap.Error(err))
		return nil, err
	}
	for i := range siblings {
		paired, err := s.repo.ScheduledActivity.GetByBlockAndActivity(ctx, siblings[i].BlockID, sa.ActivityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		return paired, nil
	}
	return nil, nil
}

func (s *scheduledActivityService) Delete(ctx context.Context, id string) error {
	sa, err := s.repo.ScheduledActivity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduledNotFound
		}
		return err
	}
	count, err := s.repo.Signup.CountByScheduledActivity(ctx, id)
	if err != nil {
		s.logger.Error("统计报名数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrScheduledHasSignups
	}

	// 联报排期要求配对的另一半同样无报名
	if sa.IsBothBlocks() {
		paired, err := s.pairedScheduled(ctx, sa)
		if err != nil {
			return err
		}
		if paired != nil {
			pairedCount, err := s.repo.Signup.CountByScheduledActivity(ctx, paired.ScheduledActivityID)
			if err != nil {
				s.logger.Error("统计配对报名数失败", zap.String("id", paired.ScheduledActivityID), zap.Error(err))
				return err
			}
			if pairedCount > 0 {
				return ErrScheduledHasSignups
			}
		}
	}
	if err := s.repo.ScheduledActivity.Delete(ctx, id); err != nil {
		s.logger.Error("删除排期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *scheduledActivityService) notifyRoomChanged(ctx context.Context, sa *model.ScheduledActivity) {
	signups, err := s.repo.Signup.ListByScheduledActivity(ctx, sa.ScheduledActivityID)
	if err != nil {
		s.logger.Warn("查询报名名单失败", zap.String("id", sa.ScheduledActivityID), zap.Error(err))
		return
	}
	userIDs := make([]string, 0, len(signups))
	for i := range signups {
		userIDs = append(userIDs, signups[i].UserID)
	}
	content := fmt.Sprintf("「%s」的上课教室已调整，请在活动详情中查看最新教室。", sa.DisplayName())
	s.notifier.NotifyUsers(ctx, userIDs, model.NotifyRoomChanged, "教室变更通知", content,
		"scheduled_activity", sa.ScheduledActivityID)
}

// toResponse 组装排期响应；isAdmin 为 false 时隐藏管理员备注
func (s *scheduledActivityService) toResponse(ctx context.Context, sa *model.ScheduledActivity, isAdmin bool) (*dto.ScheduledActivityResponse, error) {
	count, err := s.repo.Signup.CountByScheduledActivity(ctx, sa.ScheduledActivityID)
	if err != nil {
		s.logger.Error("统计报名数失败", zap.String("id", sa.ScheduledActivityID), zap.Error(err))
		return nil, err
	}

	resp := &dto.ScheduledActivityResponse{
		ID:              sa.ScheduledActivityID,
		Status:          sa.Status,
		AttendanceTaken: sa.AttendanceTaken,
		DisplayName:     sa.DisplayName(),
		Comment:         sa.Comment,
		TrueCapacity:    sa.TrueCapacity(),
		SignupCount:     count,
		Rooms:           toRoomBriefs(sa.EffectiveRooms()),
		Sponsors:        toSponsorBriefs(sa.EffectiveSponsors()),
		Restricted:      sa.IsRestricted(),
		Sticky:          sa.IsSticky(),
		BothBlocks:      sa.IsBothBlocks(),
		Special:         sa.Special || (sa.Activity != nil && sa.Activity.Special),
		Administrative:  sa.Administrative || (sa.Activity != nil && sa.Activity.Administrative),
		Version:         sa.Version,
		CreatedAt:       sa.CreatedAt.Format(timeLayout),
		UpdatedAt:       sa.UpdatedAt.Format(timeLayout),
	}
	if isAdmin {
		resp.AdminComments = sa.AdminComments
	}
	if sa.Block != nil {
		resp.Block = toBlockBrief(sa.Block)
	}
	if sa.Activity != nil {
		resp.Activity = toActivityBrief(sa.Activity)
	}
	return resp, nil
}
