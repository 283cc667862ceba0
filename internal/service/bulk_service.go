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

var (
	ErrTransferSameTarget = errors.New("源排期与目标排期相同")
	ErrDistributeEmpty    = errors.New("分配请求为空")
)

// BulkService 批量操作业务接口
// 所有写入都经由报名引擎，不绕开业务规则自行落库
type BulkService interface {
	// GroupSignup 整组报名：force + noAfterDeadline 逐人调用报名引擎
	// Background 请求转入后台执行，完成后通知发起人
	GroupSignup(ctx context.Context, req *dto.GroupSignupRequest, actorID string) (*dto.BulkOpResponse, error)
	// Distribute 分配：显式 user→排期 逐条经报名引擎执行；
	// 或按节次把未报名学生轮转分配到给定排期
	Distribute(ctx context.Context, req *dto.DistributeRequest, actorID string) (*dto.BulkOpResponse, error)
	// Transfer 整体转移（目标为空则整体退课）
	// 目标节次已有报名的用户其原报名被替换并收到通知
	Transfer(ctx context.Context, req *dto.TransferRequest, actorID string) (*dto.BulkOpResponse, error)
}

type bulkService struct {
	repo     *repository.Repository
	signup   SignupService
	notifier NotificationService
	pub      *queue.Publisher
	logger   *zap.Logger
}

// NewBulkService 创建 BulkService 实例
func NewBulkService(
	repo *repository.Repository,
	signup SignupService,
	notifier NotificationService,
	pub *queue.Publisher,
	logger *zap.Logger,
) BulkService {
	return &bulkService{repo: repo, signup: signup, notifier: notifier, pub: pub, logger: logger}
}

// ────────────────────── GroupSignup ──────────────────────

func (s *bulkService) GroupSignup(ctx context.Context, req *dto.GroupSignupRequest, actorID string) (*dto.BulkOpResponse, error) {
	if _, err := s.repo.Group.GetByID(ctx, req.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	members, err := s.repo.Group.ListMembers(ctx, req.GroupID)
	if err != nil {
		s.logger.Error("查询组成员失败", zap.String("group_id", req.GroupID), zap.Error(err))
		return nil, err
	}

	if req.Background {
		// 后台执行与请求上下文解耦，完成后通知发起人
		go s.runGroupSignup(context.Background(), members, req.ScheduledActivityID, actorID)
		return &dto.BulkOpResponse{Background: true}, nil
	}
	return s.doGroupSignup(ctx, members, req.ScheduledActivityID, actorID), nil
}

func (s *bulkService) runGroupSignup(ctx context.Context, members []model.User, scheduledActivityID, actorID string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("后台整组报名异常", zap.Any("panic", r))
			s.notifier.Notify(ctx, actorID, model.NotifyBulkResult,
				"整组报名异常中止", fmt.Sprintf("后台任务执行失败：%v", r), "", "")
		}
	}()

	resp := s.doGroupSignup(ctx, members, scheduledActivityID, actorID)
	content := fmt.Sprintf("整组报名完成：成功 %d 人，失败 %d 人。", resp.Succeeded, resp.Failed)
	for _, f := range resp.Failures {
		content += fmt.Sprintf("\n%s：%s", f.Username, f.Reason)
	}
	s.notifier.Notify(ctx, actorID, model.NotifyBulkResult, "整组报名结果", content,
		"scheduled_activity", scheduledActivityID)
}

func (s *bulkService) doGroupSignup(ctx context.Context, members []model.User, scheduledActivityID, actorID string) *dto.BulkOpResponse {
	resp := &dto.BulkOpResponse{}
	for i := range members {
		member := &members[i]
		_, err := s.signup.AddUser(ctx, member.UserID, scheduledActivityID, AddUserOptions{
			Force:           true,
			NoAfterDeadline: true,
			ActorID:         actorID,
		})
		if err != nil {
			resp.Failed++
			resp.Failures = append(resp.Failures, dto.BulkOpFailure{
				UserID:   member.UserID,
				Username: member.Username,
				Reason:   err.Error(),
			})
			continue
		}
		resp.Succeeded++
	}

	s.logger.Info("整组报名完成",
		zap.String("scheduled_activity_id", scheduledActivityID),
		zap.Int("succeeded", resp.Succeeded), zap.Int("failed", resp.Failed))
	s.pub.Publish(ctx, queue.RouteBulkOpFinished, queue.BulkOpFinishedEvent{
		Operation:  "group_signup",
		ActorID:    actorID,
		Succeeded:  resp.Succeeded,
		Failed:     resp.Failed,
		OccurredAt: time.Now(),
	})
	return resp
}

// ────────────────────── Distribute ──────────────────────

func (s *bulkService) Distribute(ctx context.Context, req *dto.DistributeRequest, actorID string) (*dto.BulkOpResponse, error) {
	assignments := req.Assignments

	// 节次模式：未报名学生按排期顺序轮转分配
	if req.UnsignedBlockID != "" {
		if len(req.ScheduledActivityIDs) == 0 {
			return nil, ErrDistributeEmpty
		}
		if _, err := s.repo.Block.GetByID(ctx, req.UnsignedBlockID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBlockNotFound
			}
			return nil, err
		}
		unsigned, err := s.repo.Signup.ListUnsignedUsers(ctx, req.UnsignedBlockID)
		if err != nil {
			s.logger.Error("查询未报名学生失败", zap.String("block_id", req.UnsignedBlockID), zap.Error(err))
			return nil, err
		}
		for i := range unsigned {
			assignments = append(assignments, dto.Assignment{
				UserID:              unsigned[i].UserID,
				ScheduledActivityID: req.ScheduledActivityIDs[i%len(req.ScheduledActivityIDs)],
			})
		}
	}
	if len(assignments) == 0 && req.UnsignedBlockID == "" {
		return nil, ErrDistributeEmpty
	}

	resp := &dto.BulkOpResponse{}
	for _, a := range assignments {
		_, err := s.signup.AddUser(ctx, a.UserID, a.ScheduledActivityID, AddUserOptions{
			Force:           true,
			NoAfterDeadline: true,
			ActorID:         actorID,
		})
		if err != nil {
			resp.Failed++
			resp.Failures = append(resp.Failures, dto.BulkOpFailure{
				UserID: a.UserID,
				Reason: err.Error(),
			})
			continue
		}
		resp.Succeeded++
	}

	s.logger.Info("显式分配完成",
		zap.Int("succeeded", resp.Succeeded), zap.Int("failed", resp.Failed))
	s.pub.Publish(ctx, queue.RouteBulkOpFinished, queue.BulkOpFinishedEvent{
		Operation:  "distribute",
		ActorID:    actorID,
		Succeeded:  resp.Succeeded,
		Failed:     resp.Failed,
		OccurredAt: time.Now(),
	})
	return resp, nil
}

// ────────────────────── Transfer ──────────────────────

func (s *bulkService) Transfer(ctx context.Context, req *dto.TransferRequest, actorID string) (*dto.BulkOpResponse, error) {
	if req.ToScheduledActivityID == req.FromScheduledActivityID {
		return nil, ErrTransferSameTarget
	}

	source, err := s.repo.ScheduledActivity.GetByID(ctx, req.FromScheduledActivityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduledNotFound
		}
		return nil, err
	}

	var dest *model.ScheduledActivity
	if req.ToScheduledActivityID != "" {
		dest, err = s.repo.ScheduledActivity.GetByID(ctx, req.ToScheduledActivityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrScheduledNotFound
			}
			return nil, err
		}
	}

	signups, err := s.repo.Signup.ListByScheduledActivity(ctx, req.FromScheduledActivityID)
	if err != nil {
		s.logger.Error("查询源排期名单失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.BulkOpResponse{}
	for i := range signups {
		sg := &signups[i]

		// 仅退课；走引擎的退课路径，联报的成对报名一并退掉
		if dest == nil {
			if err := s.signup.RemoveSignup(ctx, sg.SignupID, actorID, true); err != nil {
				resp.Failed++
				resp.Failures = append(resp.Failures, dto.BulkOpFailure{UserID: sg.UserID, Reason: err.Error()})
				continue
			}
			resp.Succeeded++
			continue
		}

		// 目标节次已有报名的会被引擎替换掉，替换前记下来以便通知
		hadConflict := false
		if prior, err := s.repo.Signup.GetByUserAndBlock(ctx, sg.UserID, dest.BlockID); err == nil {
			hadConflict = prior.ScheduledActivityID != dest.ScheduledActivityID
		}

		_, err := s.signup.AddUser(ctx, sg.UserID, dest.ScheduledActivityID, AddUserOptions{
			Force:           true,
			NoAfterDeadline: true,
			ActorID:         actorID,
		})
		if err != nil {
			resp.Failed++
			resp.Failures = append(resp.Failures, dto.BulkOpFailure{UserID: sg.UserID, Reason: err.Error()})
			continue
		}
		// 源节次与目标节次不同的要手动退掉源报名
		if sg.BlockID != dest.BlockID {
			if err := s.repo.Signup.Delete(ctx, sg.SignupID); err != nil {
				s.logger.Warn("清理源报名失败", zap.String("signup_id", sg.SignupID), zap.Error(err))
			}
		}
		resp.Succeeded++

		if hadConflict {
			s.notifier.Notify(ctx, sg.UserID, model.NotifySignupTransferred,
				"报名调整通知",
				fmt.Sprintf("你原节次的报名已被替换为「%s」。", dest.DisplayName()),
				"scheduled_activity", dest.ScheduledActivityID)
		} else {
			s.notifier.Notify(ctx, sg.UserID, model.NotifySignupTransferred,
				"报名转移通知",
				fmt.Sprintf("你在「%s」的报名已整体转移至「%s」。", source.DisplayName(), dest.DisplayName()),
				"scheduled_activity", dest.ScheduledActivityID)
		}
	}

	s.logger.Info("整体转移完成",
		zap.String("from", req.FromScheduledActivityID),
		zap.String("to", req.ToScheduledActivityID),
		zap.Int("succeeded", resp.Succeeded), zap.Int("failed", resp.Failed))
	s.pub.Publish(ctx, queue.RouteBulkOpFinished, queue.BulkOpFinishedEvent{
		Operation:  "transfer",
		ActorID:    actorID,
		Succeeded:  resp.Succeeded,
		Failed:     resp.Failed,
		OccurredAt: time.Now(),
	})
	return resp, nil
}
