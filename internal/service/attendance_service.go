package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceCancelled = errors.New("已取消的排期请使用批量缺勤通道")
	ErrAbsenceNotFound     = errors.New("该报名没有未归档的缺勤记录")
)

// AttendanceService 考勤业务接口
type AttendanceService interface {
	// TakeAttendance 为排期记考勤；可重复执行，以最后一次为准
	// 到场名单外的在册报名记缺勤；未批准的补报一律记缺勤
	TakeAttendance(ctx context.Context, scheduledActivityID string, req *dto.TakeAttendanceRequest, actorID string) (*dto.TakeAttendanceResponse, error)
	// BulkMarkZeroSignup 给指定节次内零报名的排期批量标记考勤完成
	// 执行时逐排期复核"报名数仍为零"，防止与并发报名竞争
	BulkMarkZeroSignup(ctx context.Context, blockID string, actorID string) (*dto.BulkAttendanceResponse, error)
	// BulkMarkCancelled 已取消排期的快捷通道：在册全员记缺勤并标记考勤完成
	BulkMarkCancelled(ctx context.Context, blockID string, actorID string) (*dto.BulkAttendanceResponse, error)
	// ClearAbsence 撤销单条缺勤（申诉通过）
	ClearAbsence(ctx context.Context, signupID string, actorID string) error
	// GetAbsences 查询用户当前学年缺勤数
	GetAbsences(ctx context.Context, userID string) (*dto.AbsenceResponse, error)
	// ArchiveAbsences 年终归档：全部未归档缺勤转入历史
	ArchiveAbsences(ctx context.Context) (*dto.ArchiveAbsencesResponse, error)
}

type attendanceService struct {
	cfg      *config.Config
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(
	cfg *config.Config,
	repo *repository.Repository,
	notifier NotificationService,
	logger *zap.Logger,
) AttendanceService {
	return &attendanceService{cfg: cfg, repo: repo, notifier: notifier, logger: logger}
}

// ════════════════════════════════════════════════════════════
// TakeAttendance — 单排期记考勤
// ════════════════════════════════════════════════════════════

func (s *attendanceService) TakeAttendance(ctx context.Context, scheduledActivityID string, req *dto.TakeAttendanceRequest, actorID string) (*dto.TakeAttendanceResponse, error) {
	sa, err := s.repo.ScheduledActivity.GetByID(ctx, scheduledActivityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduledNotFound
		}
		s.logger.Error("查询排期失败", zap.Error(err))
		return nil, err
	}
	if sa.IsCancelled() {
		return nil, ErrAttendanceCancelled
	}

	signups, err := s.repo.Signup.ListByScheduledActivity(ctx, scheduledActivityID)
	if err != nil {
		s.logger.Error("查询名单失败", zap.Error(err))
		return nil, err
	}

	present := make(map[string]bool, len(req.PresentUserIDs))
	for _, id := range req.PresentUserIDs {
		present[id] = true
	}

	resp := &dto.TakeAttendanceResponse{ScheduledActivityID: scheduledActivityID}
	var newlyAbsent []model.Signup

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for i := range signups {
			sg := &signups[i]
			// 未获批准的补报不算在册，到场也记缺勤
			wasAbsent := !present[sg.UserID] || sg.IsPendingPass()
			if sg.IsPendingPass() {
				resp.PendingPassesAbsent++
			}
			if wasAbsent {
				resp.Absent++
			} else {
				resp.Present++
			}
			// 重复记考勤以最后一次为准
			if sg.WasAbsent != wasAbsent {
				if err := tx.Signup.SetAbsent(ctx, sg.SignupID, wasAbsent, actorID); err != nil {
					return err
				}
				if wasAbsent {
					newlyAbsent = append(newlyAbsent, *sg)
				}
			}
		}
		return tx.ScheduledActivity.SetAttendanceTaken(ctx, scheduledActivityID, true, actorID)
	})
	if err != nil {
		s.logger.Error("记考勤失败", zap.String("id", scheduledActivityID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("考勤完成",
		zap.String("scheduled_activity_id", scheduledActivityID),
		zap.Int("present", resp.Present), zap.Int("absent", resp.Absent))

	for i := range newlyAbsent {
		s.notifyAbsence(ctx, &newlyAbsent[i], sa.DisplayName())
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// BulkMarkZeroSignup — 零报名排期批量完成考勤
// ════════════════════════════════════════════════════════════
//
// 候选排期在事务外列出；落笔前在事务内复核报名数仍为零，
// 名单与执行之间有人报名的排期跳过

func (s *attendanceService) BulkMarkZeroSignup(ctx context.Context, blockID string, actorID string) (*dto.BulkAttendanceResponse, error) {
	if _, err := s.repo.Block.GetByID(ctx, blockID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		s.logger.Error("查询节次失败", zap.Error(err))
		return nil, err
	}

	list, err := s.repo.ScheduledActivity.ListByBlock(ctx, blockID)
	if err != nil {
		s.logger.Error("查询节次排期失败", zap.String("block_id", blockID), zap.Error(err))
		return nil, err
	}

	resp := &dto.BulkAttendanceResponse{}
	for i := range list {
		sa := &list[i]
		if sa.AttendanceTaken {
			continue
		}
		err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			count, err := tx.Signup.CountByScheduledActivity(ctx, sa.ScheduledActivityID)
			if err != nil {
				return err
			}
			if count > 0 {
				resp.Skipped++
				return nil
			}
			if err := tx.ScheduledActivity.SetAttendanceTaken(ctx, sa.ScheduledActivityID, true, actorID); err != nil {
				return err
			}
			resp.Processed++
			return nil
		})
		if err != nil {
			s.logger.Error("零报名考勤失败", zap.String("id", sa.ScheduledActivityID), zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("零报名考勤批量完成",
		zap.String("block_id", blockID),
		zap.Int("processed", resp.Processed), zap.Int("skipped", resp.Skipped))
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// BulkMarkCancelled — 已取消排期的考勤快捷通道
// ════════════════════════════════════════════════════════════

func (s *attendanceService) BulkMarkCancelled(ctx context.Context, blockID string, actorID string) (*dto.BulkAttendanceResponse, error) {
	cancelled, err := s.repo.ScheduledActivity.ListCancelledWithoutAttendance(ctx, blockID)
	if err != nil {
		s.logger.Error("查询已取消排期失败", zap.String("block_id", blockID), zap.Error(err))
		return nil, err
	}

	resp := &dto.BulkAttendanceResponse{}
	for i := range cancelled {
		sa := &cancelled[i]
		err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			signups, err := tx.Signup.ListByScheduledActivity(ctx, sa.ScheduledActivityID)
			if err != nil {
				return err
			}
			for j := range signups {
				if signups[j].WasAbsent {
					continue
				}
				if err := tx.Signup.SetAbsent(ctx, signups[j].SignupID, true, actorID); err != nil {
					return err
				}
			}
			return tx.ScheduledActivity.SetAttendanceTaken(ctx, sa.ScheduledActivityID, true, actorID)
		})
		if err != nil {
			s.logger.Error("取消排期记缺勤失败", zap.String("id", sa.ScheduledActivityID), zap.Error(err))
			return nil, err
		}
		resp.Processed++
	}
	return resp, nil
}

func (s *attendanceService) ClearAbsence(ctx context.Context, signupID string, actorID string) error {
	signup, err := s.repo.Signup.GetByID(ctx, signupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSignupNotFound
		}
		return err
	}
	if !signup.WasAbsent {
		return ErrAbsenceNotFound
	}
	if err := s.repo.Signup.SetAbsent(ctx, signupID, false, actorID); err != nil {
		s.logger.Error("撤销缺勤失败", zap.String("id", signupID), zap.Error(err))
		return err
	}
	s.logger.Info("缺勤已撤销", zap.String("signup_id", signupID), zap.String("actor", actorID))
	return nil
}

func (s *attendanceService) GetAbsences(ctx context.Context, userID string) (*dto.AbsenceResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	count, err := s.repo.Signup.CountAbsences(ctx, userID)
	if err != nil {
		s.logger.Error("统计缺勤失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.AbsenceResponse{
		User:         toUserBrief(user),
		AbsenceCount: count,
		OverLimit:    count > int64(s.cfg.Eighth.AbsenceLimit),
	}, nil
}

func (s *attendanceService) ArchiveAbsences(ctx context.Context) (*dto.ArchiveAbsencesResponse, error) {
	archived, err := s.repo.Signup.ArchiveAbsences(ctx)
	if err != nil {
		s.logger.Error("缺勤归档失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("缺勤归档完成", zap.Int64("archived", archived))
	return &dto.ArchiveAbsencesResponse{Archived: archived}, nil
}

func (s *attendanceService) notifyAbsence(ctx context.Context, sg *model.Signup, activityName string) {
	count, err := s.repo.Signup.CountAbsences(ctx, sg.UserID)
	if err != nil {
		s.logger.Warn("统计缺勤失败", zap.String("user_id", sg.UserID), zap.Error(err))
	}
	content := fmt.Sprintf("你在「%s」被记缺勤，本学年累计缺勤 %d 次。", activityName, count)
	if count > int64(s.cfg.Eighth.AbsenceLimit) {
		content += fmt.Sprintf("已超出学年上限（%d 次），请联系教务处。", s.cfg.Eighth.AbsenceLimit)
	}
	s.notifier.Notify(ctx, sg.UserID, model.NotifyAbsence, "缺勤通知", content, "signup", sg.SignupID)
}
