package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
)

// ── 报名模块业务错误 ──

var (
	ErrSignupNotFound   = errors.New("报名记录不存在")
	ErrSignupNotSelf    = errors.New("只能操作自己的报名")
	ErrSignupSticky     = errors.New("该活动不允许自行退课")
	ErrSignupNotPending = errors.New("该报名不是待审批的补报")
)

// 违规代码：报名被拒时逐条返回给调用方
const (
	ViolationCancelled      = "scheduled_activity_cancelled"
	ViolationDeleted        = "activity_deleted"
	ViolationBlacklist      = "blacklisted"
	ViolationRestricted     = "restricted"
	ViolationFull           = "full"
	ViolationSticky         = "sticky"
	ViolationOneADay        = "one_a_day"
	ViolationAdministrative = "administrative"
)

// SignupConflictError 报名校验失败：一次返回全部违规，前端逐条展示
type SignupConflictError struct {
	Violations []dto.SignupViolation
}

func (e *SignupConflictError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "报名被拒：" + strings.Join(msgs, "；")
}

func (e *SignupConflictError) add(code, message string) {
	e.Violations = append(e.Violations, dto.SignupViolation{Code: code, Message: message})
}

// AddUserOptions 报名选项
// Force / NoAfterDeadline 仅管理员可用，由 Handler 层校验角色
type AddUserOptions struct {
	// Force 无视除"活动已删除"外的全部业务规则
	Force bool
	// NoAfterDeadline 锁定节次上的报名不标记为补报
	NoAfterDeadline bool
	// ActorID 操作者（审计与通知），管理员代报时与 userID 不同
	ActorID string
}

// SignupService 报名引擎业务接口
type SignupService interface {
	// AddUser 为用户报名排期活动
	// 同一节次重复报同一排期幂等返回既有记录；换课自动退掉原报名；
	// A/B 联报活动在同日两个节次内原子成对写入
	AddUser(ctx context.Context, userID, scheduledActivityID string, opts AddUserOptions) (*dto.AddSignupResponse, error)
	// RemoveSignup 退课；粘性活动学生不可自退（排期取消除外），管理员不受限
	RemoveSignup(ctx context.Context, signupID string, actorID string, isAdmin bool) error
	GetByID(ctx context.Context, id string) (*dto.SignupResponse, error)
	ListByUser(ctx context.Context, userID string, req *dto.PaginationRequest) ([]dto.SignupResponse, int64, error)
	// Roster 排期名单；受限活动对无权查看者折叠为 hidden_count
	Roster(ctx context.Context, scheduledActivityID string, viewerRole string) (*dto.RosterResponse, error)
	// ListPendingPasses 节次内待审批补报（仅管理员）
	ListPendingPasses(ctx context.Context, blockID string) ([]dto.SignupResponse, error)
	// DecidePass 审批补报：批准则转正并清除缺勤；驳回保留报名并记缺勤
	DecidePass(ctx context.Context, signupID string, accept bool, actorID string) error
}

type signupService struct {
	cfg      *config.Config
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewSignupService 创建 SignupService 实例
func NewSignupService(
	cfg *config.Config,
	repo *repository.Repository,
	notifier NotificationService,
	logger *zap.Logger,
) SignupService {
	return &signupService{cfg: cfg, repo: repo, notifier: notifier, logger: logger}
}

// ════════════════════════════════════════════════════════════
// AddUser — 报名引擎核心
// ════════════════════════════════════════════════════════════
//
// 流程：
//  1. 装载用户与排期（含活动模板、节次、准入关联）
//  2. 活动已删除 → 直接拒绝，force 也不可越过
//  3. 事务外预检：取消 / 黑名单 / 准入 / 粘性 / 一日一次，聚合全部违规
//  4. 事务内：行锁排期 → 复核容量 → 退掉原报名 → 写入新报名
//     联报活动对同日两节次在同一事务内成对执行
//  5. (user_id, block_id) 唯一约束在数据库层兜底并发穿插

func (s *signupService) AddUser(ctx context.Context, userID, scheduledActivityID string, opts AddUserOptions) (*dto.AddSignupResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	sa, err := s.repo.ScheduledActivity.GetByID(ctx, scheduledActivityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduledNotFound
		}
		s.logger.Error("查询排期失败", zap.Error(err))
		return nil, err
	}
	if sa.Block == nil || sa.Activity == nil {
		return nil, ErrScheduledNotFound
	}

	// 活动已删除：任何人不可报名，force 也不行
	if sa.Activity.IsDeleted() {
		conflict := &SignupConflictError{}
		conflict.add(ViolationDeleted, "该活动已被删除，不可报名")
		return nil, conflict
	}

	// 幂等：重复报同一排期
	existing, err := s.repo.Signup.GetByUserAndBlock(ctx, userID, sa.BlockID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询既有报名失败", zap.Error(err))
		return nil, err
	}
	if existing != nil && existing.ScheduledActivityID == scheduledActivityID {
		return &dto.AddSignupResponse{Signup: toSignupResponse(existing)}, nil
	}

	// 预检业务规则（容量留到事务内行锁后复核）
	if !opts.Force {
		conflict := &SignupConflictError{}
		s.checkRules(ctx, user, sa, existing, conflict)
		if len(conflict.Violations) > 0 {
			return nil, conflict
		}
	}

	// A/B 联报：定位同日另一节次上同一活动的排期
	var paired *model.ScheduledActivity
	if sa.IsBothBlocks() {
		paired, err = s.findPairedScheduled(ctx, sa)
		if err != nil {
			return nil, err
		}
	}

	var created, pairedCreated *model.Signup
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		created, err = s.signupInTx(ctx, tx, user, sa, opts)
		if err != nil {
			return err
		}
		if paired != nil {
			pairedCreated, err = s.signupInTx(ctx, tx, user, paired, opts)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var conflict *SignupConflictError
		if !errors.As(err, &conflict) {
			s.logger.Error("报名事务失败",
				zap.String("user_id", userID),
				zap.String("scheduled_activity_id", scheduledActivityID),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("报名成功",
		zap.String("user_id", userID),
		zap.String("scheduled_activity_id", scheduledActivityID),
		zap.String("actor", opts.ActorID),
		zap.Bool("after_deadline", created.AfterDeadline),
		zap.Bool("paired", pairedCreated != nil))

	resp := &dto.AddSignupResponse{Signup: toSignupResponse(created)}
	if pairedCreated != nil {
		resp.Paired = toSignupResponse(pairedCreated)
	}
	return resp, nil
}

// checkRules 聚合事务外可判定的违规
func (s *signupService) checkRules(ctx context.Context, user *model.User, sa *model.ScheduledActivity, existing *model.Signup, conflict *SignupConflictError) {
	activity := sa.Activity

	// 排期已取消
	if sa.IsCancelled() {
		conflict.add(ViolationCancelled, "该排期已取消")
	}

	// 黑名单
	for i := range activity.UsersBlacklisted {
		if activity.UsersBlacklisted[i].UserID == user.UserID {
			conflict.add(ViolationBlacklist, "你已被该活动列入黑名单")
			break
		}
	}

	// 受限活动准入：白名单 / 用户组 / 年级任一通过即放行
	if sa.IsRestricted() && !s.passesRestriction(user, activity) {
		conflict.add(ViolationRestricted, "你不在该活动的准入范围内")
	}

	// 仅管理员代报的活动
	if (sa.Administrative || activity.Administrative) && user.Role == model.RoleStudent {
		conflict.add(ViolationAdministrative, "该活动仅可由管理员代报")
	}

	// 粘性：当前节次已报的活动不许自行换课（原排期已取消则放行）
	if existing != nil && existing.ScheduledActivity != nil {
		old := existing.ScheduledActivity
		if old.IsSticky() && !old.IsCancelled() {
			conflict.add(ViolationSticky, "你已报名的活动不允许换课")
		}
	}

	// 一日一次：同一天另一节次已报同一活动
	if activity.OneADay && sa.Block != nil {
		siblings, err := s.repo.Block.SiblingsSameDay(ctx, sa.Block)
		if err != nil {
			s.logger.Warn("查询同日节次失败", zap.Error(err))
		} else if len(siblings) > 0 {
			ids := make([]string, len(siblings))
			for i := range siblings {
				ids[i] = siblings[i].BlockID
			}
			signups, err := s.repo.Signup.ListByUserOnDate(ctx, user.UserID, ids)
			if err != nil {
				s.logger.Warn("查询同日报名失败", zap.Error(err))
			} else {
				for i := range signups {
					other := signups[i].ScheduledActivity
					if other != nil && other.ActivityID == activity.ActivityID && !other.IsCancelled() {
						conflict.add(ViolationOneADay, "该活动每天只能报名一次")
						break
					}
				}
			}
		}
	}
}

// passesRestriction 受限活动准入判定：任一启用路径命中即通过
// 白名单、用户组、年级三条路径取或，而不是全部满足
func (s *signupService) passesRestriction(user *model.User, activity *model.Activity) bool {
	for i := range activity.UsersAllowed {
		if activity.UsersAllowed[i].UserID == user.UserID {
			return true
		}
	}
	for i := range activity.GroupsAllowed {
		if user.InGroup(activity.GroupsAllowed[i].GroupID) {
			return true
		}
	}
	if activity.HasGradeRestriction() && activity.GradeAllowed(user.Grade(time.Now())) {
		return true
	}
	return false
}

// signupInTx 事务内完成单个排期的报名写入
// 行锁排期行后复核容量，防止并发超报；退掉该节次原报名再写入
func (s *signupService) signupInTx(ctx context.Context, tx *repository.Repository, user *model.User, sa *model.ScheduledActivity, opts AddUserOptions) (*model.Signup, error) {
	locked, err := tx.ScheduledActivity.GetByIDForUpdate(ctx, sa.ScheduledActivityID)
	if err != nil {
		return nil, err
	}

	// 容量复核（-1 不限；force 越过）
	if !opts.Force {
		capacity := locked.TrueCapacity()
		if capacity != model.CapacityUnlimited {
			count, err := tx.Signup.CountByScheduledActivity(ctx, locked.ScheduledActivityID)
			if err != nil {
				return nil, err
			}
			if count >= int64(capacity) {
				conflict := &SignupConflictError{}
				conflict.add(ViolationFull, fmt.Sprintf("「%s」已满员（%d/%d）", locked.DisplayName(), count, capacity))
				return nil, conflict
			}
		}
	}

	// 同一节次原报名让位（联报的第二节次同理）
	existing, err := tx.Signup.GetByUserAndBlock(ctx, user.UserID, locked.BlockID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.ScheduledActivityID == locked.ScheduledActivityID {
			return existing, nil
		}
		if err := tx.Signup.Delete(ctx, existing.SignupID); err != nil {
			return nil, err
		}
	}

	afterDeadline := false
	if locked.Block != nil && locked.Block.Locked && !opts.NoAfterDeadline {
		afterDeadline = true
	}

	signup := &model.Signup{
		UserID:              user.UserID,
		ScheduledActivityID: locked.ScheduledActivityID,
		BlockID:             locked.BlockID,
		AfterDeadline:       afterDeadline,
	}
	signup.CreatedBy = &opts.ActorID
	signup.UpdatedBy = &opts.ActorID
	if err := tx.Signup.Create(ctx, signup); err != nil {
		return nil, err
	}
	signup.ScheduledActivity = locked
	signup.Block = locked.Block
	return signup, nil
}

// findPairedScheduled 联报活动在同日另一节次的排期；不存在时返回 nil
func (s *signupService) findPairedScheduled(ctx context.Context, sa *model.ScheduledActivity) (*model.ScheduledActivity, error) {
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
		if !paired.IsCancelled() {
			return paired, nil
		}
	}
	return nil, nil
}

// ────────────────────── RemoveSignup ──────────────────────

func (s *signupService) RemoveSignup(ctx context.Context, signupID string, actorID string, isAdmin bool) error {
	signup, err := s.repo.Signup.GetByID(ctx, signupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSignupNotFound
		}
		s.logger.Error("查询报名失败", zap.String("id", signupID), zap.Error(err))
		return err
	}

	if !isAdmin {
		if signup.UserID != actorID {
			return ErrSignupNotSelf
		}
		if sa := signup.ScheduledActivity; sa != nil && sa.IsSticky() && !sa.IsCancelled() {
			return ErrSignupSticky
		}
	}

	// 联报活动整体退：同日另一节次的成对报名一并删除
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Signup.Delete(ctx, signupID); err != nil {
			return err
		}
		sa := signup.ScheduledActivity
		if sa == nil || !sa.IsBothBlocks() || signup.Block == nil {
			return nil
		}
		siblings, err := tx.Block.SiblingsSameDay(ctx, signup.Block)
		if err != nil {
			return err
		}
		for i := range siblings {
			other, err := tx.Signup.GetByUserAndBlock(ctx, signup.UserID, siblings[i].BlockID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			if other.ScheduledActivity != nil && other.ScheduledActivity.ActivityID == sa.ActivityID {
				if err := tx.Signup.Delete(ctx, other.SignupID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ────────────────────── 查询 ──────────────────────

func (s *signupService) GetByID(ctx context.Context, id string) (*dto.SignupResponse, error) {
	signup, err := s.repo.Signup.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSignupNotFound
		}
		s.logger.Error("查询报名失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSignupResponse(signup), nil
}

func (s *signupService) ListByUser(ctx context.Context, userID string, req *dto.PaginationRequest) ([]dto.SignupResponse, int64, error) {
	signups, total, err := s.repo.Signup.ListByUser(ctx, userID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户报名失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.SignupResponse, len(signups))
	for i := range signups {
		out[i] = *toSignupResponse(&signups[i])
	}
	return out, total, nil
}

func (s *signupService) Roster(ctx context.Context, scheduledActivityID string, viewerRole string) (*dto.RosterResponse, error) {
	sa, err := s.repo.ScheduledActivity.GetByID(ctx, scheduledActivityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduledNotFound
		}
		s.logger.Error("查询排期失败", zap.Error(err))
		return nil, err
	}

	signups, err := s.repo.Signup.ListByScheduledActivity(ctx, scheduledActivityID)
	if err != nil {
		s.logger.Error("查询名单失败", zap.Error(err))
		return nil, err
	}

	isStaff := viewerRole == model.RoleAdmin || viewerRole == model.RoleTeacher
	resp := &dto.RosterResponse{
		ScheduledActivityID: scheduledActivityID,
		Viewable:            []dto.RosterEntry{},
		Capacity:            sa.TrueCapacity(),
	}

	// 受限活动的名单只对教职工展开
	if sa.IsRestricted() && !isStaff {
		resp.HiddenCount = len(signups)
		return resp, nil
	}

	var absences map[string]int64
	if isStaff {
		userIDs := make([]string, len(signups))
		for i := range signups {
			userIDs[i] = signups[i].UserID
		}
		absences, err = s.repo.Signup.CountAbsencesBatch(ctx, userIDs)
		if err != nil {
			s.logger.Warn("批量统计缺勤失败", zap.Error(err))
		}
	}

	for i := range signups {
		sg := &signups[i]
		entry := dto.RosterEntry{
			SignupID:      sg.SignupID,
			AfterDeadline: sg.AfterDeadline,
			PassAccepted:  sg.PassAccepted,
			WasAbsent:     sg.WasAbsent,
		}
		if sg.User != nil {
			entry.User = toUserBrief(sg.User)
		}
		if absences != nil {
			entry.AbsenceCount = absences[sg.UserID]
		}
		resp.Viewable = append(resp.Viewable, entry)
	}
	return resp, nil
}

// ────────────────────── 补报审批 ──────────────────────

func (s *signupService) ListPendingPasses(ctx context.Context, blockID string) ([]dto.SignupResponse, error) {
	signups, err := s.repo.Signup.ListPendingPasses(ctx, blockID)
	if err != nil {
		s.logger.Error("查询待审批补报失败", zap.String("block_id", blockID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.SignupResponse, len(signups))
	for i := range signups {
		out[i] = *toSignupResponse(&signups[i])
	}
	return out, nil
}

func (s *signupService) DecidePass(ctx context.Context, signupID string, accept bool, actorID string) error {
	signup, err := s.repo.Signup.GetByID(ctx, signupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSignupNotFound
		}
		return err
	}
	if !signup.IsPendingPass() {
		return ErrSignupNotPending
	}

	name := ""
	if signup.ScheduledActivity != nil {
		name = signup.ScheduledActivity.DisplayName()
	}

	if accept {
		// 转正：保留席位并抹掉此前的补报缺勤标记
		err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			if err := tx.Signup.SetPassAccepted(ctx, signupID, true, actorID); err != nil {
				return err
			}
			return tx.Signup.SetAbsent(ctx, signupID, false, actorID)
		})
		if err != nil {
			s.logger.Error("批准补报失败", zap.String("id", signupID), zap.Error(err))
			return err
		}
		s.notifier.Notify(ctx, signup.UserID, model.NotifyPassResult,
			"补报已批准", fmt.Sprintf("你对「%s」的补报已批准。", name), "signup", signupID)
		return nil
	}

	// 驳回：报名保留并记缺勤，计入考勤历史
	if err := s.repo.Signup.SetAbsent(ctx, signupID, true, actorID); err != nil {
		s.logger.Error("驳回补报失败", zap.String("id", signupID), zap.Error(err))
		return err
	}
	s.notifier.Notify(ctx, signup.UserID, model.NotifyPassResult,
		"补报被驳回", fmt.Sprintf("你对「%s」的补报未通过，本次计为缺勤。", name), "signup", signupID)
	return nil
}

// ── DTO 转换 ──

func toSignupResponse(sg *model.Signup) *dto.SignupResponse {
	resp := &dto.SignupResponse{
		ID:                sg.SignupID,
		AfterDeadline:     sg.AfterDeadline,
		PassAccepted:      sg.PassAccepted,
		WasAbsent:         sg.WasAbsent,
		ArchivedWasAbsent: sg.ArchivedWasAbsent,
		CreatedAt:         sg.CreatedAt.Format(timeLayout),
	}
	if sg.User != nil {
		brief := toUserBrief(sg.User)
		resp.User = &brief
	}
	if sg.Block != nil {
		brief := toBlockBrief(sg.Block)
		resp.Block = &brief
	}
	if sg.ScheduledActivity != nil {
		sa := sg.ScheduledActivity
		saResp := &dto.ScheduledActivityResponse{
			ID:              sa.ScheduledActivityID,
			Status:          sa.Status,
			AttendanceTaken: sa.AttendanceTaken,
			DisplayName:     sa.DisplayName(),
			TrueCapacity:    sa.TrueCapacity(),
			Restricted:      sa.IsRestricted(),
			Sticky:          sa.IsSticky(),
			BothBlocks:      sa.IsBothBlocks(),
		}
		if sa.Activity != nil {
			saResp.Activity = toActivityBrief(sa.Activity)
		}
		if sa.Block != nil {
			saResp.Block = toBlockBrief(sa.Block)
		}
		resp.ScheduledActivity = saResp
	}
	return resp
}
