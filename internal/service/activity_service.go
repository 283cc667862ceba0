package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
)

// ── 活动模块业务错误 ──

var (
	ErrActivityNotFound   = errors.New("活动不存在")
	ErrActivityNotDeleted = errors.New("活动未处于删除状态")
)

// ActivityService 活动模板业务接口
type ActivityService interface {
	Create(ctx context.Context, req *dto.CreateActivityRequest, actorID string) (*dto.ActivityResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ActivityResponse, error)
	List(ctx context.Context, req *dto.ActivityListRequest) ([]dto.ActivityResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateActivityRequest, actorID string) (*dto.ActivityResponse, error)
	// Delete 软删除：历史排期与报名保留，新报名被拒
	Delete(ctx context.Context, id string, actorID string) error
	Restore(ctx context.Context, id string, actorID string) error
}

type activityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewActivityService 创建 ActivityService 实例
func NewActivityService(repo *repository.Repository, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger}
}

func (s *activityService) Create(ctx context.Context, req *dto.CreateActivityRequest, actorID string) (*dto.ActivityResponse, error) {
	activity := &model.Activity{
		Name:            req.Name,
		Description:     req.Description,
		DefaultCapacity: req.DefaultCapacity,
		Status:          model.ActivityStatusActive,

		Restricted:     req.Restricted,
		Presign:        req.Presign,
		OneADay:        req.OneADay,
		BothBlocks:     req.BothBlocks,
		Sticky:         req.Sticky,
		Special:        req.Special,
		Administrative: req.Administrative,

		FreshmenAllowed:   req.FreshmenAllowed,
		SophomoresAllowed: req.SophomoresAllowed,
		JuniorsAllowed:    req.JuniorsAllowed,
		SeniorsAllowed:    req.SeniorsAllowed,
	}
	activity.CreatedBy = &actorID
	activity.UpdatedBy = &actorID

	if err := s.repo.Activity.Create(ctx, activity); err != nil {
		s.logger.Error("创建活动失败", zap.Error(err))
		return nil, err
	}

	if err := s.replaceAssociations(ctx, activity.ActivityID,
		req.RoomIDs, req.SponsorIDs, req.GroupsAllowed, req.UsersAllowed, req.UsersBlacklisted); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, activity.ActivityID)
}

func (s *activityService) GetByID(ctx context.Context, id string) (*dto.ActivityResponse, error) {
	activity, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		s.logger.Error("查询活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toActivityResponse(activity), nil
}

func (s *activityService) List(ctx context.Context, req *dto.ActivityListRequest) ([]dto.ActivityResponse, int64, error) {
	activities, total, err := s.repo.Activity.List(ctx, req.IncludeDeleted, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询活动列表失败", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.ActivityResponse, len(activities))
	for i := range activities {
		out[i] = *toActivityResponse(&activities[i])
	}
	return out, total, nil
}

func (s *activityService) Update(ctx context.Context, id string, req *dto.UpdateActivityRequest, actorID string) (*dto.ActivityResponse, error) {
	activity, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		s.logger.Error("查询活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		activity.Name = *req.Name
	}
	if req.Description != nil {
		activity.Description = *req.Description
	}
	if req.DefaultCapacity != nil {
		activity.DefaultCapacity = *req.DefaultCapacity
	}
	applyBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	applyBool(&activity.Restricted, req.Restricted)
	applyBool(&activity.Presign, req.Presign)
	applyBool(&activity.OneADay, req.OneADay)
	applyBool(&activity.BothBlocks, req.BothBlocks)
	applyBool(&activity.Sticky, req.Sticky)
	applyBool(&activity.Special, req.Special)
	applyBool(&activity.Administrative, req.Administrative)
	applyBool(&activity.FreshmenAllowed, req.FreshmenAllowed)
	applyBool(&activity.SophomoresAllowed, req.SophomoresAllowed)
	applyBool(&activity.JuniorsAllowed, req.JuniorsAllowed)
	applyBool(&activity.SeniorsAllowed, req.SeniorsAllowed)

	activity.Version = req.Version
	activity.UpdatedBy = &actorID

	if err := s.repo.Activity.Update(ctx, activity); err != nil {
		s.logger.Error("更新活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := s.replaceAssociations(ctx, id,
		req.RoomIDs, req.SponsorIDs, req.GroupsAllowed, req.UsersAllowed, req.UsersBlacklisted); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func (s *activityService) Delete(ctx context.Context, id string, actorID string) error {
	if _, err := s.repo.Activity.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}
	if err := s.repo.Activity.SoftDelete(ctx, id, actorID); err != nil {
		s.logger.Error("删除活动失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *activityService) Restore(ctx context.Context, id string, actorID string) error {
	activity, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}
	if !activity.IsDeleted() {
		return ErrActivityNotDeleted
	}
	if err := s.repo.Activity.Restore(ctx, id, actorID); err != nil {
		s.logger.Error("恢复活动失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// replaceAssociations 替换非 nil 的关联集合，nil 表示不变
func (s *activityService) replaceAssociations(ctx context.Context, id string,
	rooms, sponsors, groupsAllowed, usersAllowed, usersBlacklisted []string) error {

	type replacement struct {
		name string
		ids  []string
		fn   func(context.Context, string, []string) error
	}
	for _, rep := range []replacement{
		{"rooms", rooms, s.repo.Activity.ReplaceRooms},
		{"sponsors", sponsors, s.repo.Activity.ReplaceSponsors},
		{"groups_allowed", groupsAllowed, s.repo.Activity.ReplaceGroupsAllowed},
		{"users_allowed", usersAllowed, s.repo.Activity.ReplaceUsersAllowed},
		{"users_blacklisted", usersBlacklisted, s.repo.Activity.ReplaceUsersBlacklisted},
	} {
		if rep.ids == nil {
			continue
		}
		if err := rep.fn(ctx, id, rep.ids); err != nil {
			s.logger.Error("替换活动关联失败",
				zap.String("id", id), zap.String("association", rep.name), zap.Error(err))
			return err
		}
	}
	return nil
}

// ── DTO 转换 ──

func toActivityResponse(a *model.Activity) *dto.ActivityResponse {
	resp := &dto.ActivityResponse{
		ID:              a.ActivityID,
		Name:            a.Name,
		Description:     a.Description,
		DefaultCapacity: a.DefaultCapacity,
		Status:          a.Status,
		ActivityFlags: dto.ActivityFlags{
			Restricted:     a.Restricted,
			Presign:        a.Presign,
			OneADay:        a.OneADay,
			BothBlocks:     a.BothBlocks,
			Sticky:         a.Sticky,
			Special:        a.Special,
			Administrative: a.Administrative,
		},
		GradeFlags: dto.GradeFlags{
			FreshmenAllowed:   a.FreshmenAllowed,
			SophomoresAllowed: a.SophomoresAllowed,
			JuniorsAllowed:    a.JuniorsAllowed,
			SeniorsAllowed:    a.SeniorsAllowed,
		},
		Rooms:    toRoomBriefs(a.Rooms),
		Sponsors: toSponsorBriefs(a.Sponsors),
		Version:  a.Version,
		CreatedAt: a.CreatedAt.Format(timeLayout),
		UpdatedAt: a.UpdatedAt.Format(timeLayout),
	}
	for i := range a.GroupsAllowed {
		resp.GroupsAllowed = append(resp.GroupsAllowed, toGroupBrief(&a.GroupsAllowed[i]))
	}
	for i := range a.UsersAllowed {
		resp.UsersAllowed = append(resp.UsersAllowed, toUserBrief(&a.UsersAllowed[i]))
	}
	for i := range a.UsersBlacklisted {
		resp.UsersBlacklisted = append(resp.UsersBlacklisted, toUserBrief(&a.UsersBlacklisted[i]))
	}
	return resp
}
