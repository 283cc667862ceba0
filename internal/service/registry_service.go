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

// ── 教室 / 指导教师 / 用户组业务错误 ──

var (
	ErrRoomNotFound    = errors.New("教室不存在")
	ErrSponsorNotFound = errors.New("指导教师不存在")
	ErrGroupNotFound   = errors.New("用户组不存在")
)

// RegistryService 基础资源（教室、指导教师、用户组）业务接口
type RegistryService interface {
	CreateRoom(ctx context.Context, req *dto.CreateRoomRequest, actorID string) (*dto.RoomResponse, error)
	GetRoom(ctx context.Context, id string) (*dto.RoomResponse, error)
	ListRooms(ctx context.Context) ([]dto.RoomResponse, error)
	UpdateRoom(ctx context.Context, id string, req *dto.UpdateRoomRequest, actorID string) (*dto.RoomResponse, error)
	DeleteRoom(ctx context.Context, id string) error

	CreateSponsor(ctx context.Context, req *dto.CreateSponsorRequest, actorID string) (*dto.SponsorResponse, error)
	GetSponsor(ctx context.Context, id string) (*dto.SponsorResponse, error)
	ListSponsors(ctx context.Context) ([]dto.SponsorResponse, error)
	UpdateSponsor(ctx context.Context, id string, req *dto.UpdateSponsorRequest, actorID string) (*dto.SponsorResponse, error)
	DeleteSponsor(ctx context.Context, id string) error

	CreateGroup(ctx context.Context, req *dto.CreateGroupRequest, actorID string) (*dto.GroupResponse, error)
	GetGroup(ctx context.Context, id string) (*dto.GroupResponse, error)
	ListGroups(ctx context.Context) ([]dto.GroupResponse, error)
	AddGroupMembers(ctx context.Context, groupID string, req *dto.GroupMemberRequest) error
	RemoveGroupMembers(ctx context.Context, groupID string, req *dto.GroupMemberRequest) error
	DeleteGroup(ctx context.Context, id string) error
}

type registryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRegistryService 创建 RegistryService 实例
func NewRegistryService(repo *repository.Repository, logger *zap.Logger) RegistryService {
	return &registryService{repo: repo, logger: logger}
}

// ────────────────────── 教室 ──────────────────────

func (s *registryService) CreateRoom(ctx context.Context, req *dto.CreateRoomRequest, actorID string) (*dto.RoomResponse, error) {
	room := &model.Room{
		Name:     req.Name,
		Capacity: req.Capacity,
	}
	room.CreatedBy = &actorID
	room.UpdatedBy = &actorID
	if err := s.repo.Room.Create(ctx, room); err != nil {
		s.logger.Error("创建教室失败", zap.Error(err))
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *registryService) GetRoom(ctx context.Context, id string) (*dto.RoomResponse, error) {
	room, err := s.repo.Room.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询教室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *registryService) ListRooms(ctx context.Context) ([]dto.RoomResponse, error) {
	rooms, err := s.repo.Room.List(ctx)
	if err != nil {
		s.logger.Error("查询教室列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.RoomResponse, len(rooms))
	for i := range rooms {
		out[i] = *toRoomResponse(&rooms[i])
	}
	return out, nil
}

func (s *registryService) UpdateRoom(ctx context.Context, id string, req *dto.UpdateRoomRequest, actorID string) (*dto.RoomResponse, error) {
	room, err := s.repo.Room.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	room.UpdatedBy = &actorID
	if err := s.repo.Room.Update(ctx, room); err != nil {
		s.logger.Error("更新教室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *registryService) DeleteRoom(ctx context.Context, id string) error {
	if err := s.repo.Room.Delete(ctx, id); err != nil {
		s.logger.Error("删除教室失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 指导教师 ──────────────────────

func (s *registryService) CreateSponsor(ctx context.Context, req *dto.CreateSponsorRequest, actorID string) (*dto.SponsorResponse, error) {
	sponsor := &model.Sponsor{
		Name:             req.Name,
		UserID:           req.UserID,
		OnlineAttendance: req.OnlineAttendance,
	}
	sponsor.CreatedBy = &actorID
	sponsor.UpdatedBy = &actorID
	if err := s.repo.Sponsor.Create(ctx, sponsor); err != nil {
		s.logger.Error("创建指导教师失败", zap.Error(err))
		return nil, err
	}
	return toSponsorResponse(sponsor), nil
}

func (s *registryService) GetSponsor(ctx context.Context, id string) (*dto.SponsorResponse, error) {
	sponsor, err := s.repo.Sponsor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSponsorNotFound
		}
		s.logger.Error("查询指导教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSponsorResponse(sponsor), nil
}

func (s *registryService) ListSponsors(ctx context.Context) ([]dto.SponsorResponse, error) {
	sponsors, err := s.repo.Sponsor.List(ctx)
	if err != nil {
		s.logger.Error("查询指导教师列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.SponsorResponse, len(sponsors))
	for i := range sponsors {
		out[i] = *toSponsorResponse(&sponsors[i])
	}
	return out, nil
}

func (s *registryService) UpdateSponsor(ctx context.Context, id string, req *dto.UpdateSponsorRequest, actorID string) (*dto.SponsorResponse, error) {
	sponsor, err := s.repo.Sponsor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSponsorNotFound
		}
		return nil, err
	}
	if req.Name != nil {
		sponsor.Name = *req.Name
	}
	if req.UserID != nil {
		sponsor.UserID = req.UserID
	}
	if req.OnlineAttendance != nil {
		sponsor.OnlineAttendance = *req.OnlineAttendance
	}
	sponsor.UpdatedBy = &actorID
	if err := s.repo.Sponsor.Update(ctx, sponsor); err != nil {
		s.logger.Error("更新指导教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSponsorResponse(sponsor), nil
}

func (s *registryService) DeleteSponsor(ctx context.Context, id string) error {
	if err := s.repo.Sponsor.Delete(ctx, id); err != nil {
		s.logger.Error("删除指导教师失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 用户组 ──────────────────────

func (s *registryService) CreateGroup(ctx context.Context, req *dto.CreateGroupRequest, actorID string) (*dto.GroupResponse, error) {
	group := &model.Group{
		Name:        req.Name,
		Description: req.Description,
	}
	group.CreatedBy = &actorID
	group.UpdatedBy = &actorID
	if err := s.repo.Group.Create(ctx, group); err != nil {
		s.logger.Error("创建用户组失败", zap.Error(err))
		return nil, err
	}
	return toGroupResponse(group, nil), nil
}

func (s *registryService) GetGroup(ctx context.Context, id string) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询用户组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	members, err := s.repo.Group.ListMembers(ctx, id)
	if err != nil {
		s.logger.Error("查询组成员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toGroupResponse(group, members), nil
}

func (s *registryService) ListGroups(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.repo.Group.List(ctx)
	if err != nil {
		s.logger.Error("查询用户组列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.GroupResponse, len(groups))
	for i := range groups {
		out[i] = *toGroupResponse(&groups[i], nil)
	}
	return out, nil
}

func (s *registryService) AddGroupMembers(ctx context.Context, groupID string, req *dto.GroupMemberRequest) error {
	if _, err := s.repo.Group.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	for _, userID := range req.UserIDs {
		if err := s.repo.Group.AddMember(ctx, groupID, userID); err != nil {
			s.logger.Error("添加组成员失败",
				zap.String("group_id", groupID), zap.String("user_id", userID), zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *registryService) RemoveGroupMembers(ctx context.Context, groupID string, req *dto.GroupMemberRequest) error {
	for _, userID := range req.UserIDs {
		if err := s.repo.Group.RemoveMember(ctx, groupID, userID); err != nil {
			s.logger.Error("移除组成员失败",
				zap.String("group_id", groupID), zap.String("user_id", userID), zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *registryService) DeleteGroup(ctx context.Context, id string) error {
	if err := s.repo.Group.Delete(ctx, id); err != nil {
		s.logger.Error("删除用户组失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── DTO 转换 ──

func toRoomResponse(r *model.Room) *dto.RoomResponse {
	return &dto.RoomResponse{
		ID:        r.RoomID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		CreatedAt: r.CreatedAt.Format(timeLayout),
		UpdatedAt: r.UpdatedAt.Format(timeLayout),
	}
}

func toSponsorResponse(sp *model.Sponsor) *dto.SponsorResponse {
	var user *dto.UserBrief
	if sp.User != nil {
		brief := toUserBrief(sp.User)
		user = &brief
	}
	return &dto.SponsorResponse{
		ID:               sp.SponsorID,
		Name:             sp.Name,
		User:             user,
		OnlineAttendance: sp.OnlineAttendance,
		CreatedAt:        sp.CreatedAt.Format(timeLayout),
		UpdatedAt:        sp.UpdatedAt.Format(timeLayout),
	}
}

func toGroupResponse(g *model.Group, members []model.User) *dto.GroupResponse {
	var briefs []dto.UserBrief
	for i := range members {
		briefs = append(briefs, toUserBrief(&members[i]))
	}
	return &dto.GroupResponse{
		ID:          g.GroupID,
		Name:        g.Name,
		Description: g.Description,
		Members:     briefs,
		CreatedAt:   g.CreatedAt.Format(timeLayout),
	}
}
