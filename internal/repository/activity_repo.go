package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-portal/backend/internal/model"
	pkgerrors "campus-portal/backend/pkg/errors"
)

// ActivityRepository 活动模板数据访问接口
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	// GetByID 加载活动及全部准入关联（教室、指导教师、准入组、白名单、黑名单）
	GetByID(ctx context.Context, id string) (*model.Activity, error)
	List(ctx context.Context, includeDeleted bool, offset, limit int) ([]model.Activity, int64, error)
	Update(ctx context.Context, activity *model.Activity) error
	// SoftDelete 标记删除：历史排期与报名保留
	SoftDelete(ctx context.Context, id string, deletedBy string) error
	Restore(ctx context.Context, id string, updatedBy string) error
	// HardDelete 物理删除：级联删除全部排期（外键 ON DELETE CASCADE）
	HardDelete(ctx context.Context, id string) error

	ReplaceRooms(ctx context.Context, activityID string, roomIDs []string) error
	ReplaceSponsors(ctx context.Context, activityID string, sponsorIDs []string) error
	ReplaceGroupsAllowed(ctx context.Context, activityID string, groupIDs []string) error
	ReplaceUsersAllowed(ctx context.Context, activityID string, userIDs []string) error
	ReplaceUsersBlacklisted(ctx context.Context, activityID string, userIDs []string) error
}

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo 创建 ActivityRepository 实例
func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepo) GetByID(ctx context.Context, id string) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).
		Preload("Rooms").
		Preload("Sponsors").
		Preload("GroupsAllowed").
		Preload("UsersAllowed").
		Preload("UsersBlacklisted").
		Where("activity_id = ?", id).
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepo) List(ctx context.Context, includeDeleted bool, offset, limit int) ([]model.Activity, int64, error) {
	var activities []model.Activity
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Activity{})
	if !includeDeleted {
		db = db.Where("status = ?", model.ActivityStatusActive)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Rooms").Preload("Sponsors").
		Order("name ASC").Offset(offset).Limit(limit).
		Find(&activities).Error
	return activities, total, err
}

func (r *activityRepo) Update(ctx context.Context, activity *model.Activity) error {
	oldVersion := activity.Version
	result := r.db.WithContext(ctx).
		Model(activity).
		Where("activity_id = ? AND version = ?", activity.ActivityID, oldVersion).
		Updates(map[string]interface{}{
			"name":               activity.Name,
			"description":        activity.Description,
			"default_capacity":   activity.DefaultCapacity,
			"status":             activity.Status,
			"restricted":         activity.Restricted,
			"presign":            activity.Presign,
			"one_a_day":          activity.OneADay,
			"both_blocks":        activity.BothBlocks,
			"sticky":             activity.Sticky,
			"special":            activity.Special,
			"administrative":     activity.Administrative,
			"freshmen_allowed":   activity.FreshmenAllowed,
			"sophomores_allowed": activity.SophomoresAllowed,
			"juniors_allowed":    activity.JuniorsAllowed,
			"seniors_allowed":    activity.SeniorsAllowed,
			"updated_by":         activity.UpdatedBy,
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	activity.Version = oldVersion + 1
	return nil
}

func (r *activityRepo) SoftDelete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("activity_id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.ActivityStatusDeleted,
			"updated_by": deletedBy,
		}).Error
}

func (r *activityRepo) Restore(ctx context.Context, id string, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("activity_id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.ActivityStatusActive,
			"updated_by": updatedBy,
		}).Error
}

func (r *activityRepo) HardDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("activity_id = ?", id).
		Delete(&model.Activity{}).Error
}

// ── 关联集合替换 ──

func (r *activityRepo) ReplaceRooms(ctx context.Context, activityID string, roomIDs []string) error {
	return r.replaceAssociation(ctx, activityID, "Rooms", toRooms(roomIDs))
}

func (r *activityRepo) ReplaceSponsors(ctx context.Context, activityID string, sponsorIDs []string) error {
	sponsors := make([]model.Sponsor, len(sponsorIDs))
	for i, id := range sponsorIDs {
		sponsors[i] = model.Sponsor{SponsorID: id}
	}
	return r.replaceAssociation(ctx, activityID, "Sponsors", sponsors)
}

func (r *activityRepo) ReplaceGroupsAllowed(ctx context.Context, activityID string, groupIDs []string) error {
	groups := make([]model.Group, len(groupIDs))
	for i, id := range groupIDs {
		groups[i] = model.Group{GroupID: id}
	}
	return r.replaceAssociation(ctx, activityID, "GroupsAllowed", groups)
}

func (r *activityRepo) ReplaceUsersAllowed(ctx context.Context, activityID string, userIDs []string) error {
	return r.replaceAssociation(ctx, activityID, "UsersAllowed", toUsers(userIDs))
}

func (r *activityRepo) ReplaceUsersBlacklisted(ctx context.Context, activityID string, userIDs []string) error {
	return r.replaceAssociation(ctx, activityID, "UsersBlacklisted", toUsers(userIDs))
}

func (r *activityRepo) replaceAssociation(ctx context.Context, activityID, name string, values interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Activity{ActivityID: activityID}).
		Association(name).
		Replace(values)
}

func toRooms(ids []string) []model.Room {
	rooms := make([]model.Room, len(ids))
	for i, id := range ids {
		rooms[i] = model.Room{RoomID: id}
	}
	return rooms
}

func toUsers(ids []string) []model.User {
	users := make([]model.User, len(ids))
	for i, id := range ids {
		users[i] = model.User{UserID: id}
	}
	return users
}
