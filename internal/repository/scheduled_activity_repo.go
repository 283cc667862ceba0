package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-portal/backend/internal/model"
	pkgerrors "campus-portal/backend/pkg/errors"
)

// ScheduledActivityRepository 排期活动数据访问接口
type ScheduledActivityRepository interface {
	// GetOrCreate 获取或创建 (节次, 活动) 排期，返回 created 表示是否新建
	GetOrCreate(ctx context.Context, blockID, activityID string, actorID *string) (*model.ScheduledActivity, bool, error)
	// GetByID 加载排期及节次、活动模板与全部覆盖关联
	GetByID(ctx context.Context, id string) (*model.ScheduledActivity, error)
	// GetByIDForUpdate 加行锁读取排期，报名容量检查必须在事务内走这条路径
	GetByIDForUpdate(ctx context.Context, id string) (*model.ScheduledActivity, error)
	GetByBlockAndActivity(ctx context.Context, blockID, activityID string) (*model.ScheduledActivity, error)
	ListByBlock(ctx context.Context, blockID string) ([]model.ScheduledActivity, error)
	ListByActivity(ctx context.Context, activityID string, offset, limit int) ([]model.ScheduledActivity, int64, error)
	// ListCancelledWithoutAttendance 指定节次内已取消且未记考勤的排期（考勤快捷通道）
	ListCancelledWithoutAttendance(ctx context.Context, blockID string) ([]model.ScheduledActivity, error)
	Update(ctx context.Context, sa *model.ScheduledActivity) error
	SetStatus(ctx context.Context, id, status string, updatedBy string) error
	SetAttendanceTaken(ctx context.Context, id string, taken bool, updatedBy string) error
	ReplaceRooms(ctx context.Context, id string, roomIDs []string) error
	ReplaceSponsors(ctx context.Context, id string, sponsorIDs []string) error
	Delete(ctx context.Context, id string) error
}

type scheduledActivityRepo struct {
	db *gorm.DB
}

// NewScheduledActivityRepo 创建 ScheduledActivityRepository 实例
func NewScheduledActivityRepo(db *gorm.DB) ScheduledActivityRepository {
	return &scheduledActivityRepo{db: db}
}

func (r *scheduledActivityRepo) GetOrCreate(ctx context.Context, blockID, activityID string, actorID *string) (*model.ScheduledActivity, bool, error) {
	existing, err := r.GetByBlockAndActivity(ctx, blockID, activityID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	sa := &model.ScheduledActivity{
		BlockID:    blockID,
		ActivityID: activityID,
		Status:     model.ScheduledStatusActive,
	}
	sa.CreatedBy = actorID
	sa.UpdatedBy = actorID
	if err := r.db.WithContext(ctx).Create(sa).Error; err != nil {
		// 并发创建撞唯一约束时回退到读取
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, gerr := r.GetByBlockAndActivity(ctx, blockID, activityID)
			if gerr != nil {
				return nil, false, gerr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	created, err := r.GetByID(ctx, sa.ScheduledActivityID)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (r *scheduledActivityRepo) GetByID(ctx context.Context, id string) (*model.ScheduledActivity, error) {
	var sa model.ScheduledActivity
	err := r.db.WithContext(ctx).
		Preload("Block").
		Preload("Activity").
		Preload("Activity.Rooms").
		Preload("Activity.Sponsors").
		Preload("Activity.GroupsAllowed").
		Preload("Activity.UsersAllowed").
		Preload("Activity.UsersBlacklisted").
		Preload("Rooms").
		Preload("Sponsors").
		Where("scheduled_activity_id = ?", id).
		First(&sa).Error
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

func (r *scheduledActivityRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.ScheduledActivity, error) {
	var sa model.ScheduledActivity
	// 先锁行再补关联，Preload 不能和 FOR UPDATE 同一条语句
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scheduled_activity_id = ?", id).
		First(&sa).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *scheduledActivityRepo) GetByBlockAndActivity(ctx context.Context, blockID, activityID string) (*model.ScheduledActivity, error) {
	var sa model.ScheduledActivity
	err := r.db.WithContext(ctx).
		Preload("Block").
		Preload("Activity").
		Preload("Activity.Rooms").
		Preload("Rooms").
		Where("block_id = ? AND activity_id = ?", blockID, activityID).
		First(&sa).Error
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

func (r *scheduledActivityRepo) ListByBlock(ctx context.Context, blockID string) ([]model.ScheduledActivity, error) {
	var list []model.ScheduledActivity
	err := r.db.WithContext(ctx).
		Preload("Activity").
		Preload("Activity.Rooms").
		Preload("Activity.Sponsors").
		Preload("Rooms").
		Preload("Sponsors").
		Where("block_id = ?", blockID).
		Find(&list).Error
	return list, err
}

func (r *scheduledActivityRepo) ListByActivity(ctx context.Context, activityID string, offset, limit int) ([]model.ScheduledActivity, int64, error) {
	var list []model.ScheduledActivity
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ScheduledActivity{}).Where("activity_id = ?", activityID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Block").
		Joins("JOIN blocks ON blocks.block_id = scheduled_activities.block_id").
		Order("blocks.date DESC, blocks.block_letter ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *scheduledActivityRepo) ListCancelledWithoutAttendance(ctx context.Context, blockID string) ([]model.ScheduledActivity, error) {
	var list []model.ScheduledActivity
	err := r.db.WithContext(ctx).
		Where("block_id = ? AND status = ? AND attendance_taken = false",
			blockID, model.ScheduledStatusCancelled).
		Find(&list).Error
	return list, err
}

func (r *scheduledActivityRepo) Update(ctx context.Context, sa *model.ScheduledActivity) error {
	oldVersion := sa.Version
	result := r.db.WithContext(ctx).
		Model(sa).
		Where("scheduled_activity_id = ? AND version = ?", sa.ScheduledActivityID, oldVersion).
		Updates(map[string]interface{}{
			"capacity":       sa.Capacity,
			"title":          sa.Title,
			"comment":        sa.Comment,
			"admin_comments": sa.AdminComments,
			"restricted":     sa.Restricted,
			"sticky":         sa.Sticky,
			"both_blocks":    sa.BothBlocks,
			"special":        sa.Special,
			"administrative": sa.Administrative,
			"updated_by":     sa.UpdatedBy,
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	sa.Version = oldVersion + 1
	return nil
}

func (r *scheduledActivityRepo) SetStatus(ctx context.Context, id, status string, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ScheduledActivity{}).
		Where("scheduled_activity_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		}).Error
}

func (r *scheduledActivityRepo) SetAttendanceTaken(ctx context.Context, id string, taken bool, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ScheduledActivity{}).
		Where("scheduled_activity_id = ?", id).
		Updates(map[string]interface{}{
			"attendance_taken": taken,
			"updated_by":       updatedBy,
		}).Error
}

func (r *scheduledActivityRepo) ReplaceRooms(ctx context.Context, id string, roomIDs []string) error {
	return r.db.WithContext(ctx).
		Model(&model.ScheduledActivity{ScheduledActivityID: id}).
		Association("Rooms").
		Replace(toRooms(roomIDs))
}

func (r *scheduledActivityRepo) ReplaceSponsors(ctx context.Context, id string, sponsorIDs []string) error {
	sponsors := make([]model.Sponsor, len(sponsorIDs))
	for i, sid := range sponsorIDs {
		sponsors[i] = model.Sponsor{SponsorID: sid}
	}
	return r.db.WithContext(ctx).
		Model(&model.ScheduledActivity{ScheduledActivityID: id}).
		Association("Sponsors").
		Replace(sponsors)
}

func (r *scheduledActivityRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("scheduled_activity_id = ?", id).
		Delete(&model.ScheduledActivity{}).Error
}
