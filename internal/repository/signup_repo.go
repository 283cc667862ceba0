package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-portal/backend/internal/model"
)

// DuplicateSignup 同一 (用户, 节次) 下的重复报名统计行
type DuplicateSignup struct {
	UserID  string `json:"user_id"`
	BlockID string `json:"block_id"`
	Count   int64  `json:"count"`
}

// SignupRepository 报名数据访问接口
type SignupRepository interface {
	Create(ctx context.Context, signup *model.Signup) error
	GetByID(ctx context.Context, id string) (*model.Signup, error)
	// GetByUserAndBlock 指定用户在指定节次的报名，不存在返回 gorm.ErrRecordNotFound
	GetByUserAndBlock(ctx context.Context, userID, blockID string) (*model.Signup, error)
	ListByScheduledActivity(ctx context.Context, scheduledActivityID string) ([]model.Signup, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Signup, int64, error)
	ListByUserOnDate(ctx context.Context, userID string, blockIDs []string) ([]model.Signup, error)
	// ListPendingPasses 指定节次内全部待审批补报
	ListPendingPasses(ctx context.Context, blockID string) ([]model.Signup, error)
	// ListUnsignedUsers 指定节次内没有任何报名的在册学生
	ListUnsignedUsers(ctx context.Context, blockID string) ([]model.User, error)
	// ListDuplicates 数据库层兜底：同一 (用户, 节次) 多条报名的统计（修复工具用）
	ListDuplicates(ctx context.Context) ([]DuplicateSignup, error)
	ListByUserAndBlockAll(ctx context.Context, userID, blockID string) ([]model.Signup, error)
	CountByScheduledActivity(ctx context.Context, scheduledActivityID string) (int64, error)
	// CountAbsences 用户当前学年未归档缺勤数
	CountAbsences(ctx context.Context, userID string) (int64, error)
	CountAbsencesBatch(ctx context.Context, userIDs []string) (map[string]int64, error)
	Update(ctx context.Context, signup *model.Signup) error
	SetAbsent(ctx context.Context, id string, absent bool, updatedBy string) error
	SetPassAccepted(ctx context.Context, id string, accepted bool, updatedBy string) error
	Delete(ctx context.Context, id string) error
	// ArchiveAbsences 年终归档：was_absent 迁移到 archived_was_absent，返回影响行数
	ArchiveAbsences(ctx context.Context) (int64, error)
}

type signupRepo struct {
	db *gorm.DB
}

// NewSignupRepo 创建 SignupRepository 实例
func NewSignupRepo(db *gorm.DB) SignupRepository {
	return &signupRepo{db: db}
}

func (r *signupRepo) Create(ctx context.Context, signup *model.Signup) error {
	return r.db.WithContext(ctx).Create(signup).Error
}

func (r *signupRepo) GetByID(ctx context.Context, id string) (*model.Signup, error) {
	var signup model.Signup
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("ScheduledActivity").
		Preload("ScheduledActivity.Activity").
		Preload("Block").
		Where("signup_id = ?", id).
		First(&signup).Error
	if err != nil {
		return nil, err
	}
	return &signup, nil
}

func (r *signupRepo) GetByUserAndBlock(ctx context.Context, userID, blockID string) (*model.Signup, error) {
	var signup model.Signup
	err := r.db.WithContext(ctx).
		Preload("ScheduledActivity").
		Preload("ScheduledActivity.Activity").
		Where("user_id = ? AND block_id = ?", userID, blockID).
		First(&signup).Error
	if err != nil {
		return nil, err
	}
	return &signup, nil
}

func (r *signupRepo) ListByScheduledActivity(ctx context.Context, scheduledActivityID string) ([]model.Signup, error) {
	var signups []model.Signup
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("scheduled_activity_id = ?", scheduledActivityID).
		Order("created_at ASC").
		Find(&signups).Error
	return signups, err
}

func (r *signupRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Signup, int64, error) {
	var signups []model.Signup
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Signup{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("ScheduledActivity").
		Preload("ScheduledActivity.Activity").
		Preload("Block").
		Joins("JOIN blocks ON blocks.block_id = signups.block_id").
		Order("blocks.date DESC, blocks.block_letter ASC").
		Offset(offset).Limit(limit).
		Find(&signups).Error
	return signups, total, err
}

func (r *signupRepo) ListByUserOnDate(ctx context.Context, userID string, blockIDs []string) ([]model.Signup, error) {
	if len(blockIDs) == 0 {
		return nil, nil
	}
	var signups []model.Signup
	err := r.db.WithContext(ctx).
		Preload("ScheduledActivity").
		Preload("ScheduledActivity.Activity").
		Where("user_id = ? AND block_id IN ?", userID, blockIDs).
		Find(&signups).Error
	return signups, err
}

func (r *signupRepo) ListPendingPasses(ctx context.Context, blockID string) ([]model.Signup, error) {
	var signups []model.Signup
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("ScheduledActivity").
		Preload("ScheduledActivity.Activity").
		Where("block_id = ? AND after_deadline = true AND pass_accepted = false", blockID).
		Find(&signups).Error
	return signups, err
}

func (r *signupRepo) ListUnsignedUsers(ctx context.Context, blockID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role = ? AND deleted_at IS NULL", model.RoleStudent).
		Where("user_id NOT IN (?)",
			r.db.Model(&model.Signup{}).Select("user_id").Where("block_id = ?", blockID)).
		Find(&users).Error
	return users, err
}

func (r *signupRepo) ListDuplicates(ctx context.Context) ([]DuplicateSignup, error) {
	var rows []DuplicateSignup
	err := r.db.WithContext(ctx).
		Model(&model.Signup{}).
		Select("user_id, block_id, COUNT(*) AS count").
		Group("user_id, block_id").
		Having("COUNT(*) > 1").
		Scan(&rows).Error
	return rows, err
}

func (r *signupRepo) ListByUserAndBlockAll(ctx context.Context, userID, blockID string) ([]model.Signup, error) {
	var signups []model.Signup
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND block_id = ?", userID, blockID).
		Order("created_at ASC").
		Find(&signups).Error
	return signups, err
}

func (r *signupRepo) CountByScheduledActivity(ctx context.Context, scheduledActivityID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Signup{}).
		Where("scheduled_activity_id = ?", scheduledActivityID).
		Count(&count).Error
	return count, err
}

func (r *signupRepo) CountAbsences(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Signup{}).
		Where("user_id = ? AND was_absent = true AND archived_was_absent = false", userID).
		Count(&count).Error
	return count, err
}

func (r *signupRepo) CountAbsencesBatch(ctx context.Context, userIDs []string) (map[string]int64, error) {
	if len(userIDs) == 0 {
		return map[string]int64{}, nil
	}
	var rows []struct {
		UserID string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Signup{}).
		Select("user_id, COUNT(*) AS count").
		Where("user_id IN ? AND was_absent = true AND archived_was_absent = false", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}

func (r *signupRepo) Update(ctx context.Context, signup *model.Signup) error {
	return r.db.WithContext(ctx).
		Model(signup).
		Where("signup_id = ?", signup.SignupID).
		Updates(map[string]interface{}{
			"after_deadline":      signup.AfterDeadline,
			"pass_accepted":       signup.PassAccepted,
			"was_absent":          signup.WasAbsent,
			"archived_was_absent": signup.ArchivedWasAbsent,
			"updated_by":          signup.UpdatedBy,
		}).Error
}

func (r *signupRepo) SetAbsent(ctx context.Context, id string, absent bool, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Signup{}).
		Where("signup_id = ?", id).
		Updates(map[string]interface{}{
			"was_absent": absent,
			"updated_by": updatedBy,
		}).Error
}

func (r *signupRepo) SetPassAccepted(ctx context.Context, id string, accepted bool, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Signup{}).
		Where("signup_id = ?", id).
		Updates(map[string]interface{}{
			"pass_accepted": accepted,
			"updated_by":    updatedBy,
		}).Error
}

func (r *signupRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("signup_id = ?", id).Delete(&model.Signup{}).Error
}

func (r *signupRepo) ArchiveAbsences(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Signup{}).
		Where("was_absent = true AND archived_was_absent = false").
		Updates(map[string]interface{}{
			"was_absent":          false,
			"archived_was_absent": true,
		})
	return result.RowsAffected, result.Error
}
