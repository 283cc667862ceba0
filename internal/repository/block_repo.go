package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-portal/backend/internal/model"
	pkgerrors "campus-portal/backend/pkg/errors"
)

// BlockRepository 活动节次数据访问接口
type BlockRepository interface {
	Create(ctx context.Context, block *model.Block) error
	// BatchCreate 批量建节，与已有 (日期, 字母) 冲突的行静默跳过，返回实际新建数
	BatchCreate(ctx context.Context, blocks []model.Block) (int64, error)
	GetByID(ctx context.Context, id string) (*model.Block, error)
	GetByDateLetter(ctx context.Context, date time.Time, letter string) (*model.Block, error)
	List(ctx context.Context, from, to *time.Time, offset, limit int) ([]model.Block, int64, error)
	// NextBlocks 返回今天（含）之后最近一天的全部节次，按字母升序
	NextBlocks(ctx context.Context, today time.Time) ([]model.Block, error)
	// PreviousBlocks 返回今天之前最近一天的全部节次，按字母升序
	PreviousBlocks(ctx context.Context, today time.Time) ([]model.Block, error)
	// SiblingsSameDay 返回同一天除自身外的其他节次（A/B 联报配对用）
	SiblingsSameDay(ctx context.Context, block *model.Block) ([]model.Block, error)
	Update(ctx context.Context, block *model.Block) error
	SetLocked(ctx context.Context, id string, locked bool, updatedBy string) error
	Delete(ctx context.Context, id string) error
}

type blockRepo struct {
	db *gorm.DB
}

// NewBlockRepo 创建 BlockRepository 实例
func NewBlockRepo(db *gorm.DB) BlockRepository {
	return &blockRepo{db: db}
}

func (r *blockRepo) Create(ctx context.Context, block *model.Block) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *blockRepo) BatchCreate(ctx context.Context, blocks []model.Block) (int64, error) {
	if len(blocks) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "block_letter"}},
			DoNothing: true,
		}).
		Create(&blocks)
	return result.RowsAffected, result.Error
}

func (r *blockRepo) GetByID(ctx context.Context, id string) (*model.Block, error) {
	var block model.Block
	err := r.db.WithContext(ctx).Where("block_id = ?", id).First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *blockRepo) GetByDateLetter(ctx context.Context, date time.Time, letter string) (*model.Block, error) {
	var block model.Block
	err := r.db.WithContext(ctx).
		Where("date = ? AND block_letter = ?", date.Format("2006-01-02"), letter).
		First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *blockRepo) List(ctx context.Context, from, to *time.Time, offset, limit int) ([]model.Block, int64, error) {
	var blocks []model.Block
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Block{})
	if from != nil {
		db = db.Where("date >= ?", from.Format("2006-01-02"))
	}
	if to != nil {
		db = db.Where("date <= ?", to.Format("2006-01-02"))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("date ASC, block_letter ASC").Offset(offset).Limit(limit).Find(&blocks).Error
	return blocks, total, err
}

func (r *blockRepo) NextBlocks(ctx context.Context, today time.Time) ([]model.Block, error) {
	var next model.Block
	err := r.db.WithContext(ctx).
		Where("date >= ?", today.Format("2006-01-02")).
		Order("date ASC, block_letter ASC").
		First(&next).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	var blocks []model.Block
	err = r.db.WithContext(ctx).
		Where("date = ?", next.Date.Format("2006-01-02")).
		Order("block_letter ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *blockRepo) PreviousBlocks(ctx context.Context, today time.Time) ([]model.Block, error) {
	var prev model.Block
	err := r.db.WithContext(ctx).
		Where("date < ?", today.Format("2006-01-02")).
		Order("date DESC, block_letter DESC").
		First(&prev).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	var blocks []model.Block
	err = r.db.WithContext(ctx).
		Where("date = ?", prev.Date.Format("2006-01-02")).
		Order("block_letter ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *blockRepo) SiblingsSameDay(ctx context.Context, block *model.Block) ([]model.Block, error) {
	var blocks []model.Block
	err := r.db.WithContext(ctx).
		Where("date = ? AND block_id <> ?", block.Date.Format("2006-01-02"), block.BlockID).
		Order("block_letter ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *blockRepo) Update(ctx context.Context, block *model.Block) error {
	oldVersion := block.Version
	result := r.db.WithContext(ctx).
		Model(block).
		Where("block_id = ? AND version = ?", block.BlockID, oldVersion).
		Updates(map[string]interface{}{
			"date":         block.Date,
			"block_letter": block.BlockLetter,
			"locked":       block.Locked,
			"signup_time":  block.SignupTime,
			"comments":     block.Comments,
			"updated_by":   block.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	block.Version = oldVersion + 1
	return nil
}

func (r *blockRepo) SetLocked(ctx context.Context, id string, locked bool, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Block{}).
		Where("block_id = ?", id).
		Updates(map[string]interface{}{
			"locked":     locked,
			"updated_by": updatedBy,
		}).Error
}

func (r *blockRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("block_id = ?", id).Delete(&model.Block{}).Error
}
