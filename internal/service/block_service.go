package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
)

// ── 节次模块业务错误 ──

var (
	ErrBlockNotFound     = errors.New("节次不存在")
	ErrBlockExists       = errors.New("该日期与字母的节次已存在")
	ErrBlockDateInvalid  = errors.New("日期格式无效")
	ErrBlockRangeInvalid = errors.New("结束日期必须不早于开始日期")
)

// BlockService 节次业务接口
type BlockService interface {
	Create(ctx context.Context, req *dto.CreateBlockRequest, actorID string) (*dto.BlockResponse, error)
	// BatchCreate 在日期范围内按星期几与字母批量建节，已存在的静默跳过
	BatchCreate(ctx context.Context, req *dto.BatchCreateBlocksRequest, actorID string) (*dto.BatchCreateBlocksResponse, error)
	GetByID(ctx context.Context, id string) (*dto.BlockResponse, error)
	List(ctx context.Context, req *dto.BlockListRequest) ([]dto.BlockResponse, int64, error)
	// Next 今天（含）之后最近一天的全部节次
	Next(ctx context.Context) ([]dto.BlockResponse, error)
	// Previous 今天之前最近一天的全部节次
	Previous(ctx context.Context) ([]dto.BlockResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateBlockRequest, actorID string) (*dto.BlockResponse, error)
	// SetLocked 锁定/解锁节次：锁定后普通报名转为补报
	SetLocked(ctx context.Context, id string, locked bool, actorID string) error
	Delete(ctx context.Context, id string) error
}

type blockService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBlockService 创建 BlockService 实例
func NewBlockService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) BlockService {
	return &blockService{cfg: cfg, repo: repo, logger: logger}
}

func (s *blockService) Create(ctx context.Context, req *dto.CreateBlockRequest, actorID string) (*dto.BlockResponse, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, ErrBlockDateInvalid
	}

	if _, err := s.repo.Block.GetByDateLetter(ctx, date, req.BlockLetter); err == nil {
		return nil, ErrBlockExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询节次失败", zap.Error(err))
		return nil, err
	}

	block := &model.Block{
		Date:        date,
		BlockLetter: req.BlockLetter,
		Locked:      req.Locked,
		SignupTime:  req.SignupTime,
		Comments:    req.Comments,
	}
	block.CreatedBy = &actorID
	block.UpdatedBy = &actorID

	if err := s.repo.Block.Create(ctx, block); err != nil {
		s.logger.Error("创建节次失败", zap.Error(err))
		return nil, err
	}
	return toBlockResponse(block), nil
}

func (s *blockService) BatchCreate(ctx context.Context, req *dto.BatchCreateBlocksRequest, actorID string) (*dto.BatchCreateBlocksResponse, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, ErrBlockDateInvalid
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, ErrBlockDateInvalid
	}
	if end.Before(start) {
		return nil, ErrBlockRangeInvalid
	}

	letters := req.Letters
	if len(letters) == 0 {
		letters = s.cfg.Eighth.BlockLetters
	}
	weekdays := make(map[time.Weekday]bool, len(req.Weekdays))
	for _, wd := range req.Weekdays {
		weekdays[time.Weekday(wd)] = true
	}

	var blocks []model.Block
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !weekdays[d.Weekday()] {
			continue
		}
		for _, letter := range letters {
			b := model.Block{Date: d, BlockLetter: letter}
			b.CreatedBy = &actorID
			b.UpdatedBy = &actorID
			blocks = append(blocks, b)
		}
	}

	created, err := s.repo.Block.BatchCreate(ctx, blocks)
	if err != nil {
		s.logger.Error("批量建节失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("批量建节完成",
		zap.Int("requested", len(blocks)), zap.Int64("created", created))
	return &dto.BatchCreateBlocksResponse{
		Requested: int64(len(blocks)),
		Created:   created,
	}, nil
}

func (s *blockService) GetByID(ctx context.Context, id string) (*dto.BlockResponse, error) {
	block, err := s.repo.Block.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		s.logger.Error("查询节次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toBlockResponse(block), nil
}

func (s *blockService) List(ctx context.Context, req *dto.BlockListRequest) ([]dto.BlockResponse, int64, error) {
	var from, to *time.Time
	if req.From != nil {
		t, err := time.Parse(dateLayout, *req.From)
		if err != nil {
			return nil, 0, ErrBlockDateInvalid
		}
		from = &t
	}
	if req.To != nil {
		t, err := time.Parse(dateLayout, *req.To)
		if err != nil {
			return nil, 0, ErrBlockDateInvalid
		}
		to = &t
	}

	blocks, total, err := s.repo.Block.List(ctx, from, to, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询节次列表失败", zap.Error(err))
		return nil, 0, err
	}
	return toBlockResponses(blocks), total, nil
}

func (s *blockService) Next(ctx context.Context) ([]dto.BlockResponse, error) {
	blocks, err := s.repo.Block.NextBlocks(ctx, today())
	if err != nil {
		s.logger.Error("查询下一节次失败", zap.Error(err))
		return nil, err
	}
	return toBlockResponses(blocks), nil
}

func (s *blockService) Previous(ctx context.Context) ([]dto.BlockResponse, error) {
	blocks, err := s.repo.Block.PreviousBlocks(ctx, today())
	if err != nil {
		s.logger.Error("查询上一节次失败", zap.Error(err))
		return nil, err
	}
	return toBlockResponses(blocks), nil
}

func (s *blockService) Update(ctx context.Context, id string, req *dto.UpdateBlockRequest, actorID string) (*dto.BlockResponse, error) {
	block, err := s.repo.Block.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		s.logger.Error("查询节次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return nil, ErrBlockDateInvalid
		}
		block.Date = date
	}
	if req.BlockLetter != nil {
		block.BlockLetter = *req.BlockLetter
	}
	if req.Locked != nil {
		block.Locked = *req.Locked
	}
	if req.SignupTime != nil {
		block.SignupTime = req.SignupTime
	}
	if req.Comments != nil {
		block.Comments = *req.Comments
	}
	block.Version = req.Version
	block.UpdatedBy = &actorID

	if err := s.repo.Block.Update(ctx, block); err != nil {
		s.logger.Error("更新节次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toBlockResponse(block), nil
}

func (s *blockService) SetLocked(ctx context.Context, id string, locked bool, actorID string) error {
	if _, err := s.repo.Block.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlockNotFound
		}
		return err
	}
	if err := s.repo.Block.SetLocked(ctx, id, locked, actorID); err != nil {
		s.logger.Error("设置锁定状态失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("节次锁定状态变更", zap.String("id", id), zap.Bool("locked", locked))
	return nil
}

func (s *blockService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Block.Delete(ctx, id); err != nil {
		s.logger.Error("删除节次失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// today 取当天零点（本地时区）
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// ── DTO 转换 ──

func toBlockResponse(b *model.Block) *dto.BlockResponse {
	return &dto.BlockResponse{
		ID:          b.BlockID,
		Date:        b.Date.Format(dateLayout),
		BlockLetter: b.BlockLetter,
		Locked:      b.Locked,
		SignupTime:  b.SignupTime,
		Comments:    b.Comments,
		Version:     b.Version,
		CreatedAt:   b.CreatedAt.Format(timeLayout),
		UpdatedAt:   b.UpdatedAt.Format(timeLayout),
	}
}

func toBlockResponses(blocks []model.Block) []dto.BlockResponse {
	out := make([]dto.BlockResponse, len(blocks))
	for i := range blocks {
		out[i] = *toBlockResponse(&blocks[i])
	}
	return out
}
