package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	pkgerrors "campus-portal/backend/pkg/errors"
	"campus-portal/backend/pkg/response"
)

// BlockHandler 节次日历模块 HTTP 处理器
type BlockHandler struct {
	blockSvc service.BlockService
}

// NewBlockHandler 创建 BlockHandler
func NewBlockHandler(blockSvc service.BlockService) *BlockHandler {
	return &BlockHandler{blockSvc: blockSvc}
}

// Create 创建单个节次
// POST /api/v1/blocks
func (h *BlockHandler) Create(c *gin.Context) {
	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	block, err := h.blockSvc.Create(c.Request.Context(), &req, actorID.(string))
	if err != nil {
		h.handleBlockError(c, err)
		return
	}

	response.Created(c, block)
}

// BatchCreate 按日期范围批量创建节次
// POST /api/v1/blocks/batch
func (h *BlockHandler) BatchCreate(c *gin.Context) {
	var req dto.BatchCreateBlocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	result, err := h.blockSvc.BatchCreate(c.Request.Context(), &req, actorID.(string))
	if err != nil {
		h.handleBlockError(c, err)
		return
	}

	response.OK(c, result)
}

// Get 获取节次详情
// GET /api/v1/blocks/:id
func (h *BlockHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "节次ID不能为空")
		return
	}

	block, err := h.blockSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleBlockError(c, err)
		return
	}

	response.OK(c, block)
}

// List 分页查询节次
// GET /api/v1/blocks
func (h *BlockHandler) List(c *gin.Context) {
	var req dto.BlockListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	blocks, total, err := h.blockSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleBlockError(c, err)
		return
	}

	response.OKPage(c, blocks, total, req.GetPage(), req.GetPageSize())
}

// Next 获取最近一个活动日的节次
// GET /api/v1/blocks/next
func (h *BlockHandler) Next(c *gin.Context) {
	blocks, err := h.blockSvc.Next(c.Request.Context())
	if err != nil {
		h.handleBlockError(c, err)
		return
	}

	response.OK(c, gin.H{"list": blocks})
}

// Previous 获取上一个活动日的节次
// GET /api/v1/blocks/previous
func (h *BlockHandler) Previous(c *gin.Context) {
	blocks, err := h.blockSvc.Previous(c.Request.Context())
	if err != nil {
		h.handleBlockError(c, err)
		return
	}

	response.OK(c, gin.H{"list": blocks})
}

// Update 更新节次
// PUT /api/v1/blocks/:id
func (h *BlockHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "节次ID不能为空")
		return
	}

	var req dto.UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	block, err := h.blockSvc.Update(c.Request.Context(), id, &req, actorID.(string))
	if err != nil {
		h.handleBlockError(c, err)
		return
	}

	response.OK(c, block)
}

// Lock 锁定节次
// POST /api/v1/blocks/:id/lock
func (h *BlockHandler) Lock(c *gin.Context) {
	h.setLocked(c, true)
}

// Unlock 解锁节次
// POST /api/v1/blocks/:id/unlock
func (h *BlockHandler) Unlock(c *gin.Context) {
	h.setLocked(c, false)
}

func (h *BlockHandler) setLocked(c *gin.Context, locked bool) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "节次ID不能为空")
		return
	}

	actorID, _ := c.Get("user_id")

	if err := h.blockSvc.SetLocked(c.Request.Context(), id, locked, actorID.(string)); err != nil {
		h.handleBlockError(c, err)
		return
	}

	response.OK(c, gin.H{"locked": locked})
}

// Delete 删除节次
// DELETE /api/v1/blocks/:id
func (h *BlockHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "节次ID不能为空")
		return
	}

	if err := h.blockSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleBlockError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "删除成功"})
}

// handleBlockError 统一处理节次模块业务错误
func (h *BlockHandler) handleBlockError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBlockNotFound):
		response.NotFound(c, 15101, "节次不存在")
	case errors.Is(err, service.ErrBlockExists):
		response.Conflict(c, 15102, "该日期与字母的节次已存在")
	case errors.Is(err, service.ErrBlockDateInvalid):
		response.BadRequest(c, 15103, "日期格式无效")
	case errors.Is(err, service.ErrBlockRangeInvalid):
		response.BadRequest(c, 15104, "结束日期必须不早于开始日期")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 15105, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
