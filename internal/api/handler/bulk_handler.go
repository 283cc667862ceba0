package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// BulkHandler 批量操作模块 HTTP 处理器（仅管理员）
type BulkHandler struct {
	bulkSvc service.BulkService
}

// NewBulkHandler 创建 BulkHandler
func NewBulkHandler(bulkSvc service.BulkService) *BulkHandler {
	return &BulkHandler{bulkSvc: bulkSvc}
}

// GroupSignup 整组报名
// POST /api/v1/bulk/group-signup
func (h *BulkHandler) GroupSignup(c *gin.Context) {
	var req dto.GroupSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 19001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	result, err := h.bulkSvc.GroupSignup(c.Request.Context(), &req, actorID.(string))
	if err != nil {
		h.handleBulkError(c, err)
		return
	}

	response.OK(c, result)
}

// Distribute 分配报名：显式逐人指定，或按节次分配未报名学生
// POST /api/v1/bulk/distribute
func (h *BulkHandler) Distribute(c *gin.Context) {
	var req dto.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 19001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	result, err := h.bulkSvc.Distribute(c.Request.Context(), &req, actorID.(string))
	if err != nil {
		h.handleBulkError(c, err)
		return
	}

	response.OK(c, result)
}

// Transfer 整体转移报名
// POST /api/v1/bulk/transfer
func (h *BulkHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 19001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	result, err := h.bulkSvc.Transfer(c.Request.Context(), &req, actorID.(string))
	if err != nil {
		h.handleBulkError(c, err)
		return
	}

	response.OK(c, result)
}

// handleBulkError 统一处理批量操作模块业务错误
func (h *BulkHandler) handleBulkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 19101, "用户组不存在")
	case errors.Is(err, service.ErrScheduledNotFound):
		response.NotFound(c, 19102, "排期不存在")
	case errors.Is(err, service.ErrTransferSameTarget):
		response.BadRequest(c, 19103, "源排期与目标排期相同")
	case errors.Is(err, service.ErrBlockNotFound):
		response.NotFound(c, 19104, "节次不存在")
	case errors.Is(err, service.ErrDistributeEmpty):
		response.BadRequest(c, 19105, "分配请求为空")
	default:
		response.InternalError(c)
	}
}
