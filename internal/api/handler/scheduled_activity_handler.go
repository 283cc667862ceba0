package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	pkgerrors "campus-portal/backend/pkg/errors"
	"campus-portal/backend/pkg/response"
)

// ScheduledActivityHandler 排期模块 HTTP 处理器
type ScheduledActivityHandler struct {
	scheduledSvc service.ScheduledActivityService
}

// NewScheduledActivityHandler 创建 ScheduledActivityHandler
func NewScheduledActivityHandler(scheduledSvc service.ScheduledActivityService) *ScheduledActivityHandler {
	return &ScheduledActivityHandler{scheduledSvc: scheduledSvc}
}

// Schedule 将活动排入节次
// POST /api/v1/scheduled-activities
func (h *ScheduledActivityHandler) Schedule(c *gin.Context) {
	var req dto.ScheduleActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	sa, err := h.scheduledSvc.Schedule(c.Request.Context(), &req, actorID.(string))
	if err != nil {
		h.handleScheduledError(c, err)
		return
	}

	if sa.Created {
		response.Created(c, sa)
		return
	}
	response.OK(c, sa)
}

// Get 获取排期详情
// GET /api/v1/scheduled-activities/:id
func (h *ScheduledActivityHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 16001, "排期ID不能为空")
		return
	}

	role, _ := MustGetRole(c)

	sa, err := h.scheduledSvc.GetByID(c.Request.Context(), id, isAdmin(role))
	if err != nil {
		h.handleScheduledError(c, err)
		return
	}

	response.OK(c, sa)
}

// ListByBlock 获取节次内全部排期
// GET /api/v1/blocks/:id/scheduled-activities
func (h *ScheduledActivityHandler) ListByBlock(c *gin.Context) {
	blockID := c.Param("id")
	if blockID == "" {
		response.BadRequest(c, 16001, "节次ID不能为空")
		return
	}

	role, _ := MustGetRole(c)

	items, err := h.scheduledSvc.ListByBlock(c.Request.Context(), blockID, isAdmin(role))
	if err != nil {
		h.handleScheduledError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// ListByActivity 获取活动的历史排期
// GET /api/v1/scheduled-activities
func (h *ScheduledActivityHandler) ListByActivity(c *gin.Context) {
	var req dto.ScheduledActivityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	items, total, err := h.scheduledSvc.ListByActivity(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduledError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// Update 更新排期（覆盖项/容量/教室等）
// PUT /api/v1/scheduled-activities/:id
func (h *ScheduledActivityHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 16001, "排期ID不能为空")
		return
	}

	var req dto.UpdateScheduledActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	sa, err := h.scheduledSvc.Update(c.Request.Context(), id, &req, actorID.(string))
	if err != nil {
		h.handleScheduledError(c, err)
		return
	}

	response.OK(c, sa)
}

// Cancel 取消排期
// POST /api/v1/scheduled-activities/:id/cancel
func (h *ScheduledActivityHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 16001, "排期ID不能为空")
		return
	}

	actorID, _ := c.Get("user_id")

	if err := h.scheduledSvc.Cancel(c.Request.Context(), id, actorID.(string)); err != nil {
		h.handleScheduledError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "排期已取消"})
}

// Uncancel 恢复已取消排期
// POST /api/v1/scheduled-activities/:id/uncancel
func (h *ScheduledActivityHandler) Uncancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 16001, "排期ID不能为空")
		return
	}

	actorID, _ := c.Get("user_id")

	if err := h.scheduledSvc.Uncancel(c.Request.Context(), id, actorID.(string)); err != nil {
		h.handleScheduledError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "排期已恢复"})
}

// Delete 物理删除排期（仅限无报名）
// DELETE /api/v1/scheduled-activities/:id
func (h *ScheduledActivityHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 16001, "排期ID不能为空")
		return
	}

	if err := h.scheduledSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleScheduledError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "删除成功"})
}

// handleScheduledError 统一处理排期模块业务错误
func (h *ScheduledActivityHandler) handleScheduledError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduledNotFound):
		response.NotFound(c, 16101, "排期不存在")
	case errors.Is(err, service.ErrBlockNotFound):
		response.NotFound(c, 16102, "节次不存在")
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, 16103, "活动不存在")
	case errors.Is(err, service.ErrScheduleDeleted):
		response.BadRequest(c, 16104, "已删除的活动不可排期")
	case errors.Is(err, service.ErrScheduledNotCancelled):
		response.BadRequest(c, 16105, "排期未处于取消状态")
	case errors.Is(err, service.ErrScheduledHasSignups):
		response.Conflict(c, 16106, "排期下仍有报名，不可删除")
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 16107, "教室不存在")
	case errors.Is(err, service.ErrSponsorNotFound):
		response.NotFound(c, 16108, "指导教师不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 16109, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
