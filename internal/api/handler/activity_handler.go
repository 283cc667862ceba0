package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	pkgerrors "campus-portal/backend/pkg/errors"
	"campus-portal/backend/pkg/response"
)

// ActivityHandler 活动目录模块 HTTP 处理器
type ActivityHandler struct {
	activitySvc service.ActivityService
}

// NewActivityHandler 创建 ActivityHandler
func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// Create 创建活动
// POST /api/v1/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	activity, err := h.activitySvc.Create(c.Request.Context(), &req, actorID.(string))
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.Created(c, activity)
}

// Get 获取活动详情
// GET /api/v1/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "活动ID不能为空")
		return
	}

	activity, err := h.activitySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, activity)
}

// List 分页查询活动
// GET /api/v1/activities
func (h *ActivityHandler) List(c *gin.Context) {
	var req dto.ActivityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	activities, total, err := h.activitySvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OKPage(c, activities, total, req.GetPage(), req.GetPageSize())
}

// Update 更新活动
// PUT /api/v1/activities/:id
func (h *ActivityHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "活动ID不能为空")
		return
	}

	var req dto.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	activity, err := h.activitySvc.Update(c.Request.Context(), id, &req, actorID.(string))
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, activity)
}

// Delete 软删除活动
// DELETE /api/v1/activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "活动ID不能为空")
		return
	}

	actorID, _ := c.Get("user_id")

	if err := h.activitySvc.Delete(c.Request.Context(), id, actorID.(string)); err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "删除成功"})
}

// Restore 恢复已删除活动
// POST /api/v1/activities/:id/restore
func (h *ActivityHandler) Restore(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "活动ID不能为空")
		return
	}

	actorID, _ := c.Get("user_id")

	if err := h.activitySvc.Restore(c.Request.Context(), id, actorID.(string)); err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "恢复成功"})
}

// handleActivityError 统一处理活动模块业务错误
func (h *ActivityHandler) handleActivityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, 14101, "活动不存在")
	case errors.Is(err, service.ErrActivityNotDeleted):
		response.BadRequest(c, 14102, "活动未处于删除状态")
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 14103, "教室不存在")
	case errors.Is(err, service.ErrSponsorNotFound):
		response.NotFound(c, 14104, "指导教师不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14105, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
