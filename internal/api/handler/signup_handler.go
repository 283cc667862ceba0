package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// SignupHandler 报名模块 HTTP 处理器
type SignupHandler struct {
	signupSvc service.SignupService
}

// NewSignupHandler 创建 SignupHandler
func NewSignupHandler(signupSvc service.SignupService) *SignupHandler {
	return &SignupHandler{signupSvc: signupSvc}
}

// Add 报名排期活动
// POST /api/v1/signups
// 学生只能为自己报名；force / no_after_deadline 仅管理员可用
func (h *SignupHandler) Add(c *gin.Context) {
	var req dto.AddSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}

	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	targetID := req.UserID
	if targetID == "" {
		targetID = actorID
	}

	if !isAdmin(role) {
		if targetID != actorID {
			response.Forbidden(c, 17002, "只能为自己报名")
			return
		}
		if req.Force || req.NoAfterDeadline {
			response.Forbidden(c, 17003, "无权使用强制报名参数")
			return
		}
	}

	result, err := h.signupSvc.AddUser(c.Request.Context(), targetID, req.ScheduledActivityID, service.AddUserOptions{
		Force:           req.Force,
		NoAfterDeadline: req.NoAfterDeadline,
		ActorID:         actorID,
	})
	if err != nil {
		h.handleSignupError(c, err)
		return
	}

	response.Created(c, result)
}

// Remove 退课
// DELETE /api/v1/signups/:id
func (h *SignupHandler) Remove(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 17001, "报名ID不能为空")
		return
	}

	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.signupSvc.RemoveSignup(c.Request.Context(), id, actorID, isAdmin(role)); err != nil {
		h.handleSignupError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "退课成功"})
}

// Get 获取报名详情
// GET /api/v1/signups/:id
func (h *SignupHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 17001, "报名ID不能为空")
		return
	}

	signup, err := h.signupSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSignupError(c, err)
		return
	}

	response.OK(c, signup)
}

// My 获取我的报名
// GET /api/v1/signups/my
func (h *SignupHandler) My(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}

	signups, total, err := h.signupSvc.ListByUser(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSignupError(c, err)
		return
	}

	response.OKPage(c, signups, total, req.GetPage(), req.GetPageSize())
}

// ListByUser 获取指定用户的报名（教师/管理员）
// GET /api/v1/users/:id/signups
func (h *SignupHandler) ListByUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		response.BadRequest(c, 17001, "用户ID不能为空")
		return
	}

	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}

	signups, total, err := h.signupSvc.ListByUser(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSignupError(c, err)
		return
	}

	response.OKPage(c, signups, total, req.GetPage(), req.GetPageSize())
}

// Roster 获取排期名单
// GET /api/v1/scheduled-activities/:id/roster
func (h *SignupHandler) Roster(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 17001, "排期ID不能为空")
		return
	}

	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	roster, err := h.signupSvc.Roster(c.Request.Context(), id, role)
	if err != nil {
		h.handleSignupError(c, err)
		return
	}

	response.OK(c, roster)
}

// ListPendingPasses 获取节次内待审批补报
// GET /api/v1/blocks/:id/pending-passes
func (h *SignupHandler) ListPendingPasses(c *gin.Context) {
	blockID := c.Param("id")
	if blockID == "" {
		response.BadRequest(c, 17001, "节次ID不能为空")
		return
	}

	passes, err := h.signupSvc.ListPendingPasses(c.Request.Context(), blockID)
	if err != nil {
		h.handleSignupError(c, err)
		return
	}

	response.OK(c, gin.H{"list": passes})
}

// DecidePass 审批补报
// POST /api/v1/signups/:id/pass
func (h *SignupHandler) DecidePass(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 17001, "报名ID不能为空")
		return
	}

	var req dto.PassDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}

	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.signupSvc.DecidePass(c.Request.Context(), id, req.Accept, actorID); err != nil {
		h.handleSignupError(c, err)
		return
	}

	response.OK(c, gin.H{"accepted": req.Accept})
}

// handleSignupError 统一处理报名模块业务错误
// 规则校验失败时返回 409 并附带全部违规项
func (h *SignupHandler) handleSignupError(c *gin.Context, err error) {
	var conflict *service.SignupConflictError
	if errors.As(err, &conflict) {
		response.ErrorWithData(c, http.StatusConflict, 17100, "报名校验未通过",
			dto.SignupConflictResponse{Violations: conflict.Violations})
		return
	}

	switch {
	case errors.Is(err, service.ErrSignupNotFound):
		response.NotFound(c, 17101, "报名记录不存在")
	case errors.Is(err, service.ErrScheduledNotFound):
		response.NotFound(c, 17102, "排期不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 17103, "用户不存在")
	case errors.Is(err, service.ErrSignupNotSelf):
		response.Forbidden(c, 17104, "只能操作自己的报名")
	case errors.Is(err, service.ErrSignupSticky):
		response.Forbidden(c, 17105, "该活动不允许自行退课")
	case errors.Is(err, service.ErrSignupNotPending):
		response.BadRequest(c, 17106, "该报名不是待审批的补报")
	case errors.Is(err, service.ErrBlockNotFound):
		response.NotFound(c, 17107, "节次不存在")
	default:
		response.InternalError(c)
	}
}
