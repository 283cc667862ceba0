package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Take 为排期记考勤
// POST /api/v1/scheduled-activities/:id/attendance
func (h *AttendanceHandler) Take(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 18001, "排期ID不能为空")
		return
	}

	var req dto.TakeAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 18001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	result, err := h.attendanceSvc.TakeAttendance(c.Request.Context(), id, &req, actorID.(string))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// BulkZeroSignup 零报名排期批量完成考勤
// POST /api/v1/blocks/:id/attendance/zero-signup
func (h *AttendanceHandler) BulkZeroSignup(c *gin.Context) {
	blockID := c.Param("id")
	if blockID == "" {
		response.BadRequest(c, 18001, "节次ID不能为空")
		return
	}

	actorID, _ := c.Get("user_id")

	result, err := h.attendanceSvc.BulkMarkZeroSignup(c.Request.Context(), blockID, actorID.(string))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// BulkCancelled 已取消排期批量记缺勤
// POST /api/v1/blocks/:id/attendance/cancelled
func (h *AttendanceHandler) BulkCancelled(c *gin.Context) {
	blockID := c.Param("id")
	if blockID == "" {
		response.BadRequest(c, 18001, "节次ID不能为空")
		return
	}

	actorID, _ := c.Get("user_id")

	result, err := h.attendanceSvc.BulkMarkCancelled(c.Request.Context(), blockID, actorID.(string))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ClearAbsence 撤销缺勤（申诉通过）
// DELETE /api/v1/signups/:id/absence
func (h *AttendanceHandler) ClearAbsence(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 18001, "报名ID不能为空")
		return
	}

	actorID, _ := c.Get("user_id")

	if err := h.attendanceSvc.ClearAbsence(c.Request.Context(), id, actorID.(string)); err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "缺勤已撤销"})
}

// GetAbsences 查询用户缺勤数
// GET /api/v1/users/:id/absences
func (h *AttendanceHandler) GetAbsences(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		response.BadRequest(c, 18001, "用户ID不能为空")
		return
	}

	result, err := h.attendanceSvc.GetAbsences(c.Request.Context(), userID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// MyAbsences 查询我的缺勤数
// GET /api/v1/absences/my
func (h *AttendanceHandler) MyAbsences(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.GetAbsences(c.Request.Context(), userID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ArchiveAbsences 年终归档全部缺勤
// POST /api/v1/absences/archive
func (h *AttendanceHandler) ArchiveAbsences(c *gin.Context) {
	result, err := h.attendanceSvc.ArchiveAbsences(c.Request.Context())
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// handleAttendanceError 统一处理考勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduledNotFound):
		response.NotFound(c, 18101, "排期不存在")
	case errors.Is(err, service.ErrBlockNotFound):
		response.NotFound(c, 18102, "节次不存在")
	case errors.Is(err, service.ErrSignupNotFound):
		response.NotFound(c, 18103, "报名记录不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 18104, "用户不存在")
	case errors.Is(err, service.ErrAttendanceCancelled):
		response.BadRequest(c, 18105, "已取消的排期请使用批量缺勤通道")
	case errors.Is(err, service.ErrAbsenceNotFound):
		response.BadRequest(c, 18106, "该报名没有未归档的缺勤记录")
	default:
		response.InternalError(c)
	}
}
