package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// RegistryHandler 基础资源（教室/指导教师/用户组）HTTP 处理器
type RegistryHandler struct {
	registrySvc service.RegistryService
}

// NewRegistryHandler 创建 RegistryHandler
func NewRegistryHandler(registrySvc service.RegistryService) *RegistryHandler {
	return &RegistryHandler{registrySvc: registrySvc}
}

// ── 教室 ──

// CreateRoom 创建教室
// POST /api/v1/rooms
func (h *RegistryHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	room, err := h.registrySvc.CreateRoom(c.Request.Context(), &req, actorID.(string))
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.Created(c, room)
}

// GetRoom 获取教室详情
// GET /api/v1/rooms/:id
func (h *RegistryHandler) GetRoom(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "教室ID不能为空")
		return
	}

	room, err := h.registrySvc.GetRoom(c.Request.Context(), id)
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, room)
}

// ListRooms 获取教室列表
// GET /api/v1/rooms
func (h *RegistryHandler) ListRooms(c *gin.Context) {
	rooms, err := h.registrySvc.ListRooms(c.Request.Context())
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rooms})
}

// UpdateRoom 更新教室
// PUT /api/v1/rooms/:id
func (h *RegistryHandler) UpdateRoom(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "教室ID不能为空")
		return
	}

	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	room, err := h.registrySvc.UpdateRoom(c.Request.Context(), id, &req, actorID.(string))
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, room)
}

// DeleteRoom 删除教室
// DELETE /api/v1/rooms/:id
func (h *RegistryHandler) DeleteRoom(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "教室ID不能为空")
		return
	}

	if err := h.registrySvc.DeleteRoom(c.Request.Context(), id); err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "删除成功"})
}

// ── 指导教师 ──

// CreateSponsor 创建指导教师
// POST /api/v1/sponsors
func (h *RegistryHandler) CreateSponsor(c *gin.Context) {
	var req dto.CreateSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	sponsor, err := h.registrySvc.CreateSponsor(c.Request.Context(), &req, actorID.(string))
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.Created(c, sponsor)
}

// GetSponsor 获取指导教师详情
// GET /api/v1/sponsors/:id
func (h *RegistryHandler) GetSponsor(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "指导教师ID不能为空")
		return
	}

	sponsor, err := h.registrySvc.GetSponsor(c.Request.Context(), id)
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, sponsor)
}

// ListSponsors 获取指导教师列表
// GET /api/v1/sponsors
func (h *RegistryHandler) ListSponsors(c *gin.Context) {
	sponsors, err := h.registrySvc.ListSponsors(c.Request.Context())
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sponsors})
}

// UpdateSponsor 更新指导教师
// PUT /api/v1/sponsors/:id
func (h *RegistryHandler) UpdateSponsor(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "指导教师ID不能为空")
		return
	}

	var req dto.UpdateSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	sponsor, err := h.registrySvc.UpdateSponsor(c.Request.Context(), id, &req, actorID.(string))
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, sponsor)
}

// DeleteSponsor 删除指导教师
// DELETE /api/v1/sponsors/:id
func (h *RegistryHandler) DeleteSponsor(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "指导教师ID不能为空")
		return
	}

	if err := h.registrySvc.DeleteSponsor(c.Request.Context(), id); err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "删除成功"})
}

// ── 用户组 ──

// CreateGroup 创建用户组
// POST /api/v1/groups
func (h *RegistryHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	actorID, _ := c.Get("user_id")

	group, err := h.registrySvc.CreateGroup(c.Request.Context(), &req, actorID.(string))
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.Created(c, group)
}

// GetGroup 获取用户组详情
// GET /api/v1/groups/:id
func (h *RegistryHandler) GetGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "用户组ID不能为空")
		return
	}

	group, err := h.registrySvc.GetGroup(c.Request.Context(), id)
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, group)
}

// ListGroups 获取用户组列表
// GET /api/v1/groups
func (h *RegistryHandler) ListGroups(c *gin.Context) {
	groups, err := h.registrySvc.ListGroups(c.Request.Context())
	if err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, gin.H{"list": groups})
}

// AddGroupMembers 向用户组添加成员
// POST /api/v1/groups/:id/members
func (h *RegistryHandler) AddGroupMembers(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "用户组ID不能为空")
		return
	}

	var req dto.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	if err := h.registrySvc.AddGroupMembers(c.Request.Context(), id, &req); err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "添加成功"})
}

// RemoveGroupMembers 从用户组移除成员
// DELETE /api/v1/groups/:id/members
func (h *RegistryHandler) RemoveGroupMembers(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "用户组ID不能为空")
		return
	}

	var req dto.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	if err := h.registrySvc.RemoveGroupMembers(c.Request.Context(), id, &req); err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "移除成功"})
}

// DeleteGroup 删除用户组
// DELETE /api/v1/groups/:id
func (h *RegistryHandler) DeleteGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "用户组ID不能为空")
		return
	}

	if err := h.registrySvc.DeleteGroup(c.Request.Context(), id); err != nil {
		h.handleRegistryError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "删除成功"})
}

// handleRegistryError 统一处理基础资源模块业务错误
func (h *RegistryHandler) handleRegistryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 13101, "教室不存在")
	case errors.Is(err, service.ErrSponsorNotFound):
		response.NotFound(c, 13102, "指导教师不存在")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 13103, "用户组不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 13104, "用户不存在")
	default:
		response.InternalError(c)
	}
}
