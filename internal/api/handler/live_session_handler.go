package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/orafaelmatos/learn-hub/internal/dto"
	"github.com/orafaelmatos/learn-hub/internal/service"
	"github.com/orafaelmatos/learn-hub/pkg/response"
)

// LiveSessionHandler 直播课次模块 HTTP 处理器
type LiveSessionHandler struct {
	sessionSvc service.LiveSessionService
}

// NewLiveSessionHandler 创建 LiveSessionHandler
func NewLiveSessionHandler(sessionSvc service.LiveSessionService) *LiveSessionHandler {
	return &LiveSessionHandler{sessionSvc: sessionSvc}
}

// ────────────────────── 排课与查询 ──────────────────────

// Schedule 排课（归属教师）
// POST /api/v1/courses/:id/sessions
func (h *LiveSessionHandler) Schedule(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.ScheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Schedule(c.Request.Context(), callerID, role, courseID, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// GetSession 课次详情
// GET /api/v1/sessions/:id
func (h *LiveSessionHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课次ID不能为空")
		return
	}

	session, err := h.sessionSvc.GetSession(c.Request.Context(), id)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// ListByCourse 课程课次列表
// GET /api/v1/courses/:id/sessions
func (h *LiveSessionHandler) ListByCourse(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	page.Normalize()

	sessions, total, err := h.sessionSvc.ListByCourse(c.Request.Context(), courseID, page.Page, page.PageSize)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OKPage(c, sessions, total, page.Page, page.PageSize)
}

// ListUpcoming 我的待开始课次（学生视角）
// GET /api/v1/sessions/upcoming
func (h *LiveSessionHandler) ListUpcoming(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	page.Normalize()

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sessions, total, err := h.sessionSvc.ListUpcoming(c.Request.Context(), callerID, page.Page, page.PageSize)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OKPage(c, sessions, total, page.Page, page.PageSize)
}

// ────────────────────── 状态推进 ──────────────────────

// Start 开始直播
// PUT /api/v1/sessions/:id/start
func (h *LiveSessionHandler) Start(c *gin.Context) {
	h.transition(c, h.sessionSvc.Start)
}

// End 结束直播
// PUT /api/v1/sessions/:id/end
func (h *LiveSessionHandler) End(c *gin.Context) {
	h.transition(c, h.sessionSvc.End)
}

// Cancel 取消未开始的课次
// PUT /api/v1/sessions/:id/cancel
func (h *LiveSessionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.sessionSvc.Cancel)
}

// transition 状态推进类操作的公共骨架
func (h *LiveSessionHandler) transition(c *gin.Context, fn func(ctx context.Context, callerID, callerRole, sessionID string) error) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课次ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), callerID, role, id); err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, nil)
}

// AttachRecording 挂载课次录像
// PUT /api/v1/sessions/:id/recording
func (h *LiveSessionHandler) AttachRecording(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课次ID不能为空")
		return
	}

	var req dto.AttachRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.sessionSvc.AttachRecording(c.Request.Context(), callerID, role, id, &req); err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, nil)
}

// ────────────────────── 参与与聊天 ──────────────────────

// Join 加入直播
// POST /api/v1/sessions/:id/join
func (h *LiveSessionHandler) Join(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课次ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	participant, err := h.sessionSvc.Join(c.Request.Context(), callerID, role, id)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, participant)
}

// Leave 离开直播
// DELETE /api/v1/sessions/:id/join
func (h *LiveSessionHandler) Leave(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课次ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.sessionSvc.Leave(c.Request.Context(), callerID, id); err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListParticipants 课次参与者列表
// GET /api/v1/sessions/:id/participants
func (h *LiveSessionHandler) ListParticipants(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课次ID不能为空")
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	page.Normalize()

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	participants, total, err := h.sessionSvc.ListParticipants(c.Request.Context(), callerID, role, id, page.Page, page.PageSize)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OKPage(c, participants, total, page.Page, page.PageSize)
}

// PostMessage 发送聊天消息
// POST /api/v1/sessions/:id/messages
func (h *LiveSessionHandler) PostMessage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课次ID不能为空")
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	message, err := h.sessionSvc.PostMessage(c.Request.Context(), callerID, id, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, message)
}

// ListMessages 课次聊天记录
// GET /api/v1/sessions/:id/messages
func (h *LiveSessionHandler) ListMessages(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课次ID不能为空")
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	page.Normalize()

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	messages, total, err := h.sessionSvc.ListMessages(c.Request.Context(), callerID, role, id, page.Page, page.PageSize)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OKPage(c, messages, total, page.Page, page.PageSize)
}

// handleSessionError 统一处理直播模块业务错误
func (h *LiveSessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 17001, "直播课次不存在")
	case errors.Is(err, service.ErrInvalidScheduleTime):
		response.BadRequest(c, 17002, "排课时间必须晚于当前时间")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 17003, "课次当前状态不允许该操作")
	case errors.Is(err, service.ErrSessionNotLive):
		response.Conflict(c, 17004, "课次未在直播中")
	case errors.Is(err, service.ErrSessionNoAccess):
		response.Forbidden(c, 17005, "无权参与该课次")
	case errors.Is(err, service.ErrAlreadyJoined):
		response.Conflict(c, 17006, "已在该课次中")
	case errors.Is(err, service.ErrNotJoined):
		response.Forbidden(c, 17007, "未加入该课次")
	case errors.Is(err, service.ErrSessionNotEnded):
		response.Conflict(c, 17008, "课次尚未结束")
	case errors.Is(err, service.ErrNotCourseOwner):
		response.Forbidden(c, 10003, "无权操作该课程的课次")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/live_session_handler.go
