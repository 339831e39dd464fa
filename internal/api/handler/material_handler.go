package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/orafaelmatos/learn-hub/internal/dto"
	"github.com/orafaelmatos/learn-hub/internal/service"
	"github.com/orafaelmatos/learn-hub/pkg/response"
)

// MaterialHandler 课程资料模块 HTTP 处理器
type MaterialHandler struct {
	materialSvc service.MaterialService
}

// NewMaterialHandler 创建 MaterialHandler
func NewMaterialHandler(materialSvc service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialSvc: materialSvc}
}

// CreateFolder 创建资料文件夹（归属教师）
// POST /api/v1/courses/:id/folders
func (h *MaterialHandler) CreateFolder(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.CreateFolderRequest
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

	folder, err := h.materialSvc.CreateFolder(c.Request.Context(), callerID, role, courseID, &req)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.Created(c, folder)
}

// ListFolders 课程文件夹列表
// GET /api/v1/courses/:id/folders
func (h *MaterialHandler) ListFolders(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
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

	folders, err := h.materialSvc.ListFolders(c.Request.Context(), callerID, role, courseID)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, gin.H{"list": folders})
}

// Upload 上传资料（归属教师，multipart 表单）
// POST /api/v1/courses/:id/materials
func (h *MaterialHandler) Upload(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.UploadMaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
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

	material, err := h.materialSvc.Upload(c.Request.Context(), callerID, role, courseID, &req, file)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.Created(c, material)
}

// ListMaterials 课程资料列表
// GET /api/v1/courses/:id/materials
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
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

	var folderID *string
	if v := c.Query("folder_id"); v != "" {
		folderID = &v
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	materials, total, err := h.materialSvc.ListByCourse(c.Request.Context(), callerID, role, courseID, folderID, page.Page, page.PageSize)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OKPage(c, materials, total, page.Page, page.PageSize)
}

// ViewMaterial 查看资料详情（记录一次访问）
// GET /api/v1/materials/:id
func (h *MaterialHandler) ViewMaterial(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "资料ID不能为空")
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

	material, err := h.materialSvc.View(c.Request.Context(), callerID, role, id)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, material)
}

// GetDownloadLink 生成时效性下载链接
// POST /api/v1/materials/:id/download
func (h *MaterialHandler) GetDownloadLink(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "资料ID不能为空")
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

	link, err := h.materialSvc.GenerateDownloadLink(c.Request.Context(), callerID, role, id)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, link)
}

// GetStats 资料访问统计（归属教师或管理员）
// GET /api/v1/materials/:id/stats
func (h *MaterialHandler) GetStats(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "资料ID不能为空")
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

	stats, err := h.materialSvc.Stats(c.Request.Context(), callerID, role, id)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, stats)
}

// handleMaterialError 统一处理资料模块业务错误
func (h *MaterialHandler) handleMaterialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrMaterialNotFound):
		response.NotFound(c, 16001, "资料不存在")
	case errors.Is(err, service.ErrFolderNotFound):
		response.NotFound(c, 16002, "文件夹不存在")
	case errors.Is(err, service.ErrFolderCourseMismatch):
		response.BadRequest(c, 16003, "文件夹不属于该课程")
	case errors.Is(err, service.ErrFileTooLarge):
		response.BadRequest(c, 16004, "文件大小超出限制")
	case errors.Is(err, service.ErrFileExtNotAllowed):
		response.BadRequest(c, 16005, "不支持的文件类型")
	case errors.Is(err, service.ErrMaterialNoAccess):
		response.Forbidden(c, 16006, "无权访问该资料")
	case errors.Is(err, service.ErrMaterialNotDownloadable):
		response.Forbidden(c, 16007, "该资料不允许下载")
	case errors.Is(err, service.ErrNotCourseOwner):
		response.Forbidden(c, 10003, "无权操作该课程的资料")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/material_handler.go
