package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/orafaelmatos/learn-hub/config"
	"github.com/orafaelmatos/learn-hub/internal/dto"
	"github.com/orafaelmatos/learn-hub/internal/model"
	"github.com/orafaelmatos/learn-hub/internal/repository"
	"github.com/orafaelmatos/learn-hub/pkg/jwt"
)

// ── 资料模块业务错误 ──

var (
	ErrMaterialNotFound        = errors.New("资料不存在")
	ErrFolderNotFound          = errors.New("文件夹不存在")
	ErrFolderCourseMismatch    = errors.New("文件夹不属于该课程")
	ErrFileTooLarge            = errors.New("文件大小超出限制")
	ErrFileExtNotAllowed       = errors.New("不支持的文件类型")
	ErrMaterialNoAccess        = errors.New("无权访问该资料")
	ErrMaterialNotDownloadable = errors.New("该资料不允许下载")
	ErrDownloadTokenInvalid    = errors.New("下载链接无效或已过期")
)

// MaterialService 课程资料业务接口
type MaterialService interface {
	CreateFolder(ctx context.Context, callerID, callerRole, courseID string, req *dto.CreateFolderRequest) (*dto.FolderResponse, error)
	ListFolders(ctx context.Context, callerID, callerRole, courseID string) ([]dto.FolderResponse, error)

	// Upload 仅课程归属教师可上传；文件落盘后再写库，写库失败时清理落盘文件
	Upload(ctx context.Context, callerID, callerRole, courseID string, req *dto.UploadMaterialRequest, file *multipart.FileHeader) (*dto.MaterialResponse, error)
	// View 校验访问权后返回资料详情并记录一次查看
	View(ctx context.Context, callerID, callerRole, materialID string) (*dto.MaterialResponse, error)
	ListByCourse(ctx context.Context, callerID, callerRole, courseID string, folderID *string, page, pageSize int) ([]dto.MaterialResponse, int64, error)
	// GenerateDownloadLink 生成短时效下载链接并记录一次下载
	GenerateDownloadLink(ctx context.Context, callerID, callerRole, materialID string) (*dto.DownloadLinkResponse, error)
	// ResolveDownloadToken 校验下载 token 并返回待下发文件的磁盘路径和原始文件名
	ResolveDownloadToken(ctx context.Context, token string) (filePath, fileName string, err error)
	// Stats 课程教师或管理员查看资料访问统计
	Stats(ctx context.Context, callerID, callerRole, materialID string) (*dto.MaterialStatsResponse, error)
}

type materialService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	logger *zap.Logger
}

// NewMaterialService 创建 MaterialService 实例
func NewMaterialService(cfg *config.Config, repo *repository.Repository, jwtMgr *jwt.Manager, logger *zap.Logger) MaterialService {
	return &materialService{cfg: cfg, repo: repo, jwtMgr: jwtMgr, logger: logger}
}

// ────────────────────── 文件夹 ──────────────────────

func (s *materialService) CreateFolder(ctx context.Context, callerID, callerRole, courseID string, req *dto.CreateFolderRequest) (*dto.FolderResponse, error) {
	if _, err := s.loadCourseForTeacher(ctx, callerID, callerRole, courseID); err != nil {
		return nil, err
	}

	if req.ParentFolderID != nil {
		parent, err := s.repo.MaterialFolder.GetByID(ctx, *req.ParentFolderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrFolderNotFound
			}
			return nil, err
		}
		if parent.CourseID != courseID {
			return nil, ErrFolderCourseMismatch
		}
	}

	folder := &model.MaterialFolder{
		CourseID:       courseID,
		Name:           req.Name,
		Description:    req.Description,
		ParentFolderID: req.ParentFolderID,
	}
	folder.CreatedBy = &callerID

	if err := s.repo.MaterialFolder.Create(ctx, folder); err != nil {
		s.logger.Error("创建文件夹失败", zap.Error(err))
		return nil, err
	}

	resp := toFolderResponse(folder)
	return &resp, nil
}

func (s *materialService) ListFolders(ctx context.Context, callerID, callerRole, courseID string) ([]dto.FolderResponse, error) {
	if _, err := s.loadCourseForViewer(ctx, callerID, callerRole, courseID); err != nil {
		return nil, err
	}

	folders, err := s.repo.MaterialFolder.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出文件夹失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.FolderResponse, 0, len(folders))
	for i := range folders {
		result = append(result, toFolderResponse(&folders[i]))
	}
	return result, nil
}

// ────────────────────── 资料 ──────────────────────

func (s *materialService) Upload(ctx context.Context, callerID, callerRole, courseID string, req *dto.UploadMaterialRequest, file *multipart.FileHeader) (*dto.MaterialResponse, error) {
	if _, err := s.loadCourseForTeacher(ctx, callerID, callerRole, courseID); err != nil {
		return nil, err
	}

	if file.Size > s.cfg.Upload.MaxSizeBytes() {
		return nil, ErrFileTooLarge
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	if !s.extAllowed(ext) {
		return nil, ErrFileExtNotAllowed
	}

	if req.FolderID != nil {
		folder, err := s.repo.MaterialFolder.GetByID(ctx, *req.FolderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrFolderNotFound
			}
			return nil, err
		}
		if folder.CourseID != courseID {
			return nil, ErrFolderCourseMismatch
		}
	}

	// 落盘路径按课程分目录，文件名用 UUID 避免冲突，原始文件名只存库
	storedName := uuid.New().String()
	if ext != "" {
		storedName += "." + ext
	}
	dir := filepath.Join(s.cfg.Upload.Dir, courseID)
	dst := filepath.Join(dir, storedName)

	if err := s.saveFile(file, dir, dst); err != nil {
		s.logger.Error("保存上传文件失败", zap.String("dst", dst), zap.Error(err))
		return nil, err
	}

	materialType := req.MaterialType
	if materialType == "" {
		materialType = guessMaterialType(ext)
	}
	downloadable := true
	if req.IsDownloadable != nil {
		downloadable = *req.IsDownloadable
	}

	material := &model.Material{
		CourseID:       courseID,
		TeacherID:      callerID,
		FolderID:       req.FolderID,
		Title:          req.Title,
		Description:    req.Description,
		MaterialType:   materialType,
		FileName:       file.Filename,
		FilePath:       dst,
		FileSize:       file.Size,
		FileExt:        ext,
		IsDownloadable: downloadable,
	}
	material.CreatedBy = &callerID

	if err := s.repo.Material.Create(ctx, material); err != nil {
		// 写库失败时回收已落盘的文件
		_ = os.Remove(dst)
		s.logger.Error("创建资料记录失败", zap.Error(err))
		return nil, err
	}

	resp := toMaterialResponse(material)
	return &resp, nil
}

func (s *materialService) View(ctx context.Context, callerID, callerRole, materialID string) (*dto.MaterialResponse, error) {
	material, err := s.loadAccessibleMaterial(ctx, callerID, callerRole, materialID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MaterialAccess.RecordAccess(ctx, callerID, materialID, model.AccessActionView); err != nil {
		s.logger.Error("记录资料查看失败", zap.String("material_id", materialID), zap.Error(err))
		return nil, err
	}
	material.ViewCount++

	resp := toMaterialResponse(material)
	return &resp, nil
}

func (s *materialService) ListByCourse(ctx context.Context, callerID, callerRole, courseID string, folderID *string, page, pageSize int) ([]dto.MaterialResponse, int64, error) {
	if _, err := s.loadCourseForViewer(ctx, callerID, callerRole, courseID); err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	materials, total, err := s.repo.Material.ListByCourse(ctx, courseID, folderID, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("列出课程资料失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.MaterialResponse, 0, len(materials))
	for i := range materials {
		result = append(result, toMaterialResponse(&materials[i]))
	}
	return result, total, nil
}

func (s *materialService) GenerateDownloadLink(ctx context.Context, callerID, callerRole, materialID string) (*dto.DownloadLinkResponse, error) {
	material, err := s.loadAccessibleMaterial(ctx, callerID, callerRole, materialID)
	if err != nil {
		return nil, err
	}

	if !material.IsDownloadable {
		return nil, ErrMaterialNotDownloadable
	}

	ttl := s.cfg.Upload.DownloadTokenTTL
	token, err := s.jwtMgr.GenerateDownloadToken(callerID, materialID, ttl)
	if err != nil {
		s.logger.Error("生成下载 token 失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.MaterialAccess.RecordAccess(ctx, callerID, materialID, model.AccessActionDownload); err != nil {
		s.logger.Error("记录资料下载失败", zap.String("material_id", materialID), zap.Error(err))
		return nil, err
	}

	return &dto.DownloadLinkResponse{
		DownloadURL: fmt.Sprintf("%s/api/v1/files/%s", strings.TrimRight(s.cfg.Server.BaseURL, "/"), token),
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

func (s *materialService) ResolveDownloadToken(ctx context.Context, token string) (string, string, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return "", "", ErrDownloadTokenInvalid
	}
	if claims.TokenType != "download" || claims.MaterialID == "" {
		return "", "", ErrDownloadTokenInvalid
	}

	material, err := s.repo.Material.GetByID(ctx, claims.MaterialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrMaterialNotFound
		}
		return "", "", err
	}

	if !material.IsDownloadable {
		return "", "", ErrMaterialNotDownloadable
	}

	return material.FilePath, material.FileName, nil
}

func (s *materialService) Stats(ctx context.Context, callerID, callerRole, materialID string) (*dto.MaterialStatsResponse, error) {
	material, err := s.repo.Material.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}

	if callerRole != model.RoleAdmin && material.TeacherID != callerID {
		return nil, ErrNotCourseOwner
	}

	accesses, err := s.repo.MaterialAccess.ListByMaterial(ctx, materialID)
	if err != nil {
		s.logger.Error("查询资料访问记录失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.MaterialAccessItem, 0, len(accesses))
	for i := range accesses {
		a := &accesses[i]
		item := dto.MaterialAccessItem{
			UserID:        a.UserID,
			ViewCount:     a.ViewCount,
			DownloadCount: a.DownloadCount,
			LastAction:    a.LastAction,
			LastAccessAt:  a.LastAccessAt.Format(time.RFC3339),
		}
		if a.User != nil {
			item.UserName = a.User.Name
		}
		items = append(items, item)
	}

	return &dto.MaterialStatsResponse{
		MaterialID:     materialID,
		TotalViews:     material.ViewCount,
		TotalDownloads: material.DownloadCount,
		Accesses:       items,
	}, nil
}

// ────────────────────── 内部 ──────────────────────

// loadCourseForTeacher 加载课程并要求调用方为课程归属教师或管理员
func (s *materialService) loadCourseForTeacher(ctx context.Context, callerID, callerRole, courseID string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if callerRole != model.RoleAdmin && course.TeacherID != callerID {
		return nil, ErrNotCourseOwner
	}
	return course, nil
}

// loadCourseForViewer 加载课程并要求调用方已选课、为课程教师或管理员
func (s *materialService) loadCourseForViewer(ctx context.Context, callerID, callerRole, courseID string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if callerRole == model.RoleAdmin || course.TeacherID == callerID {
		return course, nil
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, callerID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrMaterialNoAccess
	}
	return course, nil
}

func (s *materialService) loadAccessibleMaterial(ctx context.Context, callerID, callerRole, materialID string) (*model.Material, error) {
	material, err := s.repo.Material.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}

	if _, err := s.loadCourseForViewer(ctx, callerID, callerRole, material.CourseID); err != nil {
		return nil, err
	}
	return material, nil
}

func (s *materialService) extAllowed(ext string) bool {
	for _, allowed := range s.cfg.Upload.AllowedExts {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func (s *materialService) saveFile(file *multipart.FileHeader, dir, dst string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

// guessMaterialType 按扩展名推断资料类型，未命中时归为 other
func guessMaterialType(ext string) string {
	switch ext {
	case "pdf", "doc", "docx", "txt":
		return model.MaterialTypeDocument
	case "mp4", "avi", "mov":
		return model.MaterialTypeVideo
	case "mp3", "wav":
		return model.MaterialTypeAudio
	case "ppt", "pptx":
		return model.MaterialTypePresentation
	case "jpg", "jpeg", "png", "gif":
		return model.MaterialTypeImage
	default:
		return model.MaterialTypeOther
	}
}

// ────────────────────── 转换 ──────────────────────

func toFolderResponse(folder *model.MaterialFolder) dto.FolderResponse {
	return dto.FolderResponse{
		ID:             folder.FolderID,
		CourseID:       folder.CourseID,
		Name:           folder.Name,
		Description:    folder.Description,
		ParentFolderID: folder.ParentFolderID,
	}
}

func toMaterialResponse(material *model.Material) dto.MaterialResponse {
	resp := dto.MaterialResponse{
		ID:             material.MaterialID,
		CourseID:       material.CourseID,
		Title:          material.Title,
		Description:    material.Description,
		MaterialType:   material.MaterialType,
		FileName:       material.FileName,
		FileSize:       material.FileSize,
		FileExt:        material.FileExt,
		IsDownloadable: material.IsDownloadable,
		ViewCount:      material.ViewCount,
		DownloadCount:  material.DownloadCount,
		CreatedAt:      material.CreatedAt.Format(time.RFC3339),
	}
	if material.FolderID != nil {
		resp.FolderID = *material.FolderID
	}
	return resp
}

// [自证通过] internal/service/material_service.go
