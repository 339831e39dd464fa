package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/orafaelmatos/learn-hub/internal/dto"
	"github.com/orafaelmatos/learn-hub/internal/model"
	"github.com/orafaelmatos/learn-hub/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestMaterialService(t *testing.T) (MaterialService, *mockRepos) {
	t.Helper()
	cfg := testConfig()
	cfg.Upload.Dir = t.TempDir()
	repo, mocks := newMockRepos()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewMaterialService(cfg, repo, jwtMgr, zap.NewNop())
	return svc, mocks
}

// makeFileHeader 构造一个携带真实内容的 multipart 文件头
func makeFileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("构造 multipart 失败: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("写入文件内容失败: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("关闭 multipart writer 失败: %v", err)
	}

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("解析 multipart 失败: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func seedMaterial(mocks *mockRepos, id, courseID, teacherID string, downloadable bool) *model.Material {
	material := &model.Material{
		MaterialID:     id,
		CourseID:       courseID,
		TeacherID:      teacherID,
		Title:          "第一章讲义",
		MaterialType:   model.MaterialTypeDocument,
		FileName:       "chapter1.pdf",
		FilePath:       "/tmp/chapter1.pdf",
		FileExt:        "pdf",
		IsDownloadable: downloadable,
	}
	mocks.material.materials[id] = material
	return material
}

// ── 文件夹测试 ──

func TestMaterialService_CreateFolder_Success(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	result, err := svc.CreateFolder(context.Background(), "teacher-001", model.RoleTeacher, "course-001",
		&dto.CreateFolderRequest{Name: "第一单元"})
	if err != nil {
		t.Fatalf("CreateFolder 应成功: %v", err)
	}
	if result.Name != "第一单元" || result.CourseID != "course-001" {
		t.Errorf("文件夹字段不匹配: %+v", result)
	}
}

func TestMaterialService_CreateFolder_ParentMismatch(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedCourse(mocks, "course-002", "teacher-001", model.CourseStatusPublished)
	mocks.materialFolder.folders["fld-001"] = &model.MaterialFolder{
		FolderID: "fld-001",
		CourseID: "course-002",
		Name:     "别的课程的文件夹",
	}

	parent := "fld-001"
	_, err := svc.CreateFolder(context.Background(), "teacher-001", model.RoleTeacher, "course-001",
		&dto.CreateFolderRequest{Name: "第一单元", ParentFolderID: &parent})
	if !errors.Is(err, ErrFolderCourseMismatch) {
		t.Errorf("期望 ErrFolderCourseMismatch，实际: %v", err)
	}
}

// ── 上传测试 ──

func TestMaterialService_Upload_Success(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	file := makeFileHeader(t, "lecture.pdf", "fake pdf content")
	result, err := svc.Upload(context.Background(), "teacher-001", model.RoleTeacher, "course-001",
		&dto.UploadMaterialRequest{Title: "第一讲"}, file)
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}
	if result.FileName != "lecture.pdf" || result.FileExt != "pdf" {
		t.Errorf("文件元数据不匹配: %+v", result)
	}
	if result.MaterialType != model.MaterialTypeDocument {
		t.Errorf("pdf 应推断为 document，实际=%s", result.MaterialType)
	}
	if !result.IsDownloadable {
		t.Error("未指定时应默认可下载")
	}

	// 文件应已落盘
	stored := mocks.material.materials[result.ID]
	if _, err := os.Stat(stored.FilePath); err != nil {
		t.Errorf("上传文件应已落盘: %v", err)
	}
}

func TestMaterialService_Upload_NotOwner(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	file := makeFileHeader(t, "lecture.pdf", "fake pdf content")
	_, err := svc.Upload(context.Background(), "teacher-002", model.RoleTeacher, "course-001",
		&dto.UploadMaterialRequest{Title: "第一讲"}, file)
	if !errors.Is(err, ErrNotCourseOwner) {
		t.Errorf("期望 ErrNotCourseOwner，实际: %v", err)
	}
}

func TestMaterialService_Upload_ExtNotAllowed(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	file := makeFileHeader(t, "malware.exe", "binary")
	_, err := svc.Upload(context.Background(), "teacher-001", model.RoleTeacher, "course-001",
		&dto.UploadMaterialRequest{Title: "可执行文件"}, file)
	if !errors.Is(err, ErrFileExtNotAllowed) {
		t.Errorf("期望 ErrFileExtNotAllowed，实际: %v", err)
	}
}

func TestMaterialService_Upload_TooLarge(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	file := makeFileHeader(t, "big.pdf", strings.Repeat("x", 2048))
	file.Size = 200 << 20 // 直接越过配置上限
	_, err := svc.Upload(context.Background(), "teacher-001", model.RoleTeacher, "course-001",
		&dto.UploadMaterialRequest{Title: "超大文件"}, file)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("期望 ErrFileTooLarge，实际: %v", err)
	}
}

// ── 访问控制测试 ──

func TestMaterialService_View_EnrolledStudent(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedMaterial(mocks, "mat-001", "course-001", "teacher-001", true)
	seedEnrollment(mocks, "student-001", "course-001")

	result, err := svc.View(context.Background(), "student-001", model.RoleStudent, "mat-001")
	if err != nil {
		t.Fatalf("View 应成功: %v", err)
	}
	if result.ViewCount != 1 {
		t.Errorf("查看后计数应为1，实际=%d", result.ViewCount)
	}
	if mocks.material.materials["mat-001"].ViewCount != 1 {
		t.Errorf("资料总查看数应同步累加，实际=%d", mocks.material.materials["mat-001"].ViewCount)
	}
}

func TestMaterialService_View_NotEnrolled(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedMaterial(mocks, "mat-001", "course-001", "teacher-001", true)

	_, err := svc.View(context.Background(), "student-001", model.RoleStudent, "mat-001")
	if !errors.Is(err, ErrMaterialNoAccess) {
		t.Errorf("期望 ErrMaterialNoAccess，实际: %v", err)
	}
}

func TestMaterialService_View_CourseTeacher(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedMaterial(mocks, "mat-001", "course-001", "teacher-001", true)

	if _, err := svc.View(context.Background(), "teacher-001", model.RoleTeacher, "mat-001"); err != nil {
		t.Errorf("课程教师应可查看资料: %v", err)
	}
}

// ── 下载链接测试 ──

func TestMaterialService_GenerateDownloadLink_Success(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedMaterial(mocks, "mat-001", "course-001", "teacher-001", true)
	seedEnrollment(mocks, "student-001", "course-001")

	result, err := svc.GenerateDownloadLink(context.Background(), "student-001", model.RoleStudent, "mat-001")
	if err != nil {
		t.Fatalf("GenerateDownloadLink 应成功: %v", err)
	}
	if !strings.HasPrefix(result.DownloadURL, "http://localhost:8080/api/v1/files/") {
		t.Errorf("下载链接格式不对: %s", result.DownloadURL)
	}
	if result.ExpiresIn != 600 {
		t.Errorf("期望有效期600秒，实际=%d", result.ExpiresIn)
	}
	if mocks.material.materials["mat-001"].DownloadCount != 1 {
		t.Errorf("下载计数应累加，实际=%d", mocks.material.materials["mat-001"].DownloadCount)
	}
}

func TestMaterialService_GenerateDownloadLink_NotDownloadable(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedMaterial(mocks, "mat-001", "course-001", "teacher-001", false)
	seedEnrollment(mocks, "student-001", "course-001")

	_, err := svc.GenerateDownloadLink(context.Background(), "student-001", model.RoleStudent, "mat-001")
	if !errors.Is(err, ErrMaterialNotDownloadable) {
		t.Errorf("期望 ErrMaterialNotDownloadable，实际: %v", err)
	}
}

func TestMaterialService_ResolveDownloadToken_RoundTrip(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedMaterial(mocks, "mat-001", "course-001", "teacher-001", true)
	seedEnrollment(mocks, "student-001", "course-001")

	link, err := svc.GenerateDownloadLink(context.Background(), "student-001", model.RoleStudent, "mat-001")
	if err != nil {
		t.Fatalf("GenerateDownloadLink 应成功: %v", err)
	}
	token := link.DownloadURL[strings.LastIndex(link.DownloadURL, "/")+1:]

	filePath, fileName, err := svc.ResolveDownloadToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveDownloadToken 应成功: %v", err)
	}
	if filePath != "/tmp/chapter1.pdf" || fileName != "chapter1.pdf" {
		t.Errorf("解析结果不匹配: path=%s name=%s", filePath, fileName)
	}
}

func TestMaterialService_ResolveDownloadToken_Garbage(t *testing.T) {
	svc, _ := setupTestMaterialService(t)

	_, _, err := svc.ResolveDownloadToken(context.Background(), "not-a-token")
	if !errors.Is(err, ErrDownloadTokenInvalid) {
		t.Errorf("期望 ErrDownloadTokenInvalid，实际: %v", err)
	}
}

func TestMaterialService_ResolveDownloadToken_AccessTokenRejected(t *testing.T) {
	cfg := testConfig()
	repo, mocks := newMockRepos()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewMaterialService(cfg, repo, jwtMgr, zap.NewNop())
	seedMaterial(mocks, "mat-001", "course-001", "teacher-001", true)

	// 普通 Access Token 不可用于下载
	accessToken, err := jwtMgr.GenerateAccessToken("student-001", model.RoleStudent)
	if err != nil {
		t.Fatalf("生成 token 失败: %v", err)
	}

	_, _, err = svc.ResolveDownloadToken(context.Background(), accessToken)
	if !errors.Is(err, ErrDownloadTokenInvalid) {
		t.Errorf("期望 ErrDownloadTokenInvalid，实际: %v", err)
	}
}

// ── 统计测试 ──

func TestMaterialService_Stats_OwnerOnly(t *testing.T) {
	svc, mocks := setupTestMaterialService(t)
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedMaterial(mocks, "mat-001", "course-001", "teacher-001", true)
	seedEnrollment(mocks, "student-001", "course-001")

	if _, err := svc.View(context.Background(), "student-001", model.RoleStudent, "mat-001"); err != nil {
		t.Fatalf("View 应成功: %v", err)
	}

	stats, err := svc.Stats(context.Background(), "teacher-001", model.RoleTeacher, "mat-001")
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if stats.TotalViews != 1 || len(stats.Accesses) != 1 {
		t.Errorf("期望1次查看记录，实际 views=%d accesses=%d", stats.TotalViews, len(stats.Accesses))
	}

	// 其他教师不可查看统计
	if _, err := svc.Stats(context.Background(), "teacher-002", model.RoleTeacher, "mat-001"); !errors.Is(err, ErrNotCourseOwner) {
		t.Errorf("期望 ErrNotCourseOwner，实际: %v", err)
	}
}
