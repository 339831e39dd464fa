package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/orafaelmatos/learn-hub/internal/model"
)

// ── 测试辅助 ──

func setupTestEnrollmentService() (EnrollmentService, *mockRepos) {
	repo, mocks := newMockRepos()
	svc := NewEnrollmentService(repo, zap.NewNop())
	return svc, mocks
}

// ── Enroll 测试 ──

func TestEnrollmentService_Enroll_Success(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	result, err := svc.Enroll(context.Background(), "student-001", "course-001")
	if err != nil {
		t.Fatalf("Enroll 应成功: %v", err)
	}
	if result.StudentID != "student-001" || result.CourseID != "course-001" {
		t.Errorf("选课记录字段不匹配: %+v", result)
	}
	if mocks.course.courses["course-001"].EnrolledCount != 1 {
		t.Errorf("选课后计数应为1，实际=%d", mocks.course.courses["course-001"].EnrolledCount)
	}
}

func TestEnrollmentService_Enroll_DraftCourse(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusDraft)

	_, err := svc.Enroll(context.Background(), "student-001", "course-001")
	if !errors.Is(err, ErrCourseNotEnrollable) {
		t.Errorf("期望 ErrCourseNotEnrollable，实际: %v", err)
	}
}

func TestEnrollmentService_Enroll_CourseMissing(t *testing.T) {
	svc, _ := setupTestEnrollmentService()

	_, err := svc.Enroll(context.Background(), "student-001", "course-nope")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestEnrollmentService_Enroll_Duplicate(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	if _, err := svc.Enroll(context.Background(), "student-001", "course-001"); err != nil {
		t.Fatalf("首次选课应成功: %v", err)
	}

	_, err := svc.Enroll(context.Background(), "student-001", "course-001")
	if !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("期望 ErrAlreadyEnrolled，实际: %v", err)
	}
	if mocks.course.courses["course-001"].EnrolledCount != 1 {
		t.Errorf("重复选课不应增加计数，实际=%d", mocks.course.courses["course-001"].EnrolledCount)
	}
}

func TestEnrollmentService_Enroll_CapacityReached(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	course := seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	capacity := 1
	course.Capacity = &capacity

	if _, err := svc.Enroll(context.Background(), "student-001", "course-001"); err != nil {
		t.Fatalf("首个学生选课应成功: %v", err)
	}

	// 容量1，第二个学生应被拒绝
	_, err := svc.Enroll(context.Background(), "student-002", "course-001")
	if !errors.Is(err, ErrCourseFull) {
		t.Errorf("期望 ErrCourseFull，实际: %v", err)
	}
	if course.EnrolledCount != 1 {
		t.Errorf("满员后计数不应超过容量，实际=%d", course.EnrolledCount)
	}
}

func TestEnrollmentService_Enroll_NoCapacityLimit(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	// 未设容量时不限名额
	for i, studentID := range []string{"s-1", "s-2", "s-3"} {
		if _, err := svc.Enroll(context.Background(), studentID, "course-001"); err != nil {
			t.Fatalf("第%d个学生选课应成功: %v", i+1, err)
		}
	}
	if mocks.course.courses["course-001"].EnrolledCount != 3 {
		t.Errorf("期望计数=3，实际=%d", mocks.course.courses["course-001"].EnrolledCount)
	}
}

// ── Unenroll 测试 ──

func TestEnrollmentService_Unenroll_Success(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	if _, err := svc.Enroll(context.Background(), "student-001", "course-001"); err != nil {
		t.Fatalf("选课应成功: %v", err)
	}

	if err := svc.Unenroll(context.Background(), "student-001", "course-001"); err != nil {
		t.Fatalf("Unenroll 应成功: %v", err)
	}
	if mocks.course.courses["course-001"].EnrolledCount != 0 {
		t.Errorf("退课后计数应为0，实际=%d", mocks.course.courses["course-001"].EnrolledCount)
	}

	// 退课后名额释放，可再次选课
	if _, err := svc.Enroll(context.Background(), "student-001", "course-001"); err != nil {
		t.Errorf("退课后应可重新选课: %v", err)
	}
}

func TestEnrollmentService_Unenroll_NotEnrolled(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	err := svc.Unenroll(context.Background(), "student-001", "course-001")
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("期望 ErrNotEnrolled，实际: %v", err)
	}
}

// ── 名单测试 ──

func TestEnrollmentService_ListCourseEnrollments_NotOwner(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	_, _, err := svc.ListCourseEnrollments(context.Background(), "teacher-002", model.RoleTeacher, "course-001", 1, 20)
	if !errors.Is(err, ErrNotCourseOwner) {
		t.Errorf("期望 ErrNotCourseOwner，实际: %v", err)
	}
}

func TestEnrollmentService_ListCourseEnrollments_Owner(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	if _, err := svc.Enroll(context.Background(), "student-001", "course-001"); err != nil {
		t.Fatalf("选课应成功: %v", err)
	}

	result, total, err := svc.ListCourseEnrollments(context.Background(), "teacher-001", model.RoleTeacher, "course-001", 1, 20)
	if err != nil {
		t.Fatalf("ListCourseEnrollments 应成功: %v", err)
	}
	if total != 1 || len(result) != 1 {
		t.Errorf("期望1条选课记录，实际=%d", total)
	}
}
