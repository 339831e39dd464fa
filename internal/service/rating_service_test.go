package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/orafaelmatos/learn-hub/internal/dto"
	"github.com/orafaelmatos/learn-hub/internal/model"
)

// ── 测试辅助 ──

func setupTestRatingService() (RatingService, *mockRepos) {
	repo, mocks := newMockRepos()
	svc := NewRatingService(repo, zap.NewNop())
	return svc, mocks
}

func seedEnrollment(mocks *mockRepos, studentID, courseID string) {
	mocks.enrollment.enrollments[enrollKey(studentID, courseID)] = &model.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
	}
}

// ── Rate 测试 ──

func TestRatingService_Rate_Success(t *testing.T) {
	svc, mocks := setupTestRatingService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedEnrollment(mocks, "student-001", "course-001")

	result, err := svc.Rate(context.Background(), "student-001", "course-001", &dto.RateCourseRequest{
		Score:  4,
		Review: "内容充实",
	})
	if err != nil {
		t.Fatalf("Rate 应成功: %v", err)
	}
	if result.AverageRating != 4 || result.RatingCount != 1 {
		t.Errorf("期望聚合 avg=4 count=1，实际 avg=%v count=%d", result.AverageRating, result.RatingCount)
	}
	if result.Rating.Score != 4 {
		t.Errorf("期望评分=4，实际=%d", result.Rating.Score)
	}
}

func TestRatingService_Rate_InvalidScore(t *testing.T) {
	svc, mocks := setupTestRatingService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedEnrollment(mocks, "student-001", "course-001")

	for _, score := range []int{0, 6, -1} {
		_, err := svc.Rate(context.Background(), "student-001", "course-001", &dto.RateCourseRequest{Score: score})
		if !errors.Is(err, ErrInvalidScore) {
			t.Errorf("score=%d 期望 ErrInvalidScore，实际: %v", score, err)
		}
	}
}

func TestRatingService_Rate_NotEnrolled(t *testing.T) {
	svc, mocks := setupTestRatingService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	_, err := svc.Rate(context.Background(), "student-001", "course-001", &dto.RateCourseRequest{Score: 5})
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("期望 ErrNotEnrolled，实际: %v", err)
	}
}

func TestRatingService_Rate_UpsertOverwrites(t *testing.T) {
	svc, mocks := setupTestRatingService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedEnrollment(mocks, "student-001", "course-001")

	if _, err := svc.Rate(context.Background(), "student-001", "course-001", &dto.RateCourseRequest{Score: 3}); err != nil {
		t.Fatalf("首次评分应成功: %v", err)
	}

	// 同一学生重复评分覆盖旧值，不新增记录
	result, err := svc.Rate(context.Background(), "student-001", "course-001", &dto.RateCourseRequest{Score: 5})
	if err != nil {
		t.Fatalf("重复评分应成功: %v", err)
	}
	if result.AverageRating != 5 || result.RatingCount != 1 {
		t.Errorf("期望聚合 avg=5 count=1，实际 avg=%v count=%d", result.AverageRating, result.RatingCount)
	}

	course := mocks.course.courses["course-001"]
	if course.AverageRating != 5 || course.RatingCount != 1 {
		t.Errorf("课程聚合应同步更新，实际 avg=%v count=%d", course.AverageRating, course.RatingCount)
	}
}

func TestRatingService_Rate_AggregateAcrossStudents(t *testing.T) {
	svc, mocks := setupTestRatingService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedEnrollment(mocks, "student-001", "course-001")
	seedEnrollment(mocks, "student-002", "course-001")

	if _, err := svc.Rate(context.Background(), "student-001", "course-001", &dto.RateCourseRequest{Score: 3}); err != nil {
		t.Fatalf("评分应成功: %v", err)
	}
	result, err := svc.Rate(context.Background(), "student-002", "course-001", &dto.RateCourseRequest{Score: 5})
	if err != nil {
		t.Fatalf("评分应成功: %v", err)
	}

	if result.AverageRating != 4 || result.RatingCount != 2 {
		t.Errorf("期望聚合 avg=4 count=2，实际 avg=%v count=%d", result.AverageRating, result.RatingCount)
	}
}

// ── 查询测试 ──

func TestRatingService_GetMyRating_NotFound(t *testing.T) {
	svc, mocks := setupTestRatingService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)

	_, err := svc.GetMyRating(context.Background(), "student-001", "course-001")
	if !errors.Is(err, ErrRatingNotFound) {
		t.Errorf("期望 ErrRatingNotFound，实际: %v", err)
	}
}

func TestRatingService_ListCourseRatings(t *testing.T) {
	svc, mocks := setupTestRatingService()
	seedCourse(mocks, "course-001", "teacher-001", model.CourseStatusPublished)
	seedEnrollment(mocks, "student-001", "course-001")

	if _, err := svc.Rate(context.Background(), "student-001", "course-001", &dto.RateCourseRequest{
		Score:  5,
		Review: "推荐",
	}); err != nil {
		t.Fatalf("评分应成功: %v", err)
	}

	result, total, err := svc.ListCourseRatings(context.Background(), "course-001", 1, 20)
	if err != nil {
		t.Fatalf("ListCourseRatings 应成功: %v", err)
	}
	if total != 1 || len(result) != 1 {
		t.Errorf("期望1条评分，实际=%d", total)
	}
	if result[0].Review != "推荐" {
		t.Errorf("期望评价=推荐，实际=%s", result[0].Review)
	}
}
