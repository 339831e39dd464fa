package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/orafaelmatos/learn-hub/internal/model"
	pkgerrors "github.com/orafaelmatos/learn-hub/pkg/errors"
)

// LiveParticipantRepository 直播参与记录数据访问接口
type LiveParticipantRepository interface {
	// Create 在单个事务内完成: 课次行加锁 → 确认仍处于 live → 插入在场记录
	// 课次不存在返回 gorm.ErrRecordNotFound；
	// 课次已不在 live 返回 pkgerrors.ErrStateConflict（与 End 的收尾在行锁上串行化）；
	// 同一用户已有在场记录由部分唯一索引兜底，返回 pkgerrors.ErrDuplicateKey
	Create(ctx context.Context, participant *model.LiveParticipant) error
	GetOpen(ctx context.Context, sessionID, userID string) (*model.LiveParticipant, error)
	// CloseOpen 给在场记录盖离开时间；无在场记录返回 gorm.ErrRecordNotFound
	CloseOpen(ctx context.Context, sessionID, userID string, leftAt time.Time) error
	ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]model.LiveParticipant, int64, error)
	CountOpenBySession(ctx context.Context, sessionID string) (int64, error)
}

// liveParticipantRepo LiveParticipantRepository 的 GORM 实现
type liveParticipantRepo struct {
	db *gorm.DB
}

// NewLiveParticipantRepo 创建 LiveParticipantRepository 实例
func NewLiveParticipantRepo(db *gorm.DB) LiveParticipantRepository {
	return &liveParticipantRepo{db: db}
}

func (r *liveParticipantRepo) Create(ctx context.Context, participant *model.LiveParticipant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 课次行加锁后复查状态，避免加入与结束竞争时在已结束课次上留下在场记录
		var session model.LiveSession
		if err := forUpdate(tx).
			Where("session_id = ?", participant.SessionID).
			First(&session).Error; err != nil {
			return err
		}
		if !session.IsLive() {
			return pkgerrors.ErrStateConflict
		}

		err := tx.Create(participant).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.ErrDuplicateKey
		}
		return err
	})
}

func (r *liveParticipantRepo) GetOpen(ctx context.Context, sessionID, userID string) (*model.LiveParticipant, error) {
	var participant model.LiveParticipant
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ? AND left_at IS NULL", sessionID, userID).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *liveParticipantRepo) CloseOpen(ctx context.Context, sessionID, userID string, leftAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.LiveParticipant{}).
		Where("session_id = ? AND user_id = ? AND left_at IS NULL", sessionID, userID).
		UpdateColumn("left_at", leftAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *liveParticipantRepo) ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]model.LiveParticipant, int64, error) {
	var participants []model.LiveParticipant
	var total int64

	db := r.db.WithContext(ctx).Model(&model.LiveParticipant{}).
		Where("session_id = ?", sessionID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		return nil, 0, err
	}

	return participants, total, nil
}

func (r *liveParticipantRepo) CountOpenBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LiveParticipant{}).
		Where("session_id = ? AND left_at IS NULL", sessionID).
		Count(&count).Error
	return count, err
}
