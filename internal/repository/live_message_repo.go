package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/orafaelmatos/learn-hub/internal/model"
)

// LiveMessageRepository 直播聊天消息数据访问接口
type LiveMessageRepository interface {
	Create(ctx context.Context, message *model.LiveMessage) error
	// ListBySession 按时间升序返回，created_at 相同时按 message_id 保证稳定次序
	ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]model.LiveMessage, int64, error)
}

// liveMessageRepo LiveMessageRepository 的 GORM 实现
type liveMessageRepo struct {
	db *gorm.DB
}

// NewLiveMessageRepo 创建 LiveMessageRepository 实例
func NewLiveMessageRepo(db *gorm.DB) LiveMessageRepository {
	return &liveMessageRepo{db: db}
}

func (r *liveMessageRepo) Create(ctx context.Context, message *model.LiveMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *liveMessageRepo) ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]model.LiveMessage, int64, error) {
	var messages []model.LiveMessage
	var total int64

	db := r.db.WithContext(ctx).Model(&model.LiveMessage{}).
		Where("session_id = ?", sessionID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Sender").
		Offset(offset).Limit(limit).
		Order("created_at ASC, message_id ASC").
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}
