package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/types"
)

type MessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, msg *types.Message) error
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Message, error)
	ListBetween(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID, limit int) ([]*types.Message, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id, recipientID uuid.UUID) (int64, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (mr *messageRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return mr.db
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.Message) error {
	return mr.handle(tx).WithContext(ctx).Create(msg).Error
}

func (mr *messageRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var msgs []*types.Message
	if err := mr.handle(tx).WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (mr *messageRepo) ListBetween(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID, limit int) ([]*types.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var msgs []*types.Message
	if err := mr.handle(tx).WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead only touches messages addressed to recipientID, so a caller
// cannot mark someone else's inbox.
func (mr *messageRepo) MarkRead(ctx context.Context, tx *gorm.DB, id, recipientID uuid.UUID) (int64, error) {
	now := time.Now().UTC()
	res := mr.handle(tx).WithContext(ctx).
		Model(&types.Message{}).
		Where("id = ? AND to_user_id = ? AND read_at IS NULL", id, recipientID).
		Update("read_at", now)
	return res.RowsAffected, res.Error
}
