package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/types"
)

type NotificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, n *types.Notification) error
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (int64, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (nr *notificationRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return nr.db
}

func (nr *notificationRepo) Create(ctx context.Context, tx *gorm.DB, n *types.Notification) error {
	return nr.handle(tx).WithContext(ctx).Create(n).Error
}

func (nr *notificationRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	q := nr.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var ns []*types.Notification
	if err := q.Find(&ns).Error; err != nil {
		return nil, err
	}
	return ns, nil
}

func (nr *notificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (int64, error) {
	now := time.Now().UTC()
	res := nr.handle(tx).WithContext(ctx).
		Model(&types.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", now)
	return res.RowsAffected, res.Error
}
