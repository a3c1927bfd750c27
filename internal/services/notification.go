package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/realtime"
	"github.com/opencampus/registrar-backend/internal/realtime/bus"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/types"
)

type NotificationService interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, body string, metadata map[string]any) (*types.Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

type notificationService struct {
	db               *gorm.DB
	log              *logger.Logger
	notificationRepo repos.NotificationRepo
	bus              bus.Bus
}

func NewNotificationService(db *gorm.DB, log *logger.Logger, notificationRepo repos.NotificationRepo, eventBus bus.Bus) NotificationService {
	return &notificationService{
		db:               db,
		log:              log.With("service", "NotificationService"),
		notificationRepo: notificationRepo,
		bus:              eventBus,
	}
}

// Notify persists the notification row, then publishes on the realtime bus.
// The row is the source of truth: a publish failure is logged, never
// surfaced, and never rolls the row back.
func (ns *notificationService) Notify(ctx context.Context, userID uuid.UUID, kind, title, body string, metadata map[string]any) (*types.Notification, error) {
	if title == "" {
		return nil, apperrors.Validation("notification title is required")
	}
	n := &types.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, apperrors.Validation("notification metadata: %v", err)
		}
		n.Metadata = datatypes.JSON(raw)
	}
	if err := ns.notificationRepo.Create(ctx, nil, n); err != nil {
		return nil, apperrors.MapError("notification.Notify", err)
	}

	event := realtime.Event{
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
		SentAt: time.Now().UTC(),
	}
	if err := ns.bus.Publish(ctx, event); err != nil {
		ns.log.Warn("notification publish failed, row persisted", "user_id", userID, "error", err)
	}
	return n, nil
}

func (ns *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error) {
	list, err := ns.notificationRepo.ListForUser(ctx, nil, userID, unreadOnly, limit)
	if err != nil {
		return nil, apperrors.MapError("notification.List", err)
	}
	return list, nil
}

func (ns *notificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	affected, err := ns.notificationRepo.MarkRead(ctx, nil, id, userID)
	if err != nil {
		return apperrors.MapError("notification.MarkRead", err)
	}
	if affected == 0 {
		return apperrors.NotFound("notification %s does not exist or is already read", id)
	}
	return nil
}
