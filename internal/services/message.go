package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/types"
)

// UserSummary is the counterpart shape embedded in message listings.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// MessageView is one message with both participants resolved.
type MessageView struct {
	*types.Message
	From *UserSummary `json:"from,omitempty"`
	To   *UserSummary `json:"to,omitempty"`
}

type MessageService interface {
	Send(ctx context.Context, fromUserID, toUserID uuid.UUID, body string) (*types.Message, error)
	List(ctx context.Context, userID uuid.UUID, withUserID *uuid.UUID, limit int) ([]*MessageView, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
}

type messageService struct {
	db            *gorm.DB
	log           *logger.Logger
	messageRepo   repos.MessageRepo
	userRepo      repos.UserRepo
	notifications NotificationService
}

func NewMessageService(db *gorm.DB, log *logger.Logger, messageRepo repos.MessageRepo, userRepo repos.UserRepo, notifications NotificationService) MessageService {
	return &messageService{
		db:            db,
		log:           log.With("service", "MessageService"),
		messageRepo:   messageRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

func (ms *messageService) Send(ctx context.Context, fromUserID, toUserID uuid.UUID, body string) (*types.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.Validation("message body is required")
	}
	if fromUserID == toUserID {
		return nil, apperrors.Validation("cannot message yourself")
	}
	sender, err := ms.userRepo.GetByID(ctx, nil, fromUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user %s does not exist", fromUserID)
		}
		return nil, apperrors.MapError("message.Send", err)
	}
	if _, err := ms.userRepo.GetByID(ctx, nil, toUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user %s does not exist", toUserID)
		}
		return nil, apperrors.MapError("message.Send", err)
	}

	msg := &types.Message{
		ID:         uuid.New(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Body:       body,
	}
	if err := ms.messageRepo.Create(ctx, nil, msg); err != nil {
		return nil, apperrors.MapError("message.Send", err)
	}

	title := fmt.Sprintf("New message from %s %s", sender.FirstName, sender.LastName)
	if _, err := ms.notifications.Notify(ctx, toUserID, types.NotificationMessage, title, "", map[string]any{
		"message_id": msg.ID.String(),
	}); err != nil {
		// the message is already committed; the recipient just misses the ping
		ms.log.Warn("message notification failed", "message_id", msg.ID, "error", err)
	}
	return msg, nil
}

// List returns the caller's messages, optionally narrowed to one
// counterpart, with participants resolved in a single batched user read.
func (ms *messageService) List(ctx context.Context, userID uuid.UUID, withUserID *uuid.UUID, limit int) ([]*MessageView, error) {
	var (
		msgs []*types.Message
		err  error
	)
	if withUserID != nil {
		msgs, err = ms.messageRepo.ListBetween(ctx, nil, userID, *withUserID, limit)
	} else {
		msgs, err = ms.messageRepo.ListForUser(ctx, nil, userID, limit)
	}
	if err != nil {
		return nil, apperrors.MapError("message.List", err)
	}

	idSet := make(map[uuid.UUID]bool, len(msgs)*2)
	for _, m := range msgs {
		idSet[m.FromUserID] = true
		idSet[m.ToUserID] = true
	}
	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	users, err := ms.userRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, apperrors.MapError("message.List", err)
	}
	summaries := make(map[uuid.UUID]*UserSummary, len(users))
	for _, u := range users {
		summaries[u.ID] = &UserSummary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
	}

	views := make([]*MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, &MessageView{
			Message: m,
			From:    summaries[m.FromUserID],
			To:      summaries[m.ToUserID],
		})
	}
	return views, nil
}

func (ms *messageService) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	affected, err := ms.messageRepo.MarkRead(ctx, nil, id, recipientID)
	if err != nil {
		return apperrors.MapError("message.MarkRead", err)
	}
	if affected == 0 {
		return apperrors.NotFound("message %s does not exist or is already read", id)
	}
	return nil
}
