package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/realtime"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/repos/testutil"
	"github.com/opencampus/registrar-backend/internal/types"
)

// recordingBus captures published events and optionally fails, standing in
// for the redis bus.
type recordingBus struct {
	mu     sync.Mutex
	events []realtime.Event
	fail   error
}

func (rb *recordingBus) Publish(ctx context.Context, event realtime.Event) error {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.fail != nil {
		return rb.fail
	}
	rb.events = append(rb.events, event)
	return nil
}

func (rb *recordingBus) Close() error { return nil }

func (rb *recordingBus) published() []realtime.Event {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return append([]realtime.Event(nil), rb.events...)
}

type messagingStack struct {
	db            *gorm.DB
	bus           *recordingBus
	messages      MessageService
	notifications NotificationService
	notifRepo     repos.NotificationRepo
}

func newMessagingStack(t *testing.T) *messagingStack {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	rb := &recordingBus{}
	notifRepo := repos.NewNotificationRepo(db, log)
	notifications := NewNotificationService(db, log, notifRepo, rb)
	messages := NewMessageService(db, log, repos.NewMessageRepo(db, log), repos.NewUserRepo(db, log), notifications)
	return &messagingStack{db: db, bus: rb, messages: messages, notifications: notifications, notifRepo: notifRepo}
}

func TestSendMessageNotifiesRecipient(t *testing.T) {
	ctx := context.Background()
	s := newMessagingStack(t)

	alice := testutil.SeedUser(t, ctx, s.db, "alice@example.edu", types.RoleStaff)
	bob := testutil.SeedUser(t, ctx, s.db, "bob@example.edu", types.RoleStudent)

	msg, err := s.messages.Send(ctx, alice.ID, bob.ID, "see you at the lab")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.ReadAt != nil {
		t.Fatalf("new message already read")
	}

	notifs, err := s.notifications.List(ctx, bob.ID, true, 10)
	if err != nil {
		t.Fatalf("List notifications: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Kind != types.NotificationMessage {
		t.Fatalf("recipient notifications = %+v", notifs)
	}

	events := s.bus.published()
	if len(events) != 1 || events[0].UserID != bob.ID {
		t.Fatalf("bus events = %+v", events)
	}
}

func TestSendMessageSurvivesBusFailure(t *testing.T) {
	ctx := context.Background()
	s := newMessagingStack(t)
	s.bus.fail = errors.New("redis down")

	alice := testutil.SeedUser(t, ctx, s.db, "alice@example.edu", types.RoleStaff)
	bob := testutil.SeedUser(t, ctx, s.db, "bob@example.edu", types.RoleStudent)

	if _, err := s.messages.Send(ctx, alice.ID, bob.ID, "hello"); err != nil {
		t.Fatalf("Send with failing bus: %v", err)
	}

	// The notification row is the source of truth; publish failure is
	// best-effort delivery only.
	notifs, err := s.notifications.List(ctx, bob.ID, true, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("notification row missing after bus failure")
	}
}

func TestSendMessageValidation(t *testing.T) {
	ctx := context.Background()
	s := newMessagingStack(t)

	alice := testutil.SeedUser(t, ctx, s.db, "alice@example.edu", types.RoleStaff)

	if _, err := s.messages.Send(ctx, alice.ID, alice.ID, "hi"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("self message = %v, want ErrValidation", err)
	}
	if _, err := s.messages.Send(ctx, alice.ID, uuid.New(), "hi"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing recipient = %v, want ErrNotFound", err)
	}
	if _, err := s.messages.Send(ctx, alice.ID, alice.ID, "   "); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("blank body = %v, want ErrValidation", err)
	}
}

func TestListMessagesResolvesParticipants(t *testing.T) {
	ctx := context.Background()
	s := newMessagingStack(t)

	alice := testutil.SeedUser(t, ctx, s.db, "alice@example.edu", types.RoleStaff)
	bob := testutil.SeedUser(t, ctx, s.db, "bob@example.edu", types.RoleStudent)
	carol := testutil.SeedUser(t, ctx, s.db, "carol@example.edu", types.RoleStudent)

	if _, err := s.messages.Send(ctx, alice.ID, bob.ID, "first"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := s.messages.Send(ctx, carol.ID, alice.ID, "second"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	all, err := s.messages.List(ctx, alice.ID, nil, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d messages, want 2", len(all))
	}
	for _, v := range all {
		if v.From == nil || v.To == nil {
			t.Fatalf("participants not resolved: %+v", v)
		}
	}

	withBob, err := s.messages.List(ctx, alice.ID, &bob.ID, 10)
	if err != nil {
		t.Fatalf("List with counterpart: %v", err)
	}
	if len(withBob) != 1 || withBob[0].To.Email != "bob@example.edu" {
		t.Fatalf("counterpart filter wrong: %+v", withBob)
	}
}

func TestMarkMessageReadIsRecipientOnly(t *testing.T) {
	ctx := context.Background()
	s := newMessagingStack(t)

	alice := testutil.SeedUser(t, ctx, s.db, "alice@example.edu", types.RoleStaff)
	bob := testutil.SeedUser(t, ctx, s.db, "bob@example.edu", types.RoleStudent)

	msg, err := s.messages.Send(ctx, alice.ID, bob.ID, "hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	// The sender cannot mark the recipient's copy read.
	if err := s.messages.MarkRead(ctx, msg.ID, alice.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("sender MarkRead = %v, want ErrNotFound", err)
	}
	if err := s.messages.MarkRead(ctx, msg.ID, bob.ID); err != nil {
		t.Fatalf("recipient MarkRead: %v", err)
	}
	if err := s.messages.MarkRead(ctx, msg.ID, bob.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second MarkRead = %v, want ErrNotFound", err)
	}
}

func TestNotificationMarkRead(t *testing.T) {
	ctx := context.Background()
	s := newMessagingStack(t)

	bob := testutil.SeedUser(t, ctx, s.db, "bob@example.edu", types.RoleStudent)
	n, err := s.notifications.Notify(ctx, bob.ID, types.NotificationSystem, "maintenance window", "", nil)
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if err := s.notifications.MarkRead(ctx, n.ID, uuid.New()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("foreign MarkRead = %v, want ErrNotFound", err)
	}
	if err := s.notifications.MarkRead(ctx, n.ID, bob.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	unread, err := s.notifications.List(ctx, bob.ID, true, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("read notification still listed as unread")
	}
}
