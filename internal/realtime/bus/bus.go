package bus

import (
	"context"

	"github.com/opencampus/registrar-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, event realtime.Event) error
	Close() error
}

// NopBus drops every event. Used when REDIS_ADDR is unset so the service
// degrades to persisted-only notifications.
type NopBus struct{}

func (NopBus) Publish(ctx context.Context, event realtime.Event) error { return nil }
func (NopBus) Close() error                                            { return nil }
