package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification kinds used by the services.
const (
	NotificationMessage    = "MESSAGE"
	NotificationEnrollment = "ENROLLMENT"
	NotificationSystem     = "SYSTEM"
)

// Notification is a persisted in-app notification for one user. Delivery to
// a live channel goes through the realtime bus; the row is the source of
// truth either way.
type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind      string         `gorm:"not null;default:'SYSTEM'" json:"kind"`
	Title     string         `gorm:"not null" json:"title"`
	Body      string         `json:"body"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Notification) TableName() string {
	return "notification"
}
