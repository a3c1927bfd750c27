package types

import (
	"time"

	"github.com/google/uuid"
)

// Message is one direct message between two user accounts.
type Message struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FromUserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"from_user_id"`
	ToUserID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"to_user_id"`
	Body       string     `gorm:"not null" json:"body"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

func (Message) TableName() string {
	return "message"
}
