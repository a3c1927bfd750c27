package types

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin   = "ADMIN"
	RoleStaff   = "STAFF"
	RoleStudent = "STUDENT"
	RoleParent  = "PARENT"
)

// User is an account that can sign in. EntityID optionally links the
// account to its directory record (the STUDENT/STAFF/PARENT entity).
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	FirstName string     `gorm:"not null" json:"first_name"`
	LastName  string     `gorm:"not null" json:"last_name"`
	Role      string     `gorm:"not null;default:'STAFF'" json:"role"`
	EntityID  *uuid.UUID `gorm:"type:uuid;index" json:"entity_id"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
