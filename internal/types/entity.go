package types

import (
	"time"

	"github.com/google/uuid"
)

// Entity kinds recognized by the registrar.
const (
	EntityTypeStudent    = "STUDENT"
	EntityTypeStaff      = "STAFF"
	EntityTypeParent     = "PARENT"
	EntityTypeCourse     = "COURSE"
	EntityTypeRoom       = "ROOM"
	EntityTypeBuilding   = "BUILDING"
	EntityTypeCampus     = "CAMPUS"
	EntityTypeDepartment = "DEPARTMENT"
	EntityTypeFaculty    = "FACULTY"
	EntityTypeEvent      = "EVENT"
)

// EntityTypes lists every recognized kind, in display order.
var EntityTypes = []string{
	EntityTypeStudent,
	EntityTypeStaff,
	EntityTypeParent,
	EntityTypeCourse,
	EntityTypeRoom,
	EntityTypeBuilding,
	EntityTypeCampus,
	EntityTypeDepartment,
	EntityTypeFaculty,
	EntityTypeEvent,
}

// ValidEntityType reports whether kind is a recognized entity kind.
func ValidEntityType(kind string) bool {
	for _, k := range EntityTypes {
		if k == kind {
			return true
		}
	}
	return false
}

// Entity is a generic domain record: a student, course, room, building and
// so on, distinguished only by Type. ParentID forms the containment
// hierarchy (Room inside Building); anything else is an EntityRelation.
// Entities are deactivated, never hard-deleted, so historical values and
// relations stay resolvable.
type Entity struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Type        string     `gorm:"not null;index" json:"type"`
	Name        string     `gorm:"not null;index" json:"name"`
	Description string     `json:"description"`
	Code        string     `gorm:"index" json:"code"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Parent      *Entity    `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Entity) TableName() string {
	return "entity"
}
