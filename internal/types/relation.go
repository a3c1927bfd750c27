package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Well-known relation types. The set is open: any non-empty uppercase token
// is accepted, these are the ones the routes and seed data use.
const (
	RelationTeaches    = "TEACHES"
	RelationEnrolledIn = "ENROLLED_IN"
	RelationAdvises    = "ADVISES"
	RelationParentOf   = "PARENT_OF"
	RelationAssignedTo = "ASSIGNED_TO"
	RelationMemberOf   = "MEMBER_OF"
)

// Relation traversal direction.
type RelationDirection string

const (
	DirectionOutgoing RelationDirection = "OUTGOING"
	DirectionIncoming RelationDirection = "INCOMING"
	DirectionEither   RelationDirection = "EITHER"
)

// EntityRelation is a typed directed edge between two entities, for links
// that do not fit the parent/child hierarchy (TEACHES, ENROLLED_IN, ...).
// The (from, to, type) triple is unique; re-linking updates metadata only.
type EntityRelation struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FromEntityID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_relation_edge;index" json:"from_entity_id"`
	ToEntityID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_relation_edge;index" json:"to_entity_id"`
	RelationType string         `gorm:"not null;uniqueIndex:idx_relation_edge" json:"relation_type"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (EntityRelation) TableName() string {
	return "entity_relation"
}
