package types

import (
	"time"

	"github.com/google/uuid"
)

// AttributeValue is one typed attribute assignment on one entity. Exactly
// one of the Value* columns is populated, the one matching the attribute's
// declared DataType. The (EntityID, AttributeID) pair is unique: re-setting
// an attribute overwrites the existing row.
type AttributeValue struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_value_entity_attribute;index" json:"entity_id"`
	AttributeID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_value_entity_attribute" json:"attribute_id"`
	Attribute   *Attribute `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
	ValueString *string    `json:"value_string,omitempty"`
	ValueNumber *float64   `json:"value_number,omitempty"`
	ValueBool   *bool      `json:"value_bool,omitempty"`
	ValueDate   *time.Time `json:"value_date,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (AttributeValue) TableName() string {
	return "attribute_value"
}
