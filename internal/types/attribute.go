package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DataType is the declared scalar type of an attribute. It decides which
// value column an AttributeValue populates and how raw input is coerced.
type DataType string

const (
	DataTypeString   DataType = "STRING"
	DataTypeNumber   DataType = "NUMBER"
	DataTypeBoolean  DataType = "BOOLEAN"
	DataTypeDate     DataType = "DATE"
	DataTypeDateTime DataType = "DATETIME"
	DataTypeEmail    DataType = "EMAIL"
	DataTypePhone    DataType = "PHONE"
	DataTypeURL      DataType = "URL"
	DataTypeText     DataType = "TEXT"
)

// Valid reports whether dt is one of the recognized data types.
func (dt DataType) Valid() bool {
	switch dt {
	case DataTypeString, DataTypeNumber, DataTypeBoolean, DataTypeDate,
		DataTypeDateTime, DataTypeEmail, DataTypePhone, DataTypeURL, DataTypeText:
		return true
	}
	return false
}

// Attribute category grouping tags.
const (
	CategoryPersonal = "PERSONAL"
	CategoryAcademic = "ACADEMIC"
	CategoryFacility = "FACILITY"
	CategoryContact  = "CONTACT"
	CategoryGeneral  = "GENERAL"
)

// Attribute is a reusable, named, typed field definition shared across
// entity kinds. EntityTypes holds the kinds allowed to carry the attribute,
// persisted as a JSON list.
type Attribute struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	DisplayName string         `gorm:"not null" json:"display_name"`
	DataType    DataType       `gorm:"not null" json:"data_type"`
	Category    string         `gorm:"index;not null;default:'GENERAL'" json:"category"`
	EntityTypes datatypes.JSON `json:"entity_types"`
	IsRequired  bool           `gorm:"not null;default:false" json:"is_required"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Attribute) TableName() string {
	return "attribute"
}

// EntityTypeList decodes the JSON EntityTypes column. A corrupt or empty
// column decodes to nil.
func (a *Attribute) EntityTypeList() []string {
	if len(a.EntityTypes) == 0 {
		return nil
	}
	var kinds []string
	if err := json.Unmarshal(a.EntityTypes, &kinds); err != nil {
		return nil
	}
	return kinds
}

// SetEntityTypeList encodes kinds into the JSON EntityTypes column.
func (a *Attribute) SetEntityTypeList(kinds []string) error {
	raw, err := json.Marshal(kinds)
	if err != nil {
		return err
	}
	a.EntityTypes = datatypes.JSON(raw)
	return nil
}

// AllowsEntityType reports whether kind may carry this attribute. An empty
// list means the attribute is unrestricted.
func (a *Attribute) AllowsEntityType(kind string) bool {
	kinds := a.EntityTypeList()
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
