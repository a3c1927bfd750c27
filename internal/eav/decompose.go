package eav

import (
	"github.com/google/uuid"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/types"
)

// CoreFields is the writable subset of an entity record recovered from a
// flat payload. Nil pointers mean "not present in the payload"; an explicit
// null (or empty) parentId sets ClearParent instead, so detaching an entity
// from its parent is distinguishable from omitting the key.
type CoreFields struct {
	Name        *string
	Description *string
	Code        *string
	ParentID    *uuid.UUID
	ClearParent bool
	IsActive    *bool
}

// Decomposed splits a flat write payload into the entity record part and
// the per-attribute part.
type Decomposed struct {
	Core       CoreFields
	Attributes map[string]any
}

// read-only projection keys a client may echo back on PUT; dropped silently.
var readOnlyFields = map[string]bool{
	"id":        true,
	"type":      true,
	"parent":    true,
	"createdAt": true,
	"updatedAt": true,
}

// IsCoreField reports whether key addresses the entity record itself rather
// than an attribute value.
func IsCoreField(key string) bool {
	switch key {
	case "id", "type", "name", "description", "code",
		"parentId", "parent", "isActive", "createdAt", "updatedAt":
		return true
	}
	return false
}

// Decompose splits flat into core entity fields and attribute assignments.
// Unknown keys become attribute assignments; identity and timestamp keys
// are never writable and are discarded. entityType is validated so a write
// path cannot decompose a payload for an unrecognized kind.
func Decompose(flat map[string]any, entityType string) (Decomposed, error) {
	d := Decomposed{Attributes: make(map[string]any)}
	if !types.ValidEntityType(entityType) {
		return d, apperrors.Validation("unknown entity type %q", entityType)
	}

	for key, raw := range flat {
		if readOnlyFields[key] {
			continue
		}
		switch key {
		case "name":
			s, err := asString(key, raw)
			if err != nil {
				return d, err
			}
			d.Core.Name = &s
		case "description":
			s, err := asString(key, raw)
			if err != nil {
				return d, err
			}
			d.Core.Description = &s
		case "code":
			s, err := asString(key, raw)
			if err != nil {
				return d, err
			}
			d.Core.Code = &s
		case "parentId":
			if raw == nil || raw == "" {
				d.Core.ClearParent = true
				continue
			}
			id, err := asUUID(key, raw)
			if err != nil {
				return d, err
			}
			d.Core.ParentID = id
		case "isActive":
			b, ok := raw.(bool)
			if !ok {
				return d, apperrors.Validation("isActive must be a boolean, got %T", raw)
			}
			d.Core.IsActive = &b
		default:
			d.Attributes[key] = raw
		}
	}
	return d, nil
}

func asString(key string, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", apperrors.Validation("%s must be a string, got %T", key, raw)
	}
	return s, nil
}

func asUUID(key string, raw any) (*uuid.UUID, error) {
	switch v := raw.(type) {
	case uuid.UUID:
		return &v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, apperrors.Validation("%s is not a uuid: %v", key, err)
		}
		return &id, nil
	}
	return nil, apperrors.Validation("%s must be a uuid string, got %T", key, raw)
}
