package eav

import (
	"github.com/google/uuid"

	"github.com/opencampus/registrar-backend/internal/types"
)

// Flat is the projected API shape of one entity: core fields plus one key
// per populated attribute.
type Flat map[string]any

// Project merges an entity's core fields with its attribute values into one
// flat object. values is the output of the value store's Get (attribute
// name to typed value); attribute keys never shadow core fields.
func Project(entity *types.Entity, values map[string]any) Flat {
	flat := Flat{
		"id":          entity.ID,
		"type":        entity.Type,
		"name":        entity.Name,
		"description": entity.Description,
		"code":        entity.Code,
		"isActive":    entity.IsActive,
		"createdAt":   entity.CreatedAt,
		"updatedAt":   entity.UpdatedAt,
	}
	if entity.ParentID != nil {
		flat["parentId"] = *entity.ParentID
	}
	if entity.Parent != nil {
		flat["parent"] = Flat{
			"id":   entity.Parent.ID,
			"type": entity.Parent.Type,
			"name": entity.Parent.Name,
			"code": entity.Parent.Code,
		}
	}
	for name, value := range values {
		if IsCoreField(name) {
			continue
		}
		flat[name] = value
	}
	return flat
}

// ProjectMany projects a list of entities against pre-fetched values. It
// performs no storage access of its own: callers batch-load values once via
// the value store (GetForMany) regardless of list size.
func ProjectMany(entities []*types.Entity, valuesByEntity map[uuid.UUID]map[string]any) []Flat {
	flats := make([]Flat, 0, len(entities))
	for _, e := range entities {
		flats = append(flats, Project(e, valuesByEntity[e.ID]))
	}
	return flats
}

// ValuesFromRows flattens stored value rows into an attribute-name keyed
// map. Rows must arrive with their Attribute preloaded; rows whose
// declared-type column is empty are omitted rather than null-filled.
func ValuesFromRows(rows []*types.AttributeValue) map[string]any {
	values := make(map[string]any, len(rows))
	for _, row := range rows {
		if row.Attribute == nil {
			continue
		}
		v := FromRow(row.Attribute.DataType, row)
		if v == nil {
			continue
		}
		values[row.Attribute.Name] = v
	}
	return values
}

// ValuesFromRowsByEntity groups rows per owning entity, for list endpoints.
func ValuesFromRowsByEntity(rows []*types.AttributeValue) map[uuid.UUID]map[string]any {
	byEntity := make(map[uuid.UUID]map[string]any)
	for _, row := range rows {
		if row.Attribute == nil {
			continue
		}
		v := FromRow(row.Attribute.DataType, row)
		if v == nil {
			continue
		}
		m, ok := byEntity[row.EntityID]
		if !ok {
			m = make(map[string]any)
			byEntity[row.EntityID] = m
		}
		m[row.Attribute.Name] = v
	}
	return byEntity
}
