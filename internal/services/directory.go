package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencampus/registrar-backend/internal/eav"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/repos"
)

// DirectoryService is the one projection path every listing and write route
// goes through. No handler flattens entity/value rows on its own; the
// engine in internal/eav is only ever driven from here.
type DirectoryService interface {
	ListProjected(ctx context.Context, entityType string, filter repos.EntityFilter) ([]eav.Flat, error)
	GetProjected(ctx context.Context, id uuid.UUID) (eav.Flat, error)
	CreateFromFlat(ctx context.Context, entityType string, flat map[string]any) (eav.Flat, error)
	UpdateFromFlat(ctx context.Context, id uuid.UUID, flat map[string]any) (eav.Flat, error)
}

type directoryService struct {
	db            *gorm.DB
	log           *logger.Logger
	entityService EntityService
	valueService  ValueService
}

func NewDirectoryService(db *gorm.DB, log *logger.Logger, entityService EntityService, valueService ValueService) DirectoryService {
	return &directoryService{
		db:            db,
		log:           log.With("service", "DirectoryService"),
		entityService: entityService,
		valueService:  valueService,
	}
}

// ListProjected loads entities of one kind and their values in a bounded
// number of queries, then projects each to its flat shape. Ordering is
// name-ascending from the entity store.
func (ds *directoryService) ListProjected(ctx context.Context, entityType string, filter repos.EntityFilter) ([]eav.Flat, error) {
	entities, err := ds.entityService.List(ctx, entityType, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	valuesByEntity, err := ds.valueService.GetForMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return eav.ProjectMany(entities, valuesByEntity), nil
}

func (ds *directoryService) GetProjected(ctx context.Context, id uuid.UUID) (eav.Flat, error) {
	entity, err := ds.entityService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	values, err := ds.valueService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return eav.Project(entity, values), nil
}

// CreateFromFlat decomposes a flat payload and writes entity record plus
// attribute values in one transaction.
func (ds *directoryService) CreateFromFlat(ctx context.Context, entityType string, flat map[string]any) (eav.Flat, error) {
	d, err := eav.Decompose(flat, entityType)
	if err != nil {
		return nil, err
	}

	input := CreateEntityInput{Type: entityType, ParentID: d.Core.ParentID, IsActive: d.Core.IsActive}
	if d.Core.Name != nil {
		input.Name = *d.Core.Name
	}
	if d.Core.Description != nil {
		input.Description = *d.Core.Description
	}
	if d.Core.Code != nil {
		input.Code = *d.Core.Code
	}

	var id uuid.UUID
	err = ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, err := ds.entityService.CreateTx(ctx, tx, input)
		if err != nil {
			return err
		}
		id = entity.ID
		return ds.valueService.SetAllTx(ctx, tx, entity, d.Attributes)
	})
	if err != nil {
		return nil, err
	}
	return ds.GetProjected(ctx, id)
}

// UpdateFromFlat decomposes a flat payload against the entity's kind and
// applies core-field changes and attribute assignments atomically.
func (ds *directoryService) UpdateFromFlat(ctx context.Context, id uuid.UUID, flat map[string]any) (eav.Flat, error) {
	entity, err := ds.entityService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := eav.Decompose(flat, entity.Type)
	if err != nil {
		return nil, err
	}

	err = ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := ds.entityService.UpdateCoreTx(ctx, tx, entity, d.Core)
		if err != nil {
			return err
		}
		return ds.valueService.SetAllTx(ctx, tx, updated, d.Attributes)
	})
	if err != nil {
		return nil, err
	}
	return ds.GetProjected(ctx, id)
}
