package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencampus/registrar-backend/internal/eav"
	"github.com/opencampus/registrar-backend/internal/hierarchy"
	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/types"
)

// CreateEntityInput carries the core fields of a new entity. A nil IsActive
// defaults to active.
type CreateEntityInput struct {
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Code        string     `json:"code"`
	ParentID    *uuid.UUID `json:"parent_id"`
	IsActive    *bool      `json:"is_active"`
}

type EntityService interface {
	Create(ctx context.Context, input CreateEntityInput) (*types.Entity, error)
	CreateTx(ctx context.Context, tx *gorm.DB, input CreateEntityInput) (*types.Entity, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Entity, error)
	List(ctx context.Context, entityType string, filter repos.EntityFilter) ([]*types.Entity, error)
	UpdateCoreTx(ctx context.Context, tx *gorm.DB, entity *types.Entity, core eav.CoreFields) (*types.Entity, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type entityService struct {
	db         *gorm.DB
	log        *logger.Logger
	entityRepo repos.EntityRepo
	matrix     *hierarchy.Matrix
}

func NewEntityService(db *gorm.DB, log *logger.Logger, entityRepo repos.EntityRepo, matrix *hierarchy.Matrix) EntityService {
	return &entityService{
		db:         db,
		log:        log.With("service", "EntityService"),
		entityRepo: entityRepo,
		matrix:     matrix,
	}
}

func (es *entityService) Create(ctx context.Context, input CreateEntityInput) (*types.Entity, error) {
	return es.CreateTx(ctx, nil, input)
}

func (es *entityService) CreateTx(ctx context.Context, tx *gorm.DB, input CreateEntityInput) (*types.Entity, error) {
	input.Type = strings.ToUpper(strings.TrimSpace(input.Type))
	input.Name = strings.TrimSpace(input.Name)
	if !types.ValidEntityType(input.Type) {
		return nil, apperrors.Validation("unknown entity type %q", input.Type)
	}
	if input.Name == "" {
		return nil, apperrors.Validation("entity name is required")
	}
	if err := es.checkParent(ctx, tx, input.Type, input.ParentID); err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	entity := &types.Entity{
		ID:          uuid.New(),
		Type:        input.Type,
		Name:        input.Name,
		Description: input.Description,
		Code:        input.Code,
		ParentID:    input.ParentID,
		IsActive:    active,
	}
	if err := es.entityRepo.Create(ctx, tx, entity); err != nil {
		return nil, apperrors.MapError("entity.Create", err)
	}
	es.log.Debug("entity created", "id", entity.ID, "type", entity.Type, "name", entity.Name)
	return entity, nil
}

func (es *entityService) Get(ctx context.Context, id uuid.UUID) (*types.Entity, error) {
	entity, err := es.entityRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("entity %s does not exist", id)
		}
		return nil, apperrors.MapError("entity.Get", err)
	}
	return entity, nil
}

func (es *entityService) List(ctx context.Context, entityType string, filter repos.EntityFilter) ([]*types.Entity, error) {
	entityType = strings.ToUpper(strings.TrimSpace(entityType))
	if !types.ValidEntityType(entityType) {
		return nil, apperrors.Validation("unknown entity type %q", entityType)
	}
	entities, err := es.entityRepo.List(ctx, nil, entityType, filter)
	if err != nil {
		return nil, apperrors.MapError("entity.List", err)
	}
	return entities, nil
}

// UpdateCoreTx applies decomposed core fields to an already loaded entity.
// Only fields present in the payload change.
func (es *entityService) UpdateCoreTx(ctx context.Context, tx *gorm.DB, entity *types.Entity, core eav.CoreFields) (*types.Entity, error) {
	if core.Name != nil {
		name := strings.TrimSpace(*core.Name)
		if name == "" {
			return nil, apperrors.Validation("entity name must not be empty")
		}
		entity.Name = name
	}
	if core.Description != nil {
		entity.Description = *core.Description
	}
	if core.Code != nil {
		entity.Code = *core.Code
	}
	switch {
	case core.ClearParent:
		entity.ParentID = nil
	case core.ParentID != nil:
		if err := es.checkParent(ctx, tx, entity.Type, core.ParentID); err != nil {
			return nil, err
		}
		entity.ParentID = core.ParentID
	}
	if core.IsActive != nil {
		entity.IsActive = *core.IsActive
	}

	// Save would write the preloaded association as well
	entity.Parent = nil
	if err := es.entityRepo.Update(ctx, tx, entity); err != nil {
		return nil, apperrors.MapError("entity.Update", err)
	}
	return entity, nil
}

// Deactivate soft-deletes: values, relations and children stay in place so
// historical data keeps resolving.
func (es *entityService) Deactivate(ctx context.Context, id uuid.UUID) error {
	affected, err := es.entityRepo.SetActive(ctx, nil, id, false)
	if err != nil {
		return apperrors.MapError("entity.Deactivate", err)
	}
	if affected == 0 {
		return apperrors.NotFound("entity %s does not exist", id)
	}
	return nil
}

func (es *entityService) checkParent(ctx context.Context, tx *gorm.DB, childType string, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	parent, err := es.entityRepo.GetByID(ctx, tx, *parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("parent entity %s does not exist", *parentID)
		}
		return apperrors.MapError("entity.checkParent", err)
	}
	if !es.matrix.Allows(childType, parent.Type) {
		return apperrors.Validation("%s cannot be contained in %s (allowed: %s)",
			childType, parent.Type, strings.Join(es.matrix.AllowedParents(childType), ", "))
	}
	return nil
}
