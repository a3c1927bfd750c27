package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/types"
)

// AttributeDefinition is the caller-facing shape of one registry entry.
type AttributeDefinition struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	DataType    types.DataType `json:"data_type"`
	Category    string         `json:"category"`
	EntityTypes []string       `json:"entity_types"`
	IsRequired  bool           `json:"is_required"`
	Description string         `json:"description"`
}

// RegistryService owns the shared attribute registry. Definitions are read
// from storage on every call; nothing is cached across requests.
type RegistryService interface {
	Define(ctx context.Context, def AttributeDefinition) (*types.Attribute, error)
	Resolve(ctx context.Context, name string) (*types.Attribute, error)
	FindOrCreate(ctx context.Context, tx *gorm.DB, name string, inferred types.DataType, category string, entityTypes []string) (*types.Attribute, error)
	List(ctx context.Context) ([]*types.Attribute, error)
}

type registryService struct {
	db            *gorm.DB
	log           *logger.Logger
	attributeRepo repos.AttributeRepo
	creating      singleflight.Group
}

func NewRegistryService(db *gorm.DB, log *logger.Logger, attributeRepo repos.AttributeRepo) RegistryService {
	return &registryService{
		db:            db,
		log:           log.With("service", "RegistryService"),
		attributeRepo: attributeRepo,
	}
}

// Define upserts a definition keyed by name. A DataType change is rejected
// once stored values reference the attribute, since the typed slot those
// rows populate would no longer match. Same-type redefinition updates the
// descriptive fields in place.
func (rs *registryService) Define(ctx context.Context, def AttributeDefinition) (*types.Attribute, error) {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return nil, apperrors.Validation("attribute name is required")
	}
	if !def.DataType.Valid() {
		return nil, apperrors.Validation("unrecognized data type %q", string(def.DataType))
	}
	if len(def.EntityTypes) == 0 {
		return nil, apperrors.Validation("attribute %q: entity types must not be empty", def.Name)
	}
	for _, kind := range def.EntityTypes {
		if !types.ValidEntityType(kind) {
			return nil, apperrors.Validation("attribute %q: unknown entity type %q", def.Name, kind)
		}
	}
	if def.DisplayName == "" {
		def.DisplayName = def.Name
	}
	if def.Category == "" {
		def.Category = types.CategoryGeneral
	}

	existing, err := rs.attributeRepo.GetByName(ctx, nil, def.Name)
	switch {
	case err == nil:
		if existing.DataType != def.DataType {
			count, cErr := rs.attributeRepo.CountValues(ctx, nil, existing.ID)
			if cErr != nil {
				return nil, apperrors.MapError("registry.Define", cErr)
			}
			if count > 0 {
				return nil, apperrors.Validation(
					"attribute %q: cannot change data type from %s to %s while %d values reference it",
					def.Name, existing.DataType, def.DataType, count)
			}
		}
		existing.DisplayName = def.DisplayName
		existing.DataType = def.DataType
		existing.Category = def.Category
		existing.IsRequired = def.IsRequired
		existing.Description = def.Description
		if err := existing.SetEntityTypeList(def.EntityTypes); err != nil {
			return nil, apperrors.Validation("attribute %q: entity types: %v", def.Name, err)
		}
		if err := rs.attributeRepo.Update(ctx, nil, existing); err != nil {
			return nil, apperrors.MapError("registry.Define", err)
		}
		return existing, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		attr := &types.Attribute{
			ID:          uuid.New(),
			Name:        def.Name,
			DisplayName: def.DisplayName,
			DataType:    def.DataType,
			Category:    def.Category,
			IsRequired:  def.IsRequired,
			Description: def.Description,
		}
		if err := attr.SetEntityTypeList(def.EntityTypes); err != nil {
			return nil, apperrors.Validation("attribute %q: entity types: %v", def.Name, err)
		}
		if err := rs.attributeRepo.Create(ctx, nil, attr); err != nil {
			if apperrors.IsUniqueViolation(err) {
				// lost the race between our read and write; the other
				// definition wins, same as the in-place update path
				return rs.attributeRepo.GetByName(ctx, nil, def.Name)
			}
			return nil, apperrors.MapError("registry.Define", err)
		}
		return attr, nil

	default:
		return nil, apperrors.MapError("registry.Define", err)
	}
}

func (rs *registryService) Resolve(ctx context.Context, name string) (*types.Attribute, error) {
	attr, err := rs.attributeRepo.GetByName(ctx, nil, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("attribute %q is not registered", name)
		}
		return nil, apperrors.MapError("registry.Resolve", err)
	}
	return attr, nil
}

// FindOrCreate resolves an attribute by name, creating a best-effort
// definition when the write path meets a name not yet registered. The
// storage unique index on name is the authority against duplicates.
// Non-transactional callers share one insert through singleflight; a
// caller holding a transaction creates inside that transaction and skips
// the flight group, since a row made in another caller's uncommitted
// transaction is not safe to hand across. A lost race falls back to
// reading the winner's row.
func (rs *registryService) FindOrCreate(ctx context.Context, tx *gorm.DB, name string, inferred types.DataType, category string, entityTypes []string) (*types.Attribute, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("attribute name is required")
	}

	attr, err := rs.attributeRepo.GetByName(ctx, tx, name)
	if err == nil {
		return attr, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.MapError("registry.FindOrCreate", err)
	}

	if !inferred.Valid() {
		return nil, apperrors.Validation("unrecognized data type %q", string(inferred))
	}
	if category == "" {
		category = types.CategoryGeneral
	}

	if tx != nil {
		return rs.createDefinition(ctx, tx, name, inferred, category, entityTypes)
	}
	created, err, _ := rs.creating.Do(name, func() (any, error) {
		return rs.createDefinition(ctx, nil, name, inferred, category, entityTypes)
	})
	if err != nil {
		return nil, err
	}
	return created.(*types.Attribute), nil
}

func (rs *registryService) createDefinition(ctx context.Context, tx *gorm.DB, name string, inferred types.DataType, category string, entityTypes []string) (*types.Attribute, error) {
	// re-check: a concurrent caller may have won
	if existing, err := rs.attributeRepo.GetByName(ctx, tx, name); err == nil {
		return existing, nil
	}
	attr := &types.Attribute{
		ID:          uuid.New(),
		Name:        name,
		DisplayName: name,
		DataType:    inferred,
		Category:    category,
	}
	if err := attr.SetEntityTypeList(entityTypes); err != nil {
		return nil, apperrors.Validation("attribute %q: entity types: %v", name, err)
	}
	if err := rs.attributeRepo.Create(ctx, tx, attr); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return rs.attributeRepo.GetByName(ctx, tx, name)
		}
		return nil, apperrors.MapError("registry.FindOrCreate", err)
	}
	rs.log.Debug("created attribute on demand", "name", name, "data_type", inferred)
	return attr, nil
}

func (rs *registryService) List(ctx context.Context) ([]*types.Attribute, error) {
	attrs, err := rs.attributeRepo.List(ctx, nil)
	if err != nil {
		return nil, apperrors.MapError("registry.List", err)
	}
	return attrs, nil
}
