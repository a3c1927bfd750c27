package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencampus/registrar-backend/internal/eav"
	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/types"
)

// ValueService is the typed read/write surface over attribute values.
type ValueService interface {
	Set(ctx context.Context, entityID uuid.UUID, attributeName string, raw any) error
	SetAll(ctx context.Context, entityID uuid.UUID, assignments map[string]any) error
	SetAllTx(ctx context.Context, tx *gorm.DB, entity *types.Entity, assignments map[string]any) error
	Get(ctx context.Context, entityID uuid.UUID) (map[string]any, error)
	GetForMany(ctx context.Context, entityIDs []uuid.UUID) (map[uuid.UUID]map[string]any, error)
}

type valueService struct {
	db         *gorm.DB
	log        *logger.Logger
	entityRepo repos.EntityRepo
	valueRepo  repos.ValueRepo
	registry   RegistryService
}

func NewValueService(db *gorm.DB, log *logger.Logger, entityRepo repos.EntityRepo, valueRepo repos.ValueRepo, registry RegistryService) ValueService {
	return &valueService{
		db:         db,
		log:        log.With("service", "ValueService"),
		entityRepo: entityRepo,
		valueRepo:  valueRepo,
		registry:   registry,
	}
}

func (vs *valueService) Set(ctx context.Context, entityID uuid.UUID, attributeName string, raw any) error {
	return vs.SetAll(ctx, entityID, map[string]any{attributeName: raw})
}

// SetAll writes every assignment inside one transaction: a type mismatch or
// storage failure on the third attribute must not leave the first two
// applied.
func (vs *valueService) SetAll(ctx context.Context, entityID uuid.UUID, assignments map[string]any) error {
	if len(assignments) == 0 {
		return nil
	}
	return vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, err := vs.entityRepo.GetByID(ctx, tx, entityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("entity %s does not exist", entityID)
			}
			return apperrors.MapError("value.SetAll", err)
		}
		return vs.SetAllTx(ctx, tx, entity, assignments)
	})
}

// SetAllTx is the transaction-scoped variant used by composite write paths
// that already hold a transaction and a loaded entity.
func (vs *valueService) SetAllTx(ctx context.Context, tx *gorm.DB, entity *types.Entity, assignments map[string]any) error {
	// deterministic write order keeps concurrent composite writes from
	// deadlocking on row locks
	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := vs.setOne(ctx, tx, entity, name, assignments[name]); err != nil {
			return err
		}
	}
	return nil
}

func (vs *valueService) setOne(ctx context.Context, tx *gorm.DB, entity *types.Entity, attributeName string, raw any) error {
	attr, err := vs.registry.FindOrCreate(ctx, tx, attributeName, inferDataType(raw), types.CategoryGeneral, []string{entity.Type})
	if err != nil {
		return err
	}
	if !attr.AllowsEntityType(entity.Type) {
		return apperrors.Validation("attribute %q is not allowed on %s entities", attributeName, entity.Type)
	}

	tv, err := eav.Coerce(attr.DataType, raw)
	if err != nil {
		return err
	}

	row := &types.AttributeValue{
		ID:          uuid.New(),
		EntityID:    entity.ID,
		AttributeID: attr.ID,
	}
	tv.Apply(row)
	if err := vs.valueRepo.Upsert(ctx, tx, row); err != nil {
		return apperrors.MapError("value.Set", err)
	}
	return nil
}

func (vs *valueService) Get(ctx context.Context, entityID uuid.UUID) (map[string]any, error) {
	exists, err := vs.entityRepo.Exists(ctx, nil, entityID)
	if err != nil {
		return nil, apperrors.MapError("value.Get", err)
	}
	if !exists {
		return nil, apperrors.NotFound("entity %s does not exist", entityID)
	}
	rows, err := vs.valueRepo.GetForEntity(ctx, nil, entityID)
	if err != nil {
		return nil, apperrors.MapError("value.Get", err)
	}
	return eav.ValuesFromRows(rows), nil
}

// GetForMany batch-loads values for a set of entities in a bounded number
// of queries, whatever the list size.
func (vs *valueService) GetForMany(ctx context.Context, entityIDs []uuid.UUID) (map[uuid.UUID]map[string]any, error) {
	rows, err := vs.valueRepo.GetForEntities(ctx, nil, entityIDs)
	if err != nil {
		return nil, apperrors.MapError("value.GetForMany", err)
	}
	return eav.ValuesFromRowsByEntity(rows), nil
}

// inferDataType picks a best-effort declared type for an attribute created
// on first write.
func inferDataType(raw any) types.DataType {
	switch raw.(type) {
	case bool:
		return types.DataTypeBoolean
	case float64, float32, int, int32, int64:
		return types.DataTypeNumber
	case time.Time:
		return types.DataTypeDateTime
	default:
		return types.DataTypeString
	}
}
