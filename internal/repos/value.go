package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/types"
)

type ValueRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.AttributeValue) error
	GetForEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.AttributeValue, error)
	GetForEntities(ctx context.Context, tx *gorm.DB, entityIDs []uuid.UUID) ([]*types.AttributeValue, error)
	DeleteForEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) error
}

type valueRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewValueRepo(db *gorm.DB, baseLog *logger.Logger) ValueRepo {
	return &valueRepo{db: db, log: baseLog.With("repo", "ValueRepo")}
}

func (vr *valueRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return vr.db
}

// Upsert inserts the row or, when a row for (entity, attribute) already
// exists, overwrites every typed value column. Clearing the non-matching
// columns on update keeps the one-populated-slot invariant even when an
// attribute's stored slot type differs from an earlier write.
func (vr *valueRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.AttributeValue) error {
	return vr.handle(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "entity_id"}, {Name: "attribute_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"value_string", "value_number", "value_bool", "value_date", "updated_at",
			}),
		}).
		Create(row).Error
}

func (vr *valueRepo) GetForEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.AttributeValue, error) {
	var rows []*types.AttributeValue
	if err := vr.handle(tx).WithContext(ctx).
		Preload("Attribute").
		Where("entity_id = ?", entityID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetForEntities is the batched read behind list projections: one query for
// the rows plus one preload for the attributes, independent of len(entityIDs).
func (vr *valueRepo) GetForEntities(ctx context.Context, tx *gorm.DB, entityIDs []uuid.UUID) ([]*types.AttributeValue, error) {
	var rows []*types.AttributeValue
	if len(entityIDs) == 0 {
		return rows, nil
	}
	if err := vr.handle(tx).WithContext(ctx).
		Preload("Attribute").
		Where("entity_id IN ?", entityIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (vr *valueRepo) DeleteForEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) error {
	return vr.handle(tx).WithContext(ctx).
		Where("entity_id = ?", entityID).
		Delete(&types.AttributeValue{}).Error
}
