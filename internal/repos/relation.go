package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/types"
)

type RelationRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, rel *types.EntityRelation) error
	Get(ctx context.Context, tx *gorm.DB, fromID, toID uuid.UUID, relationType string) (*types.EntityRelation, error)
	Delete(ctx context.Context, tx *gorm.DB, fromID, toID uuid.UUID, relationType string) (int64, error)
	ListFrom(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, relationType string) ([]*types.EntityRelation, error)
	ListTo(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, relationType string) ([]*types.EntityRelation, error)
}

type relationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRelationRepo(db *gorm.DB, baseLog *logger.Logger) RelationRepo {
	return &relationRepo{db: db, log: baseLog.With("repo", "RelationRepo")}
}

func (rr *relationRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return rr.db
}

// Upsert makes Link idempotent: a duplicate (from, to, type) edge only
// refreshes metadata, it never inserts a second row.
func (rr *relationRepo) Upsert(ctx context.Context, tx *gorm.DB, rel *types.EntityRelation) error {
	return rr.handle(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "from_entity_id"}, {Name: "to_entity_id"}, {Name: "relation_type"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"metadata", "updated_at"}),
		}).
		Create(rel).Error
}

func (rr *relationRepo) Get(ctx context.Context, tx *gorm.DB, fromID, toID uuid.UUID, relationType string) (*types.EntityRelation, error) {
	var rel types.EntityRelation
	if err := rr.handle(tx).WithContext(ctx).
		Where("from_entity_id = ? AND to_entity_id = ? AND relation_type = ?", fromID, toID, relationType).
		First(&rel).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}

func (rr *relationRepo) Delete(ctx context.Context, tx *gorm.DB, fromID, toID uuid.UUID, relationType string) (int64, error) {
	res := rr.handle(tx).WithContext(ctx).
		Where("from_entity_id = ? AND to_entity_id = ? AND relation_type = ?", fromID, toID, relationType).
		Delete(&types.EntityRelation{})
	return res.RowsAffected, res.Error
}

func (rr *relationRepo) ListFrom(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, relationType string) ([]*types.EntityRelation, error) {
	var rels []*types.EntityRelation
	if err := rr.handle(tx).WithContext(ctx).
		Where("from_entity_id = ? AND relation_type = ?", entityID, relationType).
		Find(&rels).Error; err != nil {
		return nil, err
	}
	return rels, nil
}

func (rr *relationRepo) ListTo(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, relationType string) ([]*types.EntityRelation, error) {
	var rels []*types.EntityRelation
	if err := rr.handle(tx).WithContext(ctx).
		Where("to_entity_id = ? AND relation_type = ?", entityID, relationType).
		Find(&rels).Error; err != nil {
		return nil, err
	}
	return rels, nil
}
