package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/types"
)

// EntityFilter narrows a List call. Nil/zero members are ignored.
type EntityFilter struct {
	ParentID   *uuid.UUID
	ActiveOnly bool
}

type EntityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entity *types.Entity) error
	Update(ctx context.Context, tx *gorm.DB, entity *types.Entity) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Entity, error)
	List(ctx context.Context, tx *gorm.DB, entityType string, filter EntityFilter) ([]*types.Entity, error)
	SetActive(ctx context.Context, tx *gorm.DB, id uuid.UUID, active bool) (int64, error)
	Exists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
}

type entityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityRepo(db *gorm.DB, baseLog *logger.Logger) EntityRepo {
	return &entityRepo{db: db, log: baseLog.With("repo", "EntityRepo")}
}

func (er *entityRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return er.db
}

func (er *entityRepo) Create(ctx context.Context, tx *gorm.DB, entity *types.Entity) error {
	return er.handle(tx).WithContext(ctx).Create(entity).Error
}

func (er *entityRepo) Update(ctx context.Context, tx *gorm.DB, entity *types.Entity) error {
	return er.handle(tx).WithContext(ctx).Save(entity).Error
}

func (er *entityRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error) {
	var entity types.Entity
	if err := er.handle(tx).WithContext(ctx).
		Preload("Parent").
		Where("id = ?", id).
		First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (er *entityRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Entity, error) {
	var results []*types.Entity
	if len(ids) == 0 {
		return results, nil
	}
	if err := er.handle(tx).WithContext(ctx).
		Preload("Parent").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *entityRepo) List(ctx context.Context, tx *gorm.DB, entityType string, filter EntityFilter) ([]*types.Entity, error) {
	q := er.handle(tx).WithContext(ctx).
		Preload("Parent").
		Where("type = ?", entityType).
		Order("name ASC")
	if filter.ParentID != nil {
		q = q.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var results []*types.Entity
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *entityRepo) SetActive(ctx context.Context, tx *gorm.DB, id uuid.UUID, active bool) (int64, error) {
	res := er.handle(tx).WithContext(ctx).
		Model(&types.Entity{}).
		Where("id = ?", id).
		Update("is_active", active)
	return res.RowsAffected, res.Error
}

func (er *entityRepo) Exists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	if err := er.handle(tx).WithContext(ctx).
		Model(&types.Entity{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
