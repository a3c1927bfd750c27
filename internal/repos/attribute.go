package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/types"
)

type AttributeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attr *types.Attribute) error
	Update(ctx context.Context, tx *gorm.DB, attr *types.Attribute) error
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Attribute, error)
	GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Attribute, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Attribute, error)
	CountValues(ctx context.Context, tx *gorm.DB, attributeID uuid.UUID) (int64, error)
}

type attributeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttributeRepo(db *gorm.DB, baseLog *logger.Logger) AttributeRepo {
	return &attributeRepo{db: db, log: baseLog.With("repo", "AttributeRepo")}
}

func (ar *attributeRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ar.db
}

func (ar *attributeRepo) Create(ctx context.Context, tx *gorm.DB, attr *types.Attribute) error {
	return ar.handle(tx).WithContext(ctx).Create(attr).Error
}

func (ar *attributeRepo) Update(ctx context.Context, tx *gorm.DB, attr *types.Attribute) error {
	return ar.handle(tx).WithContext(ctx).Save(attr).Error
}

func (ar *attributeRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Attribute, error) {
	var attr types.Attribute
	if err := ar.handle(tx).WithContext(ctx).
		Where("name = ?", name).
		First(&attr).Error; err != nil {
		return nil, err
	}
	return &attr, nil
}

func (ar *attributeRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Attribute, error) {
	var results []*types.Attribute
	if len(names) == 0 {
		return results, nil
	}
	if err := ar.handle(tx).WithContext(ctx).
		Where("name IN ?", names).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *attributeRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Attribute, error) {
	var results []*types.Attribute
	if err := ar.handle(tx).WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *attributeRepo) CountValues(ctx context.Context, tx *gorm.DB, attributeID uuid.UUID) (int64, error) {
	var count int64
	if err := ar.handle(tx).WithContext(ctx).
		Model(&types.AttributeValue{}).
		Where("attribute_id = ?", attributeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
