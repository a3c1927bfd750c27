package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/types"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a fresh sqlite database in the test's temp dir and migrates the
// registrar schema, so every test starts from an empty store.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbPath := filepath.Join(tb.TempDir(), "registrar_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&types.Attribute{},
		&types.Entity{},
		&types.AttributeValue{},
		&types.EntityRelation{},
		&types.User{},
		&types.Message{},
		&types.Notification{},
	); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

func SeedAttribute(tb testing.TB, ctx context.Context, db *gorm.DB, name string, dt types.DataType, entityTypes []string) *types.Attribute {
	tb.Helper()
	attr := &types.Attribute{
		ID:          uuid.New(),
		Name:        name,
		DisplayName: name,
		DataType:    dt,
		Category:    types.CategoryGeneral,
	}
	if err := attr.SetEntityTypeList(entityTypes); err != nil {
		tb.Fatalf("seed attribute %s: %v", name, err)
	}
	if err := db.WithContext(ctx).Create(attr).Error; err != nil {
		tb.Fatalf("seed attribute %s: %v", name, err)
	}
	return attr
}

func SeedEntity(tb testing.TB, ctx context.Context, db *gorm.DB, entityType, name string, parentID *uuid.UUID) *types.Entity {
	tb.Helper()
	e := &types.Entity{
		ID:       uuid.New(),
		Type:     entityType,
		Name:     name,
		ParentID: parentID,
		IsActive: true,
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed entity %s: %v", name, err)
	}
	return e
}

func SeedUser(tb testing.TB, ctx context.Context, db *gorm.DB, email, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      role,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user %s: %v", email, err)
	}
	return u
}
