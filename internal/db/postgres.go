package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/opencampus/registrar-backend/internal/pkg/env"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := env.Get("POSTGRES_HOST", "localhost", log)
	port := env.Get("POSTGRES_PORT", "5432", log)
	user := env.Get("POSTGRES_USER", "postgres", log)
	password := env.Get("POSTGRES_PASSWORD", "", log)
	name := env.Get("POSTGRES_NAME", "registrar", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("connecting to postgres", "host", host, "db", name)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

// AutoMigrateAll creates or updates every registrar table, then applies the
// FK constraints GORM's automigration does not cover: values and relations
// cascade-delete with their entity, attributes are shared reference data and
// block deletion while values reference them.
func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("auto migrating registrar tables")
	err := s.db.AutoMigrate(
		&types.Attribute{},
		&types.Entity{},
		&types.AttributeValue{},
		&types.EntityRelation{},
		&types.User{},
		&types.Message{},
		&types.Notification{},
	)
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	constraints := []struct {
		name string
		ddl  string
	}{
		{
			"fk_attribute_value_entity",
			`ALTER TABLE "attribute_value"
			 ADD CONSTRAINT "fk_attribute_value_entity"
			 FOREIGN KEY ("entity_id") REFERENCES "entity"("id") ON DELETE CASCADE`,
		},
		{
			"fk_attribute_value_attribute",
			`ALTER TABLE "attribute_value"
			 ADD CONSTRAINT "fk_attribute_value_attribute"
			 FOREIGN KEY ("attribute_id") REFERENCES "attribute"("id") ON DELETE RESTRICT`,
		},
		{
			"fk_entity_relation_from",
			`ALTER TABLE "entity_relation"
			 ADD CONSTRAINT "fk_entity_relation_from"
			 FOREIGN KEY ("from_entity_id") REFERENCES "entity"("id") ON DELETE CASCADE`,
		},
		{
			"fk_entity_relation_to",
			`ALTER TABLE "entity_relation"
			 ADD CONSTRAINT "fk_entity_relation_to"
			 FOREIGN KEY ("to_entity_id") REFERENCES "entity"("id") ON DELETE CASCADE`,
		},
	}
	for _, c := range constraints {
		var count int64
		s.db.Raw(`SELECT COUNT(*) FROM information_schema.table_constraints WHERE constraint_name = ?`, c.name).Scan(&count)
		if count > 0 {
			continue
		}
		if err := s.db.Exec(c.ddl).Error; err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
