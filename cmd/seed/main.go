package main

import (
	"context"
	"fmt"
	"os"

	"github.com/opencampus/registrar-backend/internal/db"
	"github.com/opencampus/registrar-backend/internal/hierarchy"
	"github.com/opencampus/registrar-backend/internal/pkg/env"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/services"
	"github.com/opencampus/registrar-backend/internal/types"
)

// seed is idempotent: attributes upsert by name, entities are skipped when
// an entity of the same type and name already exists, the admin user is
// only created on an empty user table.
func main() {
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("postgres auto migration failed", "error", err)
	}
	gdb := postgresService.DB()

	attributeRepo := repos.NewAttributeRepo(gdb, log)
	entityRepo := repos.NewEntityRepo(gdb, log)
	valueRepo := repos.NewValueRepo(gdb, log)
	userRepo := repos.NewUserRepo(gdb, log)

	registryService := services.NewRegistryService(gdb, log, attributeRepo)
	entityService := services.NewEntityService(gdb, log, entityRepo, hierarchy.Default())
	valueService := services.NewValueService(gdb, log, entityRepo, valueRepo, registryService)
	authService := services.NewAuthService(gdb, log, userRepo, env.Get("JWT_SECRET_KEY", "seed-only", log), 0, 0)

	ctx := context.Background()

	for _, def := range attributeCatalog() {
		if _, err := registryService.Define(ctx, def); err != nil {
			log.Fatal("define attribute failed", "name", def.Name, "error", err)
		}
	}
	log.Info("attribute catalog seeded", "count", len(attributeCatalog()))

	campus := ensureEntity(ctx, log, entityService, services.CreateEntityInput{
		Type: types.EntityTypeCampus, Name: "Main Campus", Code: "MAIN",
	})
	science := ensureEntity(ctx, log, entityService, services.CreateEntityInput{
		Type: types.EntityTypeBuilding, Name: "Science Hall", Code: "SCI", ParentID: &campus.ID,
	})
	for i, room := range []struct {
		name, code string
		capacity   float64
		hasLab     bool
	}{
		{"Lab 202", "SCI-202", 24, true},
		{"Lecture Hall 101", "SCI-101", 120, false},
	} {
		e := ensureEntity(ctx, log, entityService, services.CreateEntityInput{
			Type: types.EntityTypeRoom, Name: room.name, Code: room.code, ParentID: &science.ID,
		})
		if err := valueService.SetAll(ctx, e.ID, map[string]any{
			"capacity": room.capacity,
			"hasLab":   room.hasLab,
			"floor":    float64(i + 1),
		}); err != nil {
			log.Fatal("seed room values failed", "room", room.name, "error", err)
		}
	}

	count, err := userRepo.Count(ctx, nil)
	if err != nil {
		log.Fatal("count users failed", "error", err)
	}
	if count == 0 {
		adminEmail := env.Get("SEED_ADMIN_EMAIL", "admin@registrar.local", log)
		adminPassword := env.Get("SEED_ADMIN_PASSWORD", "", log)
		if adminPassword == "" {
			log.Fatal("SEED_ADMIN_PASSWORD is required to seed the admin user")
		}
		if _, err := authService.Register(ctx, services.RegisterInput{
			Email:     adminEmail,
			Password:  adminPassword,
			FirstName: "Registrar",
			LastName:  "Admin",
		}); err != nil {
			log.Fatal("seed admin failed", "error", err)
		}
		log.Info("admin user seeded", "email", adminEmail)
	}

	log.Info("seed complete")
}

func ensureEntity(ctx context.Context, log *logger.Logger, es services.EntityService, input services.CreateEntityInput) *types.Entity {
	existing, err := es.List(ctx, input.Type, repos.EntityFilter{})
	if err != nil {
		log.Fatal("list entities failed", "type", input.Type, "error", err)
	}
	for _, e := range existing {
		if e.Name == input.Name {
			return e
		}
	}
	entity, err := es.Create(ctx, input)
	if err != nil {
		log.Fatal("create entity failed", "type", input.Type, "name", input.Name, "error", err)
	}
	return entity
}

func attributeCatalog() []services.AttributeDefinition {
	person := []string{types.EntityTypeStudent, types.EntityTypeStaff, types.EntityTypeParent}
	return []services.AttributeDefinition{
		{Name: "email", DisplayName: "Email", DataType: types.DataTypeEmail, Category: types.CategoryContact, EntityTypes: person},
		{Name: "phone", DisplayName: "Phone", DataType: types.DataTypePhone, Category: types.CategoryContact, EntityTypes: person},
		{Name: "dateOfBirth", DisplayName: "Date of Birth", DataType: types.DataTypeDate, Category: types.CategoryPersonal, EntityTypes: person},
		{Name: "address", DisplayName: "Address", DataType: types.DataTypeText, Category: types.CategoryPersonal, EntityTypes: person},
		{Name: "gpa", DisplayName: "GPA", DataType: types.DataTypeNumber, Category: types.CategoryAcademic, EntityTypes: []string{types.EntityTypeStudent}},
		{Name: "enrollmentDate", DisplayName: "Enrollment Date", DataType: types.DataTypeDate, Category: types.CategoryAcademic, EntityTypes: []string{types.EntityTypeStudent}},
		{Name: "credits", DisplayName: "Credits", DataType: types.DataTypeNumber, Category: types.CategoryAcademic, EntityTypes: []string{types.EntityTypeCourse}},
		{Name: "hasLab", DisplayName: "Has Lab", DataType: types.DataTypeBoolean, Category: types.CategoryAcademic, EntityTypes: []string{types.EntityTypeCourse, types.EntityTypeRoom}},
		{Name: "syllabusUrl", DisplayName: "Syllabus URL", DataType: types.DataTypeURL, Category: types.CategoryAcademic, EntityTypes: []string{types.EntityTypeCourse}},
		{Name: "capacity", DisplayName: "Capacity", DataType: types.DataTypeNumber, Category: types.CategoryFacility, EntityTypes: []string{types.EntityTypeRoom, types.EntityTypeBuilding}},
		{Name: "floor", DisplayName: "Floor", DataType: types.DataTypeNumber, Category: types.CategoryFacility, EntityTypes: []string{types.EntityTypeRoom}},
		{Name: "accessible", DisplayName: "Wheelchair Accessible", DataType: types.DataTypeBoolean, Category: types.CategoryFacility, EntityTypes: []string{types.EntityTypeRoom, types.EntityTypeBuilding}},
	}
}
