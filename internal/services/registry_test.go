package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/types"
)

func TestDefineCreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	created, err := s.registry.Define(ctx, AttributeDefinition{
		Name:        "gpa",
		DataType:    types.DataTypeNumber,
		Category:    types.CategoryAcademic,
		EntityTypes: []string{types.EntityTypeStudent},
	})
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if created.DisplayName != "gpa" {
		t.Fatalf("DisplayName default = %q, want name", created.DisplayName)
	}

	updated, err := s.registry.Define(ctx, AttributeDefinition{
		Name:        "gpa",
		DisplayName: "Grade Point Average",
		DataType:    types.DataTypeNumber,
		Category:    types.CategoryAcademic,
		EntityTypes: []string{types.EntityTypeStudent},
		Description: "cumulative",
	})
	if err != nil {
		t.Fatalf("redefine: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("redefine created a second attribute")
	}
	if updated.DisplayName != "Grade Point Average" || updated.Description != "cumulative" {
		t.Fatalf("descriptive fields not updated: %+v", updated)
	}

	attrs, err := s.registry.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(attrs) != 1 {
		t.Fatalf("registry holds %d attributes, want 1", len(attrs))
	}
}

func TestDefineValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	tests := []struct {
		name string
		def  AttributeDefinition
	}{
		{"empty name", AttributeDefinition{DataType: types.DataTypeString, EntityTypes: []string{types.EntityTypeStudent}}},
		{"bad data type", AttributeDefinition{Name: "x", DataType: "BLOB", EntityTypes: []string{types.EntityTypeStudent}}},
		{"no entity types", AttributeDefinition{Name: "x", DataType: types.DataTypeString}},
		{"unknown entity type", AttributeDefinition{Name: "x", DataType: types.DataTypeString, EntityTypes: []string{"SPACESHIP"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.registry.Define(ctx, tt.def)
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("Define = %v, want ErrValidation", err)
			}
		})
	}
}

func TestDefineDataTypeChangePolicy(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	def := AttributeDefinition{
		Name:        "credits",
		DataType:    types.DataTypeString,
		EntityTypes: []string{types.EntityTypeCourse},
	}
	created, err := s.registry.Define(ctx, def)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}

	// No stored values yet: retyping is allowed.
	def.DataType = types.DataTypeNumber
	retyped, err := s.registry.Define(ctx, def)
	if err != nil {
		t.Fatalf("retype without values: %v", err)
	}
	if retyped.DataType != types.DataTypeNumber {
		t.Fatalf("DataType = %s, want NUMBER", retyped.DataType)
	}

	course, err := s.entities.Create(ctx, CreateEntityInput{Type: types.EntityTypeCourse, Name: "Algebra"})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if err := s.values.Set(ctx, course.ID, "credits", 3); err != nil {
		t.Fatalf("set credits: %v", err)
	}

	// Values now reference the attribute: retyping must be refused.
	def.DataType = types.DataTypeBoolean
	_, err = s.registry.Define(ctx, def)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("retype with values = %v, want ErrValidation", err)
	}

	attr, err := s.registry.Resolve(ctx, "credits")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if attr.ID != created.ID || attr.DataType != types.DataTypeNumber {
		t.Fatalf("attribute mutated by refused retype: %+v", attr)
	}
}

func TestResolveNotFound(t *testing.T) {
	s := newTestStack(t)
	_, err := s.registry.Resolve(context.Background(), "missing")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("Resolve(missing) = %v, want ErrNotFound", err)
	}
}

func TestFindOrCreateReturnsExisting(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	defined, err := s.registry.Define(ctx, AttributeDefinition{
		Name:        "email",
		DataType:    types.DataTypeEmail,
		EntityTypes: []string{types.EntityTypeStudent},
	})
	if err != nil {
		t.Fatalf("Define: %v", err)
	}

	// The inferred type must not win over an existing definition.
	found, err := s.registry.FindOrCreate(ctx, nil, "email", types.DataTypeString, types.CategoryGeneral, nil)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if found.ID != defined.ID || found.DataType != types.DataTypeEmail {
		t.Fatalf("FindOrCreate replaced the definition: %+v", found)
	}
}

func TestFindOrCreateConcurrentCallersShareOneDefinition(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	const callers = 8
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			attr, err := s.registry.FindOrCreate(ctx, nil, "nickname", types.DataTypeString, types.CategoryGeneral, nil)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = attr.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("callers resolved different attributes: %v vs %v", ids[i], ids[0])
		}
	}

	attrs, err := s.registry.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(attrs) != 1 {
		t.Fatalf("registry holds %d definitions after concurrent create, want 1", len(attrs))
	}
}

// A transactional caller must get a definition created inside its own
// transaction, never a row from some other caller's uncommitted one; the
// definition lives and dies with the transaction.
func TestFindOrCreateScopedToCallerTransaction(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	abort := errors.New("abort")
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attr, err := s.registry.FindOrCreate(ctx, tx, "wingSpan", types.DataTypeNumber, types.CategoryGeneral, nil)
		if err != nil {
			return err
		}
		// visible inside the transaction that created it
		again, err := s.registry.FindOrCreate(ctx, tx, "wingSpan", types.DataTypeNumber, types.CategoryGeneral, nil)
		if err != nil {
			return err
		}
		if again.ID != attr.ID {
			t.Fatalf("second lookup in the same tx resolved %v, want %v", again.ID, attr.ID)
		}
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("Transaction = %v, want the abort error", err)
	}

	if _, err := s.registry.Resolve(ctx, "wingSpan"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("rolled-back definition still resolves: %v", err)
	}
	if _, err := s.registry.FindOrCreate(ctx, nil, "wingSpan", types.DataTypeNumber, types.CategoryGeneral, nil); err != nil {
		t.Fatalf("recreate after rollback: %v", err)
	}
}
