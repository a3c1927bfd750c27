package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/types"
)

func TestLinkValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	a, err := s.entities.Create(ctx, CreateEntityInput{Type: types.EntityTypeStudent, Name: "Alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := s.entities.Create(ctx, CreateEntityInput{Type: types.EntityTypeCourse, Name: "Algebra"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.relations.Link(ctx, a.ID, a.ID, types.RelationEnrolledIn, nil); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("self link = %v, want ErrValidation", err)
	}
	if _, err := s.relations.Link(ctx, a.ID, b.ID, "enrolled_in", nil); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("lowercase relation type = %v, want ErrValidation", err)
	}
	if _, err := s.relations.Link(ctx, a.ID, uuid.New(), types.RelationEnrolledIn, nil); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing target = %v, want ErrNotFound", err)
	}
}

func TestLinkIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	alice, err := s.entities.Create(ctx, CreateEntityInput{Type: types.EntityTypeStudent, Name: "Alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	algebra, err := s.entities.Create(ctx, CreateEntityInput{Type: types.EntityTypeCourse, Name: "Algebra"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := s.relations.Link(ctx, alice.ID, algebra.ID, types.RelationEnrolledIn, nil)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	second, err := s.relations.Link(ctx, alice.ID, algebra.ID, types.RelationEnrolledIn, map[string]any{"term": "FALL-2026"})
	if err != nil {
		t.Fatalf("relink: %v", err)
	}
	// the second call updates the stored edge in place, and the caller
	// gets that row back, not a candidate with an unpersisted ID
	if second.ID != first.ID {
		t.Fatalf("relink returned ID %s, stored edge is %s", second.ID, first.ID)
	}
	if string(second.Metadata) != `{"term":"FALL-2026"}` {
		t.Fatalf("relink metadata = %s", second.Metadata)
	}

	courses, err := s.relations.FindRelated(ctx, alice.ID, types.RelationEnrolledIn, types.DirectionOutgoing)
	if err != nil {
		t.Fatalf("FindRelated: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("double link produced %d related entities, want 1", len(courses))
	}
}

func TestFindRelatedDirections(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	chen, err := s.entities.Create(ctx, CreateEntityInput{Type: types.EntityTypeStaff, Name: "Dr. Chen"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	algebra, err := s.entities.Create(ctx, CreateEntityInput{Type: types.EntityTypeCourse, Name: "Algebra"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	biology, err := s.entities.Create(ctx, CreateEntityInput{Type: types.EntityTypeCourse, Name: "Biology"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, course := range []uuid.UUID{biology.ID, algebra.ID} {
		if _, err := s.relations.Link(ctx, chen.ID, course, types.RelationTeaches, nil); err != nil {
			t.Fatalf("link: %v", err)
		}
	}

	taught, err := s.relations.FindRelated(ctx, chen.ID, types.RelationTeaches, types.DirectionOutgoing)
	if err != nil {
		t.Fatalf("FindRelated outgoing: %v", err)
	}
	if len(taught) != 2 || taught[0].Name != "Algebra" || taught[1].Name != "Biology" {
		t.Fatalf("outgoing = %v, want [Algebra Biology]", names(taught))
	}

	teachers, err := s.relations.FindRelated(ctx, algebra.ID, types.RelationTeaches, types.DirectionIncoming)
	if err != nil {
		t.Fatalf("FindRelated incoming: %v", err)
	}
	if len(teachers) != 1 || teachers[0].ID != chen.ID {
		t.Fatalf("incoming = %v, want [Dr. Chen]", names(teachers))
	}

	// Outgoing from the course side of a TEACHES edge is empty.
	none, err := s.relations.FindRelated(ctx, algebra.ID, types.RelationTeaches, types.DirectionOutgoing)
	if err != nil {
		t.Fatalf("FindRelated: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("course teaches someone? %v", names(none))
	}

	either, err := s.relations.FindRelated(ctx, algebra.ID, types.RelationTeaches, types.DirectionEither)
	if err != nil {
		t.Fatalf("FindRelated either: %v", err)
	}
	if len(either) != 1 {
		t.Fatalf("either = %v, want one teacher", names(either))
	}

	if _, err := s.relations.FindRelated(ctx, chen.ID, types.RelationTeaches, "SIDEWAYS"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("bad direction = %v, want ErrValidation", err)
	}
}

func TestUnlink(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)

	a, err := s.entities.Create(ctx, CreateEntityInput{Type: types.EntityTypeStudent, Name: "Alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	c, err := s.entities.Create(ctx, CreateEntityInput{Type: types.EntityTypeCourse, Name: "Algebra"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.relations.Link(ctx, a.ID, c.ID, types.RelationEnrolledIn, nil); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := s.relations.Unlink(ctx, a.ID, c.ID, types.RelationEnrolledIn); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if err := s.relations.Unlink(ctx, a.ID, c.ID, types.RelationEnrolledIn); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second Unlink = %v, want ErrNotFound", err)
	}
}

func names(entities []*types.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}
