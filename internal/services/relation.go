package services

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/types"
)

var relationTypeRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

type RelationService interface {
	Link(ctx context.Context, fromID, toID uuid.UUID, relationType string, metadata map[string]any) (*types.EntityRelation, error)
	Unlink(ctx context.Context, fromID, toID uuid.UUID, relationType string) error
	FindRelated(ctx context.Context, entityID uuid.UUID, relationType string, direction types.RelationDirection) ([]*types.Entity, error)
}

type relationService struct {
	db           *gorm.DB
	log          *logger.Logger
	entityRepo   repos.EntityRepo
	relationRepo repos.RelationRepo
}

func NewRelationService(db *gorm.DB, log *logger.Logger, entityRepo repos.EntityRepo, relationRepo repos.RelationRepo) RelationService {
	return &relationService{
		db:           db,
		log:          log.With("service", "RelationService"),
		entityRepo:   entityRepo,
		relationRepo: relationRepo,
	}
}

// Link creates the (from, to, type) edge if absent. Re-linking an existing
// edge refreshes metadata only; the edge count never grows past one.
func (rs *relationService) Link(ctx context.Context, fromID, toID uuid.UUID, relationType string, metadata map[string]any) (*types.EntityRelation, error) {
	relationType = strings.TrimSpace(relationType)
	if !relationTypeRe.MatchString(relationType) {
		return nil, apperrors.Validation("relation type %q must be an uppercase token", relationType)
	}
	if fromID == toID {
		return nil, apperrors.Validation("an entity cannot relate to itself")
	}
	for _, id := range []uuid.UUID{fromID, toID} {
		exists, err := rs.entityRepo.Exists(ctx, nil, id)
		if err != nil {
			return nil, apperrors.MapError("relation.Link", err)
		}
		if !exists {
			return nil, apperrors.NotFound("entity %s does not exist", id)
		}
	}

	rel := &types.EntityRelation{
		ID:           uuid.New(),
		FromEntityID: fromID,
		ToEntityID:   toID,
		RelationType: relationType,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, apperrors.Validation("relation metadata: %v", err)
		}
		rel.Metadata = datatypes.JSON(raw)
	}
	if err := rs.relationRepo.Upsert(ctx, nil, rel); err != nil {
		return nil, apperrors.MapError("relation.Link", err)
	}
	// the conflict path keeps the stored row's ID, so re-read rather than
	// hand back the candidate we built
	stored, err := rs.relationRepo.Get(ctx, nil, fromID, toID, relationType)
	if err != nil {
		return nil, apperrors.MapError("relation.Link", err)
	}
	return stored, nil
}

func (rs *relationService) Unlink(ctx context.Context, fromID, toID uuid.UUID, relationType string) error {
	affected, err := rs.relationRepo.Delete(ctx, nil, fromID, toID, strings.TrimSpace(relationType))
	if err != nil {
		return apperrors.MapError("relation.Unlink", err)
	}
	if affected == 0 {
		return apperrors.NotFound("no %s relation from %s to %s", relationType, fromID, toID)
	}
	return nil
}

// FindRelated resolves the entities on the far side of matching edges,
// deduplicated and name-ascending. EITHER walks both directions.
func (rs *relationService) FindRelated(ctx context.Context, entityID uuid.UUID, relationType string, direction types.RelationDirection) ([]*types.Entity, error) {
	relationType = strings.TrimSpace(relationType)
	if relationType == "" {
		return nil, apperrors.Validation("relation type is required")
	}
	switch direction {
	case types.DirectionOutgoing, types.DirectionIncoming, types.DirectionEither:
	default:
		return nil, apperrors.Validation("unknown direction %q", string(direction))
	}

	counterparts := make(map[uuid.UUID]bool)

	if direction == types.DirectionOutgoing || direction == types.DirectionEither {
		rels, err := rs.relationRepo.ListFrom(ctx, nil, entityID, relationType)
		if err != nil {
			return nil, apperrors.MapError("relation.FindRelated", err)
		}
		for _, rel := range rels {
			counterparts[rel.ToEntityID] = true
		}
	}
	if direction == types.DirectionIncoming || direction == types.DirectionEither {
		rels, err := rs.relationRepo.ListTo(ctx, nil, entityID, relationType)
		if err != nil {
			return nil, apperrors.MapError("relation.FindRelated", err)
		}
		for _, rel := range rels {
			counterparts[rel.FromEntityID] = true
		}
	}
	ids := make([]uuid.UUID, 0, len(counterparts))
	for id := range counterparts {
		ids = append(ids, id)
	}
	entities, err := rs.entityRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, apperrors.MapError("relation.FindRelated", err)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })
	return entities, nil
}
