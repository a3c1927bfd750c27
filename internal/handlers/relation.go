package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/services"
	"github.com/opencampus/registrar-backend/internal/types"
)

type RelationHandler struct {
	relationService services.RelationService
	directory       services.DirectoryService
}

func NewRelationHandler(relationService services.RelationService, directory services.DirectoryService) *RelationHandler {
	return &RelationHandler{relationService: relationService, directory: directory}
}

type relationBody struct {
	FromEntityID uuid.UUID      `json:"from_entity_id"`
	ToEntityID   uuid.UUID      `json:"to_entity_id"`
	RelationType string         `json:"relation_type"`
	Metadata     map[string]any `json:"metadata"`
}

func (h *RelationHandler) Link(c *gin.Context) {
	var body relationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	rel, err := h.relationService.Link(c.Request.Context(), body.FromEntityID, body.ToEntityID, body.RelationType, body.Metadata)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"relation": rel})
}

func (h *RelationHandler) Unlink(c *gin.Context) {
	var body relationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	if err := h.relationService.Unlink(c.Request.Context(), body.FromEntityID, body.ToEntityID, body.RelationType); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"unlinked": true})
}

// Related serves GET /api/entities/:id/related?type=TEACHES&direction=OUTGOING.
func (h *RelationHandler) Related(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	direction := types.RelationDirection(strings.ToUpper(c.DefaultQuery("direction", string(types.DirectionEither))))
	entities, err := h.relationService.FindRelated(c.Request.Context(), id, c.Query("type"), direction)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"entities": entities})
}
