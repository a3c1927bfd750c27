package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opencampus/registrar-backend/internal/eav"
	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/services"
)

type EntityHandler struct {
	directory     services.DirectoryService
	entityService services.EntityService
	valueService  services.ValueService
}

func NewEntityHandler(directory services.DirectoryService, entityService services.EntityService, valueService services.ValueService) *EntityHandler {
	return &EntityHandler{directory: directory, entityService: entityService, valueService: valueService}
}

// List serves GET /api/entities?type=ROOM&parentId=...&active=true with
// projected flat objects, name ascending.
func (h *EntityHandler) List(c *gin.Context) {
	entityType := c.Query("type")
	if entityType == "" {
		RespondError(c, apperrors.Validation("query parameter 'type' is required"))
		return
	}
	filter, err := parseEntityFilter(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	flats, err := h.directory.ListProjected(c.Request.Context(), entityType, filter)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"entities": flats})
}

func (h *EntityHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	flat, err := h.directory.GetProjected(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, flat)
}

func (h *EntityHandler) Create(c *gin.Context) {
	var flat map[string]any
	if err := c.ShouldBindJSON(&flat); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	entityType, _ := flat["type"].(string)
	if entityType == "" {
		RespondError(c, apperrors.Validation("field 'type' is required"))
		return
	}
	projected, err := h.directory.CreateFromFlat(c.Request.Context(), strings.ToUpper(entityType), flat)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, projected)
}

func (h *EntityHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var flat map[string]any
	if err := c.ShouldBindJSON(&flat); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	projected, err := h.directory.UpdateFromFlat(c.Request.Context(), id, flat)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, projected)
}

// UpdateValues serves PUT /api/entities/:id/values: attribute assignments
// only, no core-field changes.
func (h *EntityHandler) UpdateValues(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var assignments map[string]any
	if err := c.ShouldBindJSON(&assignments); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	for key := range assignments {
		if eav.IsCoreField(key) {
			RespondError(c, apperrors.Validation("%q is a core entity field, use PUT /api/entities/:id", key))
			return
		}
	}
	if err := h.valueService.SetAll(c.Request.Context(), id, assignments); err != nil {
		RespondError(c, err)
		return
	}
	projected, err := h.directory.GetProjected(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, projected)
}

func (h *EntityHandler) Deactivate(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.entityService.Deactivate(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": id, "is_active": false})
}

func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("path parameter %q is not a uuid", name)
	}
	return id, nil
}

func parseEntityFilter(c *gin.Context) (repos.EntityFilter, error) {
	var filter repos.EntityFilter
	if raw := c.Query("parentId"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return filter, apperrors.Validation("query parameter 'parentId' is not a uuid")
		}
		filter.ParentID = &pid
	}
	if strings.EqualFold(c.Query("active"), "true") {
		filter.ActiveOnly = true
	}
	return filter, nil
}
