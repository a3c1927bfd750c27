package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/services"
)

type AttributeHandler struct {
	registry services.RegistryService
}

func NewAttributeHandler(registry services.RegistryService) *AttributeHandler {
	return &AttributeHandler{registry: registry}
}

func (h *AttributeHandler) List(c *gin.Context) {
	attrs, err := h.registry.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"attributes": attrs})
}

func (h *AttributeHandler) Get(c *gin.Context) {
	attr, err := h.registry.Resolve(c.Request.Context(), c.Param("name"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"attribute": attr})
}

func (h *AttributeHandler) Define(c *gin.Context) {
	var def services.AttributeDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	attr, err := h.registry.Define(c.Request.Context(), def)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"attribute": attr})
}

func (h *AttributeHandler) Update(c *gin.Context) {
	var def services.AttributeDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	def.Name = c.Param("name")
	attr, err := h.registry.Define(c.Request.Context(), def)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"attribute": attr})
}
