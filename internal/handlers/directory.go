package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/opencampus/registrar-backend/internal/services"
	"github.com/opencampus/registrar-backend/internal/types"
)

// DirectoryHandler exposes the per-kind convenience listings the admin UI
// consumes (students, staff, courses, ...). Each one is the same
// list-and-project path as GET /api/entities, with the kind fixed.
type DirectoryHandler struct {
	directory services.DirectoryService
}

func NewDirectoryHandler(directory services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

func (h *DirectoryHandler) listKind(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseEntityFilter(c)
		if err != nil {
			RespondError(c, err)
			return
		}
		flats, err := h.directory.ListProjected(c.Request.Context(), kind, filter)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"entities": flats})
	}
}

func (h *DirectoryHandler) Students() gin.HandlerFunc  { return h.listKind(types.EntityTypeStudent) }
func (h *DirectoryHandler) Staff() gin.HandlerFunc     { return h.listKind(types.EntityTypeStaff) }
func (h *DirectoryHandler) Parents() gin.HandlerFunc   { return h.listKind(types.EntityTypeParent) }
func (h *DirectoryHandler) Courses() gin.HandlerFunc   { return h.listKind(types.EntityTypeCourse) }
func (h *DirectoryHandler) Rooms() gin.HandlerFunc     { return h.listKind(types.EntityTypeRoom) }
func (h *DirectoryHandler) Buildings() gin.HandlerFunc { return h.listKind(types.EntityTypeBuilding) }
