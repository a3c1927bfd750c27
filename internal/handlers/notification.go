package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/registrar-backend/internal/requestdata"
	"github.com/opencampus/registrar-backend/internal/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	unreadOnly := strings.EqualFold(c.Query("unread"), "true")
	list, err := h.notificationService.List(c.Request.Context(), rd.UserID, unreadOnly, 0)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"notifications": list})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := pathID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), id, rd.UserID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"read": true})
}
