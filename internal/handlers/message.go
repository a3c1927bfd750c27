package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/requestdata"
	"github.com/opencampus/registrar-backend/internal/services"
)

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Send(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var body struct {
		ToUserID uuid.UUID `json:"to_user_id"`
		Body     string    `json:"body"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	msg, err := h.messageService.Send(c.Request.Context(), rd.UserID, body.ToUserID, body.Body)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"message": msg})
}

func (h *MessageHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var withUserID *uuid.UUID
	if raw := c.Query("with"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, apperrors.Validation("query parameter 'with' is not a uuid"))
			return
		}
		withUserID = &id
	}
	views, err := h.messageService.List(c.Request.Context(), rd.UserID, withUserID, 0)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"messages": views})
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := pathID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.messageService.MarkRead(c.Request.Context(), id, rd.UserID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"read": true})
}
