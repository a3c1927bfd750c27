package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"user": user})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	pair, err := ah.authService.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, pair)
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperrors.Validation("invalid body: %v", err))
		return
	}
	pair, err := ah.authService.Refresh(c.Request.Context(), body.RefreshToken)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, pair)
}
