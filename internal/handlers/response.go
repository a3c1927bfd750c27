package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/registrar-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps a domain error onto its HTTP status and writes the
// error envelope.
func RespondError(c *gin.Context, err error) {
	apiErr := apierr.FromError(err)
	if apiErr == nil {
		apiErr = apierr.New(http.StatusInternalServerError, "internal", err)
	}
	c.JSON(apiErr.Status, ErrorEnvelope{
		Error: APIError{
			Message: apiErr.Error(),
			Code:    apiErr.Code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
