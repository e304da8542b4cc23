package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/vidstream/go-video-backend/internal/errors"
)

// apiResponse is the envelope every endpoint returns.
type apiResponse struct {
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, apiResponse{Status: status, Data: data, Message: message})
}

func respondError(c *gin.Context, err error) {
	status := statusFromError(err)
	message := err.Error()

	// Token and credential failures all read the same to the caller, so a
	// client cannot probe whether a token was malformed, expired, or replayed.
	if status == http.StatusUnauthorized {
		message = "unauthorized"
	}
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("path", c.FullPath()).Msg("request failed")
		message = "something went wrong"
	}

	c.AbortWithStatusJSON(status, apiResponse{Status: status, Message: message})
}

func statusFromError(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
