package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feedbackinsights/internal/repository"
	"feedbackinsights/internal/service"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// fail maps service and repository errors onto HTTP statuses. Unexpected
// errors are logged and reported without detail.
func fail(c *gin.Context, logger *zap.Logger, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrPurchaseNotFound):
		Error(c, http.StatusNotFound, "purchase not found", nil)
	case errors.Is(err, service.ErrUnknownSwitch):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, repository.ErrDuplicate):
		Error(c, http.StatusConflict, err.Error(), nil)
	default:
		if logger != nil {
			logger.Error(msg,
				zap.String("request_id", requestID(c)),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}
