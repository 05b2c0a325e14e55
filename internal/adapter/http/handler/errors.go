package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ywang1110/SentimentSense/internal/domain/service"
	"github.com/ywang1110/SentimentSense/internal/usecase"
)

// ErrorMapping pairs an HTTP status with a stable error code
type ErrorMapping struct {
	StatusCode int
	Code       string
	Message    string
}

// MapUsecaseError maps usecase errors to HTTP error responses.
// Validation errors keep their message so the caller learns which
// constraint was violated; backend errors never leak internals.
func MapUsecaseError(err error) ErrorMapping {
	switch {
	case errors.Is(err, usecase.ErrEmptyText),
		errors.Is(err, usecase.ErrTextTooLong),
		errors.Is(err, usecase.ErrEmptyBatch),
		errors.Is(err, usecase.ErrBatchTooLarge):
		return ErrorMapping{
			StatusCode: http.StatusBadRequest,
			Code:       "VALIDATION_ERROR",
			Message:    err.Error(),
		}
	case errors.Is(err, service.ErrModelLoading):
		return ErrorMapping{
			StatusCode: http.StatusServiceUnavailable,
			Code:       "MODEL_LOADING",
			Message:    "model is loading, retry shortly",
		}
	case errors.Is(err, service.ErrModelFailed),
		errors.Is(err, usecase.ErrBackendUnavailable):
		return ErrorMapping{
			StatusCode: http.StatusServiceUnavailable,
			Code:       "BACKEND_UNAVAILABLE",
			Message:    "sentiment analysis service unavailable",
		}
	default:
		return ErrorMapping{
			StatusCode: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
		}
	}
}

// HandleUsecaseError maps the error and sends the JSON error response
func HandleUsecaseError(c *gin.Context, err error) {
	m := MapUsecaseError(err)
	respondError(c, m.StatusCode, m.Code, m.Message)
}

// HandleInvalidRequest rejects a request the JSON binding already refused
func HandleInvalidRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", message)
}
