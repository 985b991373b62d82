package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error" example:"Record not found"`
}

type successResponse struct {
	Message string `json:"message" example:"Record deleted"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, errorResponse{Error: message})
}

func abortWithError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{Error: message})
}

func newSuccessResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, successResponse{Message: message})
}

// statusFor maps domain errors onto HTTP codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateTag):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error message for client errors and the fallback
// for server errors.
func respondError(c *gin.Context, err error, fallback string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		newErrorResponse(c, code, fallback)
		return
	}
	newErrorResponse(c, code, err.Error())
}
