package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"

	ErrCodeInvalidInput = "INVALID_INPUT"

	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	ErrCodeInternalError = "INTERNAL_ERROR"
)

// APIError represents a standardized API error response. The detail string is
// the only user-facing description; internal causes stay in the server log.
type APIError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Detail
}

// NewAPIError creates a new APIError
func NewAPIError(code, detail string) *APIError {
	return &APIError{
		Code:   code,
		Detail: detail,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, detail string) {
	if detail == "" {
		detail = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, detail))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, detail string) {
	if detail == "" {
		detail = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, detail))
}

// UnprocessableEntity sends a 422 response
func UnprocessableEntity(c *gin.Context, detail string) {
	if detail == "" {
		detail = "Invalid request body"
	}
	RespondWithError(c, http.StatusUnprocessableEntity, NewAPIError(ErrCodeInvalidInput, detail))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, detail string) {
	if detail == "" {
		detail = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, detail))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, detail string) {
	if detail == "" {
		detail = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, detail))
}
