package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse is the standard success envelope. Every admission and
// billing endpoint answers { ok: true, ... }.
type SuccessResponse struct {
	OK      bool        `json:"ok"` // always true
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse carries a distinguishable reason string. Support triage
// depends on "token expired" vs "token already used" vs "wrong code", so
// handlers must never collapse these into a generic failure message.
type ErrorResponse struct {
	OK     bool              `json:"ok"` // always false
	Error  string            `json:"error"`
	Code   int               `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// SendSuccess sends a standardized success response.
func SendSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		OK:      true,
		Message: message,
		Data:    data,
	})
}

// SendError sends a standardized error response and aborts the chain.
func SendError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		OK:    false,
		Error: message,
		Code:  statusCode,
	})
}

// ValidationFailed sends a 400 with the per-field failure map.
func ValidationFailed(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		OK:     false,
		Error:  "Invalid request payload",
		Code:   http.StatusBadRequest,
		Fields: fields,
	})
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, resourceName string) {
	SendError(c, http.StatusNotFound, resourceName+" not found")
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized access"
	}
	SendError(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access to this resource is forbidden"
	}
	SendError(c, http.StatusForbidden, message)
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request payload or parameters"
	}
	SendError(c, http.StatusBadRequest, message)
}

// Conflict sends a 409 Conflict error response.
func Conflict(c *gin.Context, message string) {
	SendError(c, http.StatusConflict, message)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "An unexpected error occurred on the server"
	}
	SendError(c, http.StatusInternalServerError, message)
}
