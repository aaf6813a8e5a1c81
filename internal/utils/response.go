package utils

import (
	"net/http"

	"clinic-appointments-server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Error codes carried in the envelope next to the HTTP status.
const (
	CodeNotFound          = string(services.KindNotFound)
	CodeForbidden         = string(services.KindForbidden)
	CodeInvalidInput      = string(services.KindInvalidInput)
	CodeConflict          = string(services.KindConflict)
	CodeInvalidTransition = string(services.KindInvalidTransition)
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL_ERROR"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, code, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Code:    code,
		Error:   errorMessage,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, CodeInvalidInput, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, CodeForbidden, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, CodeNotFound, errorMessage)
}

// Conflict sends a 409 Conflict error response.
func Conflict(c *gin.Context, errorMessage string) {
	Error(c, http.StatusConflict, CodeConflict, errorMessage)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, CodeInternal, errorMessage)
}

// ServiceError maps a service failure onto the envelope. Unexpected errors
// are logged and hidden behind a generic 500.
func ServiceError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		NotFound(c, err.Error())
	case services.KindForbidden:
		Forbidden(c, err.Error())
	case services.KindInvalidInput:
		BadRequest(c, err.Error())
	case services.KindConflict:
		Conflict(c, err.Error())
	case services.KindInvalidTransition:
		Error(c, http.StatusConflict, CodeInvalidTransition, err.Error())
	default:
		log.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("unhandled service error")
		InternalServerError(c, "Internal server error")
	}
}
