package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/takeaship/slack-remind-command-constructor/internal/logger"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data"`
	Warnings  []string    `json:"warnings,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Errors    []ValidationError `json:"errors"`
	RequestID string            `json:"request_id,omitempty"`
}

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success:   false,
		Error:     message,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	})
}

func ValidationErrors(c *gin.Context, errors []ValidationError) {
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Success:   false,
		Message:   "Validation failed",
		Errors:    errors,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	})
}

// OKWithWarnings keeps data as the bare result and reports non-fatal
// problems next to it.
func OKWithWarnings(c *gin.Context, data interface{}, warnings []string) {
	c.JSON(http.StatusOK, Response{
		Success:  true,
		Data:     data,
		Warnings: warnings,
	})
}

func OK(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusOK, message, data)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}
