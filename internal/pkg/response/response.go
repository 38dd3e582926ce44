package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
)

// Response is the JSON envelope returned by every endpoint
type Response struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Success writes a 200 success envelope
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Created writes a 201 success envelope
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Error writes an error envelope with the given HTTP status
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{
		Status:  "error",
		Message: message,
	})
}

// ValidationError writes a 422 envelope with field-level detail
func ValidationError(c *gin.Context, message string, errs map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, Response{
		Status:  "error",
		Message: message,
		Errors:  errs,
	})
}

// Unauthorized writes a 401 error envelope
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden writes a 403 error envelope
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound writes a 404 error envelope
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// TooManyRequests writes a 429 error envelope
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// InternalError writes a 500 error envelope
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// HandleError maps an AppError to the appropriate envelope. Validation
// errors carrying a field name produce 422 field-level detail; anything
// without a code becomes a generic 500 so provider errors never leak.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	status := apperrors.GetHTTPStatus(code)
	message := apperrors.GetMessage(code)

	if field := apperrors.GetField(err); field != "" && status == http.StatusUnprocessableEntity {
		detail := apperrors.GetDetails(err)
		if detail == "" {
			detail = message
		}
		ValidationError(c, message, map[string][]string{field: {detail}})
		return
	}

	if status == http.StatusInternalServerError {
		Error(c, status, message)
		return
	}

	c.JSON(status, Response{
		Status:  "error",
		Message: apperrors.FormatError(code, apperrors.GetDetails(err)),
	})
}
