package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		messages := make([]string, 0, len(errs))
		for _, e := range errs {
			messages = append(messages, formatFieldError(e))
		}
		return strings.Join(messages, ", ")
	}
	return err.Error()
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	}
	return fmt.Sprintf("%s failed on %s", e.Field(), e.Tag())
}

// BindAndValidate binds the request body to a struct and checks its
// binding tags. If either fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid request payload: "+FormatValidationError(err))
		return false
	}
	return true
}

// BindQuery binds query parameters to a struct and checks its binding tags.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		BadRequest(c, "Invalid query parameters: "+FormatValidationError(err))
		return false
	}
	return true
}
