package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Tag     string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "gt":
		return fmt.Sprintf("%s must be greater than its minimum", e.Field)
	case "gte":
		return fmt.Sprintf("%s must be at least its minimum", e.Field)
	case "lte":
		return fmt.Sprintf("%s must be at most its maximum", e.Field)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var out ValidationErrors
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field: fe.Namespace(),
			Tag:   fe.Tag(),
			Value: fe.Value(),
		})
	}
	return out
}
