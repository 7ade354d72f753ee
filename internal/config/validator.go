package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers sockgate-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	// duration: validates a positive time.ParseDuration string
	if err := v.RegisterValidation("duration", validateDuration); err != nil {
		return fmt.Errorf("failed to register duration validator: %w", err)
	}
	return nil
}

// validateDuration validates that the field is a positive Go duration string.
func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

// Validate validates the Config using struct tags and custom cross-field
// rules. Returns an error with actionable messages on failure.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	// Cross-field validation: sqlite backend needs a database path.
	if err := c.validateStorePath(); err != nil {
		return err
	}

	return nil
}

// validateStorePath ensures a sqlite backend has a database path and that
// no path is configured for backends that cannot use one.
func (c *Config) validateStorePath() error {
	switch c.Store.Backend {
	case StoreBackendSQLite:
		if c.Store.Path == "" {
			return errors.New("store: backend sqlite requires path")
		}
	case StoreBackendMemory, StoreBackendNone, "":
		if c.Store.Path != "" {
			return fmt.Errorf("store: path is only valid with backend sqlite (got backend %q)", c.Store.Backend)
		}
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			msgs = append(msgs, formatFieldError(fe))
		}
		return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
	}
	return err
}

// formatFieldError renders one field error with the failing rule.
func formatFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, fe.Param())
	case "duration":
		return fmt.Sprintf("%s: must be a positive duration (e.g. \"10s\")", field)
	case "required":
		return fmt.Sprintf("%s: must not be empty", field)
	default:
		return fmt.Sprintf("%s: failed %s validation", field, fe.Tag())
	}
}
