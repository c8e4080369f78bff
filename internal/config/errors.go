package config

import "fmt"

// ConfigError represents a configuration error for a single setting
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

// NewConfigError creates a new configuration error
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// wrapConfigError records the underlying cause of a setting that could not be read
func wrapConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Err: err}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error for %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("config error for %s: %s", e.Field, e.Message)
}

// Unwrap implements error unwrapping
func (e *ConfigError) Unwrap() error {
	return e.Err
}
