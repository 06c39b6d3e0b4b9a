package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrDuplicate          = errors.New("duplicate record")
	ErrInUse              = errors.New("record is still referenced")
)

// ValidationError reports bad input, keyed by field
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a problem with field
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// OrNil returns e when it holds at least one problem
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range sortedKeys(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s %s", field, e.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// notFound maps gorm's missing-row error onto ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
