// Package apperror defines the error taxonomy shared by services and handlers.
// Services return these types; handlers map them to HTTP status codes.
package apperror

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed or out-of-range input as a field→message map.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError means a referenced record does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// InsufficientStockError means a stock-out would drive the counter negative.
// Available carries the current stock so callers can display it.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock, available: %d", e.Available)
}

// ConflictError means the operation is rejected because of the current state of other
// records, e.g. deleting a category that still owns products, or deleting a stock-in
// whose reversal would drive stock negative.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
