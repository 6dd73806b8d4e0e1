package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gearvault/internal/domain"
)

var (
	// ErrAccessDenied is returned both for foreign and for missing resources.
	ErrAccessDenied         = errors.New("resource not found or access denied")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrAlreadyInMaintenance = errors.New("equipment already has an open maintenance record")
	ErrNoOpenRecord         = errors.New("maintenance record is not open")
	ErrConflict             = errors.New("resource already exists")
	ErrUnavailable          = errors.New("storage unavailable")
)

// ValidationError carries field-level messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil lets callers return an accumulated *ValidationError without the typed-nil trap.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

type InvalidTransitionError struct {
	From domain.EquipmentStatus
	To   domain.EquipmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// ReferentialIntegrityError rejects deleting an entity that is still referenced.
type ReferentialIntegrityError struct {
	Entity string
	ID     int64
	Reason string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %d cannot be deleted: %s", e.Entity, e.ID, e.Reason)
}
