package services

import (
	"database/sql"
	"errors"
	"fmt"
)

// ValidationError is returned when input is missing or malformed
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError is returned for uniqueness, overlap and dependency conflicts
type ConflictError struct {
	Message string
	Details interface{}
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidStateError is returned when an entity is not in a state that allows the operation
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

// ConfirmationRequiredError asks the caller to repeat the request with confirm=true
type ConfirmationRequiredError struct {
	Message string
	Details interface{}
}

func (e *ConfirmationRequiredError) Error() string { return e.Message }

// NotFoundError is returned when a referenced entity does not exist
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// ForbiddenError is returned when the actor may not act on the entity
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// notFound converts sql.ErrNoRows into a NotFoundError and passes other errors through.
func notFound(err error, entity string, id interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}
