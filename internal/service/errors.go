package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"fleet-service/internal/lifecycle"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
)

// ValidationError is malformed input, a bad time ordering or a disallowed
// status transition. It matches ErrInvalidInput.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ConflictError is a double booking or a uniqueness violation. It matches
// ErrConflict.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError names the missing entity. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string, id fmt.Stringer) error {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// exclusionViolation is the postgres SQLSTATE for EXCLUDE constraint failures.
const exclusionViolation = "23P01"

// translateStoreError maps store errors to the service error kinds. entity
// and id describe what was being looked up when the error is a miss.
func translateStoreError(err error, entity string, id fmt.Stringer) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflictf("%s already exists", entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return conflictf("%s overlaps an existing booking", entity)
	}
	var te *lifecycle.TransitionError
	if errors.As(err, &te) {
		return &ValidationError{Message: te.Error()}
	}
	return err
}
