package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrInvalidCredentials = errors.New("invalid credentials") // 401
	ErrUnauthenticated    = errors.New("unauthenticated")     // 401
	ErrNotFound           = errors.New("not found")           // 404
	ErrConflict           = errors.New("conflict")            // 409
	ErrInternal           = errors.New("internal")            // 500

	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrConflict)
)

// FieldError is a validation failure tied to one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return &FieldError{Field: field, Message: msg}
}

type StockError struct {
	ProductID uuid.UUID
	Name      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Name, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// repoErr classifies a repository error for the transport layer.
func repoErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInternal):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	default:
		return fmt.Errorf("%w: %s: %w", ErrInternal, what, err)
	}
}
