package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrAlreadyExists     = errors.New("already exists")
	ErrDuplicateRequest  = errors.New("duplicate request")

	// ErrConflict marks a transient persistence failure (deadlock, lock wait
	// timeout). The failed unit had no effect, so the caller may resubmit.
	ErrConflict = errors.New("persistence conflict")

	ErrProductInactive = fmt.Errorf("%w: product already inactive", ErrNotFound)
	ErrEmailTaken      = fmt.Errorf("%w: email already registered", ErrAlreadyExists)
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type NotFoundError struct {
	Resource string
	IDs      []string
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 1 {
		return fmt.Sprintf("%s not found (id: %s)", e.Resource, e.IDs[0])
	}
	return fmt.Sprintf("%ss not found: %s", e.Resource, strings.Join(e.IDs, ", "))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(resource string, ids ...string) error {
	return &NotFoundError{Resource: resource, IDs: ids}
}

// InsufficientStockError names the first line whose quantity exceeded the
// available stock. Available is -1 when the shortfall was detected by a
// conditional update and the exact count is unknown.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	if e.Available < 0 {
		return fmt.Sprintf("insufficient stock for product %q (id: %s): requested %d", name, e.ProductID, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %q (id: %s): requested %d, available %d",
		name, e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type TransitionError struct {
	OrderID string
	From    OrderStatus
	To      OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot change status from %s to %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
