package game

import (
	"errors"
	"fmt"

	"github.com/lazypower/bananimon/internal/store"
)

var (
	// ErrNotFound covers unknown companions and companions owned by
	// someone else; callers cannot tell the two apart.
	ErrNotFound           = errors.New("companion not found")
	ErrInvalidActionKind  = errors.New("invalid action kind")
	ErrInvalidPerformance = errors.New("performance must be within [0,1]")
	ErrInvalidRestHour    = errors.New("rest hour must be within [0,23]")
	ErrAlreadyExists      = errors.New("already exists")
	ErrEmailRequired      = errors.New("email is required")
	ErrConflict           = errors.New("companion was modified concurrently")
)

// StorageError wraps a persistence failure. Nothing retries it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageErr passes domain errors through untouched and wraps everything
// else, mapping stale writes to ErrConflict.
func storageErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrStale):
		return ErrConflict
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidActionKind),
		errors.Is(err, ErrInvalidPerformance),
		errors.Is(err, ErrInvalidRestHour),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrEmailRequired):
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
