package history

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Get for an unknown id.
var ErrNotFound = errors.New("history entry not found")

// StorageError reports a failure of the medium backing a Store.
type StorageError struct {
	// Op is the store operation that failed ("append", "list", ...).
	Op string

	// Err is the underlying driver or I/O error.
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("history %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err for op. Returns nil if err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err wraps a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
