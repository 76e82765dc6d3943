package todo

import "errors"

var (
	ErrInvalidInput = errors.New("task and category are required")
	ErrNotFound     = errors.New("todo not found")
)

// StorageError reports a failed statement. Err is the driver error as
// wrapped by the store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
