package customerr

import "fmt"

// InvalidAmountError means an expense amount could not be used: it did not
// parse as a decimal number or it was negative.
type InvalidAmountError struct {
	Value string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q", e.Value)
}

// InvalidModeError means a saving mode string is not one of the recognized
// modes.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid saving mode %q", e.Mode)
}

// StorageReadError means persisted data was present but unreadable. Callers
// recover by falling back to defaults; the error exists for logging.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// StorageWriteError means a write to durable storage failed. The in-memory
// state is still valid; the caller is warned that a restart may lose it.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}
