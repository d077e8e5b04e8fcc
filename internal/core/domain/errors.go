package domain

import (
	"errors"
	"fmt"
)

// ErrNotConfigured means hub URL or token are missing. All remote
// operations short-circuit until a connection is configured.
var ErrNotConfigured = errors.New("hub connection not configured")

// ErrLocked means a customization mutation was attempted while the
// settings lock is engaged.
var ErrLocked = errors.New("settings are locked")

// ErrIncorrectPassword is returned by an unlock attempt with a
// non-matching password.
var ErrIncorrectPassword = errors.New("incorrect password")

// TransportError is a non-2xx or network failure talking to the hub.
// Message carries the response body, or a generic failure string when
// there was no response.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("hub request failed (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("hub request failed: %s", e.Message)
}

// ValidationError rejects bad user input (empty password).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StorageError wraps settings load/flush failures. It is distinct from
// device-fetch failures so the UI can hint at the storage integration.
type StorageError struct {
	Op  string // "load" or "flush"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("settings %s failed: %s", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
