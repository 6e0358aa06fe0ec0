// Package vcerrors defines the error taxonomy for repository operations.
// Plain I/O faults are wrapped with fmt.Errorf at the call site; the
// typed errors here cover the outcomes a caller must tell apart.
package vcerrors

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeUninitialized  ErrorType = "UNINITIALIZED_REPOSITORY"
	ErrorTypeSourceNotFound ErrorType = "SOURCE_NOT_FOUND"
	ErrorTypeEmptyStaging   ErrorType = "EMPTY_STAGING"
	ErrorTypeCommitNotFound ErrorType = "COMMIT_NOT_FOUND"
	ErrorTypeMissingObject  ErrorType = "MISSING_OBJECT"
	ErrorTypeCorruptObject  ErrorType = "CORRUPT_OBJECT"
)

type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsType reports whether err is, or wraps, a taxonomy error of type t.
func IsType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

func Uninitialized(root string) *Error {
	return &Error{
		Type:    ErrorTypeUninitialized,
		Message: fmt.Sprintf("not a minivc repository: %s (run 'minivc init' first)", root),
	}
}

func SourceNotFound(path string) *Error {
	return &Error{
		Type:    ErrorTypeSourceNotFound,
		Message: fmt.Sprintf("file not found: %s", path),
	}
}

func EmptyStaging() *Error {
	return &Error{
		Type:    ErrorTypeEmptyStaging,
		Message: "nothing to commit: the staging index is empty",
	}
}

func CommitNotFound(id string) *Error {
	return &Error{
		Type:    ErrorTypeCommitNotFound,
		Message: fmt.Sprintf("commit not found: %s", id),
	}
}

func MissingObject(name string) *Error {
	return &Error{
		Type:    ErrorTypeMissingObject,
		Message: fmt.Sprintf("object missing from store: %s", name),
	}
}

func CorruptObject(name, want, got string) *Error {
	return &Error{
		Type:    ErrorTypeCorruptObject,
		Message: fmt.Sprintf("object %s is corrupt: fingerprint %s, expected %s", name, got, want),
	}
}
