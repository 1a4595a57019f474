package pipeline

import "fmt"

// Error is a fatal pipeline failure with enough context to diagnose which
// file and key were involved. Recoverable conditions (missing files,
// unparseable cells) never surface as an Error - they degrade to nulls and
// defaults inside the transformation layers.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// File is the archive member involved, when known.
	File string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, when any.
	Err error
}

// ErrorCode categorizes fatal pipeline failures.
type ErrorCode string

const (
	// ErrCodeBadArchive indicates the source buffer is not a valid ZIP.
	ErrCodeBadArchive ErrorCode = "BAD_ARCHIVE"

	// ErrCodeReadFailed indicates a member file could not be parsed at all.
	ErrCodeReadFailed ErrorCode = "READ_FAILED"

	// ErrCodeValidation indicates a silver record violated its schema
	// invariants - a data-quality incident, not a row to drop.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s (file=%s)", e.Code, e.Message, e.File)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func wrap(code ErrorCode, file, message string, err error) *Error {
	return &Error{Code: code, File: file, Message: message, Err: err}
}
