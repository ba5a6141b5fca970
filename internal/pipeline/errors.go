package pipeline

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes pipeline errors.
type ErrorCode string

const (
	// ErrCodeNoInput indicates that none of the archive paths could be read.
	ErrCodeNoInput ErrorCode = "NO_INPUT"

	// ErrCodeDatasetMissing indicates that Enrich had no dataset to read.
	ErrCodeDatasetMissing ErrorCode = "DATASET_MISSING"

	// ErrCodeCacheSave indicates that persisting the stroke-count cache
	// failed. Runs log it and continue.
	ErrCodeCacheSave ErrorCode = "CACHE_SAVE"
)

// ErrNoInput is wrapped by the error Extract returns when no archive path
// was usable.
var ErrNoInput = errors.New("no usable input archive")

// Error is a coded pipeline error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsNoInput reports whether err means no archive could be read.
func IsNoInput(err error) bool {
	return CodeOf(err) == ErrCodeNoInput
}

// NewDatasetMissingError wraps a failure to read the dataset at path.
func NewDatasetMissingError(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeDatasetMissing,
		Message: fmt.Sprintf("dataset %s could not be read; run extract first", path),
		Err:     err,
	}
}

func newNoInputError(paths []string) *Error {
	return &Error{
		Code:    ErrCodeNoInput,
		Message: fmt.Sprintf("none of %d archive path(s) could be read", len(paths)),
		Err:     ErrNoInput,
	}
}

func newCacheSaveError(location string, err error) *Error {
	return &Error{
		Code:    ErrCodeCacheSave,
		Message: fmt.Sprintf("saving stroke-count cache to %s", location),
		Err:     err,
	}
}
