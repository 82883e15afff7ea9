// Package errors provides error types and handling for Argus API operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents an Argus operation error with context about the operation
// that failed. It wraps the underlying error with additional context for
// better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "push", "createDataset")
	Op string

	// Dataset is the dataset slug or name (if applicable)
	Dataset string

	// Path is the local file or remote folder path involved (if applicable)
	Path string

	// Err is the underlying error from the transport or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Dataset != "" && e.Path != "" {
		return fmt.Sprintf("argus.%s %s %s: %v", e.Op, e.Dataset, e.Path, e.Err)
	}
	if e.Dataset != "" {
		return fmt.Sprintf("argus.%s dataset %s: %v", e.Op, e.Dataset, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("argus.%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("argus.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDataset adds dataset context to an existing error.
func (e *Error) WithDataset(dataset string) *Error {
	e.Dataset = dataset
	return e
}

// WithPath adds path context to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewDatasetError creates a new Error with dataset context.
func NewDatasetError(op, dataset string, err error) *Error {
	return &Error{
		Op:      op,
		Dataset: dataset,
		Err:     err,
	}
}

// NewPathError creates a new Error with path context.
func NewPathError(op, path string, err error) *Error {
	return &Error{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Sentinel errors for common Argus operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidPath indicates that an imposed remote path is malformed
	ErrInvalidPath = errors.New("argus: invalid remote path")

	// ErrPrecondition indicates that a local root or file existence/type check failed
	ErrPrecondition = errors.New("argus: precondition violation")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("argus: invalid input")

	// ErrTransferFailed indicates a non-success response from a signed-URL transfer
	ErrTransferFailed = errors.New("argus: transfer failed")

	// ErrUploadPending indicates the service has not finished ingesting an upload yet
	ErrUploadPending = errors.New("argus: upload pending")

	// ErrUploadFailed indicates the service rejected or lost an upload
	ErrUploadFailed = errors.New("argus: upload failed")

	// ErrNotFound indicates that the requested resource does not exist
	ErrNotFound = errors.New("argus: not found")

	// ErrUnauthorized indicates that the API key lacks access to the resource
	ErrUnauthorized = errors.New("argus: unauthorized")

	// ErrTimeout indicates that the operation timed out
	ErrTimeout = errors.New("argus: operation timeout")

	// ErrServerError indicates a 5xx response from the service
	ErrServerError = errors.New("argus: server error")
)

// TransferError describes a failed signed-URL transfer. It carries the local
// file identity and the remote response for diagnostics.
type TransferError struct {
	// Path is the local file that failed to transfer
	Path string

	// StatusCode is the HTTP status returned by the signed target
	StatusCode int

	// Body is the (truncated) response payload returned by the signed target
	Body string
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("argus: transfer failed for %s: status %d: %s", e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("argus: transfer failed for %s: status %d", e.Path, e.StatusCode)
}

// Unwrap makes TransferError match ErrTransferFailed via errors.Is.
func (e *TransferError) Unwrap() error {
	return ErrTransferFailed
}

// IsInvalidPath checks if an error indicates a malformed imposed path.
func IsInvalidPath(err error) bool {
	return errors.Is(err, ErrInvalidPath)
}

// IsPrecondition checks if an error indicates a failed local precondition.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

// IsTransferFailed checks if an error indicates a failed signed-URL transfer.
func IsTransferFailed(err error) bool {
	return errors.Is(err, ErrTransferFailed)
}

// IsUploadPending checks if an error indicates an upload still being ingested.
func IsUploadPending(err error) bool {
	return errors.Is(err, ErrUploadPending)
}

// IsNotFound checks if an error indicates a missing remote resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
