package internal

import (
	"errors"
	"fmt"
)

// Sentinel errors for every failure category. Typed errors below unwrap to one
// of these so callers can branch with errors.Is.
var (
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrInvalidParameters     = errors.New("invalid parameters")
	ErrExtractionFailed      = errors.New("extraction failed")
	ErrUnsupportedFormat     = errors.New("unsupported format")
	ErrEngineFailure         = errors.New("engine failure")
	ErrEncodingFailure       = errors.New("encoding failure")
	ErrStorageUnavailable    = errors.New("storage unavailable")
	ErrNotFound              = errors.New("not found")
)

// ValidationError reports a missing or invalid operation parameter
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameters: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidParameters
}

// ExtractionError represents errors reading text out of a document
type ExtractionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s: %s", e.Path, e.Reason)
}

func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExtractionFailed}
	}
	return []error{ErrExtractionFailed, e.Err}
}

// FormatError represents a file whose type no extractor understands
type FormatError struct {
	Path   string
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported format %q: %s (supported: .txt, .pdf, .docx)", e.Format, e.Path)
}

func (e *FormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// EngineError wraps a failure raised by an engine invocation
type EngineError struct {
	Engine    string
	Operation Operation
	Err       error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error [%s] %s: %v", e.Engine, e.Operation, e.Err)
}

func (e *EngineError) Unwrap() []error {
	return []error{ErrEngineFailure, e.Err}
}

// StorageError represents errors accessing the bridge namespace or history medium
type StorageError struct {
	Path string
	Op   string // "open", "read", "write", "delete"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}

// EncodingError represents errors serializing or deserializing a payload
type EncodingError struct {
	Key string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error [%s]: %v", e.Key, e.Err)
}

func (e *EncodingError) Unwrap() []error {
	return []error{ErrEncodingFailure, e.Err}
}

// ErrorKind names the failure category of err, or "" when err is nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCapabilityUnavailable):
		return "CapabilityUnavailable"
	case errors.Is(err, ErrInvalidParameters):
		return "InvalidParameters"
	case errors.Is(err, ErrUnsupportedFormat):
		return "UnsupportedFormat"
	case errors.Is(err, ErrExtractionFailed):
		return "ExtractionFailed"
	case errors.Is(err, ErrEngineFailure):
		return "EngineFailure"
	case errors.Is(err, ErrEncodingFailure):
		return "EncodingFailure"
	case errors.Is(err, ErrStorageUnavailable):
		return "StorageUnavailable"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	default:
		return "Unknown"
	}
}
