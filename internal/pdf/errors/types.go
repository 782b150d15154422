package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// PDFError represents a batch processing failure with structured context.
// Every PDFError is recoverable at the batch boundary; whether it aborts the
// batch or is isolated into the item's output is decided by the runner.
type PDFError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Context   Context   `json:"context"`
	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// Context identifies where in a batch an error originated.
type Context struct {
	ItemIndex *int   `json:"item_index,omitempty"`
	Property  string `json:"property,omitempty"`
	Field     string `json:"field,omitempty"`
	Page      *int   `json:"page,omitempty"`
}

// ErrorType represents the categories of per-item failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeMissingBinary
	ErrorTypeWrongType
	ErrorTypeSizeExceeded
	ErrorTypeFetchFailed
	ErrorTypeLoadFailed
	ErrorTypeMalformedConfig
	ErrorTypeMissingField
	ErrorTypeUnknownFieldType
	ErrorTypeFieldNotFound
	ErrorTypeFieldMismatch
	ErrorTypeOptionNotFound
	ErrorTypeIndexOutOfRange
	ErrorTypeOperationFailed
	ErrorTypeSaveFailed
)

// Error implements the error interface. The message is surfaced as is so
// callers matching on it see the original diagnostic.
func (e *PDFError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *PDFError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a PDFError of the same type. This lets
// callers write errors.Is(err, errors.New(ErrorTypeWrongType, "")).
func (e *PDFError) Is(target error) bool {
	t, ok := target.(*PDFError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeMissingBinary:
		return "MISSING_BINARY"
	case ErrorTypeWrongType:
		return "WRONG_TYPE"
	case ErrorTypeSizeExceeded:
		return "SIZE_EXCEEDED"
	case ErrorTypeFetchFailed:
		return "FETCH_FAILED"
	case ErrorTypeLoadFailed:
		return "LOAD_FAILED"
	case ErrorTypeMalformedConfig:
		return "MALFORMED_CONFIG"
	case ErrorTypeMissingField:
		return "MISSING_FIELD"
	case ErrorTypeUnknownFieldType:
		return "UNKNOWN_FIELD_TYPE"
	case ErrorTypeFieldNotFound:
		return "FIELD_NOT_FOUND"
	case ErrorTypeFieldMismatch:
		return "FIELD_MISMATCH"
	case ErrorTypeOptionNotFound:
		return "OPTION_NOT_FOUND"
	case ErrorTypeIndexOutOfRange:
		return "INDEX_OUT_OF_RANGE"
	case ErrorTypeOperationFailed:
		return "OPERATION_FAILED"
	case ErrorTypeSaveFailed:
		return "SAVE_FAILED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the type by name in JSON output
func (et ErrorType) MarshalText() ([]byte, error) {
	return []byte(et.String()), nil
}

// New creates a new PDFError
func New(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a new PDFError with a formatted message
func Newf(errorType ErrorType, format string, args ...any) *PDFError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// WrapError wraps a standard error as a PDFError, keeping it as the cause
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	e := New(errorType, message)
	e.Cause = err
	return e
}

// WithItemIndex records the batch position of the failing item. Existing
// context is kept; only the index is set.
func (e *PDFError) WithItemIndex(index int) *PDFError {
	e.Context.ItemIndex = &index
	return e
}

// WithProperty adds the binary property name to the error context
func (e *PDFError) WithProperty(property string) *PDFError {
	e.Context.Property = property
	return e
}

// WithField adds the form field name to the error context
func (e *PDFError) WithField(field string) *PDFError {
	e.Context.Field = field
	return e
}

// WithPage adds the zero-based page index to the error context
func (e *PDFError) WithPage(page int) *PDFError {
	e.Context.Page = &page
	return e
}

// ItemIndex returns the recorded item index
func (e *PDFError) ItemIndex() (int, bool) {
	if e.Context.ItemIndex == nil {
		return 0, false
	}
	return *e.Context.ItemIndex, true
}

// AsPDFError finds the first PDFError in err's chain
func AsPDFError(err error) (*PDFError, bool) {
	var pdfErr *PDFError
	if stderrors.As(err, &pdfErr) {
		return pdfErr, true
	}
	return nil, false
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown for foreign errors
func TypeOf(err error) ErrorType {
	if pdfErr, ok := AsPDFError(err); ok {
		return pdfErr.Type
	}
	return ErrorTypeUnknown
}

// AttachItemIndex returns err as a PDFError that names the failing item.
// A PDFError already in the chain is augmented rather than replaced so the
// original diagnostic survives; foreign errors are wrapped.
func AttachItemIndex(err error, index int) *PDFError {
	if pdfErr, ok := AsPDFError(err); ok {
		return pdfErr.WithItemIndex(index)
	}
	return WrapError(ErrorTypeUnknown, fmt.Sprintf("item %d failed", index), err).WithItemIndex(index)
}
