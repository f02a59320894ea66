package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a sicon error code.
type ErrorCode string

const (
	ErrInvalidRequest        ErrorCode = "INVALID_REQUEST"        // 400
	ErrCancelled             ErrorCode = "CANCELLED"              // 499
	ErrNotFound              ErrorCode = "NOT_FOUND"              // 404
	ErrRender                ErrorCode = "RENDER"                 // 422
	ErrInternal              ErrorCode = "INTERNAL"               // 500
	ErrCapabilityUnavailable ErrorCode = "CAPABILITY_UNAVAILABLE" // 501
	ErrTransport             ErrorCode = "TRANSPORT"              // 502
)

// SiconError represents a structured error with code, status, and details.
type SiconError struct {
	Code    ErrorCode
	Status  int
	Message string
	// Hint is an optional remediation shown to the user below the message.
	Hint    string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *SiconError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *SiconError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SiconError {
	return &SiconError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a query that resolves to no icon.
func NewNotFound(query string) *SiconError {
	return &SiconError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("no icon matches %q", query),
		Details: map[string]any{"query": query},
	}
}

// NewIconNotFound creates a 404 error for a slug the icon CDN does not know.
func NewIconNotFound(slug string) *SiconError {
	return &SiconError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("icon %q not found", slug),
		Details: map[string]any{"slug": slug},
	}
}

// NewTransport creates a 502 error for network-level failures.
func NewTransport(url string, err error) *SiconError {
	msg := fmt.Sprintf("request to %s failed", url)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &SiconError{
		Code:    ErrTransport,
		Status:  502,
		Message: msg,
		Details: map[string]any{"url": url},
		Err:     err,
	}
}

// NewHTTPStatus creates a 502 error for a non-404 HTTP error status.
func NewHTTPStatus(url string, status int) *SiconError {
	return &SiconError{
		Code:    ErrTransport,
		Status:  502,
		Message: fmt.Sprintf("request to %s returned HTTP %d", url, status),
		Details: map[string]any{"url": url, "http_status": status},
	}
}

// NewCapabilityUnavailable creates a 501 error for an output format the
// current environment cannot produce.
func NewCapabilityUnavailable(format, hint string) *SiconError {
	return &SiconError{
		Code:    ErrCapabilityUnavailable,
		Status:  501,
		Message: fmt.Sprintf("%s output is not available in this environment", format),
		Hint:    hint,
		Details: map[string]any{"format": format},
	}
}

// NewRender creates a 422 error for a failed rasterize, encode or package step.
func NewRender(stage string, err error) *SiconError {
	msg := stage + " failed"
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &SiconError{
		Code:    ErrRender,
		Status:  422,
		Message: msg,
		Details: map[string]any{"stage": stage},
		Err:     err,
	}
}

// NewCancelled creates a 499 error for an operation stopped by its context.
func NewCancelled(operation string) *SiconError {
	return &SiconError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SiconError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SiconError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if an error is (or wraps) a SiconError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SiconError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// As returns the SiconError in err's chain, if any.
func As(err error) (*SiconError, bool) {
	var sErr *SiconError
	if stderrors.As(err, &sErr) {
		return sErr, true
	}
	return nil, false
}
