package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldNotFound signals an attribute name missing from the field catalog.
	ErrFieldNotFound = errors.New("field not found")
	// ErrInvalidCondition signals a filter condition that cannot be serialized unambiguously.
	ErrInvalidCondition = errors.New("invalid filter condition")
	// ErrFetchFailed signals a non-success response from the catalog API.
	ErrFetchFailed = errors.New("catalog fetch failed")
	// ErrDecodeFailed signals a malformed catalog response body.
	ErrDecodeFailed = errors.New("catalog response decode failed")
	// ErrInterpreterError signals a language model failure during intent interpretation.
	ErrInterpreterError = errors.New("interpreter error")
	// ErrSummarizerError signals a language model failure during chunk summarization.
	ErrSummarizerError = errors.New("summarizer error")
)

// FetchError wraps ErrFetchFailed with the upstream status and raw body for diagnosis.
type FetchError struct {
	Status int
	Body   []byte
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrFetchFailed.Error(), e.Status, truncate(e.Body))
}

func (e *FetchError) Unwrap() error { return ErrFetchFailed }

// NewFetchError creates a fetch error from an upstream response.
func NewFetchError(status int, body []byte) error {
	return &FetchError{Status: status, Body: body}
}

// DecodeError wraps ErrDecodeFailed with the raw body that failed to parse.
type DecodeError struct {
	Body  []byte
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v: %s", ErrDecodeFailed.Error(), e.Cause, truncate(e.Body))
}

func (e *DecodeError) Unwrap() error { return ErrDecodeFailed }

// NewDecodeError creates a decode error carrying the raw body.
func NewDecodeError(body []byte, cause error) error {
	return &DecodeError{Body: body, Cause: cause}
}

const maxErrBody = 256

func truncate(body []byte) string {
	if len(body) > maxErrBody {
		return string(body[:maxErrBody]) + "..."
	}
	return string(body)
}
