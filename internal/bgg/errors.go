package bgg

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates a query was rejected before any request was sent
var ErrInvalidInput = errors.New("bgg: invalid input")

// ErrParseFailed matches every ParseError via errors.Is
var ErrParseFailed = errors.New("bgg: failed to parse response")

// RetryExhaustedError is returned when every attempt in the retry budget
// ended with a retryable outcome. LastStatusCode is 0 when no attempt
// received an HTTP response.
type RetryExhaustedError struct {
	Attempts       int
	LastStatusCode int
}

func (e *RetryExhaustedError) Error() string {
	if e.LastStatusCode == 0 {
		return fmt.Sprintf("bgg: retries exhausted after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("bgg: retries exhausted after %d attempts (last status %d)", e.Attempts, e.LastStatusCode)
}

// UnexpectedStatusError represents a status code that is never retried
type UnexpectedStatusError struct {
	StatusCode int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("bgg: unexpected status %d", e.StatusCode)
}

// ParseError wraps a failure to turn a successful response body into records
type ParseError struct {
	Document string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bgg: parse %s document: %v", e.Document, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailed
}
