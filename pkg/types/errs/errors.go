package errs

import (
	"errors"
	"fmt"
	"strings"
)

var ErrRecordNotFound = errors.New("record not found")

// Kind classifies a single-message failure for logging, metrics and dead-letter headers.
type Kind string

const (
	KindParse      Kind = "parse"
	KindValidation Kind = "validation"
	KindStore      Kind = "store"
	KindSink       Kind = "sink"
	KindUnknown    Kind = "unknown"
)

// ParseError - payload is not a structured object at all.
type ParseError struct {
	Raw []byte
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError - payload is a JSON object but required fields are absent or null.
type ValidationError struct {
	Raw     []byte
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return "validation error"
	}

	return "validation error: missing required fields: " + strings.Join(e.Missing, ", ")
}

// StoreError - persistence fault, retried up to the policy budget.
type StoreError struct {
	Attempts int
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// SinkError - the dead-letter channel itself is unreachable.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("dead-letter sink error: %v", e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

func KindOf(err error) Kind {
	var (
		parseErr      *ParseError
		validationErr *ValidationError
		storeErr      *StoreError
		sinkErr       *SinkError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &storeErr):
		return KindStore
	case errors.As(err, &sinkErr):
		return KindSink
	default:
		return KindUnknown
	}
}

// IsPermanent reports whether retrying the same payload can never succeed.
func IsPermanent(err error) bool {
	k := KindOf(err)

	return k == KindParse || k == KindValidation
}
