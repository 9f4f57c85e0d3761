package store

import (
	"errors"
	"fmt"
)

// ValidationError rejects a record that cannot be keyed, such as a market
// snapshot without a capture time.
type ValidationError struct {
	Collection string
	Field      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("store: %s record missing required field %q", e.Collection, e.Field)
}

// DecodeError reports a stored document that lacks a required field or holds
// a value of the wrong shape.
type DecodeError struct {
	Collection string
	Key        string
	Field      string
	Reason     string
}

func (e *DecodeError) Error() string {
	key := e.Key
	if key == "" {
		key = "?"
	}
	return fmt.Sprintf("store: decode %s/%s: field %q %s", e.Collection, key, e.Field, e.Reason)
}

// AsValidationError attempts to unwrap an error into a ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

// AsDecodeError attempts to unwrap an error into a DecodeError.
func AsDecodeError(err error) (*DecodeError, bool) {
	var dErr *DecodeError
	if errors.As(err, &dErr) {
		return dErr, true
	}
	return nil, false
}
