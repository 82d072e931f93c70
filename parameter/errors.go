package parameter

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty        = errors.New("empty string")
	ErrTooShort     = errors.New("string too short")
	ErrTooLong      = errors.New("string too long")
	ErrNotBase64URL = errors.New("not base64url encoded")
	ErrUnrecognized = errors.New("unrecognized value")
	ErrMissingScope = errors.New("missing required scope")
	ErrInvalidURI   = errors.New("invalid URI")
)

// FieldError reports which inbound field failed validation and why.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("error while parsing field `%s`: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(field string, err error) error {
	if err == nil {
		return nil
	}

	return &FieldError{Field: field, Err: err}
}
