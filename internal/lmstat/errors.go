package lmstat

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInput is returned when the stream ends before any "Users of " line.
	ErrNoInput = errors.New("lmstat: no license information provided")

	// ErrMalformedLicenseRecord covers toolbox header lines that do not follow the
	// license header grammar.
	ErrMalformedLicenseRecord = errors.New("lmstat: malformed license record")

	// ErrLicenseInfoUnavailable is returned when a header line has the wrong
	// number of tokens. It wraps ErrMalformedLicenseRecord.
	ErrLicenseInfoUnavailable = fmt.Errorf("%w: user license information not available", ErrMalformedLicenseRecord)

	// ErrMalformedUserRecord is returned for user lines with too few tokens.
	ErrMalformedUserRecord = errors.New("lmstat: malformed user record")

	// ErrMalformedDate is wrapped by FieldError for the month and day fields.
	ErrMalformedDate = errors.New("lmstat: malformed date")

	// ErrMalformedTime is wrapped by FieldError for the hour and minute fields.
	ErrMalformedTime = errors.New("lmstat: malformed time")

	// ErrTruncatedInput is returned when the stream ends inside a block that
	// still expects license type lines.
	ErrTruncatedInput = errors.New("lmstat: input ended inside a license block")
)

// FieldError reports a single field that could not be decoded.
type FieldError struct {
	Field string // month, day, hour, minute, issued or used
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("cannot decode %s from %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Diagnostic returns the one-line message shown to the user for the field.
func (e *FieldError) Diagnostic() string {
	switch e.Field {
	case fieldIssued, fieldUsed:
		return fmt.Sprintf("Cannot determine number of %s licences.", e.Field)
	default:
		return fmt.Sprintf("Cannot determine %s of user start.", e.Field)
	}
}
