package domain

import (
	"errors"
	"fmt"
)

// Common domain errors returned by the pipeline and record loading.
var (
	// ErrMissingField indicates a required field is absent or empty.
	ErrMissingField = errors.New("missing required field")

	// ErrMalformedValue indicates a field could not be parsed.
	ErrMalformedValue = errors.New("malformed value")

	// ErrZeroDivisor indicates a weighting divisor is zero or missing.
	ErrZeroDivisor = errors.New("zero or missing weighting divisor")

	// ErrUnknownWeighting indicates an unrecognized weighting method.
	ErrUnknownWeighting = errors.New("unknown weighting method")

	// ErrNegativeMinParticipations indicates a negative participation
	// threshold in configuration.
	ErrNegativeMinParticipations = errors.New("min_participations must not be negative")
)

// DataError reports a defect in the input record sets with enough
// context to identify the offending record. The pipeline is pure and
// deterministic, so a DataError is never retried; it propagates to the
// caller.
type DataError struct {
	// Set names the record set the error originates from,
	// e.g. "votes" or "contestants".
	Set string

	// Row is the 1-based data row within the set, 0 when unknown.
	Row int

	// Record identifies the offending record, e.g. "2021/final FR->DE".
	Record string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for DataError.
func (e *DataError) Error() string {
	switch {
	case e.Record != "" && e.Row > 0:
		return fmt.Sprintf("data error in %s row %d (%s): %v", e.Set, e.Row, e.Record, e.Err)
	case e.Record != "":
		return fmt.Sprintf("data error in %s (%s): %v", e.Set, e.Record, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("data error in %s row %d: %v", e.Set, e.Row, e.Err)
	default:
		return fmt.Sprintf("data error in %s: %v", e.Set, e.Err)
	}
}

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (e *DataError) Unwrap() error { return e.Err }

// NewDataError creates a DataError for the given record set and record
// identity.
func NewDataError(set string, row int, record string, err error) *DataError {
	return &DataError{Set: set, Row: row, Record: record, Err: err}
}

// ConfigError reports invalid pipeline configuration.
type ConfigError struct {
	// Field is the configuration field that failed validation.
	Field string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %v", e.Err)
	}
	return fmt.Sprintf("config error: field %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError for the given field.
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Err: err}
}
