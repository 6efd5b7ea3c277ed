package models

import "fmt"

// Reason classifies why a single field could not be produced.
type Reason string

const (
	ReasonMissing    Reason = "missing"
	ReasonMalformed  Reason = "malformed"
	ReasonConversion Reason = "conversion"
)

// FieldError records a field that was left empty. It never aborts the
// listing it belongs to.
type FieldError struct {
	Field  string
	Reason Reason
	Err    error
}

func (e FieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, e.Err)
}

func (e FieldError) Unwrap() error { return e.Err }
