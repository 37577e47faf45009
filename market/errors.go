package market

import "fmt"

// MissingFieldError reports a named field the input rows do not carry.
// It is fatal: a run aborts rather than producing partial output.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// InvalidValueError reports a value that could not be used as a price or
// signal. Row is the zero-based index of the offending row.
type InvalidValueError struct {
	Field string
	Row   int
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("row %d: invalid %s value %q", e.Row, e.Field, e.Value)
}
