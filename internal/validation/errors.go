// Package validation guards the pipeline entry: it checks the shape and
// limits of an incoming letter request before any downstream work occurs.
package validation

import "fmt"

// Error reports the first rule a request violated. Message is a Dutch
// sentence that can be shown to the user as-is.
type Error struct {
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
