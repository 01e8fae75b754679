package extraction

import "fmt"

// Reason classifies why extraction failed.
type Reason string

// Extraction failure reasons.
const (
	ReasonTooLarge    Reason = "too_large"
	ReasonEmpty       Reason = "empty"
	ReasonUnsupported Reason = "unsupported"
	ReasonLegacyDoc   Reason = "legacy_doc"
	ReasonCorrupt     Reason = "corrupt"
	ReasonNoText      Reason = "no_text"
)

// Error is returned for every extraction failure. Filename is the base
// name of the upload and never a path. Message is safe to show to users;
// Cause carries parser detail for the log.
type Error struct {
	Reason   Reason
	Filename string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error (%s, %q): %s: %v", e.Reason, e.Filename, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error (%s, %q): %s", e.Reason, e.Filename, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsInputProblem reports whether the failure is due to what was uploaded
// (size, type, emptiness) rather than to a document that could not be read.
func (e *Error) IsInputProblem() bool {
	switch e.Reason {
	case ReasonTooLarge, ReasonEmpty, ReasonUnsupported, ReasonLegacyDoc:
		return true
	default:
		return false
	}
}
