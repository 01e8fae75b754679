// Package types provides type definitions for the data exchanged between the letter pipeline stages.
package types

// Mode is the kind of transformation requested for a complaint letter.
type Mode string

const (
	// ModeRewrite restyles an existing complaint letter.
	ModeRewrite Mode = "rewrite"
	// ModeResponse drafts a reply to a complaint letter.
	ModeResponse Mode = "response"
)

// Modes returns every supported mode in a stable order.
func Modes() []Mode {
	return []Mode{ModeRewrite, ModeResponse}
}

// ParseMode converts a raw string into a Mode. The match is exact.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeRewrite:
		return ModeRewrite, true
	case ModeResponse:
		return ModeResponse, true
	default:
		return "", false
	}
}

func (m Mode) String() string {
	return string(m)
}

// LetterRequest is a validated request to transform one letter.
// It is created per call and never mutated afterwards.
type LetterRequest struct {
	Text              string
	Mode              Mode
	AdditionalContext string // empty when the caller supplied none
}

// PromptPair holds the two instructions sent to the language model.
type PromptPair struct {
	SystemInstruction string
	UserInstruction   string
}
