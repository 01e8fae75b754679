package prompts

import (
	"strings"

	"github.com/jonathan/klachtbrief/internal/types"
)

// Builder renders letter requests into prompt pairs. It holds no mutable
// state and is safe for concurrent use.
type Builder struct {
	set *Set
}

// NewBuilder returns a Builder for set.
func NewBuilder(set *Set) *Builder {
	return &Builder{set: set}
}

// Set returns the prompt set the builder renders from.
func (b *Builder) Set() *Set {
	return b.set
}

// Build renders req. The system instruction is the same for every mode.
// The user instruction always carries exactly one of the context line or
// the no-context placeholder, followed by the letter text verbatim.
func (b *Builder) Build(req types.LetterRequest) types.PromptPair {
	contextLine := b.set.Context.Absent
	if req.AdditionalContext != "" {
		contextLine = Format(b.set.Context.Present, map[string]string{"Context": req.AdditionalContext})
	}

	instruction := Format(b.set.Template(req.Mode), map[string]string{
		"Context":       contextLine,
		"Closing":       b.set.Closing,
		"BannedPhrases": bulletList(b.set.BannedPhrases),
	})

	return types.PromptPair{
		SystemInstruction: b.set.System,
		UserInstruction:   instruction + req.Text,
	}
}

func bulletList(items []string) string {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		sb.WriteString(item)
	}
	return sb.String()
}
