package rewriting

import (
	"strings"

	"github.com/jonathan/klachtbrief/internal/prompts"
)

// Placeholder marks information the writer has to fill in.
const Placeholder = "[xx]"

// StyleChecksResult holds the results of reviewing one generated letter
type StyleChecksResult struct {
	BannedPhrases []string // banned phrases found in the text
	HasClosing    bool     // text ends with the mandatory closing phrase
	Placeholders  int      // number of [xx] markers left for the user
}

// OK reports whether the letter follows every rule that is checked.
func (r StyleChecksResult) OK() bool {
	return len(r.BannedPhrases) == 0 && r.HasClosing
}

// Reviewer checks generated letters against a prompt set's rules. It is
// safe for concurrent use.
type Reviewer struct {
	banned  []string
	closing string
}

// NewReviewer returns a Reviewer for the banned phrases and closing of set.
func NewReviewer(set *prompts.Set) *Reviewer {
	return &Reviewer{banned: set.BannedPhrases, closing: set.Closing}
}

// Review checks text.
func (rv *Reviewer) Review(text string) StyleChecksResult {
	return StyleChecksResult{
		BannedPhrases: checkForbiddenPhrasesInText(text, rv.banned),
		HasClosing:    checkClosing(text, rv.closing),
		Placeholders:  strings.Count(text, Placeholder),
	}
}

// checkClosing checks that text ends with closing and nothing follows it,
// so no name or signature was added. Case and the final period are not
// significant.
func checkClosing(text, closing string) bool {
	want := strings.TrimRight(normalize(closing), ". ")
	if want == "" {
		return true
	}
	got := strings.TrimRight(normalize(text), ". ")
	return strings.HasSuffix(got, want)
}
