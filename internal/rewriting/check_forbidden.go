// Package rewriting reviews generated letters against the house rules of
// the prompt set. Findings are advisory: they are reported, never enforced.
package rewriting

import (
	"strings"
)

// checkForbiddenPhrasesInText checks plain text for forbidden phrases.
// Matching ignores case, runs of whitespace and a phrase's trailing
// punctuation. Each phrase is reported once, in its original form.
func checkForbiddenPhrasesInText(text string, bannedPhrases []string) []string {
	if len(bannedPhrases) == 0 {
		return nil
	}

	normalizedText := normalize(text)

	var foundPhrases []string
	seen := make(map[string]bool)

	for _, phrase := range bannedPhrases {
		normalizedPhrase := strings.TrimRight(normalize(phrase), ".,;:!?… ")
		if normalizedPhrase == "" {
			continue
		}

		if strings.Contains(normalizedText, normalizedPhrase) && !seen[normalizedPhrase] {
			foundPhrases = append(foundPhrases, phrase)
			seen[normalizedPhrase] = true
		}
	}

	return foundPhrases
}

// normalize lowercases s and collapses whitespace to single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
