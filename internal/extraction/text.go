package extraction

import (
	"regexp"
	"strings"
)

var (
	inlineSpaceRe = regexp.MustCompile(`[ \t\f\v]+`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
	invisibleRepl = strings.NewReplacer(
		"\u00a0", " ", // no-break space
		"\u200b", "",  // zero-width space
		"\ufeff", "",  // byte order mark
		"\u00ad", "",  // soft hyphen
	)
)

// CleanText normalizes extracted text while keeping its paragraph
// structure: line endings become \n, runs of spaces collapse, bullets keep
// their marker, and at most one blank line separates paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = invisibleRepl.Replace(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = blankLinesRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses internal whitespace.
func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	if isBulletLine(trimmed) {
		marker, rest, _ := strings.Cut(trimmed, " ")
		return marker + " " + inlineSpaceRe.ReplaceAllString(strings.TrimSpace(rest), " ")
	}
	return inlineSpaceRe.ReplaceAllString(trimmed, " ")
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "• ") || strings.HasPrefix(line, "· ")
}
