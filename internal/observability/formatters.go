// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/klachtbrief/internal/rewriting"
	"github.com/jonathan/klachtbrief/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxLinesToShow is the default number of text lines shown in a box
	maxLinesToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// excerpt returns the first maxLinesToShow non-blank lines of text.
func excerpt(text string) string {
	var lines []string
	total := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		total++
		if len(lines) < maxLinesToShow {
			lines = append(lines, line)
		}
	}
	if total > maxLinesToShow {
		lines = append(lines, fmt.Sprintf("... and %d more lines", total-maxLinesToShow))
	}
	return strings.Join(lines, "\n")
}

// PrintRequest outputs a summary of the letter request.
func (p *Printer) PrintRequest(req types.LetterRequest) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode:     %s\n", req.Mode))
	sb.WriteString(fmt.Sprintf("Length:   %d characters\n", len([]rune(req.Text))))
	if req.AdditionalContext != "" {
		sb.WriteString(fmt.Sprintf("Context:  %s", req.AdditionalContext))
	} else {
		sb.WriteString("Context:  (none)")
	}

	p.printBox("LETTER REQUEST", sb.String())
}

// PrintPrompt outputs the start of both prompt instructions.
func (p *Printer) PrintPrompt(prompt types.PromptPair) {
	var sb strings.Builder
	sb.WriteString("System:\n")
	sb.WriteString(excerpt(prompt.SystemInstruction))
	sb.WriteString("\n\nUser:\n")
	sb.WriteString(excerpt(prompt.UserInstruction))

	p.printBox("PROMPT", sb.String())
}

// PrintExtraction outputs the start of the text extracted from a file.
func (p *Printer) PrintExtraction(filename, text string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", filename))
	sb.WriteString(fmt.Sprintf("Length:   %d characters\n\n", len([]rune(text))))
	sb.WriteString(excerpt(text))

	p.printBox("EXTRACTED TEXT", sb.String())
}

// PrintReview outputs the review of a generated letter.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintReview(result rewriting.StyleChecksResult) {
	if result.OK() && result.Placeholders == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ LETTER PASSED REVIEW")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	if result.HasClosing {
		sb.WriteString("✓closing\n")
	} else {
		sb.WriteString("⚠ closing phrase missing or followed by text\n")
	}
	for _, phrase := range result.BannedPhrases {
		sb.WriteString(fmt.Sprintf("⚠ banned phrase: %s\n", phrase))
	}
	if result.Placeholders > 0 {
		sb.WriteString(fmt.Sprintf("• %d placeholder(s) %s to fill in\n", result.Placeholders, rewriting.Placeholder))
	}

	p.printBox("LETTER REVIEW", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSelfTest outputs the results of running the sample letter through
// both modes.
func (p *Printer) PrintSelfTest(result types.PromptTestResponse) {
	p.printBox("SELF-TEST: "+types.ModeRewrite.String(), excerpt(result.Rewrite))
	p.printBox("SELF-TEST: "+types.ModeResponse.String(), excerpt(result.Response))
}
