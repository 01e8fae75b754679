// Package extraction converts uploaded PDF and DOCX documents to plain text.
// Everything happens in memory; nothing is written to disk.
package extraction

import (
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/klachtbrief/internal/config"
)

// User-facing messages per failure reason.
const (
	MsgTooLarge    = "Bestand is te groot. Maximaal %s toegestaan."
	MsgEmpty       = "Het bestand is leeg."
	MsgUnsupported = "Alleen PDF- en DOCX-bestanden zijn toegestaan."
	MsgLegacyDoc   = "Oude .doc-bestanden worden niet ondersteund. Converteer het bestand naar DOCX en probeer het opnieuw."
	MsgCorrupt     = "Het bestand kon niet worden gelezen. Controleer of het een geldig PDF- of DOCX-bestand is."
	MsgNoText      = "Kon geen tekst uit het bestand halen."
)

const (
	mimePDF = "application/pdf"
	mimeZip = "application/zip"
)

// Extractor turns document bytes into text. It is stateless and safe for
// concurrent use.
type Extractor struct {
	MaxBytes        int64
	LegacyDocPolicy string
}

// New returns an Extractor configured from limits.
func New(limits config.LimitsConfig) *Extractor {
	return &Extractor{
		MaxBytes:        limits.MaxUploadBytes,
		LegacyDocPolicy: limits.LegacyDocPolicy,
	}
}

// Extract returns the cleaned text of data, treating it as the type named
// by filename's extension. Size is checked before anything is parsed.
func (x *Extractor) Extract(data []byte, filename string) (string, error) {
	name := BaseName(filename)

	if x.MaxBytes > 0 && int64(len(data)) > x.MaxBytes {
		return "", x.TooLarge(name)
	}
	if len(data) == 0 {
		return "", &Error{Reason: ReasonEmpty, Filename: name, Message: MsgEmpty}
	}

	detected := mimetype.Detect(data)

	var (
		text string
		err  error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		if !detected.Is(mimePDF) {
			return "", &Error{Reason: ReasonCorrupt, Filename: name, Message: MsgCorrupt,
				Cause: fmt.Errorf("content is %s, not PDF", detected.String())}
		}
		text, err = extractPDF(data)
	case ".docx":
		if !isZip(detected) {
			return "", &Error{Reason: ReasonCorrupt, Filename: name, Message: MsgCorrupt,
				Cause: fmt.Errorf("content is %s, not a DOCX archive", detected.String())}
		}
		text, err = extractDocx(data)
	case ".doc":
		if x.LegacyDocPolicy != config.LegacyDocSniff || !isZip(detected) {
			return "", &Error{Reason: ReasonLegacyDoc, Filename: name, Message: MsgLegacyDoc}
		}
		text, err = extractDocx(data)
	default:
		return "", &Error{Reason: ReasonUnsupported, Filename: name, Message: MsgUnsupported}
	}
	if err != nil {
		return "", &Error{Reason: ReasonCorrupt, Filename: name, Message: MsgCorrupt, Cause: err}
	}

	text = CleanText(text)
	if text == "" {
		return "", &Error{Reason: ReasonNoText, Filename: name, Message: MsgNoText}
	}
	return text, nil
}

// TooLarge returns the error for an upload over the size limit. The HTTP
// layer uses it when it stops reading early.
func (x *Extractor) TooLarge(filename string) *Error {
	return &Error{
		Reason:   ReasonTooLarge,
		Filename: BaseName(filename),
		Message:  fmt.Sprintf(MsgTooLarge, formatBytes(x.MaxBytes)),
	}
}

// BaseName strips any directory part from a client-supplied file name,
// whichever separator the client used.
func BaseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func isZip(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(mimeZip) {
			return true
		}
	}
	return false
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
