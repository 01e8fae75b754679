package extraction

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxDocumentXML bounds the decompressed size of word/document.xml.
const maxDocumentXML = 64 << 20

// extractDocx reads word/document.xml from the DOCX archive and returns its
// paragraphs, one per line.
func extractDocx(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}
	if docFile.UncompressedSize64 > maxDocumentXML {
		return "", fmt.Errorf("word/document.xml too large (%d bytes)", docFile.UncompressedSize64)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return paragraphsFromXML(io.LimitReader(rc, maxDocumentXML))
}

// paragraphsFromXML collects the text runs (w:t) of a WordprocessingML body.
// Tabs and breaks inside runs are kept; everything else is markup.
func paragraphsFromXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		out       strings.Builder
		paragraph strings.Builder
		inText    bool
		sawBody   bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				sawBody = true
			case "p":
				paragraph.Reset()
			case "t":
				inText = true
			case "tab":
				paragraph.WriteByte('\t')
			case "br", "cr":
				paragraph.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteString(paragraph.String())
				out.WriteByte('\n')
				paragraph.Reset()
			}
		}
	}

	if !sawBody {
		return "", fmt.Errorf("document.xml has no body")
	}
	return out.String(), nil
}
