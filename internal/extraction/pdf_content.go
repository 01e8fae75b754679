package extraction

import (
	"strconv"
	"strings"
)

// wordGap is the TJ displacement, in thousandths of a text unit, past which
// two strings are taken to be separate words.
const wordGap = 200

type tokenKind int

const (
	tokenOperator tokenKind = iota
	tokenString
	tokenNumber
	tokenName
	tokenArray
	tokenOther
)

// contentToken is one lexical element of a page content stream.
type contentToken struct {
	kind  tokenKind
	value []byte // operator text, name, or decoded string bytes
	num   float64
	items []contentToken
}

// textFromContentStream runs the text-showing operators of a content stream
// and returns the shown text. Operands are collected until the operator that
// consumes them, so the layout of the stream (one operator per line, a whole
// text object on one line) does not matter. Positioning operators become
// spaces or line breaks.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	lex := &contentLexer{data: data}
	var operands []contentToken

	for {
		tok, ok := lex.next()
		if !ok {
			break
		}
		if tok.kind != tokenOperator {
			operands = append(operands, tok)
			continue
		}

		switch string(tok.value) {
		case "Tj", "TJ":
			writeShown(&sb, operands)
		case "'", `"`:
			separate(&sb, '\n')
			writeShown(&sb, operands)
		case "Td", "TD":
			separate(&sb, ' ')
		case "T*", "ET":
			separate(&sb, '\n')
		case "ID":
			lex.skipInlineImage()
		}
		operands = operands[:0]
	}

	return sb.String()
}

// writeShown writes the string or array operand of a text-showing operator.
func writeShown(sb *strings.Builder, operands []contentToken) {
	if len(operands) == 0 {
		return
	}
	tok := operands[len(operands)-1]
	switch tok.kind {
	case tokenString:
		sb.WriteString(pdfText(tok.value))
	case tokenArray:
		for _, item := range tok.items {
			switch item.kind {
			case tokenString:
				sb.WriteString(pdfText(item.value))
			case tokenNumber:
				if item.num <= -wordGap {
					separate(sb, ' ')
				}
			}
		}
	}
}

// separate appends sep unless the text is empty or already ends in a
// separator.
func separate(sb *strings.Builder, sep byte) {
	s := sb.String()
	if s == "" {
		return
	}
	if last := s[len(s)-1]; last == '\n' || last == sep {
		return
	}
	sb.WriteByte(sep)
}

type contentLexer struct {
	data []byte
	pos  int
}

// next returns the next token, or false at the end of the stream. A closing
// bracket comes back as tokenOther with value "]".
func (l *contentLexer) next() (contentToken, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return contentToken{}, false
	}

	switch l.data[l.pos] {
	case '(':
		return contentToken{kind: tokenString, value: l.literalString()}, true
	case '<':
		if l.at(l.pos+1) == '<' {
			l.pos += 2
			return contentToken{kind: tokenOther}, true
		}
		return contentToken{kind: tokenString, value: l.hexString()}, true
	case '>':
		l.pos++
		if l.at(l.pos) == '>' {
			l.pos++
		}
		return contentToken{kind: tokenOther}, true
	case '[':
		l.pos++
		return contentToken{kind: tokenArray, items: l.array()}, true
	case ']':
		l.pos++
		return contentToken{kind: tokenOther, value: []byte("]")}, true
	case '/':
		l.pos++
		return contentToken{kind: tokenName, value: l.regular()}, true
	case '{', '}', ')':
		l.pos++
		return contentToken{kind: tokenOther}, true
	}

	word := l.regular()
	if n, err := strconv.ParseFloat(string(word), 64); err == nil {
		return contentToken{kind: tokenNumber, num: n}, true
	}
	return contentToken{kind: tokenOperator, value: word}, true
}

func (l *contentLexer) at(i int) byte {
	if i < len(l.data) {
		return l.data[i]
	}
	return 0
}

func (l *contentLexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isPDFSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

// regular reads a run of regular characters.
func (l *contentLexer) regular() []byte {
	start := l.pos
	for l.pos < len(l.data) && !isPDFSpace(l.data[l.pos]) && !isPDFDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return l.data[start:l.pos]
}

func (l *contentLexer) array() []contentToken {
	var items []contentToken
	for {
		tok, ok := l.next()
		if !ok || (tok.kind == tokenOther && string(tok.value) == "]") {
			return items
		}
		items = append(items, tok)
	}
}

// literalString reads a parenthesized string. Balanced parentheses nest and
// a backslash escapes the next byte.
func (l *contentLexer) literalString() []byte {
	l.pos++
	start := l.pos
	depth := 1
	for l.pos < len(l.data) {
		switch l.data[l.pos] {
		case '\\':
			l.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				raw := l.data[start:l.pos]
				l.pos++
				return unescapePDFString(raw)
			}
		}
		l.pos++
	}
	return unescapePDFString(l.data[start:])
}

// hexString reads <...>. Whitespace is ignored and an odd final digit is
// padded with zero.
func (l *contentLexer) hexString() []byte {
	l.pos++
	var out []byte
	var hi byte
	half := false
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out
}

// skipInlineImage jumps over the binary data between ID and EI.
func (l *contentLexer) skipInlineImage() {
	for i := l.pos + 1; i+1 < len(l.data); i++ {
		if l.data[i] == 'E' && l.data[i+1] == 'I' && isPDFSpace(l.data[i-1]) &&
			(i+2 == len(l.data) || isPDFSpace(l.data[i+2])) {
			l.pos = i + 2
			return
		}
	}
	l.pos = len(l.data)
}

func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// unescapePDFString resolves the escape sequences of a literal string.
func unescapePDFString(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out = append(out, raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b', 'f':
		case '\r':
			// line continuation
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		case '\n':
		default:
			if raw[i] < '0' || raw[i] > '7' {
				out = append(out, raw[i])
				continue
			}
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			out = append(out, byte(val))
		}
	}
	return out
}

// pdfText reads single-byte string data as Latin-1 so accented characters
// in standard-font PDFs survive. NUL bytes are dropped.
func pdfText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c == 0 {
			continue
		}
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
