// Package scanner splits source text of the scripting dialect into tokens.
// It tracks line terminators between tokens for automatic semicolon
// insertion and rejects identifiers in the namespace reserved for compiler
// temporaries.
package scanner

import (
	"fmt"
	gotoken "go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	mscanner "modernc.org/scanner"
	"modernc.org/token"
)

// ReservedPrefix starts every compiler-generated identifier. Source text may
// not use it.
const ReservedPrefix = "$$$"

// Mode adjusts what the scanner accepts.
type Mode uint

const (
	// Compiled accepts identifiers carrying the reserved prefix, as found in
	// compiler output.
	Compiled Mode = 1 << iota
)

// CodeScanner iterates over source text producing tokens. Comments and
// whitespace are skipped; a line terminator inside either still marks the
// following token with NewlineBefore.
//
// Lexical errors are mscanner.ErrWithPosition values positioned in file.
type CodeScanner struct {
	src     string
	file    *token.File
	pos     int
	newline bool
	mode    Mode
}

// New creates a CodeScanner for the given source text.
func New(src string) *CodeScanner {
	return NewFile(nil, src, 0)
}

// NewMode creates a CodeScanner with the given mode.
func NewMode(src string, mode Mode) *CodeScanner {
	return NewFile(nil, src, mode)
}

// NewFile creates a CodeScanner whose errors are positioned in file. A nil
// file gets an unnamed one covering src.
func NewFile(file *token.File, src string, mode Mode) *CodeScanner {
	if file == nil {
		file = token.NewFile("", len(src))
		file.SetLinesForContent([]byte(src))
	}
	return &CodeScanner{src: src, file: file, mode: mode}
}

// Scan tokenizes src completely. The returned slice always ends with an EOF
// token.
func Scan(src string) ([]Token, error) {
	return ScanFile(nil, src, 0)
}

// ScanMode is Scan with a Mode.
func ScanMode(src string, mode Mode) ([]Token, error) {
	return ScanFile(nil, src, mode)
}

// ScanFile is ScanMode with errors positioned in file.
func ScanFile(file *token.File, src string, mode Mode) ([]Token, error) {
	s := NewFile(file, src, mode)
	var toks []Token
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

func (s *CodeScanner) errAt(offset int, format string, args ...any) error {
	pos := s.file.PositionFor(s.file.Pos(offset), true)
	return mscanner.ErrWithPosition{Pos: gotoken.Position(pos), Err: fmt.Errorf(format, args...)}
}

// Pos returns the current byte offset.
func (s *CodeScanner) Pos() int { return s.pos }

// LookingAt checks if src[pos:] starts with the given prefix.
func (s *CodeScanner) LookingAt(prefix string) bool {
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

// Next returns the next token.
func (s *CodeScanner) Next() (Token, error) {
	s.newline = false
	if err := s.skipSpace(); err != nil {
		return Token{}, err
	}
	start := s.pos
	tok := Token{Offset: start, NewlineBefore: s.newline}
	if s.pos >= len(s.src) {
		tok.Kind = EOF
		return tok, nil
	}

	ch := s.src[s.pos]
	switch {
	case ch == '"' || ch == '\'':
		val, err := s.scanString(ch)
		if err != nil {
			return Token{}, err
		}
		tok.Kind, tok.Text, tok.Value = String, s.src[start:s.pos], val
		return tok, nil
	case isDigit(ch) || (ch == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1])):
		if err := s.scanNumber(); err != nil {
			return Token{}, err
		}
		tok.Kind, tok.Text = Number, s.src[start:s.pos]
		return tok, nil
	case ch == '`':
		return Token{}, s.errAt(start, "template literals are not supported")
	}

	if r, _ := utf8.DecodeRuneInString(s.src[s.pos:]); isIdentStart(r) {
		name := s.scanIdent()
		if s.mode&Compiled == 0 && strings.HasPrefix(name, ReservedPrefix) {
			return Token{}, s.errAt(start, "identifier %q uses the reserved prefix %q", name, ReservedPrefix)
		}
		tok.Kind, tok.Text = Ident, name
		if IsKeyword(name) {
			tok.Kind = Keyword
		}
		return tok, nil
	}

	for _, p := range punctuators {
		if s.LookingAt(p) {
			s.pos += len(p)
			tok.Kind, tok.Text = Punct, p
			return tok, nil
		}
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return Token{}, s.errAt(start, "unexpected character %q", r)
}

func (s *CodeScanner) skipSpace() error {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case ch == '\n' || ch == '\r':
			s.newline = true
			s.pos++
		case ch == ' ' || ch == '\t' || ch == '\v' || ch == '\f':
			s.pos++
		case s.LookingAt("//"):
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		case s.LookingAt("/*"):
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				return s.errAt(s.pos, "unterminated block comment")
			}
			body := s.src[s.pos+2 : s.pos+2+end]
			if strings.ContainsAny(body, "\n\r") {
				s.newline = true
			}
			s.pos += end + 4
		default:
			r, size := utf8.DecodeRuneInString(s.src[s.pos:])
			switch {
			case r == '\u2028' || r == '\u2029':
				s.newline = true
			case r == '\u00a0' || r == '\ufeff' || unicode.Is(unicode.Zs, r):
			default:
				return nil
			}
			s.pos += size
		}
	}
	return nil
}

func (s *CodeScanner) scanIdent() string {
	start := s.pos
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !isIdentPart(r) {
			break
		}
		s.pos += size
	}
	return s.src[start:s.pos]
}

func (s *CodeScanner) scanNumber() error {
	start := s.pos
	if s.LookingAt("0x") || s.LookingAt("0X") {
		s.pos += 2
		for s.pos < len(s.src) && isHex(s.src[s.pos]) {
			s.pos++
		}
		if s.pos == start+2 {
			return s.errAt(start, "malformed hexadecimal literal")
		}
	} else {
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
		if s.pos < len(s.src) && s.src[s.pos] == '.' {
			s.pos++
			for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
				s.pos++
			}
		}
		if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
			s.pos++
			if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
				s.pos++
			}
			digits := s.pos
			for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
				s.pos++
			}
			if s.pos == digits {
				return s.errAt(start, "malformed exponent")
			}
		}
	}
	if s.pos < len(s.src) {
		if r, _ := utf8.DecodeRuneInString(s.src[s.pos:]); isIdentStart(r) {
			return s.errAt(s.pos, "identifier starts immediately after numeric literal")
		}
	}
	return nil
}

func (s *CodeScanner) scanString(quote byte) (string, error) {
	start := s.pos
	s.pos++
	var b strings.Builder
	for {
		if s.pos >= len(s.src) {
			return "", s.errAt(start, "unterminated string literal")
		}
		ch := s.src[s.pos]
		switch ch {
		case quote:
			s.pos++
			return b.String(), nil
		case '\n', '\r':
			return "", s.errAt(start, "unterminated string literal")
		case '\\':
			s.pos++
			if err := s.scanEscape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(ch)
			s.pos++
		}
	}
}

func (s *CodeScanner) scanEscape(b *strings.Builder) error {
	if s.pos >= len(s.src) {
		return s.errAt(s.pos, "unterminated escape sequence")
	}
	ch := s.src[s.pos]
	s.pos++
	switch ch {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case '\r':
		// Line continuation.
		if s.pos < len(s.src) && s.src[s.pos] == '\n' {
			s.pos++
		}
	case '\n':
	case 'x':
		return s.scanHexEscape(b, 2)
	case 'u':
		return s.scanHexEscape(b, 4)
	default:
		s.pos--
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		b.WriteRune(r)
		s.pos += size
	}
	return nil
}

func (s *CodeScanner) scanHexEscape(b *strings.Builder, n int) error {
	if s.pos+n > len(s.src) {
		return s.errAt(s.pos, "malformed escape sequence")
	}
	v, err := strconv.ParseUint(s.src[s.pos:s.pos+n], 16, 32)
	if err != nil {
		return s.errAt(s.pos, "malformed escape sequence")
	}
	s.pos += n
	b.WriteRune(rune(v))
	return nil
}

// NumberValue parses the raw spelling of a Number token.
func NumberValue(raw string) (float64, error) {
	if len(raw) > 2 && raw[0] == '0' && (raw[1] == 'x' || raw[1] == 'X') {
		v, err := strconv.ParseUint(raw[2:], 16, 64)
		return float64(v), err
	}
	return strconv.ParseFloat(raw, 64)
}

// IsIdentifier reports whether name is a valid, non-reserved identifier.
func IsIdentifier(name string) bool {
	if name == "" || IsKeyword(name) {
		return false
	}
	for i, r := range name {
		if i == 0 && !isIdentStart(r) || i > 0 && !isIdentPart(r) {
			return false
		}
	}
	return true
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHex(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Pc, r)
}
