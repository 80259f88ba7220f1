package scanner

import "fmt"

// Kind classifies a token.
type Kind uint8

const (
	EOF Kind = iota
	Ident
	Keyword
	Number
	String
	Punct
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case Keyword:
		return "keyword"
	case Number:
		return "number"
	case String:
		return "string"
	case Punct:
		return "punctuator"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Token is one lexeme of the source.
type Token struct {
	Kind Kind
	// Text is the raw source spelling. For strings it includes the quotes.
	Text string
	// Value is the decoded string contents for String tokens.
	Value string
	// Offset is the byte offset of the first character.
	Offset int
	// NewlineBefore is set when a line terminator separates this token from
	// the previous one. The parser uses it for automatic semicolon insertion.
	NewlineBefore bool
}

// Is reports whether t is the punctuator or keyword text.
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Keyword) && t.Text == text
}

func (t Token) String() string {
	if t.Kind == EOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

var keywords = map[string]bool{
	"break":      true,
	"case":       true,
	"catch":      true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"debugger":   true,
	"default":    true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"export":     true,
	"extends":    true,
	"false":      true,
	"finally":    true,
	"for":        true,
	"function":   true,
	"if":         true,
	"import":     true,
	"in":         true,
	"instanceof": true,
	"let":        true,
	"new":        true,
	"null":       true,
	"return":     true,
	"super":      true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"typeof":     true,
	"var":        true,
	"void":       true,
	"while":      true,
	"with":       true,
}

// IsKeyword reports whether name is a reserved word.
func IsKeyword(name string) bool { return keywords[name] }

// punctuators is ordered longest first so the scanner takes the longest match.
var punctuators = []string{
	">>>=",
	"...", "===", "!==", "<<=", ">>=", ">>>",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"{", "}", "(", ")", "[", "]", ";", ",", "<", ">",
	"+", "-", "*", "/", "%", "&", "|", "^", "!", "~", "?", ":", "=", ".",
}
