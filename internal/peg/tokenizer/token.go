// Package tokenizer implements the two input models a generated parser can
// be built against: a lazy token-stream (built on a Python-flavored lexical
// scan of names, numbers, strings, operators, and layout tokens) and a
// character-stream over a finite text. Both expose the same positional,
// resettable contract described by the generator's runtime support library.
package tokenizer

import "fmt"

// Well-known token type names. These are the terminals the Analyzer accepts
// without requiring a rule or extern declaration (Name
// validation).
const (
	TypeName           = "NAME"
	TypeNumber         = "NUMBER"
	TypeString         = "STRING"
	TypeNewline        = "NEWLINE"
	TypeIndent         = "INDENT"
	TypeDedent         = "DEDENT"
	TypeEndmarker      = "ENDMARKER"
	TypeOp             = "OP"
	TypeTypeComment    = "TYPE_COMMENT"
	TypeFStringStart   = "FSTRING_START"
	TypeFStringMiddle  = "FSTRING_MIDDLE"
	TypeFStringEnd     = "FSTRING_END"
	TypeSoftKeyword    = "SOFT_KEYWORD"
	TypeAsync          = "ASYNC"
	TypeAwait          = "AWAIT"
)

// KnownTerminals is the fixed set of terminal type names the Analyzer
// recognizes without a rule or extern declaration.
var KnownTerminals = map[string]bool{
	TypeName:          true,
	TypeNumber:        true,
	TypeString:        true,
	TypeNewline:       true,
	TypeIndent:        true,
	TypeDedent:        true,
	TypeEndmarker:     true,
	TypeOp:            true,
	TypeTypeComment:   true,
	TypeFStringStart:  true,
	TypeFStringMiddle: true,
	TypeFStringEnd:    true,
	TypeSoftKeyword:   true,
	TypeAsync:         true,
	TypeAwait:         true,
}

// Pos is a (line, column, byte-offset) triple. Lines and columns are
// 1-indexed; offset is 0-indexed.
type Pos struct {
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Less reports whether p occurs strictly before o, ordered by byte offset.
func (p Pos) Less(o Pos) bool {
	return p.Offset < o.Offset
}

// Token is a single lexical unit, carrying both its class and the exact
// source text it was lexed from.
type Token struct {
	Type   string
	Text   string
	Start  Pos
	End    Pos
}

// String renders the token the way a debug trace would.
func (t Token) String() string {
	return fmt.Sprintf("%s %q [%s-%s]", t.Type, t.Text, t.Start, t.End)
}

// isLayout reports whether the token's class is a layout class that
// GetLastNonWhitespaceToken must skip over.
func (t Token) isLayout() bool {
	switch t.Type {
	case TypeNewline, TypeIndent, TypeDedent, TypeEndmarker:
		return true
	}
	return false
}
