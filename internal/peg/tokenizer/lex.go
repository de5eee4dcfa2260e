package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// opTable lists the multi-character operators recognized before falling back
// to a single punctuation rune. Longest match wins, so entries are tried in
// the order given (longest first within a shared prefix).
var opTable = []string{
	"**=", "//=", ">>=", "<<=", "...", "!=", "<=", ">=", "==", "->",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=", ":=",
	"**", "//", "<<", ">>", "&&", "||",
}

const opPunct = "+-*/%@&|^~<>()[]{},:.;=!?"

// lex tokenizes source into a flat token sequence following a Python-flavored
// scan: NAME, NUMBER, STRING, OP, NEWLINE (logical newlines only, collapsed),
// INDENT/DEDENT (derived from leading whitespace of non-blank, non-comment
// lines), and a trailing ENDMARKER. Blank lines, line continuations, and
// comments are filtered out, never appearing in the result, except that a
// `# type:` comment becomes a TYPE_COMMENT token.
func lex(src string) []Token {
	var toks []Token
	indentStack := []int{0}
	line, col, offset := 1, 1, 0
	atLineStart := true
	parenDepth := 0

	advance := func(n int) string {
		s := src[offset : offset+n]
		for _, r := range s {
			if r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		offset += n
		return s
	}

	pos := func() Pos { return Pos{Line: line, Column: col, Offset: offset} }

	for offset < len(src) {
		if atLineStart && parenDepth == 0 {
			lineStart := offset
			indent := 0
			for offset < len(src) && (src[offset] == ' ' || src[offset] == '\t') {
				if src[offset] == '\t' {
					indent += 8 - indent%8
				} else {
					indent++
				}
				advance(1)
			}
			// blank line or comment-only line: no INDENT/DEDENT/NEWLINE.
			if offset >= len(src) || src[offset] == '\n' || src[offset] == '#' {
				if offset < len(src) && src[offset] == '#' {
					for offset < len(src) && src[offset] != '\n' {
						advance(1)
					}
				}
				if offset < len(src) && src[offset] == '\n' {
					advance(1)
				}
				_ = lineStart
				continue
			}
			if src[offset] == '\r' {
				advance(1)
				if offset < len(src) && src[offset] == '\n' {
					advance(1)
				}
				continue
			}

			top := indentStack[len(indentStack)-1]
			if indent > top {
				indentStack = append(indentStack, indent)
				p := pos()
				toks = append(toks, Token{Type: TypeIndent, Text: "", Start: p, End: p})
			} else {
				for indent < indentStack[len(indentStack)-1] {
					indentStack = indentStack[:len(indentStack)-1]
					p := pos()
					toks = append(toks, Token{Type: TypeDedent, Text: "", Start: p, End: p})
				}
			}
			atLineStart = false
		}

		if offset >= len(src) {
			break
		}

		c := src[offset]

		switch {
		case c == ' ' || c == '\t':
			advance(1)
		case c == '\\' && offset+1 < len(src) && (src[offset+1] == '\n' || (src[offset+1] == '\r')):
			// explicit line continuation, swallow it entirely
			advance(1)
			if src[offset] == '\r' {
				advance(1)
			}
			if offset < len(src) && src[offset] == '\n' {
				advance(1)
			}
		case c == '#':
			start := offset
			for offset < len(src) && src[offset] != '\n' {
				advance(1)
			}
			text := src[start:offset]
			if strings.HasPrefix(strings.TrimSpace(text), "# type:") {
				p := pos()
				toks = append(toks, Token{Type: TypeTypeComment, Text: text, Start: p, End: p})
			}
		case c == '\n' || c == '\r':
			startPos := pos()
			if c == '\r' {
				advance(1)
				if offset < len(src) && src[offset] == '\n' {
					advance(1)
				}
			} else {
				advance(1)
			}
			if parenDepth == 0 {
				if len(toks) == 0 || toks[len(toks)-1].Type != TypeNewline {
					toks = append(toks, Token{Type: TypeNewline, Text: "\n", Start: startPos, End: pos()})
				}
				atLineStart = true
			}
		case isNameStart(rune(c)) || c >= utf8.RuneSelf:
			r, size := decodeNameStart(src[offset:])
			_ = r
			start := offset
			startPos := pos()
			advance(size)
			for offset < len(src) {
				r2, sz2 := utf8.DecodeRuneInString(src[offset:])
				if !isNameCont(r2) {
					break
				}
				advance(sz2)
			}
			word := src[start:offset]
			if !isASCII(word) {
				word = norm.NFC.String(word)
			}
			lowered := strings.ToLower(word)
			if (lowered == "r" || lowered == "b" || lowered == "u" || lowered == "f" ||
				lowered == "rb" || lowered == "br" || lowered == "fr" || lowered == "rf") &&
				offset < len(src) && (src[offset] == '"' || src[offset] == '\'') {
				tok := lexString(src, &offset, &line, &col, start, startPos)
				toks = append(toks, tok)
			} else {
				toks = append(toks, Token{Type: TypeName, Text: word, Start: startPos, End: pos()})
			}
		case c >= '0' && c <= '9':
			start := offset
			startPos := pos()
			for offset < len(src) && isNumChar(src[offset]) {
				advance(1)
			}
			toks = append(toks, Token{Type: TypeNumber, Text: src[start:offset], Start: startPos, End: pos()})
		case c == '"' || c == '\'':
			start := offset
			startPos := pos()
			tok := lexString(src, &offset, &line, &col, start, startPos)
			toks = append(toks, tok)
		case c == '(' || c == '[' || c == '{':
			parenDepth++
			startPos := pos()
			advance(1)
			toks = append(toks, Token{Type: TypeOp, Text: string(c), Start: startPos, End: pos()})
		case c == ')' || c == ']' || c == '}':
			if parenDepth > 0 {
				parenDepth--
			}
			startPos := pos()
			advance(1)
			toks = append(toks, Token{Type: TypeOp, Text: string(c), Start: startPos, End: pos()})
		default:
			startPos := pos()
			matched := ""
			for _, op := range opTable {
				if strings.HasPrefix(src[offset:], op) {
					matched = op
					break
				}
			}
			if matched != "" {
				advance(len(matched))
				toks = append(toks, Token{Type: TypeOp, Text: matched, Start: startPos, End: pos()})
			} else if strings.ContainsRune(opPunct, rune(c)) {
				advance(1)
				toks = append(toks, Token{Type: TypeOp, Text: string(c), Start: startPos, End: pos()})
			} else {
				// unrecognized byte: skip it rather than fail the whole scan;
				// farthest-position tracking in the consumer surfaces bad
				// input as a syntax error at the right spot regardless.
				advance(1)
			}
		}
	}

	if len(toks) > 0 && toks[len(toks)-1].Type != TypeNewline {
		p := pos()
		toks = append(toks, Token{Type: TypeNewline, Text: "", Start: p, End: p})
	}
	for len(indentStack) > 1 {
		indentStack = indentStack[:len(indentStack)-1]
		p := pos()
		toks = append(toks, Token{Type: TypeDedent, Start: p, End: p})
	}
	p := pos()
	toks = append(toks, Token{Type: TypeEndmarker, Start: p, End: p})
	return toks
}

// isASCII reports whether s contains only ASCII bytes, letting the common
// case skip norm.NFC.String's normalization pass entirely.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func decodeNameStart(s string) (rune, int) {
	return utf8.DecodeRuneInString(s)
}

func isNumChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '_' ||
		c == 'e' || c == 'E' || c == 'x' || c == 'X' || c == 'o' || c == 'O' ||
		c == 'b' || c == 'B' || c == 'j' || c == 'J' ||
		(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == '+' || c == '-'
}

// lexString consumes a quoted string literal starting at src[*offset], which
// must be a quote character (a string-prefix letter, if any, has already been
// consumed into the token's start). Escapes are honored but not decoded; the
// returned token's Text is the literal source slice including quotes.
func lexString(src string, offset, line, col *int, start int, startPos Pos) Token {
	quote := src[*offset]
	triple := false
	if *offset+2 < len(src) && src[*offset+1] == quote && src[*offset+2] == quote {
		triple = true
	}
	step := func(n int) {
		s := src[*offset : *offset+n]
		for _, r := range s {
			if r == '\n' {
				*line++
				*col = 1
			} else {
				*col++
			}
		}
		*offset += n
	}

	if triple {
		step(3)
		for *offset < len(src) {
			if src[*offset] == '\\' && *offset+1 < len(src) {
				step(2)
				continue
			}
			if *offset+2 < len(src) && src[*offset] == quote && src[*offset+1] == quote && src[*offset+2] == quote {
				step(3)
				break
			}
			step(1)
		}
	} else {
		step(1)
		for *offset < len(src) && src[*offset] != quote {
			if src[*offset] == '\\' && *offset+1 < len(src) {
				step(2)
				continue
			}
			if src[*offset] == '\n' {
				break
			}
			step(1)
		}
		if *offset < len(src) && src[*offset] == quote {
			step(1)
		}
	}

	return Token{
		Type:  TypeString,
		Text:  src[start:*offset],
		Start: startPos,
		End:   Pos{Line: *line, Column: *col, Offset: *offset},
	}
}
