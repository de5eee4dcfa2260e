// Package metaparser implements a hand-written recursive-descent parser for
// the grammar meta-syntax: the dedicated language a grammar
// author writes, which this generator reads to build an ast.Grammar. It
// backtracks on a handful of lookaheads (the quantifier and gather postfix
// forms, and distinguishing a new rule declaration from a bare nonterminal
// reference) by snapshotting and restoring its own cursor, the same
// technique the parsers it generates use at a larger scale.
package metaparser

import (
	"fmt"
	"strings"

	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/pegerrors"
)

// reservedPrefix mirrors ast.ReservedPrefix; checked at parse time so a
// malformed grammar is rejected as early as possible.
const reservedPrefix = ast.ReservedPrefix

type cursor struct {
	pos  int
	line int
	col  int
}

type parser struct {
	src      string
	filename string
	pos      int
	line     int
	col      int

	farthest cursor
}

// Parse reads source text written in the grammar meta-syntax and returns the
// ast.Grammar it describes. Malformed syntax yields a *pegerrors.GrammarError
// anchored at the farthest position reached before failure; a duplicate or
// reserved-prefix name, or a grammar with no rules, yields a
// *pegerrors.ValidationError.
func Parse(source, filename string) (*ast.Grammar, error) {
	p := &parser{src: source, filename: filename, line: 1, col: 1}
	p.farthest = p.here()

	g := &ast.Grammar{}

	for {
		p.skipTrivia()
		if p.atEOF() {
			break
		}

		switch {
		case p.peekByte() == '@':
			if err := p.parseMeta(g); err != nil {
				return nil, err
			}
		case p.matchKeyword("extern"):
			if err := p.parseExtern(g); err != nil {
				return nil, err
			}
		default:
			if err := p.parseRule(g); err != nil {
				return nil, err
			}
		}
	}

	g.Index()

	if len(g.Rules) == 0 {
		return nil, pegerrors.Validation("grammar must declare at least one rule")
	}
	if g.StartRule() == nil && g.Metas.Trailer == "" {
		return nil, pegerrors.Validation("grammar must have either a start rule or a @trailer meta")
	}

	return g, nil
}

// --- low-level cursor mechanics -------------------------------------------

func (p *parser) here() cursor {
	return cursor{pos: p.pos, line: p.line, col: p.col}
}

func (p *parser) restore(c cursor) {
	p.pos, p.line, p.col = c.pos, c.line, c.col
}

func (p *parser) atEOF() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peekByte() byte {
	if p.atEOF() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekByteAt(offset int) byte {
	if p.pos+offset >= len(p.src) {
		return 0
	}
	return p.src[p.pos+offset]
}

func (p *parser) advance() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	if p.here().pos > p.farthest.pos {
		p.farthest = p.here()
	}
	return c
}

func (p *parser) skipTrivia() {
	for !p.atEOF() {
		c := p.peekByte()
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.advance()
			continue
		}
		if c == '#' {
			for !p.atEOF() && p.peekByte() != '\n' {
				p.advance()
			}
			continue
		}
		break
	}
}

// match consumes s if the source at the current position (after skipping
// trivia) starts with it. For purely-symbolic s it is a literal match; it
// never needs word-boundary checks because it's only used for punctuation.
func (p *parser) match(s string) bool {
	p.skipTrivia()
	if strings.HasPrefix(p.src[p.pos:], s) {
		for range s {
			p.advance()
		}
		return true
	}
	return false
}

// matchKeyword consumes an identifier equal to word if one starts at the
// current position (after skipping trivia), requiring that it not be
// immediately followed by another identifier character (so "externally"
// does not match "extern").
func (p *parser) matchKeyword(word string) bool {
	start := p.here()
	p.skipTrivia()
	ident, ok := p.tryIdent()
	if !ok || ident != word {
		p.restore(start)
		return false
	}
	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (p *parser) tryIdent() (string, bool) {
	p.skipTrivia()
	if p.atEOF() || !isIdentStart(p.peekByte()) {
		return "", false
	}
	start := p.pos
	for !p.atEOF() && isIdentCont(p.peekByte()) {
		p.advance()
	}
	return p.src[start:p.pos], true
}

func (p *parser) expectIdent(what string) (string, error) {
	id, ok := p.tryIdent()
	if !ok {
		return "", p.errf("expected %s", what)
	}
	return id, nil
}

// tryString parses a Python-style quoted literal (single or double quote,
// standard backslash escapes), returning its decoded value and the quote
// character used.
func (p *parser) tryString() (ast.StringLeaf, bool) {
	p.skipTrivia()
	if p.atEOF() {
		return ast.StringLeaf{}, false
	}
	q := p.peekByte()
	if q != '\'' && q != '"' {
		return ast.StringLeaf{}, false
	}
	p.advance() // opening quote
	var sb strings.Builder
	for {
		if p.atEOF() {
			return ast.StringLeaf{}, false
		}
		c := p.peekByte()
		if c == q {
			p.advance()
			break
		}
		if c == '\n' {
			return ast.StringLeaf{}, false
		}
		if c == '\\' {
			p.advance()
			if p.atEOF() {
				return ast.StringLeaf{}, false
			}
			esc := p.advance()
			sb.WriteByte(decodeEscape(esc))
			continue
		}
		sb.WriteByte(c)
		p.advance()
	}
	return ast.StringLeaf{Value: sb.String(), Quote: q}, true
}

func decodeEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c // includes \\, \', \", and anything else copied verbatim
	}
}

// parseBalanced consumes an opening delimiter, then raw text up to and
// including its matching closing delimiter, tracking nesting depth and
// skipping over quoted strings so braces or brackets inside an action body
// or a type expression's own string literals don't confuse the match. It
// returns the text between the delimiters, not including them.
func (p *parser) parseBalanced(open, close byte) (string, bool) {
	p.skipTrivia()
	if p.atEOF() || p.peekByte() != open {
		return "", false
	}
	p.advance()
	start := p.pos
	depth := 1
	for {
		if p.atEOF() {
			return "", false
		}
		c := p.peekByte()
		switch {
		case c == '\'' || c == '"':
			p.skipQuotedRaw(c)
		case c == open:
			depth++
			p.advance()
		case c == close:
			depth--
			if depth == 0 {
				text := p.src[start:p.pos]
				p.advance()
				return text, true
			}
			p.advance()
		default:
			p.advance()
		}
	}
}

// skipQuotedRaw advances past a quoted literal without interpreting it,
// used while scanning balanced-delimiter regions so a brace or bracket
// inside a string literal embedded in an action or type is not mistaken
// for a structural delimiter.
func (p *parser) skipQuotedRaw(q byte) {
	p.advance() // opening quote
	for !p.atEOF() {
		c := p.peekByte()
		if c == '\\' {
			p.advance()
			if !p.atEOF() {
				p.advance()
			}
			continue
		}
		p.advance()
		if c == q {
			return
		}
	}
}

func (p *parser) errf(format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	line, col := p.farthest.line, p.farthest.col
	lineText := p.lineTextAt(line)
	return pegerrors.Grammar(msg, p.filename, line, col).WithLineText(lineText)
}

func (p *parser) lineTextAt(line int) string {
	lines := strings.Split(p.src, "\n")
	if line-1 < 0 || line-1 >= len(lines) {
		return ""
	}
	return lines[line-1]
}
