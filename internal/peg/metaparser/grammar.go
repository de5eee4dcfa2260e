package metaparser

import (
	"strings"

	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/pegerrors"
)

// --- metas -----------------------------------------------------------------

func (p *parser) parseMeta(g *ast.Grammar) error {
	p.advance() // '@'
	name, err := p.expectIdent("meta name after '@'")
	if err != nil {
		return err
	}

	var value string
	switch {
	case p.peekAfterTriviaIs('\'') || p.peekAfterTriviaIs('"'):
		s, ok := p.tryString()
		if !ok {
			return p.errf("malformed string value for @%s", name)
		}
		value = s.Value
	case p.peekAfterTriviaIs('{'):
		text, ok := p.parseBalanced('{', '}')
		if !ok {
			return p.errf("unterminated action body for @%s", name)
		}
		value = strings.TrimSpace(text)
	default:
		id, ok := p.tryIdent()
		if ok {
			value = id
		}
	}

	switch name {
	case "class":
		g.Metas.Class = value
	case "base":
		g.Metas.Base = value
	case "header":
		g.Metas.Header = value
	case "metaheader":
		g.Metas.MetaHeader = value
	case "trailer":
		g.Metas.Trailer = value
	case "location_format":
		g.Metas.LocationFormat = value
	default:
		return p.errf("unrecognized meta @%s", name)
	}
	return nil
}

func (p *parser) peekAfterTriviaIs(c byte) bool {
	saved := p.here()
	p.skipTrivia()
	ok := p.peekByte() == c
	p.restore(saved)
	return ok
}

// --- externs -----------------------------------------------------------------

func (p *parser) parseExtern(g *ast.Grammar) error {
	name, err := p.expectIdent("extern name")
	if err != nil {
		return err
	}
	if g.LookupExtern(name) != nil {
		return pegerrors.ValidationIn(name, "duplicate extern declaration")
	}
	if g.LookupRule(name) != nil {
		return pegerrors.ValidationIn(name, "name already used by a rule")
	}

	typ, _ := p.parseBalanced('[', ']')
	g.AddExtern(&ast.ExternDecl{Name: name, Type: typ})
	return nil
}

// --- rules -------------------------------------------------------------------

func (p *parser) parseRule(g *ast.Grammar) error {
	name, err := p.expectIdent("rule name")
	if err != nil {
		return err
	}
	if strings.HasPrefix(name, reservedPrefix) {
		return pegerrors.ValidationIn(name, "rule names beginning with '_' are reserved for synthesised auxiliaries")
	}
	if g.LookupRule(name) != nil {
		return pegerrors.ValidationIn(name, "duplicate rule declaration")
	}
	if g.LookupExtern(name) != nil {
		return pegerrors.ValidationIn(name, "name already used by an extern")
	}

	typ, _ := p.parseBalanced('[', ']')

	if !p.match(":") {
		return p.errf("expected ':' after rule name %q", name)
	}

	rhs, err := p.parseRhs()
	if err != nil {
		return err
	}

	g.AddRule(&ast.Rule{Name: name, Type: typ, Rhs: rhs, Memoize: true})
	return nil
}

// isRuleStart reports whether the grammar text at the current position
// begins a new rule declaration (NAME ('[' type ']')? ':'), without
// consuming any input. It is the lookahead that lets parseAlt/parseRhs know
// when to stop accumulating items for the rule currently being parsed.
func (p *parser) isRuleStart() bool {
	saved := p.here()
	defer p.restore(saved)

	if _, ok := p.tryIdent(); !ok {
		return false
	}
	p.parseBalanced('[', ']')
	p.skipTrivia()
	return p.peekByte() == ':'
}

func (p *parser) atDeclarationBoundary() bool {
	if p.atEOF() {
		return true
	}
	if p.peekAfterTriviaIs('@') {
		return true
	}
	saved := p.here()
	isExtern := p.matchKeyword("extern")
	p.restore(saved)
	if isExtern {
		return true
	}
	return p.isRuleStart()
}

// --- rhs / alt ---------------------------------------------------------------

func (p *parser) parseRhs() (*ast.Rhs, error) {
	rhs := &ast.Rhs{}

	// a leading '|' is permitted on a new line, purely for formatting
	p.match("|")

	for {
		alt, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		rhs.Alts = append(rhs.Alts, alt)

		if p.atDeclarationBoundary() {
			break
		}
		if !p.match("|") {
			break
		}
	}

	return rhs, nil
}

func (p *parser) parseAlt() (*ast.Alt, error) {
	alt := &ast.Alt{CutIndex: -1}

	for {
		p.skipTrivia()
		if p.atEOF() || p.peekByte() == '|' || p.peekByte() == '{' || p.peekByte() == ')' || p.peekByte() == ']' {
			break
		}
		if p.atDeclarationBoundary() {
			break
		}

		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		if _, isCut := item.Item.(ast.Cut); isCut && alt.CutIndex < 0 {
			alt.CutIndex = len(alt.Items)
		}
		alt.Items = append(alt.Items, item)
	}

	if len(alt.Items) == 0 {
		return nil, p.errf("empty alternative: at least one item is required")
	}

	if p.peekAfterTriviaIs('{') {
		action, ok := p.parseBalanced('{', '}')
		if !ok {
			return nil, p.errf("unterminated action body")
		}
		alt.Action = strings.TrimSpace(action)
	}

	return alt, nil
}

// --- item / element / atom ----------------------------------------------------

func (p *parser) parseItem() (*ast.TopLevelItem, error) {
	var bindName string

	saved := p.here()
	if id, ok := p.tryIdent(); ok {
		if p.matchSingleEquals() {
			if strings.HasPrefix(id, reservedPrefix) {
				return nil, pegerrors.ValidationIn(id, "binding names beginning with '_' are reserved")
			}
			bindName = id
		} else {
			p.restore(saved)
		}
	} else {
		p.restore(saved)
	}

	elem, err := p.parseElement()
	if err != nil {
		return nil, err
	}

	var typ string
	if p.peekAfterTriviaIs('[') {
		typ, _ = p.parseBalanced('[', ']')
	}

	return &ast.TopLevelItem{Name: bindName, Item: elem, Type: typ}, nil
}

// matchSingleEquals consumes a single '=' (a binding operator), but not if
// it is immediately followed by another '=' (which belongs to no construct
// in this grammar but is guarded against to avoid surprises if a stray
// comparison-looking action leaks outside its braces).
func (p *parser) matchSingleEquals() bool {
	saved := p.here()
	p.skipTrivia()
	if p.peekByte() != '=' || p.peekByteAt(1) == '=' {
		p.restore(saved)
		return false
	}
	p.advance()
	return true
}

func (p *parser) parseElement() (ast.Item, error) {
	switch {
	case p.match("&&"):
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		return ast.Forced{Item: atom}, nil
	case p.matchSingleAmp():
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		return ast.PositiveLookahead{Item: atom}, nil
	case p.match("!"):
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		return ast.NegativeLookahead{Item: atom}, nil
	default:
		return p.parseAtom()
	}
}

// matchSingleAmp consumes a single '&' but not when it is the start of '&&',
// which parseElement tries first in any case; kept as a guard for clarity.
func (p *parser) matchSingleAmp() bool {
	saved := p.here()
	p.skipTrivia()
	if p.peekByte() != '&' || p.peekByteAt(1) == '&' {
		p.restore(saved)
		return false
	}
	p.advance()
	return true
}

func (p *parser) parseAtom() (ast.Item, error) {
	base, err := p.parsePrimaryAtom()
	if err != nil {
		return nil, err
	}

	switch {
	case p.match("?"):
		return ast.Opt{Item: base}, nil
	case p.match("*"):
		return ast.Repeat0{Item: base}, nil
	case p.match("+"):
		return ast.Repeat1{Item: base}, nil
	case p.match("."):
		node, err := p.parsePrimaryAtom()
		if err != nil {
			return nil, err
		}
		if !p.match("+") {
			return nil, p.errf("expected '+' to complete gather expression")
		}
		return ast.Gather{Separator: base, Node: node}, nil
	default:
		return base, nil
	}
}

func (p *parser) parsePrimaryAtom() (ast.Item, error) {
	switch {
	case p.match("~"):
		return ast.Cut{}, nil
	case p.match("$"):
		return ast.NameLeaf{Name: "ENDMARKER"}, nil
	case p.match("("):
		rhs, err := p.parseRhs()
		if err != nil {
			return nil, err
		}
		if !p.match(")") {
			return nil, p.errf("expected ')' to close group")
		}
		return ast.Group{Rhs: rhs}, nil
	case p.match("["):
		rhs, err := p.parseRhs()
		if err != nil {
			return nil, err
		}
		if !p.match("]") {
			return nil, p.errf("expected ']' to close optional group")
		}
		return ast.Opt{Item: ast.Group{Rhs: rhs}}, nil
	}

	if s, ok := p.tryString(); ok {
		return s, nil
	}
	if id, ok := p.tryIdent(); ok {
		return ast.NameLeaf{Name: id}, nil
	}

	return nil, p.errf("expected a name, string literal, group, or operator")
}
