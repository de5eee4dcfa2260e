package emit

import (
	"fmt"

	"github.com/dekarrin/pegquest/internal/peg/ast"
)

// knownTerminals lists the well-known token classes name resolution resolves
// names against without a rule or extern declaration.
var knownTerminals = map[string]bool{
	"NAME": true, "NUMBER": true, "STRING": true, "NEWLINE": true,
	"INDENT": true, "DEDENT": true, "ENDMARKER": true, "OP": true,
	"TYPE_COMMENT": true, "FSTRING_START": true, "FSTRING_MIDDLE": true,
	"FSTRING_END": true, "SOFT_KEYWORD": true, "ASYNC": true, "AWAIT": true,
}

// itemCode is the generated Go statement for one TopLevelItem, evaluated
// inside an alt's closure body (see rules.go). A failing item returns
// immediately from the closure with (nil, false, _committed); it never
// uses goto, since Go forbids a forward goto that skips over a later
// variable declaration in the same block and the alt body declares one
// variable per item in sequence.
type itemCode struct {
	stmt string

	// varName is the Go variable holding this item's match value, empty
	// for items that bind no value (lookaheads, Cut). Forced binds one but
	// does not contribute it to the default return list.
	varName string

	// contributesValue reports whether varName belongs in the default
	// (no explicit action) return list, per the packrat memoization rules and the
	// PositiveLookahead open question (the original implementation discards
	// its value, and pegquest matches that — so lookaheads, Forced, and
	// Cut never contribute).
	contributesValue bool
}

// emitItem generates code for a post-desugar item: NameLeaf, StringLeaf,
// Opt, PositiveLookahead, NegativeLookahead, Forced, or Cut are the only
// shapes the Desugarer ever leaves behind.
func (e *Emitter) emitItem(top *ast.TopLevelItem, idx int) (itemCode, error) {
	varName := top.Name
	if varName == "" {
		varName = fmt.Sprintf("_v%d", idx)
	}

	switch v := top.Item.(type) {
	case ast.NameLeaf:
		call := e.callForName(v.Name)
		stmt := fmt.Sprintf(
			"%s, ok%d := %s\n\t\tif !ok%d || runtime.IsFailure(%s) {\n\t\t\tp.tok.Reset(_start)\n\t\t\treturn nil, false, _committed\n\t\t}",
			varName, idx, call, idx, varName,
		)
		return itemCode{stmt: stmt, varName: varName, contributesValue: true}, nil

	case ast.StringLeaf:
		call := e.callForLiteral(v)
		stmt := fmt.Sprintf(
			"%s, ok%d := %s\n\t\tif !ok%d || runtime.IsFailure(%s) {\n\t\t\tp.tok.Reset(_start)\n\t\t\treturn nil, false, _committed\n\t\t}",
			varName, idx, call, idx, varName,
		)
		return itemCode{stmt: stmt, varName: varName, contributesValue: true}, nil

	case ast.Opt:
		call := e.callExprForItem(v.Item)
		stmt := fmt.Sprintf(
			"%s := interface{}(runtime.NO_MATCH)\n\t\tif _ov%d, _ok%d := %s; _ok%d && !runtime.IsFailure(_ov%d) {\n\t\t\t%s = _ov%d\n\t\t}",
			varName, idx, idx, call, idx, idx, varName, idx,
		)
		return itemCode{stmt: stmt, varName: varName, contributesValue: true}, nil

	case ast.PositiveLookahead:
		call := e.callExprForItem(v.Item)
		stmt := fmt.Sprintf(
			"_la%d := p.tok.Mark()\n\t\t_, _laOk%d := %s\n\t\tp.tok.Reset(_la%d)\n\t\tif !_laOk%d {\n\t\t\treturn nil, false, _committed\n\t\t}",
			idx, idx, call, idx, idx,
		)
		return itemCode{stmt: stmt}, nil

	case ast.NegativeLookahead:
		call := e.callExprForItem(v.Item)
		stmt := fmt.Sprintf(
			"_la%d := p.tok.Mark()\n\t\t_, _laOk%d := %s\n\t\tp.tok.Reset(_la%d)\n\t\tif _laOk%d {\n\t\t\treturn nil, false, _committed\n\t\t}",
			idx, idx, call, idx, idx,
		)
		return itemCode{stmt: stmt}, nil

	case ast.Forced:
		call := e.callExprForItem(v.Item)
		expected := v.Item.String()
		stmt := fmt.Sprintf(
			"%s, ok%d := %s\n\t\tif !ok%d || runtime.IsFailure(%s) {\n\t\t\tdTok := p.tok.Diagnose()\n\t\t\tpanic(pegerrors.Forced(%q, p.filename, dTok.Start.Line, dTok.Start.Column, \"\"))\n\t\t}",
			varName, idx, call, idx, varName, expected,
		)
		return itemCode{stmt: stmt, varName: varName}, nil

	case ast.Cut:
		return itemCode{stmt: "_committed = true"}, nil

	default:
		return itemCode{}, fmt.Errorf("emit: item type %T cannot appear after desugaring", top.Item)
	}
}

// callExprForItem renders the "(value, ok)" call expression for an item
// that only ever wraps a NameLeaf or StringLeaf after desugaring (true of
// every Opt/lookahead/Forced body, since the Desugarer leaves nothing else
// inside them).
func (e *Emitter) callExprForItem(it ast.Item) string {
	switch v := it.(type) {
	case ast.NameLeaf:
		return e.callForName(v.Name)
	case ast.StringLeaf:
		return e.callForLiteral(v)
	default:
		return fmt.Sprintf("nil, false /* unsupported nested item %T */", it)
	}
}

func (e *Emitter) callForName(name string) string {
	if knownTerminals[name] {
		return fmt.Sprintf("p.matchTerminal(%q)", name)
	}
	return fmt.Sprintf("p.rule_%s()", name)
}

func (e *Emitter) callForLiteral(s ast.StringLeaf) string {
	if e.opts.Mode == ModeCharStream {
		return fmt.Sprintf("p.matchLiteral(%q)", s.Value)
	}
	return fmt.Sprintf("p.matchString(%q)", s.Value)
}
