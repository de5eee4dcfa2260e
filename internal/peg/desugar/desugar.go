// Package desugar implements the Desugarer: it rewrites a
// validated Grammar so that every Group, Repeat0, Repeat1, and Gather is
// backed by a concrete, named rule, synthesising auxiliary rules with a
// reserved name prefix as it goes. Opt, PositiveLookahead,
// NegativeLookahead, Forced, and Cut stay inline (their bodies desugared
// to a single leaf); the emitter handles them directly.
package desugar

import (
	"fmt"

	"github.com/dekarrin/pegquest/internal/peg/ast"
)

// GroupPrefix, LoopPrefix0, LoopPrefix1, and GatherPrefix name the
// synthetic rules. The CodeEmitter gives LoopPrefix0 and LoopPrefix1 rules
// special (looping) treatment; the other two get the ordinary rule body.
const (
	GroupPrefix  = "_tmp_"
	LoopPrefix0  = "_loop0_"
	LoopPrefix1  = "_loop1_"
	GatherPrefix = "_gather_"
)

// Desugar rewrites g in place, synthesising auxiliary rules for every
// Group, Repeat0, Repeat1, and Gather construct reachable from a
// user-declared rule, and appends them to g.Rules. It must run after the
// Analyzer (desugaring a grammar that failed validation produces undefined
// auxiliary behaviour) and before the CodeEmitter.
func Desugar(g *ast.Grammar) error {
	d := &desugarer{g: g}

	// Snapshot the rule list up front: d.addRule appends to g.Rules as it
	// runs, and synthetic rules never themselves need desugaring (their
	// bodies are built already-desugared), so iterating the snapshot is
	// both sufficient and avoids mutating the slice we range over.
	original := make([]*ast.Rule, len(g.Rules))
	copy(original, g.Rules)

	for _, r := range original {
		if err := d.desugarRhs(r.Rhs); err != nil {
			return err
		}
	}

	g.Index()
	return nil
}

type desugarer struct {
	g       *ast.Grammar
	counter int
}

func (d *desugarer) nextName(prefix string) string {
	n := d.counter
	d.counter++
	return fmt.Sprintf("%s%d", prefix, n)
}

// addRule appends a fully-desugared synthetic rule to the grammar.
func (d *desugarer) addRule(name string, rhs *ast.Rhs) {
	d.g.Rules = append(d.g.Rules, &ast.Rule{Name: name, Rhs: rhs})
}

func (d *desugarer) desugarRhs(rhs *ast.Rhs) error {
	if rhs == nil {
		return nil
	}
	for _, alt := range rhs.Alts {
		if err := d.desugarAlt(alt); err != nil {
			return err
		}
	}
	return nil
}

func (d *desugarer) desugarAlt(a *ast.Alt) error {
	for _, item := range a.Items {
		rewritten, err := d.desugarItem(item.Item)
		if err != nil {
			return err
		}
		item.Item = rewritten
	}
	return nil
}

// desugarItem recurses into it's children first (so nested constructs get
// their own synthetic rule before the enclosing one is synthesised), then
// replaces it with a NameLeaf reference if it is one of the constructs
// the post-desugar invariant requires to be backed by a concrete rule.
func (d *desugarer) desugarItem(it ast.Item) (ast.Item, error) {
	switch v := it.(type) {
	case ast.NameLeaf, ast.StringLeaf, ast.Cut:
		return it, nil

	case ast.Group:
		if err := d.desugarRhs(v.Rhs); err != nil {
			return nil, err
		}
		name := d.nextName(GroupPrefix)
		d.addRule(name, v.Rhs)
		return ast.NameLeaf{Name: name}, nil

	case ast.Opt:
		inner, err := d.desugarItem(v.Item)
		if err != nil {
			return nil, err
		}
		return ast.Opt{Item: inner}, nil

	case ast.Repeat0:
		inner, err := d.desugarItem(v.Item)
		if err != nil {
			return nil, err
		}
		name := d.nextName(LoopPrefix0)
		d.addRule(name, singleItemRhs(inner))
		return ast.NameLeaf{Name: name}, nil

	case ast.Repeat1:
		inner, err := d.desugarItem(v.Item)
		if err != nil {
			return nil, err
		}
		name := d.nextName(LoopPrefix1)
		d.addRule(name, singleItemRhs(inner))
		return ast.NameLeaf{Name: name}, nil

	case ast.Gather:
		sep, err := d.desugarItem(v.Separator)
		if err != nil {
			return nil, err
		}
		node, err := d.desugarItem(v.Node)
		if err != nil {
			return nil, err
		}

		loopName := d.nextName(LoopPrefix0)
		loopRhs := &ast.Rhs{Alts: []*ast.Alt{{
			Items: []*ast.TopLevelItem{
				{Item: sep},
				{Name: "n", Item: node},
			},
			Action:   "n",
			CutIndex: -1,
		}}}
		d.addRule(loopName, loopRhs)

		gatherName := d.nextName(GatherPrefix)
		gatherRhs := &ast.Rhs{Alts: []*ast.Alt{{
			Items: []*ast.TopLevelItem{
				{Name: "first", Item: node},
				{Name: "rest", Item: ast.NameLeaf{Name: loopName}},
			},
			Action:   "append([]interface{}{first}, rest.([]interface{})...)",
			CutIndex: -1,
		}}}
		d.addRule(gatherName, gatherRhs)

		return ast.NameLeaf{Name: gatherName}, nil

	case ast.PositiveLookahead:
		inner, err := d.desugarItem(v.Item)
		if err != nil {
			return nil, err
		}
		return ast.PositiveLookahead{Item: inner}, nil

	case ast.NegativeLookahead:
		inner, err := d.desugarItem(v.Item)
		if err != nil {
			return nil, err
		}
		return ast.NegativeLookahead{Item: inner}, nil

	case ast.Forced:
		inner, err := d.desugarItem(v.Item)
		if err != nil {
			return nil, err
		}
		return ast.Forced{Item: inner}, nil

	default:
		return nil, fmt.Errorf("desugar: unhandled item type %T", it)
	}
}

func singleItemRhs(it ast.Item) *ast.Rhs {
	return &ast.Rhs{Alts: []*ast.Alt{{
		Items:    []*ast.TopLevelItem{{Item: it}},
		CutIndex: -1,
	}}}
}
