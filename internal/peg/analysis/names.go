package analysis

import (
	"fmt"

	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/pegerrors"
	"github.com/dekarrin/pegquest/internal/peg/tokenizer"
)

// validateNames checks that every NameLeaf in the grammar resolves to a
// declared rule, a declared extern, or a well-known terminal.
// Unknown names fail fast with the offending name reported.
func validateNames(g *ast.Grammar) error {
	for _, r := range g.Rules {
		v := &nameValidator{grammar: g, rule: r.Name}
		v.Self = v
		v.VisitRule(r)
		if v.err != nil {
			return v.err
		}
	}
	return nil
}

type nameValidator struct {
	ast.BaseVisitor
	grammar *ast.Grammar
	rule    string
	err     error
}

func (v *nameValidator) VisitItem(it ast.Item) {
	if v.err != nil {
		return
	}
	if nl, ok := it.(ast.NameLeaf); ok {
		if v.grammar.LookupRule(nl.Name) == nil &&
			v.grammar.LookupExtern(nl.Name) == nil &&
			!tokenizer.KnownTerminals[nl.Name] {
			v.err = pegerrors.ValidationIn(v.rule, fmt.Sprintf(
				"unknown name %q: not a declared rule, extern, or well-known terminal", nl.Name))
			return
		}
	}
	v.BaseVisitor.VisitItem(it)
}
