package analysis

import (
	"fmt"
	"strings"

	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/pegerrors"
)

// validateSubrules checks every Rhs for alternatives shadowed by an earlier
// one: if an earlier alternative's string form is a prefix of a later
// alternative's string form, the later alternative can never be reached
// under PEG prioritised-choice semantics, which is a validation error
// a shadowing error.
func validateSubrules(g *ast.Grammar) error {
	for _, r := range g.Rules {
		if err := checkRhsShadowing(r.Name, r.Rhs); err != nil {
			return err
		}
	}
	return nil
}

func checkRhsShadowing(ruleName string, rhs *ast.Rhs) error {
	if rhs == nil {
		return nil
	}
	forms := make([]string, len(rhs.Alts))
	for i, alt := range rhs.Alts {
		forms[i] = alt.String()
	}
	for j := 1; j < len(forms); j++ {
		for i := 0; i < j; i++ {
			if forms[i] != "" && strings.HasPrefix(forms[j], forms[i]) {
				return pegerrors.ValidationIn(ruleName, fmt.Sprintf(
					"alternative %d (%q) is unreachable: alternative %d (%q) is a prefix of it",
					j+1, forms[j], i+1, forms[i]))
			}
		}
	}
	for _, alt := range rhs.Alts {
		for _, item := range alt.Items {
			if err := checkItemShadowing(ruleName, item.Item); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkItemShadowing(ruleName string, it ast.Item) error {
	switch v := it.(type) {
	case ast.Group:
		return checkRhsShadowing(ruleName, v.Rhs)
	case ast.Opt:
		return checkItemShadowing(ruleName, v.Item)
	case ast.Repeat0:
		return checkItemShadowing(ruleName, v.Item)
	case ast.Repeat1:
		return checkItemShadowing(ruleName, v.Item)
	case ast.Gather:
		return checkItemShadowing(ruleName, v.Node)
	case ast.PositiveLookahead:
		return checkItemShadowing(ruleName, v.Item)
	case ast.NegativeLookahead:
		return checkItemShadowing(ruleName, v.Item)
	case ast.Forced:
		return checkItemShadowing(ruleName, v.Item)
	}
	return nil
}
