package analysis

import "github.com/dekarrin/pegquest/internal/peg/ast"

// computeNullability runs the fixed-point nullability analysis described in
// a least fixed point and writes the result into each Rule's Nullable flag. The
// per-node rules: Opt, Repeat0, PositiveLookahead, NegativeLookahead,
// Forced, Cut, and ExternDecl references are nullable; Repeat1 and Gather
// are not; StringLeaf("") is nullable, every other string leaf is not;
// NameLeaf inherits from its target rule if resolvable, otherwise false.
// The fixed point terminates because nullability only ever flips false to
// true, and there are finitely many rules.
func computeNullability(g *ast.Grammar) map[string]bool {
	nullable := make(map[string]bool, len(g.Rules))
	for _, r := range g.Rules {
		nullable[r.Name] = false
	}

	for {
		changed := false
		for _, r := range g.Rules {
			n := rhsNullable(r.Rhs, g, nullable)
			if n != nullable[r.Name] {
				nullable[r.Name] = n
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for _, r := range g.Rules {
		r.Nullable = nullable[r.Name]
	}
	return nullable
}

func rhsNullable(r *ast.Rhs, g *ast.Grammar, nullable map[string]bool) bool {
	if r == nil {
		return true
	}
	for _, alt := range r.Alts {
		if altNullable(alt, g, nullable) {
			return true
		}
	}
	return false
}

func altNullable(a *ast.Alt, g *ast.Grammar, nullable map[string]bool) bool {
	for _, item := range a.Items {
		if !itemNullable(item.Item, g, nullable) {
			return false
		}
	}
	return true
}

func itemNullable(it ast.Item, g *ast.Grammar, nullable map[string]bool) bool {
	switch v := it.(type) {
	case ast.NameLeaf:
		if r := g.LookupRule(v.Name); r != nil {
			return nullable[r.Name]
		}
		if g.LookupExtern(v.Name) != nil {
			return true
		}
		return false
	case ast.StringLeaf:
		return v.Value == ""
	case ast.Group:
		return rhsNullable(v.Rhs, g, nullable)
	case ast.Opt:
		return true
	case ast.Repeat0:
		return true
	case ast.Repeat1:
		return false
	case ast.Gather:
		return false
	case ast.PositiveLookahead:
		return true
	case ast.NegativeLookahead:
		return true
	case ast.Forced:
		return true
	case ast.Cut:
		return true
	default:
		return false
	}
}
