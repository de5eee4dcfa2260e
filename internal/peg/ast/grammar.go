package ast

import "sort"

// Index (re)builds the name-lookup tables used by LookupRule, LookupExtern,
// HasName, and every later analysis pass. It must be called after the
// grammar tree is fully built and before any lookup is attempted; rule
// references between rules are always by name lookup through the Grammar,
// never by direct ownership, so cyclic left-recursion presents no
// memory-model problem.
func (g *Grammar) Index() {
	g.ruleIndex = make(map[string]*Rule, len(g.Rules))
	for _, r := range g.Rules {
		g.ruleIndex[r.Name] = r
	}
	g.externIndex = make(map[string]*ExternDecl, len(g.Externs))
	for _, e := range g.Externs {
		g.externIndex[e.Name] = e
	}
}

// LookupRule returns the rule with the given name, or nil if none exists.
func (g *Grammar) LookupRule(name string) *Rule {
	if g.ruleIndex == nil {
		g.Index()
	}
	return g.ruleIndex[name]
}

// LookupExtern returns the extern declaration with the given name, or nil
// if none exists.
func (g *Grammar) LookupExtern(name string) *ExternDecl {
	if g.externIndex == nil {
		g.Index()
	}
	return g.externIndex[name]
}

// AddRule appends a new rule with the given name and right-hand side to the
// grammar and re-indexes it. It is a convenience for callers (such as the
// meta-grammar parser and the Desugarer) building a Grammar incrementally.
func (g *Grammar) AddRule(r *Rule) {
	g.Rules = append(g.Rules, r)
	g.Index()
}

// AddExtern appends a new extern declaration and re-indexes the grammar.
func (g *Grammar) AddExtern(e *ExternDecl) {
	g.Externs = append(g.Externs, e)
	g.Index()
}

// RuleNames returns every declared rule name, sorted, for deterministic
// iteration in diagnostics and tests.
func (g *Grammar) RuleNames() []string {
	names := make([]string, 0, len(g.Rules))
	for _, r := range g.Rules {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}

// StartRule returns the grammar's designated start rule: by convention, the
// first declared rule. Returns nil if the grammar has no rules.
func (g *Grammar) StartRule() *Rule {
	if len(g.Rules) == 0 {
		return nil
	}
	return g.Rules[0]
}
