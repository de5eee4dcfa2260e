// Package analysis implements the grammar analyzer: name
// resolution, nullability, the first-invocation graph and its strongly
// connected components, left-recursion and leader marking, and the
// subrule-shadowing validator. It mutates each ast.Rule's analysis flags in
// place; the Grammar is expected to be frozen (no further structural edits)
// once Analyze returns successfully.
package analysis

import "github.com/dekarrin/pegquest/internal/peg/ast"

// Result carries the first-invocation graph and SCC decomposition computed
// for a grammar, exposed so a collaborator (a GraphViz renderer, a
// diagnostic CLI view) can consume them without recomputing; see
// no renderer ships alongside it; a caller can walk AsMap() to build one.
type Result struct {
	Graph *Graph
	SCCs  [][]string
}

// Analyze runs every analysis pass over g in the order
// prescribes and writes the results into each Rule's analysis flags. It
// returns the first validation error encountered, or a *Result on success.
func Analyze(g *ast.Grammar) (*Result, error) {
	g.Index()

	if err := validateNames(g); err != nil {
		return nil, err
	}

	nullable := computeNullability(g)

	graph := buildGraph(g, nullable)

	sccs := tarjan(g.RuleNames(), graph.Neighbors)

	if err := analyzeLeftRecursion(g, graph); err != nil {
		return nil, err
	}

	if err := validateSubrules(g); err != nil {
		return nil, err
	}

	return &Result{Graph: graph, SCCs: sccs}, nil
}
