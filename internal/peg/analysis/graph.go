package analysis

import (
	"sort"

	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/emirpasic/gods/sets/treeset"
)

// Graph is the first-invocation graph: an edge A -> B exists iff rule B may
// be invoked at the leftmost position of rule A. Neighbor sets are kept in
// a treeset so iteration order is always lexicographic, which the leader
// tie-break (§4.4) and diagnostic output both depend on.
type Graph struct {
	edges map[string]*treeset.Set
}

// Neighbors returns the rule names reachable from name's leftmost position,
// sorted lexicographically.
func (gr *Graph) Neighbors(name string) []string {
	set, ok := gr.edges[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, v.(string))
	}
	sort.Strings(out)
	return out
}

// AsMap renders the graph as a plain map, for collaborators such as a
// GraphViz renderer (kept contract-only).
func (gr *Graph) AsMap() map[string][]string {
	out := make(map[string][]string, len(gr.edges))
	for name := range gr.edges {
		out[name] = gr.Neighbors(name)
	}
	return out
}

// buildGraph computes initial_names(rule) for every rule and assembles the
// first-invocation graph from it.
func buildGraph(g *ast.Grammar, nullable map[string]bool) *Graph {
	gr := &Graph{edges: make(map[string]*treeset.Set, len(g.Rules))}
	for _, r := range g.Rules {
		set := treeset.NewWithStringComparator()
		names := initialNames(r, g, nullable)
		for _, n := range names {
			set.Add(n)
		}
		gr.edges[r.Name] = set
	}
	return gr
}

// initialNames returns the set of rule names that may be reached at the
// leftmost position of r, threading across nullable items within each
// alternative.
func initialNames(r *ast.Rule, g *ast.Grammar, nullable map[string]bool) []string {
	seen := map[string]bool{}
	for _, alt := range r.Rhs.Alts {
		collectAltInitialNames(alt, g, nullable, seen)
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectAltInitialNames(a *ast.Alt, g *ast.Grammar, nullable map[string]bool, seen map[string]bool) {
	for _, item := range a.Items {
		collectItemInitialNames(item.Item, g, nullable, seen)
		if !itemNullable(item.Item, g, nullable) {
			return
		}
	}
}

// collectItemInitialNames records every rule name invoked at the leftmost
// position of it, recursing into the constructs that are "invoked" even
// though they may not consume input (lookaheads, Forced) or whose leftmost
// slot is not textually first (Gather's leftmost invocation is its
// repeated node, not its separator, per the x (sep x)* desugaring).
func collectItemInitialNames(it ast.Item, g *ast.Grammar, nullable map[string]bool, seen map[string]bool) {
	switch v := it.(type) {
	case ast.NameLeaf:
		if r := g.LookupRule(v.Name); r != nil {
			seen[v.Name] = true
		}
	case ast.Group:
		for _, alt := range v.Rhs.Alts {
			collectAltInitialNames(alt, g, nullable, seen)
		}
	case ast.Opt:
		collectItemInitialNames(v.Item, g, nullable, seen)
	case ast.Repeat0:
		collectItemInitialNames(v.Item, g, nullable, seen)
	case ast.Repeat1:
		collectItemInitialNames(v.Item, g, nullable, seen)
	case ast.Gather:
		collectItemInitialNames(v.Node, g, nullable, seen)
	case ast.PositiveLookahead:
		collectItemInitialNames(v.Item, g, nullable, seen)
	case ast.NegativeLookahead:
		collectItemInitialNames(v.Item, g, nullable, seen)
	case ast.Forced:
		collectItemInitialNames(v.Item, g, nullable, seen)
	}
}
