package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/pegerrors"
)

// analyzeLeftRecursion decomposes the first-invocation graph into strongly
// connected components and, for every component that constitutes a
// left-recursive cycle, marks every member rule LeftRecursive and selects
// its Leader.
func analyzeLeftRecursion(g *ast.Grammar, gr *Graph) error {
	names := g.RuleNames()

	sccs := tarjan(names, gr.Neighbors)

	for _, comp := range sccs {
		if len(comp) == 1 {
			name := comp[0]
			if hasSelfEdge(gr, name) {
				r := g.LookupRule(name)
				r.LeftRecursive = true
				r.Leader = true
			}
			continue
		}

		for _, name := range comp {
			g.LookupRule(name).LeftRecursive = true
		}

		leader, err := chooseLeader(comp, gr.Neighbors)
		if err != nil {
			return pegerrors.Validation(fmt.Sprintf(
				"SCC {%s} has no leadership candidate: %s", strings.Join(comp, ", "), err.Error()))
		}
		g.LookupRule(leader).Leader = true
	}

	return nil
}

func hasSelfEdge(gr *Graph, name string) bool {
	for _, n := range gr.Neighbors(name) {
		if n == name {
			return true
		}
	}
	return false
}

// chooseLeader returns the leader of a left-recursive SCC: a rule present
// in every elementary cycle of the SCC. If more than one rule qualifies,
// the lexicographically smallest is chosen.
func chooseLeader(scc []string, neighbors func(string) []string) (string, error) {
	memberSet := make(map[string]bool, len(scc))
	for _, n := range scc {
		memberSet[n] = true
	}

	cycles := simpleCycles(memberSet, neighbors)
	if len(cycles) == 0 {
		return "", fmt.Errorf("no elementary cycle found within a component the SCC decomposition judged strongly connected")
	}

	intersection := make(map[string]bool, len(memberSet))
	for n := range memberSet {
		intersection[n] = true
	}
	for _, cyc := range cycles {
		cycSet := make(map[string]bool, len(cyc))
		for _, n := range cyc {
			cycSet[n] = true
		}
		for n := range intersection {
			if !cycSet[n] {
				delete(intersection, n)
			}
		}
	}

	if len(intersection) == 0 {
		return "", fmt.Errorf("the intersection of all elementary cycles is empty")
	}

	candidates := make([]string, 0, len(intersection))
	for n := range intersection {
		candidates = append(candidates, n)
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

// simpleCycles enumerates every elementary cycle that stays within member,
// using a straightforward DFS with a visited-path set rather than Johnson's
// algorithm: grammars are small enough that the naive enumeration is cheap,
// and what matters here is correctness of the intersection, not asymptotic
// cycle-enumeration performance.
func simpleCycles(member map[string]bool, neighbors func(string) []string) [][]string {
	starts := make([]string, 0, len(member))
	for n := range member {
		starts = append(starts, n)
	}
	sort.Strings(starts)

	var cycles [][]string

	for _, start := range starts {
		visited := map[string]bool{start: true}
		path := []string{start}

		var dfs func(current string)
		dfs = func(current string) {
			for _, w := range neighbors(current) {
				if !member[w] {
					continue
				}
				if w == start {
					cyc := make([]string, len(path))
					copy(cyc, path)
					cycles = append(cycles, cyc)
					continue
				}
				if visited[w] {
					continue
				}
				visited[w] = true
				path = append(path, w)
				dfs(w)
				path = path[:len(path)-1]
				visited[w] = false
			}
		}
		dfs(start)
	}

	return cycles
}
