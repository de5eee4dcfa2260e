package analysis

import "sort"

// tarjan computes the strongly connected components of a graph given as an
// adjacency function, using the classic iterative-by-recursion index/lowlink
// algorithm. Components are returned in the order their root was popped off
// the stack, which is reverse topological order; within a component, names
// are sorted for deterministic downstream processing (gods' treeset already
// guarantees Neighbors is sorted, but SCC membership itself isn't naturally
// ordered by the algorithm).
func tarjan(nodes []string, neighbors func(string) []string) [][]string {
	index := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var sccs [][]string
	counter := 0

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range neighbors(v) {
			if _, ok := index[w]; !ok {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var comp []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Strings(comp)
			sccs = append(sccs, comp)
		}
	}

	for _, v := range nodes {
		if _, ok := index[v]; !ok {
			strongconnect(v)
		}
	}

	return sccs
}
