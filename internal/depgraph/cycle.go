package depgraph

import "sort"

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// FindCycles walks the directed edge map with a three-color DFS and
// returns each distinct cycle found as the path of keys forming it.
// Cycles are findings, not errors: schema import graphs are allowed
// to be circular and the caller only reports them.
func FindCycles(edges map[string][]string) [][]string {
	states := make(map[string]visitState, len(edges))
	var cycles [][]string
	var stack []string

	var visit func(key string)
	visit = func(key string) {
		switch states[key] {
		case stateVisiting:
			// back-edge: the cycle is the stack suffix from the
			// first occurrence of key.
			for i, onPath := range stack {
				if onPath == key {
					cycle := make([]string, len(stack)-i+1)
					copy(cycle, stack[i:])
					cycle[len(cycle)-1] = key
					cycles = append(cycles, cycle)
					break
				}
			}
			return
		case stateDone:
			return
		}
		states[key] = stateVisiting
		stack = append(stack, key)
		for _, next := range edges[key] {
			visit(next)
		}
		stack = stack[:len(stack)-1]
		states[key] = stateDone
	}

	starts := make([]string, 0, len(edges))
	for key := range edges {
		starts = append(starts, key)
	}
	sort.Strings(starts)
	for _, start := range starts {
		visit(start)
	}
	return cycles
}
