package xsdrepo

import (
	"fmt"

	"github.com/jacoelho/xsdrepo/internal/depgraph"
)

// DependencyGraph is the forward dependency tree of one definition.
type DependencyGraph = depgraph.Graph

// DependentsResult lists the definitions depending on one target.
type DependentsResult = depgraph.DependentsResult

// TypeHierarchy is the inheritance chain and derived types of one
// definition.
type TypeHierarchy = depgraph.Hierarchy

// Dependencies traverses forward from a qualified name, following
// type, base and group references up to depth levels (0 uses the
// default). Cycles are reported as marked leaves, never expanded.
func (r *Repository) Dependencies(input string, depth int) (*DependencyGraph, error) {
	entry, _, err := r.entry(input)
	if err != nil {
		return nil, fmt.Errorf("dependencies of %q: %w", input, err)
	}
	return depgraph.Dependencies(entry, r.index, depth), nil
}

// Dependents scans the whole index for definitions whose dependency
// closure reaches the target. No reverse index is maintained, so the
// cost grows with index size; fine for interactive use.
func (r *Repository) Dependents(input string) (*DependentsResult, error) {
	entry, _, err := r.entry(input)
	if err != nil {
		return nil, fmt.Errorf("dependents of %q: %w", input, err)
	}
	return depgraph.Dependents(entry, r.index), nil
}

// Hierarchy computes the ancestor chain and descendant tree of a
// qualified name up to depth levels in each direction (0 uses the
// default). An ancestor outside the loaded namespaces truncates the
// chain with a note instead of failing the query.
func (r *Repository) Hierarchy(input string, depth int) (*TypeHierarchy, error) {
	entry, _, err := r.entry(input)
	if err != nil {
		return nil, fmt.Errorf("hierarchy of %q: %w", input, err)
	}
	return depgraph.Analyze(entry, r.index, depth), nil
}
