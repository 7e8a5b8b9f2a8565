package depgraph

import (
	"github.com/jacoelho/xsdrepo/internal/qname"
	"github.com/jacoelho/xsdrepo/internal/typeindex"
)

// DefaultDepth bounds forward traversal when the caller gives none.
const DefaultDepth = 5

// dependentsScanDepth caps the per-candidate closure walk during a
// reverse scan. Real extension/reference chains are shallow; the cap
// only guards degenerate graphs.
const dependentsScanDepth = 32

// Node is one vertex of a forward dependency graph. Cycle marks a
// reference back to a type already on the current path; such nodes
// are reported but not expanded.
type Node struct {
	Name       string              `json:"name" yaml:"name"`
	Namespace  string              `json:"namespace" yaml:"namespace"`
	Category   typeindex.Category  `json:"category" yaml:"category"`
	SchemaFile string              `json:"schema_file" yaml:"schema_file"`
	Cycle      bool                `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	Children   []*Node             `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Graph is the result of a forward dependency query.
type Graph struct {
	Root      string             `json:"root" yaml:"root"`
	Namespace string             `json:"namespace" yaml:"namespace"`
	Category  typeindex.Category `json:"type_category" yaml:"type_category"`
	Depth     int                `json:"depth" yaml:"depth"`
	Nodes     []*Node            `json:"dependencies" yaml:"dependencies"`
}

// Dependencies traverses forward from entry, following type
// references to the given depth. A type already on the current path
// is reported as a cycle leaf instead of being expanded again.
func Dependencies(entry *typeindex.Entry, idx *typeindex.Index, depth int) *Graph {
	if depth <= 0 {
		depth = DefaultDepth
	}
	onPath := map[typeindex.Key]bool{entry.Key(): true}
	return &Graph{
		Root:      qname.Clark(entry.Namespace, entry.Local),
		Namespace: entry.Namespace,
		Category:  entry.Category,
		Depth:     depth,
		Nodes:     expand(entry, idx, depth, onPath),
	}
}

func expand(entry *typeindex.Entry, idx *typeindex.Index, depth int, onPath map[typeindex.Key]bool) []*Node {
	if depth == 0 {
		return nil
	}
	var nodes []*Node
	for _, dep := range resolveRefs(entry, idx) {
		node := &Node{
			Name:       dep.Local,
			Namespace:  dep.Namespace,
			Category:   dep.Category,
			SchemaFile: dep.SchemaFile,
		}
		key := dep.Key()
		if onPath[key] {
			node.Cycle = true
		} else {
			onPath[key] = true
			node.Children = expand(dep, idx, depth-1, onPath)
			delete(onPath, key)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Ref identifies one dependent definition.
type Ref struct {
	Name       string             `json:"name" yaml:"name"`
	Namespace  string             `json:"namespace" yaml:"namespace"`
	Category   typeindex.Category `json:"category" yaml:"category"`
	SchemaFile string             `json:"schema_file" yaml:"schema_file"`
}

// DependentsResult is the result of a reverse dependency query.
type DependentsResult struct {
	Target     string `json:"target" yaml:"target"`
	Namespace  string `json:"namespace" yaml:"namespace"`
	Dependents []Ref  `json:"dependents" yaml:"dependents"`
	Count      int    `json:"count" yaml:"count"`
}

// Dependents scans the whole index for definitions whose dependency
// closure contains the target. No reverse index is maintained, so
// this is O(index size × closure size): fine for interactive use,
// not for hot-path service queries.
func Dependents(target *typeindex.Entry, idx *typeindex.Index) *DependentsResult {
	result := &DependentsResult{
		Target:    qname.Clark(target.Namespace, target.Local),
		Namespace: target.Namespace,
	}
	targetKey := target.Key()
	for _, candidate := range idx.All() {
		if candidate.Key() == targetKey {
			continue
		}
		if closureContains(candidate, idx, targetKey) {
			result.Dependents = append(result.Dependents, Ref{
				Name:       candidate.Local,
				Namespace:  candidate.Namespace,
				Category:   candidate.Category,
				SchemaFile: candidate.SchemaFile,
			})
		}
	}
	result.Count = len(result.Dependents)
	return result
}

func closureContains(entry *typeindex.Entry, idx *typeindex.Index, target typeindex.Key) bool {
	visited := make(map[typeindex.Key]bool)
	var walk func(e *typeindex.Entry, depth int) bool
	walk = func(e *typeindex.Entry, depth int) bool {
		if depth == 0 {
			return false
		}
		for _, dep := range resolveRefs(e, idx) {
			key := dep.Key()
			if key == target {
				return true
			}
			if visited[key] {
				continue
			}
			visited[key] = true
			if walk(dep, depth-1) {
				return true
			}
		}
		return false
	}
	return walk(entry, dependentsScanDepth)
}
