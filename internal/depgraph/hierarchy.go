package depgraph

import (
	"fmt"

	"github.com/jacoelho/xsdrepo/internal/qname"
	"github.com/jacoelho/xsdrepo/internal/schema"
	"github.com/jacoelho/xsdrepo/internal/typeindex"
)

// TypeRef identifies one link of an inheritance chain. Builtin marks
// a W3C built-in base (xs:string and friends), which terminates the
// chain.
type TypeRef struct {
	Name       string             `json:"name" yaml:"name"`
	Namespace  string             `json:"namespace" yaml:"namespace"`
	Category   typeindex.Category `json:"category,omitempty" yaml:"category,omitempty"`
	SchemaFile string             `json:"schema_file,omitempty" yaml:"schema_file,omitempty"`
	Builtin    bool               `json:"builtin,omitempty" yaml:"builtin,omitempty"`
}

// DescendantNode is one derived type with its own descendants.
type DescendantNode struct {
	TypeRef  `yaml:",inline"`
	Children []*DescendantNode `json:"descendants,omitempty" yaml:"descendants,omitempty"`
}

// Hierarchy is the result of an inheritance query. Ancestors are
// ordered nearest first. Notes carry truncation diagnostics, such as
// a base type outside the loaded namespaces.
type Hierarchy struct {
	Root        string             `json:"root" yaml:"root"`
	Namespace   string             `json:"namespace" yaml:"namespace"`
	Category    typeindex.Category `json:"type_category" yaml:"type_category"`
	Ancestors   []TypeRef          `json:"ancestors" yaml:"ancestors"`
	Descendants []*DescendantNode  `json:"descendants" yaml:"descendants"`
	Notes       []string           `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Analyze computes the base-type chain and derived types of entry up
// to depth levels in each direction.
func Analyze(entry *typeindex.Entry, idx *typeindex.Index, depth int) *Hierarchy {
	if depth <= 0 {
		depth = DefaultDepth
	}
	h := &Hierarchy{
		Root:      qname.Clark(entry.Namespace, entry.Local),
		Namespace: entry.Namespace,
		Category:  entry.Category,
	}
	h.ancestors(entry, idx, depth)
	seen := map[typeindex.Key]bool{entry.Key(): true}
	h.Descendants = descendants(entry, idx, depth, seen)
	return h
}

// ancestors follows extension (and simple-type restriction) bases
// upward, re-resolving each hop through the index so an unloaded
// base surfaces as a truncation note rather than a failure.
func (h *Hierarchy) ancestors(entry *typeindex.Entry, idx *typeindex.Index, depth int) {
	seen := map[typeindex.Key]bool{entry.Key(): true}
	current := entry
	for i := 0; i < depth; i++ {
		base, ok := baseReference(current.Definition)
		if !ok {
			return
		}
		ns, local, ok := current.Doc.ResolveReference(base)
		if !ok {
			h.Notes = append(h.Notes, fmt.Sprintf("ancestor chain truncated: unresolvable prefix in base %q", base))
			return
		}
		if ns == schema.XSDNamespace {
			h.Ancestors = append(h.Ancestors, TypeRef{Name: local, Namespace: ns, Builtin: true})
			return
		}
		resolved, found := idx.Find(ns, local)
		if !found {
			h.Notes = append(h.Notes, fmt.Sprintf("ancestor chain truncated: base %s not found", qname.Clark(ns, local)))
			return
		}
		key := resolved.Key()
		if seen[key] {
			h.Notes = append(h.Notes, fmt.Sprintf("ancestor chain cycle at %s", qname.Clark(ns, local)))
			return
		}
		seen[key] = true
		h.Ancestors = append(h.Ancestors, TypeRef{
			Name:       resolved.Local,
			Namespace:  resolved.Namespace,
			Category:   resolved.Category,
			SchemaFile: resolved.SchemaFile,
		})
		current = resolved
	}
}

// descendants scans every indexed type for one whose base resolves
// to target, then recurses. No derived-by index is maintained, so
// each level is a full-index scan.
func descendants(target *typeindex.Entry, idx *typeindex.Index, depth int, seen map[typeindex.Key]bool) []*DescendantNode {
	if depth == 0 {
		return nil
	}
	targetKey := target.Key()
	var nodes []*DescendantNode
	for _, candidate := range idx.All() {
		if candidate.Category != typeindex.CategoryComplexType && candidate.Category != typeindex.CategorySimpleType {
			continue
		}
		key := candidate.Key()
		if key == targetKey || seen[key] {
			continue
		}
		base, ok := baseReference(candidate.Definition)
		if !ok {
			continue
		}
		ns, local, ok := candidate.Doc.ResolveReference(base)
		if !ok || ns != target.Namespace || local != target.Local {
			continue
		}
		seen[key] = true
		node := &DescendantNode{TypeRef: TypeRef{
			Name:       candidate.Local,
			Namespace:  candidate.Namespace,
			Category:   candidate.Category,
			SchemaFile: candidate.SchemaFile,
		}}
		node.Children = descendants(candidate, idx, depth-1, seen)
		nodes = append(nodes, node)
	}
	return nodes
}

// baseReference returns the raw base reference of a type definition:
// the extension base of a complex type's complexContent or
// simpleContent, or the restriction base of a simple type.
func baseReference(def schema.Definition) (string, bool) {
	switch d := def.(type) {
	case *schema.ComplexType:
		for _, derivation := range []*schema.Derivation{d.ComplexContent, d.SimpleContent} {
			if derivation != nil && derivation.Kind == schema.DerivationExtension && derivation.Base != "" {
				return derivation.Base, true
			}
		}
	case *schema.SimpleType:
		if d.RestrictionBase != "" {
			return d.RestrictionBase, true
		}
	}
	return "", false
}
