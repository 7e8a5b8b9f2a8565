// Package depgraph traverses the type index to answer dependency and
// inheritance queries. All traversal state is per-call; the package
// never mutates the index and is safe for concurrent queries.
package depgraph

import (
	"github.com/jacoelho/xsdrepo/internal/schema"
	"github.com/jacoelho/xsdrepo/internal/typeindex"
)

// collectRefs gathers every raw type/group/attribute-group reference
// reachable from a definition without following them: element type
// attributes, attribute types, extension/restriction bases, and
// group/attributeGroup refs.
func collectRefs(def schema.Definition) []string {
	var refs []string
	appendRef := func(ref string) {
		if ref != "" {
			refs = append(refs, ref)
		}
	}

	var walkParticle func(p schema.Particle)
	var walkAttrs func(attrs []*schema.Attribute)
	var walkComplex func(ct *schema.ComplexType)
	var walkSimple func(st *schema.SimpleType)

	walkParticle = func(p schema.Particle) {
		switch particle := p.(type) {
		case nil:
		case *schema.Sequence:
			for _, child := range particle.Particles {
				walkParticle(child)
			}
		case *schema.Choice:
			for _, child := range particle.Particles {
				walkParticle(child)
			}
		case *schema.All:
			for _, child := range particle.Particles {
				walkParticle(child)
			}
		case *schema.GroupRef:
			appendRef(particle.Ref)
		case *schema.Element:
			appendRef(particle.Type)
			appendRef(particle.Ref)
			if particle.ComplexType != nil {
				walkComplex(particle.ComplexType)
			}
			if particle.SimpleType != nil {
				walkSimple(particle.SimpleType)
			}
		}
	}

	walkAttrs = func(attrs []*schema.Attribute) {
		for _, attr := range attrs {
			appendRef(attr.Type)
			appendRef(attr.Ref)
			if attr.SimpleType != nil {
				walkSimple(attr.SimpleType)
			}
		}
	}

	walkComplex = func(ct *schema.ComplexType) {
		walkParticle(ct.Particle)
		walkAttrs(ct.Attributes)
		for _, ref := range ct.AttributeGroupRefs {
			appendRef(ref)
		}
		for _, derivation := range []*schema.Derivation{ct.ComplexContent, ct.SimpleContent} {
			if derivation == nil {
				continue
			}
			appendRef(derivation.Base)
			walkParticle(derivation.Particle)
			walkAttrs(derivation.Attributes)
			for _, ref := range derivation.AttributeGroupRefs {
				appendRef(ref)
			}
		}
	}

	walkSimple = func(st *schema.SimpleType) {
		appendRef(st.RestrictionBase)
		appendRef(st.ListItemType)
		for _, member := range st.UnionMemberTypes {
			appendRef(member)
		}
	}

	switch d := def.(type) {
	case *schema.Element:
		appendRef(d.Type)
		appendRef(d.Ref)
		if d.ComplexType != nil {
			walkComplex(d.ComplexType)
		}
		if d.SimpleType != nil {
			walkSimple(d.SimpleType)
		}
	case *schema.ComplexType:
		walkComplex(d)
	case *schema.SimpleType:
		walkSimple(d)
	case *schema.AttributeGroup:
		walkAttrs(d.Attributes)
		for _, ref := range d.AttributeGroupRefs {
			appendRef(ref)
		}
	case *schema.ModelGroup:
		walkParticle(d.Particle)
	case *schema.Attribute:
		appendRef(d.Type)
		appendRef(d.Ref)
		if d.SimpleType != nil {
			walkSimple(d.SimpleType)
		}
	}
	return refs
}

// resolveRefs resolves raw references against the owning document
// and looks each up in the index. Unresolvable references (builtins
// such as xs:string, or types outside the loaded namespaces) are
// dropped.
func resolveRefs(entry *typeindex.Entry, idx *typeindex.Index) []*typeindex.Entry {
	var out []*typeindex.Entry
	seen := make(map[typeindex.Key]bool)
	for _, ref := range collectRefs(entry.Definition) {
		ns, local, ok := entry.Doc.ResolveReference(ref)
		if !ok {
			continue
		}
		resolved, found := idx.Find(ns, local)
		if !found {
			continue
		}
		key := resolved.Key()
		if key == entry.Key() || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, resolved)
	}
	return out
}
