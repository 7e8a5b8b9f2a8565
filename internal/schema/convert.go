package schema

import (
	"encoding/xml"
	"strings"
)

func (s *xmlSchema) document(location string) *Document {
	doc := &Document{
		Location:             location,
		TargetNamespace:      s.TargetNamespace,
		ElementFormDefault:   parseForm(s.ElementFormDefault),
		AttributeFormDefault: parseForm(s.AttributeFormDefault),
		NamespaceDecls:       namespaceDecls(s.Attrs),
	}
	for _, imp := range s.Imports {
		doc.Imports = append(doc.Imports, Import{
			Namespace:      imp.Namespace,
			SchemaLocation: imp.SchemaLocation,
		})
	}
	for _, inc := range s.Includes {
		doc.Includes = append(doc.Includes, Include{SchemaLocation: inc.SchemaLocation})
	}
	for i := range s.Elements {
		doc.Elements = append(doc.Elements, convertElement(&s.Elements[i]))
	}
	for i := range s.ComplexTypes {
		doc.ComplexTypes = append(doc.ComplexTypes, convertComplexType(&s.ComplexTypes[i]))
	}
	for i := range s.SimpleTypes {
		doc.SimpleTypes = append(doc.SimpleTypes, convertSimpleType(&s.SimpleTypes[i]))
	}
	for i := range s.AttributeGroups {
		doc.AttributeGroups = append(doc.AttributeGroups, convertAttrGroup(&s.AttributeGroups[i]))
	}
	for i := range s.Groups {
		doc.Groups = append(doc.Groups, convertNamedGroup(&s.Groups[i]))
	}
	for i := range s.Attributes {
		doc.Attributes = append(doc.Attributes, convertAttribute(&s.Attributes[i]))
	}
	return doc
}

func parseForm(v string) Form {
	if v == "qualified" {
		return Qualified
	}
	return Unqualified
}

// namespaceDecls extracts xmlns bindings from the schema element's
// attribute list. Prefixed declarations arrive with space "xmlns";
// the default declaration is the bare "xmlns" attribute.
func namespaceDecls(attrs []xml.Attr) map[string]string {
	decls := make(map[string]string)
	for _, attr := range attrs {
		switch {
		case attr.Name.Space == "xmlns":
			decls[attr.Name.Local] = attr.Value
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			decls[""] = attr.Value
		}
	}
	return decls
}

func convertElement(el *xmlElement) *Element {
	out := &Element{
		Name:          el.Name,
		Ref:           el.Ref,
		Type:          el.Type,
		MinOccurs:     el.MinOccurs,
		MaxOccurs:     el.MaxOccurs,
		Documentation: strings.TrimSpace(el.Annotation.text()),
	}
	if el.ComplexType != nil {
		out.ComplexType = convertComplexType(el.ComplexType)
	}
	if el.SimpleType != nil {
		out.SimpleType = convertSimpleType(el.SimpleType)
	}
	return out
}

func convertComplexType(ct *xmlComplexType) *ComplexType {
	out := &ComplexType{
		Name:          ct.Name,
		Abstract:      ct.Abstract,
		Mixed:         ct.Mixed,
		Documentation: strings.TrimSpace(ct.Annotation.text()),
		Particle:      convertBodyParticle(ct.Sequence, ct.Choice, ct.All, ct.Group),
	}
	out.Attributes = convertAttributes(ct.Attributes)
	out.AttributeGroupRefs = convertAttrGroupRefs(ct.AttrGroupRefs)
	if ct.ComplexContent != nil {
		out.ComplexContent = convertDerivation(ct.ComplexContent)
	}
	if ct.SimpleContent != nil {
		out.SimpleContent = convertDerivation(ct.SimpleContent)
	}
	return out
}

func convertDerivation(cm *xmlContentModel) *Derivation {
	var (
		src  *xmlDerivation
		kind DerivationKind
	)
	switch {
	case cm.Extension != nil:
		src, kind = cm.Extension, DerivationExtension
	case cm.Restriction != nil:
		src, kind = cm.Restriction, DerivationRestriction
	default:
		return nil
	}
	return &Derivation{
		Kind:               kind,
		Base:               src.Base,
		Particle:           convertBodyParticle(src.Sequence, src.Choice, src.All, src.Group),
		Attributes:         convertAttributes(src.Attributes),
		AttributeGroupRefs: convertAttrGroupRefs(src.AttrGroupRefs),
	}
}

func convertBodyParticle(seq, choice, all *xmlParticleBody, group *xmlGroupRef) Particle {
	switch {
	case seq != nil:
		return &Sequence{Particles: convertChildren(seq.children)}
	case choice != nil:
		return &Choice{Particles: convertChildren(choice.children)}
	case all != nil:
		return &All{Particles: convertChildren(all.children)}
	case group != nil && group.Ref != "":
		return &GroupRef{Ref: group.Ref}
	default:
		return nil
	}
}

func convertChildren(children []xmlParticleChild) []Particle {
	var out []Particle
	for _, child := range children {
		switch {
		case child.element != nil:
			out = append(out, convertElement(child.element))
		case child.sequence != nil:
			out = append(out, &Sequence{Particles: convertChildren(child.sequence.children)})
		case child.choice != nil:
			out = append(out, &Choice{Particles: convertChildren(child.choice.children)})
		case child.all != nil:
			out = append(out, &All{Particles: convertChildren(child.all.children)})
		case child.group != nil && child.group.Ref != "":
			out = append(out, &GroupRef{Ref: child.group.Ref})
		}
	}
	return out
}

func convertSimpleType(st *xmlSimpleType) *SimpleType {
	out := &SimpleType{
		Name:          st.Name,
		Documentation: strings.TrimSpace(st.Annotation.text()),
	}
	if st.Restriction != nil {
		out.RestrictionBase = st.Restriction.Base
		for _, enum := range st.Restriction.Enumerations {
			out.Enumerations = append(out.Enumerations, enum.Value)
		}
	}
	if st.List != nil {
		out.ListItemType = st.List.ItemType
	}
	if st.Union != nil {
		out.UnionMemberTypes = strings.Fields(st.Union.MemberTypes)
	}
	return out
}

func convertAttributes(attrs []xmlAttribute) []*Attribute {
	var out []*Attribute
	for i := range attrs {
		out = append(out, convertAttribute(&attrs[i]))
	}
	return out
}

func convertAttribute(attr *xmlAttribute) *Attribute {
	out := &Attribute{
		Name:          attr.Name,
		Ref:           attr.Ref,
		Type:          attr.Type,
		Use:           attr.Use,
		Default:       attr.Default,
		Fixed:         attr.Fixed,
		Documentation: strings.TrimSpace(attr.Annotation.text()),
	}
	if attr.SimpleType != nil {
		out.SimpleType = convertSimpleType(attr.SimpleType)
	}
	return out
}

func convertAttrGroupRefs(refs []xmlAttrGroupRef) []string {
	var out []string
	for _, ref := range refs {
		if ref.Ref != "" {
			out = append(out, ref.Ref)
		}
	}
	return out
}

func convertAttrGroup(ag *xmlAttrGroup) *AttributeGroup {
	return &AttributeGroup{
		Name:               ag.Name,
		Documentation:      strings.TrimSpace(ag.Annotation.text()),
		Attributes:         convertAttributes(ag.Attributes),
		AttributeGroupRefs: convertAttrGroupRefs(ag.AttrGroupRefs),
	}
}

func convertNamedGroup(g *xmlNamedGroup) *ModelGroup {
	return &ModelGroup{
		Name:          g.Name,
		Documentation: strings.TrimSpace(g.Annotation.text()),
		Particle:      convertBodyParticle(g.Sequence, g.Choice, g.All, nil),
	}
}
