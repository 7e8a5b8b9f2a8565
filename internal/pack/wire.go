package pack

import (
	"github.com/jacoelho/xsdrepo/internal/schema"
	"github.com/jacoelho/xsdrepo/internal/typeindex"
)

// The wire types mirror the schema model with concrete, exported
// fields so one set of structs serves gob, JSON and YAML alike.
// Particles are encoded as a tagged node because the in-memory
// representation is an interface.

type documentWire struct {
	Location             string            `json:"location" yaml:"location"`
	TargetNamespace      string            `json:"target_namespace,omitempty" yaml:"target_namespace,omitempty"`
	ElementFormDefault   int               `json:"element_form_default,omitempty" yaml:"element_form_default,omitempty"`
	AttributeFormDefault int               `json:"attribute_form_default,omitempty" yaml:"attribute_form_default,omitempty"`
	NamespaceDecls       map[string]string `json:"namespace_decls,omitempty" yaml:"namespace_decls,omitempty"`
	Elements             []*elementWire    `json:"elements,omitempty" yaml:"elements,omitempty"`
	ComplexTypes         []*complexWire    `json:"complex_types,omitempty" yaml:"complex_types,omitempty"`
	SimpleTypes          []*simpleWire     `json:"simple_types,omitempty" yaml:"simple_types,omitempty"`
	AttributeGroups      []*attrGroupWire  `json:"attribute_groups,omitempty" yaml:"attribute_groups,omitempty"`
	Groups               []*groupWire      `json:"groups,omitempty" yaml:"groups,omitempty"`
	Attributes           []*attributeWire  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Imports              []directiveWire   `json:"imports,omitempty" yaml:"imports,omitempty"`
	Includes             []directiveWire   `json:"includes,omitempty" yaml:"includes,omitempty"`
}

type directiveWire struct {
	Namespace        string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	SchemaLocation   string `json:"schema_location,omitempty" yaml:"schema_location,omitempty"`
	ResolvedLocation string `json:"resolved_location,omitempty" yaml:"resolved_location,omitempty"`
}

type particleWire struct {
	Kind      string          `json:"kind" yaml:"kind"`
	Ref       string          `json:"ref,omitempty" yaml:"ref,omitempty"`
	Element   *elementWire    `json:"element,omitempty" yaml:"element,omitempty"`
	Particles []*particleWire `json:"particles,omitempty" yaml:"particles,omitempty"`
}

type elementWire struct {
	Name          string       `json:"name,omitempty" yaml:"name,omitempty"`
	Ref           string       `json:"ref,omitempty" yaml:"ref,omitempty"`
	Type          string       `json:"type,omitempty" yaml:"type,omitempty"`
	MinOccurs     string       `json:"min_occurs,omitempty" yaml:"min_occurs,omitempty"`
	MaxOccurs     string       `json:"max_occurs,omitempty" yaml:"max_occurs,omitempty"`
	Documentation string       `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	ComplexType   *complexWire `json:"complex_type,omitempty" yaml:"complex_type,omitempty"`
	SimpleType    *simpleWire  `json:"simple_type,omitempty" yaml:"simple_type,omitempty"`
}

type derivationWire struct {
	Kind               int              `json:"kind" yaml:"kind"`
	Base               string           `json:"base,omitempty" yaml:"base,omitempty"`
	Particle           *particleWire    `json:"particle,omitempty" yaml:"particle,omitempty"`
	Attributes         []*attributeWire `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	AttributeGroupRefs []string         `json:"attribute_group_refs,omitempty" yaml:"attribute_group_refs,omitempty"`
}

type complexWire struct {
	Name               string           `json:"name,omitempty" yaml:"name,omitempty"`
	Abstract           bool             `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Mixed              bool             `json:"mixed,omitempty" yaml:"mixed,omitempty"`
	Documentation      string           `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Particle           *particleWire    `json:"particle,omitempty" yaml:"particle,omitempty"`
	ComplexContent     *derivationWire  `json:"complex_content,omitempty" yaml:"complex_content,omitempty"`
	SimpleContent      *derivationWire  `json:"simple_content,omitempty" yaml:"simple_content,omitempty"`
	Attributes         []*attributeWire `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	AttributeGroupRefs []string         `json:"attribute_group_refs,omitempty" yaml:"attribute_group_refs,omitempty"`
}

type simpleWire struct {
	Name             string   `json:"name,omitempty" yaml:"name,omitempty"`
	Documentation    string   `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	RestrictionBase  string   `json:"restriction_base,omitempty" yaml:"restriction_base,omitempty"`
	Enumerations     []string `json:"enumerations,omitempty" yaml:"enumerations,omitempty"`
	ListItemType     string   `json:"list_item_type,omitempty" yaml:"list_item_type,omitempty"`
	UnionMemberTypes []string `json:"union_member_types,omitempty" yaml:"union_member_types,omitempty"`
}

type attributeWire struct {
	Name          string      `json:"name,omitempty" yaml:"name,omitempty"`
	Ref           string      `json:"ref,omitempty" yaml:"ref,omitempty"`
	Type          string      `json:"type,omitempty" yaml:"type,omitempty"`
	Use           string      `json:"use,omitempty" yaml:"use,omitempty"`
	Default       string      `json:"default,omitempty" yaml:"default,omitempty"`
	Fixed         string      `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Documentation string      `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	SimpleType    *simpleWire `json:"simple_type,omitempty" yaml:"simple_type,omitempty"`
}

type attrGroupWire struct {
	Name               string           `json:"name,omitempty" yaml:"name,omitempty"`
	Documentation      string           `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Attributes         []*attributeWire `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	AttributeGroupRefs []string         `json:"attribute_group_refs,omitempty" yaml:"attribute_group_refs,omitempty"`
}

type groupWire struct {
	Name          string        `json:"name,omitempty" yaml:"name,omitempty"`
	Documentation string        `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Particle      *particleWire `json:"particle,omitempty" yaml:"particle,omitempty"`
}

// IndexEntry is the serialized form of one type-index entry. The
// definition reference is re-linked against the deserialized
// documents on load, preserving the exact last-write-wins outcome
// the index had when packaged.
type IndexEntry struct {
	Namespace     string             `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Local         string             `json:"local" yaml:"local"`
	Category      typeindex.Category `json:"category" yaml:"category"`
	SchemaFile    string             `json:"schema_file" yaml:"schema_file"`
	Documentation string             `json:"documentation,omitempty" yaml:"documentation,omitempty"`
}

func toDocumentWire(doc *schema.Document) *documentWire {
	w := &documentWire{
		Location:             doc.Location,
		TargetNamespace:      doc.TargetNamespace,
		ElementFormDefault:   int(doc.ElementFormDefault),
		AttributeFormDefault: int(doc.AttributeFormDefault),
		NamespaceDecls:       doc.NamespaceDecls,
	}
	for _, el := range doc.Elements {
		w.Elements = append(w.Elements, toElementWire(el))
	}
	for _, ct := range doc.ComplexTypes {
		w.ComplexTypes = append(w.ComplexTypes, toComplexWire(ct))
	}
	for _, st := range doc.SimpleTypes {
		w.SimpleTypes = append(w.SimpleTypes, toSimpleWire(st))
	}
	for _, ag := range doc.AttributeGroups {
		w.AttributeGroups = append(w.AttributeGroups, toAttrGroupWire(ag))
	}
	for _, g := range doc.Groups {
		w.Groups = append(w.Groups, toGroupWire(g))
	}
	for _, attr := range doc.Attributes {
		w.Attributes = append(w.Attributes, toAttributeWire(attr))
	}
	for _, imp := range doc.Imports {
		w.Imports = append(w.Imports, directiveWire{
			Namespace:        imp.Namespace,
			SchemaLocation:   imp.SchemaLocation,
			ResolvedLocation: imp.ResolvedLocation,
		})
	}
	for _, inc := range doc.Includes {
		w.Includes = append(w.Includes, directiveWire{
			SchemaLocation:   inc.SchemaLocation,
			ResolvedLocation: inc.ResolvedLocation,
		})
	}
	return w
}

func fromDocumentWire(w *documentWire) *schema.Document {
	doc := &schema.Document{
		Location:             w.Location,
		TargetNamespace:      w.TargetNamespace,
		ElementFormDefault:   schema.Form(w.ElementFormDefault),
		AttributeFormDefault: schema.Form(w.AttributeFormDefault),
		NamespaceDecls:       w.NamespaceDecls,
	}
	if doc.NamespaceDecls == nil {
		doc.NamespaceDecls = make(map[string]string)
	}
	for _, el := range w.Elements {
		doc.Elements = append(doc.Elements, fromElementWire(el))
	}
	for _, ct := range w.ComplexTypes {
		doc.ComplexTypes = append(doc.ComplexTypes, fromComplexWire(ct))
	}
	for _, st := range w.SimpleTypes {
		doc.SimpleTypes = append(doc.SimpleTypes, fromSimpleWire(st))
	}
	for _, ag := range w.AttributeGroups {
		doc.AttributeGroups = append(doc.AttributeGroups, fromAttrGroupWire(ag))
	}
	for _, g := range w.Groups {
		doc.Groups = append(doc.Groups, fromGroupWire(g))
	}
	for _, attr := range w.Attributes {
		doc.Attributes = append(doc.Attributes, fromAttributeWire(attr))
	}
	for _, imp := range w.Imports {
		doc.Imports = append(doc.Imports, schema.Import{
			Namespace:        imp.Namespace,
			SchemaLocation:   imp.SchemaLocation,
			ResolvedLocation: imp.ResolvedLocation,
		})
	}
	for _, inc := range w.Includes {
		doc.Includes = append(doc.Includes, schema.Include{
			SchemaLocation:   inc.SchemaLocation,
			ResolvedLocation: inc.ResolvedLocation,
		})
	}
	return doc
}

func toParticleWire(p schema.Particle) *particleWire {
	switch particle := p.(type) {
	case nil:
		return nil
	case *schema.Sequence:
		return &particleWire{Kind: "sequence", Particles: toParticleWires(particle.Particles)}
	case *schema.Choice:
		return &particleWire{Kind: "choice", Particles: toParticleWires(particle.Particles)}
	case *schema.All:
		return &particleWire{Kind: "all", Particles: toParticleWires(particle.Particles)}
	case *schema.GroupRef:
		return &particleWire{Kind: "group", Ref: particle.Ref}
	case *schema.Element:
		return &particleWire{Kind: "element", Element: toElementWire(particle)}
	default:
		return nil
	}
}

func toParticleWires(particles []schema.Particle) []*particleWire {
	var out []*particleWire
	for _, p := range particles {
		if w := toParticleWire(p); w != nil {
			out = append(out, w)
		}
	}
	return out
}

// fromParticleWire rebuilds a particle. Unknown kinds decode to nil
// so archives written by newer versions degrade to missing particles
// instead of failing the whole load.
func fromParticleWire(w *particleWire) schema.Particle {
	if w == nil {
		return nil
	}
	switch w.Kind {
	case "sequence":
		return &schema.Sequence{Particles: fromParticleWires(w.Particles)}
	case "choice":
		return &schema.Choice{Particles: fromParticleWires(w.Particles)}
	case "all":
		return &schema.All{Particles: fromParticleWires(w.Particles)}
	case "group":
		return &schema.GroupRef{Ref: w.Ref}
	case "element":
		return fromElementWire(w.Element)
	default:
		return nil
	}
}

func fromParticleWires(wires []*particleWire) []schema.Particle {
	var out []schema.Particle
	for _, w := range wires {
		if p := fromParticleWire(w); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func toElementWire(el *schema.Element) *elementWire {
	if el == nil {
		return nil
	}
	w := &elementWire{
		Name:          el.Name,
		Ref:           el.Ref,
		Type:          el.Type,
		MinOccurs:     el.MinOccurs,
		MaxOccurs:     el.MaxOccurs,
		Documentation: el.Documentation,
	}
	if el.ComplexType != nil {
		w.ComplexType = toComplexWire(el.ComplexType)
	}
	if el.SimpleType != nil {
		w.SimpleType = toSimpleWire(el.SimpleType)
	}
	return w
}

func fromElementWire(w *elementWire) *schema.Element {
	if w == nil {
		return nil
	}
	el := &schema.Element{
		Name:          w.Name,
		Ref:           w.Ref,
		Type:          w.Type,
		MinOccurs:     w.MinOccurs,
		MaxOccurs:     w.MaxOccurs,
		Documentation: w.Documentation,
	}
	if w.ComplexType != nil {
		el.ComplexType = fromComplexWire(w.ComplexType)
	}
	if w.SimpleType != nil {
		el.SimpleType = fromSimpleWire(w.SimpleType)
	}
	return el
}

func toDerivationWire(d *schema.Derivation) *derivationWire {
	if d == nil {
		return nil
	}
	return &derivationWire{
		Kind:               int(d.Kind),
		Base:               d.Base,
		Particle:           toParticleWire(d.Particle),
		Attributes:         toAttributeWires(d.Attributes),
		AttributeGroupRefs: d.AttributeGroupRefs,
	}
}

func fromDerivationWire(w *derivationWire) *schema.Derivation {
	if w == nil {
		return nil
	}
	return &schema.Derivation{
		Kind:               schema.DerivationKind(w.Kind),
		Base:               w.Base,
		Particle:           fromParticleWire(w.Particle),
		Attributes:         fromAttributeWires(w.Attributes),
		AttributeGroupRefs: w.AttributeGroupRefs,
	}
}

func toComplexWire(ct *schema.ComplexType) *complexWire {
	if ct == nil {
		return nil
	}
	return &complexWire{
		Name:               ct.Name,
		Abstract:           ct.Abstract,
		Mixed:              ct.Mixed,
		Documentation:      ct.Documentation,
		Particle:           toParticleWire(ct.Particle),
		ComplexContent:     toDerivationWire(ct.ComplexContent),
		SimpleContent:      toDerivationWire(ct.SimpleContent),
		Attributes:         toAttributeWires(ct.Attributes),
		AttributeGroupRefs: ct.AttributeGroupRefs,
	}
}

func fromComplexWire(w *complexWire) *schema.ComplexType {
	if w == nil {
		return nil
	}
	return &schema.ComplexType{
		Name:               w.Name,
		Abstract:           w.Abstract,
		Mixed:              w.Mixed,
		Documentation:      w.Documentation,
		Particle:           fromParticleWire(w.Particle),
		ComplexContent:     fromDerivationWire(w.ComplexContent),
		SimpleContent:      fromDerivationWire(w.SimpleContent),
		Attributes:         fromAttributeWires(w.Attributes),
		AttributeGroupRefs: w.AttributeGroupRefs,
	}
}

func toSimpleWire(st *schema.SimpleType) *simpleWire {
	if st == nil {
		return nil
	}
	return &simpleWire{
		Name:             st.Name,
		Documentation:    st.Documentation,
		RestrictionBase:  st.RestrictionBase,
		Enumerations:     st.Enumerations,
		ListItemType:     st.ListItemType,
		UnionMemberTypes: st.UnionMemberTypes,
	}
}

func fromSimpleWire(w *simpleWire) *schema.SimpleType {
	if w == nil {
		return nil
	}
	return &schema.SimpleType{
		Name:             w.Name,
		Documentation:    w.Documentation,
		RestrictionBase:  w.RestrictionBase,
		Enumerations:     w.Enumerations,
		ListItemType:     w.ListItemType,
		UnionMemberTypes: w.UnionMemberTypes,
	}
}

func toAttributeWires(attrs []*schema.Attribute) []*attributeWire {
	var out []*attributeWire
	for _, attr := range attrs {
		out = append(out, toAttributeWire(attr))
	}
	return out
}

func fromAttributeWires(wires []*attributeWire) []*schema.Attribute {
	var out []*schema.Attribute
	for _, w := range wires {
		out = append(out, fromAttributeWire(w))
	}
	return out
}

func toAttributeWire(attr *schema.Attribute) *attributeWire {
	if attr == nil {
		return nil
	}
	w := &attributeWire{
		Name:          attr.Name,
		Ref:           attr.Ref,
		Type:          attr.Type,
		Use:           attr.Use,
		Default:       attr.Default,
		Fixed:         attr.Fixed,
		Documentation: attr.Documentation,
	}
	if attr.SimpleType != nil {
		w.SimpleType = toSimpleWire(attr.SimpleType)
	}
	return w
}

func fromAttributeWire(w *attributeWire) *schema.Attribute {
	if w == nil {
		return nil
	}
	attr := &schema.Attribute{
		Name:          w.Name,
		Ref:           w.Ref,
		Type:          w.Type,
		Use:           w.Use,
		Default:       w.Default,
		Fixed:         w.Fixed,
		Documentation: w.Documentation,
	}
	if w.SimpleType != nil {
		attr.SimpleType = fromSimpleWire(w.SimpleType)
	}
	return attr
}

func toAttrGroupWire(ag *schema.AttributeGroup) *attrGroupWire {
	return &attrGroupWire{
		Name:               ag.Name,
		Documentation:      ag.Documentation,
		Attributes:         toAttributeWires(ag.Attributes),
		AttributeGroupRefs: ag.AttributeGroupRefs,
	}
}

func fromAttrGroupWire(w *attrGroupWire) *schema.AttributeGroup {
	return &schema.AttributeGroup{
		Name:               w.Name,
		Documentation:      w.Documentation,
		Attributes:         fromAttributeWires(w.Attributes),
		AttributeGroupRefs: w.AttributeGroupRefs,
	}
}

func toGroupWire(g *schema.ModelGroup) *groupWire {
	return &groupWire{
		Name:          g.Name,
		Documentation: g.Documentation,
		Particle:      toParticleWire(g.Particle),
	}
}

func fromGroupWire(w *groupWire) *schema.ModelGroup {
	return &schema.ModelGroup{
		Name:          w.Name,
		Documentation: w.Documentation,
		Particle:      fromParticleWire(w.Particle),
	}
}
