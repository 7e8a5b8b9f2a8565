// Package schema holds the parsed XSD document model.
//
// The model is a plain, immutable tree of named definitions and
// content-model particles. Particles are a closed set of kinds
// (sequence, choice, all, group reference, element) so content-model
// walks are exhaustive switches instead of runtime capability probes.
// Only structure relevant to indexing and dependency analysis is
// retained; facet-level detail is out of scope.
package schema

// Form is the element/attribute form default of a document.
type Form int

const (
	// Unqualified is the XSD default form.
	Unqualified Form = iota
	// Qualified requires namespace-qualified local declarations.
	Qualified
)

// Document is one parsed XSD file. The resolved location is its
// identity within a set. Documents are never mutated after parse.
type Document struct {
	Location             string
	TargetNamespace      string
	ElementFormDefault   Form
	AttributeFormDefault Form
	NamespaceDecls       map[string]string

	Elements        []*Element
	ComplexTypes    []*ComplexType
	SimpleTypes     []*SimpleType
	AttributeGroups []*AttributeGroup
	Groups          []*ModelGroup
	Attributes      []*Attribute

	Imports  []Import
	Includes []Include
}

// NamespaceDeclarations returns the document's xmlns declarations,
// keyed by prefix ("" for the default namespace).
func (d *Document) NamespaceDeclarations() map[string]string {
	return d.NamespaceDecls
}

// Import is an xs:import directive. ResolvedLocation is filled in by
// the loader once the referenced document has been located.
type Import struct {
	Namespace        string
	SchemaLocation   string
	ResolvedLocation string
}

// Include is an xs:include directive.
type Include struct {
	SchemaLocation   string
	ResolvedLocation string
}

// Particle is one content-model building block. The concrete kinds
// are Sequence, Choice, All, GroupRef and Element.
type Particle interface {
	particle()
}

// Sequence is an ordered particle container.
type Sequence struct {
	Particles []Particle
}

// Choice is an alternative particle container.
type Choice struct {
	Particles []Particle
}

// All is an unordered particle container.
type All struct {
	Particles []Particle
}

// GroupRef references a named model group.
type GroupRef struct {
	Ref string
}

func (*Sequence) particle() {}
func (*Choice) particle()   {}
func (*All) particle()      {}
func (*GroupRef) particle() {}
func (*Element) particle()  {}

// Element is an element declaration, top-level or local. Local
// elements may reference a global one (Ref) or a named type (Type),
// or carry an inline anonymous type. Inline types are not indexed.
type Element struct {
	Name          string
	Ref           string
	Type          string
	MinOccurs     string
	MaxOccurs     string
	Documentation string
	ComplexType   *ComplexType
	SimpleType    *SimpleType
}

// DerivationKind distinguishes extension from restriction.
type DerivationKind int

const (
	// DerivationExtension is xs:extension.
	DerivationExtension DerivationKind = iota
	// DerivationRestriction is xs:restriction.
	DerivationRestriction
)

// Derivation is the extension or restriction inside complexContent
// or simpleContent.
type Derivation struct {
	Kind               DerivationKind
	Base               string
	Particle           Particle
	Attributes         []*Attribute
	AttributeGroupRefs []string
}

// ComplexType is a complex type definition. Exactly one of Particle,
// ComplexContent or SimpleContent is set, or none for an empty type.
type ComplexType struct {
	Name               string
	Abstract           bool
	Mixed              bool
	Documentation      string
	Particle           Particle
	ComplexContent     *Derivation
	SimpleContent      *Derivation
	Attributes         []*Attribute
	AttributeGroupRefs []string
}

// SimpleType is a simple type definition: a restriction of a base,
// a list, or a union.
type SimpleType struct {
	Name             string
	Documentation    string
	RestrictionBase  string
	Enumerations     []string
	ListItemType     string
	UnionMemberTypes []string
}

// Attribute is an attribute declaration or reference.
type Attribute struct {
	Name          string
	Ref           string
	Type          string
	Use           string
	Default       string
	Fixed         string
	Documentation string
	SimpleType    *SimpleType
}

// AttributeGroup is a named attribute group definition.
type AttributeGroup struct {
	Name               string
	Documentation      string
	Attributes         []*Attribute
	AttributeGroupRefs []string
}

// ModelGroup is a named model group definition.
type ModelGroup struct {
	Name          string
	Documentation string
	Particle      Particle
}

// Definition is any named, top-level definition addressable through
// the type index.
type Definition interface {
	definition()
}

func (*Element) definition()        {}
func (*ComplexType) definition()    {}
func (*SimpleType) definition()     {}
func (*AttributeGroup) definition() {}
func (*ModelGroup) definition()     {}
func (*Attribute) definition()      {}
