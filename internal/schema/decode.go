package schema

import (
	"encoding/xml"
	"fmt"
	"io"
)

// XSDNamespace is the W3C XML Schema namespace.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// Decode parses one XSD document. The location becomes the document
// identity and is recorded verbatim.
func Decode(r io.Reader, location string) (*Document, error) {
	var root xmlSchema
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", location, err)
	}
	if root.XMLName.Local != "schema" {
		return nil, fmt.Errorf("decode schema %s: root element is %q, want schema", location, root.XMLName.Local)
	}
	return root.document(location), nil
}

type xmlSchema struct {
	XMLName              xml.Name          `xml:"schema"`
	TargetNamespace      string            `xml:"targetNamespace,attr"`
	ElementFormDefault   string            `xml:"elementFormDefault,attr"`
	AttributeFormDefault string            `xml:"attributeFormDefault,attr"`
	Attrs                []xml.Attr        `xml:",any,attr"`
	Imports              []xmlImport       `xml:"import"`
	Includes             []xmlInclude      `xml:"include"`
	Elements             []xmlElement      `xml:"element"`
	ComplexTypes         []xmlComplexType  `xml:"complexType"`
	SimpleTypes          []xmlSimpleType   `xml:"simpleType"`
	AttributeGroups      []xmlAttrGroup    `xml:"attributeGroup"`
	Groups               []xmlNamedGroup   `xml:"group"`
	Attributes           []xmlAttribute    `xml:"attribute"`
	Annotation           *xmlAnnotation    `xml:"annotation"`
}

type xmlImport struct {
	Namespace      string `xml:"namespace,attr"`
	SchemaLocation string `xml:"schemaLocation,attr"`
}

type xmlInclude struct {
	SchemaLocation string `xml:"schemaLocation,attr"`
}

type xmlAnnotation struct {
	Documentation []string `xml:"documentation"`
}

func (a *xmlAnnotation) text() string {
	if a == nil || len(a.Documentation) == 0 {
		return ""
	}
	return a.Documentation[0]
}

type xmlElement struct {
	Name        string          `xml:"name,attr"`
	Ref         string          `xml:"ref,attr"`
	Type        string          `xml:"type,attr"`
	MinOccurs   string          `xml:"minOccurs,attr"`
	MaxOccurs   string          `xml:"maxOccurs,attr"`
	Annotation  *xmlAnnotation  `xml:"annotation"`
	ComplexType *xmlComplexType `xml:"complexType"`
	SimpleType  *xmlSimpleType  `xml:"simpleType"`
}

type xmlGroupRef struct {
	Ref        string         `xml:"ref,attr"`
	Annotation *xmlAnnotation `xml:"annotation"`
}

// xmlParticleBody is the shared body of sequence/choice/all
// containers. A custom unmarshaler keeps child particles in document
// order, which separate per-kind slices would lose.
type xmlParticleBody struct {
	children []xmlParticleChild
}

type xmlParticleChild struct {
	element  *xmlElement
	sequence *xmlParticleBody
	choice   *xmlParticleBody
	all      *xmlParticleBody
	group    *xmlGroupRef
}

// UnmarshalXML decodes container children in document order.
func (b *xmlParticleBody) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeParticleChild(d, t)
			if err != nil {
				return err
			}
			if child != nil {
				b.children = append(b.children, *child)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func decodeParticleChild(d *xml.Decoder, start xml.StartElement) (*xmlParticleChild, error) {
	switch start.Name.Local {
	case "element":
		var el xmlElement
		if err := d.DecodeElement(&el, &start); err != nil {
			return nil, err
		}
		return &xmlParticleChild{element: &el}, nil
	case "sequence":
		var body xmlParticleBody
		if err := d.DecodeElement(&body, &start); err != nil {
			return nil, err
		}
		return &xmlParticleChild{sequence: &body}, nil
	case "choice":
		var body xmlParticleBody
		if err := d.DecodeElement(&body, &start); err != nil {
			return nil, err
		}
		return &xmlParticleChild{choice: &body}, nil
	case "all":
		var body xmlParticleBody
		if err := d.DecodeElement(&body, &start); err != nil {
			return nil, err
		}
		return &xmlParticleChild{all: &body}, nil
	case "group":
		var ref xmlGroupRef
		if err := d.DecodeElement(&ref, &start); err != nil {
			return nil, err
		}
		return &xmlParticleChild{group: &ref}, nil
	default:
		// annotations, wildcards and facet-level constructs are
		// skipped; they carry no indexable references.
		if err := d.Skip(); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

type xmlComplexType struct {
	Name           string             `xml:"name,attr"`
	Abstract       bool               `xml:"abstract,attr"`
	Mixed          bool               `xml:"mixed,attr"`
	Annotation     *xmlAnnotation     `xml:"annotation"`
	Sequence       *xmlParticleBody   `xml:"sequence"`
	Choice         *xmlParticleBody   `xml:"choice"`
	All            *xmlParticleBody   `xml:"all"`
	Group          *xmlGroupRef       `xml:"group"`
	ComplexContent *xmlContentModel   `xml:"complexContent"`
	SimpleContent  *xmlContentModel   `xml:"simpleContent"`
	Attributes     []xmlAttribute     `xml:"attribute"`
	AttrGroupRefs  []xmlAttrGroupRef  `xml:"attributeGroup"`
}

type xmlContentModel struct {
	Extension   *xmlDerivation `xml:"extension"`
	Restriction *xmlDerivation `xml:"restriction"`
}

type xmlDerivation struct {
	Base          string            `xml:"base,attr"`
	Sequence      *xmlParticleBody  `xml:"sequence"`
	Choice        *xmlParticleBody  `xml:"choice"`
	All           *xmlParticleBody  `xml:"all"`
	Group         *xmlGroupRef      `xml:"group"`
	Attributes    []xmlAttribute    `xml:"attribute"`
	AttrGroupRefs []xmlAttrGroupRef `xml:"attributeGroup"`
}

type xmlAttribute struct {
	Name       string         `xml:"name,attr"`
	Ref        string         `xml:"ref,attr"`
	Type       string         `xml:"type,attr"`
	Use        string         `xml:"use,attr"`
	Default    string         `xml:"default,attr"`
	Fixed      string         `xml:"fixed,attr"`
	Annotation *xmlAnnotation `xml:"annotation"`
	SimpleType *xmlSimpleType `xml:"simpleType"`
}

type xmlAttrGroupRef struct {
	Ref string `xml:"ref,attr"`
}

type xmlAttrGroup struct {
	Name          string            `xml:"name,attr"`
	Annotation    *xmlAnnotation    `xml:"annotation"`
	Attributes    []xmlAttribute    `xml:"attribute"`
	AttrGroupRefs []xmlAttrGroupRef `xml:"attributeGroup"`
}

type xmlNamedGroup struct {
	Name       string           `xml:"name,attr"`
	Annotation *xmlAnnotation   `xml:"annotation"`
	Sequence   *xmlParticleBody `xml:"sequence"`
	Choice     *xmlParticleBody `xml:"choice"`
	All        *xmlParticleBody `xml:"all"`
}

type xmlSimpleType struct {
	Name        string             `xml:"name,attr"`
	Annotation  *xmlAnnotation     `xml:"annotation"`
	Restriction *xmlSimpleRestrict `xml:"restriction"`
	List        *xmlSimpleList     `xml:"list"`
	Union       *xmlSimpleUnion    `xml:"union"`
}

type xmlSimpleRestrict struct {
	Base         string           `xml:"base,attr"`
	Enumerations []xmlFacetValue  `xml:"enumeration"`
}

type xmlFacetValue struct {
	Value string `xml:"value,attr"`
}

type xmlSimpleList struct {
	ItemType string `xml:"itemType,attr"`
}

type xmlSimpleUnion struct {
	MemberTypes string `xml:"memberTypes,attr"`
}
