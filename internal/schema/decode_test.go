package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personXSD = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:p="http://example.com/person"
           targetNamespace="http://example.com/person"
           elementFormDefault="qualified">
  <xs:import namespace="http://example.com/address" schemaLocation="address.xsd"/>
  <xs:include schemaLocation="person-base.xsd"/>
  <xs:element name="person" type="p:PersonType"/>
  <xs:complexType name="PersonType">
    <xs:annotation>
      <xs:documentation>A person record.</xs:documentation>
    </xs:annotation>
    <xs:sequence>
      <xs:element name="name" type="xs:string"/>
      <xs:choice>
        <xs:element name="email" type="xs:string"/>
        <xs:element name="phone" type="xs:string"/>
      </xs:choice>
      <xs:group ref="p:ContactGroup"/>
    </xs:sequence>
    <xs:attribute name="age" type="xs:integer"/>
    <xs:attributeGroup ref="p:CommonAttrs"/>
  </xs:complexType>
  <xs:complexType name="EmployeeType">
    <xs:complexContent>
      <xs:extension base="p:PersonType">
        <xs:sequence>
          <xs:element name="employer" type="xs:string"/>
        </xs:sequence>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
  <xs:simpleType name="AgeType">
    <xs:restriction base="xs:integer">
      <xs:enumeration value="1"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:attributeGroup name="CommonAttrs">
    <xs:attribute name="id" type="xs:ID"/>
  </xs:attributeGroup>
  <xs:group name="ContactGroup">
    <xs:sequence>
      <xs:element name="contact" type="xs:string"/>
    </xs:sequence>
  </xs:group>
  <xs:attribute name="globalAttr" type="xs:string"/>
</xs:schema>`

func TestDecodePersonSchema(t *testing.T) {
	doc, err := Decode(strings.NewReader(personXSD), "person.xsd")
	require.NoError(t, err)

	assert.Equal(t, "person.xsd", doc.Location)
	assert.Equal(t, "http://example.com/person", doc.TargetNamespace)
	assert.Equal(t, Qualified, doc.ElementFormDefault)
	assert.Equal(t, Unqualified, doc.AttributeFormDefault)

	require.Len(t, doc.Imports, 1)
	assert.Equal(t, "http://example.com/address", doc.Imports[0].Namespace)
	assert.Equal(t, "address.xsd", doc.Imports[0].SchemaLocation)
	require.Len(t, doc.Includes, 1)
	assert.Equal(t, "person-base.xsd", doc.Includes[0].SchemaLocation)

	assert.Equal(t, "http://www.w3.org/2001/XMLSchema", doc.NamespaceDecls["xs"])
	assert.Equal(t, "http://example.com/person", doc.NamespaceDecls["p"])

	require.Len(t, doc.Elements, 1)
	assert.Equal(t, "person", doc.Elements[0].Name)
	assert.Equal(t, "p:PersonType", doc.Elements[0].Type)

	require.Len(t, doc.ComplexTypes, 2)
	person := doc.ComplexTypes[0]
	assert.Equal(t, "PersonType", person.Name)
	assert.Equal(t, "A person record.", person.Documentation)
	require.Len(t, person.Attributes, 1)
	assert.Equal(t, "age", person.Attributes[0].Name)
	assert.Equal(t, []string{"p:CommonAttrs"}, person.AttributeGroupRefs)

	require.Len(t, doc.SimpleTypes, 1)
	assert.Equal(t, "AgeType", doc.SimpleTypes[0].Name)
	assert.Equal(t, "xs:integer", doc.SimpleTypes[0].RestrictionBase)
	assert.Equal(t, []string{"1"}, doc.SimpleTypes[0].Enumerations)

	require.Len(t, doc.AttributeGroups, 1)
	require.Len(t, doc.Groups, 1)
	require.Len(t, doc.Attributes, 1)
	assert.Equal(t, "globalAttr", doc.Attributes[0].Name)
}

func TestDecodePreservesParticleOrder(t *testing.T) {
	doc, err := Decode(strings.NewReader(personXSD), "person.xsd")
	require.NoError(t, err)

	seq, ok := doc.ComplexTypes[0].Particle.(*Sequence)
	require.True(t, ok)
	require.Len(t, seq.Particles, 3)

	el, ok := seq.Particles[0].(*Element)
	require.True(t, ok)
	assert.Equal(t, "name", el.Name)

	choice, ok := seq.Particles[1].(*Choice)
	require.True(t, ok)
	assert.Len(t, choice.Particles, 2)

	group, ok := seq.Particles[2].(*GroupRef)
	require.True(t, ok)
	assert.Equal(t, "p:ContactGroup", group.Ref)
}

func TestDecodeExtension(t *testing.T) {
	doc, err := Decode(strings.NewReader(personXSD), "person.xsd")
	require.NoError(t, err)

	employee := doc.ComplexTypes[1]
	require.NotNil(t, employee.ComplexContent)
	assert.Equal(t, DerivationExtension, employee.ComplexContent.Kind)
	assert.Equal(t, "p:PersonType", employee.ComplexContent.Base)
	require.NotNil(t, employee.ComplexContent.Particle)
}

func TestDecodeRejectsNonSchemaRoot(t *testing.T) {
	_, err := Decode(strings.NewReader(`<root/>`), "x.xsd")
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedXML(t *testing.T) {
	_, err := Decode(strings.NewReader(`<xs:schema`), "x.xsd")
	assert.Error(t, err)
}

func TestResolveReference(t *testing.T) {
	doc := &Document{
		TargetNamespace: "urn:tns",
		NamespaceDecls:  map[string]string{"p": "urn:p"},
	}

	ns, local, ok := doc.ResolveReference("p:Foo")
	require.True(t, ok)
	assert.Equal(t, "urn:p", ns)
	assert.Equal(t, "Foo", local)

	// bare references fall back to the target namespace.
	ns, local, ok = doc.ResolveReference("Foo")
	require.True(t, ok)
	assert.Equal(t, "urn:tns", ns)
	assert.Equal(t, "Foo", local)

	_, _, ok = doc.ResolveReference("zz:Foo")
	assert.False(t, ok)

	// a declared default namespace wins over the target namespace.
	doc.NamespaceDecls[""] = "urn:default"
	ns, _, ok = doc.ResolveReference("Foo")
	require.True(t, ok)
	assert.Equal(t, "urn:default", ns)
}
