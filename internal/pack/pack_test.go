package pack

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/jacoelho/xsdrepo/internal/location"
	"github.com/jacoelho/xsdrepo/internal/nsregistry"
	"github.com/jacoelho/xsdrepo/internal/schema"
	"github.com/jacoelho/xsdrepo/internal/typeindex"
)

func testSnapshot() *Snapshot {
	doc := &schema.Document{
		Location:        "person.xsd",
		TargetNamespace: "http://example.com/person",
		NamespaceDecls: map[string]string{
			"p":  "http://example.com/person",
			"xs": schema.XSDNamespace,
		},
		ComplexTypes: []*schema.ComplexType{
			{
				Name:          "PersonType",
				Documentation: "A person.",
				Particle: &schema.Sequence{Particles: []schema.Particle{
					&schema.Element{Name: "name", Type: "xs:string"},
					&schema.Element{Name: "age", Type: "p:AgeType"},
				}},
			},
			{
				Name: "EmployeeType",
				ComplexContent: &schema.Derivation{
					Kind: schema.DerivationExtension,
					Base: "p:PersonType",
					Particle: &schema.Sequence{Particles: []schema.Particle{
						&schema.Element{Name: "employeeId", Type: "xs:string"},
					}},
				},
			},
		},
		SimpleTypes: []*schema.SimpleType{
			{Name: "AgeType", RestrictionBase: "xs:integer"},
		},
	}
	return &Snapshot{
		Entries:    []string{"person.xsd"},
		Namespaces: []nsregistry.Mapping{{Prefix: "p", URI: "http://example.com/person", Explicit: true}},
		LocationRules: []location.Rule{
			location.Exact("http://example.com/person.xsd", "person.xsd"),
			location.Pattern(`http://example.com/(.+)\.xsd`, "schemas/$1.xsd"),
		},
		Documents: []*schema.Document{doc},
		Index: []IndexEntry{
			{Namespace: "http://example.com/person", Local: "PersonType", Category: typeindex.CategoryComplexType, SchemaFile: "person.xsd", Documentation: "A person."},
			{Namespace: "http://example.com/person", Local: "EmployeeType", Category: typeindex.CategoryComplexType, SchemaFile: "person.xsd"},
			{Namespace: "http://example.com/person", Local: "AgeType", Category: typeindex.CategorySimpleType, SchemaFile: "person.xsd"},
		},
		Sources: map[string][]byte{
			"person.xsd": []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`),
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatGob, FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			ctx := context.Background()
			url := fmt.Sprintf("mem://localhost/pack/roundtrip-%s.xsdpkg", format)
			codec := NewCodec()

			meta, err := codec.Write(ctx, url, testSnapshot(), Options{
				Name:    "person-schemas",
				Version: "1.2.0",
				Format:  format,
			})
			require.NoError(t, err)
			assert.NotEmpty(t, meta.ID)
			assert.Equal(t, format, meta.Format)
			assert.Equal(t, BundleAll, meta.Bundling)
			assert.Equal(t, Resolved, meta.Resolution)

			pkg, err := codec.Read(ctx, url)
			require.NoError(t, err)
			assert.Equal(t, meta.ID, pkg.Metadata.ID)
			assert.Equal(t, "person-schemas", pkg.Metadata.Name)
			assert.Equal(t, "1.2.0", pkg.Metadata.Version)
			assert.Equal(t, []string{"person.xsd"}, pkg.Entries)
			require.Len(t, pkg.Namespaces, 1)
			assert.Equal(t, nsregistry.Mapping{Prefix: "p", URI: "http://example.com/person", Explicit: true}, pkg.Namespaces[0])
			require.Len(t, pkg.LocationRules, 2)
			assert.False(t, pkg.LocationRules[0].Pattern)
			assert.True(t, pkg.LocationRules[1].Pattern)
			assert.Equal(t, "schemas/$1.xsd", pkg.LocationRules[1].To)

			require.Len(t, pkg.Documents, 1)
			doc := pkg.Documents[0]
			assert.Equal(t, "person.xsd", doc.Location)
			assert.Equal(t, "http://example.com/person", doc.TargetNamespace)
			assert.Equal(t, "http://example.com/person", doc.NamespaceDecls["p"])
			require.Len(t, doc.ComplexTypes, 2)

			person := doc.ComplexTypes[0]
			assert.Equal(t, "PersonType", person.Name)
			assert.Equal(t, "A person.", person.Documentation)
			seq, ok := person.Particle.(*schema.Sequence)
			require.True(t, ok)
			require.Len(t, seq.Particles, 2)
			name, ok := seq.Particles[0].(*schema.Element)
			require.True(t, ok)
			assert.Equal(t, "name", name.Name)

			employee := doc.ComplexTypes[1]
			require.NotNil(t, employee.ComplexContent)
			assert.Equal(t, schema.DerivationExtension, employee.ComplexContent.Kind)
			assert.Equal(t, "p:PersonType", employee.ComplexContent.Base)

			require.Len(t, pkg.Index, 3)
			assert.Equal(t, "PersonType", pkg.Index[0].Local)
			assert.Equal(t, typeindex.CategoryComplexType, pkg.Index[0].Category)

			require.Contains(t, pkg.Sources, "person.xsd")
		})
	}
}

func TestWriteBareSkipsDocuments(t *testing.T) {
	ctx := context.Background()
	url := "mem://localhost/pack/bare.xsdpkg"
	codec := NewCodec()

	_, err := codec.Write(ctx, url, testSnapshot(), Options{
		Name:       "person-schemas",
		Version:    "1.0.0",
		Resolution: Bare,
	})
	require.NoError(t, err)

	pkg, err := codec.Read(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, Bare, pkg.Metadata.Resolution)
	assert.Empty(t, pkg.Documents)
	assert.Empty(t, pkg.Index)
	require.Contains(t, pkg.Sources, "person.xsd")

	f, err := pkg.SourceFS().Open("person.xsd")
	require.NoError(t, err)
	defer f.Close()
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(content), "xs:schema")
}

func TestWriteExternalBundlingSkipsSources(t *testing.T) {
	ctx := context.Background()
	url := "mem://localhost/pack/external.xsdpkg"
	codec := NewCodec()

	_, err := codec.Write(ctx, url, testSnapshot(), Options{
		Name:     "person-schemas",
		Version:  "1.0.0",
		Bundling: BundleExternal,
	})
	require.NoError(t, err)

	pkg, err := codec.Read(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, BundleExternal, pkg.Metadata.Bundling)
	assert.Empty(t, pkg.Sources)
	require.Len(t, pkg.Documents, 1)
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	codec := NewCodec()
	_, err := codec.Write(context.Background(), "mem://localhost/pack/bad.xsdpkg", testSnapshot(), Options{
		Name:    "person-schemas",
		Version: "1.0.0",
		Format:  Format("xml"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestReadRejectsNonArchive(t *testing.T) {
	ctx := context.Background()
	url := "mem://localhost/pack/garbage.xsdpkg"
	require.NoError(t, afs.New().Upload(ctx, url, file.DefaultFileOsMode, bytes.NewReader([]byte("not a zip"))))

	_, err := NewCodec().Read(ctx, url)
	require.Error(t, err)
}

func TestReadMissingPackage(t *testing.T) {
	_, err := NewCodec().Read(context.Background(), "mem://localhost/pack/absent.xsdpkg")
	require.Error(t, err)
}
