package schemaset

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/xsdrepo/internal/location"
)

func schemaFile(tns string, body string) *fstest.MapFile {
	data := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="` + tns + `">` + body + `</xs:schema>`
	return &fstest.MapFile{Data: []byte(data)}
}

func TestLoadTransitive(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xsd": schemaFile("urn:a", `<xs:import namespace="urn:b" schemaLocation="b.xsd"/>`),
		"b.xsd": schemaFile("urn:b", `<xs:element name="b" type="xs:string"/>`),
	}
	set := New(fsys, nil)
	require.NoError(t, set.Load("a.xsd"))

	assert.Equal(t, 2, set.Len())
	doc, ok := set.Document("a.xsd")
	require.True(t, ok)
	assert.Equal(t, "b.xsd", doc.Imports[0].ResolvedLocation)
}

func TestDiamondParsedOnce(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xsd": schemaFile("urn:a",
			`<xs:import namespace="urn:b" schemaLocation="b.xsd"/>`+
				`<xs:import namespace="urn:c" schemaLocation="c.xsd"/>`),
		"b.xsd": schemaFile("urn:b", `<xs:import namespace="urn:d" schemaLocation="d.xsd"/>`),
		"c.xsd": schemaFile("urn:c", `<xs:import namespace="urn:d" schemaLocation="d.xsd"/>`),
		"d.xsd": schemaFile("urn:d", `<xs:element name="d" type="xs:string"/>`),
	}
	set := New(fsys, nil)
	require.NoError(t, set.Load("a.xsd"))

	assert.Equal(t, 4, set.Len())
	assert.Len(t, set.Documents(), 4)
}

func TestLoadIdempotent(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xsd": schemaFile("urn:a", `<xs:include schemaLocation="b.xsd"/>`),
		"b.xsd": schemaFile("urn:a", ``),
	}
	set := New(fsys, nil)
	require.NoError(t, set.Load("a.xsd"))
	first := set.Len()
	require.NoError(t, set.Load("a.xsd"))
	assert.Equal(t, first, set.Len())
}

func TestCircularIncludeTerminates(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xsd": schemaFile("urn:a", `<xs:include schemaLocation="b.xsd"/>`),
		"b.xsd": schemaFile("urn:a", `<xs:include schemaLocation="a.xsd"/>`),
	}
	set := New(fsys, nil)
	require.NoError(t, set.Load("a.xsd"))
	assert.Equal(t, 2, set.Len())
}

func TestRelativeResolution(t *testing.T) {
	fsys := fstest.MapFS{
		"schemas/a.xsd": schemaFile("urn:a", `<xs:include schemaLocation="sub/b.xsd"/>`),
		"schemas/sub/b.xsd": schemaFile("urn:a",
			`<xs:include schemaLocation="../c.xsd"/>`),
		"schemas/c.xsd": schemaFile("urn:a", ``),
	}
	set := New(fsys, nil)
	require.NoError(t, set.Load("schemas/a.xsd"))

	assert.Equal(t, 3, set.Len())
	_, ok := set.Document("schemas/c.xsd")
	assert.True(t, ok)
}

func TestLocationMappingApplied(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xsd":       schemaFile("urn:a", `<xs:import namespace="urn:b" schemaLocation="http://example.com/b.xsd"/>`),
		"local/b.xsd": schemaFile("urn:b", ``),
	}
	resolver, err := location.NewResolver(fsys, []location.Rule{
		location.Exact("http://example.com/b.xsd", "local/b.xsd"),
	})
	require.NoError(t, err)

	set := New(fsys, resolver)
	require.NoError(t, set.Load("a.xsd"))

	_, ok := set.Document("local/b.xsd")
	assert.True(t, ok)
}

func TestMappedLocationMissingAborts(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xsd": schemaFile("urn:a", `<xs:import namespace="urn:b" schemaLocation="b.xsd"/>`),
	}
	resolver, err := location.NewResolver(fsys, []location.Rule{
		location.Exact("b.xsd", "nowhere/b.xsd"),
	})
	require.NoError(t, err)

	set := New(fsys, resolver)
	err = set.Load("a.xsd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere/b.xsd")
	assert.Contains(t, err.Error(), "b.xsd")
}

func TestUnparsableFileBecomesWarning(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xsd":   schemaFile("urn:a", `<xs:include schemaLocation="bad.xsd"/>`),
		"bad.xsd": &fstest.MapFile{Data: []byte("not xml at all <<<")},
	}
	set := New(fsys, nil)
	require.NoError(t, set.Load("a.xsd"))

	assert.Equal(t, 1, set.Len())
	warnings := set.Warnings()
	require.NotEmpty(t, warnings)
	assert.Equal(t, "bad.xsd", warnings[0].Location)
}

func TestMissingEntryBecomesWarning(t *testing.T) {
	set := New(fstest.MapFS{}, nil)
	require.NoError(t, set.Load("missing.xsd"))
	assert.Zero(t, set.Len())
	assert.NotEmpty(t, set.Warnings())
}

func TestRemoteLocationSkipped(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xsd": schemaFile("urn:a", `<xs:import namespace="urn:b" schemaLocation="https://example.com/b.xsd"/>`),
	}
	set := New(fsys, nil)
	require.NoError(t, set.Load("a.xsd"))

	assert.Equal(t, 1, set.Len())
	require.NotEmpty(t, set.Warnings())
	assert.Contains(t, set.Warnings()[0].Message, "remote")
}

func TestEdges(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xsd": schemaFile("urn:a", `<xs:include schemaLocation="b.xsd"/>`),
		"b.xsd": schemaFile("urn:a", ``),
	}
	set := New(fsys, nil)
	require.NoError(t, set.Load("a.xsd"))

	edges := set.Edges()
	assert.Equal(t, []string{"b.xsd"}, edges["a.xsd"])
	assert.Empty(t, edges["b.xsd"])
}
