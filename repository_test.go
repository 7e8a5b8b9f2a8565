package xsdrepo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personXSD = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:p="http://example.com/person"
           xmlns:a="http://example.com/address"
           targetNamespace="http://example.com/person"
           elementFormDefault="qualified">
  <xs:import namespace="http://example.com/address" schemaLocation="http://example.com/address.xsd"/>
  <xs:complexType name="PersonType">
    <xs:sequence>
      <xs:element name="name" type="xs:string"/>
      <xs:element name="address" type="a:AddressType"/>
    </xs:sequence>
    <xs:attribute name="age" type="p:AgeType"/>
  </xs:complexType>
  <xs:complexType name="NoteType">
    <xs:sequence>
      <xs:element name="text" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="EmployeeType">
    <xs:complexContent>
      <xs:extension base="p:PersonType">
        <xs:sequence>
          <xs:element name="employeeId" type="xs:string"/>
        </xs:sequence>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
  <xs:simpleType name="AgeType">
    <xs:restriction base="xs:integer"/>
  </xs:simpleType>
  <xs:element name="person" type="p:PersonType"/>
</xs:schema>`

const addressXSD = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/address">
  <xs:complexType name="AddressType">
    <xs:sequence>
      <xs:element name="street" type="xs:string"/>
      <xs:element name="city" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

func personFS() fstest.MapFS {
	return fstest.MapFS{
		"person.xsd":  {Data: []byte(personXSD)},
		"address.xsd": {Data: []byte(addressXSD)},
	}
}

func personOptions() Options {
	return NewOptions().
		WithFS(personFS()).
		WithEntry("person.xsd").
		WithNamespace("p", "http://example.com/person").
		WithLocationMapping("http://example.com/address.xsd", "address.xsd")
}

func resolvedRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(personOptions())
	require.NoError(t, err)
	require.NoError(t, repo.Resolve())
	return repo
}

func TestNewRepositoryRequiresFSAndEntries(t *testing.T) {
	_, err := NewRepository(NewOptions().WithEntry("person.xsd"))
	assert.Error(t, err)

	_, err = NewRepository(NewOptions().WithFS(personFS()))
	assert.Error(t, err)
}

func TestParseIsIdempotent(t *testing.T) {
	repo := resolvedRepository(t)
	first := repo.Statistics()

	require.NoError(t, repo.Parse())
	require.NoError(t, repo.Resolve())
	second := repo.Statistics()

	assert.Equal(t, first.TotalSchemas, second.TotalSchemas)
	assert.Equal(t, first.TotalTypes, second.TotalTypes)
}

func TestDiamondImportParsesOnce(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xsd": {Data: []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:a" xmlns:b="urn:b" xmlns:c="urn:c">
  <xs:import namespace="urn:b" schemaLocation="b.xsd"/>
  <xs:import namespace="urn:c" schemaLocation="c.xsd"/>
  <xs:complexType name="AType"/>
</xs:schema>`)},
		"b.xsd": {Data: []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:b" xmlns:d="urn:d">
  <xs:import namespace="urn:d" schemaLocation="d.xsd"/>
  <xs:complexType name="BType"/>
</xs:schema>`)},
		"c.xsd": {Data: []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:c" xmlns:d="urn:d">
  <xs:import namespace="urn:d" schemaLocation="d.xsd"/>
  <xs:complexType name="CType"/>
</xs:schema>`)},
		"d.xsd": {Data: []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:d">
  <xs:complexType name="DType"/>
</xs:schema>`)},
	}
	repo, err := NewRepository(NewOptions().WithFS(fsys).WithEntry("a.xsd"))
	require.NoError(t, err)
	require.NoError(t, repo.Resolve())

	stats := repo.Statistics()
	assert.Equal(t, 4, stats.TotalSchemas)
	assert.Equal(t, 4, stats.TotalTypes)
	assert.Empty(t, repo.Warnings())
}

func TestFindTypeResolvesPrefixedName(t *testing.T) {
	repo := resolvedRepository(t)

	result := repo.FindType("p:PersonType")
	require.True(t, result.Resolved)
	assert.Equal(t, "PersonType", result.Local)
	assert.Equal(t, "http://example.com/person", result.Namespace)
	assert.True(t, strings.HasSuffix(result.SchemaFile, "person.xsd"))
	assert.Equal(t, CategoryComplexType, result.Category)

	require.NotEmpty(t, result.Trace)
	assert.Contains(t, result.Trace[0], "p:PersonType")
	assert.Contains(t, result.Trace[len(result.Trace)-1], "person.xsd#PersonType")
}

func TestFindTypeClarkAndBareForms(t *testing.T) {
	repo := resolvedRepository(t)

	clark := repo.FindType("{http://example.com/address}AddressType")
	require.True(t, clark.Resolved)
	assert.Equal(t, "address.xsd", clark.SchemaFile)

	bare := repo.FindType("AgeType")
	require.True(t, bare.Resolved)
	assert.Equal(t, "http://example.com/person", bare.Namespace)
	assert.Equal(t, CategorySimpleType, bare.Category)
}

func TestFindTypeNotFoundSuggests(t *testing.T) {
	repo := resolvedRepository(t)

	result := repo.FindType("p:NoSuchType")
	require.False(t, result.Resolved)
	assert.Contains(t, result.Err, "not found")
	assert.Contains(t, result.Suggestions, "NoteType")
	assert.NotEmpty(t, result.Trace)
}

func TestFindTypeUnregisteredPrefix(t *testing.T) {
	repo := resolvedRepository(t)

	result := repo.FindType("unknown:PersonType")
	require.False(t, result.Resolved)
	assert.Equal(t, "unknown", result.Prefix)
	assert.Contains(t, result.Err, "unregistered namespace prefix")
}

func TestTypeExists(t *testing.T) {
	repo := resolvedRepository(t)

	assert.True(t, repo.TypeExists("p:PersonType"))
	assert.False(t, repo.TypeExists("p:NoSuchType"))

	// unregistered builtin prefix is false, never an error
	assert.False(t, repo.TypeExists("xsd:string"))
	assert.False(t, repo.TypeExists("xsd:string"))
}

func TestQualifiedNameRoundTrip(t *testing.T) {
	repo := resolvedRepository(t)

	for _, ns := range repo.AllNamespaces() {
		for _, local := range repo.AllTypeNames(ns, "") {
			display := repo.DisplayName(ns, local)
			result := repo.FindType(display)
			require.True(t, result.Resolved, "round trip of %s", display)
			assert.Equal(t, ns, result.Namespace)
			assert.Equal(t, local, result.Local)
		}
	}
}

func TestStatistics(t *testing.T) {
	repo := resolvedRepository(t)

	stats := repo.Statistics()
	assert.Equal(t, 2, stats.TotalSchemas)
	assert.Equal(t, 2, stats.TotalNamespaces)
	assert.Equal(t, 4, stats.TypesByCategory[CategoryComplexType])
	assert.Equal(t, 1, stats.TypesByCategory[CategorySimpleType])
	assert.Equal(t, 1, stats.TypesByCategory[CategoryElement])
	assert.Equal(t, "http://example.com/person", stats.NamespacePrefixes["p"])
	assert.True(t, stats.Resolved)
	assert.False(t, stats.Validated)
}

func TestNamespaceToPrefix(t *testing.T) {
	repo := resolvedRepository(t)

	assert.Equal(t, "p", repo.NamespaceToPrefix("http://example.com/person"))
	assert.Equal(t, "", repo.NamespaceToPrefix("urn:unknown"))
}

func TestValidateCleanRepository(t *testing.T) {
	repo := resolvedRepository(t)

	problems, err := repo.Validate(false)
	require.NoError(t, err)
	assert.Empty(t, problems)
	assert.True(t, repo.Statistics().Validated)
}

func TestValidateMissingEntry(t *testing.T) {
	repo, err := NewRepository(NewOptions().WithFS(fstest.MapFS{}).WithEntry("missing.xsd"))
	require.NoError(t, err)

	problems, err := repo.Validate(false)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "missing.xsd")

	_, err = repo.Validate(true)
	assert.Error(t, err)
}

func TestValidateReportsCycle(t *testing.T) {
	fsys := fstest.MapFS{
		"x.xsd": {Data: []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:x">
  <xs:include schemaLocation="y.xsd"/>
</xs:schema>`)},
		"y.xsd": {Data: []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:x">
  <xs:include schemaLocation="x.xsd"/>
</xs:schema>`)},
	}
	repo, err := NewRepository(NewOptions().WithFS(fsys).WithEntry("x.xsd"))
	require.NoError(t, err)
	require.NoError(t, repo.Resolve())

	problems, err := repo.Validate(false)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "circular schema reference: x.xsd -> y.xsd -> x.xsd", problems[0])
	require.Len(t, repo.ImportCycles(), 1)
}

func TestParseWarnsOnMalformedSchema(t *testing.T) {
	fsys := fstest.MapFS{
		"good.xsd": {Data: []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:good">
  <xs:complexType name="GoodType"/>
</xs:schema>`)},
		"bad.xsd": {Data: []byte("<not-a-schema")},
	}
	repo, err := NewRepository(NewOptions().WithFS(fsys).WithEntry("good.xsd", "bad.xsd"))
	require.NoError(t, err)
	require.NoError(t, repo.Resolve())

	assert.Equal(t, 1, repo.Statistics().TotalSchemas)
	require.NotEmpty(t, repo.Warnings())
	assert.Equal(t, "bad.xsd", repo.Warnings()[0].Location)
}

func TestDuplicateDefinitionWarns(t *testing.T) {
	fsys := fstest.MapFS{
		"one.xsd": {Data: []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:dup">
  <xs:complexType name="Shared"/>
</xs:schema>`)},
		"two.xsd": {Data: []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:dup">
  <xs:complexType name="Shared"/>
</xs:schema>`)},
	}
	repo, err := NewRepository(NewOptions().WithFS(fsys).WithEntry("one.xsd", "two.xsd"))
	require.NoError(t, err)
	require.NoError(t, repo.Resolve())

	result := repo.FindType("{urn:dup}Shared")
	require.True(t, result.Resolved)
	assert.Equal(t, "two.xsd", result.SchemaFile)

	var found bool
	for _, warning := range repo.Warnings() {
		if strings.Contains(warning.Message, "duplicate definition") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDependenciesFromRoot(t *testing.T) {
	repo := resolvedRepository(t)

	graph, err := repo.Dependencies("p:PersonType", 0)
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, node := range graph.Nodes {
		names[node.Name] = true
	}
	assert.True(t, names["AddressType"])
	assert.True(t, names["AgeType"])
}

func TestDependentsFromRoot(t *testing.T) {
	repo := resolvedRepository(t)

	result, err := repo.Dependents("p:PersonType")
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, dep := range result.Dependents {
		names[dep.Name] = true
	}
	assert.True(t, names["EmployeeType"])
	assert.True(t, names["person"])
}

func TestHierarchyFromRoot(t *testing.T) {
	repo := resolvedRepository(t)

	hierarchy, err := repo.Hierarchy("p:EmployeeType", 0)
	require.NoError(t, err)
	require.Len(t, hierarchy.Ancestors, 1)
	assert.Equal(t, "PersonType", hierarchy.Ancestors[0].Name)

	hierarchy, err = repo.Hierarchy("p:PersonType", 0)
	require.NoError(t, err)
	require.Len(t, hierarchy.Descendants, 1)
	assert.Equal(t, "EmployeeType", hierarchy.Descendants[0].Name)
}

func TestGraphQueriesRequireResolvedRepository(t *testing.T) {
	repo, err := NewRepository(personOptions())
	require.NoError(t, err)

	_, err = repo.Dependencies("p:PersonType", 0)
	assert.Error(t, err)

	result := repo.FindType("p:PersonType")
	assert.False(t, result.Resolved)
	assert.False(t, repo.TypeExists("p:PersonType"))
}

func TestPackageRoundTripPreservesResolution(t *testing.T) {
	repo := resolvedRepository(t)
	ctx := context.Background()
	url := "mem://localhost/repo/person-resolved.xsdpkg"

	meta, err := repo.ToPackage(ctx, url, PackageOptions{Name: "person", Version: "1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, Resolved, meta.Resolution)

	loaded, loadedMeta, err := FromPackage(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, meta.ID, loadedMeta.ID)
	assert.False(t, loaded.NeedsParsing())
	assert.True(t, loaded.IsResolved())

	for _, input := range []string{"p:PersonType", "p:EmployeeType", "p:AgeType", "{http://example.com/address}AddressType"} {
		want := repo.FindType(input)
		got := loaded.FindType(input)
		require.True(t, got.Resolved, "find %s after reload", input)
		assert.Equal(t, want.Namespace, got.Namespace)
		assert.Equal(t, want.Local, got.Local)
		assert.Equal(t, want.SchemaFile, got.SchemaFile)
		assert.Equal(t, want.Category, got.Category)
	}
	assert.Equal(t, repo.Statistics().TotalTypes, loaded.Statistics().TotalTypes)
}

func TestBarePackageRequiresReparse(t *testing.T) {
	repo := resolvedRepository(t)
	ctx := context.Background()
	url := "mem://localhost/repo/person-bare.xsdpkg"

	_, err := repo.ToPackage(ctx, url, PackageOptions{Name: "person", Version: "1.0.0", Resolution: Bare})
	require.NoError(t, err)

	loaded, meta, err := FromPackage(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, Bare, meta.Resolution)
	assert.True(t, loaded.NeedsParsing())

	require.NoError(t, loaded.Resolve())
	result := loaded.FindType("p:PersonType")
	require.True(t, result.Resolved)
	assert.Equal(t, "person.xsd", result.SchemaFile)
}

func TestResolvePackageSourcesConflictError(t *testing.T) {
	first := resolvedRepository(t)
	second := resolvedRepository(t)

	sources := []PackageSource{
		{Repository: first, PackagePath: "first.xsdpkg", Priority: 0, Policy: PolicyError},
		{Repository: second, PackagePath: "second.xsdpkg", Priority: 1, Policy: PolicyKeep},
	}
	_, report, err := ResolvePackageSources(sources)
	require.Error(t, err)
	var mergeErr *PackageMergeError
	require.True(t, errors.As(err, &mergeErr))
	assert.NotEmpty(t, report.NamespaceConflicts)
	assert.True(t, report.Involves("first.xsdpkg"))
}

func TestResolvePackageSourcesKeepPolicy(t *testing.T) {
	first := resolvedRepository(t)
	second := resolvedRepository(t)

	sources := []PackageSource{
		{Repository: first, PackagePath: "first.xsdpkg", Priority: 1, Policy: PolicyKeep},
		{Repository: second, PackagePath: "second.xsdpkg", Priority: 0, Policy: PolicyKeep},
	}
	ordered, report, err := ResolvePackageSources(sources)
	require.NoError(t, err)
	assert.False(t, report.Empty())
	require.Len(t, ordered, 2)
	assert.Equal(t, "second.xsdpkg", ordered[0].PackagePath)
}

func TestDetectPackageConflictsIdenticalFiles(t *testing.T) {
	first := resolvedRepository(t)
	second := resolvedRepository(t)

	report, err := DetectPackageConflicts([]PackageSource{
		{Repository: first, PackagePath: "first.xsdpkg"},
		{Repository: second, PackagePath: "second.xsdpkg"},
	})
	require.NoError(t, err)
	// same bytes on both sides: basename collisions with equal digests
	// are not schema conflicts
	assert.Empty(t, report.SchemaConflicts)
	assert.NotEmpty(t, report.NamespaceConflicts)
}
