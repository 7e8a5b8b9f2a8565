package xsdrepo

import (
	"errors"
	"fmt"

	"github.com/jacoelho/xsdrepo/internal/qname"
	"github.com/jacoelho/xsdrepo/internal/typeindex"
)

// Category classifies an indexed definition.
type Category = typeindex.Category

// Definition categories, in lookup precedence order.
const (
	CategoryComplexType    = typeindex.CategoryComplexType
	CategorySimpleType     = typeindex.CategorySimpleType
	CategoryElement        = typeindex.CategoryElement
	CategoryGroup          = typeindex.CategoryGroup
	CategoryAttributeGroup = typeindex.CategoryAttributeGroup
	CategoryAttribute      = typeindex.CategoryAttribute
)

// Categories returns every definition category in lookup precedence
// order.
func Categories() []Category {
	return typeindex.Categories()
}

// maxSuggestions bounds the did-you-mean list on failed lookups.
const maxSuggestions = 5

// TypeResolution is the result of one FindType call. Failed lookups
// are results, not errors: Resolved is false, Err carries the message
// and Suggestions lists similar names. Trace records each resolution
// step for diagnostics and is rendered by CLI and reporting tools.
type TypeResolution struct {
	Input         string
	Resolved      bool
	Prefix        string
	Namespace     string
	Local         string
	Category      Category
	SchemaFile    string
	Documentation string
	Err           string
	Trace         []string
	Suggestions   []string
}

// Display returns the canonical display form of a resolved name:
// prefix:local when a primary prefix is registered, Clark notation
// otherwise.
func (t *TypeResolution) Display(r *Repository) string {
	return qname.Display(t.Namespace, t.Local, r.registry.PrimaryPrefix(t.Namespace))
}

// FindType resolves a qualified name against the type index. The
// input may be prefixed (p:PersonType), Clark ({uri}PersonType) or
// bare (PersonType); bare names match across every namespace. FindType
// never returns an error: lookup failures come back as an unresolved
// result carrying the trace and fuzzy-match suggestions.
func (r *Repository) FindType(input string) *TypeResolution {
	result := &TypeResolution{Input: input}
	result.Trace = append(result.Trace, fmt.Sprintf("input: %s", input))

	if !r.resolved {
		result.Err = "repository is not resolved, call Resolve first"
		result.Trace = append(result.Trace, result.Err)
		return result
	}

	name, err := qname.Parse(input, r.registry)
	if err != nil {
		result.Err = err.Error()
		result.Trace = append(result.Trace, fmt.Sprintf("parse failed: %v", err))
		var unregistered *UnregisteredPrefixError
		if errors.As(err, &unregistered) {
			result.Prefix = unregistered.Prefix
		}
		return result
	}
	result.Prefix = name.Prefix
	result.Namespace = name.Namespace
	result.Local = name.Local
	result.Trace = append(result.Trace, fmt.Sprintf("parsed: %s", name))

	var entry *typeindex.Entry
	if name.IsBare() {
		matches := r.index.FindByLocal(name.Local)
		result.Trace = append(result.Trace, fmt.Sprintf("bare name matched %d definition(s) across namespaces", len(matches)))
		if len(matches) > 0 {
			entry = matches[0]
		}
	} else {
		entry, _ = r.index.Find(name.Namespace, name.Local)
	}

	if entry == nil {
		result.Err = fmt.Sprintf("type %s not found", name)
		result.Trace = append(result.Trace, result.Err)
		result.Suggestions = r.index.Suggest(name.Namespace, name.Local, maxSuggestions)
		return result
	}

	result.Resolved = true
	result.Namespace = entry.Namespace
	result.Local = entry.Local
	result.Category = entry.Category
	result.SchemaFile = entry.SchemaFile
	result.Documentation = entry.Documentation
	result.Trace = append(result.Trace, fmt.Sprintf("found: %s#%s (%s)", entry.SchemaFile, entry.Local, entry.Category))
	return result
}

// TypeExists reports whether a qualified name resolves, without
// building a trace. Unknown prefixes (xs:string against an
// unregistered xs) return false rather than failing. Results are
// cached, making this the cheap path for bulk membership tests.
func (r *Repository) TypeExists(input string) bool {
	if !r.resolved {
		return false
	}
	if cached, ok := r.exists.Get(input); ok {
		return cached
	}
	found := false
	if name, err := qname.Parse(input, r.registry); err == nil {
		if name.IsBare() {
			found = len(r.index.FindByLocal(name.Local)) > 0
		} else {
			_, found = r.index.Find(name.Namespace, name.Local)
		}
	}
	r.exists.Add(input, found)
	return found
}

// Statistics summarizes the repository.
type Statistics struct {
	TotalSchemas      int
	TotalTypes        int
	TypesByCategory   map[Category]int
	TotalNamespaces   int
	NamespacePrefixes map[string]string
	Resolved          bool
	Validated         bool
}

// Statistics reports schema, type and namespace counts plus the
// registered prefix table. Counts are zero before Resolve.
func (r *Repository) Statistics() Statistics {
	stats := Statistics{
		TotalSchemas:      r.set.Len(),
		TypesByCategory:   make(map[Category]int),
		NamespacePrefixes: make(map[string]string),
		Resolved:          r.resolved,
		Validated:         r.validated,
	}
	for _, mapping := range r.registry.Mappings() {
		stats.NamespacePrefixes[mapping.Prefix] = mapping.URI
	}
	if r.resolved {
		idxStats := r.index.Statistics()
		stats.TotalTypes = idxStats.Total
		for cat, n := range idxStats.ByCategory {
			stats.TypesByCategory[cat] = n
		}
		stats.TotalNamespaces = len(idxStats.ByNamespace)
	}
	return stats
}

// AllNamespaces returns every namespace present in the index, sorted.
func (r *Repository) AllNamespaces() []string {
	if !r.resolved {
		return nil
	}
	return r.index.Namespaces()
}

// NamespaceToPrefix returns the primary prefix for a namespace URI,
// or "" when none is registered.
func (r *Repository) NamespaceToPrefix(uri string) string {
	return r.registry.PrimaryPrefix(uri)
}

// AllTypeNames returns the local names defined in a namespace, sorted,
// optionally filtered by category ("" for all).
func (r *Repository) AllTypeNames(namespace string, category Category) []string {
	if !r.resolved {
		return nil
	}
	return r.index.LocalNames(namespace, category)
}

// DisplayName renders a namespace and local name in canonical display
// form: prefix:local via the primary prefix, or Clark notation.
func (r *Repository) DisplayName(namespace, local string) string {
	return qname.Display(namespace, local, r.registry.PrimaryPrefix(namespace))
}
