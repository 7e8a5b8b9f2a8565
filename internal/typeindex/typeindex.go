// Package typeindex indexes every named, top-level schema definition
// under a (namespace, local name, category) key for O(1) qualified
// lookup without re-walking parsed documents.
package typeindex

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/jacoelho/xsdrepo/internal/schema"
)

// Category classifies an indexed definition.
type Category string

const (
	// CategoryElement is a top-level element declaration.
	CategoryElement Category = "element"
	// CategoryComplexType is a named complex type.
	CategoryComplexType Category = "complex_type"
	// CategorySimpleType is a named simple type.
	CategorySimpleType Category = "simple_type"
	// CategoryAttributeGroup is a named attribute group.
	CategoryAttributeGroup Category = "attribute_group"
	// CategoryGroup is a named model group.
	CategoryGroup Category = "group"
	// CategoryAttribute is a top-level attribute declaration.
	CategoryAttribute Category = "attribute"
)

// lookupOrder is the category precedence for category-less lookup.
var lookupOrder = []Category{
	CategoryComplexType,
	CategorySimpleType,
	CategoryElement,
	CategoryGroup,
	CategoryAttributeGroup,
	CategoryAttribute,
}

// Categories returns every category in lookup precedence order.
func Categories() []Category {
	out := make([]Category, len(lookupOrder))
	copy(out, lookupOrder)
	return out
}

// Key is the composite index key. Namespace is "" for no-namespace
// schemas.
type Key struct {
	Namespace string
	Local     string
	Category  Category
}

// Entry is one indexed definition. Definition and Doc are non-owning
// references into the schema set; the entry only denormalizes what
// lookup and reporting need.
type Entry struct {
	Namespace     string
	Local         string
	Category      Category
	SchemaFile    string
	Documentation string
	Definition    schema.Definition
	Doc           *schema.Document
}

// Key returns the entry's composite key.
func (e *Entry) Key() Key {
	return Key{Namespace: e.Namespace, Local: e.Local, Category: e.Category}
}

// Duplicate records an index key defined by more than one schema.
// The replacement wins; this mirrors the accepted last-write-wins
// behavior and is surfaced as a warning, not an error.
type Duplicate struct {
	Key         Key
	Previous    string
	Replacement string
}

// Index is the built type index. Building mutates; lookups after
// build are read-only and safe for concurrent use.
type Index struct {
	entries    map[Key]*Entry
	order      []Key
	duplicates []Duplicate
}

// Build walks every document and indexes each named, top-level
// definition. Anonymous inline types are not addressable and are
// skipped. Duplicate keys keep the last-processed definition.
func Build(docs []*schema.Document) *Index {
	idx := &Index{entries: make(map[Key]*Entry)}
	for _, doc := range docs {
		idx.addDocument(doc)
	}
	return idx
}

func (idx *Index) addDocument(doc *schema.Document) {
	ns := doc.TargetNamespace
	for _, el := range doc.Elements {
		idx.put(ns, el.Name, CategoryElement, doc, el, el.Documentation)
	}
	for _, ct := range doc.ComplexTypes {
		idx.put(ns, ct.Name, CategoryComplexType, doc, ct, ct.Documentation)
	}
	for _, st := range doc.SimpleTypes {
		idx.put(ns, st.Name, CategorySimpleType, doc, st, st.Documentation)
	}
	for _, ag := range doc.AttributeGroups {
		idx.put(ns, ag.Name, CategoryAttributeGroup, doc, ag, ag.Documentation)
	}
	for _, g := range doc.Groups {
		idx.put(ns, g.Name, CategoryGroup, doc, g, g.Documentation)
	}
	for _, attr := range doc.Attributes {
		idx.put(ns, attr.Name, CategoryAttribute, doc, attr, attr.Documentation)
	}
}

func (idx *Index) put(ns, local string, cat Category, doc *schema.Document, def schema.Definition, documentation string) {
	if local == "" {
		return
	}
	key := Key{Namespace: ns, Local: local, Category: cat}
	entry := &Entry{
		Namespace:     ns,
		Local:         local,
		Category:      cat,
		SchemaFile:    doc.Location,
		Documentation: documentation,
		Definition:    def,
		Doc:           doc,
	}
	if previous, ok := idx.entries[key]; ok {
		if previous.SchemaFile != doc.Location {
			idx.duplicates = append(idx.duplicates, Duplicate{
				Key:         key,
				Previous:    previous.SchemaFile,
				Replacement: doc.Location,
			})
		}
	} else {
		idx.order = append(idx.order, key)
	}
	idx.entries[key] = entry
}

// Find looks up (namespace, local) across categories in precedence
// order: types first, then elements, groups and attributes.
func (idx *Index) Find(namespace, local string) (*Entry, bool) {
	for _, cat := range lookupOrder {
		if entry, ok := idx.FindCategory(namespace, local, cat); ok {
			return entry, true
		}
	}
	return nil, false
}

// FindCategory looks up one exact key.
func (idx *Index) FindCategory(namespace, local string, cat Category) (*Entry, bool) {
	entry, ok := idx.entries[Key{Namespace: namespace, Local: local, Category: cat}]
	return entry, ok
}

// FindByLocal returns every entry with the given local name across
// all namespaces, in index order. This serves bare-name lookups.
func (idx *Index) FindByLocal(local string) []*Entry {
	var out []*Entry
	for _, key := range idx.order {
		if key.Local == local {
			out = append(out, idx.entries[key])
		}
	}
	return out
}

// All returns every entry in first-indexed order.
func (idx *Index) All() []*Entry {
	out := make([]*Entry, 0, len(idx.order))
	for _, key := range idx.order {
		out = append(out, idx.entries[key])
	}
	return out
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Duplicates returns the duplicate-key records collected during
// build.
func (idx *Index) Duplicates() []Duplicate {
	out := make([]Duplicate, len(idx.duplicates))
	copy(out, idx.duplicates)
	return out
}

// suggestion pairs a candidate with its ranking distance.
type suggestion struct {
	name     string
	distance int
}

// maxSuggestDistance bounds how far a candidate may be from the
// query before it stops being a plausible typo.
const maxSuggestDistance = 3

// minSharedPrefix admits candidates that start like the query even
// when the edit distance is large, such as NoteType for NoSuchType.
const minSharedPrefix = 2

// Suggest returns up to max local names similar to the query within
// the same namespace (all namespaces when namespace is ""). A
// candidate qualifies by case-insensitive substring match, by edit
// distance, or by sharing a leading prefix with the query; closer
// matches sort first. Used for error messages only.
func (idx *Index) Suggest(namespace, local string, max int) []string {
	if max <= 0 || local == "" {
		return nil
	}
	lower := strings.ToLower(local)
	seen := make(map[string]bool)
	var candidates []suggestion
	for _, key := range idx.order {
		if namespace != "" && key.Namespace != namespace {
			continue
		}
		if key.Local == local || seen[key.Local] {
			continue
		}
		candidateLower := strings.ToLower(key.Local)
		distance := levenshtein.Distance(lower, candidateLower, nil)
		substring := strings.Contains(candidateLower, lower) || strings.Contains(lower, candidateLower)
		prefix := sharedPrefixLen(lower, candidateLower) >= minSharedPrefix
		if !substring && !prefix && distance > maxSuggestDistance {
			continue
		}
		seen[key.Local] = true
		candidates = append(candidates, suggestion{name: key.Local, distance: distance})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].name < candidates[j].name
	})
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

func sharedPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// Statistics summarizes the index by category and namespace.
type Statistics struct {
	Total       int
	ByCategory  map[Category]int
	ByNamespace map[string]int
}

// Statistics computes per-category and per-namespace counts.
func (idx *Index) Statistics() Statistics {
	stats := Statistics{
		Total:       len(idx.entries),
		ByCategory:  make(map[Category]int),
		ByNamespace: make(map[string]int),
	}
	for key := range idx.entries {
		stats.ByCategory[key.Category]++
		stats.ByNamespace[key.Namespace]++
	}
	return stats
}

// Namespaces returns every namespace present in the index, sorted.
func (idx *Index) Namespaces() []string {
	seen := make(map[string]bool)
	var out []string
	for _, key := range idx.order {
		if seen[key.Namespace] {
			continue
		}
		seen[key.Namespace] = true
		out = append(out, key.Namespace)
	}
	sort.Strings(out)
	return out
}

// LocalNames returns the local names in a namespace, optionally
// filtered by category ("" for all), sorted.
func (idx *Index) LocalNames(namespace string, cat Category) []string {
	seen := make(map[string]bool)
	var out []string
	for _, key := range idx.order {
		if key.Namespace != namespace {
			continue
		}
		if cat != "" && key.Category != cat {
			continue
		}
		if seen[key.Local] {
			continue
		}
		seen[key.Local] = true
		out = append(out, key.Local)
	}
	sort.Strings(out)
	return out
}
