// Package nsregistry maintains the bidirectional prefix/namespace-URI
// registry used for qualified-name resolution and display.
package nsregistry

import (
	"fmt"
	"sort"
)

// NamespaceSource exposes the xmlns declarations of a parsed schema
// document for auto-extraction.
type NamespaceSource interface {
	NamespaceDeclarations() map[string]string
}

type binding struct {
	uri      string
	explicit bool
}

// Registry maps prefixes to namespace URIs and elects one primary
// prefix per URI. The primary is the first explicitly configured
// prefix for that URI, or the first extracted one when none was
// configured. Not safe for concurrent mutation; reads after the build
// phase are safe from multiple goroutines.
type Registry struct {
	byPrefix        map[string]binding
	primary         map[string]string
	primaryExplicit map[string]bool
	order           []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byPrefix:        make(map[string]binding),
		primary:         make(map[string]string),
		primaryExplicit: make(map[string]bool),
	}
}

// Register upserts an explicit prefix binding. The last write for a
// prefix wins. The first explicit binding for a URI becomes its
// primary prefix.
func (r *Registry) Register(prefix, uri string) error {
	if prefix == "" {
		return fmt.Errorf("register namespace: empty prefix for %q", uri)
	}
	if uri == "" {
		return fmt.Errorf("register namespace: empty uri for prefix %q", prefix)
	}
	r.put(prefix, uri, true)
	if !r.primaryExplicit[uri] {
		r.primary[uri] = prefix
		r.primaryExplicit[uri] = true
	}
	return nil
}

// SetPrimary remaps the primary prefix for a URI. The prefix must
// already be bound to that URI.
func (r *Registry) SetPrimary(uri, prefix string) error {
	b, ok := r.byPrefix[prefix]
	if !ok || b.uri != uri {
		return fmt.Errorf("set primary prefix: %q is not bound to %q", prefix, uri)
	}
	r.primary[uri] = prefix
	r.primaryExplicit[uri] = true
	return nil
}

// ResolvePrefix returns the URI bound to prefix.
func (r *Registry) ResolvePrefix(prefix string) (string, bool) {
	b, ok := r.byPrefix[prefix]
	if !ok {
		return "", false
	}
	return b.uri, true
}

// PrimaryPrefix returns the primary prefix for uri, or "" when the
// URI has no registered prefix. The empty namespace never has one.
func (r *Registry) PrimaryPrefix(uri string) string {
	return r.primary[uri]
}

// ExtractFromDocuments registers xmlns declarations found in parsed
// documents. Explicitly configured prefixes are never overwritten.
// Default (unprefixed) declarations are skipped: a binding without a
// prefix cannot participate in prefixed qualified names.
func (r *Registry) ExtractFromDocuments(docs ...NamespaceSource) {
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		decls := doc.NamespaceDeclarations()
		prefixes := make([]string, 0, len(decls))
		for prefix := range decls {
			prefixes = append(prefixes, prefix)
		}
		sort.Strings(prefixes)
		for _, prefix := range prefixes {
			uri := decls[prefix]
			if prefix == "" || uri == "" {
				continue
			}
			if existing, ok := r.byPrefix[prefix]; ok && existing.explicit {
				continue
			}
			r.put(prefix, uri, false)
			if _, ok := r.primary[uri]; !ok {
				r.primary[uri] = prefix
			}
		}
	}
}

// Prefixes returns every registered prefix in registration order.
func (r *Registry) Prefixes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// URIs returns every registered URI, deduplicated, in first-seen order.
func (r *Registry) URIs() []string {
	seen := make(map[string]bool, len(r.order))
	var out []string
	for _, prefix := range r.order {
		uri := r.byPrefix[prefix].uri
		if seen[uri] {
			continue
		}
		seen[uri] = true
		out = append(out, uri)
	}
	return out
}

// Mappings returns (prefix, uri, explicit) triples in registration
// order, suitable for replaying into a fresh registry.
func (r *Registry) Mappings() []Mapping {
	out := make([]Mapping, 0, len(r.order))
	for _, prefix := range r.order {
		b := r.byPrefix[prefix]
		out = append(out, Mapping{Prefix: prefix, URI: b.uri, Explicit: b.explicit})
	}
	return out
}

// Mapping is one prefix binding in registration order.
type Mapping struct {
	Prefix   string
	URI      string
	Explicit bool
}

// Len returns the number of registered prefixes.
func (r *Registry) Len() int {
	return len(r.byPrefix)
}

func (r *Registry) put(prefix, uri string, explicit bool) {
	if _, ok := r.byPrefix[prefix]; !ok {
		r.order = append(r.order, prefix)
	}
	r.byPrefix[prefix] = binding{uri: uri, explicit: explicit}
}
