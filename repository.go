// Package xsdrepo loads a tree of XML Schema documents, resolves the
// import/include graph across namespaces, and builds a qualified-name
// index over every top-level type, element, attribute and group
// definition. A resolved repository answers lookup, dependency and
// inheritance queries, and can be serialized into a portable package
// for instant reload.
package xsdrepo

import (
	"fmt"
	"io/fs"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jacoelho/xsdrepo/internal/depgraph"
	"github.com/jacoelho/xsdrepo/internal/location"
	"github.com/jacoelho/xsdrepo/internal/nsregistry"
	"github.com/jacoelho/xsdrepo/internal/qname"
	"github.com/jacoelho/xsdrepo/internal/schemaset"
	"github.com/jacoelho/xsdrepo/internal/typeindex"
)

// Repository is the top-level façade. Build one with NewRepository,
// then call Parse and Resolve before querying. Every repository owns
// its schema set, registry and index; repositories built in the same
// process never share state.
type Repository struct {
	opts     Options
	resolver *location.Resolver
	set      *schemaset.Set
	registry *nsregistry.Registry
	index    *typeindex.Index
	exists   *lru.Cache[string, bool]

	parsed    bool
	resolved  bool
	validated bool
	warnings  []Warning
}

// NewRepository creates a repository from options. Location patterns
// are compiled and explicit namespace bindings registered here, so
// configuration errors surface before any parsing starts.
func NewRepository(opts Options) (*Repository, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	resolver, err := location.NewResolver(opts.fsys, opts.locations)
	if err != nil {
		return nil, fmt.Errorf("new repository: %w", err)
	}
	registry := nsregistry.New()
	for _, binding := range opts.namespaces {
		if err := registry.Register(binding.prefix, binding.uri); err != nil {
			return nil, fmt.Errorf("new repository: %w", err)
		}
	}
	for _, binding := range opts.primaries {
		if err := registry.SetPrimary(binding.uri, binding.prefix); err != nil {
			return nil, fmt.Errorf("new repository: %w", err)
		}
	}
	return &Repository{
		opts:     opts,
		resolver: resolver,
		registry: registry,
		set:      schemaset.New(opts.fsys, resolver),
	}, nil
}

// Parse loads the entry schemas and everything transitively reachable
// through imports and includes. Parsing is best-effort: individual
// file failures become warnings, and only configuration errors (a
// mapped location pointing nowhere) abort. Parse is idempotent.
func (r *Repository) Parse() error {
	if r.parsed {
		return nil
	}
	if err := r.set.Load(r.opts.entries...); err != nil {
		return fmt.Errorf("parse repository: %w", err)
	}
	r.parsed = true
	return nil
}

// NeedsParsing reports whether Parse has yet to run. Repositories
// loaded from a resolved package start with this false.
func (r *Repository) NeedsParsing() bool {
	return !r.parsed
}

// IsResolved reports whether Resolve has completed.
func (r *Repository) IsResolved() bool {
	return r.resolved
}

// Resolve builds the namespace registry and type index from the
// parsed documents. Parse runs first when needed. Resolve is
// idempotent; a second call is a no-op.
func (r *Repository) Resolve() error {
	if r.resolved {
		return nil
	}
	if err := r.Parse(); err != nil {
		return err
	}
	docs := r.set.Documents()
	sources := make([]nsregistry.NamespaceSource, len(docs))
	for i, doc := range docs {
		sources[i] = doc
	}
	r.registry.ExtractFromDocuments(sources...)

	r.index = typeindex.Build(docs)
	for _, dup := range r.index.Duplicates() {
		r.warnings = append(r.warnings, Warning{
			Location: dup.Replacement,
			Message: fmt.Sprintf("duplicate definition %s (%s) overrides the one from %s",
				qname.Clark(dup.Key.Namespace, dup.Key.Local), dup.Key.Category, dup.Previous),
		})
	}

	cache, err := lru.New[string, bool](r.opts.cacheSize())
	if err != nil {
		return fmt.Errorf("resolve repository: %w", err)
	}
	r.exists = cache
	r.resolved = true
	return nil
}

// Validate checks repository completeness: every entry exists and was
// parsed, the import graph has no cycles, and every namespace binding
// is well-formed. Non-strict mode collects every problem; strict mode
// returns an error at the first one. A clean validation marks the
// repository validated for Statistics.
func (r *Repository) Validate(strict bool) ([]string, error) {
	var problems []string
	report := func(format string, args ...any) error {
		msg := fmt.Sprintf(format, args...)
		if strict {
			return fmt.Errorf("validate repository: %s", msg)
		}
		problems = append(problems, msg)
		return nil
	}

	for _, entry := range r.opts.entries {
		if _, err := fs.Stat(r.opts.fsys, entry); err != nil {
			if err := report("entry schema %s: %v", entry, err); err != nil {
				return nil, err
			}
			continue
		}
		if !r.parsed {
			continue
		}
		if _, ok := r.set.Document(entry); !ok {
			if err := report("entry schema %s was not parsed", entry); err != nil {
				return nil, err
			}
		}
	}

	if r.parsed {
		for _, cycle := range depgraph.FindCycles(r.set.Edges()) {
			if err := report("circular schema reference: %s", joinCycle(cycle)); err != nil {
				return nil, err
			}
		}
	}

	for _, mapping := range r.registry.Mappings() {
		if mapping.Prefix == "" || mapping.URI == "" {
			if err := report("namespace binding (%q, %q) is incomplete", mapping.Prefix, mapping.URI); err != nil {
				return nil, err
			}
		}
	}

	if len(problems) == 0 {
		r.validated = true
	}
	return problems, nil
}

// joinCycle renders a cycle path for reporting. FindCycles already
// closes the path by repeating the starting location.
func joinCycle(cycle []string) string {
	out := ""
	for i, loc := range cycle {
		if i > 0 {
			out += " -> "
		}
		out += loc
	}
	return out
}

// Warnings returns load and resolve warnings in occurrence order.
func (r *Repository) Warnings() []Warning {
	out := r.set.Warnings()
	out = append(out, r.warnings...)
	return out
}

// ImportCycles returns every import/include cycle among the loaded
// documents. An empty result means the graph is acyclic.
func (r *Repository) ImportCycles() [][]string {
	if !r.parsed {
		return nil
	}
	return depgraph.FindCycles(r.set.Edges())
}

// entry resolves a qualified name to its index entry. Bare names
// match across all namespaces, first indexed definition wins.
func (r *Repository) entry(input string) (*typeindex.Entry, qname.Name, error) {
	if !r.resolved {
		return nil, qname.Name{}, fmt.Errorf("repository is not resolved, call Resolve first")
	}
	name, err := qname.Parse(input, r.registry)
	if err != nil {
		return nil, qname.Name{}, err
	}
	if name.IsBare() {
		matches := r.index.FindByLocal(name.Local)
		if len(matches) == 0 {
			return nil, name, fmt.Errorf("type %q not found in any namespace", name.Local)
		}
		return matches[0], name, nil
	}
	entry, ok := r.index.Find(name.Namespace, name.Local)
	if !ok {
		return nil, name, fmt.Errorf("type %s not found", qname.Clark(name.Namespace, name.Local))
	}
	return entry, name, nil
}
