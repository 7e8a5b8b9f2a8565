// Package schemaset owns every schema document reachable from the
// configured entry locations, keyed by resolved path. Each set owns
// its cache; nothing is shared between sets, so repositories built in
// the same process never interfere.
package schemaset

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/jacoelho/xsdrepo/internal/location"
	"github.com/jacoelho/xsdrepo/internal/schema"
)

// Warning records a non-fatal load problem. Parsing is best-effort:
// a repository with partial coverage is still queryable, and
// completeness is checked by Validate, not Load.
type Warning struct {
	Location string
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Location, w.Message)
}

type loadState int

const (
	stateUnknown loadState = iota
	stateLoading
	stateLoaded
	stateFailed
)

// Set is the parsed-schema store. Load is single-threaded; reads are
// safe concurrently once loading has finished.
type Set struct {
	fsys     fs.FS
	resolver *location.Resolver
	docs     map[string]*schema.Document
	order    []string
	states   map[string]loadState
	warnings []Warning
}

// New creates an empty set reading from fsys and remapping directive
// locations through resolver. resolver may be nil.
func New(fsys fs.FS, resolver *location.Resolver) *Set {
	return &Set{
		fsys:     fsys,
		resolver: resolver,
		docs:     make(map[string]*schema.Document),
		states:   make(map[string]loadState),
	}
}

// Load parses the entry locations and everything transitively
// reachable through imports and includes. Parsing the same resolved
// path twice is a no-op, so diamond-shaped import graphs parse each
// document exactly once. Individual file failures become warnings;
// only configuration errors (a mapped location pointing nowhere)
// abort the call.
func (s *Set) Load(entries ...string) error {
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return fmt.Errorf("load schemas: empty entry location")
		}
		if err := s.load(path.Clean(entry)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Set) load(loc string) error {
	switch s.states[loc] {
	case stateLoading, stateLoaded, stateFailed:
		return nil
	}
	s.states[loc] = stateLoading

	f, err := s.fsys.Open(loc)
	if err != nil {
		s.states[loc] = stateFailed
		s.warn(loc, fmt.Sprintf("open schema: %v", err))
		return nil
	}
	doc, err := schema.Decode(f, loc)
	closeErr := f.Close()
	if err != nil {
		s.states[loc] = stateFailed
		s.warn(loc, fmt.Sprintf("parse schema: %v", err))
		return nil
	}
	if closeErr != nil {
		s.warn(loc, fmt.Sprintf("close schema: %v", closeErr))
	}

	s.docs[loc] = doc
	s.order = append(s.order, loc)

	for i := range doc.Imports {
		resolved, err := s.loadDirective(loc, doc.Imports[i].SchemaLocation)
		if err != nil {
			s.states[loc] = stateLoaded
			return err
		}
		doc.Imports[i].ResolvedLocation = resolved
	}
	for i := range doc.Includes {
		resolved, err := s.loadDirective(loc, doc.Includes[i].SchemaLocation)
		if err != nil {
			s.states[loc] = stateLoaded
			return err
		}
		doc.Includes[i].ResolvedLocation = resolved
	}

	s.states[loc] = stateLoaded
	return nil
}

// loadDirective resolves and loads one import/include target,
// returning the resolved location recorded on the directive. An
// empty return means the directive had nothing loadable (no
// schemaLocation, or a remote URL).
func (s *Set) loadDirective(base, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	target := raw
	matched := false
	if s.resolver != nil {
		mapped, m, err := s.resolver.Resolve(raw)
		if err != nil {
			// a matching mapping with a missing target is a
			// configuration bug, not a fall-through.
			return "", fmt.Errorf("resolve schema location %q (from %s): %w", raw, base, err)
		}
		target, matched = mapped, m
	}

	if !matched {
		if isRemote(target) {
			s.warn(base, fmt.Sprintf("remote schema location not fetched: %s", target))
			return "", nil
		}
		target = path.Join(path.Dir(base), target)
	}
	target = path.Clean(target)

	return target, s.load(target)
}

func isRemote(loc string) bool {
	return strings.Contains(loc, "://")
}

func (s *Set) warn(loc, msg string) {
	s.warnings = append(s.warnings, Warning{Location: loc, Message: msg})
}

// Document returns the parsed document for a resolved path.
func (s *Set) Document(loc string) (*schema.Document, bool) {
	doc, ok := s.docs[path.Clean(loc)]
	return doc, ok
}

// Documents returns every parsed document in load order.
func (s *Set) Documents() []*schema.Document {
	out := make([]*schema.Document, 0, len(s.order))
	for _, loc := range s.order {
		out = append(out, s.docs[loc])
	}
	return out
}

// Len returns the number of parsed documents.
func (s *Set) Len() int {
	return len(s.docs)
}

// Warnings returns load warnings in occurrence order.
func (s *Set) Warnings() []Warning {
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Add registers an already-parsed document, used when reloading a
// resolved package. Existing documents for the same location win.
func (s *Set) Add(doc *schema.Document) {
	if doc == nil || doc.Location == "" {
		return
	}
	loc := path.Clean(doc.Location)
	if _, ok := s.docs[loc]; ok {
		return
	}
	s.docs[loc] = doc
	s.order = append(s.order, loc)
	s.states[loc] = stateLoaded
}

// Edges returns the resolved import/include adjacency of every
// loaded document, for circular-dependency reporting.
func (s *Set) Edges() map[string][]string {
	edges := make(map[string][]string, len(s.order))
	for _, loc := range s.order {
		doc := s.docs[loc]
		var next []string
		for _, imp := range doc.Imports {
			if imp.ResolvedLocation != "" {
				next = append(next, imp.ResolvedLocation)
			}
		}
		for _, inc := range doc.Includes {
			if inc.ResolvedLocation != "" {
				next = append(next, inc.ResolvedLocation)
			}
		}
		edges[loc] = next
	}
	return edges
}
