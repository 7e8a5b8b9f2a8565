// Package merge detects and resolves collisions when several
// resolved schema packages are combined into one.
package merge

import (
	"fmt"
	"sort"

	"github.com/jacoelho/xsdrepo/internal/typeindex"
)

// Policy selects how a source's conflicts are settled.
type Policy string

const (
	// PolicyKeep keeps the first-registered (lowest priority number)
	// colliding source.
	PolicyKeep Policy = "keep"
	// PolicyOverride keeps the last-registered (highest priority
	// number) colliding source.
	PolicyOverride Policy = "override"
	// PolicyError refuses to merge when the source collides.
	PolicyError Policy = "error"
)

// FileInfo identifies one bundled schema file. Digest is a content
// hash; files with equal basenames but equal digests are copies, not
// collisions. An empty digest means the content could not be read and
// is never treated as equal to anything.
type FileInfo struct {
	Path     string
	Basename string
	Digest   string
}

// Source is one package participating in a merge: its identity, its
// priority (lower numbers were registered first), its policy and a
// snapshot of what it defines.
type Source struct {
	PackagePath string
	Priority    int
	Policy      Policy
	Namespaces  []string
	Types       []typeindex.Key
	Files       []FileInfo
}

// NamespaceConflict lists sources defining the same namespace URI.
type NamespaceConflict struct {
	Namespace string
	Sources   []string
}

// TypeConflict lists sources defining the same (namespace, local)
// type.
type TypeConflict struct {
	Namespace string
	Local     string
	Sources   []string
}

// SchemaConflict lists sources bundling a same-named schema file
// with differing content.
type SchemaConflict struct {
	Basename string
	Sources  []string
}

// Report aggregates every conflict found across a source list.
type Report struct {
	NamespaceConflicts []NamespaceConflict
	TypeConflicts      []TypeConflict
	SchemaConflicts    []SchemaConflict
}

// Empty reports whether no conflicts were found.
func (r *Report) Empty() bool {
	return len(r.NamespaceConflicts) == 0 && len(r.TypeConflicts) == 0 && len(r.SchemaConflicts) == 0
}

// Involves reports whether any conflict lists the given package.
func (r *Report) Involves(packagePath string) bool {
	for _, c := range r.NamespaceConflicts {
		if containsString(c.Sources, packagePath) {
			return true
		}
	}
	for _, c := range r.TypeConflicts {
		if containsString(c.Sources, packagePath) {
			return true
		}
	}
	for _, c := range r.SchemaConflicts {
		if containsString(c.Sources, packagePath) {
			return true
		}
	}
	return false
}

// Error is the hard merge failure raised under PolicyError. It
// carries the full report so callers can print every collision, not
// just the first.
type Error struct {
	Report *Report
}

// Error returns the error string.
func (e *Error) Error() string {
	return fmt.Sprintf("package merge conflicts: %d namespace, %d type, %d schema file",
		len(e.Report.NamespaceConflicts), len(e.Report.TypeConflicts), len(e.Report.SchemaConflicts))
}

// Detect scans the source list for namespace, type and schema-file
// collisions. Sources are compared pairwise by what they define;
// the report lists each colliding key once with every involved
// source in priority order.
func Detect(sources []Source) *Report {
	report := &Report{}
	ordered := byPriority(sources)

	nsSources := make(map[string][]string)
	for _, src := range ordered {
		for _, ns := range src.Namespaces {
			nsSources[ns] = append(nsSources[ns], src.PackagePath)
		}
	}
	for _, ns := range sortedKeys(nsSources) {
		if len(nsSources[ns]) > 1 {
			report.NamespaceConflicts = append(report.NamespaceConflicts, NamespaceConflict{
				Namespace: ns,
				Sources:   nsSources[ns],
			})
		}
	}

	type typeKey struct{ ns, local string }
	typeSources := make(map[typeKey][]string)
	for _, src := range ordered {
		seen := make(map[typeKey]bool)
		for _, key := range src.Types {
			tk := typeKey{ns: key.Namespace, local: key.Local}
			if seen[tk] {
				continue
			}
			seen[tk] = true
			typeSources[tk] = append(typeSources[tk], src.PackagePath)
		}
	}
	typeKeys := make([]typeKey, 0, len(typeSources))
	for tk := range typeSources {
		typeKeys = append(typeKeys, tk)
	}
	sort.Slice(typeKeys, func(i, j int) bool {
		if typeKeys[i].ns != typeKeys[j].ns {
			return typeKeys[i].ns < typeKeys[j].ns
		}
		return typeKeys[i].local < typeKeys[j].local
	})
	for _, tk := range typeKeys {
		if len(typeSources[tk]) > 1 {
			report.TypeConflicts = append(report.TypeConflicts, TypeConflict{
				Namespace: tk.ns,
				Local:     tk.local,
				Sources:   typeSources[tk],
			})
		}
	}

	type fileSeen struct {
		digest  string
		sources []string
		differs bool
	}
	files := make(map[string]*fileSeen)
	for _, src := range ordered {
		for _, file := range src.Files {
			entry, ok := files[file.Basename]
			if !ok {
				files[file.Basename] = &fileSeen{digest: file.Digest, sources: []string{src.PackagePath}}
				continue
			}
			entry.sources = append(entry.sources, src.PackagePath)
			// an empty digest is incomparable, not a match.
			if entry.digest != file.Digest || file.Digest == "" {
				entry.differs = true
			}
		}
	}
	for _, basename := range sortedKeys(files) {
		entry := files[basename]
		if len(entry.sources) > 1 && entry.differs {
			report.SchemaConflicts = append(report.SchemaConflicts, SchemaConflict{
				Basename: basename,
				Sources:  entry.sources,
			})
		}
	}

	return report
}

// Resolve validates the source list against its policies and returns
// it ordered by priority. Any conflict touching a PolicyError source
// aborts with *Error carrying the full report.
func Resolve(sources []Source) ([]Source, *Report, error) {
	report := Detect(sources)
	for _, src := range sources {
		if src.Policy == PolicyError && report.Involves(src.PackagePath) {
			return nil, report, &Error{Report: report}
		}
	}
	return byPriority(sources), report, nil
}

// Winner selects the surviving source among colliding ones: keep
// takes the lowest priority number (first registered), override the
// highest (last registered).
func Winner(policy Policy, involved []Source) (Source, error) {
	if len(involved) == 0 {
		return Source{}, fmt.Errorf("resolve conflict: no sources")
	}
	ordered := byPriority(involved)
	switch policy {
	case PolicyKeep:
		return ordered[0], nil
	case PolicyOverride:
		return ordered[len(ordered)-1], nil
	case PolicyError:
		return Source{}, fmt.Errorf("resolve conflict: error policy does not select a winner")
	default:
		return Source{}, fmt.Errorf("resolve conflict: unknown policy %q", policy)
	}
}

func byPriority(sources []Source) []Source {
	out := make([]Source, len(sources))
	copy(out, sources)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
