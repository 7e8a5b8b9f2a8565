package xsdrepo

import (
	"fmt"
	"io/fs"

	"github.com/jacoelho/xsdrepo/internal/location"
)

// defaultExistsCacheSize bounds the TypeExists lookup cache when the
// caller gives no size.
const defaultExistsCacheSize = 1024

type intOption struct {
	value int
	set   bool
}

type namespaceBinding struct {
	prefix string
	uri    string
}

// Options configures a repository. The zero value is incomplete: a
// filesystem and at least one entry location are required. Options are
// values; each With method returns a modified copy.
type Options struct {
	fsys            fs.FS
	entries         []string
	namespaces      []namespaceBinding
	primaries       []namespaceBinding
	locations       []location.Rule
	existsCacheSize intOption
}

// NewOptions returns an empty options value.
func NewOptions() Options {
	return Options{}
}

// WithFS sets the filesystem schema documents are read from.
func (o Options) WithFS(fsys fs.FS) Options {
	o.fsys = fsys
	return o
}

// WithEntry appends entry schema locations, relative to the configured
// filesystem. Everything transitively imported or included from an
// entry is loaded with it.
func (o Options) WithEntry(locations ...string) Options {
	o.entries = append(o.entries[:len(o.entries):len(o.entries)], locations...)
	return o
}

// WithNamespace registers an explicit prefix binding. Explicit
// bindings take precedence over prefixes extracted from parsed
// documents, and the first explicit binding for a URI becomes its
// primary display prefix.
func (o Options) WithNamespace(prefix, uri string) Options {
	o.namespaces = append(o.namespaces[:len(o.namespaces):len(o.namespaces)], namespaceBinding{prefix: prefix, uri: uri})
	return o
}

// WithPrimaryPrefix elects the display prefix for a URI among several
// bound prefixes. The prefix must also be registered with
// WithNamespace.
func (o Options) WithPrimaryPrefix(uri, prefix string) Options {
	o.primaries = append(o.primaries[:len(o.primaries):len(o.primaries)], namespaceBinding{prefix: prefix, uri: uri})
	return o
}

// WithLocationMapping appends an exact schemaLocation remapping rule.
// Rules are tried in configuration order; the first match wins.
func (o Options) WithLocationMapping(from, to string) Options {
	o.locations = append(o.locations[:len(o.locations):len(o.locations)], location.Exact(from, to))
	return o
}

// WithLocationPattern appends a regular-expression remapping rule.
// The expression is anchored; the replacement may reference capture
// groups ($1, ${name}).
func (o Options) WithLocationPattern(expr, to string) Options {
	o.locations = append(o.locations[:len(o.locations):len(o.locations)], location.Pattern(expr, to))
	return o
}

// WithExistsCacheSize sets the TypeExists cache capacity (0 uses the
// default).
func (o Options) WithExistsCacheSize(size int) Options {
	o.existsCacheSize = intOption{value: size, set: true}
	return o
}

// Validate validates the options value.
func (o Options) Validate() error {
	if o.fsys == nil {
		return fmt.Errorf("options: filesystem is required")
	}
	if len(o.entries) == 0 {
		return fmt.Errorf("options: at least one entry location is required")
	}
	for _, binding := range o.namespaces {
		if binding.prefix == "" || binding.uri == "" {
			return fmt.Errorf("options: namespace binding needs both prefix and uri, got (%q, %q)", binding.prefix, binding.uri)
		}
	}
	if o.existsCacheSize.set && o.existsCacheSize.value < 0 {
		return fmt.Errorf("options: exists cache size must not be negative, got %d", o.existsCacheSize.value)
	}
	return nil
}

func (o Options) cacheSize() int {
	if !o.existsCacheSize.set || o.existsCacheSize.value == 0 {
		return defaultExistsCacheSize
	}
	return o.existsCacheSize.value
}
