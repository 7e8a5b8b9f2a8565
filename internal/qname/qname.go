// Package qname parses and formats namespace-qualified schema names.
//
// Three lexical forms are recognized: Clark notation ({uri}local),
// prefixed (prefix:local), and bare (local). Bare names carry no
// namespace; resolution against all namespaces is the caller's choice.
package qname

import (
	"fmt"
	"strings"
)

// Name is a parsed qualified name.
type Name struct {
	Prefix    string
	Namespace string
	Local     string
}

// PrefixResolver resolves a namespace prefix to its URI.
type PrefixResolver interface {
	ResolvePrefix(prefix string) (string, bool)
}

// UnregisteredPrefixError reports a prefixed name whose prefix has no
// registered namespace binding.
type UnregisteredPrefixError struct {
	Prefix string
	Input  string
}

// Error returns the error string.
func (e *UnregisteredPrefixError) Error() string {
	return fmt.Sprintf("unregistered namespace prefix %q in %q", e.Prefix, e.Input)
}

// Parse parses a qualified name, consulting resolver for prefixed names.
// Clark notation takes the namespace literally and never consults the
// resolver. Bare names return an empty namespace and prefix.
func Parse(input string, resolver PrefixResolver) (Name, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Name{}, fmt.Errorf("parse qualified name: empty string")
	}

	if strings.HasPrefix(trimmed, "{") {
		end := strings.Index(trimmed, "}")
		if end < 0 {
			return Name{}, fmt.Errorf("parse qualified name %q: unterminated clark notation", input)
		}
		local := trimmed[end+1:]
		if local == "" {
			return Name{}, fmt.Errorf("parse qualified name %q: empty local name", input)
		}
		return Name{Namespace: trimmed[1:end], Local: local}, nil
	}

	if idx := strings.Index(trimmed, ":"); idx >= 0 {
		prefix, local := trimmed[:idx], trimmed[idx+1:]
		if prefix == "" || local == "" {
			return Name{}, fmt.Errorf("parse qualified name %q: malformed prefixed name", input)
		}
		if resolver == nil {
			return Name{}, &UnregisteredPrefixError{Prefix: prefix, Input: input}
		}
		uri, ok := resolver.ResolvePrefix(prefix)
		if !ok {
			return Name{}, &UnregisteredPrefixError{Prefix: prefix, Input: input}
		}
		return Name{Prefix: prefix, Namespace: uri, Local: local}, nil
	}

	return Name{Local: trimmed}, nil
}

// Clark formats a namespace and local name in Clark notation. A name
// without a namespace is rendered bare.
func Clark(namespace, local string) string {
	if namespace == "" {
		return local
	}
	return "{" + namespace + "}" + local
}

// Display renders the canonical display form: prefix:local when a
// primary prefix is known, Clark notation otherwise.
func Display(namespace, local, primaryPrefix string) string {
	if namespace == "" {
		return local
	}
	if primaryPrefix != "" {
		return primaryPrefix + ":" + local
	}
	return Clark(namespace, local)
}

// String returns the Clark form of the name.
func (n Name) String() string {
	return Clark(n.Namespace, n.Local)
}

// IsBare reports whether the name carries no namespace or prefix.
func (n Name) IsBare() bool {
	return n.Prefix == "" && n.Namespace == ""
}
