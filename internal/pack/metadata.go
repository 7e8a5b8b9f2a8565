// Package pack serializes a resolved schema repository into a
// portable archive and reads it back. The archive is a zip file
// holding a metadata record, the mapping configuration, optionally
// the original .xsd sources, and optionally the serialized document
// set plus a type-index snapshot for instant query readiness.
package pack

import (
	"fmt"
	"time"
)

// Format selects the serialization encoding of the document set and
// index snapshot.
type Format string

const (
	// FormatGob is the native binary encoding.
	FormatGob Format = "gob"
	// FormatJSON is the JSON encoding.
	FormatJSON Format = "json"
	// FormatYAML is the YAML encoding.
	FormatYAML Format = "yaml"
)

// Bundling selects whether .xsd sources travel inside the archive.
type Bundling string

const (
	// BundleAll stores every referenced .xsd file in the archive.
	BundleAll Bundling = "include_all"
	// BundleExternal expects sources on disk at their original
	// paths at load time.
	BundleExternal Bundling = "allow_external"
)

// Resolution selects whether the parsed and indexed state is
// serialized (instant load) or only sources and configuration are
// stored (re-parse on load).
type Resolution string

const (
	// Resolved pre-serializes the parsed document set and index.
	Resolved Resolution = "resolved"
	// Bare stores only sources and mapping configuration.
	Bare Resolution = "bare"
)

// Metadata is the package descriptor stored at the archive root.
type Metadata struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Format      Format     `json:"format"`
	Bundling    Bundling   `json:"bundling"`
	Resolution  Resolution `json:"resolution"`
}

func (m *Metadata) validate() error {
	switch m.Format {
	case FormatGob, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("package metadata: unknown format %q", m.Format)
	}
	switch m.Bundling {
	case BundleAll, BundleExternal:
	default:
		return fmt.Errorf("package metadata: unknown bundling mode %q", m.Bundling)
	}
	switch m.Resolution {
	case Resolved, Bare:
	default:
		return fmt.Errorf("package metadata: unknown resolution mode %q", m.Resolution)
	}
	return nil
}
