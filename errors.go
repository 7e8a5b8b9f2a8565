package xsdrepo

import (
	"github.com/jacoelho/xsdrepo/internal/location"
	"github.com/jacoelho/xsdrepo/internal/merge"
	"github.com/jacoelho/xsdrepo/internal/qname"
	"github.com/jacoelho/xsdrepo/internal/schemaset"
)

// MappedLocationNotFoundError reports a location mapping whose target
// does not exist. Use errors.As to match it.
type MappedLocationNotFoundError = location.NotFoundError

// UnregisteredPrefixError reports a qualified name using a prefix with
// no registered namespace binding.
type UnregisteredPrefixError = qname.UnregisteredPrefixError

// PackageMergeError reports unresolvable conflicts between merged
// packages. Its Report field lists every conflict.
type PackageMergeError = merge.Error

// Warning records a non-fatal problem encountered while loading or
// resolving. Warnings never abort; Validate reports completeness.
type Warning = schemaset.Warning
