package xsdrepo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/jacoelho/xsdrepo/internal/merge"
	"github.com/jacoelho/xsdrepo/internal/pack"
	"github.com/jacoelho/xsdrepo/internal/typeindex"
)

// PackageFormat selects the payload encoding of a package archive.
type PackageFormat = pack.Format

// Package payload encodings.
const (
	FormatGob  = pack.FormatGob
	FormatJSON = pack.FormatJSON
	FormatYAML = pack.FormatYAML
)

// PackageBundling selects whether .xsd sources travel in the archive.
type PackageBundling = pack.Bundling

// Source bundling modes.
const (
	BundleAll      = pack.BundleAll
	BundleExternal = pack.BundleExternal
)

// PackageResolution selects whether the parsed and indexed state is
// serialized or rebuilt on load.
type PackageResolution = pack.Resolution

// Package resolution modes.
const (
	Resolved = pack.Resolved
	Bare     = pack.Bare
)

// PackageMetadata is the descriptor stored in a package archive.
type PackageMetadata = pack.Metadata

// PackageOptions configures ToPackage. Zero-valued fields take the
// defaults: gob encoding, bundled sources, resolved state.
type PackageOptions struct {
	Name        string
	Version     string
	Description string
	Format      PackageFormat
	Bundling    PackageBundling
	Resolution  PackageResolution
}

// ToPackage serializes the resolved repository into an archive at
// url. The url may use any scheme the storage layer supports (plain
// paths, file://, mem://).
func (r *Repository) ToPackage(ctx context.Context, url string, opts PackageOptions) (*PackageMetadata, error) {
	if err := r.Resolve(); err != nil {
		return nil, fmt.Errorf("package repository: %w", err)
	}

	snap := &pack.Snapshot{
		Entries:       r.opts.entries,
		Namespaces:    r.registry.Mappings(),
		LocationRules: r.resolver.Rules(),
		Documents:     r.set.Documents(),
		Sources:       make(map[string][]byte),
	}
	for _, entry := range r.index.All() {
		snap.Index = append(snap.Index, pack.IndexEntry{
			Namespace:     entry.Namespace,
			Local:         entry.Local,
			Category:      entry.Category,
			SchemaFile:    entry.SchemaFile,
			Documentation: entry.Documentation,
		})
	}
	if opts.Bundling != BundleExternal {
		for _, doc := range r.set.Documents() {
			data, err := fs.ReadFile(r.opts.fsys, doc.Location)
			if err != nil {
				return nil, fmt.Errorf("package repository: bundle %s: %w", doc.Location, err)
			}
			snap.Sources[doc.Location] = data
		}
	}

	meta, err := pack.NewCodec().Write(ctx, url, snap, pack.Options{
		Name:        opts.Name,
		Version:     opts.Version,
		Description: opts.Description,
		Format:      opts.Format,
		Bundling:    opts.Bundling,
		Resolution:  opts.Resolution,
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// FromPackage reconstructs a repository from a package archive. A
// resolved package loads query-ready (NeedsParsing is false); a bare
// package needs Parse and Resolve, reading the bundled sources or,
// when the package was written with external bundling, the original
// paths relative to the current directory.
func FromPackage(ctx context.Context, url string) (*Repository, *PackageMetadata, error) {
	pkg, err := pack.NewCodec().Read(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	var fsys fs.FS
	if len(pkg.Sources) > 0 {
		fsys = pkg.SourceFS()
	} else {
		fsys = os.DirFS(".")
	}

	opts := NewOptions().WithFS(fsys).WithEntry(pkg.Entries...)
	for _, rule := range pkg.LocationRules {
		if rule.Pattern {
			opts = opts.WithLocationPattern(rule.From, rule.To)
		} else {
			opts = opts.WithLocationMapping(rule.From, rule.To)
		}
	}

	repo, err := NewRepository(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("load package %s: %w", url, err)
	}
	// Mappings replay in registration order, so the primary prefix
	// election matches the packaged repository.
	for _, mapping := range pkg.Namespaces {
		if err := repo.registry.Register(mapping.Prefix, mapping.URI); err != nil {
			return nil, nil, fmt.Errorf("load package %s: %w", url, err)
		}
	}

	if pkg.Metadata.Resolution == Resolved {
		for _, doc := range pkg.Documents {
			repo.set.Add(doc)
		}
		repo.parsed = true
		if err := repo.Resolve(); err != nil {
			return nil, nil, fmt.Errorf("load package %s: %w", url, err)
		}
	}

	return repo, &pkg.Metadata, nil
}

// MergePolicy selects how package conflicts are resolved.
type MergePolicy = merge.Policy

// Conflict resolution policies.
const (
	PolicyKeep     = merge.PolicyKeep
	PolicyOverride = merge.PolicyOverride
	PolicyError    = merge.PolicyError
)

// ConflictReport aggregates the namespace, type and schema-file
// conflicts found between package sources.
type ConflictReport = merge.Report

// PackageSource is one repository participating in a merge, with its
// originating package path, numeric priority (lower merges first) and
// conflict policy.
type PackageSource struct {
	Repository  *Repository
	PackagePath string
	Priority    int
	Policy      MergePolicy
}

// DetectPackageConflicts reports namespace, type and schema-file
// collisions between sources without resolving them. Every repository
// must already be resolved.
func DetectPackageConflicts(sources []PackageSource) (*ConflictReport, error) {
	snapshots, err := mergeSnapshots(sources)
	if err != nil {
		return nil, err
	}
	return merge.Detect(snapshots), nil
}

// ResolvePackageSources orders sources by priority and applies each
// source's conflict policy. A source with the error policy involved
// in any conflict fails the merge with a *PackageMergeError.
func ResolvePackageSources(sources []PackageSource) ([]PackageSource, *ConflictReport, error) {
	snapshots, err := mergeSnapshots(sources)
	if err != nil {
		return nil, nil, err
	}
	ordered, report, err := merge.Resolve(snapshots)
	if err != nil {
		return nil, report, err
	}
	byPath := make(map[string]PackageSource, len(sources))
	for _, src := range sources {
		byPath[src.PackagePath] = src
	}
	out := make([]PackageSource, 0, len(ordered))
	for _, snapshot := range ordered {
		out = append(out, byPath[snapshot.PackagePath])
	}
	return out, report, nil
}

func mergeSnapshots(sources []PackageSource) ([]merge.Source, error) {
	out := make([]merge.Source, 0, len(sources))
	for _, src := range sources {
		if src.Repository == nil {
			return nil, fmt.Errorf("merge packages: source %s has no repository", src.PackagePath)
		}
		if !src.Repository.resolved {
			return nil, fmt.Errorf("merge packages: source %s is not resolved", src.PackagePath)
		}
		snapshot := merge.Source{
			PackagePath: src.PackagePath,
			Priority:    src.Priority,
			Policy:      src.Policy,
			Namespaces:  src.Repository.AllNamespaces(),
		}
		for _, entry := range src.Repository.index.All() {
			snapshot.Types = append(snapshot.Types, typeindex.Key{
				Namespace: entry.Namespace,
				Local:     entry.Local,
				Category:  entry.Category,
			})
		}
		for _, doc := range src.Repository.set.Documents() {
			info := merge.FileInfo{Path: doc.Location, Basename: path.Base(doc.Location)}
			if data, err := fs.ReadFile(src.Repository.opts.fsys, doc.Location); err == nil {
				sum := sha256.Sum256(data)
				info.Digest = hex.EncodeToString(sum[:])
			}
			snapshot.Files = append(snapshot.Files, info)
		}
		out = append(out, snapshot)
	}
	return out, nil
}
