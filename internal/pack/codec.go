package pack

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"gopkg.in/yaml.v3"

	"github.com/jacoelho/xsdrepo/internal/location"
	"github.com/jacoelho/xsdrepo/internal/nsregistry"
	"github.com/jacoelho/xsdrepo/internal/schema"
)

const (
	metadataEntry  = "metadata.json"
	configEntry    = "config.json"
	documentsStem  = "documents"
	indexStem      = "index"
	sourcePrefix   = "xsd/"
	packageVersion = "1"
)

// Options configures one Write call.
type Options struct {
	Name        string
	Version     string
	Description string
	Format      Format
	Bundling    Bundling
	Resolution  Resolution
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatGob
	}
	if o.Bundling == "" {
		o.Bundling = BundleAll
	}
	if o.Resolution == "" {
		o.Resolution = Resolved
	}
	return o
}

// Snapshot is the repository state handed to Write.
type Snapshot struct {
	Entries       []string
	Namespaces    []nsregistry.Mapping
	LocationRules []location.Rule
	Documents     []*schema.Document
	Index         []IndexEntry
	Sources       map[string][]byte
}

// Package is the result of Read.
type Package struct {
	Metadata      Metadata
	Entries       []string
	Namespaces    []nsregistry.Mapping
	LocationRules []location.Rule
	Documents     []*schema.Document
	Index         []IndexEntry
	Sources       map[string][]byte
}

// SourceFS exposes bundled .xsd sources as an fs.FS for re-parsing
// bare packages.
func (p *Package) SourceFS() fs.FS {
	return memFS(p.Sources)
}

// Codec reads and writes package archives through URL-addressed
// storage, so packages may live on local disk, memory or any scheme
// the storage layer supports.
type Codec struct {
	fs afs.Service
}

// NewCodec creates a codec backed by the default storage service.
func NewCodec() *Codec {
	return &Codec{fs: afs.New()}
}

type configWire struct {
	PackageVersion string          `json:"package_version"`
	Entries        []string        `json:"entries,omitempty"`
	Namespaces     []mappingWire   `json:"namespaces,omitempty"`
	Locations      []locationWire  `json:"locations,omitempty"`
}

type mappingWire struct {
	Prefix   string `json:"prefix"`
	URI      string `json:"uri"`
	Explicit bool   `json:"explicit,omitempty"`
}

type locationWire struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Pattern bool   `json:"pattern,omitempty"`
}

type documentSetWire struct {
	Documents []*documentWire `json:"documents" yaml:"documents"`
}

type indexWire struct {
	Entries []IndexEntry `json:"entries" yaml:"entries"`
}

// Write serializes the snapshot into a zip archive at url.
func (c *Codec) Write(ctx context.Context, url string, snap *Snapshot, opts Options) (*Metadata, error) {
	opts = opts.withDefaults()
	meta := Metadata{
		ID:          uuid.NewString(),
		Name:        opts.Name,
		Version:     opts.Version,
		Description: opts.Description,
		CreatedAt:   time.Now().UTC(),
		Format:      opts.Format,
		Bundling:    opts.Bundling,
		Resolution:  opts.Resolution,
	}
	if err := meta.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("write package %s: encode metadata: %w", url, err)
	}
	if err := addZipEntry(zw, metadataEntry, metaData); err != nil {
		return nil, fmt.Errorf("write package %s: %w", url, err)
	}

	cfg := configWire{PackageVersion: packageVersion, Entries: snap.Entries}
	for _, mapping := range snap.Namespaces {
		cfg.Namespaces = append(cfg.Namespaces, mappingWire(mapping))
	}
	for _, rule := range snap.LocationRules {
		cfg.Locations = append(cfg.Locations, locationWire{From: rule.From, To: rule.To, Pattern: rule.Pattern})
	}
	cfgData, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("write package %s: encode config: %w", url, err)
	}
	if err := addZipEntry(zw, configEntry, cfgData); err != nil {
		return nil, fmt.Errorf("write package %s: %w", url, err)
	}

	if meta.Resolution == Resolved {
		docs := documentSetWire{}
		for _, doc := range snap.Documents {
			docs.Documents = append(docs.Documents, toDocumentWire(doc))
		}
		docData, err := encodePayload(meta.Format, &docs)
		if err != nil {
			return nil, fmt.Errorf("write package %s: encode documents: %w", url, err)
		}
		if err := addZipEntry(zw, payloadEntry(documentsStem, meta.Format), docData); err != nil {
			return nil, fmt.Errorf("write package %s: %w", url, err)
		}

		idxData, err := encodePayload(meta.Format, &indexWire{Entries: snap.Index})
		if err != nil {
			return nil, fmt.Errorf("write package %s: encode index: %w", url, err)
		}
		if err := addZipEntry(zw, payloadEntry(indexStem, meta.Format), idxData); err != nil {
			return nil, fmt.Errorf("write package %s: %w", url, err)
		}
	}

	if meta.Bundling == BundleAll {
		paths := make([]string, 0, len(snap.Sources))
		for p := range snap.Sources {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			if err := addZipEntry(zw, sourcePrefix+p, snap.Sources[p]); err != nil {
				return nil, fmt.Errorf("write package %s: %w", url, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("write package %s: close archive: %w", url, err)
	}
	if err := c.fs.Upload(ctx, url, file.DefaultFileOsMode, bytes.NewReader(buf.Bytes())); err != nil {
		return nil, fmt.Errorf("write package %s: upload: %w", url, err)
	}
	return &meta, nil
}

// Read loads a package archive from url.
func (c *Codec) Read(ctx context.Context, url string) (*Package, error) {
	data, err := c.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("read package %s: download: %w", url, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read package %s: open archive: %w", url, err)
	}

	pkg := &Package{Sources: make(map[string][]byte)}

	metaData, err := readZipEntry(zr, metadataEntry)
	if err != nil {
		return nil, fmt.Errorf("read package %s: %w", url, err)
	}
	if err := json.Unmarshal(metaData, &pkg.Metadata); err != nil {
		return nil, fmt.Errorf("read package %s: decode metadata: %w", url, err)
	}
	if err := pkg.Metadata.validate(); err != nil {
		return nil, fmt.Errorf("read package %s: %w", url, err)
	}

	cfgData, err := readZipEntry(zr, configEntry)
	if err != nil {
		return nil, fmt.Errorf("read package %s: %w", url, err)
	}
	var cfg configWire
	if err := json.Unmarshal(cfgData, &cfg); err != nil {
		return nil, fmt.Errorf("read package %s: decode config: %w", url, err)
	}
	pkg.Entries = cfg.Entries
	for _, mapping := range cfg.Namespaces {
		pkg.Namespaces = append(pkg.Namespaces, nsregistry.Mapping(mapping))
	}
	for _, loc := range cfg.Locations {
		rule := location.Rule{From: loc.From, To: loc.To, Pattern: loc.Pattern}
		pkg.LocationRules = append(pkg.LocationRules, rule)
	}

	if pkg.Metadata.Resolution == Resolved {
		docData, err := readZipEntry(zr, payloadEntry(documentsStem, pkg.Metadata.Format))
		if err != nil {
			return nil, fmt.Errorf("read package %s: %w", url, err)
		}
		var docs documentSetWire
		if err := decodePayload(pkg.Metadata.Format, docData, &docs); err != nil {
			return nil, fmt.Errorf("read package %s: decode documents: %w", url, err)
		}
		for _, w := range docs.Documents {
			pkg.Documents = append(pkg.Documents, fromDocumentWire(w))
		}

		idxData, err := readZipEntry(zr, payloadEntry(indexStem, pkg.Metadata.Format))
		if err != nil {
			return nil, fmt.Errorf("read package %s: %w", url, err)
		}
		var idx indexWire
		if err := decodePayload(pkg.Metadata.Format, idxData, &idx); err != nil {
			return nil, fmt.Errorf("read package %s: decode index: %w", url, err)
		}
		pkg.Index = idx.Entries
	}

	for _, entry := range zr.File {
		if !isSourceEntry(entry.Name) {
			continue
		}
		content, err := readAll(entry)
		if err != nil {
			return nil, fmt.Errorf("read package %s: source %s: %w", url, entry.Name, err)
		}
		pkg.Sources[entry.Name[len(sourcePrefix):]] = content
	}

	return pkg, nil
}

func isSourceEntry(name string) bool {
	return len(name) > len(sourcePrefix) && name[:len(sourcePrefix)] == sourcePrefix
}

func payloadEntry(stem string, format Format) string {
	return stem + "." + string(format)
}

func encodePayload(format Format, v any) ([]byte, error) {
	switch format {
	case FormatGob:
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("unknown payload format %q", format)
	}
}

func decodePayload(format Format, data []byte, v any) error {
	switch format {
	case FormatGob:
		return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unknown payload format %q", format)
	}
}

func addZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write archive entry %s: %w", name, err)
	}
	return nil
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, entry := range zr.File {
		if path.Clean(entry.Name) == name {
			return readAll(entry)
		}
	}
	return nil, fmt.Errorf("archive entry %s not found", name)
}

func readAll(entry *zip.File) (data []byte, err error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return io.ReadAll(rc)
}
