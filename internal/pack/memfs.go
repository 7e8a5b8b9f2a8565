package pack

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"time"
)

// memFS serves bundled .xsd sources as an fs.FS so a bare package
// can be re-parsed without touching disk.
type memFS map[string][]byte

// Open implements fs.FS.
func (m memFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	data, ok := m[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memFile{name: path.Base(name), Reader: bytes.NewReader(data)}, nil
}

type memFile struct {
	*bytes.Reader
	name string
}

// Stat implements fs.File.
func (f *memFile) Stat() (fs.FileInfo, error) {
	return memFileInfo{name: f.name, size: f.Reader.Size()}, nil
}

// Close implements fs.File.
func (f *memFile) Close() error { return nil }

var _ io.ReaderAt = (*memFile)(nil)

type memFileInfo struct {
	name string
	size int64
}

func (i memFileInfo) Name() string       { return i.name }
func (i memFileInfo) Size() int64        { return i.size }
func (i memFileInfo) Mode() fs.FileMode  { return 0o444 }
func (i memFileInfo) ModTime() time.Time { return time.Time{} }
func (i memFileInfo) IsDir() bool        { return false }
func (i memFileInfo) Sys() any           { return nil }
