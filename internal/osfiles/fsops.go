// Package osfiles adapts a directory of ordinary host files into MFS file
// handlers: one registered name per regular file directly inside a root
// directory. Unlike the wire protocol, the filesystem is hierarchical, so
// this package's job is narrow — map a flat registered name to exactly one
// path under root, refusing anything that would escape it.
package osfiles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mfsd/internal/mfs"
)

// ErrEscapesRoot is returned when a name would resolve outside root, or
// names a symlink, directory, or anything other than a plain file.
var ErrEscapesRoot = errors.New("osfiles: name escapes root or is not a plain file")

// resolve maps name to an absolute path inside root. Names containing a
// path separator or a "." component are rejected outright: MFS names are
// flat, and there is no reason to accept anything a directory listing
// would not itself produce.
func resolve(root, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", ErrEscapesRoot
	}
	clean := filepath.Clean(name)
	if clean != name || clean == "." || clean == ".." {
		return "", ErrEscapesRoot
	}
	p := filepath.Join(root, clean)
	if info, err := os.Lstat(p); err == nil && !info.Mode().IsRegular() {
		return "", ErrEscapesRoot
	}
	return p, nil
}

// File is one registered MFS file backed by a single path under root. Its
// Reader and Writer methods are mfs.Handler values suitable for
// (*mfs.Server).RegisterFile.
type File struct {
	root    string
	name    string
	maxSize uint32
}

// NewFile describes the host file registered as name under root. maxSize
// bounds both the largest read response and the largest accepted write;
// it should not exceed the server's configured data buffer.
func NewFile(root, name string, maxSize uint32) *File {
	return &File{root: root, name: name, maxSize: maxSize}
}

// Reader implements READ by returning the full file content, truncated to
// maxSize. A missing file reads back as zero bytes, mirroring a freshly
// truncated file rather than an error — callers distinguish "exists but
// empty" from "never written" the same way either way.
func (f *File) Reader() mfs.Handler {
	return func(req mfs.Message) mfs.Message {
		resp := mfs.Message{Op: mfs.ResponseOf(mfs.OpREAD), Path: req.Path, PSize: req.PSize}

		path, err := resolve(f.root, f.name)
		if err != nil {
			return resp
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return resp
		}
		if uint32(len(data)) > f.maxSize {
			data = data[:f.maxSize]
		}
		resp.DSize = uint32(len(data))
		resp.Data = data
		return resp
	}
}

// Writer implements WRITE by truncating the file to req.Data. The response
// echoes the request with no data payload, matching a successful write
// acknowledgement. A write that is refused (bad name, over maxSize) or that
// fails is answered with an ERROR response carrying ErrFileNotFound.
func (f *File) Writer() mfs.Handler {
	return func(req mfs.Message) mfs.Message {
		resp := mfs.Message{Op: mfs.ResponseOf(mfs.OpWRITE), Path: req.Path, PSize: req.PSize}
		code := mfs.ErrFileNotFound
		fail := mfs.Message{
			Op: mfs.ResponseOf(mfs.OpERROR), Path: req.Path, PSize: req.PSize,
			DSize: 2, Data: []byte{byte(code), byte(code >> 8)},
		}

		path, err := resolve(f.root, f.name)
		if err != nil {
			return fail
		}
		if req.DSize > f.maxSize {
			return fail
		}
		if err := os.WriteFile(path, req.Data[:req.DSize], 0o644); err != nil {
			return fail
		}
		return resp
	}
}

// ScanRoot lists the regular files directly inside root, returning their
// base names. Used to seed the registry with whatever already exists
// before DirSync starts watching for changes.
func ScanRoot(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("osfiles: scan %s: %w", root, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
