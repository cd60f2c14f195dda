package dropzone

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// File is one candidate dropped onto a zone.
type File struct {
	Name string
	// Type is the declared MIME type without parameters. It may be empty.
	Type string
	// Size is the content length in bytes, or -1 when unknown.
	Size int64
	// Path is set for files read from disk.
	Path string

	open func() (io.ReadCloser, error)
}

// NewFile builds a File backed by an arbitrary opener.
func NewFile(name, contentType string, size int64, open func() (io.ReadCloser, error)) File {
	return File{Name: name, Type: baseType(contentType), Size: size, open: open}
}

// FromBytes builds an in-memory File, sniffing its type from data.
func FromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Type: DetectType(name, bytes.NewReader(data)),
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromPath stats and sniffs a file on disk. Content is not kept open.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer f.Close()

	return File{
		Name: filepath.Base(path),
		Type: DetectType(path, f),
		Size: info.Size(),
		Path: path,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Open returns a fresh reader over the file content.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, errors.New("file has no content")
	}
	return f.open()
}

// DetectType sniffs r and falls back to the name's extension when the
// content is not recognised.
func DetectType(name string, r io.Reader) string {
	if r != nil {
		if m, err := mimetype.DetectReader(r); err == nil && !m.Is(octetStream) {
			return baseType(m.String())
		}
	}

	return baseType(mime.TypeByExtension(strings.ToLower(filepath.Ext(name))))
}

func baseType(t string) string {
	if t == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(t))
	}
	return mediaType
}
