// Package storage stores uploaded gallery images on the local
// filesystem and serves them under a public URL prefix.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxUploadSize caps a single gallery image at 5 MiB.
const maxUploadSize = 5 << 20

// FileStore writes blobs under a base directory and maps them to URLs
// under /uploads/.
type FileStore struct {
	dir     string
	baseURL string
}

// NewFileStore creates the upload directory if needed.
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the directory backing the store, for static file serving.
func (f *FileStore) Dir() string { return f.dir }

// Put stores the blob under a timestamp-prefixed version of filename
// and returns its public URL. The filename is sanitized to its base
// name so callers cannot escape the upload directory.
func (f *FileStore) Put(filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitize(filename))
	path := filepath.Join(f.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n > maxUploadSize {
		os.Remove(path)
		return "", fmt.Errorf("upload exceeds %d bytes", maxUploadSize)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload: %w", err)
	}

	return f.baseURL + "/uploads/" + name, nil
}

func sanitize(filename string) string {
	name := filepath.Base(filename)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '-'
	}, name)
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}
