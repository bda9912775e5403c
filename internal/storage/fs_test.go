package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStorePut(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, "http://localhost:8080/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	url, err := fs.Put("photo.jpg", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/") {
		t.Errorf("url = %q, want /uploads/ prefix", url)
	}
	if !strings.HasSuffix(url, "-photo.jpg") {
		t.Errorf("url = %q, want timestamped filename", url)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("files = %d, want 1", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("stored data = %q", data)
	}
}

func TestFileStoreSanitizesFilename(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	url, err := fs.Put("../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if strings.Contains(url, "..") {
		t.Errorf("url contains path traversal: %q", url)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("files = %d, want 1", len(entries))
	}
	if strings.Contains(entries[0].Name(), string(filepath.Separator)) {
		t.Errorf("stored name escapes dir: %q", entries[0].Name())
	}
}

func TestFileStoreRejectsOversizedUpload(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	big := strings.NewReader(strings.Repeat("a", maxUploadSize+1))
	if _, err := fs.Put("big.bin", big); err == nil {
		t.Fatal("expected error for oversized upload")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("files = %d, want 0 after rejected upload", len(entries))
	}
}
