package documents

import (
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpen(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	path, err := storage.Save("PL-001", KindSpec, "line spec (v2).pdf", strings.NewReader("spec body"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(path, "PL-001/") {
		t.Fatalf("stored path %q not under project dir", path)
	}
	if strings.Contains(path, " ") || strings.Contains(path, "(") {
		t.Fatalf("stored path %q not sanitized", path)
	}

	reader, err := storage.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "spec body" {
		t.Fatalf("read %q, want original content", data)
	}
}

func TestSaveRejectsUnknownKind(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	if _, err := storage.Save("PL-001", "blueprint", "x.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	if _, err := storage.Open("../etc/passwd"); err == nil {
		t.Fatal("expected error for traversal path")
	}
}
