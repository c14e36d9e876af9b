// Package documents stores uploaded project files on disk.
package documents

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// KindSpec and KindSketch are the document slots a project carries.
const (
	KindSpec   = "spec"
	KindSketch = "sketch"
)

// ValidKind reports whether kind names a known document slot.
func ValidKind(kind string) bool {
	return kind == KindSpec || kind == KindSketch
}

// Storage writes and reads project documents under a root directory.
// Stored paths are relative to the root so the root can move between
// environments.
type Storage struct {
	root string
}

// NewStorage constructs a storage rooted at dir.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("documents: empty storage root")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Storage{root: dir}, nil
}

// Save writes the document and returns its stored relative path. The
// original filename is kept, prefixed with a timestamp to avoid collisions.
func (s *Storage) Save(projectID, kind, filename string, src io.Reader) (string, error) {
	if s == nil {
		return "", errors.New("documents: nil storage")
	}
	if projectID == "" {
		return "", errors.New("documents: empty project id")
	}
	if !ValidKind(kind) {
		return "", fmt.Errorf("documents: unknown kind %q", kind)
	}
	name := sanitizeFilename(filename)
	if name == "" {
		name = "upload"
	}
	relative := filepath.Join(projectID, kind, fmt.Sprintf("%d_%s", time.Now().UTC().UnixNano(), name))
	target := filepath.Join(s.root, relative)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return relative, nil
}

// Open returns a reader for a stored relative path.
func (s *Storage) Open(relative string) (io.ReadCloser, error) {
	if s == nil {
		return nil, errors.New("documents: nil storage")
	}
	cleaned := filepath.Clean(relative)
	if cleaned == "" || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return nil, fmt.Errorf("documents: invalid path %q", relative)
	}
	return os.Open(filepath.Join(s.root, cleaned))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
