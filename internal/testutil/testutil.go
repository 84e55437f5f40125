// Package testutil provides fixtures for pipeline tests. All trees are
// built under t.TempDir() so tests stay isolated and self-cleaning.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Fixture holds a scratch directory tree for a dedup test
type Fixture struct {
	T    *testing.T
	Root string
}

// NewFixture creates an empty fixture tree
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return &Fixture{T: t, Root: t.TempDir()}
}

// WriteFile creates a file at relPath (creating parent directories) with
// the given content and returns its absolute path.
func (f *Fixture) WriteFile(relPath string, content []byte) string {
	f.T.Helper()

	path := filepath.Join(f.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		f.T.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		f.T.Fatalf("failed to write %s: %v", relPath, err)
	}
	return path
}

// WriteString is WriteFile for string content
func (f *Fixture) WriteString(relPath, content string) string {
	f.T.Helper()
	return f.WriteFile(relPath, []byte(content))
}

// WriteRepeated creates a file of size bytes filled with the byte b
func (f *Fixture) WriteRepeated(relPath string, b byte, size int) string {
	f.T.Helper()
	return f.WriteFile(relPath, []byte(strings.Repeat(string(b), size)))
}

// Path returns the absolute path for a relative one
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.Root, relPath)
}

// Exists reports whether relPath still exists in the fixture tree
func (f *Fixture) Exists(relPath string) bool {
	_, err := os.Stat(filepath.Join(f.Root, relPath))
	return err == nil
}
