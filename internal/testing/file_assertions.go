package testing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// FileAssertions provides utilities for asserting file system state in tests
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{
		t:       t,
		baseDir: baseDir,
	}
}

// AssertFileExists validates that a file exists
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		fa.t.Errorf("Expected file to exist: %s", fullPath)
	}
	return fa
}

// AssertFileNotExists validates that a file does not exist
func (fa *FileAssertions) AssertFileNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Stat(fullPath); err == nil {
		fa.t.Errorf("Expected file to not exist: %s", fullPath)
	}
	return fa
}

// AssertDirExists validates that a directory exists
func (fa *FileAssertions) AssertDirExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if stat, err := os.Stat(fullPath); os.IsNotExist(err) {
		fa.t.Errorf("Expected directory to exist: %s", fullPath)
	} else if err == nil && !stat.IsDir() {
		fa.t.Errorf("Expected %s to be a directory, but it's a file", fullPath)
	}
	return fa
}

// AssertFileContent validates that a file holds exactly want.
func (fa *FileAssertions) AssertFileContent(relativePath, want string) *FileAssertions {
	fa.t.Helper()
	got := fa.GetFileContent(relativePath)
	if got != want {
		fa.t.Errorf("Unexpected content in %s\nwant:\n%s\ngot:\n%s", relativePath, want, got)
	}
	return fa
}

// AssertManifest validates the package.json synthesized into dir: its
// "type" and "main" fields, and that "exports" was dropped.
func (fa *FileAssertions) AssertManifest(dir, wantType, wantMain string) *FileAssertions {
	fa.t.Helper()
	rel := filepath.Join(dir, "package.json")
	var m map[string]any
	if err := json.Unmarshal([]byte(fa.GetFileContent(rel)), &m); err != nil {
		fa.t.Errorf("Manifest %s is not valid JSON: %v", rel, err)
		return fa
	}
	if m["type"] != wantType {
		fa.t.Errorf("Manifest %s: type = %v, want %q", rel, m["type"], wantType)
	}
	if m["main"] != wantMain {
		fa.t.Errorf("Manifest %s: main = %v, want %q", rel, m["main"], wantMain)
	}
	if _, ok := m["exports"]; ok {
		fa.t.Errorf("Manifest %s still carries exports", rel)
	}
	return fa
}

// GetFileContent reads and returns the content of a file
func (fa *FileAssertions) GetFileContent(relativePath string) string {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)

	content, err := os.ReadFile(fullPath)
	if err != nil {
		fa.t.Fatalf("Failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}
