package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/leosyscfg/internal/memtext"
)

// CatalogPath returns a usable path to the test register catalog.
// Calls t.Skip if the fixture is not found.
func CatalogPath(t *testing.T) string {
	t.Helper()
	return resolveTestPath(t, TestCatalog)
}

// WriteImage encodes words as a text image in a temporary directory and
// returns its path.
//
// Example:
//
//	path := testutil.WriteImage(t, "leo_flash.mem", testutil.Builder{}.Words())
func WriteImage(t *testing.T, name string, words []uint32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, memtext.Marshal(words), 0o644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}
	return path
}

// ReadImage decodes the text image at path.
func ReadImage(t *testing.T, path string) []uint32 {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read image: %v", err)
	}
	words, err := memtext.Unmarshal(data)
	if err != nil {
		t.Fatalf("Failed to decode image %s: %v", path, err)
	}
	return words
}

// resolveTestPath attempts to find a fixture by trying multiple path resolutions.
// This handles the fact that tests may be run from different working directories.
func resolveTestPath(t *testing.T, relativePath string) string {
	t.Helper()

	// Try paths in order of likelihood
	candidates := []string{
		relativePath,                  // Direct path (from repo root)
		"../" + relativePath,          // From package one level deep
		"../../" + relativePath,       // From package two levels deep (e.g., internal/edit/)
		"../../../" + relativePath,    // From package three levels deep
		"../../../../" + relativePath, // From package four levels deep
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	t.Skipf("Fixture not found at any candidate path starting from: %s", relativePath)
	return "" // unreachable
}
