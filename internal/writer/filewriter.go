// Package writer exposes sinks for emitting edited flash images.
package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshuapare/leosyscfg/internal/memtext"
)

// Writer receives an encoded image.
type Writer interface {
	WriteImage(buf []byte) error
}

// DefaultPerm is used when the target does not exist yet.
const DefaultPerm os.FileMode = 0o644

// FileWriter writes image bytes to a filesystem path atomically. The
// previous file, if any, stays intact until the rename succeeds.
type FileWriter struct {
	Path string
}

// WriteImage writes buf to the configured path via temp file + rename.
// An existing target keeps its permission bits.
func (w *FileWriter) WriteImage(buf []byte) error {
	perm := DefaultPerm
	if fi, err := os.Stat(w.Path); err == nil {
		if fi.IsDir() {
			return fmt.Errorf("%s is a directory", w.Path)
		}
		perm = fi.Mode().Perm()
	}

	// Temp file in the same directory keeps the rename atomic
	dir := filepath.Dir(w.Path)
	tmpFile, err := os.CreateTemp(dir, ".leocfg-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := tmpFile.Write(buf); writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}
	if chmodErr := tmpFile.Chmod(perm); chmodErr != nil {
		return fmt.Errorf("chmod temp file: %w", chmodErr)
	}
	if syncErr := tmpFile.Sync(); syncErr != nil {
		return fmt.Errorf("sync temp file: %w", syncErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	tmpFile = nil

	if renameErr := os.Rename(tmpPath, w.Path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", renameErr)
	}

	// Persist the directory entry so the rename survives a crash
	if syncErr := syncDir(dir); syncErr != nil {
		return fmt.Errorf("sync directory: %w", syncErr)
	}
	return nil
}

// WriteWords encodes words in the text image format and hands them to w.
func WriteWords(w Writer, words []uint32) error {
	return w.WriteImage(memtext.Marshal(words))
}
