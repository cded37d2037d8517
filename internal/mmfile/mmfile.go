// Package mmfile maps flash image files into memory for decoding.
package mmfile

import (
	"fmt"
	"os"
)

// MaxSize bounds the files Map accepts. Leo flash images are a few MiB.
const MaxSize = 256 << 20

func noop() error { return nil }

// stat opens path and checks that it is a regular file Map can take.
func stat(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, 0, fmt.Errorf("mmfile: %s is not a regular file", path)
	}
	if info.Size() > MaxSize {
		f.Close()
		return nil, 0, fmt.Errorf("mmfile: %s is too large (%d bytes, limit %d)", path, info.Size(), MaxSize)
	}
	return f, info.Size(), nil
}
