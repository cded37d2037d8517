//go:build !linux && !darwin && !freebsd

package mmfile

import "io"

// Map reads the whole file where mmap is not wired up.
func Map(path string) ([]byte, func() error, error) {
	f, _, err := stat(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return data, noop, nil
}
