//go:build linux || darwin || freebsd

package mmfile

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Map maps the file at path read-only and returns its contents with a
// function that releases the mapping. The data must not be used after
// release.
func Map(path string) ([]byte, func() error, error) {
	f, size, err := stat(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // the mapping outlives the descriptor

	if size == 0 {
		return []byte{}, noop, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	release := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			return nil
		}
		return err
	}
	return data, release, nil
}
