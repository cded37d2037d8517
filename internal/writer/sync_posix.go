//go:build linux || darwin || freebsd

package writer

import (
	"golang.org/x/sys/unix"
)

// syncDir fsyncs the directory so a completed rename is durable.
func syncDir(dir string) error {
	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	err = unix.Fsync(fd)
	// Some filesystems refuse fsync on directories
	if err == unix.EINVAL || err == unix.ENOTSUP {
		return nil
	}
	return err
}
