package writer

import (
	"fmt"
	"io"
	"os"
)

// BackupSuffix is appended to the image path to form the backup path.
const BackupSuffix = ".bak"

// Backup copies the file at path to path+BackupSuffix and returns the
// backup path. An earlier backup is overwritten.
func Backup(path string) (string, error) {
	dst := path + BackupSuffix
	if err := copyFile(path, dst); err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	fi, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer dstFile.Close()

	if _, copyErr := io.Copy(dstFile, srcFile); copyErr != nil {
		return fmt.Errorf("copy data: %w", copyErr)
	}
	return dstFile.Close()
}
