//go:build linux

package filesystem

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// Opens a file for reading without updating its access time where the caller is permitted to do so
func OpenNoAtime(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_RDONLY|unix.O_NOATIME, 0)

	// O_NOATIME is refused with EPERM for files the caller does not own
	if errors.Is(err, fs.ErrPermission) {
		return os.Open(path)
	}
	return file, err
}
