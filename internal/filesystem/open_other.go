//go:build !linux

package filesystem

import "os"

// Opens a file for reading
func OpenNoAtime(path string) (*os.File, error) {
	return os.Open(path)
}
