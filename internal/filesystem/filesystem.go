package filesystem

import "os"

// Determines if the specified file or directory exists
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !os.IsNotExist(err)
}
