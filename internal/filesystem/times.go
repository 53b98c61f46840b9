package filesystem

import (
	"io/fs"
	"time"
)

// The three timestamps that are carried from a source file into every sink
type FileTimes struct {

	// When the file was created (falls back to the modification time where the platform cannot report it)
	Created time.Time

	// When the file was last read
	Accessed time.Time

	// When the file contents were last modified
	Modified time.Time
}

// Retrieves the timestamps for the file at the specified path, using the lstat details already gathered for it
func Times(path string, info fs.FileInfo) FileTimes {
	return statTimes(path, info)
}

// Returns timestamps that all equal the modification time
func modTimes(info fs.FileInfo) FileTimes {
	modified := info.ModTime()
	return FileTimes{Created: modified, Accessed: modified, Modified: modified}
}
