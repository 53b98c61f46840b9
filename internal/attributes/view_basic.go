package attributes

import (
	"io/fs"

	"github.com/macoscontainers/fsdump/internal/filesystem"
)

// Exposes the timestamps, size and type of a file
type basicView struct{}

func (basicView) Name() string {
	return "basic"
}

func (basicView) ReadAll(path string, info fs.FileInfo) ([]Attribute, error) {
	times := filesystem.Times(path, info)
	mode := info.Mode()

	attrs := []Attribute{
		{"creationTime", formatTime(times.Created)},
		{"isDirectory", formatBool(mode.IsDir())},
		{"isOther", formatBool(!mode.IsRegular() && !mode.IsDir() && mode&fs.ModeSymlink == 0)},
		{"isRegularFile", formatBool(mode.IsRegular())},
		{"isSymbolicLink", formatBool(mode&fs.ModeSymlink != 0)},
		{"lastAccessTime", formatTime(times.Accessed)},
		{"lastModifiedTime", formatTime(times.Modified)},
		{"size", formatUint(uint64(info.Size()))},
	}

	// Identifies the underlying file where the platform provides a stable key
	if key, ok := fileKey(info); ok {
		attrs = append(attrs, Attribute{"fileKey", key})
	}

	return attrs, nil
}
