//go:build windows

package filesystem

import (
	"io/fs"
	"syscall"
	"time"
)

func statTimes(path string, info fs.FileInfo) FileTimes {
	times := modTimes(info)
	if sys, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		times.Created = time.Unix(0, sys.CreationTime.Nanoseconds())
		times.Accessed = time.Unix(0, sys.LastAccessTime.Nanoseconds())
	}
	return times
}
