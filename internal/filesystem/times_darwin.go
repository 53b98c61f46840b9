//go:build darwin

package filesystem

import (
	"io/fs"
	"syscall"
	"time"
)

func statTimes(path string, info fs.FileInfo) FileTimes {
	times := modTimes(info)
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		times.Accessed = time.Unix(sys.Atimespec.Unix())
		times.Created = time.Unix(sys.Birthtimespec.Unix())
	}
	return times
}

// Retrieves the inode change time from lstat details
func ChangeTime(info fs.FileInfo) (time.Time, bool) {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(sys.Ctimespec.Unix()), true
}
