//go:build linux

package filesystem

import (
	"io/fs"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

func statTimes(path string, info fs.FileInfo) FileTimes {
	times := modTimes(info)

	// Access time comes straight from the lstat details
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		times.Accessed = time.Unix(int64(sys.Atim.Sec), int64(sys.Atim.Nsec))
	}

	// Birth time is only available through statx, and only on filesystems that record it
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err == nil && stx.Mask&unix.STATX_BTIME != 0 {
		times.Created = time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
	}

	return times
}

// Retrieves the inode change time from lstat details
func ChangeTime(info fs.FileInfo) (time.Time, bool) {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(sys.Ctim.Sec), int64(sys.Ctim.Nsec)), true
}
