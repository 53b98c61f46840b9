//go:build !linux && !darwin && !windows

package filesystem

import "io/fs"

func statTimes(path string, info fs.FileInfo) FileTimes {
	return modTimes(info)
}
