//go:build windows

package attributes

import (
	"errors"
	"io/fs"
	"syscall"
)

func platformViews() []View {
	return []View{basicView{}, dosView{}, contentView{}}
}

func fileKey(info fs.FileInfo) (string, bool) {
	return "", false
}

// Exposes the legacy DOS attribute flags of a file
type dosView struct{}

func (dosView) Name() string {
	return "dos"
}

func (dosView) ReadAll(path string, info fs.FileInfo) ([]Attribute, error) {
	sys, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return nil, errors.New("fs.FileInfo.Sys() was not a syscall.Win32FileAttributeData object")
	}

	flags := sys.FileAttributes
	return []Attribute{
		{"archive", formatBool(flags&syscall.FILE_ATTRIBUTE_ARCHIVE != 0)},
		{"hidden", formatBool(flags&syscall.FILE_ATTRIBUTE_HIDDEN != 0)},
		{"readonly", formatBool(flags&syscall.FILE_ATTRIBUTE_READONLY != 0)},
		{"system", formatBool(flags&syscall.FILE_ATTRIBUTE_SYSTEM != 0)},
	}, nil
}
