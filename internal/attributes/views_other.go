//go:build !linux && !darwin && !windows

package attributes

import "io/fs"

func platformViews() []View {
	return []View{basicView{}, contentView{}}
}

func fileKey(info fs.FileInfo) (string, bool) {
	return "", false
}
