package attributes

import (
	"io/fs"

	"github.com/macoscontainers/fsdump/internal/filesystem"
	digest "github.com/opencontainers/go-digest"
)

// Exposes a content digest of a regular file, so records reveal content changes as well as metadata changes
type contentView struct{}

func (contentView) Name() string {
	return "content"
}

func (contentView) ReadAll(path string, info fs.FileInfo) ([]Attribute, error) {
	if !info.Mode().IsRegular() {
		return nil, ErrViewUnsupported
	}

	// Attempt to open the file without disturbing its access time
	file, err := filesystem.OpenNoAtime(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// Compute the digest using the canonical (sha256) algorithm
	dgst, err := digest.Canonical.FromReader(file)
	if err != nil {
		return nil, err
	}

	return []Attribute{{"digest", dgst.String()}}, nil
}
