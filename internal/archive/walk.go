package archive

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/macoscontainers/fsdump/internal/attributes"
	"github.com/macoscontainers/fsdump/internal/filesystem"
	archiver "github.com/mholt/archiver/v3"
)

// Describes an entry read back from an archive written by a Sink
type Entry struct {

	// The entry name (the root-relative path of the source file)
	Name string

	// The attribute record decoded from the entry comment
	Record attributes.Record

	// The entry timestamps (all equal to the header modification time when the archive carries no NTFS field)
	Times filesystem.FileTimes

	// The raw zip header
	Header zip.FileHeader

	// The entry contents, only valid for the duration of the callback
	Content io.Reader
}

// Reads the archive at the specified path, invoking the callback for each entry in archive order
func Walk(archivePath string, walkFn func(Entry) error) error {
	return archiver.NewZip().Walk(archivePath, func(f archiver.File) error {

		// The zip archiver exposes the raw zip header for each entry
		header, ok := f.Header.(zip.FileHeader)
		if !ok {
			return fmt.Errorf("%s: unexpected header type %T", f.Name(), f.Header)
		}

		// Decode the attribute record from the entry comment
		record, _, err := attributes.DecodeString(header.Comment)
		if err != nil {
			return fmt.Errorf("%s: decoding attribute record: %w", header.Name, err)
		}

		// Prefer the full resolution timestamps over the header modification time
		times, ok := parseNTFSExtra(header.Extra)
		if !ok {
			times = filesystem.FileTimes{Created: header.Modified, Accessed: header.Modified, Modified: header.Modified}
		}

		return walkFn(Entry{
			Name:    header.Name,
			Record:  record,
			Times:   times,
			Header:  header,
			Content: f,
		})
	})
}
