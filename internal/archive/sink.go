package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/macoscontainers/fsdump/internal/attributes"
	"github.com/macoscontainers/fsdump/internal/fault"
	"github.com/macoscontainers/fsdump/internal/filesystem"
	"github.com/macoscontainers/fsdump/internal/logging"
)

// The largest attribute record that fits in a zip entry comment
const MaxCommentLength = 0xffff

// Writes every regular file of a traversal into a zip archive, with the file's attribute record
// as the entry comment and the file's timestamps on the entry.
// A Sink is valid for exactly one traversal and must be closed once it is finished with.
type Sink struct {

	// Gathers the attributes of each source file
	Collector *attributes.Collector

	// The number of entries written
	Written int

	// The archive writer
	zw *zip.Writer

	// The archive file, when the sink created it
	file *os.File

	// The details of the archive file, so it is not archived into itself
	self fs.FileInfo

	// Per-entry failures that did not abort the traversal
	failures *multierror.Error

	// Opens source files for reading
	open func(string) (*os.File, error)

	closed bool
}

// Creates the archive file at the specified path and returns a Sink writing into it
func Create(destination string, collector *attributes.Collector) (*Sink, error) {

	// Attempt to create the archive file
	file, err := os.Create(destination)
	if err != nil {
		return nil, fault.New(fault.KindSinkWriteFailed, "create archive", destination, err)
	}

	// Remember the identity of the archive file in case it lives inside the source tree
	self, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fault.New(fault.KindSinkWriteFailed, "stat archive", destination, err)
	}

	sink := NewSink(file, collector)
	sink.file = file
	sink.self = self
	return sink, nil
}

// Creates a Sink that writes an archive to the specified writer
func NewSink(w io.Writer, collector *attributes.Collector) *Sink {
	return &Sink{
		Collector: collector,
		zw:        zip.NewWriter(w),
		open:      filesystem.OpenNoAtime,
	}
}

// Adds a regular file and its attribute record to the archive
func (sink *Sink) VisitFile(entry filesystem.FileEntry) error {
	logger := logging.Component("archive")

	if sink.closed {
		return fault.New(fault.KindSinkWriteFailed, "archive", entry.Path, os.ErrClosed)
	}

	// Never archive the archive itself
	if sink.self != nil && os.SameFile(sink.self, entry.Info) {
		logger.Debug().Str("path", entry.RelPath).Msg("skipping the archive being written")
		return nil
	}

	// Only regular files have content that can be archived
	if !entry.IsRegular() {
		return fault.New(fault.KindUnsupportedEntryType, "archive", entry.Path,
			fmt.Errorf("cannot archive other than regular files (mode %v)", entry.Info.Mode()))
	}

	// The entry is named by its path relative to the archive root
	name := entry.ArchiveName()
	logger.Info().Str("path", name).Msg("processing")

	// Open the source before anything else. A file that vanished since it was listed is a traversal
	// failure; a file that exists but cannot be read means the archive would be incomplete.
	source, err := sink.open(entry.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fault.Classify("open", entry.Path, err)
		}
		return fault.New(fault.KindSinkWriteFailed, "read source", entry.Path, err)
	}
	defer source.Close()

	// The attribute record is stored in the entry comment
	record, err := sink.Collector.Collect(entry.Path)
	if err != nil {
		return err
	}
	comment := record.EncodeToString(name)
	if len(comment) > MaxCommentLength {
		return fault.New(fault.KindCommentTooLong, "comment", entry.Path,
			fmt.Errorf("attribute record is %d bytes, the limit is %d", len(comment), MaxCommentLength))
	}

	// The entry will have the same timestamps as the original file
	header := &zip.FileHeader{
		Name:     name,
		Comment:  comment,
		Method:   zip.Deflate,
		Modified: entry.Modified,
		Extra:    ntfsExtra(entry.FileTimes),
	}
	header.SetMode(entry.Info.Mode())

	// Add the entry and the file data into the archive
	writer, err := sink.zw.CreateHeader(header)
	if err != nil {
		return fault.New(fault.KindSinkWriteFailed, "create entry", entry.Path, err)
	}
	reader := &sourceReader{r: source}
	if _, err := io.Copy(writer, reader); err != nil {
		if reader.err != nil {
			return fault.New(fault.KindSinkWriteFailed, "read source", entry.Path, err)
		}
		return fault.New(fault.KindSinkWriteFailed, "write entry", entry.Path, err)
	}

	sink.Written++
	logger.Info().Str("path", name).Msg("finished")
	return nil
}

// Records per-entry failures; a failure writing the archive aborts the traversal
func (sink *Sink) VisitFailed(path string, err error) error {
	logger := logging.Component("archive")

	if fault.Fatal(err) {
		logger.Error().Err(err).Str("path", path).Msg("archive can no longer be written")
		return err
	}

	logger.Warn().Err(err).Str("path", path).Msg("cannot process file")
	sink.failures = multierror.Append(sink.failures, err)
	return nil
}

// Returns the per-entry failures recorded so far, or nil
func (sink *Sink) Failures() error {
	return sink.failures.ErrorOrNil()
}

// Finalizes the archive and closes the archive file. Calling Close more than once has no effect.
func (sink *Sink) Close() error {
	if sink.closed {
		return nil
	}
	sink.closed = true

	var result *multierror.Error

	// Write the central directory
	if err := sink.zw.Close(); err != nil {
		result = multierror.Append(result, fault.New(fault.KindSinkWriteFailed, "finalize archive", "", err))
	}

	// Close the archive file if we created it
	if sink.file != nil {
		if err := sink.file.Close(); err != nil {
			result = multierror.Append(result, fault.New(fault.KindSinkWriteFailed, "close archive", sink.file.Name(), err))
		}
	}

	return result.ErrorOrNil()
}

// Remembers read errors so they can be told apart from archive write errors
type sourceReader struct {
	r   io.Reader
	err error
}

func (reader *sourceReader) Read(p []byte) (int, error) {
	n, err := reader.r.Read(p)
	if err != nil && err != io.EOF {
		reader.err = err
	}
	return n, err
}
