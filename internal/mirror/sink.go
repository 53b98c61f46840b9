package mirror

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/macoscontainers/fsdump/internal/attributes"
	"github.com/macoscontainers/fsdump/internal/fault"
	"github.com/macoscontainers/fsdump/internal/filesystem"
	"github.com/macoscontainers/fsdump/internal/logging"
)

// Writes one attribute record file per source file into a directory tree that mirrors the source tree
type Sink struct {

	// The root directory of the mirrored tree
	OutputDir string

	// Gathers the attributes of each source file
	Collector *attributes.Collector

	// The number of record files written
	Written int

	// Per-entry failures, which do not stop the traversal
	failures *multierror.Error
}

// Creates a Sink that mirrors into the specified directory
func NewSink(outputDir string, collector *attributes.Collector) *Sink {
	return &Sink{OutputDir: outputDir, Collector: collector}
}

// Writes the attribute record for a source file and stamps it with the source file's modification time
func (sink *Sink) VisitFile(entry filesystem.FileEntry) error {
	logger := logging.Component("mirror")
	logger.Info().Str("path", entry.RelPath).Msg("processing")

	// Resolve the path to the record file
	target := filepath.Join(sink.OutputDir, entry.RelPath)

	// Gather the attributes of the source file
	record, err := sink.Collector.Collect(entry.Path)
	if err != nil {
		return err
	}

	// Create all components of the target directory
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fault.New(fault.KindSinkWriteFailed, "mkdir", filepath.Dir(target), err)
	}

	// Store the record in the target file
	if err := writeRecord(target, record, entry.RelPath); err != nil {
		return fault.New(fault.KindSinkWriteFailed, "write record", target, err)
	}

	// Give the record file the timestamps of the source file
	if err := os.Chtimes(target, entry.Accessed, entry.Modified); err != nil {
		return fault.New(fault.KindSinkWriteFailed, "chtimes", target, err)
	}

	sink.Written++
	logger.Info().Str("path", entry.RelPath).Msg("finished")
	return nil
}

// Records a failure and carries on, since every record file is independent of the others
func (sink *Sink) VisitFailed(path string, err error) error {
	logger := logging.Component("mirror")
	logger.Warn().Err(err).Str("path", path).Msg("cannot process file")
	sink.failures = multierror.Append(sink.failures, err)
	return nil
}

// Returns the failures recorded so far, or nil
func (sink *Sink) Failures() error {
	return sink.failures.ErrorOrNil()
}

// Writes a record to a file, replacing any existing file
func writeRecord(target string, record attributes.Record, header string) error {
	file, err := os.Create(target)
	if err != nil {
		return err
	}

	if err := record.Encode(file, header); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
