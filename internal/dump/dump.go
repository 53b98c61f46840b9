// Package dump runs a single archive, mirror or list operation and reports its outcome.
package dump

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/macoscontainers/fsdump/internal/archive"
	"github.com/macoscontainers/fsdump/internal/attributes"
	"github.com/macoscontainers/fsdump/internal/config"
	"github.com/macoscontainers/fsdump/internal/fault"
	"github.com/macoscontainers/fsdump/internal/filesystem"
	"github.com/macoscontainers/fsdump/internal/logging"
	"github.com/macoscontainers/fsdump/internal/mirror"
)

// Describes a single run
type Options struct {
	Mode Mode

	// The archive file (archive and list modes) or the attributes directory (mirror mode)
	Target string

	// The source directory tree (unused in list mode)
	Source string

	// Views, exclude patterns and report location
	Config *config.Config

	// Receives the listing in list mode (standard output when nil)
	Output io.Writer
}

// Performs a run and returns its report. The returned error is non-nil when the run could not start
// or was aborted; per-file failures are only recorded in the report.
func Run(opts Options) (*Report, error) {
	logger := logging.Component("dump")

	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	report := newReport(opts)

	var err error
	switch opts.Mode {
	case ModeArchive:
		err = runArchive(opts, report)
	case ModeMirror:
		err = runMirror(opts, report)
	case ModeList:
		err = runList(opts, report)
	default:
		err = fmt.Errorf("unsupported mode %v", opts.Mode)
	}
	report.finish(err)

	logger.Info().
		Str("mode", report.Mode).
		Int("written", report.Written).
		Int("failures", len(report.Failures)).
		Str("duration", report.Duration).
		Msg("run complete")

	// Write the report even when the run was aborted
	if opts.Config.Report != "" {
		if saveErr := report.Save(opts.Config.Report); saveErr != nil {
			err = multierror.Append(err, fmt.Errorf("failed to write report %s: %w", opts.Config.Report, saveErr)).ErrorOrNil()
		}
	}

	return report, err
}

// Creates the collector and walker described by the config
func prepare(cfg *config.Config) (*attributes.Collector, *filesystem.Walker, error) {
	collector, err := attributes.NewCollector(cfg.Views...)
	if err != nil {
		return nil, nil, err
	}
	return collector, filesystem.NewWalker(cfg.Exclude...), nil
}

func runArchive(opts Options, report *Report) (err error) {
	collector, walker, err := prepare(opts.Config)
	if err != nil {
		return err
	}

	// Check the source before creating anything
	if err := checkSource(opts.Source); err != nil {
		return err
	}

	// Attempt to create the archive
	sink, err := archive.Create(opts.Target, collector)
	if err != nil {
		return err
	}

	// The archive is finalised however the traversal ends
	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr).ErrorOrNil()
		}
	}()

	// Attempt to archive the source tree
	walkErr := walker.Walk(opts.Source, sink)
	report.Written = sink.Written
	report.addFailures(sink.Failures())
	return walkErr
}

func runMirror(opts Options, report *Report) error {
	collector, walker, err := prepare(opts.Config)
	if err != nil {
		return err
	}

	// Check the source before creating anything
	if err := checkSource(opts.Source); err != nil {
		return err
	}

	// Records written inside the source tree would be picked up by the traversal itself
	inside, err := isWithin(opts.Target, opts.Source)
	if err != nil {
		return err
	}
	if inside {
		return fmt.Errorf("attributes directory %s must not be inside the source directory %s", opts.Target, opts.Source)
	}

	// Attempt to mirror the source tree
	sink := mirror.NewSink(opts.Target, collector)
	walkErr := walker.Walk(opts.Source, sink)
	report.Written = sink.Written
	report.addFailures(sink.Failures())
	return walkErr
}

// Verifies that the source tree exists and can be stat'ed
func checkSource(source string) error {
	if _, err := os.Lstat(source); err != nil {
		return fmt.Errorf("cannot read source %s: %w", source, fault.Classify("lstat", source, err))
	}
	return nil
}

// Determines whether path is dir or lies beneath it
func isWithin(path string, dir string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}

	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// Returns the underlying cause of an aborted run for display
func Cause(err error) error {
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) == 1 {
		return merr.Errors[0]
	}
	return err
}
