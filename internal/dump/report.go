package dump

import (
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/macoscontainers/fsdump/internal/fault"
	"github.com/macoscontainers/fsdump/internal/marshal"
)

// Describes a file that could not be processed
type Failure struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`

	recoverable bool
}

// Summarises the outcome of a run
type Report struct {
	Mode   string `json:"mode"`
	Source string `json:"source,omitempty"`
	Target string `json:"target"`

	// The number of records or entries written (or listed)
	Written int `json:"written"`

	// Per-file failures that did not stop the run
	Failures []Failure `json:"failures,omitempty"`

	// The error that stopped the run early, if any
	Aborted string `json:"aborted,omitempty"`

	Duration string `json:"duration"`

	started time.Time
}

func newReport(opts Options) *Report {
	return &Report{
		Mode:    opts.Mode.String(),
		Source:  opts.Source,
		Target:  opts.Target,
		started: time.Now(),
	}
}

// Records the per-file failures gathered by a sink
func (report *Report) addFailures(err error) {
	if err == nil {
		return
	}

	errs := []error{err}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		errs = merr.Errors
	}

	for _, err := range errs {
		failure := Failure{
			Kind:        fault.KindOf(err).String(),
			Message:     err.Error(),
			recoverable: fault.Recoverable(err),
		}
		var ferr *fault.Error
		if errors.As(err, &ferr) {
			failure.Path = ferr.Path
		}
		report.Failures = append(report.Failures, failure)
	}
}

func (report *Report) finish(err error) {
	if err != nil {
		report.Aborted = err.Error()
	}
	report.Duration = time.Since(report.started).String()
}

// Determines whether the run completed without aborting or losing any file to a failure
// other than a file vanishing or being inaccessible during the traversal
func (report *Report) Succeeded() bool {
	if report.Aborted != "" {
		return false
	}
	for _, failure := range report.Failures {
		if !failure.recoverable {
			return false
		}
	}
	return true
}

// Writes the report to a JSON file
func (report *Report) Save(path string) error {
	return marshal.MarshalJsonFile(path, report)
}
