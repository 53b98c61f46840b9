package dump

import (
	"fmt"
	"io"

	"github.com/macoscontainers/fsdump/internal/archive"
	"github.com/macoscontainers/fsdump/internal/fault"
	"github.com/macoscontainers/fsdump/internal/logging"
	digest "github.com/opencontainers/go-digest"
)

// The record key holding the content digest of an archived file
const contentDigestKey = "content:digest"

// Prints the attribute record of every archive entry and checks the entry contents against any recorded digest
func runList(opts Options, report *Report) error {
	logger := logging.Component("list")
	var failures []error

	err := archive.Walk(opts.Target, func(entry archive.Entry) error {

		// Print the record in the same form as the files of an attributes directory
		if err := entry.Record.Encode(opts.Output, entry.Name); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(opts.Output); err != nil {
			return err
		}
		report.Written++

		// Verify the contents if a digest was recorded
		if err := verifyContent(entry); err != nil {
			logger.Warn().Err(err).Str("path", entry.Name).Msg("content does not match its record")
			failures = append(failures, err)
		}
		return nil
	})

	for _, failure := range failures {
		report.addFailures(failure)
	}
	return err
}

// Compares the contents of an entry with the digest in its record
func verifyContent(entry archive.Entry) error {
	recorded, ok := entry.Record.Get(contentDigestKey)
	if !ok {
		return nil
	}

	// Attempt to parse the recorded digest
	expected, err := digest.Parse(recorded)
	if err != nil {
		return fault.New(fault.KindContentMismatch, "parse digest", entry.Name, err)
	}

	// Hash the entry contents
	verifier := expected.Verifier()
	if _, err := io.Copy(verifier, entry.Content); err != nil {
		return fault.New(fault.KindContentMismatch, "read entry", entry.Name, err)
	}
	if !verifier.Verified() {
		return fault.New(fault.KindContentMismatch, "verify", entry.Name,
			fmt.Errorf("contents do not match %s", expected))
	}

	return nil
}
