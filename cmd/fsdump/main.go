package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/macoscontainers/fsdump/internal/config"
	"github.com/macoscontainers/fsdump/internal/dump"
	"github.com/macoscontainers/fsdump/internal/logging"
)

// Collects the values of a flag that may be specified more than once
type patternList []string

func (p *patternList) String() string {
	return strings.Join(*p, ",")
}

func (p *patternList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

func usage(flags *flag.FlagSet, stderr io.Writer) {
	fmt.Fprintln(stderr, "Usage: fsdump [flags] archive|c <ZIP-FILE> <SOURCE-DIR>")
	fmt.Fprintln(stderr, "       fsdump [flags] mirror|a <ATTRS-DIR> <SOURCE-DIR>")
	fmt.Fprintln(stderr, "       fsdump [flags] list|l <ZIP-FILE>")
	fmt.Fprintln(stderr)
	fmt.Fprintln(stderr, "archive  store every file of the source tree in a zip archive, with its attributes in the entry comment")
	fmt.Fprintln(stderr, "mirror   recreate the source tree as files listing the attributes of the corresponding source files")
	fmt.Fprintln(stderr, "list     print the attributes stored in an archive and verify the archived contents")
	fmt.Fprintln(stderr)
	flags.SetOutput(stderr)
	flags.PrintDefaults()
}

// Runs the command with the specified arguments and returns the process exit code
func run(args []string, stdout io.Writer, stderr io.Writer) int {

	// Parse our command-line flags
	flags := flag.NewFlagSet("fsdump", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configPath := flags.String("config", "", "path to a YAML config file (defaults to "+config.GetConfigPath()+" when present)")
	views := flags.String("views", "", "comma separated attribute views to collect (defaults to every view the platform supports)")
	reportPath := flags.String("report", "", "write a JSON summary of the run to this file")
	verbose := flags.Bool("verbose", false, "enable debug logging")
	var exclude patternList
	flags.Var(&exclude, "exclude", "skip files and directories whose name matches this glob pattern (may be repeated)")
	if err := flags.Parse(args); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(stderr, "Error:", err)
		}
		usage(flags, stderr)
		return 2
	}

	// Determine the mode and verify that it has the right number of operands
	operands := flags.Args()
	if len(operands) < 2 {
		usage(flags, stderr)
		return 2
	}
	mode, err := dump.ParseMode(operands[0])
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		usage(flags, stderr)
		return 2
	}
	expected := 2
	if mode.NeedsSource() {
		expected = 3
	}
	if len(operands) != expected {
		usage(flags, stderr)
		return 2
	}

	// Attempt to load the config file, then apply our flags over it
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 2
	}
	if *views != "" {
		cfg.SetViews(*views)
	}
	cfg.Exclude = append(cfg.Exclude, exclude...)
	if *reportPath != "" {
		cfg.Report = *reportPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 2
	}

	// Configure logging (-verbose wins over LOG_LEVEL, which wins over the config file)
	logging.GetLogger()
	level := cfg.LogLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if *verbose {
		level = "debug"
	}
	if !logging.SetLevel(level) {
		fmt.Fprintln(stderr, "Error: unknown log level", level)
		return 2
	}

	// Perform the run
	opts := dump.Options{Mode: mode, Target: operands[1], Config: cfg, Output: stdout}
	if mode.NeedsSource() {
		opts.Source = operands[2]
	}
	report, err := dump.Run(opts)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", dump.Cause(err))
		return 1
	}
	if !report.Succeeded() {
		fmt.Fprintf(stderr, "Error: %d file(s) could not be processed\n", len(report.Failures))
		return 1
	}

	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
