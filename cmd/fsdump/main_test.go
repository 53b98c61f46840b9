package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/macoscontainers/fsdump/internal/testutil"
)

func runCommand(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"unknown mode", []string{"x", "out.zip", "src"}},
		{"missing source", []string{"c", "out.zip"}},
		{"extra operand", []string{"list", "out.zip", "src"}},
		{"unknown flag", []string{"-nope", "c", "out.zip", "src"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCommand(tt.args...)
			if code != 2 {
				t.Errorf("expected exit code 2, got %d", code)
			}
			if !strings.Contains(stderr, "Usage:") {
				t.Errorf("expected usage text on stderr, got %q", stderr)
			}
		})
	}
}

func TestArchiveAndList(t *testing.T) {
	sample := testutil.SampleTreeForTest(filepath.Join(t.TempDir(), "src"))
	if err := sample.Generate(); err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()
	target := filepath.Join(out, "out.zip")
	report := filepath.Join(out, "report.json")

	code, _, stderr := runCommand("-views", "basic,content", "-exclude", "*.bin", "-report", report, "c", target, sample.RootDir)
	if code != 0 {
		t.Fatalf("archive exited with %d: %s", code, stderr)
	}
	if _, err := os.Stat(report); err != nil {
		t.Errorf("expected a report: %v", err)
	}

	code, stdout, stderr := runCommand("l", target)
	if code != 0 {
		t.Fatalf("list exited with %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "# a.txt\n") || !strings.Contains(stdout, "# sub/b.txt\n") {
		t.Errorf("unexpected listing:\n%s", stdout)
	}
	if strings.Contains(stdout, "c.bin") {
		t.Errorf("expected excluded files to be absent:\n%s", stdout)
	}
}

func TestMirror(t *testing.T) {
	sample := testutil.SampleTreeForTest(filepath.Join(t.TempDir(), "src"))
	if err := sample.Generate(); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(t.TempDir(), "attrs")

	code, _, stderr := runCommand("a", target, sample.RootDir)
	if code != 0 {
		t.Fatalf("mirror exited with %d: %s", code, stderr)
	}
	for _, relPath := range sample.Paths() {
		if _, err := os.Stat(filepath.Join(target, filepath.FromSlash(relPath))); err != nil {
			t.Errorf("expected a record for %s: %v", relPath, err)
		}
	}
}

func TestMissingSourceFails(t *testing.T) {
	out := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing")

	// Neither mode creates any output when there is nothing to dump
	target := filepath.Join(out, "out.zip")
	code, _, stderr := runCommand("archive", target, missing)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d: %s", code, stderr)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("expected no archive to be created, got %v", err)
	}

	attrs := filepath.Join(out, "attrs")
	code, _, stderr = runCommand("mirror", attrs, missing)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d: %s", code, stderr)
	}
	if _, err := os.Stat(attrs); !os.IsNotExist(err) {
		t.Errorf("expected no attributes directory to be created, got %v", err)
	}
}

func TestUnreadableFileInMirrorMode(t *testing.T) {
	if runtime.GOOS == "windows" || testutil.IsPrivileged() {
		t.Skip("file permissions are not enforced")
	}
	sample := testutil.SampleTreeForTest(filepath.Join(t.TempDir(), "src"))
	if err := sample.Generate(); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(sample.Abs("sub/b.txt"), 0); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(t.TempDir(), "attrs")

	// The unreadable file is reported, the others are recorded and the run still succeeds
	code, _, stderr := runCommand("mirror", target, sample.RootDir)
	if code != 0 {
		t.Errorf("expected exit code 0, got %d: %s", code, stderr)
	}
	for _, relPath := range []string{"a.txt", "sub/deeper/c.bin"} {
		if _, err := os.Stat(filepath.Join(target, filepath.FromSlash(relPath))); err != nil {
			t.Errorf("expected a record for %s: %v", relPath, err)
		}
	}
	if _, err := os.Stat(filepath.Join(target, "sub", "b.txt")); !os.IsNotExist(err) {
		t.Errorf("expected no record for the unreadable file, got %v", err)
	}
}

func TestUnreadableFileInArchiveMode(t *testing.T) {
	if runtime.GOOS == "windows" || testutil.IsPrivileged() {
		t.Skip("file permissions are not enforced")
	}
	sample := testutil.SampleTreeForTest(filepath.Join(t.TempDir(), "src"))
	if err := sample.Generate(); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(sample.Abs("sub/b.txt"), 0); err != nil {
		t.Fatal(err)
	}

	// An archive missing a regular file is incomplete, whichever views are collected
	for _, views := range []string{"basic,posix", "basic,content"} {
		target := filepath.Join(t.TempDir(), "out.zip")
		code, _, stderr := runCommand("-views", views, "archive", target, sample.RootDir)
		if code != 1 {
			t.Errorf("%s: expected exit code 1, got %d", views, code)
		}
		if !strings.Contains(stderr, "SinkWriteFailed") {
			t.Errorf("%s: expected the cause on stderr, got %q", views, stderr)
		}
	}
}

func TestUnwritableArchiveFails(t *testing.T) {
	sample := testutil.SampleTreeForTest(filepath.Join(t.TempDir(), "src"))
	if err := sample.Generate(); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := runCommand("archive", filepath.Join(t.TempDir(), "missing", "out.zip"), sample.RootDir)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "SinkWriteFailed") {
		t.Errorf("expected the cause on stderr, got %q", stderr)
	}
}
