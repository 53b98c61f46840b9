package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Describes a source tree that is generated on disk for a test
type SampleTree struct {

	// The directory in which the tree is generated
	RootDir string

	// The contents of each file, keyed by forward slash relative path
	Files map[string]string

	// The modification time applied to every file (each file is offset by one second in path order)
	ModTime time.Time
}

// Creates the default sample tree in the specified directory
func SampleTreeForTest(rootDir string) *SampleTree {
	return &SampleTree{
		RootDir: rootDir,
		Files: map[string]string{
			"a.txt":            "alpha\n",
			"sub/b.txt":        "bravo\nwith two lines\n",
			"sub/deeper/c.bin": "\x00\x01\x02charlie\xff",
		},
		ModTime: time.Date(2021, time.March, 4, 5, 6, 7, 0, time.UTC),
	}
}

// Returns the relative paths of the files in the tree in traversal order
func (sample *SampleTree) Paths() []string {
	paths := make([]string, 0, len(sample.Files))
	for path := range sample.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Returns the absolute path to a file in the tree
func (sample *SampleTree) Abs(relPath string) string {
	return filepath.Join(sample.RootDir, filepath.FromSlash(relPath))
}

// Writes the files of the tree to disk and stamps their timestamps
func (sample *SampleTree) Generate() error {
	for index, relPath := range sample.Paths() {
		path := sample.Abs(relPath)

		// Create the parent directory
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}

		// Write the file contents
		if err := os.WriteFile(path, []byte(sample.Files[relPath]), 0644); err != nil {
			return err
		}

		// Give each file distinct access and modification times
		modified := sample.ModTime.Add(time.Duration(index) * time.Second)
		accessed := modified.Add(time.Hour)
		if err := os.Chtimes(path, accessed, modified); err != nil {
			return fmt.Errorf("stamping %s: %w", relPath, err)
		}
	}

	return nil
}

// Determines whether the tests are running with privileges that bypass file permissions
func IsPrivileged() bool {
	return os.Geteuid() == 0
}
