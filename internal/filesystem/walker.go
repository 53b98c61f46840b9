package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/macoscontainers/fsdump/internal/fault"
	"github.com/macoscontainers/fsdump/internal/logging"
)

// Describes a single non-directory entry encountered during a traversal
type FileEntry struct {
	FileTimes

	// The absolute path to the entry
	Path string

	// The path of the entry relative to the traversal root, using host path separators
	RelPath string

	// The lstat details for the entry (symlinks are never followed)
	Info fs.FileInfo
}

// Determines whether the entry is a regular file
func (entry FileEntry) IsRegular() bool {
	return entry.Info.Mode().IsRegular()
}

// Returns the relative path with forward slash separators, as used for archive entry names
func (entry FileEntry) ArchiveName() string {
	return filepath.ToSlash(entry.RelPath)
}

// Receives the outcome of visiting each entry during a traversal
type Visitor interface {

	// Invoked for every non-directory entry; a returned error is routed to VisitFailed
	VisitFile(entry FileEntry) error

	// Invoked for every entry that could not be listed, stat'ed or visited; a returned error aborts the traversal
	VisitFailed(path string, err error) error
}

// Performs a depth-first traversal of a directory tree
type Walker struct {

	// Base-name glob patterns of files and directories to skip
	Exclude []string

	lstat func(string) (fs.FileInfo, error)
}

// Creates a Walker that skips entries matching the specified patterns
func NewWalker(exclude ...string) *Walker {
	return &Walker{Exclude: exclude, lstat: os.Lstat}
}

// Walks the tree rooted at the specified path, invoking the visitor for every entry in enumeration order.
// Failures below the root go to the visitor; a root that cannot be stat'ed is returned directly.
func (walker *Walker) Walk(root string, visitor Visitor) error {
	if walker.lstat == nil {
		walker.lstat = os.Lstat
	}

	// Reject malformed exclude patterns before visiting anything
	if err := walker.validate(); err != nil {
		return err
	}

	// Resolve the absolute path to the root so entries carry absolute paths
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fault.Classify("resolve", root, err)
	}

	// A root that cannot be stat'ed means there is nothing to walk
	info, err := walker.lstat(absRoot)
	if err != nil {
		return fault.Classify("lstat", absRoot, err)
	}

	// A root that is not a directory is visited as a single entry
	if !info.IsDir() {
		return walker.visit(absRoot, filepath.Base(absRoot), info, visitor)
	}

	return walker.walkDir(absRoot, "", visitor)
}

// Recursively visits the contents of a directory
func (walker *Walker) walkDir(dir string, subpath string, visitor Visitor) error {
	logger := logging.Component("walker")
	logger.Debug().Str("path", dir).Msg("entering directory")

	// Attempt to list the directory contents (os.ReadDir sorts entries by name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return visitor.VisitFailed(dir, fault.Classify("readdir", dir, err))
	}

	for _, details := range entries {
		name := details.Name()
		if walker.excluded(name) {
			logger.Debug().Str("path", filepath.Join(subpath, name)).Msg("excluded")
			continue
		}

		// Stat the entry without following symlinks
		path := filepath.Join(dir, name)
		relPath := filepath.Join(subpath, name)
		info, err := walker.lstat(path)
		if err != nil {
			if err := visitor.VisitFailed(path, fault.Classify("lstat", path, err)); err != nil {
				return err
			}
			continue
		}

		// Recurse into subdirectories, visit everything else
		if info.IsDir() {
			err = walker.walkDir(path, relPath, visitor)
		} else {
			err = walker.visit(path, relPath, info, visitor)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// Visits a single entry, routing a visit error through the failure path
func (walker *Walker) visit(path string, relPath string, info fs.FileInfo, visitor Visitor) error {
	entry := FileEntry{
		FileTimes: Times(path, info),
		Path:      path,
		RelPath:   relPath,
		Info:      info,
	}

	if err := visitor.VisitFile(entry); err != nil {
		return visitor.VisitFailed(path, err)
	}
	return nil
}

// Checks that every exclude pattern is well formed
func (walker *Walker) validate() error {
	for _, pattern := range walker.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// Determines whether a base name matches any of the exclude patterns
func (walker *Walker) excluded(name string) bool {
	for _, pattern := range walker.Exclude {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
