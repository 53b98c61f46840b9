package fault

import (
	"errors"
	"fmt"
	"io/fs"
)

// Identifies the category of a failure encountered while dumping a tree
type Kind int

const (

	// An unclassified failure
	KindUnknown Kind = iota

	// The path disappeared between being listed and being visited
	KindPathVanished

	// The path could not be listed, stat'ed or opened due to its permissions
	KindPermissionDenied

	// An attribute view failed for a path that does exist
	KindAttributeReadFailed

	// A non-regular file was presented to a sink that only accepts regular files
	KindUnsupportedEntryType

	// Creating or writing the output of a sink failed
	KindSinkWriteFailed

	// A serialized attribute record does not fit in an archive entry comment
	KindCommentTooLong

	// Archived content does not match the digest recorded alongside it
	KindContentMismatch
)

var kindNames = map[Kind]string{
	KindUnknown:              "Unknown",
	KindPathVanished:         "PathVanished",
	KindPermissionDenied:     "PermissionDenied",
	KindAttributeReadFailed:  "AttributeReadFailed",
	KindUnsupportedEntryType: "UnsupportedEntryType",
	KindSinkWriteFailed:      "SinkWriteFailed",
	KindCommentTooLong:       "CommentTooLong",
	KindContentMismatch:      "ContentMismatch",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Wraps an underlying error with the failure category, the operation that failed and the affected path
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Creates a new Error of the specified kind
func New(kind Kind, op string, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Wraps a filesystem error, deriving the kind from the underlying cause
// (Errors that already carry a kind are returned unchanged)
func Classify(op string, path string, err error) error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return err
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return New(KindPathVanished, op, path, err)
	case errors.Is(err, fs.ErrPermission):
		return New(KindPermissionDenied, op, path, err)
	default:
		return New(KindUnknown, op, path, err)
	}
}

// Retrieves the kind of the first Error in the chain, or KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Determines whether the error is a traversal failure that should not affect the outcome of a run
func Recoverable(err error) bool {
	switch KindOf(err) {
	case KindPathVanished, KindPermissionDenied:
		return true
	default:
		return false
	}
}

// Determines whether the error means that a sink's output can no longer be trusted
func Fatal(err error) bool {
	return KindOf(err) == KindSinkWriteFailed
}
