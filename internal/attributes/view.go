package attributes

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"
)

// Returned by a View that does not apply to a path (for example a content digest of a symlink)
var ErrViewUnsupported = errors.New("attribute view not supported")

// A named group of file attributes exposed by the host filesystem
type View interface {

	// The view name, used as the namespace of every key the view produces
	Name() string

	// Reads every attribute the view exposes for the path, given its lstat details
	ReadAll(path string, info fs.FileInfo) ([]Attribute, error)
}

// The names of every view known on any platform, in enumeration order
var knownViews = []string{"basic", "owner", "posix", "unix", "dos", "user", "content"}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatUint(n uint64) string {
	return strconv.FormatUint(n, 10)
}

// Renders an opaque byte value as text when it is printable, otherwise as 0x-prefixed hex
func formatBytes(value []byte) string {
	if utf8.Valid(value) {
		printable := true
		for _, r := range string(value) {
			if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
				printable = false
				break
			}
		}
		if printable {
			return string(value)
		}
	}
	return "0x" + hex.EncodeToString(value)
}
