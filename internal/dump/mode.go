package dump

import "fmt"

// Selects what a run produces
type Mode int

const (
	// Write every regular file and its attribute record into a zip archive
	ModeArchive Mode = iota

	// Write an attribute record for every file into a mirrored directory tree
	ModeMirror

	// Print the entries and attribute records of an existing archive
	ModeList
)

// Parses a mode name or its single letter alias
func ParseMode(name string) (Mode, error) {
	switch name {
	case "archive", "c":
		return ModeArchive, nil
	case "mirror", "a":
		return ModeMirror, nil
	case "list", "l":
		return ModeList, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", name)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeArchive:
		return "archive"
	case ModeMirror:
		return "mirror"
	case ModeList:
		return "list"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Determines whether the mode reads a source tree
func (m Mode) NeedsSource() bool {
	return m != ModeList
}
