//go:build linux || darwin

package attributes

import (
	"errors"
	"fmt"
	"io/fs"
	"os/user"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/macoscontainers/fsdump/internal/filesystem"
	"github.com/pkg/xattr"
)

func platformViews() []View {
	return []View{basicView{}, ownerView{}, posixView{}, unixView{}, userView{}, contentView{}}
}

// Extracts the Unix-specific attributes from lstat details
func statOf(info fs.FileInfo) (*syscall.Stat_t, error) {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, errors.New("fs.FileInfo.Sys() was not a syscall.Stat_t object")
	}
	return sys, nil
}

func fileKey(info fs.FileInfo) (string, bool) {
	sys, err := statOf(info)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("(dev=%x,ino=%d)", uint64(sys.Dev), uint64(sys.Ino)), true
}

var (
	userNames  sync.Map
	groupNames sync.Map
)

// Resolves a uid to a user name, falling back to the numeric id
func userName(uid uint32) string {
	id := strconv.FormatUint(uint64(uid), 10)
	if name, ok := userNames.Load(id); ok {
		return name.(string)
	}
	name := id
	if u, err := user.LookupId(id); err == nil {
		name = u.Username
	}
	userNames.Store(id, name)
	return name
}

// Resolves a gid to a group name, falling back to the numeric id
func groupName(gid uint32) string {
	id := strconv.FormatUint(uint64(gid), 10)
	if name, ok := groupNames.Load(id); ok {
		return name.(string)
	}
	name := id
	if g, err := user.LookupGroupId(id); err == nil {
		name = g.Name
	}
	groupNames.Store(id, name)
	return name
}

// Exposes the owning user of a file
type ownerView struct{}

func (ownerView) Name() string {
	return "owner"
}

func (ownerView) ReadAll(path string, info fs.FileInfo) ([]Attribute, error) {
	sys, err := statOf(info)
	if err != nil {
		return nil, err
	}
	return []Attribute{{"owner", userName(sys.Uid)}}, nil
}

// Exposes the POSIX permissions and ownership of a file
type posixView struct{}

func (posixView) Name() string {
	return "posix"
}

func (posixView) ReadAll(path string, info fs.FileInfo) ([]Attribute, error) {
	sys, err := statOf(info)
	if err != nil {
		return nil, err
	}

	// fs.FileMode renders permissions as a type character followed by the nine permission bits
	permissions := info.Mode().Perm().String()[1:]

	return []Attribute{
		{"group", groupName(sys.Gid)},
		{"owner", userName(sys.Uid)},
		{"permissions", permissions},
	}, nil
}

// Exposes the raw stat fields of a file
type unixView struct{}

func (unixView) Name() string {
	return "unix"
}

func (unixView) ReadAll(path string, info fs.FileInfo) ([]Attribute, error) {
	sys, err := statOf(info)
	if err != nil {
		return nil, err
	}

	attrs := []Attribute{
		{"dev", formatUint(uint64(sys.Dev))},
		{"gid", formatUint(uint64(sys.Gid))},
		{"ino", formatUint(uint64(sys.Ino))},
		{"mode", "0" + strconv.FormatUint(uint64(sys.Mode), 8)},
		{"nlink", formatUint(uint64(sys.Nlink))},
		{"rdev", formatUint(uint64(sys.Rdev))},
		{"uid", formatUint(uint64(sys.Uid))},
	}
	if ctime, ok := filesystem.ChangeTime(info); ok {
		attrs = append(attrs, Attribute{"ctime", formatTime(ctime)})
	}

	return attrs, nil
}

// Exposes the user-defined extended attributes of a file
type userView struct{}

func (userView) Name() string {
	return "user"
}

func (userView) ReadAll(path string, info fs.FileInfo) ([]Attribute, error) {

	// List the extended attributes without following symlinks
	names, err := xattr.LList(path)
	if err != nil {
		if errors.Is(err, syscall.ENOTSUP) {
			return nil, ErrViewUnsupported
		}
		return nil, err
	}

	attrs := []Attribute{}
	for _, name := range names {
		key, ok := userAttributeName(name)
		if !ok {
			continue
		}

		// Attributes can disappear or be unreadable between listing and reading them
		value, err := xattr.LGet(path, name)
		if err != nil {
			if errors.Is(err, xattr.ENOATTR) || errors.Is(err, fs.ErrPermission) {
				continue
			}
			return nil, err
		}

		attrs = append(attrs, Attribute{key, formatBytes(value)})
	}

	return attrs, nil
}

// Maps an extended attribute name to a key in the user view
// (On Linux only the "user." namespace is user-defined)
func userAttributeName(name string) (string, bool) {
	if runtime.GOOS != "linux" {
		return name, true
	}
	if !strings.HasPrefix(name, "user.") {
		return "", false
	}
	return strings.TrimPrefix(name, "user."), true
}
