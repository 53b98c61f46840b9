package attributes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/macoscontainers/fsdump/internal/fault"
	"github.com/macoscontainers/fsdump/internal/logging"
)

// Gathers every attribute view the platform supports into a Record
type Collector struct {
	views []View
}

// Creates a Collector for the named views, or for every platform view when no names are given.
// Names of views that exist on other platforms are ignored; unknown names are an error.
func NewCollector(names ...string) (*Collector, error) {
	available := platformViews()
	if len(names) == 0 {
		return &Collector{views: available}, nil
	}

	// Validate the requested names before filtering
	requested := map[string]bool{}
	for _, name := range names {
		if !isKnownView(name) {
			return nil, fmt.Errorf("unknown attribute view %q (known views: %s)", name, strings.Join(knownViews, ", "))
		}
		requested[name] = true
	}

	// Keep the platform enumeration order
	views := []View{}
	for _, view := range available {
		if requested[view.Name()] {
			views = append(views, view)
		}
	}

	return &Collector{views: views}, nil
}

// Creates a Collector for an explicit list of views
func NewCollectorWithViews(views ...View) *Collector {
	return &Collector{views: views}
}

// Returns the names of the views the collector queries, in enumeration order
func (collector *Collector) Views() []string {
	names := make([]string, 0, len(collector.views))
	for _, view := range collector.views {
		names = append(names, view.Name())
	}
	return names
}

// Reads every view for the file at the specified path.
// Views that do not apply to the file are skipped. A view refused access to the file yields a PermissionDenied
// error and any other view failure an AttributeReadFailed error.
func (collector *Collector) Collect(path string) (Record, error) {
	logger := logging.Component("attributes")

	// Stat the path itself, without following symlinks
	info, err := os.Lstat(path)
	if err != nil {
		err = fault.Classify("lstat", path, err)
		if fault.KindOf(err) == fault.KindUnknown {
			err = fault.New(fault.KindAttributeReadFailed, "lstat", path, errors.Unwrap(err))
		}
		return Record{}, err
	}

	var record Record
	for _, view := range collector.views {

		// Attempt to read the full attribute set of the view
		attrs, err := view.ReadAll(path, info)
		if errors.Is(err, ErrViewUnsupported) {
			logger.Debug().Str("path", path).Str("view", view.Name()).Msg("view not supported")
			continue
		}
		if err != nil {
			kind := fault.KindAttributeReadFailed
			if errors.Is(err, fs.ErrPermission) {
				kind = fault.KindPermissionDenied
			}
			return Record{}, fault.New(kind, "read "+view.Name()+" attributes", path, err)
		}

		// Sort the attributes of each view so records are deterministic
		sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
		for _, attr := range attrs {
			record.set(view.Name()+":"+attr.Name, attr.Value)
		}
	}

	return record, nil
}

func isKnownView(name string) bool {
	for _, known := range knownViews {
		if known == name {
			return true
		}
	}
	return false
}
