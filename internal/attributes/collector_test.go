package attributes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/macoscontainers/fsdump/internal/fault"
	digest "github.com/opencontainers/go-digest"
)

// A view with canned results
type fakeView struct {
	name  string
	attrs []Attribute
	err   error
}

func (v fakeView) Name() string {
	return v.name
}

func (v fakeView) ReadAll(path string, info fs.FileInfo) ([]Attribute, error) {
	return v.attrs, v.err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0640); err != nil {
		t.Fatal(err)
	}
	modified := time.Date(2022, time.July, 8, 9, 10, 11, 120000000, time.UTC)
	if err := os.Chtimes(path, modified, modified); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCollectBasicAndContent(t *testing.T) {
	path := writeFile(t, "hello world")

	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector failed: %v", err)
	}
	record, err := collector.Collect(path)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	expected := map[string]string{
		"basic:lastModifiedTime": "2022-07-08T09:10:11.12Z",
		"basic:size":             "11",
		"basic:isRegularFile":    "true",
		"basic:isDirectory":      "false",
		"basic:isSymbolicLink":   "false",
		"basic:isOther":          "false",
		"content:digest":         digest.FromString("hello world").String(),
	}
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		expected["posix:permissions"] = "rw-r-----"
		expected["unix:mode"] = "0100640"
		expected["unix:uid"] = fmt.Sprint(os.Getuid())
	}

	for key, want := range expected {
		got, ok := record.Get(key)
		if !ok {
			t.Errorf("missing key %s in %v", key, record.Keys())
			continue
		}
		if got != want {
			t.Errorf("%s: expected %q, got %q", key, want, got)
		}
	}

	for _, key := range []string{"basic:creationTime", "basic:lastAccessTime"} {
		if _, ok := record.Get(key); !ok {
			t.Errorf("missing key %s", key)
		}
	}
}

func TestCollectIsDeterministic(t *testing.T) {
	path := writeFile(t, "same bytes")
	collector, _ := NewCollector()

	first, err := collector.Collect(path)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	second, err := collector.Collect(path)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if first.EncodeToString("file.txt") != second.EncodeToString("file.txt") {
		t.Errorf("expected identical records:\n%s\n%s", first.EncodeToString(""), second.EncodeToString(""))
	}
}

func TestCollectSkipsUnsupportedViews(t *testing.T) {
	path := writeFile(t, "x")
	collector := NewCollectorWithViews(
		fakeView{name: "first", attrs: []Attribute{{"b", "2"}, {"a", "1"}}},
		fakeView{name: "dos", err: fmt.Errorf("no dos here: %w", ErrViewUnsupported)},
		fakeView{name: "last", attrs: []Attribute{{"z", "26"}}},
	)

	record, err := collector.Collect(path)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	keys := record.Keys()
	want := []string{"first:a", "first:b", "last:z"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("expected %v, got %v", want, keys)
		}
	}
}

func TestCollectViewFailure(t *testing.T) {
	path := writeFile(t, "x")
	cause := errors.New("device error")
	collector := NewCollectorWithViews(fakeView{name: "broken", err: cause})

	_, err := collector.Collect(path)
	if fault.KindOf(err) != fault.KindAttributeReadFailed {
		t.Fatalf("expected AttributeReadFailed, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected the cause to be preserved, got %v", err)
	}
}

func TestCollectViewPermissionFailure(t *testing.T) {
	path := writeFile(t, "x")
	cause := &fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission}
	collector := NewCollectorWithViews(fakeView{name: "locked", err: cause})

	_, err := collector.Collect(path)
	if fault.KindOf(err) != fault.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}
	if !fault.Recoverable(err) || !errors.Is(err, fs.ErrPermission) {
		t.Errorf("expected a recoverable permission failure, got %v", err)
	}
}

func TestCollectMissingPath(t *testing.T) {
	collector, _ := NewCollector()
	_, err := collector.Collect(filepath.Join(t.TempDir(), "gone"))
	if fault.KindOf(err) != fault.KindPathVanished {
		t.Errorf("expected PathVanished, got %v", err)
	}
}

func TestCollectSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	target := writeFile(t, "target")
	link := filepath.Join(filepath.Dir(target), "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	collector, _ := NewCollector()
	record, err := collector.Collect(link)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if value, _ := record.Get("basic:isSymbolicLink"); value != "true" {
		t.Errorf("expected the link itself to be described, got isSymbolicLink=%q", value)
	}
	if _, ok := record.Get("content:digest"); ok {
		t.Error("expected the content view to be skipped for a symlink")
	}
}

func TestNewCollectorViewSelection(t *testing.T) {
	collector, err := NewCollector("content", "basic", "dos")
	if err != nil {
		t.Fatalf("NewCollector failed: %v", err)
	}

	views := collector.Views()
	if len(views) < 2 || views[0] != "basic" || views[len(views)-1] != "content" {
		t.Errorf("expected platform enumeration order, got %v", views)
	}

	if _, err := NewCollector("basic", "bogus"); err == nil {
		t.Error("expected an error for an unknown view")
	}
}

func TestFormatBytes(t *testing.T) {
	if got := formatBytes([]byte("plain text")); got != "plain text" {
		t.Errorf("unexpected rendering %q", got)
	}
	if got := formatBytes([]byte{0x00, 0xff}); got != "0x00ff" {
		t.Errorf("unexpected rendering %q", got)
	}
}
