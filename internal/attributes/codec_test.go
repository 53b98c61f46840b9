package attributes

import (
	"strings"
	"testing"
)

func recordOf(pairs ...string) Record {
	var record Record
	for i := 0; i+1 < len(pairs); i += 2 {
		record.set(pairs[i], pairs[i+1])
	}
	return record
}

func TestEncodeFormat(t *testing.T) {
	record := recordOf("basic:size", "12", "posix:permissions", "rw-r--r--")
	got := record.EncodeToString("sub/b.txt")

	want := "# sub/b.txt\nbasic\\:size=12\nposix\\:permissions=rw-r--r--\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEncodeWithoutHeader(t *testing.T) {
	got := recordOf("k", "v").EncodeToString("")
	if got != "k=v\n" {
		t.Errorf("unexpected encoding %q", got)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"plain", "basic:lastModifiedTime", "2021-03-04T05:06:07Z"},
		{"separators in key", "user:a=b:c", "x=y:z"},
		{"comment characters", "#user!", "#value!"},
		{"leading whitespace", " key", "  two leading spaces"},
		{"trailing whitespace", "key", "trailing  "},
		{"newlines", "multi\nline", "first\nsecond\r\nthird"},
		{"tabs and form feeds", "tab\tkey", "\tvalue\f"},
		{"backslashes", `c:\path\`, `\\server\share\`},
		{"control characters", "bell\a", "nul\x00esc\x1b"},
		{"unicode", "user:名前", "värde ✓"},
		{"invalid utf8", "user:raw\xff", "\xfe\xfd"},
		{"empty value", "user:empty", ""},
		{"escape lookalikes", `user:\u0041`, `\x41`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := recordOf(tt.key, tt.value, "basic:size", "3")
			text := in.EncodeToString("dir/" + tt.name)

			if strings.Count(text, "\n") != 3 {
				t.Fatalf("expected exactly three lines, got %q", text)
			}

			out, header, err := DecodeString(text)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if header != "dir/"+tt.name {
				t.Errorf("expected header %q, got %q", "dir/"+tt.name, header)
			}
			if !in.Equal(out) {
				t.Errorf("round trip mismatch: in %q, out %q", in.Map(), out.Map())
			}
			if keys := out.Keys(); keys[0] != tt.key {
				t.Errorf("expected order to be preserved, got %q", keys)
			}
		})
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	header := " odd\nname=with#chars"
	text := recordOf("k", "v").EncodeToString(header)

	_, got, err := DecodeString(text)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != header {
		t.Errorf("expected header %q, got %q", header, got)
	}
}

func TestDecodeConventionalInput(t *testing.T) {
	text := strings.Join([]string{
		"#Thu Jan 01 00:00:00 UTC 1970",
		"",
		"! another comment",
		"   indented=value",
		"colon:separated",
		"spaced = around",
		"novalue",
	}, "\n")

	record, header, err := DecodeString(text)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if header != "" {
		t.Errorf("expected a comment without a space not to be the header, got %q", header)
	}

	want := map[string]string{"indented": "value", "colon": "separated", "spaced ": "around", "novalue": ""}
	got := record.Map()
	if len(got) != len(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("key %q: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestDecodeMalformedEscape(t *testing.T) {
	for _, text := range []string{"key=\\u12", "key=\\xZZ", "key\\"} {
		if _, _, err := DecodeString(text); err == nil {
			t.Errorf("expected an error decoding %q", text)
		}
	}
}

func TestRecordDuplicateKeysKeepFirstPosition(t *testing.T) {
	record := recordOf("a", "1", "b", "2", "a", "3")
	if record.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", record.Len())
	}
	if value, _ := record.Get("a"); value != "3" {
		t.Errorf("expected the later value to win, got %q", value)
	}
	if keys := record.Keys(); keys[0] != "a" || keys[1] != "b" {
		t.Errorf("expected first insertion order, got %q", keys)
	}
}
