package attributes

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Lines longer than this are rejected by Decode
const maxLineLength = 16 * 1024 * 1024

// Serialises the record as `key=value` lines, preceded by a `# header` comment line when header is not empty.
//
// Backslash, newline, carriage return, tab and form feed are escaped everywhere. Keys additionally escape
// `=`, `:`, `#`, `!` and spaces; values escape a leading space. Other control characters are written as
// \uXXXX and bytes that are not valid UTF-8 as \xHH.
func (record Record) Encode(w io.Writer, header string) error {
	out := bufio.NewWriter(w)

	if header != "" {
		out.WriteString("# ")
		out.WriteString(escape(header, false))
		out.WriteByte('\n')
	}

	for _, key := range record.keys {
		out.WriteString(escape(key, true))
		out.WriteByte('=')
		out.WriteString(escape(record.values[key], false))
		out.WriteByte('\n')
	}

	return out.Flush()
}

// Serialises the record into a string, see Encode
func (record Record) EncodeToString(header string) string {
	var builder strings.Builder
	record.Encode(&builder, header)
	return builder.String()
}

// Parses text produced by Encode, returning the record and the header comment (if any)
func Decode(r io.Reader) (Record, string, error) {
	var record Record
	header := ""
	seenHeader := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimLeft(scanner.Text(), " \t\f")

		// Skip blank lines, the first comment line is the header
		if line == "" {
			continue
		}
		if line[0] == '#' || line[0] == '!' {
			if !seenHeader && record.Len() == 0 && strings.HasPrefix(line, "# ") {
				value, err := unescape(line[2:])
				if err != nil {
					return Record{}, "", fmt.Errorf("line %d: %w", lineNumber, err)
				}
				header = value
				seenHeader = true
			}
			continue
		}

		key, value, err := parseLine(line)
		if err != nil {
			return Record{}, "", fmt.Errorf("line %d: %w", lineNumber, err)
		}
		record.set(key, value)
	}

	if err := scanner.Err(); err != nil {
		return Record{}, "", err
	}
	return record, header, nil
}

// Parses text produced by Encode from a string
func DecodeString(text string) (Record, string, error) {
	return Decode(strings.NewReader(text))
}

// Splits a line on the first unescaped separator and unescapes both sides
func parseLine(line string) (string, string, error) {
	split := len(line)
	rest := len(line)
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' {
			i++
			continue
		}
		if line[i] == '=' || line[i] == ':' {
			split = i
			rest = i + 1
			break
		}
	}

	key, err := unescape(line[:split])
	if err != nil {
		return "", "", err
	}

	// Unescaped whitespace after the separator is not part of the value
	value, err := unescape(strings.TrimLeft(line[rest:], " \t\f"))
	if err != nil {
		return "", "", err
	}

	return key, value, nil
}

func escape(s string, isKey bool) string {
	var builder strings.Builder
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])

		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&builder, "\\x%02x", s[i])
		case r == '\\':
			builder.WriteString(`\\`)
		case r == '\n':
			builder.WriteString(`\n`)
		case r == '\r':
			builder.WriteString(`\r`)
		case r == '\t':
			builder.WriteString(`\t`)
		case r == '\f':
			builder.WriteString(`\f`)
		case r == ' ' && (isKey || i == 0):
			builder.WriteString(`\ `)
		case isKey && strings.ContainsRune("=:#!", r):
			builder.WriteByte('\\')
			builder.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&builder, "\\u%04x", r)
		default:
			builder.WriteString(s[i : i+size])
		}

		i += size
	}
	return builder.String()
}

func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var builder strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			builder.WriteByte(s[i])
			continue
		}

		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape in %q", s)
		}

		switch s[i] {
		case 'n':
			builder.WriteByte('\n')
		case 'r':
			builder.WriteByte('\r')
		case 't':
			builder.WriteByte('\t')
		case 'f':
			builder.WriteByte('\f')
		case 'u':
			if i+5 > len(s) {
				return "", fmt.Errorf("truncated \\u escape in %q", s)
			}
			code, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf("malformed \\u escape in %q", s)
			}
			builder.WriteRune(rune(code))
			i += 4
		case 'x':
			if i+3 > len(s) {
				return "", fmt.Errorf("truncated \\x escape in %q", s)
			}
			code, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("malformed \\x escape in %q", s)
			}
			builder.WriteByte(byte(code))
			i += 2
		default:
			builder.WriteByte(s[i])
		}
	}
	return builder.String(), nil
}
