package archive

import (
	"encoding/binary"
	"time"

	"github.com/macoscontainers/fsdump/internal/filesystem"
)

// The zip extra field tag for NTFS timestamps
const ntfsExtraID = 0x000a

// Seconds between the Windows FILETIME epoch (1601-01-01) and the Unix epoch
const filetimeEpochOffset = 11644473600

// Encodes the three timestamps as an NTFS extra field, which stores the modification,
// access and creation times at 100ns resolution
func ntfsExtra(times filesystem.FileTimes) []byte {
	extra := make([]byte, 36)

	// Field header
	binary.LittleEndian.PutUint16(extra[0:], ntfsExtraID)
	binary.LittleEndian.PutUint16(extra[2:], 32)

	// Four reserved bytes, then attribute tag 1 holding the three timestamps
	binary.LittleEndian.PutUint16(extra[8:], 1)
	binary.LittleEndian.PutUint16(extra[10:], 24)
	binary.LittleEndian.PutUint64(extra[12:], toFiletime(times.Modified))
	binary.LittleEndian.PutUint64(extra[20:], toFiletime(times.Accessed))
	binary.LittleEndian.PutUint64(extra[28:], toFiletime(times.Created))

	return extra
}

// Decodes the timestamps from the NTFS field of a zip extra block, if present
func parseNTFSExtra(extra []byte) (filesystem.FileTimes, bool) {
	for len(extra) >= 4 {
		tag := binary.LittleEndian.Uint16(extra[0:])
		size := int(binary.LittleEndian.Uint16(extra[2:]))
		if len(extra) < 4+size {
			break
		}
		field := extra[4 : 4+size]
		extra = extra[4+size:]

		if tag != ntfsExtraID || len(field) < 4 {
			continue
		}

		// Skip the reserved bytes and look for attribute tag 1
		attrs := field[4:]
		for len(attrs) >= 4 {
			attrTag := binary.LittleEndian.Uint16(attrs[0:])
			attrSize := int(binary.LittleEndian.Uint16(attrs[2:]))
			if len(attrs) < 4+attrSize {
				break
			}
			if attrTag == 1 && attrSize == 24 {
				value := attrs[4:]
				return filesystem.FileTimes{
					Modified: fromFiletime(binary.LittleEndian.Uint64(value[0:])),
					Accessed: fromFiletime(binary.LittleEndian.Uint64(value[8:])),
					Created:  fromFiletime(binary.LittleEndian.Uint64(value[16:])),
				}, true
			}
			attrs = attrs[4+attrSize:]
		}
	}

	return filesystem.FileTimes{}, false
}

// Converts a time to 100ns intervals since 1601 (times before 1601 are clamped)
func toFiletime(t time.Time) uint64 {
	secs := t.Unix() + filetimeEpochOffset
	if secs < 0 {
		return 0
	}
	return uint64(secs)*1e7 + uint64(t.Nanosecond()/100)
}

func fromFiletime(ft uint64) time.Time {
	secs := int64(ft/1e7) - filetimeEpochOffset
	nsecs := int64(ft%1e7) * 100
	return time.Unix(secs, nsecs).UTC()
}
