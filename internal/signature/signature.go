// Package signature detects media container formats from leading file bytes
// and decides whether a file's declared extension matches its content.
package signature

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// PrefixSize is how many leading bytes Detect inspects. Every signature in
// the table fits well inside it.
const PrefixSize = 64

type magic struct {
	offset int
	bytes  []byte
	ext    string
}

// Order matters: CR2 shares the TIFF little-endian header and must be
// checked first.
var magics = []magic{
	{0, []byte{0x49, 0x49, 0x2A, 0x00, 0x10, 0x00, 0x00, 0x00, 0x43, 0x52}, "cr2"},
	{0, []byte{0xFF, 0xD8, 0xFF}, "jpg"},
	{0, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
	{0, []byte("GIF8"), "gif"},
	{0, []byte{0x49, 0x49, 0x2A, 0x00}, "tif"},
	{0, []byte{0x4D, 0x4D, 0x00, 0x2A}, "tif"},
	{0, []byte("BM"), "bmp"},
	{0, []byte("ID3"), "mp3"},
	{0, []byte{0x00, 0x00, 0x01, 0xBA}, "mpg"},
	{0, []byte{0x00, 0x00, 0x01, 0xB3}, "mpg"},
	{0, []byte{0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11}, "wmv"},
}

var heicBrands = map[string]struct{}{
	"heic": {},
	"heix": {},
	"mif1": {},
	"msf1": {},
}

// Detect returns the extension implied by the leading bytes of a file, or
// false when no known signature matches.
func Detect(prefix []byte) (string, bool) {
	for _, m := range magics {
		end := m.offset + len(m.bytes)
		if len(prefix) >= end && bytes.Equal(prefix[m.offset:end], m.bytes) {
			return m.ext, true
		}
	}

	if ext, ok := detectRIFF(prefix); ok {
		return ext, true
	}
	if ext, ok := detectBMFF(prefix); ok {
		return ext, true
	}
	if isMP3FrameSync(prefix) {
		return "mp3", true
	}
	return "", false
}

// detectRIFF distinguishes the RIFF containers we care about by their form
// type at offset 8.
func detectRIFF(prefix []byte) (string, bool) {
	if len(prefix) < 12 || !bytes.Equal(prefix[:4], []byte("RIFF")) {
		return "", false
	}
	switch string(prefix[8:12]) {
	case "WEBP":
		return "webp", true
	case "AVI ":
		return "avi", true
	}
	return "", false
}

// detectBMFF dispatches ISO base media files on the major brand following
// the ftyp box header.
func detectBMFF(prefix []byte) (string, bool) {
	if len(prefix) < 12 || !bytes.Equal(prefix[4:8], []byte("ftyp")) {
		return "", false
	}
	brand := string(prefix[8:12])
	if _, ok := heicBrands[brand]; ok {
		return "heic", true
	}
	switch {
	case brand == "qt  ":
		return "mov", true
	case brand == "M4V ":
		return "m4v", true
	case strings.HasPrefix(brand, "3gp"):
		return "3gp", true
	}
	return "mp4", true
}

func isMP3FrameSync(prefix []byte) bool {
	if len(prefix) < 2 || prefix[0] != 0xFF {
		return false
	}
	switch prefix[1] {
	case 0xFB, 0xF3, 0xF2:
		return true
	}
	return false
}

// SniffFile reads the file's prefix and detects its format. A short file is
// not an error; whatever bytes exist are matched against the table.
func SniffFile(path string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	prefix := make([]byte, PrefixSize)
	n, err := io.ReadFull(f, prefix)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", false, err
	}
	ext, ok := Detect(prefix[:n])
	return ext, ok, nil
}

// SkipSniff reports extensions whose content is never inspected. AVCHD
// transport streams carry a generic MPEG sync pattern and would be
// misclassified.
func SkipSniff(ext string) bool {
	return strings.EqualFold(strings.TrimPrefix(ext, "."), "mts")
}

// Equivalent extension spellings: a declared extension from either set
// matches a detection from the same set.
var aliases = map[string]string{
	"jpeg": "jpg",
	"jpe":  "jpg",
	"tiff": "tif",
	"mpeg": "mpg",
	"heif": "heic",
	"3gpp": "3gp",
	"qt":   "mov",
}

func canonical(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if c, ok := aliases[ext]; ok {
		return c
	}
	return ext
}

// Matches reports whether a declared extension agrees with a detected one,
// treating alternate spellings of the same format as equal.
func Matches(declared, detected string) bool {
	return canonical(declared) == canonical(detected)
}
