package signature_test

import (
	"os"
	"path/filepath"
	"testing"

	"takesort/internal/signature"
)

func pad(prefix []byte) []byte {
	out := make([]byte, signature.PrefixSize)
	copy(out, prefix)
	return out
}

func TestDetectTable(t *testing.T) {
	cases := []struct {
		name   string
		prefix []byte
		want   string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif", []byte("GIF89a"), "gif"},
		{"tiff little endian", []byte{0x49, 0x49, 0x2A, 0x00, 0x08, 0x00}, "tif"},
		{"tiff big endian", []byte{0x4D, 0x4D, 0x00, 0x2A}, "tif"},
		{"cr2", []byte{0x49, 0x49, 0x2A, 0x00, 0x10, 0x00, 0x00, 0x00, 0x43, 0x52, 0x02, 0x00}, "cr2"},
		{"bmp", []byte("BM6"), "bmp"},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), "webp"},
		{"avi", []byte("RIFF\x24\x00\x00\x00AVI LIST"), "avi"},
		{"mp3 id3", []byte("ID3\x03"), "mp3"},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, "mp3"},
		{"mpeg ps", []byte{0x00, 0x00, 0x01, 0xBA, 0x44}, "mpg"},
		{"mpeg video", []byte{0x00, 0x00, 0x01, 0xB3, 0x14}, "mpg"},
		{"asf", []byte{0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11, 0xA6, 0xD9}, "wmv"},
		{"heic", []byte("\x00\x00\x00\x18ftypheic"), "heic"},
		{"heix", []byte("\x00\x00\x00\x18ftypheix"), "heic"},
		{"mif1", []byte("\x00\x00\x00\x18ftypmif1"), "heic"},
		{"quicktime", []byte("\x00\x00\x00\x14ftypqt  "), "mov"},
		{"m4v", []byte("\x00\x00\x00\x1cftypM4V "), "m4v"},
		{"3gp", []byte("\x00\x00\x00\x18ftyp3gp5"), "3gp"},
		{"mp4 isom", []byte("\x00\x00\x00\x18ftypisom"), "mp4"},
		{"mp4 unknown brand", []byte("\x00\x00\x00\x18ftypXAVC"), "mp4"},
	}
	for _, tc := range cases {
		got, ok := signature.Detect(pad(tc.prefix))
		if !ok {
			t.Errorf("%s: no signature detected", tc.name)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDetectUnknown(t *testing.T) {
	if _, ok := signature.Detect(pad([]byte("not a media file"))); ok {
		t.Fatal("expected no match for plain text")
	}
	if _, ok := signature.Detect(nil); ok {
		t.Fatal("expected no match for empty prefix")
	}
}

func TestSniffFileShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.jpg")
	if err := os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ext, ok, err := signature.SniffFile(path)
	if err != nil {
		t.Fatalf("SniffFile: %v", err)
	}
	if !ok || ext != "jpg" {
		t.Fatalf("got %q/%v, want jpg", ext, ok)
	}
}

func TestSniffFileMissing(t *testing.T) {
	if _, _, err := signature.SniffFile(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSkipSniff(t *testing.T) {
	if !signature.SkipSniff(".mts") || !signature.SkipSniff("MTS") {
		t.Fatal("mts must be skipped")
	}
	if signature.SkipSniff(".mp4") {
		t.Fatal("mp4 must not be skipped")
	}
}

func TestMatches(t *testing.T) {
	cases := []struct {
		declared, detected string
		want               bool
	}{
		{".jpeg", "jpg", true},
		{".JPG", "jpg", true},
		{".tiff", "tif", true},
		{".heif", "heic", true},
		{".3gpp", "3gp", true},
		{".png", "jpg", false},
		{".mov", "mp4", false},
	}
	for _, tc := range cases {
		if got := signature.Matches(tc.declared, tc.detected); got != tc.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tc.declared, tc.detected, got, tc.want)
		}
	}
}
