package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteJPEG writes a file whose leading bytes carry the JPEG signature
// followed by the payload, so content detection sees a real JPEG.
func WriteJPEG(t testing.TB, path string, payload string) {
	t.Helper()
	writeBytes(t, path, append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, payload...))
}

// WritePNG writes a file with the PNG signature followed by the payload.
func WritePNG(t testing.TB, path string, payload string) {
	t.Helper()
	writeBytes(t, path, append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, payload...))
}

// WriteMP4 writes a file with an isom ftyp header followed by the payload.
func WriteMP4(t testing.TB, path string, payload string) {
	t.Helper()
	writeBytes(t, path, append([]byte("\x00\x00\x00\x18ftypisom"), payload...))
}

// WriteSidecar writes a minimal Takeout sidecar next to a media file. Zero
// epochs leave the corresponding timestamp out.
func WriteSidecar(t testing.TB, path, title string, takenEpoch, creationEpoch int64) {
	t.Helper()
	body := fmt.Sprintf(`{
  "title": %q,
  "photoTakenTime": {"timestamp": %q},
  "creationTime": {"timestamp": %q}
}`, title, epochString(takenEpoch), epochString(creationEpoch))
	writeBytes(t, path, []byte(body))
}

func epochString(epoch int64) string {
	if epoch == 0 {
		return ""
	}
	return fmt.Sprintf("%d", epoch)
}

// WriteFile writes arbitrary content, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	writeBytes(t, path, []byte(content))
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
