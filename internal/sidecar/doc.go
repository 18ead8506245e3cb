// Package sidecar pairs media files with their Takeout JSON sidecars and
// extracts the metadata record this tool applies to copies.
//
// Matching is a pure function over basenames so the organically-grown naming
// artifacts of the export (duplicate counters, truncated names, HEIC sidecars
// without the media extension, "-edited" renders) stay unit-testable without
// touching a filesystem.
package sidecar
