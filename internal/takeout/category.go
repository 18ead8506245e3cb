package takeout

import (
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type categoryKind int

const (
	kindGeneral categoryKind = iota
	kindShared
	kindAlbum
)

// Category is the destination class of a media file, fixed at scan time.
// One of general (ungrouped items), shared album, or a named private album.
type Category struct {
	kind  categoryKind
	album string
}

func General() Category { return Category{kind: kindGeneral} }

func Shared() Category { return Category{kind: kindShared} }

func Album(name string) Category {
	return Category{kind: kindAlbum, album: norm.NFC.String(name)}
}

func (c Category) IsGeneral() bool { return c.kind == kindGeneral }

func (c Category) IsShared() bool { return c.kind == kindShared }

// AlbumName returns the album name and true when the category is an album.
func (c Category) AlbumName() (string, bool) {
	return c.album, c.kind == kindAlbum
}

func (c Category) String() string {
	switch c.kind {
	case kindShared:
		return "shared"
	case kindAlbum:
		return "album:" + c.album
	default:
		return "general"
	}
}

// DestinationDir resolves the output directory for this category under the
// given output root:
//
//	general      -> <root>/general
//	shared album -> <root>/shared/shared
//	album        -> <root>/albums/<album-name>
func (c Category) DestinationDir(outputRoot string) string {
	switch c.kind {
	case kindShared:
		return filepath.Join(outputRoot, "shared", "shared")
	case kindAlbum:
		return filepath.Join(outputRoot, "albums", c.album)
	default:
		return filepath.Join(outputRoot, "general")
	}
}

// Priority orders categories for canonical duplicate election: album copies
// are preserved over shared copies, shared over general. Lower wins.
func (c Category) Priority() int {
	switch c.kind {
	case kindAlbum:
		return 0
	case kindShared:
		return 1
	default:
		return 2
	}
}

// Classify derives the category of files inside a directory from its
// basename, following the Takeout folder convention:
//
//	Archive, "Photos from YYYY"  -> general
//	Untitled, Untitled(N)        -> shared album
//	anything else                -> album named after the folder
func Classify(dirName string) Category {
	name := strings.TrimSpace(dirName)
	switch {
	case name == "Archive":
		return General()
	case isPhotosFromYear(name):
		return General()
	case name == "Untitled" || isUntitledCounter(name):
		return Shared()
	default:
		return Album(name)
	}
}

func isPhotosFromYear(name string) bool {
	const prefix = "Photos from "
	if !strings.HasPrefix(name, prefix) || len(name) != len(prefix)+4 {
		return false
	}
	year, err := strconv.Atoi(name[len(prefix):])
	return err == nil && year >= 1000
}

func isUntitledCounter(name string) bool {
	const prefix = "Untitled("
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ")") {
		return false
	}
	inner := name[len(prefix) : len(name)-1]
	if inner == "" {
		return false
	}
	_, err := strconv.Atoi(inner)
	return err == nil
}
