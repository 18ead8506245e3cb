package takeout

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"takesort/internal/logging"
)

// Basenames the export drops next to media files that never describe a
// single media item. Compared case-insensitively.
var ignoredFiles = map[string]struct{}{
	"metadata.json":                     {},
	"shared_album_comments.json":        {},
	"user-generated-memory-titles.json": {},
	"print-subscriptions.json":          {},
}

var ignoredExtensions = map[string]struct{}{
	".html": {},
}

// MediaFileCandidate is one regular media file found in the archive.
// Immutable once produced.
type MediaFileCandidate struct {
	Path     string
	Size     int64
	ModTime  time.Time
	Category Category
}

// Sidecar is a metadata file candidate; immutable.
type Sidecar struct {
	Path string
}

// Dir is one directory's worth of scan output: the matcher's scope.
type Dir struct {
	Path     string
	Category Category
	Media    []MediaFileCandidate
	Sidecars []Sidecar
}

// Scanner walks a Takeout archive and groups media and sidecar candidates per
// directory. The walk is restartable: each call to Walk re-reads the disk.
type Scanner struct {
	root    string
	logger  *slog.Logger
	onIssue func(dir string, err error)
}

// NewScanner constructs a scanner rooted at the archive directory. onIssue is
// invoked for every unreadable subtree (the walk continues past it); it may
// be nil.
func NewScanner(root string, logger *slog.Logger, onIssue func(dir string, err error)) *Scanner {
	if onIssue == nil {
		onIssue = func(string, error) {}
	}
	return &Scanner{
		root:    root,
		logger:  logging.NewComponentLogger(logger, "scanner"),
		onIssue: onIssue,
	}
}

// Walk visits every directory under the root that contains at least one media
// file or sidecar, in sorted order. An unreadable root is fatal; unreadable
// subtrees are reported through onIssue and skipped. Returning an error from
// visit stops the walk.
func (s *Scanner) Walk(ctx context.Context, visit func(Dir) error) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("stat archive root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive root %s is not a directory", s.root)
	}
	return s.scan(ctx, s.root, true, visit)
}

func (s *Scanner) scan(ctx context.Context, dir string, isRoot bool, visit func(Dir) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if isRoot {
			return fmt.Errorf("read archive root: %w", err)
		}
		s.logger.Warn("skipping unreadable directory",
			logging.String(logging.FieldPath, dir),
			logging.Error(err),
		)
		s.onIssue(dir, err)
		return nil
	}

	group := Dir{Path: dir, Category: s.classifyDir(dir, isRoot)}
	var subdirs []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			subdirs = append(subdirs, filepath.Join(dir, name))
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if _, skip := ignoredFiles[strings.ToLower(name)]; skip {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if _, skip := ignoredExtensions[ext]; skip {
			continue
		}

		path := filepath.Join(dir, name)
		if ext == ".json" {
			group.Sidecars = append(group.Sidecars, Sidecar{Path: path})
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			s.onIssue(path, err)
			continue
		}
		group.Media = append(group.Media, MediaFileCandidate{
			Path:     path,
			Size:     fi.Size(),
			ModTime:  fi.ModTime(),
			Category: group.Category,
		})
	}

	if len(group.Media) > 0 || len(group.Sidecars) > 0 {
		sort.Slice(group.Media, func(i, j int) bool { return group.Media[i].Path < group.Media[j].Path })
		sort.Slice(group.Sidecars, func(i, j int) bool { return group.Sidecars[i].Path < group.Sidecars[j].Path })
		if err := visit(group); err != nil {
			return err
		}
	}

	sort.Strings(subdirs)
	for _, sub := range subdirs {
		if err := s.scan(ctx, sub, false, visit); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) classifyDir(dir string, isRoot bool) Category {
	if isRoot {
		return General()
	}
	return Classify(filepath.Base(dir))
}
