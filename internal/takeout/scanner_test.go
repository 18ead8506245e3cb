package takeout_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"takesort/internal/logging"
	"takesort/internal/takeout"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func collect(t *testing.T, root string) map[string]takeout.Dir {
	t.Helper()
	scanner := takeout.NewScanner(root, logging.NewNop(), nil)
	dirs := map[string]takeout.Dir{}
	err := scanner.Walk(context.Background(), func(d takeout.Dir) error {
		dirs[d.Path] = d
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return dirs
}

func TestWalkGroupsMediaAndSidecarsPerDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Photos from 2019", "IMG_0001.jpg"))
	writeFile(t, filepath.Join(root, "Photos from 2019", "IMG_0001.jpg.json"))
	writeFile(t, filepath.Join(root, "Summer Trip", "beach.png"))
	writeFile(t, filepath.Join(root, "Untitled(3)", "shot.mp4"))

	dirs := collect(t, root)

	yearDir := dirs[filepath.Join(root, "Photos from 2019")]
	if len(yearDir.Media) != 1 || len(yearDir.Sidecars) != 1 {
		t.Fatalf("unexpected year dir contents: %+v", yearDir)
	}
	if !yearDir.Category.IsGeneral() {
		t.Fatalf("year dir should be general, got %s", yearDir.Category)
	}
	if yearDir.Media[0].Category != yearDir.Category {
		t.Fatal("candidate category must match directory category")
	}

	albumDir := dirs[filepath.Join(root, "Summer Trip")]
	if name, ok := albumDir.Category.AlbumName(); !ok || name != "Summer Trip" {
		t.Fatalf("unexpected album category: %s", albumDir.Category)
	}

	sharedDir := dirs[filepath.Join(root, "Untitled(3)")]
	if !sharedDir.Category.IsShared() {
		t.Fatalf("untitled dir should be shared, got %s", sharedDir.Category)
	}
}

func TestWalkSkipsIgnoredFiles(t *testing.T) {
	root := t.TempDir()
	album := filepath.Join(root, "Trip")
	writeFile(t, filepath.Join(album, "photo.jpg"))
	writeFile(t, filepath.Join(album, "metadata.json"))
	writeFile(t, filepath.Join(album, "Shared_Album_Comments.json"))
	writeFile(t, filepath.Join(album, "print-subscriptions.json"))
	writeFile(t, filepath.Join(album, "index.html"))

	dirs := collect(t, root)
	d := dirs[album]
	if len(d.Media) != 1 {
		t.Fatalf("expected one media file, got %d", len(d.Media))
	}
	if len(d.Sidecars) != 0 {
		t.Fatalf("ignored json files leaked through: %+v", d.Sidecars)
	}
}

func TestWalkOrderIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "B Album", "b.jpg"))
	writeFile(t, filepath.Join(root, "A Album", "a.jpg"))
	writeFile(t, filepath.Join(root, "A Album", "c.jpg"))

	scanner := takeout.NewScanner(root, logging.NewNop(), nil)
	var order []string
	err := scanner.Walk(context.Background(), func(d takeout.Dir) error {
		order = append(order, filepath.Base(d.Path))
		for _, m := range d.Media {
			order = append(order, filepath.Base(m.Path))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"A Album", "a.jpg", "c.jpg", "B Album", "b.jpg"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order: %v", order)
		}
	}
}

func TestWalkMissingRootIsFatal(t *testing.T) {
	scanner := takeout.NewScanner(filepath.Join(t.TempDir(), "absent"), logging.NewNop(), nil)
	err := scanner.Walk(context.Background(), func(takeout.Dir) error { return nil })
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestWalkRestartable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Trip", "a.jpg"))

	scanner := takeout.NewScanner(root, logging.NewNop(), nil)
	for pass := 0; pass < 2; pass++ {
		count := 0
		err := scanner.Walk(context.Background(), func(d takeout.Dir) error {
			count += len(d.Media)
			return nil
		})
		if err != nil {
			t.Fatalf("pass %d: %v", pass, err)
		}
		if count != 1 {
			t.Fatalf("pass %d: expected 1 media file, got %d", pass, count)
		}
	}
}
