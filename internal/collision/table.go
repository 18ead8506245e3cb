// Package collision reserves unique destination filenames within each output
// directory.
package collision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Table hands out destination names, one directory at a time. The first time
// a directory is touched its existing entries are loaded, so reruns against a
// populated output tree keep producing fresh names. Safe for concurrent use.
type Table struct {
	mu   sync.Mutex
	dirs map[string]map[string]struct{}
}

func NewTable() *Table {
	return &Table{dirs: make(map[string]map[string]struct{})}
}

// Reserve claims a filename in dir. When the preferred name is taken, a
// numbered variant of the stem is tried until one is free: name.ext,
// name_1.ext, name_2.ext and so on. The returned name is claimed immediately,
// so concurrent reservations never alias.
func (t *Table) Reserve(dir, name string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	taken, ok := t.dirs[dir]
	if !ok {
		seeded, err := seed(dir)
		if err != nil {
			return "", err
		}
		taken = seeded
		t.dirs[dir] = taken
	}

	if _, exists := taken[name]; !exists {
		taken[name] = struct{}{}
		return name, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if _, exists := taken[candidate]; !exists {
			taken[candidate] = struct{}{}
			return candidate, nil
		}
	}
}

// seed loads the names already present in a directory. A directory that does
// not exist yet is simply empty.
func seed(dir string) (map[string]struct{}, error) {
	taken := make(map[string]struct{})
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return taken, nil
		}
		return nil, fmt.Errorf("read destination directory: %w", err)
	}
	for _, entry := range entries {
		taken[entry.Name()] = struct{}{}
	}
	return taken, nil
}
