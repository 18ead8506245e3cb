// Package dedupe fingerprints media content and elects one canonical source
// per fingerprint across the whole run.
package dedupe

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/zeebo/blake3"
)

// Fingerprint hashes the full content of a file and returns the digest as a
// lowercase hex string. Identical bytes always produce identical
// fingerprints regardless of path or name.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for fingerprint: %w", err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Claim is one source file competing to own a fingerprint.
type Claim struct {
	Path string
	// Priority orders claims; lower wins. Ties break to the
	// lexicographically smallest path.
	Priority int
}

// Index tracks which source owns each fingerprint. Safe for concurrent use;
// election happens inside a single check-and-insert.
type Index struct {
	mu     sync.Mutex
	owners map[string]Claim
}

func NewIndex() *Index {
	return &Index{owners: make(map[string]Claim)}
}

// Acquire registers a claim for a fingerprint and reports whether it is the
// current canonical owner. A better claim displaces a worse one, so the
// final ownership is independent of arrival order once all claims are in.
func (x *Index) Acquire(fingerprint string, claim Claim) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	current, exists := x.owners[fingerprint]
	if !exists || claim.wins(current) {
		x.owners[fingerprint] = claim
		return true
	}
	return false
}

// Canonical returns the winning claim for a fingerprint.
func (x *Index) Canonical(fingerprint string) (Claim, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	claim, ok := x.owners[fingerprint]
	return claim, ok
}

// Len returns the number of distinct fingerprints seen.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.owners)
}

func (c Claim) wins(other Claim) bool {
	if c.Priority != other.Priority {
		return c.Priority < other.Priority
	}
	return c.Path < other.Path
}
