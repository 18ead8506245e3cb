package report

import (
	"sort"
	"sync"
)

// Kind classifies a recorded pipeline event.
type Kind string

const (
	ScanError               Kind = "scan_error"
	SidecarMatchWarning     Kind = "sidecar_match_warning"
	MetadataParseWarning    Kind = "metadata_parse_warning"
	ExtensionUnknownWarning Kind = "extension_unknown_warning"
	ExtensionCorrected      Kind = "extension_corrected"
	DuplicateSkipped        Kind = "duplicate_skipped"
	CollisionResolved       Kind = "collision_resolved"
	MetadataApplyFailed     Kind = "metadata_apply_failed"
	AlreadyPlaced           Kind = "already_placed"
)

// IsWarning reports whether kind describes a defect (as opposed to an
// informational outcome such as a resolved collision or a skipped duplicate).
func (k Kind) IsWarning() bool {
	switch k {
	case ScanError, SidecarMatchWarning, MetadataParseWarning,
		ExtensionUnknownWarning, MetadataApplyFailed:
		return true
	}
	return false
}

// Event records one pipeline outcome for one source path.
type Event struct {
	Kind   Kind
	Path   string
	Detail string
}

// Report accumulates events from concurrent workers. Append-only; events are
// never removed or rewritten.
type Report struct {
	mu     sync.Mutex
	events []Event
}

func New() *Report {
	return &Report{}
}

// Record appends one event. Safe for concurrent use.
func (r *Report) Record(kind Kind, path, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: kind, Path: path, Detail: detail})
}

// Snapshot returns the recorded events ordered by path, then kind, then
// detail, so output is stable regardless of worker scheduling.
func (r *Report) Snapshot() []Event {
	r.mu.Lock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Detail < out[j].Detail
	})
	return out
}

// Counts returns the number of events recorded per kind.
func (r *Report) Counts() map[Kind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[Kind]int, len(r.events))
	for _, ev := range r.events {
		counts[ev.Kind]++
	}
	return counts
}

// Warnings returns the number of events whose kind is a warning.
func (r *Report) Warnings() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind.IsWarning() {
			n++
		}
	}
	return n
}

// Len returns the total number of recorded events.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
