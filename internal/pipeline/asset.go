package pipeline

import (
	"takesort/internal/sidecar"
	"takesort/internal/takeout"
)

// Asset is one media file moving through the run. Built once during
// scan/match, then mutated by exactly one worker per phase.
type Asset struct {
	Candidate   takeout.MediaFileCandidate
	SidecarPath string
	Meta        *sidecar.Metadata

	// WorkingName is the destination basename; starts as the source
	// basename and changes when the extension is corrected.
	WorkingName string

	Fingerprint string

	// Set between the fingerprint and place phases.
	duplicateOf   string
	alreadyPlaced bool

	// DestPath is the final location once placed.
	DestPath string
}

func (a *Asset) isDuplicate() bool { return a.duplicateOf != "" }
