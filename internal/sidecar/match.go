package sidecar

import (
	"sort"
	"strconv"
	"strings"
)

// MatchOptions tunes the matching policy.
type MatchOptions struct {
	// MinSharedPrefix is the minimum number of leading characters a
	// truncated sidecar name must share with the media name.
	MinSharedPrefix int
}

// Match is the result of pairing one media basename with a sidecar basename.
type Match struct {
	Sidecar string
	Score   int
}

// Exact-convention hits rank above any truncation match; earlier derivations
// rank above later ones.
const exactScoreBase = 10000

// BestMatch scores the sidecar candidates against a media basename and
// returns the best one. The function is pure: it sees names only, never the
// filesystem.
//
// Policy, in order:
//  1. Exact convention derivations of the media name (media.ext.json, the
//     bracket-swapped counter form media.ext(N).json, extension-less HEIC
//     sidecars, "-edited" stripped variants).
//  2. Truncated names: the sidecar stem is a prefix of the media name or
//     vice versa, sharing at least MinSharedPrefix leading characters.
//  3. Among several candidates the longest common prefix with the media name
//     wins; ties break to the lexicographically smallest sidecar name.
func BestMatch(media string, sidecars []string, opts MatchOptions) (Match, bool) {
	if len(sidecars) == 0 {
		return Match{}, false
	}

	exact := make(map[string]int)
	for i, name := range Derivations(media) {
		if _, seen := exact[name]; !seen {
			exact[name] = exactScoreBase - i
		}
	}

	best := Match{Score: -1}
	for _, candidate := range sidecars {
		score, ok := scoreCandidate(media, candidate, exact, opts)
		if !ok {
			continue
		}
		if score > best.Score || (score == best.Score && candidate < best.Sidecar) {
			best = Match{Sidecar: candidate, Score: score}
		}
	}
	if best.Score < 0 {
		return Match{}, false
	}
	return best, true
}

func scoreCandidate(media, candidate string, exact map[string]int, opts MatchOptions) (int, bool) {
	if score, ok := exact[candidate]; ok {
		return score, true
	}

	stem := strings.TrimSuffix(candidate, ".json")
	if stem == candidate {
		return 0, false
	}
	// The export truncates long sidecar names, so either name may be the
	// prefix of the other.
	shared := commonPrefixLen(media, stem)
	if shared < opts.MinSharedPrefix {
		return 0, false
	}
	if shared != len(stem) && shared != len(media) {
		return 0, false
	}
	return shared, true
}

// Pair assigns each media basename at most one sidecar from the directory's
// candidates. Media names are processed in sorted order and every sidecar is
// consumed at most once, so the assignment is deterministic.
func Pair(media []string, sidecars []string, opts MatchOptions) map[string]string {
	ordered := make([]string, len(media))
	copy(ordered, media)
	sort.Strings(ordered)

	remaining := make([]string, len(sidecars))
	copy(remaining, sidecars)
	sort.Strings(remaining)

	pairs := make(map[string]string, len(ordered))
	for _, name := range ordered {
		match, ok := BestMatch(name, remaining, opts)
		if !ok {
			continue
		}
		pairs[name] = match.Sidecar
		for i, candidate := range remaining {
			if candidate == match.Sidecar {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return pairs
}

// Derivations lists the sidecar basenames the export's naming convention
// could have produced for a media basename, most specific first.
func Derivations(media string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	stem, ext := splitExt(media)
	lowerExt := strings.ToLower(ext)

	// Duplicate-counter artifact: "name(2).jpg" pairs with "name.jpg(2).json"
	// because the counter was appended after the sidecar already existed.
	if base, counter, ok := splitCounter(stem); ok {
		add(base + ext + "(" + counter + ").json")
	}

	add(media + ".json")

	// HEIC (and its paired live-photo clips) drop the media extension.
	if lowerExt == ".heic" {
		add(stem + ".json")
	}

	// Single-letter extension truncations seen on jpg/png exports.
	switch lowerExt {
	case ".jpg", ".jpeg":
		add(stem + ".j.json")
	case ".png":
		add(stem + ".p.json")
	}

	// "-edited" renders are saved next to the original and share its sidecar.
	for _, name := range append([]string(nil), out...) {
		if cleaned := strings.Replace(name, "-edited", "", 1); cleaned != name {
			add(cleaned)
		}
	}

	// Double-dot artifacts: "name..json" instead of "name.json".
	for _, name := range append([]string(nil), out...) {
		add(strings.ReplaceAll(name, "..json", ".json"))
	}

	return out
}

func splitExt(name string) (stem, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// splitCounter splits "name(3)" into ("name", "3"). Returns false when the
// trailing parenthetical is absent or not numeric.
func splitCounter(stem string) (base, counter string, ok bool) {
	if !strings.HasSuffix(stem, ")") {
		return "", "", false
	}
	open := strings.LastIndex(stem, "(")
	if open < 0 {
		return "", "", false
	}
	inner := stem[open+1 : len(stem)-1]
	if inner == "" {
		return "", "", false
	}
	if _, err := strconv.Atoi(inner); err != nil {
		return "", "", false
	}
	return stem[:open], inner, true
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
