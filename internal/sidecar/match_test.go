package sidecar_test

import (
	"testing"

	"takesort/internal/sidecar"
)

var opts = sidecar.MatchOptions{MinSharedPrefix: 12}

func TestDerivationsBracketCounter(t *testing.T) {
	got := sidecar.Derivations("my_bracket(1).png")
	if got[0] != "my_bracket.png(1).json" {
		t.Fatalf("expected bracket-swapped derivation first, got %v", got)
	}
}

func TestDerivationsBracketCounterDoubleDigit(t *testing.T) {
	got := sidecar.Derivations("my_bracket(16).png")
	if got[0] != "my_bracket.png(16).json" {
		t.Fatalf("expected bracket-swapped derivation first, got %v", got)
	}
}

func TestDerivationsNonNumericBracketIgnored(t *testing.T) {
	got := sidecar.Derivations("my_bracket(ooga).png")
	if got[0] != "my_bracket(ooga).png.json" {
		t.Fatalf("expected plain derivation first, got %v", got)
	}
}

func TestDerivationsHEICDropsExtension(t *testing.T) {
	got := sidecar.Derivations("66694115136__8679EE1A-E4B4-4D1B-B76C-510A6E58C.HEIC")
	found := false
	for _, name := range got {
		if name == "66694115136__8679EE1A-E4B4-4D1B-B76C-510A6E58C.json" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing extension-less HEIC derivation: %v", got)
	}
	if got[0] != "66694115136__8679EE1A-E4B4-4D1B-B76C-510A6E58C.HEIC.json" {
		t.Fatalf("plain derivation should come first: %v", got)
	}
}

func TestDerivationsEditedStripped(t *testing.T) {
	got := sidecar.Derivations("IMG_0001-edited.jpg")
	found := false
	for _, name := range got {
		if name == "IMG_0001.jpg.json" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing -edited stripped derivation: %v", got)
	}
}

func TestBestMatchExactWinsOverTruncation(t *testing.T) {
	media := "2018-06-17 01_54_22-13th June - OneNote 2016(1).png"
	sidecars := []string{
		"2018-06-17 01_54_22-13th June - OneNote 2016.png(1).json",
		"2018-06-17 01_54_22-13th June - OneNote 2.json",
	}
	match, ok := sidecar.BestMatch(media, sidecars, opts)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Sidecar != sidecars[0] {
		t.Fatalf("expected bracket-swapped exact match, got %q", match.Sidecar)
	}
}

func TestBestMatchTruncatedSidecar(t *testing.T) {
	media := "PXL_20230817_203059134.PORTRAIT-01.COVER.jpg"
	sidecars := []string{"PXL_20230817_203059134.PORTRAIT-01.COVE.json"}
	match, ok := sidecar.BestMatch(media, sidecars, opts)
	if !ok {
		t.Fatal("expected truncation match")
	}
	if match.Sidecar != sidecars[0] {
		t.Fatalf("unexpected match: %q", match.Sidecar)
	}
}

func TestBestMatchRespectsMinSharedPrefix(t *testing.T) {
	media := "IMG_0001.jpg"
	sidecars := []string{"IMG_0.json"}
	if _, ok := sidecar.BestMatch(media, sidecars, opts); ok {
		t.Fatal("short shared prefix must not match")
	}
	loose := sidecar.MatchOptions{MinSharedPrefix: 4}
	if _, ok := sidecar.BestMatch(media, sidecars, loose); !ok {
		t.Fatal("expected match with lower threshold")
	}
}

func TestBestMatchPrefersLongestCommonPrefix(t *testing.T) {
	media := "PXL_20230817_203059134.LONG_SUFFIX_NAME.jpg"
	sidecars := []string{
		"PXL_20230817_2030.json",
		"PXL_20230817_203059134.LONG_S.json",
	}
	match, ok := sidecar.BestMatch(media, sidecars, opts)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Sidecar != sidecars[1] {
		t.Fatalf("expected longest-prefix candidate, got %q", match.Sidecar)
	}
}

func TestBestMatchTieBreaksLexicographically(t *testing.T) {
	// Two sidecars whose stems both extend the full media name share the
	// same prefix length; the smaller name must win.
	media := "PXL_20230817_203059134.jpg"
	sidecars := []string{
		"PXL_20230817_203059134.jpg-zz.json",
		"PXL_20230817_203059134.jpg-aa.json",
	}
	match, ok := sidecar.BestMatch(media, sidecars, opts)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Sidecar != "PXL_20230817_203059134.jpg-aa.json" {
		t.Fatalf("unexpected winner: %q", match.Sidecar)
	}
}

func TestBestMatchRejectsUnrelated(t *testing.T) {
	if _, ok := sidecar.BestMatch("IMG_0001.jpg", []string{"VID_9999.mp4.json"}, opts); ok {
		t.Fatal("unrelated sidecar must not match")
	}
}

func TestPairConsumesSidecarsOnce(t *testing.T) {
	media := []string{"IMG_0001.jpg", "IMG_0001(1).jpg"}
	sidecars := []string{"IMG_0001.jpg.json", "IMG_0001.jpg(1).json"}

	pairs := sidecar.Pair(media, sidecars, opts)
	if len(pairs) != 2 {
		t.Fatalf("expected both media paired: %v", pairs)
	}
	if pairs["IMG_0001.jpg"] != "IMG_0001.jpg.json" {
		t.Fatalf("plain media mispaired: %v", pairs)
	}
	if pairs["IMG_0001(1).jpg"] != "IMG_0001.jpg(1).json" {
		t.Fatalf("counter media mispaired: %v", pairs)
	}
}

func TestPairLeavesUnmatchedMediaOut(t *testing.T) {
	pairs := sidecar.Pair([]string{"alone.mp4"}, nil, opts)
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs, got %v", pairs)
	}
}
