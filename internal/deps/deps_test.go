package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckReportsAvailability(t *testing.T) {
	binDir := t.TempDir()
	present := writeStub(t, binDir, "present", "#!/bin/sh\nexit 0\n")

	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := Check(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
}

func TestCheckProbesVersion(t *testing.T) {
	binDir := t.TempDir()
	stub := writeStub(t, binDir, "exiftool", "#!/bin/sh\necho 13.10\nexit 0\n")

	results := Check(context.Background(), []Requirement{Exiftool(stub)})
	if !results[0].Available {
		t.Fatalf("expected availability, got %#v", results[0])
	}
	if results[0].Version != "13.10" {
		t.Fatalf("expected probed version, got %q", results[0].Version)
	}
	if !results[0].Optional {
		t.Fatal("exiftool must be optional")
	}
}

func TestCheckEmptyCommand(t *testing.T) {
	results := Check(context.Background(), []Requirement{{Name: "Unset"}})
	if results[0].Available {
		t.Fatal("expected unavailable for empty command")
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %s", results[0].Detail)
	}
}
