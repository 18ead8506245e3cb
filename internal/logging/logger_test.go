package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"takesort/internal/logging"
)

func TestConsoleHandlerOutputShape(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	scoped := logging.NewComponentLogger(logger, "scanner")
	scoped.Info("walking archive", logging.Int("media", 42), logging.String("root", "/tmp/in dir"))

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, " INFO scanner: walking archive") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "media=42") {
		t.Fatalf("missing media attr: %q", line)
	}
	if !strings.Contains(line, `root="/tmp/in dir"`) {
		t.Fatalf("expected quoted path attr: %q", line)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("suppressed")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn suppressed unexpectedly: %q", out)
	}
}

func TestJSONHandlerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello")

	out := buf.String()
	for _, want := range []string{`"ts":`, `"level":"info"`, `"msg":"hello"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("json output missing %s: %q", want, out)
		}
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "logfmt"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("nothing happens", logging.Error(nil))
}
