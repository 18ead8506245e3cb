package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"takesort/internal/deps"
	"takesort/internal/logging"
	"takesort/internal/services"
)

// workDirName holds run-owned state inside the output tree: the ledger and
// the single-run lock.
const workDirName = ".takesort"

// preflight prepares the output tree and acquires the run lock. Everything
// that fails here is fatal; a run that cannot write its output should not
// start hashing.
func (o *Orchestrator) preflight(ctx context.Context) (*flock.Flock, error) {
	info, err := os.Stat(o.inputRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrFatal, "preflight", "input", "archive root unavailable", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrFatal, "preflight", "input", fmt.Sprintf("%s is not a directory", o.inputRoot), nil)
	}

	workDir := filepath.Join(o.outputRoot, workDirName)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrFatal, "preflight", "output", "output root is not writable", err)
	}
	for _, dir := range []string{
		filepath.Join(o.outputRoot, "general"),
		filepath.Join(o.outputRoot, "shared", "shared"),
		filepath.Join(o.outputRoot, "albums"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrFatal, "preflight", "output", "create category root", err)
		}
	}

	lock := flock.New(filepath.Join(workDir, "run.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFatal, "preflight", "lock", "acquire output lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrFatal, "preflight", "lock", "another run owns this output directory", nil)
	}

	o.probeExiftool(ctx)
	return lock, nil
}

func (o *Orchestrator) probeExiftool(ctx context.Context) {
	if o.cfg.Exiftool.Disabled {
		o.exiftoolReady = false
		o.logger.Info("metadata applicator disabled by configuration")
		return
	}
	statuses := deps.Check(ctx, []deps.Requirement{deps.Exiftool(o.cfg.ExiftoolBinary())})
	status := statuses[0]
	if !status.Available {
		o.exiftoolReady = false
		o.logger.Warn("exiftool unavailable, files will keep their embedded metadata",
			logging.String("detail", status.Detail))
		return
	}
	o.exiftoolReady = true
	o.logger.Info("exiftool available",
		logging.String("binary", status.Command),
		logging.String("version", status.Version))
}

// checkFreeSpace compares the bytes about to be copied against the space
// available on the output filesystem. Failure to measure is not an error;
// running out of space mid-copy still surfaces as a fatal place error.
func (o *Orchestrator) checkFreeSpace(assets []*Asset) error {
	var needed uint64
	for _, a := range assets {
		needed += uint64(a.Candidate.Size)
	}
	available, ok := freeBytes(o.outputRoot)
	if !ok {
		return nil
	}
	if available < needed {
		return services.Wrap(services.ErrFatal, "preflight", "space",
			fmt.Sprintf("output filesystem has %d bytes free, run needs up to %d", available, needed), nil)
	}
	return nil
}
