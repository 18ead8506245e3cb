// Package pipeline drives a Takeout archive through scan, match,
// fingerprint, and placement, bounded by a configurable worker pool.
//
// The run is split into two phases over the matched assets. The fingerprint
// phase verifies extensions, hashes content, and elects one canonical source
// per fingerprint; the place phase copies only the winners. Because election
// finishes before any byte is copied, the output is identical regardless of
// worker count or scheduling.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"takesort/internal/collision"
	"takesort/internal/config"
	"takesort/internal/dedupe"
	"takesort/internal/exiftool"
	"takesort/internal/fileutil"
	"takesort/internal/ledger"
	"takesort/internal/logging"
	"takesort/internal/report"
	"takesort/internal/services"
	"takesort/internal/sidecar"
	"takesort/internal/signature"
	"takesort/internal/takeout"
)

// Orchestrator owns the shared state of one run: the report, the dedup
// index, the collision table, and the optional placement ledger.
type Orchestrator struct {
	cfg        *config.Config
	inputRoot  string
	outputRoot string
	logger     *slog.Logger

	report     *report.Report
	index      *dedupe.Index
	collisions *collision.Table
	applicator *exiftool.Applicator
	store      *ledger.Store

	exiftoolReady bool
}

// Summary is the outcome of a completed run.
type Summary struct {
	RunID         string
	Scanned       int
	Placed        int
	Duplicates    int
	AlreadyPlaced int
	Warnings      int
	Counts        map[report.Kind]int
	Events        []report.Event
	Elapsed       time.Duration
}

func New(cfg *config.Config, inputRoot, outputRoot string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		inputRoot:  inputRoot,
		outputRoot: outputRoot,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		report:     report.New(),
		index:      dedupe.NewIndex(),
		collisions: collision.NewTable(),
		applicator: exiftool.New(cfg.ExiftoolBinary(),
			time.Duration(cfg.Exiftool.TimeoutSeconds)*time.Second, logger),
	}
}

// Run executes the whole pipeline. Non-fatal conditions accumulate in the
// summary; only fatal filesystem errors return an error. Files already
// placed before a fatal error stay on disk.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	lock, err := o.preflight(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	runID := o.openLedger(ctx)

	assets, err := o.collect(ctx)
	if err != nil {
		return nil, err
	}
	o.logger.Info("archive scanned",
		logging.Int("media_files", len(assets)),
		logging.Int("scan_errors", o.report.Counts()[report.ScanError]))

	if err := o.checkFreeSpace(assets); err != nil {
		return nil, err
	}

	if err := o.runWorkers(ctx, len(assets), func(ctx context.Context, i int) error {
		return o.fingerprint(ctx, assets[i])
	}); err != nil {
		return nil, err
	}

	placeable := o.electCanonicals(ctx, assets)

	advance := o.progressFunc(len(placeable))
	if err := o.runWorkers(ctx, len(placeable), func(ctx context.Context, i int) error {
		if err := o.place(ctx, placeable[i], runID); err != nil {
			return err
		}
		advance()
		return nil
	}); err != nil {
		return nil, err
	}

	summary := o.summarize(assets, runID, time.Since(start))
	o.closeLedger(ctx, runID, summary.Placed)
	o.logger.Info("run complete",
		logging.Int("placed", summary.Placed),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("warnings", summary.Warnings),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// collect walks the archive and builds one asset per media file, pairing
// sidecars and parsing their metadata along the way.
func (o *Orchestrator) collect(ctx context.Context) ([]*Asset, error) {
	opts := sidecar.MatchOptions{MinSharedPrefix: o.cfg.Matching.MinSharedPrefix}
	scanner := takeout.NewScanner(o.inputRoot, o.logger, func(dir string, err error) {
		o.report.Record(report.ScanError, dir, err.Error())
	})

	var assets []*Asset
	err := scanner.Walk(ctx, func(d takeout.Dir) error {
		mediaNames := make([]string, 0, len(d.Media))
		for _, m := range d.Media {
			mediaNames = append(mediaNames, filepath.Base(m.Path))
		}
		sidecarNames := make([]string, 0, len(d.Sidecars))
		for _, s := range d.Sidecars {
			sidecarNames = append(sidecarNames, filepath.Base(s.Path))
		}
		pairs := sidecar.Pair(mediaNames, sidecarNames, opts)

		for _, m := range d.Media {
			asset := &Asset{Candidate: m, WorkingName: filepath.Base(m.Path)}
			if matched, ok := pairs[asset.WorkingName]; ok {
				asset.SidecarPath = filepath.Join(d.Path, matched)
				meta, parseErr := sidecar.ParseFile(asset.SidecarPath)
				if parseErr != nil {
					o.report.Record(report.MetadataParseWarning, m.Path, parseErr.Error())
				} else {
					asset.Meta = meta
				}
			} else {
				o.report.Record(report.SidecarMatchWarning, m.Path, "no sidecar matched")
			}
			assets = append(assets, asset)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrFatal, "scan", "walk", "archive root unreadable", err)
	}
	return assets, nil
}

// fingerprint runs the per-asset work that must finish before anything is
// copied: extension verification and content hashing plus the dedup claim.
func (o *Orchestrator) fingerprint(_ context.Context, a *Asset) error {
	o.verifyExtension(a)

	fp, err := dedupe.Fingerprint(a.Candidate.Path)
	if err != nil {
		// The file vanished or became unreadable mid-run; skip it like an
		// unreadable subtree. Fingerprint stays empty so election drops it.
		o.report.Record(report.ScanError, a.Candidate.Path, err.Error())
		return nil
	}
	a.Fingerprint = fp
	o.index.Acquire(fp, dedupe.Claim{
		Path:     a.Candidate.Path,
		Priority: a.Candidate.Category.Priority(),
	})
	return nil
}

func (o *Orchestrator) verifyExtension(a *Asset) {
	declared := filepath.Ext(a.WorkingName)
	if signature.SkipSniff(declared) {
		return
	}
	detected, known, err := signature.SniffFile(a.Candidate.Path)
	if err != nil {
		o.report.Record(report.ScanError, a.Candidate.Path, err.Error())
		return
	}
	if !known {
		o.report.Record(report.ExtensionUnknownWarning, a.Candidate.Path,
			fmt.Sprintf("no known content signature, keeping %q", declared))
		return
	}
	if signature.Matches(declared, detected) {
		return
	}
	stem := a.WorkingName[:len(a.WorkingName)-len(declared)]
	a.WorkingName = stem + "." + detected
	o.report.Record(report.ExtensionCorrected, a.Candidate.Path,
		fmt.Sprintf("content is %s, renamed to %s", detected, a.WorkingName))
}

// electCanonicals marks duplicates and already-placed assets, returning the
// assets the place phase still has to copy. Runs after every fingerprint is
// in, so the winner set is final.
func (o *Orchestrator) electCanonicals(ctx context.Context, assets []*Asset) []*Asset {
	var placeable []*Asset
	for _, a := range assets {
		if a.isDuplicate() || a.Fingerprint == "" {
			continue
		}
		canonical, _ := o.index.Canonical(a.Fingerprint)
		if canonical.Path != a.Candidate.Path {
			a.duplicateOf = canonical.Path
			o.report.Record(report.DuplicateSkipped, a.Candidate.Path,
				fmt.Sprintf("identical content kept at %s", canonical.Path))
			continue
		}
		if o.markAlreadyPlaced(ctx, a) {
			continue
		}
		placeable = append(placeable, a)
	}
	return placeable
}

func (o *Orchestrator) markAlreadyPlaced(ctx context.Context, a *Asset) bool {
	if o.store != nil {
		placement, found, err := o.store.Lookup(ctx, a.Fingerprint)
		if err == nil && found {
			if _, statErr := os.Stat(placement.DestPath); statErr == nil {
				return o.recordAlreadyPlaced(a, placement.DestPath)
			}
		}
	}
	return o.matchExistingCopy(a)
}

// matchExistingCopy covers reruns with no ledger hit: when a file already
// sitting at the asset's destination, under its preferred name or any
// collision suffix, carries identical content, the asset is already placed.
func (o *Orchestrator) matchExistingCopy(a *Asset) bool {
	destDir := a.Candidate.Category.DestinationDir(o.outputRoot)
	ext := filepath.Ext(a.WorkingName)
	stem := strings.TrimSuffix(a.WorkingName, ext)

	for n := 0; ; n++ {
		name := a.WorkingName
		if n > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		dest := filepath.Join(destDir, name)
		if _, err := os.Stat(dest); err != nil {
			return false
		}
		fp, err := dedupe.Fingerprint(dest)
		if err != nil {
			return false
		}
		if fp == a.Fingerprint {
			return o.recordAlreadyPlaced(a, dest)
		}
	}
}

func (o *Orchestrator) recordAlreadyPlaced(a *Asset, dest string) bool {
	a.alreadyPlaced = true
	a.DestPath = dest
	o.report.Record(report.AlreadyPlaced, a.Candidate.Path,
		fmt.Sprintf("already at %s", dest))
	return true
}

// place copies one canonical asset into the output tree, applies sidecar
// metadata, and restores file times. Filesystem failures here are fatal.
func (o *Orchestrator) place(ctx context.Context, a *Asset, runID string) error {
	destDir := a.Candidate.Category.DestinationDir(o.outputRoot)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return services.Wrap(services.ErrFatal, "place", "mkdir", destDir, err)
	}

	name, err := o.collisions.Reserve(destDir, a.WorkingName)
	if err != nil {
		return services.Wrap(services.ErrFatal, "place", "reserve", destDir, err)
	}
	if name != a.WorkingName {
		o.report.Record(report.CollisionResolved, a.Candidate.Path,
			fmt.Sprintf("renamed to %s", name))
	}
	dest := filepath.Join(destDir, name)

	copyFn := fileutil.Place
	if o.cfg.Run.VerifyCopies {
		copyFn = fileutil.PlaceVerified
	}
	if err := copyFn(a.Candidate.Path, dest); err != nil {
		return services.Wrap(services.ErrFatal, "place", "copy", dest, err)
	}
	a.DestPath = dest

	// Meta is nil when the sidecar failed to parse; exiftool would only
	// fail again on the same malformed JSON.
	if a.SidecarPath != "" && a.Meta != nil && o.exiftoolReady {
		if applyErr := o.applicator.Apply(ctx, a.SidecarPath, dest); applyErr != nil {
			o.report.Record(report.MetadataApplyFailed, a.Candidate.Path, applyErr.Error())
		}
	}
	if t := a.Meta.EarliestTime(); t != nil {
		if chErr := os.Chtimes(dest, *t, *t); chErr != nil {
			o.logger.Debug("set file times failed",
				logging.String(logging.FieldDest, dest), logging.Error(chErr))
		}
	}

	if o.store != nil {
		if recErr := o.store.RecordPlacement(ctx, ledger.Placement{
			Fingerprint: a.Fingerprint,
			RunID:       runID,
			SourcePath:  a.Candidate.Path,
			DestPath:    dest,
			Category:    a.Candidate.Category.String(),
		}); recErr != nil {
			o.logger.Warn("ledger record failed",
				logging.String(logging.FieldPath, a.Candidate.Path), logging.Error(recErr))
		}
	}

	o.logger.Debug("placed",
		logging.String(logging.FieldPath, a.Candidate.Path),
		logging.String(logging.FieldDest, dest))
	return nil
}

// runWorkers fans items out to the configured pool. The first error cancels
// the run; remaining queued items are dropped.
func (o *Orchestrator) runWorkers(parent context.Context, items int, work func(context.Context, int) error) error {
	if items == 0 {
		return parent.Err()
	}
	workers := o.cfg.Run.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				if err := work(ctx, i); err != nil {
					fail(err)
				}
			}
		}()
	}

feed:
	for i := 0; i < items; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return parent.Err()
}

func (o *Orchestrator) openLedger(ctx context.Context) string {
	if !o.cfg.Run.Ledger {
		return ""
	}
	store, err := ledger.Open(filepath.Join(o.outputRoot, workDirName, "ledger.db"))
	if err != nil {
		o.logger.Warn("placement ledger unavailable, reruns will re-copy", logging.Error(err))
		return ""
	}
	runID, err := store.BeginRun(ctx, o.inputRoot)
	if err != nil {
		o.logger.Warn("placement ledger unavailable, reruns will re-copy", logging.Error(err))
		_ = store.Close()
		return ""
	}
	o.store = store
	return runID
}

func (o *Orchestrator) closeLedger(ctx context.Context, runID string, placed int) {
	if o.store == nil {
		return
	}
	if err := o.store.CompleteRun(ctx, runID, placed); err != nil {
		o.logger.Warn("ledger completion failed", logging.Error(err))
	}
	_ = o.store.Close()
	o.store = nil
}

func (o *Orchestrator) progressFunc(total int) func() {
	if !o.cfg.Run.Progress || total == 0 {
		return func() {}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("placing files"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	var mu sync.Mutex
	return func() {
		mu.Lock()
		defer mu.Unlock()
		_ = bar.Add(1)
	}
}

func (o *Orchestrator) summarize(assets []*Asset, runID string, elapsed time.Duration) *Summary {
	counts := o.report.Counts()
	placed := 0
	for _, a := range assets {
		if a.DestPath != "" && !a.alreadyPlaced {
			placed++
		}
	}
	return &Summary{
		RunID:         runID,
		Scanned:       len(assets),
		Placed:        placed,
		Duplicates:    counts[report.DuplicateSkipped],
		AlreadyPlaced: counts[report.AlreadyPlaced],
		Warnings:      o.report.Warnings(),
		Counts:        counts,
		Events:        o.report.Snapshot(),
		Elapsed:       elapsed,
	}
}
