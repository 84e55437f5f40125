package dedup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dedupkit/deduper/internal/logger"
	"github.com/dedupkit/deduper/internal/progress"
	"github.com/dedupkit/deduper/pkg/utils"
)

// Options configures a Deduper run
type Options struct {
	BlockSize int64    // hash block size; 0 falls back to 1024
	MinSize   int64    // files smaller than this are ignored
	Excludes  []string // base-name glob patterns to skip
	Workers   int      // signature workers; <= 1 is sequential
	DryRun    bool     // simulate removals, never touch the filesystem
	Verify    bool     // byte-compare every final group
}

// Report aggregates the outcome of a run
type Report struct {
	DuplicateFileCount int
	DuplicateByteCount int64
	FilesRemoved       int
	BytesFreed         int64
	RemovalFailures    []*RemovalError

	// Groups holds the duplicate groups that survived the full pass, for
	// rendering by the reporter.
	Groups SignatureGroups
}

// Deduper sequences the pipeline: scan, prune, partial pass, full pass,
// wastage, then per-group retention and removal.
type Deduper struct {
	opts    Options
	tracker *progress.Tracker
}

// New creates a Deduper
func New(opts Options) *Deduper {
	return &Deduper{opts: opts}
}

// SetTracker attaches a progress sink. A nil tracker disables ticks.
func (d *Deduper) SetTracker(tracker *progress.Tracker) {
	d.tracker = tracker
}

// FindDuplicates runs the full pipeline under root and applies strategy to
// every surviving group. The caller has already validated root and the
// strategy name; errors returned here are fatal pipeline failures.
func (d *Deduper) FindDuplicates(root string, strategy RetentionStrategy) (*Report, error) {
	sizeGroups, err := NewScanner(d.opts.MinSize, d.opts.Excludes, d.tracker).Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	logger.Info("size scan complete", "candidates", FileCount(sizeGroups), "groups", len(sizeGroups))
	dumpSizeGroups(root, sizeGroups)

	computer := NewSignatureComputer(d.opts.BlockSize, d.opts.Workers, d.tracker)

	partial := computer.Compute(Flatten(sizeGroups), true)
	logger.Info("partial signature pass complete", "candidates", FileCount(partial), "groups", len(partial))
	dumpSignatureGroups(root, partial)

	full := computer.Compute(Flatten(partial), false)
	logger.Info("full signature pass complete", "candidates", FileCount(full), "groups", len(full))
	dumpSignatureGroups(root, full)

	wastage, err := ComputeWastage(full, d.opts.Verify, d.tracker)
	if err != nil {
		return nil, err
	}
	logger.Info("duplicates found",
		"files", wastage.DuplicateFiles,
		"bytes", utils.FormatBytes(wastage.DuplicateBytes))

	report := &Report{
		DuplicateFileCount: wastage.DuplicateFiles,
		DuplicateByteCount: wastage.DuplicateBytes,
		Groups:             full,
	}

	for sig, paths := range full {
		decision, err := strategy.Apply(paths)
		if err != nil {
			return nil, fmt.Errorf("strategy %q on group %s: %w", strategy.Name(), sig, err)
		}

		if logger.DebugEnabled() {
			logger.Debug("retention decision",
				"strategy", strategy.Name(),
				"group", sig.String(),
				"keep", strings.Join(decision.Keep, ", "),
				"remove", strings.Join(decision.Remove, ", "))
		}

		for _, path := range decision.Remove {
			d.tracker.Step(progress.StageRemove, path)
			if d.opts.DryRun {
				logger.Debug("would remove", "path", path)
				report.FilesRemoved++
				report.BytesFreed += sig.Size
				continue
			}

			logger.Debug("removing", "path", path)
			if err := os.Remove(path); err != nil {
				failure := categorizeRemoval(path, err)
				logger.Warn("removal failed", "path", path, "reason", failure.Reason.String(), "error", err)
				report.RemovalFailures = append(report.RemovalFailures, failure)
				continue
			}
			report.FilesRemoved++
			report.BytesFreed += sig.Size
		}
	}

	logger.Info("retention applied",
		"strategy", strategy.Name(),
		"removed", report.FilesRemoved,
		"freed", utils.FormatBytes(report.BytesFreed),
		"failures", len(report.RemovalFailures),
		"dry_run", d.opts.DryRun)

	return report, nil
}

// dumpSizeGroups logs group contents at debug level. Building the dump is
// expensive, so it is skipped unless debug logging is on.
func dumpSizeGroups(root string, groups SizeGroups) {
	if !logger.DebugEnabled() {
		return
	}
	for size, paths := range groups {
		logger.Debug("size group", "size", size, "files", prettyPaths(root, paths))
	}
}

func dumpSignatureGroups(root string, groups SignatureGroups) {
	if !logger.DebugEnabled() {
		return
	}
	for sig, paths := range groups {
		logger.Debug("signature group", "signature", sig.String(), "files", prettyPaths(root, paths))
	}
}

func prettyPaths(root string, paths []string) string {
	if len(paths) == 0 {
		return "(empty)"
	}
	rel := make([]string, len(paths))
	for i, path := range paths {
		if r, err := filepath.Rel(root, path); err == nil {
			rel[i] = r
		} else {
			rel[i] = path
		}
	}
	return strings.Join(rel, ", ")
}
