package dedup

import (
	"io/fs"
	"path/filepath"

	"github.com/dedupkit/deduper/internal/logger"
	"github.com/dedupkit/deduper/internal/progress"
)

// Scanner walks a directory tree and buckets regular files by size
type Scanner struct {
	minSize  int64
	excludes []string
	tracker  *progress.Tracker
}

// NewScanner creates a Scanner. minSize files smaller than minSize are
// ignored; excludes are glob patterns matched against base names.
func NewScanner(minSize int64, excludes []string, tracker *progress.Tracker) *Scanner {
	return &Scanner{
		minSize:  minSize,
		excludes: excludes,
		tracker:  tracker,
	}
}

// Scan walks the subtree rooted at root and returns paths grouped by file
// size, pruned of singleton groups. A stat failure on one entry skips that
// entry; only a failure to walk the root itself is returned as an error.
func (s *Scanner) Scan(root string) (SizeGroups, error) {
	groups := make(SizeGroups)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}

		if d.IsDir() {
			if path != root && s.excluded(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		// Symlinks, devices and the like never count as duplicates
		if !d.Type().IsRegular() {
			return nil
		}

		if s.excluded(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("skipping file with unreadable metadata", "path", path, "error", err)
			return nil
		}

		if info.Size() < s.minSize {
			return nil
		}

		s.tracker.Step(progress.StageScan, path)

		groups[info.Size()] = append(groups[info.Size()], path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Prune(groups), nil
}

func (s *Scanner) excluded(name string) bool {
	for _, pattern := range s.excludes {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
