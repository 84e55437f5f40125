package dedup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dedupkit/deduper/internal/progress"
)

// ErrVerificationFailed indicates that two files sharing a full signature
// were not byte-identical. That can only mean a hash collision or a defect
// in the grouping pipeline, so the whole run aborts.
var ErrVerificationFailed = errors.New("duplicate verification failed")

// Wastage summarizes the redundant files across all duplicate groups
type Wastage struct {
	DuplicateFiles int
	DuplicateBytes int64
}

// ComputeWastage derives duplicate file and byte counts from the final
// groups. With verify set, every member of every group is byte-compared
// against the group's first member; any mismatch is fatal.
func ComputeWastage(groups SignatureGroups, verify bool, tracker *progress.Tracker) (Wastage, error) {
	var w Wastage
	for sig, paths := range groups {
		w.DuplicateFiles += len(paths) - 1
		w.DuplicateBytes += sig.Size * int64(len(paths)-1)
	}

	if !verify {
		return w, nil
	}

	for _, paths := range groups {
		first := paths[0]
		for _, path := range paths[1:] {
			tracker.Step(progress.StageVerify, path)
			equal, err := compareFiles(first, path)
			if err != nil {
				return Wastage{}, fmt.Errorf("verifying %s against %s: %w", path, first, err)
			}
			if !equal {
				return Wastage{}, fmt.Errorf("%w: %s vs %s", ErrVerificationFailed, first, path)
			}
		}
	}

	return w, nil
}

// compareFiles reports whether two files have identical contents, reading
// both in fixed-size chunks.
func compareFiles(a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufA := make([]byte, 64*1024)
	bufB := make([]byte, 64*1024)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}

		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		switch {
		case errA != nil && !doneA:
			return false, errA
		case errB != nil && !doneB:
			return false, errB
		case doneA && doneB:
			return true, nil
		case doneA != doneB:
			return false, nil
		}
	}
}
