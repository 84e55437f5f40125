package dedup

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedupkit/deduper/internal/progress"
	"github.com/dedupkit/deduper/internal/testutil"
)

// buildScenario creates the canonical tree: two identical 100-byte files,
// one 100-byte file with different content, one 50-byte file.
func buildScenario(t *testing.T) *testutil.Fixture {
	f := testutil.NewFixture(t)
	f.WriteFile("f1", []byte(strings.Repeat("A", 100)))
	f.WriteFile("f2", []byte(strings.Repeat("A", 100)))
	f.WriteFile("f3", []byte(strings.Repeat("B", 100)))
	f.WriteFile("f4", []byte(strings.Repeat("C", 50)))
	return f
}

func TestFindDuplicatesDryRun(t *testing.T) {
	f := buildScenario(t)

	deduper := New(Options{BlockSize: 1024, DryRun: true})
	report, err := deduper.FindDuplicates(f.Root, NopStrategy{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.DuplicateFileCount)
	assert.Equal(t, int64(100), report.DuplicateByteCount)
	assert.Equal(t, 0, report.FilesRemoved)
	assert.Equal(t, int64(0), report.BytesFreed)
	assert.Empty(t, report.RemovalFailures)

	require.Len(t, report.Groups, 1)
	for _, paths := range report.Groups {
		assert.ElementsMatch(t, []string{f.Path("f1"), f.Path("f2")}, paths)
	}

	// Nothing was touched
	for _, name := range []string{"f1", "f2", "f3", "f4"} {
		assert.True(t, f.Exists(name))
	}
}

func TestFindDuplicatesDryRunIdempotent(t *testing.T) {
	f := buildScenario(t)

	deduper := New(Options{BlockSize: 1024, DryRun: true})
	first, err := deduper.FindDuplicates(f.Root, KeepFirstStrategy{})
	require.NoError(t, err)
	second, err := deduper.FindDuplicates(f.Root, KeepFirstStrategy{})
	require.NoError(t, err)

	assert.Equal(t, first.DuplicateFileCount, second.DuplicateFileCount)
	assert.Equal(t, first.DuplicateByteCount, second.DuplicateByteCount)
	assert.Equal(t, first.FilesRemoved, second.FilesRemoved)
	assert.Equal(t, first.BytesFreed, second.BytesFreed)

	// Dry-run simulates removal in the statistics
	assert.Equal(t, 1, first.FilesRemoved)
	assert.Equal(t, int64(100), first.BytesFreed)

	for _, name := range []string{"f1", "f2", "f3", "f4"} {
		assert.True(t, f.Exists(name), "dry run must not mutate the tree")
	}
}

func TestFindDuplicatesKeepFirstRemoves(t *testing.T) {
	f := buildScenario(t)

	deduper := New(Options{BlockSize: 1024, DryRun: false, Verify: true})
	report, err := deduper.FindDuplicates(f.Root, KeepFirstStrategy{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.DuplicateFileCount)
	assert.Equal(t, int64(100), report.DuplicateByteCount)
	assert.Equal(t, 1, report.FilesRemoved)
	assert.Equal(t, int64(100), report.BytesFreed)
	assert.Empty(t, report.RemovalFailures)

	// Exactly one of f1/f2 survives; keep-first keeps f1
	assert.True(t, f.Exists("f1"))
	assert.False(t, f.Exists("f2"))
	assert.True(t, f.Exists("f3"))
	assert.True(t, f.Exists("f4"))
}

func TestFindDuplicatesNopNeverDeletes(t *testing.T) {
	f := buildScenario(t)

	// Even with dry-run off, nop removes nothing
	deduper := New(Options{BlockSize: 1024, DryRun: false})
	report, err := deduper.FindDuplicates(f.Root, NopStrategy{})
	require.NoError(t, err)

	assert.Equal(t, 0, report.FilesRemoved)
	assert.Equal(t, int64(0), report.BytesFreed)
	for _, name := range []string{"f1", "f2", "f3", "f4"} {
		assert.True(t, f.Exists(name))
	}
}

func TestFindDuplicatesCopyAwareTree(t *testing.T) {
	f := testutil.NewFixture(t)
	f.WriteString("dir/a.txt", "copied content")
	f.WriteString("dir/Copy of a.txt", "copied content")

	deduper := New(Options{BlockSize: 1024, DryRun: false})
	report, err := deduper.FindDuplicates(f.Root, KeepFirstStrategy{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesRemoved)
	assert.True(t, f.Exists("dir/a.txt"))
	assert.False(t, f.Exists("dir/Copy of a.txt"))
}

func TestFindDuplicatesRemovalFailureDoesNotAbortSiblings(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not restrict root")
	}

	// Two duplicate groups: one whose doomed copy sits in a directory we
	// cannot unlink from, one freely removable.
	f := testutil.NewFixture(t)
	f.WriteString("locked/a.txt", "locked content")
	f.WriteString("locked/Copy of a.txt", "locked content")
	f.WriteString("open/b.txt", "open content!")
	f.WriteString("open/Copy of b.txt", "open content!")

	lockedDir := f.Path("locked")
	require.NoError(t, os.Chmod(lockedDir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(lockedDir, 0o755) })

	deduper := New(Options{BlockSize: 1024, DryRun: false})
	report, err := deduper.FindDuplicates(f.Root, KeepFirstStrategy{})
	require.NoError(t, err, "a failed removal must not abort the run")

	// The open group's copy was still removed
	assert.Equal(t, 1, report.FilesRemoved)
	assert.Equal(t, int64(13), report.BytesFreed)
	assert.True(t, f.Exists("open/b.txt"))
	assert.False(t, f.Exists("open/Copy of b.txt"))

	// The locked group's failure is recorded, categorized, and harmless
	require.Len(t, report.RemovalFailures, 1)
	failure := report.RemovalFailures[0]
	assert.Equal(t, f.Path("locked/Copy of a.txt"), failure.Path)
	assert.Equal(t, RemovalPermissionDenied, failure.Reason)
	assert.True(t, f.Exists("locked/a.txt"))
	assert.True(t, f.Exists("locked/Copy of a.txt"))

	// Wastage counts are unaffected by removal outcomes
	assert.Equal(t, 2, report.DuplicateFileCount)
	assert.Equal(t, int64(27), report.DuplicateByteCount)
}

func TestFindDuplicatesEmptyTree(t *testing.T) {
	f := testutil.NewFixture(t)

	report, err := New(Options{BlockSize: 1024, DryRun: true}).FindDuplicates(f.Root, NopStrategy{})
	require.NoError(t, err)

	assert.Zero(t, report.DuplicateFileCount)
	assert.Zero(t, report.DuplicateByteCount)
	assert.Empty(t, report.Groups)
}

func TestFindDuplicatesLargeExactMultipleFiles(t *testing.T) {
	// Same size, same first block, different later blocks, size an exact
	// multiple of the block size: only a full hash of every block tells
	// these apart.
	f := testutil.NewFixture(t)
	head := strings.Repeat("H", 1024)
	f.WriteString("one.bin", head+strings.Repeat("1", 1024))
	f.WriteString("two.bin", head+strings.Repeat("2", 1024))

	report, err := New(Options{BlockSize: 1024, DryRun: true}).FindDuplicates(f.Root, NopStrategy{})
	require.NoError(t, err)

	assert.Zero(t, report.DuplicateFileCount, "distinct files must not be declared duplicates")
	assert.Empty(t, report.Groups)
}

func TestFindDuplicatesParallelSignatures(t *testing.T) {
	f := buildScenario(t)

	deduper := New(Options{BlockSize: 1024, Workers: 4, DryRun: true})
	report, err := deduper.FindDuplicates(f.Root, NopStrategy{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.DuplicateFileCount)
	assert.Equal(t, int64(100), report.DuplicateByteCount)
}

func TestFindDuplicatesProgressTicks(t *testing.T) {
	f := buildScenario(t)

	tracker := progress.NewTracker()
	deduper := New(Options{BlockSize: 1024, DryRun: true})
	deduper.SetTracker(tracker)

	_, err := deduper.FindDuplicates(f.Root, NopStrategy{})
	require.NoError(t, err)

	assert.Equal(t, 4, tracker.Count(progress.StageScan))
	// f1, f2, f3 share a size; all three get partial signatures
	assert.Equal(t, 3, tracker.Count(progress.StagePartial))
	// Only f1 and f2 survive the partial pass
	assert.Equal(t, 2, tracker.Count(progress.StageFull))
}
