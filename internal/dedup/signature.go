package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"

	"github.com/dedupkit/deduper/internal/logger"
	"github.com/dedupkit/deduper/internal/progress"
)

// SignatureComputer hashes file contents in fixed-size blocks and regroups
// paths by the resulting signature.
type SignatureComputer struct {
	blockSize int64
	workers   int
	tracker   *progress.Tracker
}

// NewSignatureComputer creates a SignatureComputer. workers <= 1 computes
// signatures sequentially; larger values hash files on a bounded pool.
func NewSignatureComputer(blockSize int64, workers int, tracker *progress.Tracker) *SignatureComputer {
	if blockSize <= 0 {
		blockSize = 1024
	}
	return &SignatureComputer{
		blockSize: blockSize,
		workers:   workers,
		tracker:   tracker,
	}
}

// Compute hashes every candidate path and returns the paths regrouped by
// signature, pruned of singleton groups. partial hashes only the first
// block; a full pass hashes every block of the file. A read failure drops
// that file from consideration and is not fatal.
func (c *SignatureComputer) Compute(paths []string, partial bool) SignatureGroups {
	stage := progress.StageFull
	if partial {
		stage = progress.StagePartial
	}

	groups := make(SignatureGroups)
	for result := range c.results(paths, partial) {
		c.tracker.Step(stage, result.path)
		if result.err != nil {
			logger.Warn("skipping unreadable file", "path", result.path, "error", result.err)
			continue
		}
		groups[result.sig] = append(groups[result.sig], result.path)
	}

	return Prune(groups)
}

type sigResult struct {
	path string
	sig  Signature
	err  error
}

// results yields one sigResult per input path. With a single worker the
// order matches the input order; with a pool it does not, which is fine
// because grouping is order-insensitive.
func (c *SignatureComputer) results(paths []string, partial bool) <-chan sigResult {
	out := make(chan sigResult)

	if c.workers <= 1 {
		go func() {
			defer close(out)
			for _, path := range paths {
				sig, err := c.signature(path, partial)
				out <- sigResult{path: path, sig: sig, err: err}
			}
		}()
		return out
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				sig, err := c.signature(path, partial)
				out <- sigResult{path: path, sig: sig, err: err}
			}
		}()
	}

	go func() {
		for _, path := range paths {
			jobs <- path
		}
		close(jobs)
	}()

	// Join point: the stage is complete only once every worker has drained
	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// signature computes the content signature for a single file. The file
// handle is opened here and closed on every exit path.
func (c *SignatureComputer) signature(path string, partial bool) (Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signature{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Signature{}, err
	}
	size := info.Size()

	blocks := blockCount(size, c.blockSize)
	if partial && blocks > 1 {
		blocks = 1
	}

	h := sha256.New()
	buf := make([]byte, c.blockSize)
	for i := int64(0); i < blocks; i++ {
		n, err := io.ReadFull(f, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return Signature{}, err
		}
		h.Write(buf[:n])
		if n < len(buf) {
			break
		}
	}

	return Signature{Size: size, Digest: hex.EncodeToString(h.Sum(nil))}, nil
}

// blockCount is ceil(size / blockSize). An exact multiple of the block size
// still hashes every block; only the empty file hashes zero blocks.
func blockCount(size, blockSize int64) int64 {
	if size <= 0 {
		return 0
	}
	return (size + blockSize - 1) / blockSize
}
