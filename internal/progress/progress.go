// Package progress provides a thread-safe sink for per-file progress ticks
// emitted by the dedup pipeline. The sink is purely cosmetic: the pipeline
// pushes updates and never blocks on slow consumers.
package progress

import "sync"

// Stage identifies the pipeline stage an update belongs to
type Stage string

const (
	StageScan    Stage = "scan"
	StagePartial Stage = "partial-signature"
	StageFull    Stage = "full-signature"
	StageVerify  Stage = "verify"
	StageRemove  Stage = "remove"
)

// Update is a single progress tick
type Update struct {
	Stage Stage
	Path  string
	Count int // files processed in this stage so far
}

// Tracker fans progress updates out to subscribers. A nil Tracker is a
// valid no-op sink, so the pipeline can tick unconditionally.
type Tracker struct {
	mu        sync.Mutex
	counts    map[Stage]int
	listeners []chan Update
	closed    bool
}

// NewTracker creates a new Tracker
func NewTracker() *Tracker {
	return &Tracker{
		counts: make(map[Stage]int),
	}
}

// Subscribe returns a channel that receives progress updates. The channel
// is closed when the tracker is closed.
func (t *Tracker) Subscribe() <-chan Update {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan Update, 64)
	if t.closed {
		close(ch)
		return ch
	}
	t.listeners = append(t.listeners, ch)
	return ch
}

// Step records one processed file and notifies listeners without blocking.
func (t *Tracker) Step(stage Stage, path string) {
	if t == nil {
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.counts[stage]++
	update := Update{Stage: stage, Path: path, Count: t.counts[stage]}
	listeners := make([]chan Update, len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	for _, listener := range listeners {
		select {
		case listener <- update:
		default:
			// Slow consumer, drop the tick
		}
	}
}

// Count returns the number of ticks recorded for a stage.
func (t *Tracker) Count(stage Stage) int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[stage]
}

// Close closes all listener channels. Further Steps are ignored.
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for _, listener := range t.listeners {
		close(listener)
	}
	t.listeners = nil
}
