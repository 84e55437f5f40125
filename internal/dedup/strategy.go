package dedup

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultCopyPrefix is the file-name marker that identifies a file as a
// copy of another in the same directory.
const DefaultCopyPrefix = "Copy of "

var (
	// ErrUnknownStrategy is returned when a strategy name has no variant
	ErrUnknownStrategy = errors.New("unknown retention strategy")

	// ErrAmbiguousOrder indicates two group members in the same directory
	// with indistinguishable names. A filesystem cannot hold two entries
	// with the same name, so this means the grouping invariant is broken.
	ErrAmbiguousOrder = errors.New("ambiguous retention order")
)

// RetentionDecision partitions one duplicate group into the single path to
// keep and the paths to remove.
type RetentionDecision struct {
	Keep   []string
	Remove []string
}

// RetentionStrategy decides, per duplicate group, which file survives
type RetentionStrategy interface {
	// Name is the stable identifier used for external selection
	Name() string

	// Apply partitions the group's paths into keep and remove sets
	Apply(paths []string) (RetentionDecision, error)
}

// NopStrategy keeps every path and removes nothing. It is the inspection
// strategy: no deletion happens regardless of the dry-run flag.
type NopStrategy struct{}

func (NopStrategy) Name() string { return "nop" }

func (NopStrategy) Apply(paths []string) (RetentionDecision, error) {
	return RetentionDecision{Keep: paths}, nil
}

// KeepFirstStrategy keeps the first path in copy-aware order: paths sort
// by directory, then by base name with the copy marker stripped, with a
// marked copy always ordering after its original.
type KeepFirstStrategy struct {
	CopyPrefix string
}

func (KeepFirstStrategy) Name() string { return "keep-first" }

// retentionKey is the derived sort key that makes the copy-aware order
// total: directory first, then the copy-normalized name, then the copy
// flag so "Copy of x" lands after "x".
type retentionKey struct {
	dir    string
	base   string
	isCopy bool
}

func (s KeepFirstStrategy) key(path string) retentionKey {
	prefix := s.CopyPrefix
	if prefix == "" {
		prefix = DefaultCopyPrefix
	}

	name := filepath.Base(path)
	base, isCopy := strings.CutPrefix(name, prefix)
	return retentionKey{
		dir:    filepath.Dir(path),
		base:   base,
		isCopy: isCopy,
	}
}

func (s KeepFirstStrategy) Apply(paths []string) (RetentionDecision, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)

	keys := make(map[string]retentionKey, len(sorted))
	for _, path := range sorted {
		keys[path] = s.key(path)
	}

	sort.Slice(sorted, func(i, j int) bool {
		a, b := keys[sorted[i]], keys[sorted[j]]
		if a.dir != b.dir {
			return a.dir < b.dir
		}
		if a.base != b.base {
			return a.base < b.base
		}
		return !a.isCopy && b.isCopy
	})

	// Equal keys would mean two identical names in one directory
	for i := 1; i < len(sorted); i++ {
		if keys[sorted[i]] == keys[sorted[i-1]] {
			return RetentionDecision{}, fmt.Errorf("%w: %s vs %s", ErrAmbiguousOrder, sorted[i-1], sorted[i])
		}
	}

	return RetentionDecision{
		Keep:   sorted[:1],
		Remove: sorted[1:],
	}, nil
}

// strategies is the closed set of retention variants, resolved by name.
var strategies = map[string]func(copyPrefix string) RetentionStrategy{
	"nop":        func(string) RetentionStrategy { return NopStrategy{} },
	"keep-first": func(prefix string) RetentionStrategy { return KeepFirstStrategy{CopyPrefix: prefix} },
}

// StrategyByName resolves a retention strategy from its stable name.
// copyPrefix configures the copy marker for strategies that use one.
func StrategyByName(name, copyPrefix string) (RetentionStrategy, error) {
	construct, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (must be one of %s)", ErrUnknownStrategy, name, strings.Join(StrategyNames(), ", "))
	}
	return construct(copyPrefix), nil
}

// StrategyNames returns the known strategy names, sorted
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
