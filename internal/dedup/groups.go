// Package dedup implements the duplicate-detection pipeline: a size scan
// followed by partial and full content-signature passes, each producing a
// fresh mapping from candidate groups to member paths, and a retention
// strategy that decides which member of each final group survives.
package dedup

import "fmt"

// Signature is the grouping key for the content passes: file size plus a
// hex digest. Two files are treated as byte-identical when their full
// signatures match.
type Signature struct {
	Size   int64
	Digest string
}

// String renders the signature in its canonical "{size}:{hexdigest}" form
func (s Signature) String() string {
	return fmt.Sprintf("%d:%s", s.Size, s.Digest)
}

// SizeGroups maps file size to the paths of that size
type SizeGroups = map[int64][]string

// SignatureGroups maps content signature to the paths bearing it
type SignatureGroups = map[Signature][]string

// Prune returns a new mapping retaining only groups with at least two
// members. Singleton groups cannot contain duplicates.
func Prune[K comparable](groups map[K][]string) map[K][]string {
	pruned := make(map[K][]string, len(groups))
	for key, paths := range groups {
		if len(paths) > 1 {
			pruned[key] = paths
		}
	}
	return pruned
}

// FileCount returns the total number of paths across all groups
func FileCount[K comparable](groups map[K][]string) int {
	count := 0
	for _, paths := range groups {
		count += len(paths)
	}
	return count
}

// Flatten collects every path from every group. Group order is map
// iteration order; member order within a group is preserved.
func Flatten[K comparable](groups map[K][]string) []string {
	paths := make([]string, 0, FileCount(groups))
	for _, group := range groups {
		paths = append(paths, group...)
	}
	return paths
}
