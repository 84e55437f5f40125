// Package security guards the deletion target: the root directory must
// exist, be a directory, and sit deep enough in the tree that a mistyped
// path cannot wipe out a home directory or a filesystem root.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafeRoot is returned for roots shallower than the configured depth
var ErrUnsafeRoot = errors.New("root directory failed safety check")

// Depth counts the path components of a cleaned absolute path.
// "/" has depth 0, "/home/user/photos" has depth 3.
func Depth(path string) int {
	cleaned := strings.Trim(filepath.Clean(path), string(filepath.Separator))
	if cleaned == "" {
		return 0
	}
	return len(strings.Split(cleaned, string(filepath.Separator)))
}

// ValidateRoot checks that root exists, is a directory, and is at least
// minDepth components deep. force skips the depth check but never the
// existence check. Runs are rejected here before any scanning begins.
func ValidateRoot(root string, minDepth int, force bool) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}

	if !force && Depth(root) < minDepth {
		return fmt.Errorf("%w: %s is only %d levels deep (need %d; use --force to override)",
			ErrUnsafeRoot, root, Depth(root), minDepth)
	}

	return nil
}
