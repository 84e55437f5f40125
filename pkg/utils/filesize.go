package utils

import (
	"fmt"
	"strings"
)

const (
	B   = 1
	KiB = 1024 * B
	MiB = 1024 * KiB
	GiB = 1024 * MiB
	TiB = 1024 * GiB
)

// FormatBytes converts a byte count to a human-readable string
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "0 bytes"
	}

	switch {
	case bytes >= TiB:
		return fmt.Sprintf("%.1f TiB", float64(bytes)/float64(TiB))
	case bytes >= GiB:
		return fmt.Sprintf("%.1f GiB", float64(bytes)/float64(GiB))
	case bytes >= MiB:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/float64(MiB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// ParseSize converts a human-readable size like "4KB" or "1.5MiB" to bytes.
// A bare number is taken as bytes.
func ParseSize(size string) (int64, error) {
	s := strings.TrimSpace(size)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	var value float64
	var unit string
	if _, err := fmt.Sscanf(s, "%f%s", &value, &unit); err != nil {
		if _, err := fmt.Sscanf(s, "%f", &value); err != nil {
			return 0, fmt.Errorf("invalid size format: %q", size)
		}
		if value < 0 {
			return 0, fmt.Errorf("size must not be negative: %q", size)
		}
		return int64(value), nil
	}

	if value < 0 {
		return 0, fmt.Errorf("size must not be negative: %q", size)
	}

	switch strings.ToUpper(unit) {
	case "B":
		return int64(value), nil
	case "K", "KB", "KIB":
		return int64(value * KiB), nil
	case "M", "MB", "MIB":
		return int64(value * MiB), nil
	case "G", "GB", "GIB":
		return int64(value * GiB), nil
	case "T", "TB", "TIB":
		return int64(value * TiB), nil
	default:
		return 0, fmt.Errorf("unknown unit: %q", unit)
	}
}
