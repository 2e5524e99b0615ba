package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that replaces the computed count.
const EnvOverride = "SCAN_WORKERS"

// DefaultScanLimit caps the number of libraries scanned at once.
const DefaultScanLimit = 16

// Count returns multiplier workers per available CPU, at least one, capped
// at limit. Use 0 for no limit.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(EnvOverride); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	// GOMAXPROCS follows the container CPU limit
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForIO returns the worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}
