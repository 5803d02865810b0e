//go:build !(linux || darwin || freebsd)

package timekeeping

import "time"

var processStart = time.Now()

// Monotonic reads the Go runtime monotonic clock relative to process start.
func Monotonic() (int64, error) {
	return int64(time.Since(processStart)) + 1, nil
}
