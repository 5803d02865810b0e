//go:build linux || darwin || freebsd

package timekeeping

import "golang.org/x/sys/unix"

// Monotonic reads CLOCK_MONOTONIC.
func Monotonic() (int64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0, err
	}
	return ts.Nano(), nil
}
