// Package timekeeping converts between the backend's native monotonic clock
// and the runtime timestamp domain handed to applications.
package timekeeping

import (
	"errors"
	"sync/atomic"
)

// Source returns the native monotonic time in nanoseconds.
type Source func() (int64, error)

// State anchors runtime timestamps to the native clock at creation.
//
// Runtime timestamps are native time minus offset. The offset is chosen so the
// first runtime timestamp is one nanosecond, keeping every later timestamp
// strictly positive.
type State struct {
	source Source
	offset int64
	now    atomic.Int64
}

// New creates a State reading from the platform monotonic clock.
func New() (*State, error) {
	return NewWithSource(Monotonic)
}

// NewWithSource creates a State reading from source.
func NewWithSource(source Source) (*State, error) {
	if source == nil {
		return nil, errors.New("time source is required")
	}
	native, err := source()
	if err != nil {
		return nil, err
	}
	s := &State{source: source, offset: native - 1}
	s.now.Store(1)
	return s, nil
}

// GetNowAndUpdate samples the native clock, records it and returns the runtime timestamp.
// Only the frame pacing path advances the clock.
func (s *State) GetNowAndUpdate() (int64, error) {
	native, err := s.source()
	if err != nil {
		return 0, err
	}
	ts := s.MonotonicToTimestamp(native)
	s.now.Store(ts)
	return ts, nil
}

// Now returns the runtime timestamp recorded by the last update.
func (s *State) Now() int64 {
	return s.now.Load()
}

// MonotonicToTimestamp converts native nanoseconds to a runtime timestamp.
func (s *State) MonotonicToTimestamp(native int64) int64 {
	return native - s.offset
}

// TimestampToMonotonic converts a runtime timestamp to native nanoseconds.
func (s *State) TimestampToMonotonic(ts int64) int64 {
	return ts + s.offset
}

// NanosecondsToSeconds converts a nanosecond interval to seconds.
func NanosecondsToSeconds(ns int64) float64 {
	return float64(ns) / 1e9
}
