// Package testutils provides fakes shared by package tests.
package testutils

import (
	"sync"
	"time"

	"github.com/ahrav/go-geomean/internal/ports"
)

var _ ports.Timer = (*FakeTimer)(nil)

// FakeTimer is a deterministic ports.Timer. Now always returns the same
// epoch and each Elapsed call returns the next pre-programmed duration,
// repeating the last one once the list is exhausted.
type FakeTimer struct {
	mu        sync.Mutex
	epoch     time.Time
	durations []time.Duration
	calls     int
}

// NewFakeTimer creates a FakeTimer that reports durations in order.
// With no durations every Elapsed call returns zero.
func NewFakeTimer(durations ...time.Duration) *FakeTimer {
	return &FakeTimer{
		epoch:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		durations: durations,
	}
}

// Now returns the fixed epoch.
func (f *FakeTimer) Now() time.Time { return f.epoch }

// Elapsed returns the next programmed duration.
func (f *FakeTimer) Elapsed(time.Time) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.durations) == 0 {
		return 0
	}
	d := f.durations[min(f.calls, len(f.durations)-1)]
	f.calls++
	return d
}

// Calls returns how many times Elapsed has been called.
func (f *FakeTimer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
