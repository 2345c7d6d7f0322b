// Package timer provides the wall-clock implementation of ports.Timer.
package timer

import (
	"time"

	"github.com/ahrav/go-geomean/internal/ports"
)

var _ ports.Timer = System{}

// System measures elapsed time with the monotonic clock reading carried by
// time.Now, so wall-clock adjustments never produce negative durations.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

// Elapsed returns time.Since(start).
func (System) Elapsed(start time.Time) time.Duration { return time.Since(start) }
