package scheduler

import "time"

// Host is the macrotask primitive the scheduler yields to between slices.
// All methods are called from the goroutine that owns the scheduler,
// and callbacks must be delivered back on that same goroutine.
type Host interface {
	// Now is the monotonic time elapsed since the host started.
	Now() time.Duration
	// RequestCallback runs cb on a later macrotask turn.
	RequestCallback(cb func())
	// RequestTimeout runs cb once after d. At most one timeout is pending.
	RequestTimeout(cb func(), d time.Duration)
	CancelTimeout()
}
