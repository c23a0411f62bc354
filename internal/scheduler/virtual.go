package scheduler

import "time"

// VirtualHost is a deterministic Host driven by hand.
// Time only moves through Advance, callbacks only run through RunNext and Flush.
type VirtualHost struct {
	now time.Duration

	callbacks []func()

	timeout   func()
	timeoutAt time.Duration
}

func NewVirtualHost() *VirtualHost {
	return &VirtualHost{}
}

func (h *VirtualHost) Now() time.Duration { return h.now }

func (h *VirtualHost) RequestCallback(cb func()) {
	h.callbacks = append(h.callbacks, cb)
}

func (h *VirtualHost) RequestTimeout(cb func(), d time.Duration) {
	h.timeout = cb
	h.timeoutAt = h.now + d
}

func (h *VirtualHost) CancelTimeout() {
	h.timeout = nil
}

// Advance moves the clock forward, firing the pending timeout if it became due.
func (h *VirtualHost) Advance(d time.Duration) {
	h.now += d
	h.fireTimeout()
}

// HasPendingWork reports whether a callback or a timeout is waiting.
func (h *VirtualHost) HasPendingWork() bool {
	return len(h.callbacks) > 0 || h.timeout != nil
}

// RunNext runs the oldest pending callback.
func (h *VirtualHost) RunNext() bool {
	if len(h.callbacks) == 0 {
		return false
	}
	cb := h.callbacks[0]
	h.callbacks = h.callbacks[1:]
	cb()
	return true
}

// Flush runs callbacks until none are pending, without moving the clock.
func (h *VirtualHost) Flush() {
	for h.RunNext() {
	}
}

// FlushAll runs callbacks and jumps the clock to each pending timeout until idle.
func (h *VirtualHost) FlushAll() {
	for {
		h.Flush()
		if h.timeout == nil {
			return
		}
		if h.timeoutAt > h.now {
			h.now = h.timeoutAt
		}
		h.fireTimeout()
	}
}

func (h *VirtualHost) fireTimeout() {
	if h.timeout == nil || h.timeoutAt > h.now {
		return
	}
	cb := h.timeout
	h.timeout = nil
	cb()
}
