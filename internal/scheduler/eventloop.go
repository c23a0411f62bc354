package scheduler

import (
	"time"

	"github.com/joeycumines/go-eventloop"

	"github.com/AnatoleLucet/fiber/internal/logging"
)

// LoopHost runs scheduler turns as macrotasks of an event loop.
// Callbacks are delivered on the loop goroutine, so the scheduler and
// everything it drives must only be touched from inside loop tasks.
type LoopHost struct {
	js     *eventloop.JS
	logger *logging.Logger
	start  time.Time

	timeoutID  uint64
	hasTimeout bool
}

func NewLoopHost(loop *eventloop.Loop, logger *logging.Logger) (*LoopHost, error) {
	js, err := eventloop.NewJS(loop)
	if err != nil {
		return nil, err
	}

	return &LoopHost{
		js:     js,
		logger: logger,
		start:  time.Now(),
	}, nil
}

func (h *LoopHost) Now() time.Duration {
	return time.Since(h.start)
}

func (h *LoopHost) RequestCallback(cb func()) {
	if _, err := h.js.SetImmediate(cb); err != nil {
		h.logger.Err().Err(err).Log("failed to request host callback")
	}
}

func (h *LoopHost) RequestTimeout(cb func(), d time.Duration) {
	h.CancelTimeout()

	ms := int(d / time.Millisecond)
	if d%time.Millisecond != 0 {
		ms++
	}

	id, err := h.js.SetTimeout(func() {
		h.hasTimeout = false
		cb()
	}, ms)
	if err != nil {
		h.logger.Err().Err(err).Dur("delay", d).Log("failed to request host timeout")
		return
	}

	h.timeoutID = id
	h.hasTimeout = true
}

func (h *LoopHost) CancelTimeout() {
	if !h.hasTimeout {
		return
	}
	h.hasTimeout = false
	_ = h.js.ClearTimeout(h.timeoutID)
}
