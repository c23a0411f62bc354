package fiber

import (
	"fmt"

	"github.com/AnatoleLucet/fiber/host"
	"github.com/AnatoleLucet/fiber/host/memory"
	"github.com/AnatoleLucet/fiber/internal/logging"
	"github.com/AnatoleLucet/fiber/internal/reconciler"
	"github.com/AnatoleLucet/fiber/internal/scheduler"
)

type Priority = scheduler.Priority

const (
	ImmediatePriority    = scheduler.ImmediatePriority
	UserBlockingPriority = scheduler.UserBlockingPriority
	NormalPriority       = scheduler.NormalPriority
	LowPriority          = scheduler.LowPriority
	IdlePriority         = scheduler.IdlePriority
)

// Runtime renders roots onto one host renderer. It is not safe for concurrent
// use: it belongs to the goroutine (or event loop) that drives it.
type Runtime struct {
	reconciler *reconciler.Runtime
	scheduler  *scheduler.Scheduler
	// nil when an external host drives the scheduler
	virtual *scheduler.VirtualHost
	logger  *logging.Logger
}

// NewRuntime creates a runtime. Without WithHost or WithEventLoop it runs on
// a virtual clock and concurrent work only happens inside Flush.
func NewRuntime(opts ...Option) (*Runtime, error) {
	cfg := resolveOptions(opts)

	h := cfg.host
	if cfg.loop != nil {
		lh, err := scheduler.NewLoopHost(cfg.loop, cfg.logger)
		if err != nil {
			return nil, fmt.Errorf("fiber: event loop host: %w", err)
		}
		h = lh
	}

	r := &Runtime{logger: cfg.logger}
	if h == nil {
		r.virtual = scheduler.NewVirtualHost()
		h = r.virtual
	}

	r.scheduler = scheduler.New(h,
		scheduler.WithYieldInterval(cfg.yieldInterval),
		scheduler.WithLogger(cfg.logger),
	)

	renderer := cfg.renderer
	if renderer == nil {
		renderer = memory.New()
	}
	r.reconciler = reconciler.New(renderer, r.scheduler, cfg.logger)

	return r, nil
}

func (r *Runtime) Renderer() host.Renderer {
	return r.reconciler.Renderer()
}

// NewRoot creates a root of this runtime rendering into container.
func (r *Runtime) NewRoot(container host.Instance, opts ...RootOption) *Root {
	return NewRoot(container, append(opts, WithRuntime(r))...)
}

// Batch renders the updates issued by fn once, after fn returns.
func (r *Runtime) Batch(fn func()) {
	r.reconciler.BatchedUpdates(fn)
}

// FlushSync runs fn at immediate priority and renders everything it
// scheduled before returning.
func (r *Runtime) FlushSync(fn func()) {
	r.reconciler.FlushSync(fn)
}

// RunWithPriority issues the updates of fn at the given priority.
func (r *Runtime) RunWithPriority(priority Priority, fn func()) {
	r.scheduler.RunWithPriority(priority, fn)
}

// Flush runs all pending work. On the virtual clock that is every scheduled
// render, effect and timer. Under an external host only the pending effects
// and synchronous renders run, the rest is left to the host.
func (r *Runtime) Flush() {
	if r.virtual != nil {
		r.virtual.FlushAll()
		return
	}
	r.reconciler.FlushPassiveEffects()
	r.scheduler.FlushSyncCallbackQueue()
}

func mustRuntime() *Runtime {
	r, err := NewRuntime()
	if err != nil {
		panic(err)
	}
	return r
}

// Batch runs fn on the default runtime; see Runtime.Batch.
func Batch(fn func()) {
	GetRuntime().Batch(fn)
}

// FlushSync runs fn on the default runtime; see Runtime.FlushSync.
func FlushSync(fn func()) {
	GetRuntime().FlushSync(fn)
}

// RunWithPriority runs fn on the default runtime; see Runtime.RunWithPriority.
func RunWithPriority(priority Priority, fn func()) {
	GetRuntime().RunWithPriority(priority, fn)
}

// Flush runs the pending work of the default runtime.
func Flush() {
	GetRuntime().Flush()
}
