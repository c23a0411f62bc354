package reconciler

import (
	"fmt"

	"github.com/AnatoleLucet/fiber/host"
	"github.com/AnatoleLucet/fiber/internal/logging"
	"github.com/AnatoleLucet/fiber/internal/scheduler"
)

type ExecutionContext uint8

const (
	NoContext              ExecutionContext = 0
	BatchedContext         ExecutionContext = 1 << 0
	EventContext           ExecutionContext = 1 << 1
	LegacyUnbatchedContext ExecutionContext = 1 << 3
	RenderContext          ExecutionContext = 1 << 4
	CommitContext          ExecutionContext = 1 << 5
)

// Runtime renders roots onto one host renderer. It is owned by a single
// goroutine: every call, including scheduler turns, must happen on it.
type Runtime struct {
	scheduler *scheduler.Scheduler
	renderer  host.Renderer
	cache     host.FiberCache
	logger    *logging.Logger

	executionContext ExecutionContext

	workInProgressRoot   *FiberRoot
	workInProgress       *Fiber
	renderExpirationTime ExpirationTime
	// hook fibers rendered in the current pass
	renderedHookFibers []*Fiber

	// shared by every update issued within one event
	currentEventTime ExpirationTime

	didReceiveUpdate bool

	rootDoesHavePassiveEffects          bool
	rootWithPendingPassiveEffects       *FiberRoot
	pendingPassiveEffectsRenderPriority scheduler.Priority
	pendingPassiveEffectsExpirationTime ExpirationTime
}

func New(renderer host.Renderer, sched *scheduler.Scheduler, logger *logging.Logger) *Runtime {
	r := &Runtime{
		scheduler:                           sched,
		renderer:                            renderer,
		logger:                              logger,
		pendingPassiveEffectsRenderPriority: scheduler.NoPriority,
	}
	if cache, ok := renderer.(host.FiberCache); ok {
		r.cache = cache
	}
	return r
}

func (r *Runtime) Scheduler() *scheduler.Scheduler {
	return r.scheduler
}

func (r *Runtime) Renderer() host.Renderer {
	return r.renderer
}

// IsRendering reports whether a render or a commit is running.
func (r *Runtime) IsRendering() bool {
	return r.executionContext&(RenderContext|CommitContext) != 0
}

func (r *Runtime) now() ExpirationTime {
	return msToExpirationTime(r.scheduler.Now().Milliseconds())
}

func (r *Runtime) requestCurrentTimeForUpdate() ExpirationTime {
	if r.executionContext&(RenderContext|CommitContext) != 0 {
		return r.now()
	}
	if r.currentEventTime != NoWork {
		return r.currentEventTime
	}
	r.currentEventTime = r.now()
	return r.currentEventTime
}

func (r *Runtime) computeExpirationForFiber(currentTime ExpirationTime, f *Fiber) ExpirationTime {
	if f.mode&ConcurrentMode == 0 {
		return Sync
	}

	if r.executionContext&RenderContext != 0 {
		return r.renderExpirationTime
	}

	var exp ExpirationTime
	switch priority := r.scheduler.CurrentPriorityLevel(); priority {
	case scheduler.ImmediatePriority:
		exp = Sync
	case scheduler.UserBlockingPriority:
		exp = computeUserBlockingExpiration(currentTime)
	case scheduler.NormalPriority, scheduler.LowPriority:
		exp = computeAsyncExpiration(currentTime)
	case scheduler.IdlePriority:
		exp = Idle
	default:
		panic(fmt.Errorf("%w: %s", scheduler.ErrInvalidPriority, priority))
	}

	// never join the render that is in progress, it already started without this update
	if r.workInProgressRoot != nil && exp == r.renderExpirationTime {
		exp--
	}

	return exp
}
