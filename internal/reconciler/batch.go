package reconciler

import "github.com/AnatoleLucet/fiber/internal/scheduler"

// BatchedUpdates renders every sync update issued by fn in a single pass
// once the outermost batch returns.
func (r *Runtime) BatchedUpdates(fn func()) {
	r.runInContext(BatchedContext, fn)
}

// DiscreteUpdates runs fn as a user event: batched, at user blocking priority.
func (r *Runtime) DiscreteUpdates(fn func()) {
	r.runInContext(EventContext, func() {
		r.scheduler.RunWithPriority(scheduler.UserBlockingPriority, fn)
	})
}

// UnbatchedUpdates renders sync updates issued by fn right away, even inside a batch.
func (r *Runtime) UnbatchedUpdates(fn func()) {
	prev := r.executionContext
	r.executionContext &^= BatchedContext
	r.executionContext |= LegacyUnbatchedContext
	defer func() {
		r.executionContext = prev
		if r.executionContext == NoContext {
			r.scheduler.FlushSyncCallbackQueue()
		}
	}()

	fn()
}

// FlushSync runs fn at immediate priority and renders the resulting updates
// before returning.
func (r *Runtime) FlushSync(fn func()) {
	prev := r.executionContext
	r.executionContext |= BatchedContext
	defer func() {
		r.executionContext = prev
		r.scheduler.FlushSyncCallbackQueue()
	}()

	if fn != nil {
		r.scheduler.RunWithPriority(scheduler.ImmediatePriority, fn)
	}
}

func (r *Runtime) runInContext(ctx ExecutionContext, fn func()) {
	prev := r.executionContext
	r.executionContext |= ctx
	defer func() {
		r.executionContext = prev
		if r.executionContext == NoContext {
			r.scheduler.FlushSyncCallbackQueue()
		}
	}()

	fn()
}
