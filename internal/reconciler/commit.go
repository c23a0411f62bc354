package reconciler

import (
	"github.com/AnatoleLucet/fiber/internal/scheduler"
)

func (r *Runtime) commitRoot(root *FiberRoot) {
	renderPriority := r.scheduler.CurrentPriorityLevel()
	r.scheduler.RunWithPriority(scheduler.ImmediatePriority, func() {
		r.commitRootImpl(root, renderPriority)
	})
}

func (r *Runtime) commitRootImpl(root *FiberRoot, renderPriority scheduler.Priority) {
	for r.flushPassiveEffects() {
	}

	finishedWork := root.finishedWork
	exp := root.finishedExpirationTime
	if finishedWork == nil {
		return
	}
	root.finishedWork = nil
	root.finishedExpirationTime = NoWork

	root.callbackNode = nil
	root.callbackExpirationTime = NoWork
	root.callbackPriority = scheduler.NoPriority

	markRootFinishedAtTime(root, exp, remainingExpirationTime(finishedWork))

	if root == r.workInProgressRoot {
		r.workInProgressRoot = nil
		r.workInProgress = nil
		r.renderExpirationTime = NoWork
		r.syncRenderedAlternates()
	}

	// the root's own effect goes last
	firstEffect := finishedWork.firstEffect
	if finishedWork.effectTag.HasHostEffect() {
		if finishedWork.lastEffect != nil {
			finishedWork.lastEffect.nextEffect = finishedWork
		} else {
			firstEffect = finishedWork
		}
	}

	if firstEffect == nil {
		root.current = finishedWork
	} else {
		prev := r.executionContext
		r.executionContext |= CommitContext

		r.commitEach("before mutation", firstEffect, r.commitBeforeMutationEffects)
		r.commitEach("mutation", firstEffect, r.commitMutationEffects)

		// the work in progress tree is now the current tree
		root.current = finishedWork

		r.commitEach("layout", firstEffect, r.commitLayoutEffects)

		r.executionContext = prev
	}

	if r.rootDoesHavePassiveEffects {
		// the passive flush walks the effect list, keep it
		r.rootDoesHavePassiveEffects = false
		r.rootWithPendingPassiveEffects = root
		r.pendingPassiveEffectsExpirationTime = exp
		r.pendingPassiveEffectsRenderPriority = renderPriority
	} else {
		for e := firstEffect; e != nil; {
			next := e.nextEffect
			e.nextEffect = nil
			e = next
		}
	}

	r.ensureRootIsScheduled(root)

	if r.executionContext&LegacyUnbatchedContext != 0 {
		return
	}
	// layout effects may have scheduled sync work
	r.scheduler.FlushSyncCallbackQueue()
}

// syncRenderedAlternates copies the work left on every rendered hook fiber to
// its alternate. The alternate still carries the expiration time of the
// updates this render consumed, which would defeat the eager state check.
func (r *Runtime) syncRenderedAlternates() {
	for _, f := range r.renderedHookFibers {
		if alternate := f.alternate; alternate != nil {
			alternate.expirationTime = f.expirationTime
		}
	}
	clear(r.renderedHookFibers)
	r.renderedHookFibers = r.renderedHookFibers[:0]
}

// commitEach runs commit on every fiber of the effect list. A panic only
// skips the fiber that raised it.
func (r *Runtime) commitEach(phase string, first *Fiber, commit func(f *Fiber)) {
	for e := first; e != nil; e = e.nextEffect {
		r.commitSafely(phase, e, commit)
	}
}

func (r *Runtime) commitSafely(phase string, f *Fiber, commit func(f *Fiber)) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warning().
				Str("phase", phase).
				Stringer("fiber", f).
				Err(PanicError{Value: rec}).
				Log("commit failed")
		}
	}()

	commit(f)
}

func (r *Runtime) commitBeforeMutationEffects(f *Fiber) {
	if !f.effectTag.HasPassiveEffect() || r.rootDoesHavePassiveEffects {
		return
	}
	r.rootDoesHavePassiveEffects = true
	r.scheduler.ScheduleCallback(scheduler.NormalPriority, func(bool) scheduler.Callback {
		r.flushPassiveEffects()
		return nil
	})
}

func (r *Runtime) commitLayoutEffects(f *Fiber) {
	if f.effectTag.HasUpdate() {
		switch f.tag {
		case FunctionComponent, MemoComponent:
			r.commitHookEffectListMount(HookLayout|HookHasEffect, f)
		}
	}

	if f.effectTag.HasRef() {
		if ref := f.ref; ref != nil {
			ref.Current = f.stateNode
		}
	}
}

func (r *Runtime) commitHookEffectListUnmount(tag HookFlags, f *Fiber) {
	q, _ := f.updateQueue.(*functionUpdateQueue)
	q.each(func(e *effect) {
		if e.tag&tag != tag {
			return
		}
		destroy := e.destroy
		e.destroy = nil
		if destroy != nil {
			destroy()
		}
	})
}

func (r *Runtime) commitHookEffectListMount(tag HookFlags, f *Fiber) {
	q, _ := f.updateQueue.(*functionUpdateQueue)
	q.each(func(e *effect) {
		if e.tag&tag != tag {
			return
		}
		if e.create != nil {
			e.destroy = e.create()
		}
	})
}

// FlushPassiveEffects runs the pending useEffect cleanups and creates now.
// It reports whether anything was pending.
func (r *Runtime) FlushPassiveEffects() bool {
	return r.flushPassiveEffects()
}

func (r *Runtime) flushPassiveEffects() bool {
	if r.rootWithPendingPassiveEffects == nil {
		return false
	}

	priority := r.pendingPassiveEffectsRenderPriority
	if priority > scheduler.NormalPriority || priority == scheduler.NoPriority {
		priority = scheduler.NormalPriority
	}
	r.pendingPassiveEffectsRenderPriority = scheduler.NoPriority

	r.scheduler.RunWithPriority(priority, r.flushPassiveEffectsImpl)
	return true
}

func (r *Runtime) flushPassiveEffectsImpl() {
	root := r.rootWithPendingPassiveEffects
	r.rootWithPendingPassiveEffects = nil
	r.pendingPassiveEffectsExpirationTime = NoWork

	prev := r.executionContext
	r.executionContext |= CommitContext

	first := root.current.firstEffect

	// every cleanup runs before any create
	for e := first; e != nil; e = e.nextEffect {
		if e.effectTag.HasPassiveEffect() {
			r.commitSafely("passive unmount", e, func(f *Fiber) {
				r.commitHookEffectListUnmount(HookPassive|HookHasEffect, f)
			})
		}
	}
	for e := first; e != nil; {
		if e.effectTag.HasPassiveEffect() {
			r.commitSafely("passive mount", e, func(f *Fiber) {
				r.commitHookEffectListMount(HookPassive|HookHasEffect, f)
			})
		}
		next := e.nextEffect
		e.nextEffect = nil
		e = next
	}

	r.executionContext = prev

	// updates from the effects
	r.scheduler.FlushSyncCallbackQueue()
}
