package reconciler

import (
	"errors"
	"time"

	"github.com/AnatoleLucet/fiber/internal/scheduler"
)

var errAlreadyWorking = errors.New("should not already be working")

func (r *Runtime) markUpdateTimeFromFiberToRoot(f *Fiber, exp ExpirationTime) *FiberRoot {
	if f.expirationTime < exp {
		f.expirationTime = exp
	}
	alternate := f.alternate
	if alternate != nil && alternate.expirationTime < exp {
		alternate.expirationTime = exp
	}

	var root *FiberRoot
	node := f.parent
	if node == nil && f.tag == HostRoot {
		root, _ = f.stateNode.(*FiberRoot)
	}
	for ; node != nil; node = node.parent {
		alternate = node.alternate
		if node.childExpirationTime < exp {
			node.childExpirationTime = exp
		}
		if alternate != nil && alternate.childExpirationTime < exp {
			alternate.childExpirationTime = exp
		}
		if node.parent == nil && node.tag == HostRoot {
			root, _ = node.stateNode.(*FiberRoot)
			break
		}
	}

	if root != nil {
		markRootUpdatedAtTime(root, exp)
	}
	return root
}

func (r *Runtime) scheduleUpdateOnFiber(f *Fiber, exp ExpirationTime) {
	root := r.markUpdateTimeFromFiberToRoot(f, exp)
	if root == nil {
		r.logger.Warning().
			Stringer("fiber", f).
			Log("state update on an unmounted component")
		return
	}

	if exp != Sync {
		r.ensureRootIsScheduled(root)
		return
	}

	if r.executionContext&LegacyUnbatchedContext != 0 && r.executionContext&(RenderContext|CommitContext) == 0 {
		// initial legacy mount renders right away
		r.performSyncWorkOnRoot(root)
		return
	}

	r.ensureRootIsScheduled(root)
	if r.executionContext == NoContext {
		r.scheduler.FlushSyncCallbackQueue()
	}
}

// ensureRootIsScheduled keeps exactly one scheduler task per root, at the
// priority of its most urgent pending work.
func (r *Runtime) ensureRootIsScheduled(root *FiberRoot) {
	if root.lastExpiredTime != NoWork {
		root.callbackExpirationTime = Sync
		root.callbackPriority = scheduler.ImmediatePriority
		root.callbackNode = r.scheduler.ScheduleSyncCallback(r.syncCallback(root))
		return
	}

	exp := nextRootExpirationTime(root)
	existing := root.callbackNode
	if exp == NoWork {
		if existing != nil {
			root.callbackNode = nil
			root.callbackExpirationTime = NoWork
			root.callbackPriority = scheduler.NoPriority
		}
		return
	}

	currentTime := r.requestCurrentTimeForUpdate()
	priority := inferPriority(currentTime, exp)

	if existing != nil {
		if root.callbackExpirationTime == exp && root.callbackPriority >= priority {
			return
		}
		if existing != r.scheduler.SyncTask() {
			r.scheduler.CancelCallback(existing)
		}
	}

	root.callbackExpirationTime = exp
	root.callbackPriority = priority

	if exp == Sync {
		root.callbackNode = r.scheduler.ScheduleSyncCallback(r.syncCallback(root))
	} else {
		timeout := time.Duration(expirationTimeToMs(exp)-r.scheduler.Now().Milliseconds()) * time.Millisecond
		root.callbackNode = r.scheduler.ScheduleCallback(priority, r.concurrentCallback(root), scheduler.WithTimeout(timeout))
	}

	r.logger.Trace().
		Stringer("priority", priority).
		Stringer("expiration", exp).
		Log("root scheduled")
}

func (r *Runtime) syncCallback(root *FiberRoot) scheduler.Callback {
	return func(bool) scheduler.Callback {
		r.performSyncWorkOnRoot(root)
		return nil
	}
}

func (r *Runtime) concurrentCallback(root *FiberRoot) scheduler.Callback {
	return func(didTimeout bool) scheduler.Callback {
		return r.performConcurrentWorkOnRoot(root, didTimeout)
	}
}

func (r *Runtime) performSyncWorkOnRoot(root *FiberRoot) {
	if r.executionContext&(RenderContext|CommitContext) != 0 {
		panic(errAlreadyWorking)
	}
	r.currentEventTime = NoWork

	exp := Sync
	if root.lastExpiredTime != NoWork {
		exp = root.lastExpiredTime
	}

	r.flushPassiveEffects()

	if root != r.workInProgressRoot || exp != r.renderExpirationTime {
		if root.firstPendingTime < exp {
			// already rendered by an earlier callback
			return
		}
		r.prepareFreshStack(root, exp)
	}

	if r.workInProgress == nil {
		return
	}

	r.renderRoot(root, r.workLoopSync)

	root.finishedWork = root.current.alternate
	root.finishedExpirationTime = exp
	r.commitRoot(root)

	r.ensureRootIsScheduled(root)
}

func (r *Runtime) performConcurrentWorkOnRoot(root *FiberRoot, didTimeout bool) scheduler.Callback {
	r.currentEventTime = NoWork

	if didTimeout {
		// out of time, finish synchronously
		markRootExpiredAtTime(root, r.requestCurrentTimeForUpdate())
		r.ensureRootIsScheduled(root)
		return nil
	}

	exp := nextRootExpirationTime(root)
	if exp == NoWork {
		return nil
	}
	originalCallbackNode := root.callbackNode

	r.flushPassiveEffects()

	if root != r.workInProgressRoot || exp != r.renderExpirationTime {
		r.prepareFreshStack(root, exp)
	}

	if r.workInProgress == nil {
		return nil
	}

	r.renderRoot(root, r.workLoopConcurrent)

	if r.workInProgress == nil {
		root.finishedWork = root.current.alternate
		root.finishedExpirationTime = exp
		r.commitRoot(root)
	}

	r.ensureRootIsScheduled(root)
	if root.callbackNode == originalCallbackNode {
		// yielded, continue the same render on the next turn
		return r.concurrentCallback(root)
	}
	return nil
}

func (r *Runtime) prepareFreshStack(root *FiberRoot, exp ExpirationTime) {
	root.finishedWork = nil
	root.finishedExpirationTime = NoWork

	r.workInProgressRoot = root
	r.workInProgress = createWorkInProgress(root.current, nil)
	r.renderExpirationTime = exp
	r.renderedHookFibers = r.renderedHookFibers[:0]
}

// renderRoot runs loop in the render context. A panicking component abandons
// the render: the work in progress is dropped and the panic is re-raised.
func (r *Runtime) renderRoot(root *FiberRoot, loop func()) {
	prev := r.executionContext
	r.executionContext |= RenderContext

	defer func() {
		r.executionContext = prev

		rec := recover()
		if rec == nil {
			return
		}

		r.workInProgress = nil
		r.workInProgressRoot = nil
		r.renderExpirationTime = NoWork

		root.callbackNode = nil
		root.callbackExpirationTime = NoWork
		root.callbackPriority = scheduler.NoPriority

		r.logger.Err().
			Err(PanicError{Value: rec}).
			Log("render abandoned")

		panic(rec)
	}()

	loop()
}

func (r *Runtime) workLoopSync() {
	for r.workInProgress != nil {
		r.workInProgress = r.performUnitOfWork(r.workInProgress)
	}
}

func (r *Runtime) workLoopConcurrent() {
	for r.workInProgress != nil && !r.scheduler.ShouldYieldToHost() {
		r.workInProgress = r.performUnitOfWork(r.workInProgress)
	}
}

func (r *Runtime) performUnitOfWork(unit *Fiber) *Fiber {
	next := r.beginWork(unit.alternate, unit, r.renderExpirationTime)
	unit.memoizedProps = unit.pendingProps

	if next == nil {
		next = r.completeUnitOfWork(unit)
	}
	return next
}

// completeUnitOfWork completes unit and its ancestors until one of them has a
// sibling left to begin.
func (r *Runtime) completeUnitOfWork(unit *Fiber) *Fiber {
	wip := unit
	for {
		parent := wip.parent

		r.completeWork(wip.alternate, wip)
		resetChildExpirationTime(wip)
		if wip.tag == FunctionComponent || wip.tag == MemoComponent {
			r.renderedHookFibers = append(r.renderedHookFibers, wip)
		}

		if parent != nil {
			// the children's effects go before the fiber's own
			if parent.firstEffect == nil {
				parent.firstEffect = wip.firstEffect
			}
			if wip.lastEffect != nil {
				if parent.lastEffect != nil {
					parent.lastEffect.nextEffect = wip.firstEffect
				}
				parent.lastEffect = wip.lastEffect
			}

			if wip.effectTag.HasHostEffect() {
				if parent.lastEffect != nil {
					parent.lastEffect.nextEffect = wip
				} else {
					parent.firstEffect = wip
				}
				parent.lastEffect = wip
			}
		}

		if wip.sibling != nil {
			return wip.sibling
		}

		wip = parent
		if wip == nil {
			return nil
		}
	}
}

// resetChildExpirationTime collects the pending work left in the subtree.
func resetChildExpirationTime(wip *Fiber) {
	var exp ExpirationTime
	for child := wip.child; child != nil; child = child.sibling {
		exp = max(exp, child.expirationTime, child.childExpirationTime)
	}
	wip.childExpirationTime = exp
}
