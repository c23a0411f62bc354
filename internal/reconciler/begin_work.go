package reconciler

import (
	"fmt"

	"github.com/AnatoleLucet/fiber/internal/equal"
)

func propsOf(v any) Props {
	p, _ := v.(Props)
	return p
}

// beginWork renders wip and returns its first child, or nil when the subtree
// has nothing left to do at renderExp.
func (r *Runtime) beginWork(current, wip *Fiber, renderExp ExpirationTime) *Fiber {
	updateExp := wip.expirationTime

	r.didReceiveUpdate = false
	if current != nil {
		if !equal.SameValue(current.memoizedProps, wip.pendingProps) {
			r.didReceiveUpdate = true
		} else if updateExp < renderExp {
			return r.bailoutOnAlreadyFinishedWork(current, wip, renderExp)
		}
	}

	wip.expirationTime = NoWork

	switch wip.tag {
	case HostRoot:
		return r.updateHostRoot(current, wip, renderExp)
	case FunctionComponent:
		component, _ := wip.typ.(Component)
		return r.updateFunctionComponent(current, wip, component, propsOf(wip.pendingProps), renderExp)
	case MemoComponent:
		return r.updateMemoComponent(current, wip, updateExp, renderExp)
	case HostComponent:
		return r.updateHostComponent(current, wip, renderExp)
	case HostText:
		return nil
	case Fragment:
		r.reconcileChildren(current, wip, wip.pendingProps, renderExp)
		return wip.child
	}

	panic(fmt.Errorf("%w: %s", ErrUnknownFiberTag, wip.tag))
}

func (r *Runtime) reconcileChildren(current, wip *Fiber, children Node, renderExp ExpirationTime) {
	if current == nil {
		wip.child = mountChildFibers.reconcile(wip, nil, children, renderExp)
		return
	}
	wip.child = reconcileChildFibers.reconcile(wip, current.child, children, renderExp)
}

func (r *Runtime) bailoutOnAlreadyFinishedWork(current, wip *Fiber, renderExp ExpirationTime) *Fiber {
	if wip.childExpirationTime < renderExp {
		// the whole subtree is up to date
		return nil
	}
	cloneChildFibers(wip)
	return wip.child
}

func cloneChildFibers(wip *Fiber) {
	current := wip.child
	if current == nil {
		return
	}

	next := createWorkInProgress(current, current.pendingProps)
	wip.child = next
	next.parent = wip

	for current.sibling != nil {
		current = current.sibling
		next.sibling = createWorkInProgress(current, current.pendingProps)
		next = next.sibling
		next.parent = wip
	}
	next.sibling = nil
}

func (r *Runtime) updateHostRoot(current, wip *Fiber, renderExp ExpirationTime) *Fiber {
	cloneUpdateQueue(current, wip)

	prevChildren := wip.memoizedState
	processUpdateQueue(wip, renderExp)
	nextChildren := wip.memoizedState

	if equal.SameValue(prevChildren, nextChildren) {
		return r.bailoutOnAlreadyFinishedWork(current, wip, renderExp)
	}

	r.reconcileChildren(current, wip, nextChildren, renderExp)
	return wip.child
}

func (r *Runtime) updateFunctionComponent(current, wip *Fiber, component Component, props Props, renderExp ExpirationTime) *Fiber {
	if component == nil {
		panic(fmt.Errorf("%w: nil component", ErrInvalidElementType))
	}

	children := r.renderWithHooks(current, wip, component, props, renderExp)

	if current != nil && !r.didReceiveUpdate {
		bailoutHooks(current, wip, renderExp)
		return r.bailoutOnAlreadyFinishedWork(current, wip, renderExp)
	}

	wip.effectTag |= PerformedWork
	r.reconcileChildren(current, wip, children, renderExp)
	return wip.child
}

func (r *Runtime) updateMemoComponent(current, wip *Fiber, updateExp, renderExp ExpirationTime) *Fiber {
	memo := wip.typ.(*Memo)
	props := propsOf(wip.pendingProps)

	if current != nil && current.ref == wip.ref {
		compare := memo.Compare
		if compare == nil {
			compare = equal.Shallow[Props]
		}

		if compare(propsOf(current.memoizedProps), props) {
			r.didReceiveUpdate = false
			if updateExp < renderExp {
				// keep the lower priority work that is still pending on the fiber
				wip.expirationTime = current.expirationTime
				return r.bailoutOnAlreadyFinishedWork(current, wip, renderExp)
			}
		}
	}

	return r.updateFunctionComponent(current, wip, memo.Render, props, renderExp)
}

func (r *Runtime) updateHostComponent(current, wip *Fiber, renderExp ExpirationTime) *Fiber {
	markRef(current, wip)
	r.reconcileChildren(current, wip, propsOf(wip.pendingProps)["children"], renderExp)
	return wip.child
}

func markRef(current, wip *Fiber) {
	if (current == nil && wip.ref != nil) || (current != nil && current.ref != wip.ref) {
		wip.effectTag |= AttachRef
	}
}
