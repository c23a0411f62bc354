package reconciler

// update is one pending state change. Pending updates form a ring whose
// handle is the newest node, so the oldest is handle.next.
type update struct {
	expirationTime ExpirationTime
	action         any
	next           *update
}

// appendUpdate adds u to the ring and returns the new handle.
func appendUpdate(pending, u *update) *update {
	if pending == nil {
		u.next = u
	} else {
		u.next = pending.next
		pending.next = u
	}
	return u
}

// mergeUpdates splices pending after base, keeping base updates first.
func mergeUpdates(base, pending *update) *update {
	if base == nil {
		return pending
	}
	if pending == nil {
		return base
	}
	baseFirst := base.next
	base.next = pending.next
	pending.next = baseFirst
	return pending
}

type processed struct {
	state     any
	baseState any
	// baseQueue is the ring of updates that have to be replayed by a later render
	baseQueue *update
	// remaining is the most urgent skipped expiration time
	remaining ExpirationTime
}

// processUpdates applies every update of the ring that is urgent enough for
// renderExp. Once one update is skipped, it and every update after it are
// kept in the base queue, and the base state freezes at the state before it,
// so a later render replays them in their original order.
func processUpdates(last *update, baseState any, renderExp ExpirationTime, reduce func(state any, u *update) any) processed {
	res := processed{state: baseState, baseState: baseState}
	if last == nil {
		return res
	}

	var baseFirst, baseLast *update
	first := last.next
	u := first
	for {
		if u.expirationTime < renderExp {
			clone := &update{expirationTime: u.expirationTime, action: u.action}
			if baseLast == nil {
				baseFirst, baseLast = clone, clone
				res.baseState = res.state
			} else {
				baseLast.next = clone
				baseLast = clone
			}
			if u.expirationTime > res.remaining {
				res.remaining = u.expirationTime
			}
		} else {
			if baseLast != nil {
				// already applied, replayed with the skipped ones at any priority
				clone := &update{expirationTime: Sync, action: u.action}
				baseLast.next = clone
				baseLast = clone
			}
			res.state = reduce(res.state, u)
		}

		u = u.next
		if u == first {
			break
		}
	}

	if baseLast == nil {
		res.baseState = res.state
	} else {
		baseLast.next = baseFirst
	}
	res.baseQueue = baseLast

	return res
}

type sharedQueue struct {
	pending *update
}

// rootQueue is the update queue of a HostRoot fiber. Its state is the element
// rendered into the root.
type rootQueue struct {
	baseState any
	baseQueue *update
	// shared between the current and work in progress root fibers
	shared *sharedQueue
}

func initializeRootQueue(f *Fiber) {
	f.updateQueue = &rootQueue{shared: &sharedQueue{}}
}

func enqueueUpdate(f *Fiber, u *update) {
	q, ok := f.updateQueue.(*rootQueue)
	if !ok {
		return
	}
	q.shared.pending = appendUpdate(q.shared.pending, u)
}

// cloneUpdateQueue gives wip a queue of its own that still shares pending updates.
func cloneUpdateQueue(current, wip *Fiber) {
	q := wip.updateQueue.(*rootQueue)
	if cq, ok := current.updateQueue.(*rootQueue); ok && cq == q {
		wip.updateQueue = &rootQueue{
			baseState: q.baseState,
			baseQueue: q.baseQueue,
			shared:    q.shared,
		}
	}
}

func processUpdateQueue(wip *Fiber, renderExp ExpirationTime) {
	q := wip.updateQueue.(*rootQueue)

	baseQueue := q.baseQueue
	if pending := q.shared.pending; pending != nil {
		q.shared.pending = nil
		baseQueue = mergeUpdates(baseQueue, pending)

		// keep the updates on current too, in case this render is thrown away
		if current := wip.alternate; current != nil {
			if cq, ok := current.updateQueue.(*rootQueue); ok {
				cq.baseQueue = baseQueue
			}
		}
	}

	if baseQueue == nil {
		return
	}

	res := processUpdates(baseQueue, q.baseState, renderExp, func(_ any, u *update) any {
		return u.action
	})
	q.baseState = res.baseState
	q.baseQueue = res.baseQueue

	wip.expirationTime = res.remaining
	wip.memoizedState = res.state
}
