package reconciler

import (
	"github.com/AnatoleLucet/fiber/internal/equal"
)

// Dispatcher is the set of hooks available to a component while it renders.
// Hooks are identified by call order, so a component has to call the same
// hooks in the same order on every render.
type Dispatcher interface {
	UseState(initial any) (any, Dispatch)
	UseReducer(reducer Reducer, initialArg any, init func(any) any) (any, Dispatch)
	UseEffect(create EffectFunc, deps []any)
	UseLayoutEffect(create EffectFunc, deps []any)
	UseMemo(create func() any, deps []any) any
	UseCallback(callback any, deps []any) any
	UseRef(initial any) *Ref
}

// Dispatch enqueues an action on a state hook.
type Dispatch func(action any)

type Reducer func(state, action any) any

// EffectFunc runs after commit and may return a cleanup.
type EffectFunc func() func()

// StateUpdater is a UseState action computed from the previous state.
type StateUpdater func(prev any) any

func basicStateReducer(state, action any) any {
	switch fn := action.(type) {
	case StateUpdater:
		return fn(state)
	case func(any) any:
		return fn(state)
	}
	return action
}

type hook struct {
	memoizedState any
	baseState     any
	baseQueue     *update
	queue         *hookQueue
	next          *hook
}

type hookQueue struct {
	pending             *update
	dispatch            Dispatch
	lastRenderedReducer Reducer
	lastRenderedState   any
}

// renderState is the hook cursor of one component render.
type renderState struct {
	rt    *Runtime
	fiber *Fiber

	renderExpirationTime ExpirationTime

	currentHook        *hook
	workInProgressHook *hook

	done bool
}

func (s *renderState) enter() {
	if s.done {
		panic(ErrInvalidHookCall)
	}
}

func (s *renderState) mountWorkInProgressHook() *hook {
	h := &hook{}
	s.appendHook(h)
	return h
}

func (s *renderState) updateWorkInProgressHook() *hook {
	var next *hook
	if s.currentHook == nil {
		if current := s.fiber.alternate; current != nil {
			next, _ = current.memoizedState.(*hook)
		}
	} else {
		next = s.currentHook.next
	}
	if next == nil {
		panic(ErrTooManyHooks)
	}
	s.currentHook = next

	h := &hook{
		memoizedState: next.memoizedState,
		baseState:     next.baseState,
		baseQueue:     next.baseQueue,
		queue:         next.queue,
	}
	s.appendHook(h)
	return h
}

func (s *renderState) appendHook(h *hook) {
	if s.workInProgressHook == nil {
		s.fiber.memoizedState = h
	} else {
		s.workInProgressHook.next = h
	}
	s.workInProgressHook = h
}

// renderWithHooks calls component with the mount or update dispatcher,
// depending on whether the fiber rendered before.
func (r *Runtime) renderWithHooks(current, wip *Fiber, component Component, props Props, renderExp ExpirationTime) Node {
	wip.memoizedState = nil
	wip.updateQueue = nil
	wip.expirationTime = NoWork

	rs := &renderState{rt: r, fiber: wip, renderExpirationTime: renderExp}
	defer func() { rs.done = true }()

	updating := current != nil && current.memoizedState != nil

	var d Dispatcher = mountDispatcher{rs}
	if updating {
		d = updateDispatcher{rs}
	}

	children := component(d, props)

	if updating && (rs.currentHook == nil || rs.currentHook.next != nil) {
		panic(ErrTooFewHooks)
	}

	return children
}

// bailoutHooks drops the work scheduled for a fiber that rendered to the same state.
func bailoutHooks(current, wip *Fiber, exp ExpirationTime) {
	wip.updateQueue = current.updateQueue
	wip.effectTag &^= Passive | Update
	if current.expirationTime <= exp {
		current.expirationTime = NoWork
	}
}

type mountDispatcher struct{ rs *renderState }

type updateDispatcher struct{ rs *renderState }

func (d mountDispatcher) UseState(initial any) (any, Dispatch) {
	if lazy, ok := initial.(func() any); ok {
		initial = lazy()
	}
	return d.UseReducer(basicStateReducer, initial, nil)
}

func (d mountDispatcher) UseReducer(reducer Reducer, initialArg any, init func(any) any) (any, Dispatch) {
	d.rs.enter()
	h := d.rs.mountWorkInProgressHook()

	initial := initialArg
	if init != nil {
		initial = init(initialArg)
	}
	h.memoizedState = initial
	h.baseState = initial

	q := &hookQueue{
		lastRenderedReducer: reducer,
		lastRenderedState:   initial,
	}
	h.queue = q

	rt, f := d.rs.rt, d.rs.fiber
	q.dispatch = func(action any) {
		rt.dispatchAction(f, q, action)
	}

	return initial, q.dispatch
}

func (d updateDispatcher) UseState(any) (any, Dispatch) {
	return d.UseReducer(basicStateReducer, nil, nil)
}

func (d updateDispatcher) UseReducer(reducer Reducer, _ any, _ func(any) any) (any, Dispatch) {
	rs := d.rs
	rs.enter()
	h := rs.updateWorkInProgressHook()
	q := h.queue
	q.lastRenderedReducer = reducer

	current := rs.currentHook
	baseQueue := current.baseQueue
	if pending := q.pending; pending != nil {
		baseQueue = mergeUpdates(baseQueue, pending)
		current.baseQueue = baseQueue
		q.pending = nil
	}

	if baseQueue != nil {
		res := processUpdates(baseQueue, current.baseState, rs.renderExpirationTime, func(state any, u *update) any {
			return reducer(state, u.action)
		})
		if res.remaining > rs.fiber.expirationTime {
			rs.fiber.expirationTime = res.remaining
		}

		if !equal.SameValue(res.state, h.memoizedState) {
			rs.rt.didReceiveUpdate = true
		}

		h.memoizedState = res.state
		h.baseState = res.baseState
		h.baseQueue = res.baseQueue
		q.lastRenderedState = res.state
	}

	return h.memoizedState, q.dispatch
}

func (r *Runtime) dispatchAction(f *Fiber, q *hookQueue, action any) {
	currentTime := r.requestCurrentTimeForUpdate()
	exp := r.computeExpirationForFiber(currentTime, f)

	q.pending = appendUpdate(q.pending, &update{expirationTime: exp, action: action})

	alternate := f.alternate
	if f.expirationTime == NoWork && (alternate == nil || alternate.expirationTime == NoWork) {
		// nothing else is pending on the fiber, so the next state can be
		// computed now and the render skipped when it does not change
		if eager, ok := eagerState(q.lastRenderedReducer, q.lastRenderedState, action); ok &&
			equal.SameValue(eager, q.lastRenderedState) {
			return
		}
	}

	r.scheduleUpdateOnFiber(f, exp)
}

// eagerState runs the reducer ahead of render. A panic is left for the render to report.
func eagerState(reducer Reducer, state, action any) (next any, ok bool) {
	if reducer == nil {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			next, ok = nil, false
		}
	}()
	return reducer(state, action), true
}
