package reconciler

import "github.com/AnatoleLucet/fiber/internal/equal"

type HookFlags uint8

const (
	// HookHasEffect marks an effect whose deps changed in the last render.
	HookHasEffect HookFlags = 1 << 0
	HookLayout    HookFlags = 1 << 1
	HookPassive   HookFlags = 1 << 2
)

type effect struct {
	tag     HookFlags
	create  EffectFunc
	destroy func()
	deps    []any
	next    *effect
}

// functionUpdateQueue holds a function component's effects as a ring whose
// handle is the last pushed effect.
type functionUpdateQueue struct {
	lastEffect *effect
}

func (q *functionUpdateQueue) each(fn func(e *effect)) {
	if q == nil || q.lastEffect == nil {
		return
	}
	first := q.lastEffect.next
	e := first
	for {
		next := e.next
		fn(e)
		e = next
		if e == first {
			return
		}
	}
}

type memoState struct {
	value any
	deps  []any
}

func (s *renderState) pushEffect(tag HookFlags, create EffectFunc, destroy func(), deps []any) *effect {
	e := &effect{tag: tag, create: create, destroy: destroy, deps: deps}

	q, _ := s.fiber.updateQueue.(*functionUpdateQueue)
	if q == nil {
		q = &functionUpdateQueue{}
		s.fiber.updateQueue = q
	}
	if q.lastEffect == nil {
		e.next = e
	} else {
		e.next = q.lastEffect.next
		q.lastEffect.next = e
	}
	q.lastEffect = e

	return e
}

func (s *renderState) mountEffect(fiberFlags Flags, hookFlags HookFlags, create EffectFunc, deps []any) {
	s.enter()
	h := s.mountWorkInProgressHook()
	s.fiber.effectTag |= fiberFlags
	h.memoizedState = s.pushEffect(HookHasEffect|hookFlags, create, nil, deps)
}

func (s *renderState) updateEffect(fiberFlags Flags, hookFlags HookFlags, create EffectFunc, deps []any) {
	s.enter()
	h := s.updateWorkInProgressHook()

	var destroy func()
	if prev, ok := s.currentHook.memoizedState.(*effect); ok {
		destroy = prev.destroy
		if deps != nil && equal.Deps(deps, prev.deps) {
			// still linked for unmount, but neither destroyed nor created
			h.memoizedState = s.pushEffect(hookFlags, create, destroy, deps)
			return
		}
	}

	s.fiber.effectTag |= fiberFlags
	h.memoizedState = s.pushEffect(HookHasEffect|hookFlags, create, destroy, deps)
}

func (d mountDispatcher) UseEffect(create EffectFunc, deps []any) {
	d.rs.mountEffect(Update|Passive, HookPassive, create, deps)
}

func (d mountDispatcher) UseLayoutEffect(create EffectFunc, deps []any) {
	d.rs.mountEffect(Update, HookLayout, create, deps)
}

func (d updateDispatcher) UseEffect(create EffectFunc, deps []any) {
	d.rs.updateEffect(Update|Passive, HookPassive, create, deps)
}

func (d updateDispatcher) UseLayoutEffect(create EffectFunc, deps []any) {
	d.rs.updateEffect(Update, HookLayout, create, deps)
}

func (d mountDispatcher) UseMemo(create func() any, deps []any) any {
	d.rs.enter()
	h := d.rs.mountWorkInProgressHook()
	value := create()
	h.memoizedState = &memoState{value: value, deps: deps}
	return value
}

func (d updateDispatcher) UseMemo(create func() any, deps []any) any {
	d.rs.enter()
	h := d.rs.updateWorkInProgressHook()
	if prev, ok := h.memoizedState.(*memoState); ok && deps != nil && equal.Deps(deps, prev.deps) {
		return prev.value
	}
	value := create()
	h.memoizedState = &memoState{value: value, deps: deps}
	return value
}

func (d mountDispatcher) UseCallback(callback any, deps []any) any {
	d.rs.enter()
	h := d.rs.mountWorkInProgressHook()
	h.memoizedState = &memoState{value: callback, deps: deps}
	return callback
}

func (d updateDispatcher) UseCallback(callback any, deps []any) any {
	d.rs.enter()
	h := d.rs.updateWorkInProgressHook()
	if prev, ok := h.memoizedState.(*memoState); ok && deps != nil && equal.Deps(deps, prev.deps) {
		return prev.value
	}
	h.memoizedState = &memoState{value: callback, deps: deps}
	return callback
}

func (d mountDispatcher) UseRef(initial any) *Ref {
	d.rs.enter()
	h := d.rs.mountWorkInProgressHook()
	ref := &Ref{Current: initial}
	h.memoizedState = ref
	return ref
}

func (d updateDispatcher) UseRef(any) *Ref {
	d.rs.enter()
	h := d.rs.updateWorkInProgressHook()
	return h.memoizedState.(*Ref)
}
