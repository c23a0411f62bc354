package fiber

import "github.com/AnatoleLucet/fiber/internal/reconciler"

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// Setter updates the state of a UseState hook. It is the same across renders.
type Setter[T any] struct {
	dispatch reconciler.Dispatch
}

// Set schedules a render with v as the new state.
func (s Setter[T]) Set(v T) {
	s.dispatch(v)
}

// Update schedules a render with the state computed from the previous one.
func (s Setter[T]) Update(fn func(prev T) T) {
	s.dispatch(reconciler.StateUpdater(func(prev any) any {
		return fn(as[T](prev))
	}))
}

// UseState declares a piece of state, initialized on the first render.
func UseState[T any](d Dispatcher, initial T) (T, Setter[T]) {
	v, dispatch := d.UseState(initial)
	return as[T](v), Setter[T]{dispatch}
}

// UseStateFunc is UseState with an initial value computed once.
func UseStateFunc[T any](d Dispatcher, init func() T) (T, Setter[T]) {
	v, dispatch := d.UseState(func() any { return init() })
	return as[T](v), Setter[T]{dispatch}
}

// UseReducer declares state that changes through reducer.
func UseReducer[S, A any](d Dispatcher, reducer func(state S, action A) S, initial S) (S, func(A)) {
	v, dispatch := d.UseReducer(func(state, action any) any {
		return reducer(as[S](state), as[A](action))
	}, initial, nil)

	return as[S](v), func(action A) { dispatch(action) }
}

// Deps builds a dependency list. Deps() with no values means "only once",
// while a nil list means "after every render".
func Deps(values ...any) []any {
	if values == nil {
		return []any{}
	}
	return values
}

// UseEffect runs effect after the commit has been painted, and again when
// deps change. The returned function, if any, cleans up the previous run.
func UseEffect(d Dispatcher, effect func() func(), deps []any) {
	d.UseEffect(effect, deps)
}

// UseLayoutEffect is UseEffect run synchronously right after the mutations,
// before anything else can observe the host tree.
func UseLayoutEffect(d Dispatcher, effect func() func(), deps []any) {
	d.UseLayoutEffect(effect, deps)
}

// UseMemo caches the result of compute until deps change.
func UseMemo[T any](d Dispatcher, compute func() T, deps []any) T {
	return as[T](d.UseMemo(func() any { return compute() }, deps))
}

// UseCallback keeps the same fn until deps change.
func UseCallback[F any](d Dispatcher, fn F, deps []any) F {
	return as[F](d.UseCallback(fn, deps))
}

// UseRef returns a box that lives as long as the component.
func UseRef(d Dispatcher, initial any) *Ref {
	return d.UseRef(initial)
}
