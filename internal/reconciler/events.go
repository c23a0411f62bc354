package reconciler

import (
	"strings"

	"github.com/AnatoleLucet/fiber/host"
)

// Event is passed to listeners registered with on<Name> and on<Name>Capture props.
type Event struct {
	Type          string
	Target        host.Instance
	CurrentTarget host.Instance
	Payload       any

	stopped bool
}

// StopPropagation skips the listeners that have not run yet.
func (e *Event) StopPropagation() { e.stopped = true }

func (e *Event) IsPropagationStopped() bool { return e.stopped }

type listener struct {
	instance host.Instance
	fn       any
}

// DispatchEvent delivers an event that happened on target: capture listeners
// run from the root down, then bubble listeners from the target up. Listeners
// run as discrete updates. It reports whether a listener ran.
func (r *Runtime) DispatchEvent(target host.Instance, typ string, payload any) bool {
	if r.cache == nil || typ == "" {
		return false
	}
	f, _ := r.cache.FiberFromInstance(target).(*Fiber)
	if f == nil {
		return false
	}

	name := "on" + strings.ToUpper(typ[:1]) + typ[1:]

	var capture, bubble []listener
	for node := f; node != nil; node = node.parent {
		if node.tag != HostComponent || node.stateNode == nil {
			continue
		}
		props := r.latestProps(node)
		if fn := props[name+"Capture"]; fn != nil {
			capture = append(capture, listener{node.stateNode, fn})
		}
		if fn := props[name]; fn != nil {
			bubble = append(bubble, listener{node.stateNode, fn})
		}
	}
	if len(capture) == 0 && len(bubble) == 0 {
		return false
	}

	ev := &Event{Type: typ, Target: target, Payload: payload}
	ran := false
	r.DiscreteUpdates(func() {
		for i := len(capture) - 1; i >= 0 && !ev.stopped; i-- {
			ran = invokeListener(ev, capture[i]) || ran
		}
		for i := 0; i < len(bubble) && !ev.stopped; i++ {
			ran = invokeListener(ev, bubble[i]) || ran
		}
	})
	return ran
}

// latestProps reads the props of the last committed version of a host fiber.
func (r *Runtime) latestProps(f *Fiber) Props {
	if cached, ok := r.cache.FiberFromInstance(f.stateNode).(*Fiber); ok && cached != nil {
		return propsOf(cached.memoizedProps)
	}
	return propsOf(f.memoizedProps)
}

func invokeListener(ev *Event, l listener) bool {
	ev.CurrentTarget = l.instance
	switch fn := l.fn.(type) {
	case func(*Event):
		fn(ev)
	case func():
		fn()
	default:
		return false
	}
	return true
}
