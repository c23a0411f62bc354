// Package fiber renders declarative component trees onto a host, diffing
// each new tree against the last one and committing only the mutations.
//
// Components are plain functions of a Dispatcher and their props. Hooks are
// called on the Dispatcher, always in the same order:
//
//	func Counter(d fiber.Dispatcher, props fiber.Props) fiber.Node {
//		count, setCount := fiber.UseState(d, 0)
//		return fiber.H("button", fiber.Props{
//			"onClick": func() { setCount.Update(func(n int) int { return n + 1 }) },
//		}, count)
//	}
package fiber

import (
	"github.com/AnatoleLucet/fiber/host"
	"github.com/AnatoleLucet/fiber/internal/reconciler"
)

type (
	// Node is anything a component can return: an element, a string or a
	// number, a slice of nodes, or nil and booleans for nothing.
	Node       = reconciler.Node
	Props      = host.Props
	Element    = reconciler.Element
	Component  = reconciler.Component
	Dispatcher = reconciler.Dispatcher
	Ref        = reconciler.Ref
	Event      = reconciler.Event

	MemoComponent = reconciler.Memo
)

// H creates an element of a host tag, a component or a memo component.
// The "key" and "ref" props are not passed down.
func H(typ any, props Props, children ...Node) *Element {
	return reconciler.CreateElement(typ, props, children...)
}

// Fragment groups children without adding a host node.
func Fragment(children ...Node) *Element {
	return reconciler.CreateElement(reconciler.FragmentType{}, nil, children...)
}

// KeyedFragment is a Fragment that keeps its identity among keyed siblings.
func KeyedFragment(key string, children ...Node) *Element {
	return reconciler.CreateElement(reconciler.FragmentType{}, Props{"key": key}, children...)
}

// Memo wraps render so it is skipped when its props did not change.
// A nil compare compares props shallowly.
func Memo(render Component, compare func(prev, next Props) bool) *MemoComponent {
	return &reconciler.Memo{Render: render, Compare: compare}
}
