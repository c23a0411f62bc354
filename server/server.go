// Package server renders component trees straight to markup, without a
// host, a scheduler or a commit. Hooks answer with their initial values.
package server

import (
	"fmt"
	"strings"

	"github.com/AnatoleLucet/fiber/host"
	"github.com/AnatoleLucet/fiber/internal/reconciler"
)

// StubDispatcher serves hooks for a render that never updates: state is
// always the initial state, setters do nothing and effects never run.
type StubDispatcher struct{}

var _ reconciler.Dispatcher = StubDispatcher{}

func noop(any) {}

func (StubDispatcher) UseState(initial any) (any, reconciler.Dispatch) {
	if lazy, ok := initial.(func() any); ok {
		initial = lazy()
	}
	return initial, noop
}

func (StubDispatcher) UseReducer(_ reconciler.Reducer, initialArg any, init func(any) any) (any, reconciler.Dispatch) {
	if init != nil {
		return init(initialArg), noop
	}
	return initialArg, noop
}

func (StubDispatcher) UseEffect(reconciler.EffectFunc, []any) {}

func (StubDispatcher) UseLayoutEffect(reconciler.EffectFunc, []any) {}

func (StubDispatcher) UseMemo(create func() any, _ []any) any {
	return create()
}

func (StubDispatcher) UseCallback(callback any, _ []any) any {
	return callback
}

func (StubDispatcher) UseRef(initial any) *reconciler.Ref {
	return &reconciler.Ref{Current: initial}
}

// RenderToString renders node and everything below it to markup.
func RenderToString(node reconciler.Node) (string, error) {
	var b strings.Builder
	if err := render(&b, node); err != nil {
		return "", err
	}
	return b.String(), nil
}

func render(b *strings.Builder, node reconciler.Node) error {
	if text, ok := reconciler.TextOf(node); ok {
		b.WriteString(host.EscapeText(text))
		return nil
	}
	if children, ok := reconciler.NodesOf(node); ok {
		for _, child := range children {
			if err := render(b, child); err != nil {
				return err
			}
		}
		return nil
	}

	el, ok := node.(*reconciler.Element)
	if !ok || el == nil {
		return nil
	}
	children := el.Props["children"]

	switch typ := el.Type.(type) {
	case string:
		b.WriteString("<" + typ)
		host.WriteAttributes(b, el.Props)
		b.WriteString(">")
		if err := render(b, children); err != nil {
			return err
		}
		b.WriteString("</" + typ + ">")
		return nil

	case reconciler.Component:
		return render(b, typ(StubDispatcher{}, el.Props))

	case *reconciler.Memo:
		return render(b, typ.Render(StubDispatcher{}, el.Props))

	case reconciler.FragmentType:
		return render(b, children)
	}

	return fmt.Errorf("%w: %T", reconciler.ErrInvalidElementType, el.Type)
}
