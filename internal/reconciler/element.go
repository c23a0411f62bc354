package reconciler

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/AnatoleLucet/fiber/host"
)

// Node is anything a component can return: an *Element, text (strings and
// numbers), a slice of nodes, or nil/bool for nothing.
type Node = any

type Props = host.Props

// Ref is a mutable box. Host refs receive the host instance on commit.
type Ref struct {
	Current any
}

// Component is a function component. Hooks are called through d.
type Component func(d Dispatcher, props Props) Node

// Element describes one node of the tree to render.
type Element struct {
	// Type is a host tag (string), a Component, a *Memo or FragmentType.
	Type  any
	Key   string
	Ref   *Ref
	Props Props
}

// FragmentType groups children without a host node.
type FragmentType struct{}

// Memo skips re-rendering Render while Compare reports equal props.
// A nil Compare compares props shallowly.
type Memo struct {
	Render  Component
	Compare func(prev, next Props) bool
}

// CreateElement builds an element. The "key" and "ref" props are lifted out
// of props; a single child is stored as is, several as a []Node.
func CreateElement(typ any, props Props, children ...Node) *Element {
	el := &Element{Type: normalizeType(typ)}

	p := make(Props, len(props)+1)
	for k, v := range props {
		switch k {
		case "key":
			if v != nil {
				el.Key = fmt.Sprint(v)
			}
		case "ref":
			el.Ref, _ = v.(*Ref)
		default:
			p[k] = v
		}
	}

	switch len(children) {
	case 0:
	case 1:
		p["children"] = children[0]
	default:
		p["children"] = children
	}
	el.Props = p

	return el
}

func normalizeType(typ any) any {
	if fn, ok := typ.(func(Dispatcher, Props) Node); ok {
		return Component(fn)
	}
	return typ
}

func isFragment(el *Element) bool {
	_, ok := el.Type.(FragmentType)
	return ok
}

// TextOf reports whether node renders as a text node.
func TextOf(node Node) (string, bool) {
	switch v := node.(type) {
	case string:
		return v, true
	case nil, bool, *Element:
		return "", false
	}

	rv := reflect.ValueOf(node)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), true
	case reflect.String:
		return rv.String(), true
	}
	return "", false
}

// NodesOf reports whether node is a list of children.
func NodesOf(node Node) ([]Node, bool) {
	switch v := node.(type) {
	case []Node:
		return v, true
	case []*Element:
		nodes := make([]Node, len(v))
		for i, el := range v {
			nodes[i] = el
		}
		return nodes, true
	case nil, string:
		return nil, false
	}

	rv := reflect.ValueOf(node)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	nodes := make([]Node, rv.Len())
	for i := range nodes {
		nodes[i] = rv.Index(i).Interface()
	}
	return nodes, true
}
