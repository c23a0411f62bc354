// Package host defines the contract between the reconciler and a platform renderer.
package host

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/AnatoleLucet/fiber/internal/equal"
)

// Props are the attributes of an element. Children live under the "children" key.
type Props map[string]any

// Instance is a renderer owned handle to a host node or text node.
type Instance any

// Change is a single property update. A removed property has Removed set.
type Change struct {
	Key     string
	Value   any
	Removed bool
}

// Patch is the ordered list of property changes for one host node.
type Patch []Change

// Renderer is implemented by every platform the reconciler can drive.
// It is only called from the commit phase and from completeWork.
type Renderer interface {
	CreateInstance(tag string, props Props) Instance
	CreateTextInstance(text string) Instance

	AppendChild(parent, child Instance)
	InsertBefore(parent, child, before Instance)
	RemoveChild(parent, child Instance)

	SetInitialProperties(instance Instance, tag string, props Props)
	// DiffProperties returns nil when nothing changed.
	DiffProperties(instance Instance, tag string, oldProps, newProps Props) Patch
	CommitPropertyPatches(instance Instance, tag string, patch Patch)
	CommitTextUpdate(instance Instance, oldText, newText string)
}

// FiberCache is optionally implemented by renderers that can map a host
// node back to the fiber that owns it, for event dispatch.
type FiberCache interface {
	PrecacheFiber(instance Instance, fiber any)
	FiberFromInstance(instance Instance) any
}

// DiffProps compares two prop sets, ignoring children and event listeners.
func DiffProps(oldProps, newProps Props) Patch {
	var patch Patch

	for _, key := range sortedKeys(oldProps) {
		if key == "children" || IsEventProp(key) {
			continue
		}
		if _, ok := newProps[key]; !ok {
			patch = append(patch, Change{Key: key, Removed: true})
		}
	}

	for _, key := range sortedKeys(newProps) {
		if key == "children" || IsEventProp(key) {
			continue
		}
		next := newProps[key]
		if prev, ok := oldProps[key]; ok && equal.SameValue(prev, next) {
			continue
		}
		patch = append(patch, Change{Key: key, Value: next})
	}

	return patch
}

// IsEventProp reports whether key names an event listener, like "onClick".
func IsEventProp(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "on") && key[2] >= 'A' && key[2] <= 'Z'
}

// WriteAttributes writes props as sorted markup attributes.
// Children, listeners and nil or false values are skipped.
func WriteAttributes(b *strings.Builder, props Props) {
	for _, key := range sortedKeys(props) {
		if key == "children" || IsEventProp(key) {
			continue
		}

		switch v := props[key].(type) {
		case nil:
		case bool:
			if v {
				fmt.Fprintf(b, " %s", key)
			}
		case func():
		default:
			fmt.Fprintf(b, ` %s="%s"`, key, html.EscapeString(fmt.Sprint(v)))
		}
	}
}

// EscapeText escapes text content for markup.
func EscapeText(s string) string {
	return html.EscapeString(s)
}

func sortedKeys(props Props) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
