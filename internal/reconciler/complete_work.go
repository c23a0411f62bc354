package reconciler

import (
	"fmt"

	"github.com/AnatoleLucet/fiber/host"
	"github.com/AnatoleLucet/fiber/internal/equal"
)

// completeWork creates or diffs the host node of a finished fiber. Fresh host
// nodes get their whole host subtree appended here, so a new subtree is
// inserted with a single placement.
func (r *Runtime) completeWork(current, wip *Fiber) {
	switch wip.tag {
	case FunctionComponent, MemoComponent, Fragment, HostRoot:
		return

	case HostComponent:
		tag := wip.typ.(string)
		props := propsOf(wip.pendingProps)

		if current != nil && wip.stateNode != nil {
			r.updateHostComponentProps(current, wip, tag, props)
			if current.ref != wip.ref {
				wip.effectTag |= AttachRef
			}
			return
		}

		instance := r.renderer.CreateInstance(tag, props)
		r.precache(instance, wip)
		r.appendAllChildren(instance, wip)
		r.renderer.SetInitialProperties(instance, tag, props)
		wip.stateNode = instance

		if wip.ref != nil {
			wip.effectTag |= AttachRef
		}

	case HostText:
		text, _ := wip.pendingProps.(string)

		if current != nil && wip.stateNode != nil {
			if prev, _ := current.memoizedProps.(string); prev != text {
				wip.effectTag |= Update
			}
			return
		}

		instance := r.renderer.CreateTextInstance(text)
		r.precache(instance, wip)
		wip.stateNode = instance

	default:
		panic(fmt.Errorf("%w: %s", ErrUnknownFiberTag, wip.tag))
	}
}

func (r *Runtime) updateHostComponentProps(current, wip *Fiber, tag string, props Props) {
	oldProps := propsOf(current.memoizedProps)
	if equal.SameValue(oldProps, props) {
		return
	}

	patch := r.renderer.DiffProperties(wip.stateNode, tag, oldProps, props)
	wip.updateQueue = patch
	// a new listener needs no host patch, only a fresh fiber cache entry
	if len(patch) > 0 || (r.cache != nil && listenersChanged(oldProps, props)) {
		wip.effectTag |= Update
	}
}

func listenersChanged(oldProps, newProps Props) bool {
	for key, fn := range newProps {
		if host.IsEventProp(key) && !equal.SameValue(oldProps[key], fn) {
			return true
		}
	}
	for key := range oldProps {
		if _, ok := newProps[key]; !ok && host.IsEventProp(key) {
			return true
		}
	}
	return false
}

// appendAllChildren appends the top host nodes below wip to parent.
func (r *Runtime) appendAllChildren(parent host.Instance, wip *Fiber) {
	node := wip.child
	for node != nil {
		if isHostNode(node) {
			r.renderer.AppendChild(parent, node.stateNode)
		} else if node.child != nil {
			node.child.parent = node
			node = node.child
			continue
		}

		if node == wip {
			return
		}
		for node.sibling == nil {
			if node.parent == nil || node.parent == wip {
				return
			}
			node = node.parent
		}
		node.sibling.parent = node.parent
		node = node.sibling
	}
}

func (r *Runtime) precache(instance host.Instance, f *Fiber) {
	if r.cache != nil {
		r.cache.PrecacheFiber(instance, f)
	}
}
