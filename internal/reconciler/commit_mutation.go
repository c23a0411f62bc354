package reconciler

import (
	"github.com/AnatoleLucet/fiber/host"
)

func (r *Runtime) commitMutationEffects(f *Fiber) {
	if f.effectTag.HasRef() {
		if current := f.alternate; current != nil && current.ref != nil {
			current.ref.Current = nil
		}
	}

	switch f.effectTag.mutation() {
	case Placement:
		r.commitPlacement(f)
		f.effectTag &^= Placement
	case PlacementAndUpdate:
		r.commitPlacement(f)
		f.effectTag &^= Placement
		r.commitWork(f.alternate, f)
	case Update:
		r.commitWork(f.alternate, f)
	case Deletion:
		r.commitDeletion(f)
	}
}

func (r *Runtime) hostParent(f *Fiber) (*Fiber, host.Instance) {
	for parent := f.parent; parent != nil; parent = parent.parent {
		switch parent.tag {
		case HostComponent:
			return parent, parent.stateNode
		case HostRoot:
			return parent, parent.stateNode.(*FiberRoot).container
		}
	}
	panic(ErrNoHostParent)
}

// hostSibling finds the host node f has to be inserted before: the first host
// node after f that is already in place.
func hostSibling(f *Fiber) host.Instance {
	node := f
siblings:
	for {
		for node.sibling == nil {
			if node.parent == nil || isHostParent(node.parent) {
				return nil
			}
			node = node.parent
		}
		node.sibling.parent = node.parent
		node = node.sibling

		for !isHostNode(node) {
			// a placed subtree is not in the host tree yet
			if node.effectTag.HasPlacement() || node.child == nil {
				continue siblings
			}
			node.child.parent = node
			node = node.child
		}

		if !node.effectTag.HasPlacement() {
			return node.stateNode
		}
	}
}

func (r *Runtime) commitPlacement(f *Fiber) {
	_, parent := r.hostParent(f)
	before := hostSibling(f)
	r.insertOrAppendPlacementNode(f, before, parent)
}

func (r *Runtime) insertOrAppendPlacementNode(f *Fiber, before, parent host.Instance) {
	if isHostNode(f) {
		if before != nil {
			r.renderer.InsertBefore(parent, f.stateNode, before)
		} else {
			r.renderer.AppendChild(parent, f.stateNode)
		}
		return
	}

	for child := f.child; child != nil; child = child.sibling {
		r.insertOrAppendPlacementNode(child, before, parent)
	}
}

func (r *Runtime) commitWork(current, f *Fiber) {
	switch f.tag {
	case FunctionComponent, MemoComponent:
		r.commitHookEffectListUnmount(HookLayout|HookHasEffect, f)

	case HostComponent:
		if f.stateNode == nil {
			return
		}
		patch, _ := f.updateQueue.(host.Patch)
		f.updateQueue = nil
		if len(patch) > 0 {
			r.renderer.CommitPropertyPatches(f.stateNode, f.typ.(string), patch)
		}
		// listeners are read from the latest committed fiber
		r.precache(f.stateNode, f)

	case HostText:
		var oldText string
		if current != nil {
			oldText, _ = current.memoizedProps.(string)
		}
		newText, _ := f.memoizedProps.(string)
		r.renderer.CommitTextUpdate(f.stateNode, oldText, newText)
		r.precache(f.stateNode, f)
	}
}

func (r *Runtime) commitDeletion(current *Fiber) {
	r.unmountHostComponents(current)

	alternate := current.alternate
	detachFiber(current)
	if alternate != nil {
		detachFiber(alternate)
	}
}

// unmountHostComponents removes the top host nodes of the deleted subtree from
// their host parent, after running the cleanups of everything below them.
func (r *Runtime) unmountHostComponents(current *Fiber) {
	var parent host.Instance
	found := false

	node := current
	for {
		if !found {
			_, parent = r.hostParent(node)
			found = true
		}

		if isHostNode(node) {
			r.commitNestedUnmounts(node)
			r.renderer.RemoveChild(parent, node.stateNode)
		} else {
			r.commitUnmount(node)
			if node.child != nil {
				node.child.parent = node
				node = node.child
				continue
			}
		}

		if node == current {
			return
		}
		for node.sibling == nil {
			if node.parent == nil || node.parent == current {
				return
			}
			node = node.parent
		}
		node.sibling.parent = node.parent
		node = node.sibling
	}
}

// commitNestedUnmounts unmounts the whole subtree below a host node, parents first.
func (r *Runtime) commitNestedUnmounts(root *Fiber) {
	node := root
	for {
		r.commitUnmount(node)

		if node.child != nil {
			node.child.parent = node
			node = node.child
			continue
		}
		if node == root {
			return
		}
		for node.sibling == nil {
			if node.parent == nil || node.parent == root {
				return
			}
			node = node.parent
		}
		node.sibling.parent = node.parent
		node = node.sibling
	}
}

func (r *Runtime) commitUnmount(f *Fiber) {
	switch f.tag {
	case FunctionComponent, MemoComponent:
		q, _ := f.updateQueue.(*functionUpdateQueue)
		q.each(func(e *effect) {
			destroy := e.destroy
			e.destroy = nil
			if destroy != nil {
				r.safelyCallDestroy(f, destroy)
			}
		})

	case HostComponent:
		if ref := f.ref; ref != nil {
			ref.Current = nil
		}
	}
}

func (r *Runtime) safelyCallDestroy(f *Fiber, destroy func()) {
	r.commitSafely("unmount", f, func(*Fiber) { destroy() })
}

// detachFiber cuts a deleted fiber off the tree, so updates dispatched from
// its hooks no longer find a root.
func detachFiber(f *Fiber) {
	f.parent = nil
	f.child = nil
	f.memoizedState = nil
	f.updateQueue = nil
	f.alternate = nil
	f.firstEffect = nil
	f.lastEffect = nil
	f.pendingProps = nil
	f.memoizedProps = nil
	f.stateNode = nil
}
