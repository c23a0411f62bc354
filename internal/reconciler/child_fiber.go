package reconciler

import "slices"

// childReconciler diffs a fiber's old children against new ones.
// Without side effect tracking (initial mount) nothing is tagged: the whole
// subtree is placed at once by its closest placed ancestor.
type childReconciler struct {
	trackSideEffects bool
}

var (
	reconcileChildFibers = childReconciler{trackSideEffects: true}
	mountChildFibers     = childReconciler{trackSideEffects: false}
)

type childKey struct {
	key   string
	index int
}

func keyOf(key string, index int) childKey {
	if key != "" {
		return childKey{key: key, index: -1}
	}
	return childKey{index: index}
}

func (c childReconciler) deleteChild(returnFiber, child *Fiber) {
	if !c.trackSideEffects {
		return
	}

	// deletions come first in the parent's effect list
	if last := returnFiber.lastEffect; last != nil {
		last.nextEffect = child
		returnFiber.lastEffect = child
	} else {
		returnFiber.firstEffect = child
		returnFiber.lastEffect = child
	}
	child.nextEffect = nil
	child.effectTag = Deletion
}

func (c childReconciler) deleteRemainingChildren(returnFiber, current *Fiber) *Fiber {
	if !c.trackSideEffects {
		return nil
	}
	for child := current; child != nil; child = child.sibling {
		c.deleteChild(returnFiber, child)
	}
	return nil
}

func mapRemainingChildren(current *Fiber) map[childKey]*Fiber {
	existing := make(map[childKey]*Fiber)
	for child := current; child != nil; child = child.sibling {
		existing[keyOf(child.key, child.index)] = child
	}
	return existing
}

func useFiber(f *Fiber, pendingProps any) *Fiber {
	clone := createWorkInProgress(f, pendingProps)
	clone.index = 0
	clone.sibling = nil
	return clone
}

// placeChild records newIndex and tags the fiber when it has to be inserted
// or moved. lastPlacedIndex is the highest old index kept in place so far.
func (c childReconciler) placeChild(f *Fiber, lastPlacedIndex, newIndex int) int {
	f.index = newIndex
	if !c.trackSideEffects {
		return lastPlacedIndex
	}

	current := f.alternate
	if current == nil {
		f.effectTag = Placement
		return lastPlacedIndex
	}

	oldIndex := current.index
	if oldIndex < lastPlacedIndex {
		// moved
		f.effectTag = Placement
		return lastPlacedIndex
	}
	return oldIndex
}

func (c childReconciler) placeSingleChild(f *Fiber) *Fiber {
	if c.trackSideEffects && f.alternate == nil {
		f.effectTag = Placement
	}
	return f
}

func (c childReconciler) updateTextNode(returnFiber, current *Fiber, text string, exp ExpirationTime) *Fiber {
	if current == nil || current.tag != HostText {
		created := createFiberFromText(text, returnFiber.mode, exp)
		created.parent = returnFiber
		return created
	}
	existing := useFiber(current, text)
	existing.parent = returnFiber
	return existing
}

func (c childReconciler) updateElement(returnFiber, current *Fiber, el *Element, exp ExpirationTime) *Fiber {
	if current != nil && sameType(current.typ, normalizeType(el.Type)) {
		existing := useFiber(current, el.Props)
		existing.ref = el.Ref
		existing.parent = returnFiber
		return existing
	}
	created := createFiberFromElement(el, returnFiber.mode, exp)
	created.ref = el.Ref
	created.parent = returnFiber
	return created
}

func (c childReconciler) updateFragment(returnFiber, current *Fiber, children Node, exp ExpirationTime, key string) *Fiber {
	if current == nil || current.tag != Fragment {
		created := createFiberFromFragment(children, returnFiber.mode, exp, key)
		created.parent = returnFiber
		return created
	}
	existing := useFiber(current, children)
	existing.parent = returnFiber
	return existing
}

func (c childReconciler) createChild(returnFiber *Fiber, child Node, exp ExpirationTime) *Fiber {
	if text, ok := TextOf(child); ok {
		created := createFiberFromText(text, returnFiber.mode, exp)
		created.parent = returnFiber
		return created
	}

	if el, ok := child.(*Element); ok && el != nil {
		created := createFiberFromElement(el, returnFiber.mode, exp)
		created.ref = el.Ref
		created.parent = returnFiber
		return created
	}

	if _, ok := NodesOf(child); ok {
		created := createFiberFromFragment(child, returnFiber.mode, exp, "")
		created.parent = returnFiber
		return created
	}

	return nil
}

// updateSlot reuses old when the new child has the same key, and returns nil
// when the keys do not match.
func (c childReconciler) updateSlot(returnFiber, old *Fiber, child Node, exp ExpirationTime) *Fiber {
	key := ""
	if old != nil {
		key = old.key
	}

	if text, ok := TextOf(child); ok {
		// text has no key, a keyed old fiber cannot be a text node
		if key != "" {
			return nil
		}
		return c.updateTextNode(returnFiber, old, text, exp)
	}

	if el, ok := child.(*Element); ok && el != nil {
		if el.Key != key {
			return nil
		}
		if isFragment(el) {
			return c.updateFragment(returnFiber, old, el.Props["children"], exp, key)
		}
		return c.updateElement(returnFiber, old, el, exp)
	}

	if _, ok := NodesOf(child); ok {
		if key != "" {
			return nil
		}
		return c.updateFragment(returnFiber, old, child, exp, "")
	}

	return nil
}

func (c childReconciler) updateFromMap(existing map[childKey]*Fiber, returnFiber *Fiber, newIdx int, child Node, exp ExpirationTime) *Fiber {
	if text, ok := TextOf(child); ok {
		return c.updateTextNode(returnFiber, existing[keyOf("", newIdx)], text, exp)
	}

	if el, ok := child.(*Element); ok && el != nil {
		matched := existing[keyOf(el.Key, newIdx)]
		if isFragment(el) {
			return c.updateFragment(returnFiber, matched, el.Props["children"], exp, el.Key)
		}
		return c.updateElement(returnFiber, matched, el, exp)
	}

	if _, ok := NodesOf(child); ok {
		return c.updateFragment(returnFiber, existing[keyOf("", newIdx)], child, exp, "")
	}

	return nil
}

func (c childReconciler) reconcileChildrenArray(returnFiber, currentFirstChild *Fiber, children []Node, exp ExpirationTime) *Fiber {
	var first, previous *Fiber
	link := func(f *Fiber) {
		if previous == nil {
			first = f
		} else {
			previous.sibling = f
		}
		previous = f
	}

	old := currentFirstChild
	lastPlacedIndex := 0
	newIdx := 0

	// walk both lists while keys keep matching
	for ; old != nil && newIdx < len(children); newIdx++ {
		var nextOld *Fiber
		if old.index > newIdx {
			// a hole left by a skipped child in the old list
			nextOld = old
			old = nil
		} else {
			nextOld = old.sibling
		}

		f := c.updateSlot(returnFiber, old, children[newIdx], exp)
		if f == nil {
			if old == nil {
				old = nextOld
			}
			break
		}
		if c.trackSideEffects && old != nil && f.alternate == nil {
			// matched the slot but could not reuse the fiber
			c.deleteChild(returnFiber, old)
		}
		lastPlacedIndex = c.placeChild(f, lastPlacedIndex, newIdx)
		link(f)
		old = nextOld
	}

	if newIdx == len(children) {
		c.deleteRemainingChildren(returnFiber, old)
		return first
	}

	if old == nil {
		for ; newIdx < len(children); newIdx++ {
			f := c.createChild(returnFiber, children[newIdx], exp)
			if f == nil {
				continue
			}
			lastPlacedIndex = c.placeChild(f, lastPlacedIndex, newIdx)
			link(f)
		}
		return first
	}

	existing := mapRemainingChildren(old)
	for ; newIdx < len(children); newIdx++ {
		f := c.updateFromMap(existing, returnFiber, newIdx, children[newIdx], exp)
		if f == nil {
			continue
		}
		if c.trackSideEffects && f.alternate != nil {
			delete(existing, keyOf(f.key, newIdx))
		}
		lastPlacedIndex = c.placeChild(f, lastPlacedIndex, newIdx)
		link(f)
	}

	if c.trackSideEffects {
		unused := make([]*Fiber, 0, len(existing))
		for _, child := range existing {
			unused = append(unused, child)
		}
		slices.SortFunc(unused, func(a, b *Fiber) int { return a.index - b.index })
		for _, child := range unused {
			c.deleteChild(returnFiber, child)
		}
	}

	return first
}

func (c childReconciler) reconcileSingleElement(returnFiber, currentFirstChild *Fiber, el *Element, exp ExpirationTime) *Fiber {
	typ := normalizeType(el.Type)

	for child := currentFirstChild; child != nil; child = child.sibling {
		if child.key != el.Key {
			c.deleteChild(returnFiber, child)
			continue
		}

		if sameType(child.typ, typ) {
			c.deleteRemainingChildren(returnFiber, child.sibling)

			props := any(el.Props)
			if isFragment(el) {
				props = el.Props["children"]
			}
			existing := useFiber(child, props)
			existing.ref = el.Ref
			existing.parent = returnFiber
			return existing
		}

		// nothing after a key hit with another type is reused
		c.deleteRemainingChildren(returnFiber, child)
		break
	}

	created := createFiberFromElement(el, returnFiber.mode, exp)
	created.ref = el.Ref
	created.parent = returnFiber
	return created
}

func (c childReconciler) reconcileSingleText(returnFiber, currentFirstChild *Fiber, text string, exp ExpirationTime) *Fiber {
	if currentFirstChild != nil && currentFirstChild.tag == HostText {
		c.deleteRemainingChildren(returnFiber, currentFirstChild.sibling)
		existing := useFiber(currentFirstChild, text)
		existing.parent = returnFiber
		return existing
	}

	c.deleteRemainingChildren(returnFiber, currentFirstChild)
	created := createFiberFromText(text, returnFiber.mode, exp)
	created.parent = returnFiber
	return created
}

// reconcile returns the first of the new children of returnFiber.
func (c childReconciler) reconcile(returnFiber, currentFirstChild *Fiber, child Node, exp ExpirationTime) *Fiber {
	// an unkeyed fragment at the top is just its children
	if el, ok := child.(*Element); ok && el != nil && isFragment(el) && el.Key == "" {
		child = el.Props["children"]
	}

	if el, ok := child.(*Element); ok && el != nil {
		return c.placeSingleChild(c.reconcileSingleElement(returnFiber, currentFirstChild, el, exp))
	}

	if text, ok := TextOf(child); ok {
		return c.placeSingleChild(c.reconcileSingleText(returnFiber, currentFirstChild, text, exp))
	}

	if children, ok := NodesOf(child); ok {
		return c.reconcileChildrenArray(returnFiber, currentFirstChild, children, exp)
	}

	return c.deleteRemainingChildren(returnFiber, currentFirstChild)
}
