package reconciler

import (
	"github.com/AnatoleLucet/fiber/host"
	"github.com/AnatoleLucet/fiber/internal/scheduler"
)

type RootTag uint8

const (
	// LegacyRoot renders every update synchronously.
	LegacyRoot RootTag = iota
	// ConcurrentRoot renders updates by priority, yielding between fibers.
	ConcurrentRoot
)

// FiberRoot owns a host container and the committed fiber tree rendered into it.
type FiberRoot struct {
	tag       RootTag
	container host.Instance
	current   *Fiber

	finishedWork           *Fiber
	finishedExpirationTime ExpirationTime

	callbackNode           *scheduler.Task
	callbackExpirationTime ExpirationTime
	callbackPriority       scheduler.Priority

	firstPendingTime ExpirationTime
	lastExpiredTime  ExpirationTime
}

func (root *FiberRoot) Container() host.Instance { return root.container }

// Current is the committed HostRoot fiber.
func (root *FiberRoot) Current() *Fiber { return root.current }

func (root *FiberRoot) Tag() RootTag { return root.tag }

// HasPendingWork reports whether an update has not been committed yet.
func (root *FiberRoot) HasPendingWork() bool {
	return root.firstPendingTime != NoWork || root.lastExpiredTime != NoWork
}

func (r *Runtime) CreateRoot(container host.Instance, tag RootTag) *FiberRoot {
	root := &FiberRoot{
		tag:              tag,
		container:        container,
		callbackPriority: scheduler.NoPriority,
	}

	mode := NoMode
	if tag == ConcurrentRoot {
		mode = ConcurrentMode
	}

	uninitialized := newFiber(HostRoot, nil, "", mode)
	uninitialized.stateNode = root
	initializeRootQueue(uninitialized)
	root.current = uninitialized

	return root
}

// UpdateContainer schedules element to be rendered into root.
// A nil element unmounts the tree.
func (r *Runtime) UpdateContainer(element Node, root *FiberRoot) ExpirationTime {
	current := root.current
	currentTime := r.requestCurrentTimeForUpdate()
	exp := r.computeExpirationForFiber(currentTime, current)

	enqueueUpdate(current, &update{expirationTime: exp, action: element})
	r.scheduleUpdateOnFiber(current, exp)

	return exp
}

func markRootUpdatedAtTime(root *FiberRoot, exp ExpirationTime) {
	if exp > root.firstPendingTime {
		root.firstPendingTime = exp
	}
}

func markRootFinishedAtTime(root *FiberRoot, finished, remaining ExpirationTime) {
	root.firstPendingTime = remaining
	if finished <= root.lastExpiredTime {
		root.lastExpiredTime = NoWork
	}
}

func markRootExpiredAtTime(root *FiberRoot, exp ExpirationTime) {
	if root.lastExpiredTime == NoWork || root.lastExpiredTime > exp {
		root.lastExpiredTime = exp
	}
}

func nextRootExpirationTime(root *FiberRoot) ExpirationTime {
	if root.lastExpiredTime != NoWork {
		return root.lastExpiredTime
	}
	return root.firstPendingTime
}

func remainingExpirationTime(f *Fiber) ExpirationTime {
	return max(f.expirationTime, f.childExpirationTime)
}
