package scheduler

import (
	"container/heap"
	"time"
)

// Callback is the unit of work run by the scheduler.
// Returning a non-nil Callback keeps the task alive as a continuation.
type Callback func(didTimeout bool) Callback

type Task struct {
	id       uint64
	callback Callback
	priority Priority

	startTime      time.Duration
	expirationTime time.Duration
	sortIndex      time.Duration

	index int // position in its heap, -1 when detached
}

func (t *Task) ID() uint64 { return t.id }

func (t *Task) Priority() Priority { return t.priority }

func (t *Task) ExpirationTime() time.Duration { return t.expirationTime }

// Cancelled reports whether the task will never run again,
// either because it was cancelled or because it already completed.
func (t *Task) Cancelled() bool { return t.callback == nil }

// taskHeap is a min-heap ordered by sortIndex, then by id.
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].sortIndex != h[j].sortIndex {
		return h[i].sortIndex < h[j].sortIndex
	}
	return h[i].id < h[j].id
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

func (h *taskHeap) push(t *Task) { heap.Push(h, t) }

func (h *taskHeap) peek() *Task {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

func (h *taskHeap) pop() *Task {
	if len(*h) == 0 {
		return nil
	}
	return heap.Pop(h).(*Task)
}
