// Package scheduler is a cooperative, priority based task scheduler.
//
// Ready tasks are ordered by expiration time, delayed tasks by start time.
// Each host turn runs tasks until the time slice is spent, then yields back
// to the host and resumes on the next turn.
package scheduler

import (
	"fmt"
	"time"

	"github.com/AnatoleLucet/fiber/internal/logging"
)

type Scheduler struct {
	host   Host
	logger *logging.Logger

	yieldInterval time.Duration
	deadline      time.Duration

	taskQueue  taskHeap
	timerQueue taskHeap
	nextID     uint64

	currentTask     *Task
	currentPriority Priority

	// guards against re-entrant flushes
	isPerformingWork        bool
	isHostCallbackScheduled bool
	isHostTimeoutScheduled  bool
	isMessageLoopRunning    bool

	sync syncQueue
}

func New(host Host, opts ...Option) *Scheduler {
	cfg := resolveOptions(opts)

	s := &Scheduler{
		host:            host,
		logger:          cfg.logger,
		yieldInterval:   cfg.yieldInterval,
		currentPriority: NormalPriority,
	}
	s.sync.node = &Task{index: -1}

	return s
}

func (s *Scheduler) Now() time.Duration {
	return s.host.Now()
}

func (s *Scheduler) CurrentPriorityLevel() Priority {
	return s.currentPriority
}

// RunWithPriority runs fn with the current priority set to priority.
func (s *Scheduler) RunWithPriority(priority Priority, fn func()) {
	if !priority.Valid() {
		panic(fmt.Errorf("%w: %d", ErrInvalidPriority, priority))
	}

	prev := s.currentPriority
	s.currentPriority = priority
	defer func() { s.currentPriority = prev }()

	fn()
}

// ShouldYieldToHost reports whether the current time slice is spent.
func (s *Scheduler) ShouldYieldToHost() bool {
	return s.host.Now() >= s.deadline
}

// ScheduleCallback queues cb at the given priority and returns its task handle.
func (s *Scheduler) ScheduleCallback(priority Priority, cb Callback, opts ...ScheduleOption) *Task {
	if !priority.Valid() {
		panic(fmt.Errorf("%w: %d", ErrInvalidPriority, priority))
	}

	cfg := resolveScheduleOptions(opts)
	now := s.host.Now()

	startTime := now
	if cfg.delay > 0 {
		startTime += cfg.delay
	}

	timeout := priority.Timeout()
	if cfg.hasTimeout {
		timeout = cfg.timeout
	}

	s.nextID++
	task := &Task{
		id:             s.nextID,
		callback:       cb,
		priority:       priority,
		startTime:      startTime,
		expirationTime: startTime + timeout,
		index:          -1,
	}

	if startTime > now {
		task.sortIndex = startTime
		s.timerQueue.push(task)

		// the earliest delayed task, with nothing ready to run
		if s.taskQueue.peek() == nil && task == s.timerQueue.peek() {
			if s.isHostTimeoutScheduled {
				s.host.CancelTimeout()
			} else {
				s.isHostTimeoutScheduled = true
			}
			s.host.RequestTimeout(s.handleTimeout, startTime-now)
		}
		return task
	}

	task.sortIndex = task.expirationTime
	s.taskQueue.push(task)

	if !s.isHostCallbackScheduled && !s.isPerformingWork {
		s.isHostCallbackScheduled = true
		s.requestHostCallback()
	}

	return task
}

// CancelCallback prevents a task from running. The heap entry is dropped lazily.
func (s *Scheduler) CancelCallback(task *Task) {
	if task == nil {
		return
	}
	task.callback = nil
}

// Pending is the number of queued tasks, including cancelled ones not yet dropped.
func (s *Scheduler) Pending() int {
	return s.taskQueue.Len() + s.timerQueue.Len()
}

func (s *Scheduler) requestHostCallback() {
	if s.isMessageLoopRunning {
		return
	}
	s.isMessageLoopRunning = true
	s.host.RequestCallback(s.performWorkUntilDeadline)
}

func (s *Scheduler) performWorkUntilDeadline() {
	now := s.host.Now()
	s.deadline = now + s.yieldInterval

	hasMoreWork := true
	defer func() {
		// a panicking task still leaves the rest of the queue to run
		if hasMoreWork {
			s.host.RequestCallback(s.performWorkUntilDeadline)
			return
		}
		s.isMessageLoopRunning = false
	}()

	hasMoreWork = s.flushWork(now)
}

func (s *Scheduler) flushWork(initialTime time.Duration) bool {
	s.isHostCallbackScheduled = false
	if s.isHostTimeoutScheduled {
		s.isHostTimeoutScheduled = false
		s.host.CancelTimeout()
	}

	s.isPerformingWork = true
	prevPriority := s.currentPriority
	defer func() {
		s.currentTask = nil
		s.currentPriority = prevPriority
		s.isPerformingWork = false
	}()

	return s.workLoop(initialTime)
}

func (s *Scheduler) workLoop(now time.Duration) bool {
	s.advanceTimers(now)
	s.currentTask = s.taskQueue.peek()

	for s.currentTask != nil {
		task := s.currentTask
		if task.expirationTime > now && s.ShouldYieldToHost() {
			break
		}

		cb := task.callback
		if cb == nil {
			s.taskQueue.pop()
			s.currentTask = s.taskQueue.peek()
			continue
		}

		task.callback = nil
		s.currentPriority = task.priority
		didTimeout := task.expirationTime <= now

		continuation := cb(didTimeout)
		now = s.host.Now()

		if continuation != nil {
			task.callback = continuation
		} else if task == s.taskQueue.peek() {
			s.taskQueue.pop()
		}

		s.advanceTimers(now)
		s.currentTask = s.taskQueue.peek()
	}

	if s.currentTask != nil {
		return true
	}

	if first := s.timerQueue.peek(); first != nil {
		s.requestHostTimeout(first.startTime - now)
	}
	return false
}

// advanceTimers moves every due timer into the task queue.
func (s *Scheduler) advanceTimers(now time.Duration) {
	for timer := s.timerQueue.peek(); timer != nil; timer = s.timerQueue.peek() {
		switch {
		case timer.callback == nil:
			s.timerQueue.pop()
		case timer.startTime <= now:
			s.timerQueue.pop()
			timer.sortIndex = timer.expirationTime
			s.taskQueue.push(timer)
		default:
			return
		}
	}
}

func (s *Scheduler) handleTimeout() {
	s.isHostTimeoutScheduled = false
	now := s.host.Now()
	s.advanceTimers(now)

	if s.isHostCallbackScheduled {
		return
	}

	if s.taskQueue.peek() != nil {
		s.isHostCallbackScheduled = true
		s.requestHostCallback()
		return
	}

	if first := s.timerQueue.peek(); first != nil {
		s.requestHostTimeout(first.startTime - now)
	}
}

func (s *Scheduler) requestHostTimeout(d time.Duration) {
	if s.isHostTimeoutScheduled {
		s.host.CancelTimeout()
	}
	s.isHostTimeoutScheduled = true
	s.host.RequestTimeout(s.handleTimeout, d)
}
