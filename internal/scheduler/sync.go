package scheduler

import "fmt"

// syncQueue holds callbacks that must run to completion without yielding.
type syncQueue struct {
	callbacks []Callback

	// immediate task that flushes the queue on the next scheduler turn
	flushTask *Task
	flushing  bool

	// handle returned for sync callbacks, they have no task of their own
	node *Task
}

// ScheduleSyncCallback pushes cb onto the sync queue. The queue is flushed on
// the next immediate priority turn, or earlier through FlushSyncCallbackQueue.
// The returned handle only identifies the queue, it cannot cancel cb.
func (s *Scheduler) ScheduleSyncCallback(cb Callback) *Task {
	if s.sync.callbacks == nil {
		s.sync.callbacks = []Callback{cb}
		s.sync.flushTask = s.ScheduleCallback(ImmediatePriority, s.flushSyncQueueTask)
	} else {
		s.sync.callbacks = append(s.sync.callbacks, cb)
	}
	return s.sync.node
}

// SyncTask is the handle returned by ScheduleSyncCallback.
func (s *Scheduler) SyncTask() *Task {
	return s.sync.node
}

// FlushSyncCallbackQueue runs every queued sync callback now.
func (s *Scheduler) FlushSyncCallbackQueue() {
	if task := s.sync.flushTask; task != nil {
		s.sync.flushTask = nil
		s.CancelCallback(task)
	}
	s.flushSyncCallbackQueue()
}

func (s *Scheduler) flushSyncQueueTask(bool) Callback {
	s.sync.flushTask = nil
	s.flushSyncCallbackQueue()
	return nil
}

func (s *Scheduler) flushSyncCallbackQueue() {
	if s.sync.flushing || s.sync.callbacks == nil {
		return
	}
	s.sync.flushing = true

	i := 0
	defer func() {
		s.sync.flushing = false

		r := recover()
		if r == nil {
			return
		}

		// drop the failing callback, keep the rest for a later turn
		if s.sync.callbacks != nil {
			rest := s.sync.callbacks[i+1:]
			if len(rest) == 0 {
				s.sync.callbacks = nil
			} else {
				s.sync.callbacks = append([]Callback(nil), rest...)
			}
		}
		if s.sync.callbacks != nil {
			s.sync.flushTask = s.ScheduleCallback(ImmediatePriority, s.flushSyncQueueTask)
		}

		s.logger.Err().
			Str("panic", fmt.Sprint(r)).
			Int("remaining", len(s.sync.callbacks)).
			Log("sync callback panicked")

		panic(r)
	}()

	s.RunWithPriority(ImmediatePriority, func() {
		// callbacks may push more callbacks while the queue is flushing
		for ; i < len(s.sync.callbacks); i++ {
			cb := s.sync.callbacks[i]
			for cb != nil {
				cb = cb(true)
			}
		}
	})
	s.sync.callbacks = nil
}
