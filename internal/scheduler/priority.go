package scheduler

import (
	"errors"
	"fmt"
	"time"
)

type Priority int

const (
	NoPriority           Priority = 90
	IdlePriority         Priority = 95
	LowPriority          Priority = 96
	NormalPriority       Priority = 97
	UserBlockingPriority Priority = 98
	ImmediatePriority    Priority = 99
)

const (
	// immediate tasks are already expired when scheduled
	immediatePriorityTimeout    = -1 * time.Millisecond
	userBlockingPriorityTimeout = 250 * time.Millisecond
	normalPriorityTimeout       = 5000 * time.Millisecond
	lowPriorityTimeout          = 10000 * time.Millisecond
	// 2^30-1 ms, max 31 bit integer, never expires in practice
	idlePriorityTimeout = 1073741823 * time.Millisecond
)

var ErrInvalidPriority = errors.New("unknown priority level")

func (p Priority) Valid() bool {
	return p >= IdlePriority && p <= ImmediatePriority
}

func (p Priority) String() string {
	switch p {
	case ImmediatePriority:
		return "immediate"
	case UserBlockingPriority:
		return "user-blocking"
	case NormalPriority:
		return "normal"
	case LowPriority:
		return "low"
	case IdlePriority:
		return "idle"
	case NoPriority:
		return "none"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// Timeout is how long a task of this priority may wait before it expires.
func (p Priority) Timeout() time.Duration {
	switch p {
	case ImmediatePriority:
		return immediatePriorityTimeout
	case UserBlockingPriority:
		return userBlockingPriorityTimeout
	case IdlePriority:
		return idlePriorityTimeout
	case LowPriority:
		return lowPriorityTimeout
	default:
		return normalPriorityTimeout
	}
}
