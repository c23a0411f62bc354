package reconciler

import (
	"fmt"

	"github.com/AnatoleLucet/fiber/internal/scheduler"
)

// ExpirationTime orders pending work. Larger values are more urgent.
type ExpirationTime int64

const (
	NoWork ExpirationTime = 0
	// Never is work that was deprioritized, like a hidden subtree.
	Never ExpirationTime = 1
	Idle  ExpirationTime = 2
	Sync  ExpirationTime = 1<<30 - 1
	// Batched is just below Sync, used by batched legacy updates.
	Batched ExpirationTime = Sync - 1
)

const (
	unitSize          = 10
	magicNumberOffset = Batched - 1

	lowPriorityExpiration  = 5000
	lowPriorityBatchSize   = 250
	highPriorityExpiration = 150
	highPriorityBatchSize  = 100
)

func msToExpirationTime(ms int64) ExpirationTime {
	// 1 unit of expiration time represents 10ms
	return magicNumberOffset - ExpirationTime(ms/unitSize)
}

func expirationTimeToMs(e ExpirationTime) int64 {
	return int64(magicNumberOffset-e) * unitSize
}

func ceiling(num, precision int64) int64 {
	return (num/precision + 1) * precision
}

func computeExpirationBucket(current ExpirationTime, expirationMs, bucketSizeMs int64) ExpirationTime {
	return magicNumberOffset - ExpirationTime(ceiling(
		int64(magicNumberOffset-current)+expirationMs/unitSize,
		bucketSizeMs/unitSize,
	))
}

// computeAsyncExpiration buckets normal updates into 250ms windows about 5s out,
// so updates issued close together share an expiration time and batch.
func computeAsyncExpiration(current ExpirationTime) ExpirationTime {
	return computeExpirationBucket(current, lowPriorityExpiration, lowPriorityBatchSize)
}

func computeUserBlockingExpiration(current ExpirationTime) ExpirationTime {
	return computeExpirationBucket(current, highPriorityExpiration, highPriorityBatchSize)
}

// inferPriority maps an expiration time back to a scheduler priority.
func inferPriority(current, expirationTime ExpirationTime) scheduler.Priority {
	if expirationTime == Sync {
		return scheduler.ImmediatePriority
	}
	if expirationTime == Never || expirationTime <= Idle {
		return scheduler.IdlePriority
	}

	msUntil := expirationTimeToMs(expirationTime) - expirationTimeToMs(current)
	switch {
	case msUntil <= 0:
		return scheduler.ImmediatePriority
	case msUntil <= highPriorityExpiration+highPriorityBatchSize:
		return scheduler.UserBlockingPriority
	case msUntil <= lowPriorityExpiration+lowPriorityBatchSize:
		return scheduler.NormalPriority
	default:
		return scheduler.IdlePriority
	}
}

func (e ExpirationTime) String() string {
	switch e {
	case NoWork:
		return "none"
	case Never:
		return "never"
	case Idle:
		return "idle"
	case Sync:
		return "sync"
	case Batched:
		return "batched"
	}
	return fmt.Sprintf("t%d", int64(e))
}
