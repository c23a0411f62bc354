package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/joeycumines/go-eventloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopHost(t *testing.T) {
	loop, err := eventloop.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()
	defer loop.Shutdown(context.Background())

	host, err := NewLoopHost(loop, nil)
	require.NoError(t, err)

	done := make(chan []string, 1)

	require.NoError(t, loop.Submit(func() {
		s := New(host)
		log := []string{}

		s.ScheduleCallback(NormalPriority, func(bool) Callback {
			log = append(log, "delayed")
			done <- log
			return nil
		}, WithDelay(10*time.Millisecond))
		s.ScheduleCallback(LowPriority, func(bool) Callback {
			log = append(log, "low")
			return nil
		})
		s.ScheduleCallback(ImmediatePriority, func(bool) Callback {
			log = append(log, "immediate")
			return nil
		})
	}))

	select {
	case log := <-done:
		assert.Equal(t, []string{"immediate", "low", "delayed"}, log)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not run on the event loop")
	}
}
