package fiber

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/fiber/host/memory"
)

func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	rt, err := NewRuntime(append([]Option{WithLogger(nil)}, opts...)...)
	require.NoError(t, err)
	return rt
}

func TestRoot(t *testing.T) {
	t.Run("sync roots commit before Render returns", func(t *testing.T) {
		container := memory.NewContainer()

		root := Render(H("p", Props{"id": "a"}, "one"), container)
		assert.Equal(t, `<p id="a">one</p>`, container.InnerMarkup())

		root.Render(H("p", Props{"id": "a"}, "two"))
		assert.Equal(t, `<p id="a">two</p>`, container.InnerMarkup())
		assert.Same(t, container, root.Container())
		assert.Same(t, GetRuntime(), root.Runtime())
	})

	t.Run("concurrent roots commit when flushed", func(t *testing.T) {
		rt := newTestRuntime(t)
		container := memory.NewContainer()

		root := rt.NewRoot(container, WithConcurrent())
		root.Render("hello")
		assert.Equal(t, "", container.InnerMarkup())

		rt.Flush()
		assert.Equal(t, "hello", container.InnerMarkup())

		root.Unmount()
		rt.Flush()
		assert.Equal(t, "", container.InnerMarkup())
	})

	t.Run("flush sync skips the scheduler", func(t *testing.T) {
		rt := newTestRuntime(t)
		container := memory.NewContainer()
		root := rt.NewRoot(container, WithConcurrent())

		rt.FlushSync(func() { root.Render("now") })

		assert.Equal(t, "now", container.InnerMarkup())
	})

	t.Run("unmount runs cleanups", func(t *testing.T) {
		rt := newTestRuntime(t)
		log := []string{}
		comp := func(d Dispatcher, props Props) Node {
			UseEffect(d, func() func() {
				log = append(log, "effect")
				return func() { log = append(log, "cleanup") }
			}, Deps())
			return H("div", nil)
		}

		root := rt.NewRoot(memory.NewContainer())
		root.Render(H(comp, nil))
		rt.Flush()
		root.Unmount()

		assert.Equal(t, []string{"effect", "cleanup"}, log)
	})

	t.Run("each goroutine has its own default runtime", func(t *testing.T) {
		mine := GetRuntime()
		assert.Same(t, mine, GetRuntime())

		other := make(chan *Runtime, 1)
		go func() { other <- GetRuntime() }()

		assert.NotSame(t, mine, <-other)
	})

	t.Run("custom renderer", func(t *testing.T) {
		renderer := memory.New()
		rt := newTestRuntime(t, WithRenderer(renderer))

		rt.NewRoot(memory.NewContainer()).Render("x")

		assert.Same(t, renderer, rt.Renderer())
		assert.Equal(t, []string{`create "x"`, `append root > "x"`}, renderer.Ops())
	})

	t.Run("warnings go to the log handler", func(t *testing.T) {
		var buf bytes.Buffer
		rt := newTestRuntime(t, WithLogHandler(slog.NewTextHandler(&buf, nil), logiface.LevelWarning))
		var set Setter[int]
		comp := func(d Dispatcher, props Props) Node {
			_, set = UseState(d, 0)
			return nil
		}

		root := rt.NewRoot(memory.NewContainer())
		root.Render(H(comp, nil))
		root.Unmount()
		set.Set(1)

		assert.Contains(t, buf.String(), "state update on an unmounted component")
	})

	t.Run("runs on an event loop", func(t *testing.T) {
		loop, err := eventloop.New()
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = loop.Run(ctx) }()
		defer loop.Shutdown(context.Background())

		rt := newTestRuntime(t, WithEventLoop(loop))
		container := memory.NewContainer()
		done := make(chan string, 1)
		app := func(d Dispatcher, props Props) Node {
			UseEffect(d, func() func() {
				done <- container.InnerMarkup()
				return nil
			}, Deps())
			return H("p", nil, "on the loop")
		}

		require.NoError(t, loop.Submit(func() {
			rt.NewRoot(container, WithConcurrent()).Render(H(app, nil))
		}))

		select {
		case markup := <-done:
			assert.Equal(t, "<p>on the loop</p>", markup)
		case <-time.After(5 * time.Second):
			t.Fatal("root did not render on the event loop")
		}
	})
}

func TestPriority(t *testing.T) {
	rt := newTestRuntime(t)
	container := memory.NewContainer()
	log := []string{}
	var set Setter[string]
	comp := func(d Dispatcher, props Props) Node {
		var s string
		s, set = UseState(d, "")
		log = append(log, "render "+s)
		return s
	}
	appendText := func(suffix string) func(string) string {
		return func(prev string) string { return prev + suffix }
	}

	root := rt.NewRoot(container, WithConcurrent())
	root.Render(H(comp, nil))
	rt.Flush()

	rt.RunWithPriority(LowPriority, func() { set.Update(appendText("a")) })
	rt.RunWithPriority(UserBlockingPriority, func() { set.Update(appendText("b")) })
	rt.Flush()

	assert.Equal(t, []string{"render ", "render b", "render ab"}, log)
	assert.Equal(t, "ab", container.InnerMarkup())
}
