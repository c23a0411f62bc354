package fiber

import (
	"log/slog"
	"time"

	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"

	"github.com/AnatoleLucet/fiber/host"
	"github.com/AnatoleLucet/fiber/internal/logging"
	"github.com/AnatoleLucet/fiber/internal/scheduler"
)

// Host is the macrotask primitive a runtime's scheduler yields to.
type Host = scheduler.Host

type config struct {
	host          Host
	loop          *eventloop.Loop
	renderer      host.Renderer
	logger        *logging.Logger
	yieldInterval time.Duration
}

// Option configures a Runtime.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithHost drives the scheduler with h. Without a host, the runtime keeps its
// own virtual clock and only works when flushed.
func WithHost(h Host) Option {
	return optionFunc(func(c *config) {
		c.host = h
	})
}

// WithEventLoop runs every scheduler turn as a task of loop. The runtime must
// then only be used from inside loop tasks.
func WithEventLoop(loop *eventloop.Loop) Option {
	return optionFunc(func(c *config) {
		c.loop = loop
	})
}

// WithRenderer sets the host renderer. Defaults to the in-memory renderer.
func WithRenderer(r host.Renderer) Option {
	return optionFunc(func(c *config) {
		c.renderer = r
	})
}

// WithLogger replaces the default logger. A nil logger discards everything.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return optionFunc(func(c *config) {
		c.logger = logger
	})
}

// WithLogHandler logs to a slog handler, filtering below level.
func WithLogHandler(handler slog.Handler, level logiface.Level) Option {
	return optionFunc(func(c *config) {
		c.logger = logging.New(handler, level)
	})
}

// WithYieldInterval sets how long a concurrent render may run before yielding.
func WithYieldInterval(d time.Duration) Option {
	return optionFunc(func(c *config) {
		c.yieldInterval = d
	})
}

func resolveOptions(opts []Option) *config {
	cfg := &config{logger: logging.Default()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}

type rootConfig struct {
	runtime    *Runtime
	concurrent bool
}

// RootOption configures a Root.
type RootOption interface {
	applyRoot(*rootConfig)
}

type rootOptionFunc func(*rootConfig)

func (f rootOptionFunc) applyRoot(c *rootConfig) { f(c) }

// WithRuntime attaches the root to rt instead of the goroutine's default runtime.
func WithRuntime(rt *Runtime) RootOption {
	return rootOptionFunc(func(c *rootConfig) {
		c.runtime = rt
	})
}

// WithConcurrent makes every render of the root go through the scheduler,
// interruptible and prioritized, instead of rendering synchronously.
func WithConcurrent() RootOption {
	return rootOptionFunc(func(c *rootConfig) {
		c.concurrent = true
	})
}

func resolveRootOptions(opts []RootOption) *rootConfig {
	cfg := &rootConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyRoot(cfg)
	}
	return cfg
}
