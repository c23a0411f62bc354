package scheduler

import (
	"time"

	"github.com/AnatoleLucet/fiber/internal/logging"
)

const defaultYieldInterval = 5 * time.Millisecond

type options struct {
	yieldInterval time.Duration
	logger        *logging.Logger
}

type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithYieldInterval sets the time slice a scheduler turn may use before yielding.
func WithYieldInterval(d time.Duration) Option {
	return optionFunc(func(o *options) {
		if d > 0 {
			o.yieldInterval = d
		}
	})
}

func WithLogger(logger *logging.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = logger
	})
}

func resolveOptions(opts []Option) *options {
	cfg := &options{yieldInterval: defaultYieldInterval}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}

type scheduleOptions struct {
	delay      time.Duration
	timeout    time.Duration
	hasTimeout bool
}

type ScheduleOption interface {
	applySchedule(*scheduleOptions)
}

type scheduleOptionFunc func(*scheduleOptions)

func (f scheduleOptionFunc) applySchedule(o *scheduleOptions) { f(o) }

// WithDelay parks the task in the timer queue until d has elapsed.
func WithDelay(d time.Duration) ScheduleOption {
	return scheduleOptionFunc(func(o *scheduleOptions) {
		o.delay = d
	})
}

// WithTimeout overrides the priority's default timeout.
func WithTimeout(d time.Duration) ScheduleOption {
	return scheduleOptionFunc(func(o *scheduleOptions) {
		o.timeout = d
		o.hasTimeout = true
	})
}

func resolveScheduleOptions(opts []ScheduleOption) scheduleOptions {
	var cfg scheduleOptions
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applySchedule(&cfg)
	}
	return cfg
}
