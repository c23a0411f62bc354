// Package logging bridges logiface to a log/slog handler.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joeycumines/logiface"
)

// Logger is the generified logiface logger passed around the runtime.
// A nil *Logger is valid and discards everything.
type Logger = logiface.Logger[logiface.Event]

type Event struct {
	logiface.UnimplementedEvent

	level logiface.Level
	msg   string
	attrs []slog.Attr
}

func (e *Event) Level() logiface.Level {
	if e == nil {
		return logiface.LevelDisabled
	}
	return e.level
}

func (e *Event) AddField(key string, val any) {
	e.attrs = append(e.attrs, slog.Any(key, val))
}

func (e *Event) AddMessage(msg string) bool {
	e.msg = msg
	return true
}

func (e *Event) AddError(err error) bool {
	e.attrs = append(e.attrs, slog.Any("err", err))
	return true
}

func (e *Event) AddString(key string, val string) bool {
	e.attrs = append(e.attrs, slog.String(key, val))
	return true
}

func (e *Event) AddInt(key string, val int) bool {
	e.attrs = append(e.attrs, slog.Int(key, val))
	return true
}

func (e *Event) AddInt64(key string, val int64) bool {
	e.attrs = append(e.attrs, slog.Int64(key, val))
	return true
}

func (e *Event) AddBool(key string, val bool) bool {
	e.attrs = append(e.attrs, slog.Bool(key, val))
	return true
}

func (e *Event) AddDuration(key string, val time.Duration) bool {
	e.attrs = append(e.attrs, slog.Duration(key, val))
	return true
}

type writer struct {
	handler slog.Handler
}

func (w *writer) Write(event *Event) error {
	level := slogLevel(event.level)
	ctx := context.Background()
	if !w.handler.Enabled(ctx, level) {
		return logiface.ErrDisabled
	}

	record := slog.NewRecord(time.Now(), level, event.msg, 0)
	record.AddAttrs(event.attrs...)
	return w.handler.Handle(ctx, record)
}

// New returns a logger writing to handler, filtering below level.
func New(handler slog.Handler, level logiface.Level) *Logger {
	if handler == nil {
		return nil
	}

	return logiface.New[*Event](
		logiface.WithEventFactory[*Event](logiface.NewEventFactoryFunc(func(level logiface.Level) *Event {
			return &Event{level: level}
		})),
		logiface.WithWriter[*Event](&writer{handler: handler}),
		logiface.WithLevel[*Event](level),
	).Logger()
}

// Default logs warnings and above as text to stderr.
func Default() *Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug - 4}), logiface.LevelWarning)
}

func slogLevel(level logiface.Level) slog.Level {
	switch {
	case level <= logiface.LevelError:
		return slog.LevelError
	case level == logiface.LevelWarning:
		return slog.LevelWarn
	case level <= logiface.LevelInformational:
		return slog.LevelInfo
	case level == logiface.LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4
	}
}
