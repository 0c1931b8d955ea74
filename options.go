package fsm

import (
	"context"
	"log/slog"

	"github.com/atlekbai/fsm/inject"
)

// Option configures a Machine.
type Option func(*options)

type options struct {
	debugging bool
	logger    *slog.Logger
	observer  Observer
	container *inject.Container
	ctx       context.Context
	name      string
}

// WithDebugging makes every state enter and exit produce a trace line.
func WithDebugging(enabled bool) Option {
	return func(o *options) { o.debugging = enabled }
}

// WithLogger sets the logger used for tracing and warnings. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver adds an observer. It may be given more than once.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs == nil {
			return
		}
		if o.observer == nil {
			o.observer = obs
			return
		}
		o.observer = NewMultiObserver(o.observer, obs)
	}
}

// WithContainer lets Injectable states acquire dependencies from c.
func WithContainer(c *inject.Container) Option {
	return func(o *options) { o.container = c }
}

// WithContext sets the parent of every activation context. Cancelling it
// cancels whatever suspended work the active state is waiting on.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithName overrides the machine name reported in logs, events and Info.
// The default is the host's type name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func defaultOptions() *options {
	return &options{
		logger: slog.Default(),
		ctx:    context.Background(),
	}
}
