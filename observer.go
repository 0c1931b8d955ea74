package fsm

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventType names a machine lifecycle event.
type EventType string

const (
	EventStarted       EventType = "machine.started"
	EventStopped       EventType = "machine.stopped"
	EventStateEntered  EventType = "state.entered"
	EventStateExited   EventType = "state.exited"
	EventTransitioned  EventType = "state.transitioned"
	EventStaleRequest  EventType = "transition.stale"
	EventDroppedResume EventType = "suspension.dropped"
)

// Event describes something that happened to a machine.
type Event struct {
	Type      EventType
	MachineID string
	Machine   string
	At        time.Time

	// State is set for enter, exit and dropped-resume events.
	State string

	// From, To and Kind are set for transitions and stale requests.
	From string
	To   string
	Kind string
}

// Observer receives machine events. Implementations run on the machine's
// thread of control and should return quickly.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnEvent(context.Context, Event) {}

// MultiObserver fans out events to multiple observers.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates a MultiObserver that forwards events to all
// non-nil observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &MultiObserver{observers: filtered}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}

// LoggingObserver writes events as structured log records.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer logging to logger, or to
// slog.Default() when logger is nil.
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnEvent(ctx context.Context, event Event) {
	attrs := []slog.Attr{
		slog.String("machine", event.Machine),
		slog.String("machine_id", event.MachineID),
	}
	if event.State != "" {
		attrs = append(attrs, slog.String("state", event.State))
	}
	if event.From != "" || event.To != "" {
		attrs = append(attrs,
			slog.String("from", event.From),
			slog.String("to", event.To),
			slog.String("kind", event.Kind),
		)
	}

	level := slog.LevelDebug
	switch event.Type {
	case EventStarted, EventStopped:
		level = slog.LevelInfo
	case EventStaleRequest:
		level = slog.LevelWarn
	}

	o.Logger.LogAttrs(ctx, level, string(event.Type), attrs...)
}

// handlers is a list of callbacks registered on a machine.
type handlers[T any] struct {
	mu  sync.RWMutex
	fns []func(T)
}

func (h *handlers[T]) register(fn func(T)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *handlers[T]) unregisterAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = nil
}

func (h *handlers[T]) invoke(v T) {
	h.mu.RLock()
	fns := h.fns
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(v)
	}
}
