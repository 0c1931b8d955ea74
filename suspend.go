package fsm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// mailbox queues work for the machine's thread of control. Producers never block.
type mailbox struct {
	mu     sync.Mutex
	queue  []func() error
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (mb *mailbox) push(fn func() error) {
	mb.mu.Lock()
	mb.queue = append(mb.queue, fn)
	mb.mu.Unlock()

	select {
	case mb.notify <- struct{}{}:
	default:
	}
}

func (mb *mailbox) drain() []func() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	queue := mb.queue
	mb.queue = nil
	return queue
}

func (mb *mailbox) len() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.queue)
}

// Post queues fn to run on the machine's thread of control during the next
// Update. It is safe to call from any goroutine.
func (m *Machine) Post(fn func() error) {
	if fn == nil {
		return
	}
	m.mailbox.push(fn)
}

// Pending returns the number of queued continuations and posted calls.
func (m *Machine) Pending() int {
	return m.mailbox.len()
}

// Update runs everything queued so far, in order, on the calling goroutine.
// It is the machine's frame tick. Work queued while Update runs waits for the
// next call. The returned error joins the errors of every queued call.
func (m *Machine) Update() error {
	var errs []error
	for _, fn := range m.mailbox.drain() {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run calls Update whenever work is queued until ctx is done. Errors from
// queued calls are logged and do not stop the loop.
func (m *Machine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.mailbox.notify:
			if err := m.Update(); err != nil {
				m.logger.ErrorContext(ctx, "queued state machine work failed",
					slog.String("machine_id", m.id.String()),
					slog.Any("error", err),
				)
			}
		}
	}
}

func (m *Machine) suspend(s *BaseState, ctx context.Context, wait func(ctx context.Context) error, then func() error) {
	activation := s.activation

	go func() {
		waitErr := wait(ctx)

		m.Post(func() error {
			if m.status != StatusRunning || !s.active || s.activation != activation {
				m.logger.DebugContext(m.ctx, "dropping resumed work of an exited state",
					slog.String("machine_id", m.id.String()),
					slog.String("state", s.name),
				)
				m.notify(Event{Type: EventDroppedResume, State: s.name})
				return nil
			}
			if waitErr != nil {
				return waitErr
			}
			if then == nil {
				return nil
			}
			return then()
		})
	}()
}
