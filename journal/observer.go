package journal

import (
	"context"
	"log/slog"

	"github.com/atlekbai/fsm"
)

// Observer records every machine event in a Store. Append failures are
// logged; they never reach the machine.
type Observer struct {
	store  Store
	logger *slog.Logger
}

var _ fsm.Observer = (*Observer)(nil)

// NewObserver creates an Observer writing to store. A nil logger falls back
// to slog.Default().
func NewObserver(store Store, logger *slog.Logger) *Observer {
	if store == nil {
		store = NoopStore{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{store: store, logger: logger}
}

func (o *Observer) OnEvent(ctx context.Context, event fsm.Event) {
	if err := o.store.Append(ctx, event); err != nil {
		o.logger.ErrorContext(ctx, "failed to journal machine event",
			slog.String("machine_id", event.MachineID),
			slog.String("type", string(event.Type)),
			slog.Any("error", err),
		)
	}
}
