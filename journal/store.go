// Package journal keeps an append-only history of state machine events.
//
// A Store is fed by an Observer attached to a machine with fsm.WithObserver:
//
//	store, err := journal.OpenSQLite(ctx, "events.db")
//	...
//	m := fsm.NewMachine(host, fsm.WithObserver(journal.NewObserver(store, logger)))
package journal

import (
	"context"
	"sync"

	"github.com/atlekbai/fsm"
)

// Store is an append-only history of machine events.
type Store interface {
	Append(ctx context.Context, ev fsm.Event) error
	List(ctx context.Context, machineID string) ([]fsm.Event, error)
}

// NoopStore discards all events.
type NoopStore struct{}

func (NoopStore) Append(context.Context, fsm.Event) error { return nil }

func (NoopStore) List(context.Context, string) ([]fsm.Event, error) {
	return nil, nil
}

// MemoryStore is a goroutine-safe Store backed by a map.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string][]fsm.Event
}

// Ensure the stores implement Store.
var (
	_ Store = NoopStore{}
	_ Store = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string][]fsm.Event)}
}

func (s *MemoryStore) Append(_ context.Context, ev fsm.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.MachineID] = append(s.events[ev.MachineID], ev)
	return nil
}

func (s *MemoryStore) List(_ context.Context, machineID string) ([]fsm.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	held := s.events[machineID]
	out := make([]fsm.Event, len(held))
	copy(out, held)
	return out, nil
}
