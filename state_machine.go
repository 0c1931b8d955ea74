package fsm

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/atlekbai/fsm/inject"
)

// Status is the machine-level lifecycle: Unstarted -> Running -> Stopped.
// A stopped machine may be started again.
type Status int

const (
	StatusUnstarted Status = iota
	StatusRunning
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusUnstarted:
		return "unstarted"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Machine owns a registry of states, one per concrete state type, and the
// static and free-flow transitions declared between them.
//
// Concrete machines embed *Machine and declare their whole transition graph
// in their constructor:
//
//	type Door struct{ *fsm.Machine }
//
//	func NewDoor() (*Door, error) {
//		d := &Door{}
//		d.Machine = fsm.NewMachine(d)
//		if _, err := fsm.SetInitialState[Closed](d.Machine); err != nil {
//			return nil, err
//		}
//		if _, err := fsm.AddStaticTransition[Closed, Open](d.Machine); err != nil {
//			return nil, err
//		}
//		...
//	}
//
// A Machine is driven from a single thread of control. Work finished on other
// goroutines reaches it through Post and Suspend, and is run by Update or Run.
type Machine struct {
	id        uuid.UUID
	name      string
	host      any
	debugging bool
	logger    *slog.Logger
	observer  Observer
	container *inject.Container
	ctx       context.Context

	// states maps a concrete state type to its single instance.
	states map[reflect.Type]State

	// order keeps registration order for introspection.
	order []reflect.Type

	// static holds at most one outgoing transition per state.
	static map[State]*Transition

	// freeFlow holds the outgoing free-flow transitions per state, one per destination.
	freeFlow map[State][]*Transition

	initial State
	current State
	status  Status

	activations uint64
	mailbox     *mailbox

	onStarted      handlers[struct{}]
	onStopped      handlers[struct{}]
	onTransitioned handlers[TransitionInfo]
}

// NewMachine creates a machine. host is the value embedding the machine and
// is what OwnedState owners are checked against; nil makes the machine its
// own host.
func NewMachine(host any, opts ...Option) *Machine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Machine{
		id:        uuid.New(),
		host:      host,
		debugging: o.debugging,
		logger:    o.logger,
		observer:  o.observer,
		container: o.container,
		ctx:       o.ctx,
		states:    make(map[reflect.Type]State),
		static:    make(map[State]*Transition),
		freeFlow:  make(map[State][]*Transition),
		mailbox:   newMailbox(),
	}
	if m.host == nil {
		m.host = m
	}
	if m.observer == nil {
		m.observer = NoopObserver{}
	}

	m.name = o.name
	if m.name == "" {
		m.name = typeName(reflect.TypeOf(m.host))
	}

	return m
}

// ID returns the machine's unique identifier.
func (m *Machine) ID() uuid.UUID {
	return m.id
}

// Name returns the machine name.
func (m *Machine) Name() string {
	return m.name
}

// Debugging reports whether enter and exit are traced.
func (m *Machine) Debugging() bool {
	return m.debugging
}

// Status returns the machine-level lifecycle status.
func (m *Machine) Status() Status {
	return m.status
}

// CurrentState returns the active state, or nil when the machine is not running.
func (m *Machine) CurrentState() State {
	return m.current
}

// Start enters the initial state and fires the started notification. When
// the initial state fails to inject its dependencies, the machine stays
// stopped and Start may be called again.
func (m *Machine) Start() error {
	if m.status == StatusRunning {
		return newConfigurationError(ErrAlreadyRunning, "stop %s before starting it again", m.name)
	}
	if m.initial == nil {
		return newConfigurationError(ErrNoInitialState,
			"%s has no initial state; declare one with SetInitialState", m.name)
	}

	previous := m.status
	m.status = StatusRunning
	m.current = m.initial

	entered, err := m.initial.core().enter(m.initial)
	if !entered {
		m.status = previous
		m.current = nil
		return err
	}

	m.notify(Event{Type: EventStarted})
	m.onStarted.invoke(struct{}{})

	return err
}

// Stop exits the current state and fires the stopped notification. It is a
// no-op when the machine is not running.
func (m *Machine) Stop() error {
	if m.current == nil {
		return nil
	}

	current := m.current
	m.current = nil
	m.status = StatusStopped

	err := current.core().exit(current)

	m.notify(Event{Type: EventStopped})
	m.onStopped.invoke(struct{}{})

	return err
}

// ToNextState follows the static transition of the current state. When the
// machine has stopped, it logs a warning and does nothing.
func (m *Machine) ToNextState() error {
	if m.current == nil {
		m.staleRequest("", KindStatic)
		return nil
	}

	transition, ok := m.static[m.current]
	if !ok {
		from := m.current.core().name
		return newConfigurationError(ErrNoStaticTransition,
			"state %s has no static transition; declare one with AddStaticTransition[%s, ...]", from, from)
	}

	return m.execute(transition)
}

// OnStarted registers a callback fired after Start entered the initial state.
func (m *Machine) OnStarted(fn func()) {
	m.onStarted.register(func(struct{}) { fn() })
}

// OnStopped registers a callback fired after Stop exited the current state.
func (m *Machine) OnStopped(fn func()) {
	m.onStopped.register(func(struct{}) { fn() })
}

// OnTransitioned registers a callback fired whenever a transition changes the
// current state, before the destination's OnEnter runs.
func (m *Machine) OnTransitioned(fn func(TransitionInfo)) {
	m.onTransitioned.register(fn)
}

// UnregisterAllCallbacks removes every OnStarted, OnStopped and
// OnTransitioned callback.
func (m *Machine) UnregisterAllCallbacks() {
	m.onStarted.unregisterAll()
	m.onStopped.unregisterAll()
	m.onTransitioned.unregisterAll()
}

// execute runs t. When the destination cannot be activated the machine is
// left without a current state, stopped.
func (m *Machine) execute(t *Transition) error {
	entered, err := t.execute(func(next State) {
		m.current = next

		info := t.info()
		m.notify(Event{
			Type: EventTransitioned,
			From: info.From,
			To:   info.To,
			Kind: info.Kind.String(),
		})
		m.onTransitioned.invoke(info)
	})
	if !entered {
		m.logger.ErrorContext(m.ctx, "state could not be entered, stopping the machine",
			slog.String("machine_id", m.id.String()),
			slog.String("state", t.to.core().name),
			slog.Any("error", err),
		)
		m.current = nil
		m.status = StatusStopped
		m.notify(Event{Type: EventStopped})
		m.onStopped.invoke(struct{}{})
	}
	return err
}

func (m *Machine) staleRequest(to string, kind TransitionKind) {
	m.logger.WarnContext(m.ctx,
		"transition requested without a current state; the machine has probably stopped",
		slog.String("machine_id", m.id.String()),
		slog.String("to", to),
		slog.String("kind", kind.String()),
	)
	m.notify(Event{Type: EventStaleRequest, To: to, Kind: kind.String()})
}

func (m *Machine) notify(event Event) {
	event.MachineID = m.id.String()
	event.Machine = m.name
	if event.At.IsZero() {
		event.At = time.Now()
	}
	m.observer.OnEvent(m.ctx, event)
}

func (m *Machine) String() string {
	current := "<none>"
	if m.current != nil {
		current = m.current.core().name
	}
	return fmt.Sprintf("Machine { Name = %s, Status = %s, State = %s }", m.name, m.status, current)
}
