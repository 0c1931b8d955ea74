package fsm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/atlekbai/fsm/inject"
)

// State is a unit of behaviour owned by a Machine.
//
// Concrete states embed BaseState (or OwnedState) and implement OnEnter and
// OnExit. The machine creates exactly one instance of every concrete state
// type it references, so state structs may hold per-activation data that
// OnExit releases.
//
// OnEnter and OnExit are only ever called by the machine. A state moves the
// machine forward by calling ToNextState or ToState on its owner, usually as
// the last thing OnEnter does.
type State interface {
	// OnEnter runs after the state became active. ctx is cancelled when the
	// state exits.
	OnEnter(ctx context.Context) error

	// OnExit runs after the state became inactive.
	OnExit(ctx context.Context) error

	core() *BaseState
}

// Initializer is implemented by states that need a hook when they are bound
// to their machine. OnInitialize runs once, at registration.
type Initializer interface {
	OnInitialize(m *Machine) error
}

// Injectable is implemented by states that acquire dependencies with Acquire.
// Inject runs before the state becomes active; everything the state acquired
// is released right after OnExit, or right away when Inject fails.
type Injectable interface {
	Inject() error
}

// Acquire returns the instance of T from the container of st's machine, held
// on behalf of st until st exits.
func Acquire[T any](st State) (T, error) {
	s := st.core()
	if s.machine == nil || s.machine.container == nil {
		var zero T
		return zero, newConfigurationError(ErrNoContainer,
			"state %s cannot acquire %v; build the machine WithContainer", s.name, reflect.TypeFor[T]())
	}
	return inject.Acquire[T](s.machine.container, s)
}

// BaseState carries the bookkeeping every state needs. Embed it by value.
type BaseState struct {
	machine *Machine
	name    string
	active  bool

	// activation identifies the current enter/exit cycle.
	activation uint64
	cancel     context.CancelFunc
}

func (s *BaseState) core() *BaseState {
	return s
}

// Machine returns the owning machine.
func (s *BaseState) Machine() *Machine {
	return s.machine
}

// Name returns the concrete state type name.
func (s *BaseState) Name() string {
	return s.name
}

// IsActive reports whether the state has been entered and not yet exited.
func (s *BaseState) IsActive() bool {
	return s.active
}

// Valid reports whether the owner is still running this state. Code resuming
// after a suspension must check it before asking the owner for a transition.
func (s *BaseState) Valid() bool {
	return s.machine != nil && s.active && s.machine.status == StatusRunning
}

// Suspend runs wait on its own goroutine with ctx and schedules then on the
// owner's thread of control once wait returns. then is dropped when the state
// was exited in the meantime. ctx should be the context passed to OnEnter.
func (s *BaseState) Suspend(ctx context.Context, wait func(ctx context.Context) error, then func() error) {
	s.machine.suspend(s, ctx, wait, then)
}

func (s *BaseState) bind(m *Machine, name string) {
	s.machine = m
	s.name = name
}

// enter activates the state and runs OnEnter. entered is false when Inject
// failed; the state is then left inactive with nothing acquired.
func (s *BaseState) enter(self State) (entered bool, err error) {
	m := s.machine

	if in, ok := self.(Injectable); ok {
		if err := in.Inject(); err != nil {
			if m.container != nil {
				err = errors.Join(err, m.container.Release(s))
			}
			return false, fmt.Errorf("inject %s: %w", s.name, err)
		}
	}

	m.activations++
	ctx, cancel := context.WithCancel(m.ctx)
	s.activation = m.activations
	s.cancel = cancel
	s.active = true

	if m.debugging {
		m.logger.InfoContext(ctx, "state enter",
			slog.String("machine_id", m.id.String()),
			slog.String("state", s.name),
		)
	}

	m.notify(Event{Type: EventStateEntered, State: s.name})

	return true, self.OnEnter(ctx)
}

func (s *BaseState) exit(self State) error {
	m := s.machine

	s.active = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if m.debugging {
		m.logger.InfoContext(m.ctx, "state exit",
			slog.String("machine_id", m.id.String()),
			slog.String("state", s.name),
		)
	}

	err := self.OnExit(m.ctx)

	if m.container != nil {
		if relErr := m.container.Release(s); relErr != nil {
			err = errors.Join(err, relErr)
		}
	}

	m.notify(Event{Type: EventStateExited, State: s.name})

	return err
}

// OwnedState is a State whose owner is known to be of type M. M is normally
// the pointer type of a struct embedding *Machine, passed as host to
// NewMachine.
type OwnedState[M any] struct {
	BaseState
	owner M
}

// Owner returns the typed owner.
func (s *OwnedState[M]) Owner() M {
	return s.owner
}

func (s *OwnedState[M]) bindOwner(host any) error {
	want := reflect.TypeFor[M]()
	if reflect.TypeOf(host) != want {
		return newConfigurationError(ErrOwnerTypeMismatch,
			"state %s expects owner %v, got %T", s.name, want, host)
	}
	s.owner = host.(M)
	return nil
}

// ownerBinder is satisfied by states embedding OwnedState.
type ownerBinder interface {
	bindOwner(host any) error
}
