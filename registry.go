package fsm

import (
	"reflect"
)

// StatePtr is satisfied by *S when *S implements State. It lets the machine
// allocate states from their type alone.
type StatePtr[S any] interface {
	*S
	State
}

// register returns the instance of S, creating and binding it on first use.
func register[S any, P StatePtr[S]](m *Machine) (P, error) {
	key := reflect.TypeFor[P]()
	if st, ok := m.states[key]; ok {
		return st.(P), nil
	}

	st := P(new(S))
	st.core().bind(m, m.stateName(key))

	if b, ok := State(st).(ownerBinder); ok {
		if err := b.bindOwner(m.host); err != nil {
			var zero P
			return zero, err
		}
	}
	if in, ok := State(st).(Initializer); ok {
		if err := in.OnInitialize(m); err != nil {
			var zero P
			return zero, err
		}
	}

	m.states[key] = st
	m.order = append(m.order, key)
	return st, nil
}

// Lookup returns the registered instance of S without creating one.
func Lookup[S any, P StatePtr[S]](m *Machine) (P, bool) {
	st, ok := m.states[reflect.TypeFor[P]()]
	if !ok {
		var zero P
		return zero, false
	}
	return st.(P), true
}

// SetInitialState registers S and makes it the state Start enters. Declaring
// the same state again is a no-op; declaring a different one is an error.
func SetInitialState[S any, P StatePtr[S]](m *Machine) (P, error) {
	st, err := register[S, P](m)
	if err != nil {
		return st, err
	}

	if m.initial != nil && m.initial != State(st) {
		var zero P
		return zero, newConfigurationError(ErrInitialStateSet,
			"%s already starts in %s, cannot start in %s", m.name, m.initial.core().name, st.core().name)
	}

	m.initial = st
	return st, nil
}

// AddStaticTransition declares the single static transition leaving From.
// Declaring the same pair again returns the cached transition; declaring a
// second destination for From is an error.
func AddStaticTransition[From, To any, PF StatePtr[From], PT StatePtr[To]](m *Machine) (*Transition, error) {
	from, err := register[From, PF](m)
	if err != nil {
		return nil, err
	}
	to, err := register[To, PT](m)
	if err != nil {
		return nil, err
	}

	if existing, ok := m.static[from]; ok {
		if existing.to == State(to) {
			return existing, nil
		}
		return nil, newConfigurationError(ErrStaticTransitionExists,
			"state %s already transitions to %s, no other static transition may leave it",
			from.core().name, existing.to.core().name)
	}

	t := newTransition(from, to, KindStatic)
	m.static[from] = t
	return t, nil
}

// AddFreeFlowTransition declares a free-flow transition from From to To. A
// state may have any number of them, one per destination; declaring the same
// pair again returns the cached transition.
func AddFreeFlowTransition[From, To any, PF StatePtr[From], PT StatePtr[To]](m *Machine) (*Transition, error) {
	from, err := register[From, PF](m)
	if err != nil {
		return nil, err
	}
	to, err := register[To, PT](m)
	if err != nil {
		return nil, err
	}

	if existing := m.freeFlowTo(from, to); existing != nil {
		return existing, nil
	}

	t := newTransition(from, to, KindFreeFlow)
	m.freeFlow[from] = append(m.freeFlow[from], t)
	return t, nil
}

// ToState follows the free-flow transition from the current state to S. When
// the machine has stopped, it logs a warning and does nothing.
func ToState[S any, P StatePtr[S]](m *Machine) error {
	toName := typeName(reflect.TypeFor[P]())

	if m.current == nil {
		m.staleRequest(toName, KindFreeFlow)
		return nil
	}

	fromName := m.current.core().name

	to, ok := Lookup[S, P](m)
	if !ok {
		return &MissingTransitionError{From: fromName, To: toName}
	}
	toName = to.core().name

	t := m.freeFlowTo(m.current, to)
	if t == nil {
		return &MissingTransitionError{From: fromName, To: toName}
	}

	return m.execute(t)
}

func (m *Machine) freeFlowTo(from, to State) *Transition {
	for _, t := range m.freeFlow[from] {
		if t.to == to {
			return t
		}
	}
	return nil
}
