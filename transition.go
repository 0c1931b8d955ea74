package fsm

import (
	"errors"
	"fmt"
)

// TransitionKind tells static transitions apart from free-flow ones.
type TransitionKind int

const (
	// KindStatic is the single deterministic edge used by ToNextState.
	KindStatic TransitionKind = iota
	// KindFreeFlow is one of possibly several edges selected by ToState.
	KindFreeFlow
)

func (k TransitionKind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindFreeFlow:
		return "free-flow"
	default:
		return "unknown"
	}
}

// Transition is a directed edge between two registered states. It is created
// by the machine when the edge is first declared and never changes afterwards.
type Transition struct {
	from State
	to   State
	kind TransitionKind
}

func newTransition(from, to State, kind TransitionKind) *Transition {
	return &Transition{from: from, to: to, kind: kind}
}

// From returns the source state.
func (t *Transition) From() State {
	return t.from
}

// To returns the destination state.
func (t *Transition) To() State {
	return t.to
}

// Kind returns whether the transition is static or free-flow.
func (t *Transition) Kind() TransitionKind {
	return t.kind
}

// IsReentry returns true if the transition leads back to its source.
func (t *Transition) IsReentry() bool {
	return t.from == t.to
}

func (t *Transition) String() string {
	return fmt.Sprintf("%s -> %s (%s)", t.from.core().name, t.to.core().name, t.kind)
}

// execute exits from, reports to as the new current state and enters to.
// The enter happens even when the exit failed. entered is false when to could
// not be activated.
func (t *Transition) execute(report func(State)) (entered bool, err error) {
	exitErr := t.from.core().exit(t.from)
	report(t.to)
	entered, enterErr := t.to.core().enter(t.to)
	return entered, errors.Join(exitErr, enterErr)
}

func (t *Transition) info() TransitionInfo {
	return TransitionInfo{
		From: t.from.core().name,
		To:   t.to.core().name,
		Kind: t.kind,
	}
}
