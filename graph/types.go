// Package graph renders the declared transition graph of a state machine.
package graph

import (
	"github.com/atlekbai/fsm"
)

// State represents a state in the graph.
type State struct {
	// StateName is the name of the state.
	StateName string

	// NodeName is the name used for the node in the graph.
	NodeName string

	// Leaving are the transitions leaving this state.
	Leaving []*Transition

	// Arriving are the transitions arriving at this state.
	Arriving []*Transition
}

// Decision is a choice node standing for a state that picks one of several
// free-flow destinations at runtime.
type Decision struct {
	// NodeName is the name of the decision node.
	NodeName string

	// Source is the state making the choice.
	Source *State

	// Leaving are the free-flow transitions drawn out of this node.
	Leaving []*Transition
}

// Transition represents a transition in the graph.
type Transition struct {
	// SourceState is the source state of the transition.
	SourceState *State

	// DestinationState is the destination state of the transition.
	DestinationState *State

	// Kind tells static and free-flow edges apart.
	Kind fsm.TransitionKind

	// Decision is set when the edge is drawn through a choice node.
	Decision *Decision
}

// IsReentry returns true if the transition leads back to its source.
func (t *Transition) IsReentry() bool {
	return t.SourceState == t.DestinationState
}

func (t *Transition) sourceNodeName() string {
	if t.Decision != nil {
		return t.Decision.NodeName
	}
	return t.SourceState.NodeName
}
