package graph

import (
	"github.com/atlekbai/fsm"
)

// Style defines the interface for formatting state graphs.
type Style interface {
	// GetPrefix returns the text that starts a new graph.
	GetPrefix() string

	// GetInitialTransition returns the text for the initial state transition.
	// initialState is empty when the machine has none.
	GetInitialTransition(initialState string) string

	// FormatOneState formats a single state.
	FormatOneState(state *State) string

	// FormatOneDecisionNode formats a decision node.
	FormatOneDecisionNode(nodeName, label string) string

	// FormatOneTransition formats a single transition.
	FormatOneTransition(sourceNodeName string, kind fsm.TransitionKind, destinationNodeName string) string
}

// FormatTransitions formats the edges into every decision node followed by
// all transitions, using the given style.
func FormatTransitions(style Style, transitions []*Transition, decisions []*Decision) []string {
	lines := make([]string, 0, len(decisions)+len(transitions))

	for _, dec := range decisions {
		lines = append(lines, style.FormatOneTransition(dec.Source.NodeName, fsm.KindFreeFlow, dec.NodeName))
	}

	for _, transit := range transitions {
		if transit.DestinationState == nil {
			continue
		}
		lines = append(lines, style.FormatOneTransition(
			transit.sourceNodeName(),
			transit.Kind,
			transit.DestinationState.NodeName,
		))
	}

	return lines
}
