package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atlekbai/fsm"
)

// StateGraph generates a symbolic representation of the graph structure.
type StateGraph struct {
	// InitialState is the name of the initial state, empty if none was set.
	InitialState string

	// States contains all states in the graph, indexed by state name.
	States map[string]*State

	// Transitions contains all transitions in the graph.
	Transitions []*Transition

	// Decisions contains a node per state with more than one free-flow
	// destination. Their node names contain a colon, so no state type can
	// take them.
	Decisions []*Decision
}

// NewStateGraph creates a new state graph from machine info.
func NewStateGraph(machineInfo *fsm.MachineInfo) *StateGraph {
	sg := &StateGraph{
		InitialState: machineInfo.InitialState,
		States:       make(map[string]*State),
	}

	sg.addStates(machineInfo)
	sg.addTransitions(machineInfo)

	return sg
}

func (sg *StateGraph) addStates(machineInfo *fsm.MachineInfo) {
	for _, si := range machineInfo.States {
		sg.state(si.Name)
	}
}

// state returns the named state, adding it if the info referenced a
// destination it did not list.
func (sg *StateGraph) state(name string) *State {
	if st, ok := sg.States[name]; ok {
		return st
	}
	st := &State{StateName: name, NodeName: name}
	sg.States[name] = st
	return st
}

func (sg *StateGraph) addTransitions(machineInfo *fsm.MachineInfo) {
	for _, si := range machineInfo.States {
		fromState := sg.States[si.Name]

		if si.Next != "" {
			sg.link(fromState, sg.state(si.Next), fsm.KindStatic, nil)
		}

		var decide *Decision
		if len(si.FreeFlow) > 1 {
			decide = &Decision{
				NodeName: fmt.Sprintf("decision:%d", len(sg.Decisions)+1),
				Source:   fromState,
			}
			sg.Decisions = append(sg.Decisions, decide)
		}

		for _, to := range si.FreeFlow {
			trans := sg.link(fromState, sg.state(to), fsm.KindFreeFlow, decide)
			if decide != nil {
				decide.Leaving = append(decide.Leaving, trans)
			}
		}
	}
}

func (sg *StateGraph) link(from, to *State, kind fsm.TransitionKind, decide *Decision) *Transition {
	trans := &Transition{
		SourceState:      from,
		DestinationState: to,
		Kind:             kind,
		Decision:         decide,
	}
	sg.Transitions = append(sg.Transitions, trans)
	from.Leaving = append(from.Leaving, trans)
	to.Arriving = append(to.Arriving, trans)
	return trans
}

// ToGraph converts the state graph to a string representation using the specified style.
func (sg *StateGraph) ToGraph(style Style) string {
	var sb strings.Builder

	sb.WriteString(style.GetPrefix())

	for _, stateName := range sg.getSortedStateNames() {
		sb.WriteString(style.FormatOneState(sg.States[stateName]))
	}

	for _, dec := range sg.Decisions {
		sb.WriteString(style.FormatOneDecisionNode(dec.NodeName, dec.Source.StateName+" decides"))
	}

	lines := FormatTransitions(style, sg.getSortedTransitions(), sg.Decisions)
	for _, line := range lines {
		sb.WriteString("\n")
		sb.WriteString(line)
	}

	sb.WriteString(style.GetInitialTransition(sg.InitialState))

	return sb.String()
}

// getSortedStateNames returns state names in sorted order for deterministic output.
func (sg *StateGraph) getSortedStateNames() []string {
	names := make([]string, 0, len(sg.States))
	for name := range sg.States {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getSortedTransitions returns transitions sorted by source state, then
// destination state, then kind.
func (sg *StateGraph) getSortedTransitions() []*Transition {
	sorted := make([]*Transition, len(sg.Transitions))
	copy(sorted, sg.Transitions)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i], sorted[j]
		if ti.SourceState.StateName != tj.SourceState.StateName {
			return ti.SourceState.StateName < tj.SourceState.StateName
		}
		if ti.DestinationState.StateName != tj.DestinationState.StateName {
			return ti.DestinationState.StateName < tj.DestinationState.StateName
		}
		return ti.Kind < tj.Kind
	})
	return sorted
}
