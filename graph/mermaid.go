package graph

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/atlekbai/fsm"
)

// MermaidGraphDirection specifies the direction of the Mermaid graph.
type MermaidGraphDirection int

const (
	// TopToBottom flows from top to bottom.
	TopToBottom MermaidGraphDirection = iota
	// BottomToTop flows from bottom to top.
	BottomToTop
	// LeftToRight flows from left to right.
	LeftToRight
	// RightToLeft flows from right to left.
	RightToLeft
)

// MermaidGraphStyle generates Mermaid state diagrams.
type MermaidGraphStyle struct {
	graph     *StateGraph
	direction *MermaidGraphDirection

	// aliases maps a state name to the node name used in the diagram.
	aliases map[string]string

	// choices maps a decision node name to its diagram name.
	choices map[string]string
}

// NewMermaidGraphStyle returns a Mermaid style for graph. A nil direction leaves it to the renderer.
func NewMermaidGraphStyle(graph *StateGraph, direction *MermaidGraphDirection) *MermaidGraphStyle {
	return &MermaidGraphStyle{
		graph:     graph,
		direction: direction,
	}
}

// GetPrefix opens the diagram and writes the direction, if any.
func (s *MermaidGraphStyle) GetPrefix() string {
	s.buildAliases()

	var sb strings.Builder
	sb.WriteString("stateDiagram-v2")

	if s.direction != nil {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("\tdirection %s", getDirectionCode(*s.direction)))
	}

	// Declare states whose names had to be sanitized.
	names := make([]string, 0, len(s.aliases))
	for name := range s.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if alias := s.aliases[name]; alias != name {
			sb.WriteString("\n")
			sb.WriteString(fmt.Sprintf("\t%s : %s", alias, name))
		}
	}

	return sb.String()
}

// FormatOneState is empty; Mermaid declares states through their edges.
func (s *MermaidGraphStyle) FormatOneState(_ *State) string {
	return ""
}

// FormatOneDecisionNode declares a choice pseudo-state.
func (s *MermaidGraphStyle) FormatOneDecisionNode(nodeName, _ string) string {
	return fmt.Sprintf("\n\tstate %s <<choice>>", s.nodeName(nodeName))
}

// FormatOneTransition renders one edge labelled with its kind.
func (s *MermaidGraphStyle) FormatOneTransition(
	sourceNodeName string,
	kind fsm.TransitionKind,
	destinationNodeName string,
) string {
	return fmt.Sprintf("\t%s --> %s : %s", s.nodeName(sourceNodeName), s.nodeName(destinationNodeName), kind)
}

// GetInitialTransition links [*] to the initial state.
func (s *MermaidGraphStyle) GetInitialTransition(initialState string) string {
	if initialState == "" {
		return ""
	}
	return fmt.Sprintf("\n[*] --> %s", s.nodeName(initialState))
}

// buildAliases assigns every state and choice node a unique name Mermaid accepts.
func (s *MermaidGraphStyle) buildAliases() {
	if s.aliases != nil {
		return
	}
	s.aliases = make(map[string]string, len(s.graph.States))

	taken := make(map[string]bool)
	for _, name := range s.graph.getSortedStateNames() {
		if sanitizeStateName(name) == name {
			taken[name] = true
		}
	}

	for _, name := range s.graph.getSortedStateNames() {
		sanitized := sanitizeStateName(name)
		if sanitized == name {
			s.aliases[name] = name
			continue
		}

		candidate := sanitized
		for count := 1; taken[candidate]; count++ {
			candidate = fmt.Sprintf("%s_%d", sanitized, count)
		}
		taken[candidate] = true
		s.aliases[name] = candidate
	}

	// Choice nodes come last so a state called Decision1 keeps its name.
	s.choices = make(map[string]string, len(s.graph.Decisions))
	for i, dec := range s.graph.Decisions {
		base := fmt.Sprintf("Decision%d", i+1)
		candidate := base
		for count := 1; taken[candidate]; count++ {
			candidate = fmt.Sprintf("%s_%d", base, count)
		}
		taken[candidate] = true
		s.choices[dec.NodeName] = candidate
	}
}

// nodeName returns the diagram name for a state or decision node.
func (s *MermaidGraphStyle) nodeName(name string) string {
	if alias, ok := s.aliases[name]; ok {
		return alias
	}
	if choice, ok := s.choices[name]; ok {
		return choice
	}
	return name
}

// sanitizeStateName drops whitespace and the punctuation Mermaid treats as syntax.
func sanitizeStateName(name string) string {
	var result strings.Builder
	for _, c := range name {
		if !unicode.IsSpace(c) && c != ':' && c != '-' && c != '[' && c != ']' && c != '.' {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// getDirectionCode maps a direction to its Mermaid keyword.
func getDirectionCode(direction MermaidGraphDirection) string {
	switch direction {
	case TopToBottom:
		return "TB"
	case BottomToTop:
		return "BT"
	case LeftToRight:
		return "LR"
	case RightToLeft:
		return "RL"
	default:
		return "TB"
	}
}

// MermaidGraph generates a Mermaid graph from machine info.
func MermaidGraph(machineInfo *fsm.MachineInfo, direction *MermaidGraphDirection) string {
	graph := NewStateGraph(machineInfo)
	return graph.ToGraph(NewMermaidGraphStyle(graph, direction))
}
