package graph

import (
	"fmt"
	"strings"

	"github.com/atlekbai/fsm"
)

// UmlDotGraphStyle generates DOT graphs in basic UML style. Static
// transitions are solid, free-flow transitions dashed.
type UmlDotGraphStyle struct{}

// NewUmlDotGraphStyle returns the DOT style.
func NewUmlDotGraphStyle() *UmlDotGraphStyle {
	return &UmlDotGraphStyle{}
}

// GetPrefix opens the digraph.
func (s *UmlDotGraphStyle) GetPrefix() string {
	var sb strings.Builder
	sb.WriteString("digraph {\n")
	sb.WriteString("compound=true;\n")
	sb.WriteString("node [shape=Mrecord]\n")
	sb.WriteString("rankdir=\"LR\"\n")
	return sb.String()
}

// FormatOneState declares a state as a record node.
func (s *UmlDotGraphStyle) FormatOneState(state *State) string {
	escapedName := EscapeLabel(state.StateName)
	return fmt.Sprintf("\"%s\" [label=\"%s\"];\n", EscapeLabel(state.NodeName), escapedName)
}

// FormatOneDecisionNode draws the diamond a free-flow fan-out passes through.
func (s *UmlDotGraphStyle) FormatOneDecisionNode(nodeName, label string) string {
	return fmt.Sprintf("\"%s\" [shape = \"diamond\", label = \"%s\"];\n",
		EscapeLabel(nodeName), EscapeLabel(label))
}

// FormatOneTransition draws one edge, solid for static and dashed for free-flow.
func (s *UmlDotGraphStyle) FormatOneTransition(
	sourceNodeName string,
	kind fsm.TransitionKind,
	destinationNodeName string,
) string {
	return formatOneLine(sourceNodeName, destinationNodeName, lineStyle(kind), kind.String())
}

// GetInitialTransition points the init dot at the initial state.
func (s *UmlDotGraphStyle) GetInitialTransition(initialState string) string {
	if initialState == "" {
		return "\n}"
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(" init [label=\"\", shape=point];")
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(" init -> \"%s\"[style = \"solid\"]", EscapeLabel(initialState)))
	sb.WriteString("\n")
	sb.WriteString("}")

	return sb.String()
}

func lineStyle(kind fsm.TransitionKind) string {
	if kind == fsm.KindFreeFlow {
		return "dashed"
	}
	return "solid"
}

// formatOneLine renders one labelled edge.
func formatOneLine(fromNodeName, toNodeName, style, label string) string {
	return fmt.Sprintf("\"%s\" -> \"%s\" [style=\"%s\", label=\"%s\"];",
		EscapeLabel(fromNodeName), EscapeLabel(toNodeName), style, EscapeLabel(label))
}

// EscapeLabel escapes backslashes and quotes for use inside a DOT string.
func EscapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\\", "\\\\")
	label = strings.ReplaceAll(label, "\"", "\\\"")
	return label
}

// UmlDotGraph generates a UML DOT graph from machine info.
func UmlDotGraph(machineInfo *fsm.MachineInfo) string {
	graph := NewStateGraph(machineInfo)
	return graph.ToGraph(NewUmlDotGraphStyle())
}
