package fsm

import (
	"fmt"
	"path"
	"reflect"
)

// MachineInfo exposes the states and transitions declared on a machine.
type MachineInfo struct {
	// ID is the machine identifier.
	ID string `yaml:"id"`

	// Name is the machine name.
	Name string `yaml:"name"`

	// InitialState is the name of the initial state, empty if none was set.
	InitialState string `yaml:"initial_state,omitempty"`

	// States lists every registered state in registration order.
	States []StateInfo `yaml:"states"`
}

// StateInfo describes one registered state.
type StateInfo struct {
	// Name is the state's name within the machine: the concrete type name,
	// qualified with its package when another state has the same one.
	Name string `yaml:"name"`

	// Next is the destination of the static transition, if any.
	Next string `yaml:"next,omitempty"`

	// FreeFlow lists free-flow destinations in declaration order.
	FreeFlow []string `yaml:"free_flow,omitempty"`
}

// TransitionInfo describes one declared transition.
type TransitionInfo struct {
	From string         `yaml:"from"`
	To   string         `yaml:"to"`
	Kind TransitionKind `yaml:"-"`
}

// Transitions returns every transition declared in info, static ones first
// for each state.
func (info *MachineInfo) Transitions() []TransitionInfo {
	var out []TransitionInfo
	for _, st := range info.States {
		if st.Next != "" {
			out = append(out, TransitionInfo{From: st.Name, To: st.Next, Kind: KindStatic})
		}
		for _, to := range st.FreeFlow {
			out = append(out, TransitionInfo{From: st.Name, To: to, Kind: KindFreeFlow})
		}
	}
	return out
}

// Info returns a snapshot of the machine's declared transition graph.
func (m *Machine) Info() *MachineInfo {
	info := &MachineInfo{
		ID:     m.id.String(),
		Name:   m.name,
		States: make([]StateInfo, 0, len(m.order)),
	}
	if m.initial != nil {
		info.InitialState = m.initial.core().name
	}

	for _, key := range m.order {
		st := m.states[key]
		si := StateInfo{Name: st.core().name}
		if t, ok := m.static[st]; ok {
			si.Next = t.to.core().name
		}
		for _, t := range m.freeFlow[st] {
			si.FreeFlow = append(si.FreeFlow, t.to.core().name)
		}
		info.States = append(info.States, si)
	}

	return info
}

// StateName returns the name st was registered under, or "" for nil.
func StateName(st State) string {
	if st == nil {
		return ""
	}
	return st.core().name
}

// stateName picks the name a state of type t is registered under. It is the
// bare type name unless another state already uses it, in which case the
// name is qualified with the package, then with the full import path.
func (m *Machine) stateName(t reflect.Type) string {
	name := typeName(t)
	if !m.nameTaken(name) {
		return name
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if pkg := t.PkgPath(); pkg != "" {
		if qualified := path.Base(pkg) + "." + name; !m.nameTaken(qualified) {
			return qualified
		}
		if qualified := pkg + "." + name; !m.nameTaken(qualified) {
			return qualified
		}
	}

	// Types declared inside functions share name and import path.
	for n := 2; ; n++ {
		if numbered := fmt.Sprintf("%s#%d", name, n); !m.nameTaken(numbered) {
			return numbered
		}
	}
}

func (m *Machine) nameTaken(name string) bool {
	for _, st := range m.states {
		if st.core().name == name {
			return true
		}
	}
	return false
}

// typeName returns the name of t, looking through pointers.
func typeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
