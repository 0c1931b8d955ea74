// Package fsm provides a small state machine whose states are Go types.
//
// Every concrete state type gets exactly one instance per machine, created
// the first time the type is referenced. States are connected by two kinds of
// transitions:
//
//   - Static transitions: at most one per source state, followed by
//     Machine.ToNextState. Suited to linear or looping pipelines.
//   - Free-flow transitions: any number per source state, one per
//     destination, followed by ToState[Dest]. Suited to states that decide at
//     runtime where to go.
//
// # Basic Usage
//
// Declare the graph in the machine's constructor:
//
//	type Traffic struct{ *fsm.Machine }
//
//	func NewTraffic() (*Traffic, error) {
//	    t := &Traffic{}
//	    t.Machine = fsm.NewMachine(t, fsm.WithDebugging(true))
//	    _, err := fsm.SetInitialState[Red](t.Machine)
//	    if err == nil {
//	        _, err = fsm.AddStaticTransition[Red, Green](t.Machine)
//	    }
//	    if err == nil {
//	        _, err = fsm.AddStaticTransition[Green, Red](t.Machine)
//	    }
//	    return t, err
//	}
//
// States embed BaseState, or OwnedState to get a typed owner:
//
//	type Red struct{ fsm.OwnedState[*Traffic] }
//
//	func (r *Red) OnEnter(ctx context.Context) error { return r.Owner().ToNextState() }
//	func (r *Red) OnExit(ctx context.Context) error  { return nil }
//
// Then drive it:
//
//	err := traffic.Start()
//	...
//	err = traffic.Stop()
//
// # Suspension
//
// A state that waits for something hands the waiting to Suspend. The wait
// runs on its own goroutine; the continuation runs on the machine's thread of
// control during Update (or Run), and only if the state is still active:
//
//	func (g *Green) OnEnter(ctx context.Context) error {
//	    g.Suspend(ctx, func(ctx context.Context) error {
//	        select {
//	        case <-time.After(3 * time.Second):
//	            return nil
//	        case <-ctx.Done():
//	            return ctx.Err()
//	        }
//	    }, g.Owner().ToNextState)
//	    return nil
//	}
//
// # Dependencies
//
// A machine built WithContainer lets its states acquire services from an
// inject.Container. States implementing Injectable acquire in Inject, right
// before OnEnter; the machine releases them right after OnExit:
//
//	func (g *Green) Inject() (err error) {
//	    g.lamp, err = fsm.Acquire[*Lamp](g)
//	    return err
//	}
//
// # Graph Generation
//
// Export the declared graph to DOT, Mermaid or YAML:
//
//	import "github.com/atlekbai/fsm/graph"
//	dot := graph.UmlDotGraph(traffic.Info())
package fsm
