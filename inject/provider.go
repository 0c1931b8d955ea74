package inject

import "reflect"

// Lifetime decides whether owners share an instance.
type Lifetime int

const (
	// Singleton instances are shared by every owner in a layer.
	Singleton Lifetime = iota
	// Transient instances are created per owner.
	Transient
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

type provider struct {
	typ       reflect.Type
	lifetime  Lifetime
	retain    bool
	layer     string
	construct func() (any, error)
}

// ProvideOption configures a provider.
type ProvideOption func(*provider)

// AsTransient gives every owner its own instance.
func AsTransient() ProvideOption {
	return func(p *provider) { p.lifetime = Transient }
}

// Retain keeps a singleton alive after its last owner released it. It is
// only disposed by Close.
func Retain() ProvideOption {
	return func(p *provider) { p.retain = true }
}

// InLayer places the provider's instances in the named layer. Layers keep
// groups of instances apart, so one group can be inspected or torn down
// without touching the others.
func InLayer(name string) ProvideOption {
	return func(p *provider) {
		if name != "" {
			p.layer = name
		}
	}
}
