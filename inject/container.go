// Package inject is an explicit dependency registry.
//
// Factories are registered per type with Provide. Owners (any comparable
// value, usually a pointer) obtain instances with Acquire and give them back
// with Release. Singletons are shared between owners and keep an explicit set
// of who holds them; when the last owner releases a singleton it is disposed,
// unless it was provided with Retain. Transient instances belong to a single
// owner and are disposed when that owner releases.
//
// Instances implementing Initializer are initialized on first acquisition;
// instances implementing Disposer are disposed when dropped.
package inject

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// DefaultLayer is the layer providers go to unless InLayer says otherwise.
const DefaultLayer = "default"

// Initializer is implemented by instances that need setup the first time
// they are acquired. Initialize runs with the container locked and must not
// call back into it.
type Initializer interface {
	Initialize() error
}

// Disposer is implemented by instances that release resources when the
// container drops them.
type Disposer interface {
	Dispose() error
}

// Container holds providers and the layers their instances live in.
// It is safe for concurrent use.
type Container struct {
	mu        sync.Mutex
	logger    *slog.Logger
	providers map[reflect.Type]*provider
	layers    map[string]*layer
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger for acquisition and release traces. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		logger:    slog.Default(),
		providers: make(map[reflect.Type]*provider),
		layers:    make(map[string]*layer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provide registers factory as the source of T.
func Provide[T any](c *Container, factory func() (T, error), opts ...ProvideOption) error {
	if factory == nil {
		return ErrNilFactory
	}

	p := &provider{
		typ:       reflect.TypeFor[T](),
		lifetime:  Singleton,
		layer:     DefaultLayer,
		construct: func() (any, error) { return factory() },
	}
	for _, opt := range opts {
		opt(p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.providers[p.typ]; exists {
		return fmt.Errorf("%w: %v", ErrAlreadyProvided, p.typ)
	}
	c.providers[p.typ] = p

	c.logger.Debug("provider registered",
		slog.String("type", p.typ.String()),
		slog.String("lifetime", p.lifetime.String()),
		slog.String("layer", p.layer),
	)
	return nil
}

// Acquire returns the instance of T for owner, creating it if needed.
func Acquire[T any](c *Container, owner any) (T, error) {
	var zero T

	v, err := c.acquire(reflect.TypeFor[T](), owner)
	if err != nil {
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: provider for %v returned %T", ErrTypeMismatch, reflect.TypeFor[T](), v)
	}
	return out, nil
}

// MustAcquire is like Acquire but panics on error.
func MustAcquire[T any](c *Container, owner any) T {
	v, err := Acquire[T](c, owner)
	if err != nil {
		panic(err)
	}
	return v
}

// References returns how many owners hold the singleton instance of T.
func References[T any](c *Container) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.providers[reflect.TypeFor[T]()]
	if !ok {
		return 0
	}
	l, ok := c.layers[p.layer]
	if !ok {
		return 0
	}
	inst, ok := l.singletons[p.typ]
	if !ok {
		return 0
	}
	return len(inst.owners)
}

// Release drops every reference owner holds, in every layer. Instances left
// without owners are disposed.
func (c *Container) Release(owner any) error {
	if !comparableOwner(owner) {
		return ErrInvalidOwner
	}

	c.mu.Lock()
	var dropped []*instance
	for _, l := range c.layers {
		dropped = append(dropped, l.release(owner, c.logger)...)
	}
	c.mu.Unlock()

	return c.dispose(dropped)
}

// Close disposes every instance, retained ones included, and forgets all owners.
func (c *Container) Close() error {
	c.mu.Lock()
	var dropped []*instance
	for name, l := range c.layers {
		dropped = append(dropped, l.clear()...)
		delete(c.layers, name)
	}
	c.mu.Unlock()

	return c.dispose(dropped)
}

func (c *Container) acquire(typ reflect.Type, owner any) (any, error) {
	if !comparableOwner(owner) {
		return nil, ErrInvalidOwner
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.providers[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotProvided, typ)
	}

	l, ok := c.layers[p.layer]
	if !ok {
		l = newLayer(p.layer)
		c.layers[p.layer] = l
		c.logger.Debug("layer created", slog.String("layer", p.layer))
	}

	if p.lifetime == Transient {
		return l.acquireTransient(p, owner, c.logger)
	}
	return l.acquireSingleton(p, owner, c.logger)
}

func (c *Container) dispose(dropped []*instance) error {
	var errs []error
	for _, inst := range dropped {
		c.logger.Debug("clearing instance as it has no more references left",
			slog.String("type", inst.typ.String()),
		)
		if d, ok := inst.value.(Disposer); ok {
			if err := d.Dispose(); err != nil {
				errs = append(errs, fmt.Errorf("dispose %v: %w", inst.typ, err))
			}
		}
	}
	return errors.Join(errs...)
}

func comparableOwner(owner any) bool {
	return owner != nil && reflect.TypeOf(owner).Comparable()
}

func ownerName(owner any) string {
	return fmt.Sprintf("%T", owner)
}
