package inject

import (
	"fmt"
	"log/slog"
	"reflect"
)

type instance struct {
	typ    reflect.Type
	value  any
	retain bool
	owners map[any]struct{}
}

// layer keeps the instances of every provider assigned to it.
type layer struct {
	name       string
	singletons map[reflect.Type]*instance
	transients map[any]map[reflect.Type]*instance
}

func newLayer(name string) *layer {
	return &layer{
		name:       name,
		singletons: make(map[reflect.Type]*instance),
		transients: make(map[any]map[reflect.Type]*instance),
	}
}

func (l *layer) acquireSingleton(p *provider, owner any, logger *slog.Logger) (any, error) {
	inst, ok := l.singletons[p.typ]
	if !ok {
		v, err := construct(p)
		if err != nil {
			return nil, err
		}
		inst = &instance{typ: p.typ, value: v, retain: p.retain, owners: make(map[any]struct{})}
		l.singletons[p.typ] = inst
	}

	if _, held := inst.owners[owner]; held {
		logger.Warn("owner acquired the same singleton twice",
			slog.String("type", p.typ.String()),
			slog.String("owner", ownerName(owner)),
		)
		return inst.value, nil
	}

	inst.owners[owner] = struct{}{}

	logger.Debug("injected singleton",
		slog.String("type", p.typ.String()),
		slog.String("owner", ownerName(owner)),
		slog.String("layer", l.name),
		slog.Int("references", len(inst.owners)),
	)
	return inst.value, nil
}

func (l *layer) acquireTransient(p *provider, owner any, logger *slog.Logger) (any, error) {
	held := l.transients[owner]
	if inst, ok := held[p.typ]; ok {
		logger.Warn("owner acquired the same transient twice",
			slog.String("type", p.typ.String()),
			slog.String("owner", ownerName(owner)),
		)
		return inst.value, nil
	}

	v, err := construct(p)
	if err != nil {
		return nil, err
	}

	if held == nil {
		held = make(map[reflect.Type]*instance)
		l.transients[owner] = held
	}
	held[p.typ] = &instance{typ: p.typ, value: v, owners: map[any]struct{}{owner: {}}}

	logger.Debug("created transient",
		slog.String("type", p.typ.String()),
		slog.String("owner", ownerName(owner)),
		slog.String("layer", l.name),
	)
	return v, nil
}

// release removes owner everywhere and returns the instances left without owners.
func (l *layer) release(owner any, logger *slog.Logger) []*instance {
	var dropped []*instance

	for _, inst := range l.transients[owner] {
		dropped = append(dropped, inst)
	}
	delete(l.transients, owner)

	for typ, inst := range l.singletons {
		if _, held := inst.owners[owner]; !held {
			continue
		}
		delete(inst.owners, owner)

		logger.Debug("singleton released",
			slog.String("type", typ.String()),
			slog.String("owner", ownerName(owner)),
			slog.Int("references", len(inst.owners)),
		)

		if len(inst.owners) == 0 && !inst.retain {
			delete(l.singletons, typ)
			dropped = append(dropped, inst)
		}
	}

	return dropped
}

func (l *layer) clear() []*instance {
	var dropped []*instance
	for _, inst := range l.singletons {
		dropped = append(dropped, inst)
	}
	for _, held := range l.transients {
		for _, inst := range held {
			dropped = append(dropped, inst)
		}
	}
	l.singletons = make(map[reflect.Type]*instance)
	l.transients = make(map[any]map[reflect.Type]*instance)
	return dropped
}

func construct(p *provider) (any, error) {
	v, err := p.construct()
	if err != nil {
		return nil, fmt.Errorf("construct %v: %w", p.typ, err)
	}
	if in, ok := v.(Initializer); ok {
		if err := in.Initialize(); err != nil {
			return nil, fmt.Errorf("initialize %v: %w", p.typ, err)
		}
	}
	return v, nil
}
