package component

import (
	"errors"
	"fmt"
	"sort"

	"github.com/actorbus/engine/internal/core/scope"
)

// ErrUnknownType is returned when a data file names a component type that
// was never registered.
var ErrUnknownType = errors.New("unknown component type")

// Constructor builds a component around a node that is already registered
// as a child of the actor's scope.
type Constructor func(node *scope.Subscriber) Component

// Registry maps component type names to constructors. It is filled once at
// startup and only read afterwards.
type Registry struct {
	ctors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor, 16)}
}

// NewBuiltinRegistry returns a registry holding every built-in component.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.Register(TransformType, NewTransform)
	r.Register(LifetimeType, NewLifetime)
	r.Register(SpawnerType, NewSpawner)
	r.Register(ScriptType, NewScript)
	return r
}

// Register binds name to ctor. Registering a name twice is a programming
// error.
func (r *Registry) Register(name string, ctor Constructor) {
	if name == "" || ctor == nil {
		panic("component: register requires a name and a constructor")
	}
	if _, dup := r.ctors[name]; dup {
		panic(fmt.Sprintf("component: type %q registered twice", name))
	}
	r.ctors[name] = ctor
}

func (r *Registry) Has(name string) bool {
	_, ok := r.ctors[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Count() int {
	return len(r.ctors)
}

// Check reports the first spec naming an unregistered type.
func (r *Registry) Check(specs []Spec) error {
	for _, s := range specs {
		if !r.Has(s.Type) {
			return fmt.Errorf("%w %q", ErrUnknownType, s.Type)
		}
	}
	return nil
}

// Create builds a component of the named type attached to owner.
func (r *Registry) Create(name string, owner *scope.Scope) (Component, error) {
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	node := owner.Tree().NewSubscriber()
	owner.RegisterSubscriber(node)
	c := ctor(node)
	if c == nil || c.Node() != node {
		owner.Tree().Release(node.ID())
		panic(fmt.Sprintf("component: constructor for %q did not adopt its node", name))
	}
	return c, nil
}
