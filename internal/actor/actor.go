package actor

import (
	"fmt"
	"time"

	"github.com/actorbus/engine/internal/component"
	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/core/scope"
)

// Actor is a scope whose children are its components.
//
// Lifecycle: fresh (no components) → loaded → zombie. The zombie flag is set
// only by a DeleteActor addressed to this actor and is never cleared; the
// owning Set drops zombies at the end of its update.
type Actor struct {
	*scope.Scope
	template   string
	zombie     bool
	fresh      bool // spawned this tick, not updated yet
	components []component.Component
	byName     map[string]component.Component
}

func newActor(sc *scope.Scope) *Actor {
	a := &Actor{
		Scope:  sc,
		byName: make(map[string]component.Component, 4),
	}
	message.On(sc.Handler(), func(m event.DeleteActor) {
		if m.ID == a.ID() {
			a.zombie = true
		}
	})
	return a
}

// Load builds the actor's components from specs. Order of operations:
// create every component, hand over ctx, load each with its config, then
// broadcast the initial position and velocity once. On error the actor is
// left with no components.
func (a *Actor) Load(specs []component.Spec, pos, vel event.Vec3, ctx component.Context) error {
	a.reset()
	reg := ctx.Components()
	for _, spec := range specs {
		c, err := reg.Create(spec.Type, a.Scope)
		if err != nil {
			a.reset()
			return fmt.Errorf("actor %d: %w", a.ID(), err)
		}
		a.components = append(a.components, c)
		if _, dup := a.byName[spec.Type]; !dup {
			a.byName[spec.Type] = c
		}
	}

	a.Receive(component.ContextAvailable{Context: ctx})

	for i, c := range a.components {
		if err := c.Load(specs[i].Config); err != nil {
			a.reset()
			return fmt.Errorf("actor %d: load %s: %w", a.ID(), c.TypeName(), err)
		}
	}

	a.Receive(event.DeclareInitialState{Position: pos, Velocity: vel})
	return nil
}

// reset releases the components of a previous load.
func (a *Actor) reset() {
	tree := a.Tree()
	for _, c := range a.components {
		tree.Release(c.Node().ID())
	}
	a.components = a.components[:0]
	clear(a.byName)
}

// Update forwards the tick to every component in attachment order.
func (a *Actor) Update(dt time.Duration) {
	for _, c := range a.components {
		c.Update(dt)
	}
}

func (a *Actor) IsZombie() bool { return a.zombie }

// Template is the name of the template the actor was spawned from, if any.
func (a *Actor) Template() string { return a.template }

// Component returns the first attached component of the given type. Asking
// for a component the actor does not have is a programming error.
func (a *Actor) Component(typeName string) component.Component {
	c, ok := a.byName[typeName]
	if !ok {
		panic(fmt.Sprintf("actor: %d has no %q component", a.ID(), typeName))
	}
	return c
}

func (a *Actor) HasComponent(typeName string) bool {
	_, ok := a.byName[typeName]
	return ok
}

// Components returns the attached components in attachment order.
func (a *Actor) Components() []component.Component {
	out := make([]component.Component, len(a.components))
	copy(out, a.components)
	return out
}

// Position reports the position of the first component that knows it.
func (a *Actor) Position() (event.Vec3, bool) {
	for _, c := range a.components {
		if p, ok := c.(component.Positioner); ok {
			return p.Position(), true
		}
	}
	return event.Vec3{}, false
}

// Velocity reports the velocity of the first component that knows it.
func (a *Actor) Velocity() (event.Vec3, bool) {
	for _, c := range a.components {
		if m, ok := c.(component.Mover); ok {
			return m.Velocity(), true
		}
	}
	return event.Vec3{}, false
}
