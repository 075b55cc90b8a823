package component

import (
	"time"

	"go.uber.org/zap"

	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/core/scope"
	"github.com/actorbus/engine/internal/scripting"
)

// Component is one behavior unit attached to exactly one actor. Its node is a
// leaf subscriber registered as a child of the actor's scope.
type Component interface {
	// TypeName is the registered factory name. It is part of the data
	// contract: renaming it breaks every template that references it.
	TypeName() string
	Node() *scope.Subscriber
	Load(cfg Config) error
	Update(dt time.Duration)
}

// Context is what an actor's owning collection offers its components. It is
// handed over once, via ContextAvailable, before Load runs.
type Context interface {
	Components() *Registry
	// Spawn and SpawnTemplate queue a new actor; it appears after the
	// current update pass.
	Spawn(specs []Spec, pos, vel event.Vec3) error
	SpawnTemplate(name string, pos, vel event.Vec3) error
	// Scripts may be nil when no scripting engine is configured.
	Scripts() *scripting.Engine
	Logger() *zap.Logger
}

// ContextAvailable delivers the owning context to freshly created components.
type ContextAvailable struct {
	message.ActionRole
	Context Context
}

func (ContextAvailable) Kind() message.Kind { return event.KindContextAvailable }

// Spec names a component type and carries its configuration block.
type Spec struct {
	Type   string `yaml:"type" json:"type"`
	Config Config `yaml:"config,omitempty" json:"config,omitempty"`
}

// Clone returns a copy whose Config can be modified independently.
func (s Spec) Clone() Spec {
	return Spec{Type: s.Type, Config: s.Config.Clone()}
}

// Positioner is implemented by components that know where their actor is.
type Positioner interface {
	Position() event.Vec3
}

// Mover is implemented by components that know how fast their actor moves.
type Mover interface {
	Velocity() event.Vec3
}
