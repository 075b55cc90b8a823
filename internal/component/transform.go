package component

import (
	"fmt"
	"time"

	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/core/scope"
)

const TransformType = "transform"

// Transform owns an actor's kinematic state. Each update it integrates the
// velocity and announces the finalized position: to its actor while debug
// display is off, to the whole tree while it is on.
//
// The configured position and velocity are relative to the actor's initial
// state: a spark configured with velocity [0,1,0] and spawned with velocity
// [1,0,0] moves along [1,1,0].
type Transform struct {
	Base
	pos event.Vec3
	vel event.Vec3

	offPos event.Vec3
	offVel event.Vec3
}

func NewTransform(node *scope.Subscriber) Component {
	t := &Transform{}
	t.Init(TransformType, node)
	message.On(node.Handler(), func(m event.DeclareInitialState) {
		t.pos = m.Position.Add(t.offPos)
		t.vel = m.Velocity.Add(t.offVel)
	})
	return t
}

func (t *Transform) Load(cfg Config) error {
	var err error
	if t.offPos, err = cfg.Vec3("position", event.Vec3{}); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if t.offVel, err = cfg.Vec3("velocity", event.Vec3{}); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	t.pos, t.vel = t.offPos, t.offVel
	return nil
}

func (t *Transform) Update(dt time.Duration) {
	t.pos = t.pos.Advance(t.vel, dt)
	m := event.PositionFinalized{Actor: t.Actor(), Position: t.pos, Velocity: t.vel}
	if t.DebugDisplay() {
		t.node.SendToGlobalScope(m)
		return
	}
	t.node.SendToScope(m)
}

func (t *Transform) Position() event.Vec3 { return t.pos }
func (t *Transform) Velocity() event.Vec3 { return t.vel }

func (t *Transform) SetVelocity(v event.Vec3) { t.vel = v }
