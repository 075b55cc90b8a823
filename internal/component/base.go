package component

import (
	"time"

	"go.uber.org/zap"

	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/core/scope"
	"github.com/actorbus/engine/internal/core/uid"
)

// Base carries what every component shares: its node, the owning context
// and the debug-display flag. Embed it and call Init from the constructor.
type Base struct {
	typeName string
	node     *scope.Subscriber
	ctx      Context
	debug    bool
}

// Init binds the base handlers on node. It must be called on the embedded
// field of an already allocated component so the closures see the final
// address.
func (b *Base) Init(typeName string, node *scope.Subscriber) {
	b.typeName = typeName
	b.node = node
	h := node.Handler()
	message.On(h, func(m ContextAvailable) { b.ctx = m.Context })
	message.On(h, func(event.EnableDebugDisplay) { b.debug = true })
	message.On(h, func(event.DisableDebugDisplay) { b.debug = false })
}

func (b *Base) TypeName() string        { return b.typeName }
func (b *Base) Node() *scope.Subscriber { return b.node }
func (b *Base) Context() Context        { return b.ctx }
func (b *Base) DebugDisplay() bool      { return b.debug }
func (b *Base) Load(Config) error       { return nil }
func (b *Base) Update(time.Duration)    {}

// Actor is the id of the actor this component is attached to.
func (b *Base) Actor() uid.ID { return b.node.Parent() }

func (b *Base) Logger() *zap.Logger {
	if b.ctx == nil {
		return zap.NewNop()
	}
	return b.ctx.Logger().With(
		zap.String("component", b.typeName),
		zap.Uint64("actor", uint64(b.Actor())),
	)
}

// tracker follows the actor's position as reported by its transform, or by
// the initial state broadcast when there is no transform.
type tracker struct {
	pos event.Vec3
	vel event.Vec3
}

func (t *tracker) bind(b *Base) {
	h := b.node.Handler()
	message.On(h, func(m event.DeclareInitialState) {
		t.pos, t.vel = m.Position, m.Velocity
	})
	message.On(h, func(m event.PositionFinalized) {
		if m.Actor == b.Actor() {
			t.pos, t.vel = m.Position, m.Velocity
		}
	})
}
