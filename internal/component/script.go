package component

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/core/scope"
	"github.com/actorbus/engine/internal/scripting"
)

const ScriptType = "script"

// Script runs a Lua behavior loaded in the owning context's scripting engine.
type Script struct {
	Base
	at       tracker
	behavior string
	inst     *scripting.Instance
	deleted  bool
}

func NewScript(node *scope.Subscriber) Component {
	s := &Script{}
	s.Init(ScriptType, node)
	s.at.bind(&s.Base)
	message.On(node.Handler(), func(m event.DeleteActor) {
		if m.ID != s.Actor() || s.deleted || s.inst == nil {
			return
		}
		s.deleted = true
		_ = s.inst.OnDelete()
	})
	return s
}

func (s *Script) Load(cfg Config) error {
	ctx := s.Context()
	if ctx == nil || ctx.Scripts() == nil {
		return errors.New("script: no scripting engine available")
	}
	name, err := cfg.String("behavior", "")
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	if name == "" {
		return errors.New("script: behavior is required")
	}
	inst, err := ctx.Scripts().Instantiate(name, scriptHost{s})
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	s.behavior = name
	s.inst = inst
	if err := inst.Load(map[string]any(cfg)); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func (s *Script) Update(dt time.Duration) {
	if s.inst == nil {
		return
	}
	// the engine logs hook errors
	_ = s.inst.Update(dt.Seconds())
}

func (s *Script) Behavior() string { return s.behavior }

// Field exposes state the behavior stored on self.
func (s *Script) Field(key string) any {
	if s.inst == nil {
		return nil
	}
	return s.inst.Field(key)
}

// scriptHost adapts a Script to the scripting.Host callbacks.
type scriptHost struct{ s *Script }

func (h scriptHost) ID() uint64    { return uint64(h.s.node.ID()) }
func (h scriptHost) Actor() uint64 { return uint64(h.s.Actor()) }

func (h scriptHost) Position() (x, y, z float64) {
	p := h.s.at.pos
	return p.X, p.Y, p.Z
}

func (h scriptHost) Delete() {
	h.s.node.SendToScope(event.DeleteActor{ID: h.s.Actor()})
}

func (h scriptHost) Spawn(template string, x, y, z float64) error {
	return h.s.Context().SpawnTemplate(template, event.Vec3{X: x, Y: y, Z: z}, event.Vec3{})
}

func (h scriptHost) Log(msg string) {
	h.s.Logger().Info("script", zap.String("behavior", h.s.behavior), zap.String("msg", msg))
}
