package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/actorbus/engine/internal/core/system"
)

// Updater is the world as the update phase sees it.
type Updater interface {
	Update(dt time.Duration) error
}

// ActorSystem advances the world: actor updates, spawn drain and zombie
// reclamation. Phase 1 (Update).
type ActorSystem struct {
	world    Updater
	log      *zap.Logger
	failures int
}

func NewActorSystem(w Updater, log *zap.Logger) *ActorSystem {
	return &ActorSystem{world: w, log: log}
}

func (s *ActorSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ActorSystem) Update(dt time.Duration) {
	if err := s.world.Update(dt); err != nil {
		s.failures++
		s.log.Warn("tick finished with spawn failures", zap.Error(err))
	}
}

// Failures counts ticks that reported spawn failures.
func (s *ActorSystem) Failures() int { return s.failures }
