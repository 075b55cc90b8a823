package component

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/scope"
)

const SpawnerType = "spawner"

// Spawner periodically requests a new actor from a template, placed at its
// own actor's position plus an offset. Requests go through the deferred
// spawn path of the owning context.
type Spawner struct {
	Base
	at       tracker
	template string
	interval time.Duration
	limit    int
	offset   event.Vec3
	elapsed  time.Duration
	spawned  int
}

func NewSpawner(node *scope.Subscriber) Component {
	s := &Spawner{}
	s.Init(SpawnerType, node)
	s.at.bind(&s.Base)
	return s
}

func (s *Spawner) Load(cfg Config) error {
	if s.Context() == nil {
		return errors.New("spawner: no owning context")
	}
	tmpl, err := cfg.String("template", "")
	if err != nil {
		return fmt.Errorf("spawner: %w", err)
	}
	if tmpl == "" {
		return errors.New("spawner: template is required")
	}
	secs, err := cfg.Float("interval", 1)
	if err != nil {
		return fmt.Errorf("spawner: %w", err)
	}
	if secs <= 0 {
		return fmt.Errorf("spawner: interval must be positive, got %v", secs)
	}
	limit, err := cfg.Int("limit", 0)
	if err != nil {
		return fmt.Errorf("spawner: %w", err)
	}
	if limit < 0 {
		return fmt.Errorf("spawner: limit must not be negative, got %d", limit)
	}
	offset, err := cfg.Vec3("offset", event.Vec3{})
	if err != nil {
		return fmt.Errorf("spawner: %w", err)
	}
	s.template = tmpl
	s.interval = time.Duration(secs * float64(time.Second))
	s.limit = limit
	s.offset = offset
	s.elapsed, s.spawned = 0, 0
	return nil
}

func (s *Spawner) Update(dt time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.elapsed += dt
	for s.elapsed >= s.interval {
		if s.limit > 0 && s.spawned >= s.limit {
			return
		}
		s.elapsed -= s.interval
		if err := s.Context().SpawnTemplate(s.template, s.at.pos.Add(s.offset), event.Vec3{}); err != nil {
			s.Logger().Error("spawn request rejected", zap.String("template", s.template), zap.Error(err))
			return
		}
		s.spawned++
	}
}

// Spawned returns how many requests were accepted so far.
func (s *Spawner) Spawned() int { return s.spawned }
