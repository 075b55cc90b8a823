package component

import (
	"errors"
	"fmt"
	"time"

	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/scope"
)

const LifetimeType = "lifetime"

// Lifetime deletes its actor once a configured amount of simulated time has
// passed.
type Lifetime struct {
	Base
	remaining time.Duration
	fired     bool
}

func NewLifetime(node *scope.Subscriber) Component {
	l := &Lifetime{}
	l.Init(LifetimeType, node)
	return l
}

func (l *Lifetime) Load(cfg Config) error {
	if !cfg.Has("seconds") {
		return errors.New("lifetime: seconds is required")
	}
	secs, err := cfg.Float("seconds", 0)
	if err != nil {
		return fmt.Errorf("lifetime: %w", err)
	}
	if secs <= 0 {
		return fmt.Errorf("lifetime: seconds must be positive, got %v", secs)
	}
	l.remaining = time.Duration(secs * float64(time.Second))
	l.fired = false
	return nil
}

func (l *Lifetime) Update(dt time.Duration) {
	if l.fired {
		return
	}
	l.remaining -= dt
	if l.remaining > 0 {
		return
	}
	l.fired = true
	l.node.SendToScope(event.DeleteActor{ID: l.Actor()})
}

func (l *Lifetime) Remaining() time.Duration { return l.remaining }
func (l *Lifetime) Expired() bool            { return l.fired }
