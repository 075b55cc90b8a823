package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/actorbus/engine/internal/actor"
	coresys "github.com/actorbus/engine/internal/core/system"
	"github.com/actorbus/engine/internal/persist"
)

// SnapshotSaver stores one snapshot.
type SnapshotSaver interface {
	Save(ctx context.Context, snap persist.Snapshot) error
}

// StateSource reports the current actor states.
type StateSource interface {
	Snapshot() []actor.State
}

// PersistSystem periodically saves a snapshot of the actor set.
// Phase 3 (Persist).
type PersistSystem struct {
	src       StateSource
	saver     SnapshotSaver
	ticks     func() uint64
	log       *zap.Logger
	interval  int // save every N ticks
	timeout   time.Duration
	tickCount int
	now       func() time.Time
}

func NewPersistSystem(src StateSource, saver SnapshotSaver, ticks func() uint64, intervalTicks int, timeout time.Duration, log *zap.Logger) *PersistSystem {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PersistSystem{
		src:      src,
		saver:    saver,
		ticks:    ticks,
		log:      log,
		interval: intervalTicks,
		timeout:  timeout,
		now:      time.Now,
	}
}

func (s *PersistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	if err := s.SaveNow(); err != nil {
		s.log.Error("snapshot save failed", zap.Error(err))
	}
}

// SaveNow saves a snapshot immediately. Called for graceful shutdown as well.
func (s *PersistSystem) SaveNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	snap := persist.NewSnapshot(s.ticks(), s.now(), s.src.Snapshot())
	if err := s.saver.Save(ctx, snap); err != nil {
		return err
	}
	s.log.Debug("snapshot saved", zap.Uint64("tick", snap.Tick), zap.Int("actors", len(snap.Actors)))
	return nil
}
