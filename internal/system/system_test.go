package system_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/actorbus/engine/internal/actor"
	coresys "github.com/actorbus/engine/internal/core/system"
	"github.com/actorbus/engine/internal/persist"
	"github.com/actorbus/engine/internal/system"
)

type fakeWorld struct {
	updates int
	err     error
	debug   []bool
	states  []actor.State
}

func (w *fakeWorld) Update(time.Duration) error { w.updates++; return w.err }
func (w *fakeWorld) SetDebugDisplay(on bool)    { w.debug = append(w.debug, on) }
func (w *fakeWorld) Snapshot() []actor.State    { return w.states }

type fakeCommands struct{ queued []bool }

func (c *fakeCommands) DrainCommands(apply func(bool)) int {
	n := len(c.queued)
	for _, on := range c.queued {
		apply(on)
	}
	c.queued = nil
	return n
}

type fakeSink struct{ ticks []uint64 }

func (s *fakeSink) Flush(tick uint64) int { s.ticks = append(s.ticks, tick); return 0 }

type fakeSaver struct {
	saved   []persist.Snapshot
	err     error
	hadDead bool
}

func (s *fakeSaver) Save(ctx context.Context, snap persist.Snapshot) error {
	_, s.hadDead = ctx.Deadline()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, snap)
	return nil
}

func TestActorSystemLogsSpawnFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := &fakeWorld{}
	s := system.NewActorSystem(w, zap.New(core))
	assert.Equal(t, coresys.PhaseUpdate, s.Phase())

	s.Update(time.Millisecond)
	assert.Equal(t, 0, logs.Len())

	w.err = errors.New("spawn spark: lifetime: seconds is required")
	s.Update(time.Millisecond)
	assert.Equal(t, 2, w.updates)
	assert.Equal(t, 1, s.Failures())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "tick finished with spawn failures", logs.All()[0].Message)
}

func TestDebugInputSystemAppliesToggles(t *testing.T) {
	w := &fakeWorld{}
	cmds := &fakeCommands{queued: []bool{true, false, true}}
	s := system.NewDebugInputSystem(cmds, w, zaptest.NewLogger(t))
	assert.Equal(t, coresys.PhaseInput, s.Phase())

	s.Update(0)
	assert.Equal(t, []bool{true, false, true}, w.debug)
	s.Update(0)
	assert.Len(t, w.debug, 3)
}

func TestDebugViewSystemFlushesWithRunnerTick(t *testing.T) {
	sink := &fakeSink{}
	r := coresys.NewRunner()
	r.Register(system.NewDebugViewSystem(sink, r.Ticks))

	r.Tick(time.Millisecond)
	r.Tick(time.Millisecond)
	assert.Equal(t, []uint64{1, 2}, sink.ticks)
}

func TestPersistSystemSavesEveryInterval(t *testing.T) {
	w := &fakeWorld{states: []actor.State{{ID: 3, Template: "spark", Components: []string{"transform"}}}}
	saver := &fakeSaver{}
	r := coresys.NewRunner()
	s := system.NewPersistSystem(w, saver, r.Ticks, 3, time.Second, zaptest.NewLogger(t))
	r.Register(s)
	assert.Equal(t, coresys.PhasePersist, s.Phase())

	for i := 0; i < 7; i++ {
		r.Tick(time.Millisecond)
	}
	require.Len(t, saver.saved, 2)
	assert.Equal(t, uint64(3), saver.saved[0].Tick)
	assert.Equal(t, uint64(6), saver.saved[1].Tick)
	assert.Equal(t, uint64(3), saver.saved[0].Actors[0].ID)
	assert.True(t, saver.hadDead, "saves run under a deadline")
}

func TestPersistSystemSurvivesSaveErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	saver := &fakeSaver{err: errors.New("connection refused")}
	s := system.NewPersistSystem(&fakeWorld{}, saver, func() uint64 { return 1 }, 1, 0, zap.New(core))

	s.Update(0)
	s.Update(0)
	assert.Equal(t, 2, logs.FilterMessage("snapshot save failed").Len())

	saver.err = nil
	require.NoError(t, s.SaveNow())
	assert.Len(t, saver.saved, 1)
}
