package sim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/actorbus/engine/internal/actor"
	"github.com/actorbus/engine/internal/component"
	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/data"
	"github.com/actorbus/engine/internal/persist"
	"github.com/actorbus/engine/internal/scripting"
	"github.com/actorbus/engine/internal/sim"
)

const templates = `
templates:
  spark:
    components:
      - type: transform
      - type: lifetime
        config:
          seconds: 2
  beacon:
    components:
      - type: transform
      - type: spawner
        config:
          template: spark
          interval: 1
          limit: 2
          offset: [0, 1, 0]
  drifter:
    components:
      - type: transform
        config:
          velocity: [0, 1, 0]
  blinker:
    components:
      - type: transform
      - type: script
        config:
          behavior: blink
`

const blink = `
local B = {}
function B.update(self, dt)
  local x, y, z = self:position()
  self:spawn("spark", x, y, z)
  self:delete()
end
return B
`

func newWorld(t *testing.T) *sim.World {
	t.Helper()
	log := zaptest.NewLogger(t)
	tt, err := data.ParseTemplates([]byte(templates))
	require.NoError(t, err)
	eng, err := scripting.NewEngine("", log)
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	require.NoError(t, eng.LoadString("blink", blink))

	w := sim.NewWorld(sim.Deps{Templates: tt, Scripts: eng, Log: log})
	require.NoError(t, w.CheckTemplates())
	return w
}

func level(t *testing.T, doc string) *data.Level {
	t.Helper()
	lvl, err := data.ParseLevel([]byte(doc))
	require.NoError(t, err)
	return lvl
}

func TestSpawnerLifecycle(t *testing.T) {
	w := newWorld(t)
	var spawned, reaped int
	message.On(w.Root().Handler(), func(event.ActorSpawned) { spawned++ })
	message.On(w.Root().Handler(), func(event.ActorReaped) { reaped++ })

	require.NoError(t, w.LoadLevel(level(t, "placements:\n  - template: beacon\n    position: [5, 0, 0]\n")))
	require.Equal(t, 1, w.Actors().Size())

	sizes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		require.NoError(t, w.Update(time.Second))
		sizes = append(sizes, w.Actors().Size())
	}
	assert.Equal(t, []int{2, 3, 2, 1, 1}, sizes)
	assert.Equal(t, 2, spawned)
	assert.Equal(t, 2, reaped)
}

func TestSpawnedAtSpawnerOffset(t *testing.T) {
	w := newWorld(t)
	var at []event.Vec3
	message.On(w.Root().Handler(), func(m event.ActorSpawned) { at = append(at, m.Position) })

	require.NoError(t, w.LoadLevel(level(t, "placements:\n  - template: beacon\n    position: [5, 0, 0]\n")))
	require.NoError(t, w.Update(time.Second))
	assert.Equal(t, []event.Vec3{{X: 5, Y: 1}}, at)
}

func TestScriptedActorSpawnsAndDeletes(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, w.LoadLevel(level(t, "placements:\n  - template: blinker\n    position: [1, 2, 3]\n")))

	require.NoError(t, w.Update(time.Second))
	require.Equal(t, 1, w.Actors().Size())

	var a *actor.Actor
	w.Actors().Each(func(x *actor.Actor) { a = x })
	assert.Equal(t, "spark", a.Template())
	pos, ok := a.Position()
	require.True(t, ok)
	assert.Equal(t, event.Vec3{X: 1, Y: 2, Z: 3}, pos)
}

func TestConfiguredVelocityDrivesPosition(t *testing.T) {
	w := newWorld(t)
	w.SetDebugDisplay(true)
	var seen []event.PositionFinalized
	message.On(w.Root().Handler(), func(m event.PositionFinalized) { seen = append(seen, m) })

	require.NoError(t, w.Spawn("drifter", event.Vec3{X: 5}, event.Vec3{X: 1}))
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Update(time.Second))
	}

	require.Len(t, seen, 2)
	assert.Equal(t, event.Vec3{X: 1, Y: 1}, seen[0].Velocity)
	assert.Equal(t, event.Vec3{X: 6, Y: 1}, seen[0].Position)
	assert.Equal(t, event.Vec3{X: 7, Y: 2}, seen[1].Position)
}

func TestRestoreResumesFromSnapshot(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, w.Spawn("drifter", event.Vec3{X: 5}, event.Vec3{X: 1}))
	require.NoError(t, w.Actors().Spawn([]component.Spec{{Type: "transform"}}, event.Vec3{}, event.Vec3{}))
	require.NoError(t, w.Update(time.Second))
	require.NoError(t, w.Update(time.Second))

	snap := persist.NewSnapshot(2, time.Now(), w.Actors().Snapshot())
	snap.Actors = append(snap.Actors, persist.ActorRow{ID: 999, Template: "spark", Zombie: true})

	w2 := newWorld(t)
	n, err := w2.Restore(snap)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "zombies and template-less actors are skipped")
	require.Equal(t, 1, w2.Actors().Size())

	var a *actor.Actor
	w2.Actors().Each(func(x *actor.Actor) { a = x })
	assert.Equal(t, "drifter", a.Template())
	assert.Greater(t, uint64(a.ID()), uint64(999), "ids resume past the snapshot")

	pos, _ := a.Position()
	vel, _ := a.Velocity()
	assert.Equal(t, event.Vec3{X: 6, Y: 1}, pos)
	assert.Equal(t, event.Vec3{X: 1, Y: 1}, vel, "saved velocity is not offset again")

	require.NoError(t, w2.Update(time.Second))
	pos, _ = a.Position()
	assert.Equal(t, event.Vec3{X: 7, Y: 2}, pos)
}

func TestRestoreUnknownTemplate(t *testing.T) {
	w := newWorld(t)
	snap := persist.Snapshot{Actors: []persist.ActorRow{{ID: 4, Template: "ghost"}}}
	_, err := w.Restore(snap)
	assert.Error(t, err)
	assert.Equal(t, 0, w.Actors().Size())

	bare := sim.NewWorld(sim.Deps{Log: zaptest.NewLogger(t)})
	_, err = bare.Restore(persist.Snapshot{})
	assert.Error(t, err)
}

func TestDebugDisplayFromRoot(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, w.LoadLevel(level(t, "placements:\n  - template: spark\n    velocity: [1, 0, 0]\n")))

	var global int
	message.On(w.Root().Handler(), func(event.PositionFinalized) { global++ })

	require.NoError(t, w.Update(time.Second))
	assert.Equal(t, 0, global, "positions stay inside the actor while debug display is off")

	w.SetDebugDisplay(true)
	assert.True(t, w.DebugDisplay())
	require.NoError(t, w.Update(time.Second))
	assert.Equal(t, 1, global)

	w.SetDebugDisplay(false)
	assert.False(t, w.DebugDisplay())
}

func TestWorldWithoutTemplates(t *testing.T) {
	w := sim.NewWorld(sim.Deps{Log: zaptest.NewLogger(t)})
	assert.NoError(t, w.CheckTemplates())
	assert.Error(t, w.Spawn("spark", event.Vec3{}, event.Vec3{}))
	assert.Error(t, w.LoadLevel(&data.Level{}))

	require.NoError(t, w.Actors().Spawn([]component.Spec{{Type: "transform"}}, event.Vec3{}, event.Vec3{}))
	require.NoError(t, w.Update(time.Second))
	assert.Equal(t, 1, w.Actors().Size())
}

func TestCheckTemplatesRejectsUnknownTypes(t *testing.T) {
	tt, err := data.ParseTemplates([]byte("templates:\n  odd:\n    components:\n      - type: hover\n"))
	require.NoError(t, err)
	w := sim.NewWorld(sim.Deps{Templates: tt, Log: zaptest.NewLogger(t)})
	assert.ErrorIs(t, w.CheckTemplates(), component.ErrUnknownType)
}

func TestShutdownDropsEverything(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, w.LoadLevel(level(t, "placements:\n  - template: spark\n    count: 4\n")))
	require.Equal(t, 4, w.Actors().Size())

	w.Shutdown()
	assert.Equal(t, 0, w.Actors().Size())
	assert.Equal(t, 2, w.Tree().Len())
}
