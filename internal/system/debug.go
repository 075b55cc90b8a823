package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/actorbus/engine/internal/core/system"
)

// CommandSource hands over debug display toggles queued by other goroutines.
type CommandSource interface {
	DrainCommands(apply func(on bool)) int
}

// DebugToggler is what a toggle is applied to.
type DebugToggler interface {
	SetDebugDisplay(on bool)
}

// DebugInputSystem applies queued debug display toggles on the game loop.
// Phase 0 (Input).
type DebugInputSystem struct {
	src   CommandSource
	world DebugToggler
	log   *zap.Logger
}

func NewDebugInputSystem(src CommandSource, w DebugToggler, log *zap.Logger) *DebugInputSystem {
	return &DebugInputSystem{src: src, world: w, log: log}
}

func (s *DebugInputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *DebugInputSystem) Update(_ time.Duration) {
	s.src.DrainCommands(func(on bool) {
		s.world.SetDebugDisplay(on)
		s.log.Info("debug display toggled", zap.Bool("on", on))
	})
}

// FrameSink publishes the frame collected during a tick.
type FrameSink interface {
	Flush(tick uint64) int
}

// DebugViewSystem closes the debug frame at the end of every tick.
// Phase 2 (Output).
type DebugViewSystem struct {
	sink  FrameSink
	ticks func() uint64
}

func NewDebugViewSystem(sink FrameSink, ticks func() uint64) *DebugViewSystem {
	return &DebugViewSystem{sink: sink, ticks: ticks}
}

func (s *DebugViewSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *DebugViewSystem) Update(_ time.Duration) {
	s.sink.Flush(s.ticks())
}
