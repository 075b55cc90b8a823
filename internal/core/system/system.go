package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput   Phase = iota // 0: apply requests queued by other goroutines
	PhaseUpdate               // 1: actor updates, spawn drain, reclamation
	PhaseOutput               // 2: publish what the tick produced
	PhasePersist              // 3: periodic snapshots
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	}
	return "unknown"
}

// System is one stage of the game loop.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
