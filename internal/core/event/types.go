package event

import (
	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/core/uid"
)

// Catalog kinds. Renumbering breaks nothing on disk, but keep the block
// append-only so log output stays comparable across builds.
const (
	KindDeleteActor message.Kind = iota + 1
	KindPositionFinalized
	KindDeclareInitialState
	KindContextAvailable
	KindEnableDebugDisplay
	KindDisableDebugDisplay
	KindActorSpawned
	KindActorReaped
)

// DeleteActor asks the actor with the given id to become a zombie.
type DeleteActor struct {
	message.ActionRole
	ID uid.ID
}

func (DeleteActor) Kind() message.Kind { return KindDeleteActor }

// PositionFinalized is sent once per update by an actor's transform.
type PositionFinalized struct {
	message.EventRole
	Actor    uid.ID
	Position Vec3
	Velocity Vec3
}

func (PositionFinalized) Kind() message.Kind { return KindPositionFinalized }

// DeclareInitialState is broadcast once to an actor's components at the end
// of its load.
type DeclareInitialState struct {
	message.ActionRole
	Position Vec3
	Velocity Vec3
}

func (DeclareInitialState) Kind() message.Kind { return KindDeclareInitialState }

type EnableDebugDisplay struct{ message.ActionRole }

func (EnableDebugDisplay) Kind() message.Kind { return KindEnableDebugDisplay }

type DisableDebugDisplay struct{ message.ActionRole }

func (DisableDebugDisplay) Kind() message.Kind { return KindDisableDebugDisplay }

// ActorSpawned is announced on the global scope after a queued spawn loads.
type ActorSpawned struct {
	message.EventRole
	ID       uid.ID
	Template string
	Position Vec3
}

func (ActorSpawned) Kind() message.Kind { return KindActorSpawned }

// ActorReaped is announced on the global scope when a zombie is dropped.
type ActorReaped struct {
	message.EventRole
	ID uid.ID
}

func (ActorReaped) Kind() message.Kind { return KindActorReaped }
