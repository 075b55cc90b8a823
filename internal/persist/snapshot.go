package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/actorbus/engine/internal/actor"
	"github.com/actorbus/engine/internal/core/event"
)

// Snapshot is the persisted view of the actor set at one tick.
type Snapshot struct {
	Tick    uint64     `json:"tick"`
	TakenAt time.Time  `json:"taken_at"`
	Actors  []ActorRow `json:"actors"`
}

// ActorRow is one actor within a snapshot.
type ActorRow struct {
	ID         uint64      `json:"id"`
	Template   string      `json:"template,omitempty"`
	Components []string    `json:"components"`
	Position   *event.Vec3 `json:"position,omitempty"`
	Velocity   *event.Vec3 `json:"velocity,omitempty"`
	Zombie     bool        `json:"zombie,omitempty"`
}

// NewSnapshot converts set states into a snapshot. Zombies are kept so a
// reader can tell an actor was on its way out.
func NewSnapshot(tick uint64, at time.Time, states []actor.State) Snapshot {
	rows := make([]ActorRow, len(states))
	for i, st := range states {
		rows[i] = ActorRow{
			ID:         uint64(st.ID),
			Template:   st.Template,
			Components: st.Components,
			Zombie:     st.Zombie,
		}
		if st.HasPosition {
			p := st.Position
			rows[i].Position = &p
		}
		if st.HasVelocity {
			v := st.Velocity
			rows[i].Velocity = &v
		}
	}
	return Snapshot{Tick: tick, TakenAt: at.UTC(), Actors: rows}
}

// EncodeSnapshot writes snap as zstd-compressed JSON.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	if err := json.NewEncoder(enc).Encode(&snap); err != nil {
		enc.Close()
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// MaxID returns the highest actor id in snap, or 0 for an empty snapshot.
func (s Snapshot) MaxID() uint64 {
	var top uint64
	for _, a := range s.Actors {
		if a.ID > top {
			top = a.ID
		}
	}
	return top
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	var snap Snapshot
	dec, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return snap, err
	}
	defer dec.Close()
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
