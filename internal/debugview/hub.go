package debugview

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/core/scope"
)

// Position is one actor's reported state within a frame.
type Position struct {
	Actor    uint64     `json:"actor"`
	Position event.Vec3 `json:"position"`
	Velocity event.Vec3 `json:"velocity"`
}

// Spawned announces a new actor within a frame.
type Spawned struct {
	Actor    uint64     `json:"actor"`
	Template string     `json:"template,omitempty"`
	Position event.Vec3 `json:"position"`
}

// Frame is what one tick looked like to the root scope.
type Frame struct {
	Tick      uint64     `json:"tick"`
	Debug     bool       `json:"debug"`
	Positions []Position `json:"positions"`
	Spawned   []Spawned  `json:"spawned,omitempty"`
	Reaped    []uint64   `json:"reaped,omitempty"`
}

// Hub listens on the global scope and fans finished frames out to websocket
// clients. Frame collection and Flush run on the game loop; Subscribe,
// Unsubscribe and RequestDebugDisplay may be called from any goroutine.
type Hub struct {
	node    *scope.Subscriber
	pending Frame
	debug   bool
	log     *zap.Logger

	mu      sync.Mutex
	clients map[uint64]chan []byte
	nextID  atomic.Uint64
	bufSize int

	commands chan bool
}

// NewHub attaches a hub to root. bufSize is the per-client frame backlog;
// frames beyond it are dropped for that client.
func NewHub(root *scope.Scope, bufSize int, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if bufSize <= 0 {
		bufSize = 16
	}
	h := &Hub{
		node:     root.Tree().NewSubscriber(),
		log:      log,
		clients:  make(map[uint64]chan []byte),
		bufSize:  bufSize,
		commands: make(chan bool, 8),
	}
	root.RegisterSubscriber(h.node)

	mh := h.node.Handler()
	message.On(mh, func(m event.PositionFinalized) {
		h.pending.Positions = append(h.pending.Positions, Position{
			Actor:    uint64(m.Actor),
			Position: m.Position,
			Velocity: m.Velocity,
		})
	})
	message.On(mh, func(m event.ActorSpawned) {
		h.pending.Spawned = append(h.pending.Spawned, Spawned{
			Actor:    uint64(m.ID),
			Template: m.Template,
			Position: m.Position,
		})
	})
	message.On(mh, func(m event.ActorReaped) {
		h.pending.Reaped = append(h.pending.Reaped, uint64(m.ID))
	})
	message.On(mh, func(event.EnableDebugDisplay) { h.debug = true })
	message.On(mh, func(event.DisableDebugDisplay) { h.debug = false })
	return h
}

// Flush closes the frame collected since the previous flush, stamps it with
// tick and hands it to every client. It returns the number of clients that
// received the frame.
func (h *Hub) Flush(tick uint64) int {
	f := h.pending
	f.Tick = tick
	f.Debug = h.debug
	if f.Positions == nil {
		f.Positions = []Position{}
	}
	h.pending = Frame{}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return 0
	}
	b, err := json.Marshal(f)
	if err != nil {
		h.log.Error("encode debug frame", zap.Error(err))
		return 0
	}
	sent := 0
	for id, ch := range h.clients {
		select {
		case ch <- b:
			sent++
		default:
			h.log.Debug("debug client behind, frame dropped", zap.Uint64("client", id))
		}
	}
	return sent
}

// Subscribe registers a client and returns its frame channel.
func (h *Hub) Subscribe() (uint64, <-chan []byte) {
	id := h.nextID.Add(1)
	ch := make(chan []byte, h.bufSize)
	h.mu.Lock()
	h.clients[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a client and closes its channel. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(ch)
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// RequestDebugDisplay queues a toggle for the game loop. It reports false
// when the queue is full.
func (h *Hub) RequestDebugDisplay(on bool) bool {
	select {
	case h.commands <- on:
		return true
	default:
		return false
	}
}

// DrainCommands applies every queued toggle in order and returns how many
// were applied. Game loop only.
func (h *Hub) DrainCommands(apply func(on bool)) int {
	n := 0
	for {
		select {
		case on := <-h.commands:
			apply(on)
			n++
		default:
			return n
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.clients {
		delete(h.clients, id)
		close(ch)
	}
}
