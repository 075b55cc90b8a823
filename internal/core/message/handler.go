package message

import "fmt"

// Handler maps message kinds to at most one callback each.
// No locking: handlers are registered and invoked from the game loop only.
type Handler struct {
	entries map[Kind]func(Message)
}

func NewHandler() *Handler {
	return &Handler{entries: make(map[Kind]func(Message), 4)}
}

// On binds fn to the kind of M. A second registration for the same kind
// replaces the first. M must be a value type whose zero value reports its kind.
func On[M Message](h *Handler, fn func(M)) {
	var zero M
	k := zero.Kind()
	if k == KindInvalid {
		panic(fmt.Sprintf("message: %T reports KindInvalid", zero))
	}
	if h.entries == nil {
		h.entries = make(map[Kind]func(Message), 4)
	}
	h.entries[k] = func(m Message) {
		fn(m.(M))
	}
}

// Forget drops the registration for k, if any.
func (h *Handler) Forget(k Kind) {
	delete(h.entries, k)
}

// Handles reports whether a callback is bound for k.
func (h *Handler) Handles(k Kind) bool {
	_, ok := h.entries[k]
	return ok
}

// Len returns the number of bound kinds.
func (h *Handler) Len() int {
	return len(h.entries)
}

// Receive invokes the callback bound to m's kind. Unknown kinds are ignored.
// It reports whether a callback ran.
func (h *Handler) Receive(m Message) bool {
	if m == nil {
		panic("message: receive nil message")
	}
	fn, ok := h.entries[m.Kind()]
	if !ok {
		return false
	}
	fn(m)
	return true
}

// ReceiveEvent is Receive restricted to event messages.
func (h *Handler) ReceiveEvent(m Message) bool {
	mustRole(m, RoleEvent)
	return h.Receive(m)
}

// ReceiveAction is Receive restricted to action messages.
func (h *Handler) ReceiveAction(m Message) bool {
	mustRole(m, RoleAction)
	return h.Receive(m)
}

func mustRole(m Message, want Role) {
	if m == nil {
		panic("message: receive nil message")
	}
	if got := m.Role(); got != want {
		panic(fmt.Sprintf("message: %T is an %s, expected %s", m, got, want))
	}
}
