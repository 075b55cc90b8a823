package scope

import (
	"fmt"

	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/core/uid"
)

// Subscriber is an addressable node in a Tree: an id, a parent link and a
// message handler. Scope nodes additionally carry an ordered child list.
type Subscriber struct {
	tree     *Tree
	id       uid.ID
	parent   uid.ID
	handler  *message.Handler
	children *childList // nil for leaves
}

func (s *Subscriber) ID() uid.ID { return s.id }

// Parent returns the id of the enclosing scope, or uid.Invalid.
func (s *Subscriber) Parent() uid.ID { return s.parent }

func (s *Subscriber) Tree() *Tree { return s.tree }

// Handler is where callbacks for this node are bound.
func (s *Subscriber) Handler() *message.Handler { return s.handler }

// IsScope reports whether the node can hold children.
func (s *Subscriber) IsScope() bool { return s.children != nil }

// Attached reports whether the node is still present in its tree.
func (s *Subscriber) Attached() bool {
	n, ok := s.tree.nodes[s.id]
	return ok && n == s
}

// Receive runs this node's own handler, then fans m out depth-first to every
// registered child in registration order. Registering or removing children of
// this node while it is dispatching is not supported.
func (s *Subscriber) Receive(m message.Message) {
	s.handler.Receive(m)
	if s.children == nil {
		return
	}
	for _, cid := range s.children.ids {
		if c, ok := s.tree.nodes[cid]; ok {
			c.Receive(m)
		}
	}
}

// SendToScope delivers m to the immediate parent scope.
func (s *Subscriber) SendToScope(m message.Message) {
	p, ok := s.tree.nodes[s.parent]
	if !ok {
		panic(fmt.Sprintf("scope: subscriber %d has no parent scope", s.id))
	}
	p.Receive(m)
}

// SendToGlobalScope delivers m to the root of the tree this node hangs from.
// A parentless node is its own root.
func (s *Subscriber) SendToGlobalScope(m message.Message) {
	s.Root().Receive(m)
}

// Root walks parent links to the topmost attached ancestor.
func (s *Subscriber) Root() *Subscriber {
	root := s
	for {
		p, ok := root.tree.nodes[root.parent]
		if !ok {
			return root
		}
		root = p
	}
}

// SetParentScope moves this node under p, removing it from its previous
// parent first.
func (s *Subscriber) SetParentScope(p *Scope) {
	p.RegisterSubscriber(s)
}

// Scope is a Subscriber that owns an ordered set of child subscribers.
// Children are not owned in the lifetime sense: Clear and RemoveSubscriber
// only unlink them. Tree.Release frees nodes.
type Scope struct {
	*Subscriber
}

// AsScope returns the scope view of s, or false if s is a leaf.
func AsScope(s *Subscriber) (*Scope, bool) {
	if s == nil || s.children == nil {
		return nil, false
	}
	return &Scope{Subscriber: s}, true
}

// RegisterSubscriber adds child to this scope and sets its parent. It is
// idempotent; a child registered elsewhere is moved here. Registering a scope
// under itself or one of its descendants panics.
func (sc *Scope) RegisterSubscriber(child *Subscriber) uid.ID {
	if child == nil {
		panic("scope: register nil subscriber")
	}
	if child.tree != sc.tree {
		panic(fmt.Sprintf("scope: subscriber %d belongs to another tree", child.id))
	}
	if child.id == sc.id {
		panic(fmt.Sprintf("scope: %d cannot register itself", sc.id))
	}
	if sc.children.has(child.id) {
		return child.id
	}
	for pid := sc.parent; pid != uid.Invalid; {
		if pid == child.id {
			panic(fmt.Sprintf("scope: %d is an ancestor of %d", child.id, sc.id))
		}
		p, ok := sc.tree.nodes[pid]
		if !ok {
			break
		}
		pid = p.parent
	}
	if old, ok := sc.tree.nodes[child.parent]; ok && old.children != nil {
		old.children.remove(child.id)
	}
	sc.children.add(child.id)
	child.parent = sc.id
	return child.id
}

// RemoveSubscriber unlinks a member and returns it so the caller can decide
// whether to release it. Removing a non-member panics.
func (sc *Scope) RemoveSubscriber(id uid.ID) *Subscriber {
	if !sc.children.remove(id) {
		panic(fmt.Sprintf("scope: remove non-member subscriber %d from %d", id, sc.id))
	}
	child, ok := sc.tree.nodes[id]
	if !ok {
		return nil
	}
	child.parent = uid.Invalid
	return child
}

func (sc *Scope) IsSubscriber(id uid.ID) bool {
	return sc.children.has(id)
}

// Children returns the member ids in registration order. The slice is a copy.
func (sc *Scope) Children() []uid.ID {
	out := make([]uid.ID, len(sc.children.ids))
	copy(out, sc.children.ids)
	return out
}

// Each calls fn for every member in registration order.
func (sc *Scope) Each(fn func(*Subscriber)) {
	for _, cid := range sc.children.ids {
		if c, ok := sc.tree.nodes[cid]; ok {
			fn(c)
		}
	}
}

func (sc *Scope) Len() int {
	return len(sc.children.ids)
}

// Clear unlinks every member without releasing them from the tree.
func (sc *Scope) Clear() {
	for _, cid := range sc.children.ids {
		if c, ok := sc.tree.nodes[cid]; ok {
			c.parent = uid.Invalid
		}
	}
	sc.children.clear()
}
