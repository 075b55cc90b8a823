package scope

import (
	"go.uber.org/zap"

	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/core/uid"
)

// Tree is the arena every subscriber and scope lives in. Parent and child
// links are ids resolved through the arena, never direct pointers, so a
// released node simply stops being reachable.
//
// Accessed only from the game loop goroutine; no locks.
type Tree struct {
	ids   *uid.Factory
	nodes map[uid.ID]*Subscriber
	log   *zap.Logger
}

func NewTree(log *zap.Logger) *Tree {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tree{
		ids:   uid.NewFactory(),
		nodes: make(map[uid.ID]*Subscriber, 256),
		log:   log,
	}
}

// IDs exposes the tree's id factory, e.g. to resume numbering after a restore.
func (t *Tree) IDs() *uid.Factory { return t.ids }

// NewSubscriber allocates a detached leaf node.
func (t *Tree) NewSubscriber() *Subscriber {
	s := &Subscriber{
		tree:    t,
		id:      t.ids.Next(),
		handler: message.NewHandler(),
	}
	t.nodes[s.id] = s
	return s
}

// NewScope allocates a detached scope node.
func (t *Tree) NewScope() *Scope {
	s := t.NewSubscriber()
	s.children = newChildList()
	return &Scope{Subscriber: s}
}

// Lookup resolves an id to its node.
func (t *Tree) Lookup(id uid.ID) (*Subscriber, bool) {
	s, ok := t.nodes[id]
	return s, ok
}

// Len returns the number of live nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Release detaches id from its parent and drops it and all its descendants
// from the arena. Releasing an unknown id is a no-op.
func (t *Tree) Release(id uid.ID) {
	s, ok := t.nodes[id]
	if !ok {
		return
	}
	if p, ok := t.nodes[s.parent]; ok && p.children != nil && p.children.has(id) {
		p.children.remove(id)
	}
	t.drop(s)
}

func (t *Tree) drop(s *Subscriber) {
	if s.children != nil {
		for _, cid := range s.children.ids {
			if c, ok := t.nodes[cid]; ok {
				t.drop(c)
			}
		}
		s.children.clear()
	}
	s.parent = uid.Invalid
	delete(t.nodes, s.id)
	t.log.Debug("scope node released", zap.Uint64("id", uint64(s.id)))
}

// childList keeps child ids in registration order with O(1) membership.
type childList struct {
	ids   []uid.ID
	index map[uid.ID]int
}

func newChildList() *childList {
	return &childList{
		ids:   make([]uid.ID, 0, 8),
		index: make(map[uid.ID]int, 8),
	}
}

func (c *childList) has(id uid.ID) bool {
	_, ok := c.index[id]
	return ok
}

func (c *childList) add(id uid.ID) bool {
	if c.has(id) {
		return false
	}
	c.index[id] = len(c.ids)
	c.ids = append(c.ids, id)
	return true
}

func (c *childList) remove(id uid.ID) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	copy(c.ids[i:], c.ids[i+1:])
	c.ids = c.ids[:len(c.ids)-1]
	delete(c.index, id)
	for j := i; j < len(c.ids); j++ {
		c.index[c.ids[j]] = j
	}
	return true
}

func (c *childList) clear() {
	c.ids = c.ids[:0]
	clear(c.index)
}
