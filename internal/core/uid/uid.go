package uid

// ID identifies a node in a scope tree. Zero is reserved and never issued.
type ID uint64

// Invalid is the reserved "no node" id.
const Invalid ID = 0

func (id ID) IsZero() bool { return id == Invalid }

// Factory issues monotonically increasing ids. It is not safe for concurrent
// use; each scope tree owns exactly one and only the game loop touches it.
type Factory struct {
	last ID
}

func NewFactory() *Factory {
	return &Factory{}
}

// Next returns a fresh id. Ids are never reused.
func (f *Factory) Next() ID {
	f.last++
	return f.last
}

// Last returns the most recently issued id, or Invalid if none was issued.
func (f *Factory) Last() ID {
	return f.last
}

// SetStart moves the counter forward so the next issued id is greater than
// start. Used when resuming from a snapshot to avoid collisions. Moving the
// counter backwards is ignored.
func (f *Factory) SetStart(start ID) {
	if start > f.last {
		f.last = start
	}
}
