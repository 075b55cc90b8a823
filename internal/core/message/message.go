package message

import "fmt"

// Kind is the dispatch key of a message. Every concrete message type returns
// one fixed Kind; the catalog kinds live in package event.
type Kind uint16

const (
	KindInvalid Kind = 0

	// KindUser is the first kind available to message types declared outside
	// the catalog (game code, tests).
	KindUser Kind = 1024
)

// Role is advisory only. Events and actions dispatch identically.
type Role uint8

const (
	RoleEvent  Role = iota // something already happened
	RoleAction             // a request that something be done
)

func (r Role) String() string {
	switch r {
	case RoleEvent:
		return "Event"
	case RoleAction:
		return "Action"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Message is an immutable value delivered synchronously through a Handler.
// Handlers must not retain a message beyond the call that delivered it.
type Message interface {
	Kind() Kind
	Role() Role
}

// EventRole is embedded by notification messages.
type EventRole struct{}

func (EventRole) Role() Role { return RoleEvent }

// ActionRole is embedded by request messages.
type ActionRole struct{}

func (ActionRole) Role() Role { return RoleAction }
