package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actorbus/engine/internal/core/message"
)

const (
	kindPing message.Kind = message.KindUser + iota
	kindPong
	kindBroken
)

type ping struct {
	message.EventRole
	N int
}

func (ping) Kind() message.Kind { return kindPing }

type pong struct {
	message.ActionRole
}

func (pong) Kind() message.Kind { return kindPong }

type broken struct{ message.EventRole }

func (broken) Kind() message.Kind { return message.KindInvalid }

func TestReceiveInvokesMatchingCallbackOnce(t *testing.T) {
	h := message.NewHandler()
	var got []int
	message.On(h, func(p ping) { got = append(got, p.N) })

	assert.True(t, h.Receive(ping{N: 7}))
	assert.Equal(t, []int{7}, got)

	assert.False(t, h.Receive(pong{}))
	assert.Equal(t, []int{7}, got)
}

func TestReregistrationReplaces(t *testing.T) {
	h := message.NewHandler()
	first, second := 0, 0
	message.On(h, func(ping) { first++ })
	message.On(h, func(ping) { second++ })

	h.Receive(ping{})
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 1, h.Len())
}

func TestZeroValueHandlerAcceptsRegistration(t *testing.T) {
	var h message.Handler
	called := false
	message.On(&h, func(pong) { called = true })
	h.Receive(pong{})
	assert.True(t, called)
}

func TestForget(t *testing.T) {
	h := message.NewHandler()
	message.On(h, func(ping) { t.Fatal("forgotten callback ran") })
	require.True(t, h.Handles(kindPing))

	h.Forget(kindPing)
	assert.False(t, h.Handles(kindPing))
	assert.False(t, h.Receive(ping{}))
}

func TestRoleEntryPoints(t *testing.T) {
	h := message.NewHandler()
	pings, pongs := 0, 0
	message.On(h, func(ping) { pings++ })
	message.On(h, func(pong) { pongs++ })

	h.ReceiveEvent(ping{})
	h.ReceiveAction(pong{})
	assert.Equal(t, 1, pings)
	assert.Equal(t, 1, pongs)

	assert.Panics(t, func() { h.ReceiveAction(ping{}) })
	assert.Panics(t, func() { h.ReceiveEvent(pong{}) })
}

func TestNilMessagePanics(t *testing.T) {
	h := message.NewHandler()
	assert.Panics(t, func() { h.Receive(nil) })
}

func TestInvalidKindRegistrationPanics(t *testing.T) {
	h := message.NewHandler()
	assert.Panics(t, func() { message.On(h, func(broken) {}) })
}
