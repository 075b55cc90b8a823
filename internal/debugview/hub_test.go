package debugview_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/scope"
	"github.com/actorbus/engine/internal/debugview"
)

func newHub(t *testing.T, buf int) (*scope.Scope, *debugview.Hub) {
	t.Helper()
	log := zaptest.NewLogger(t)
	tree := scope.NewTree(log)
	root := tree.NewScope()
	return root, debugview.NewHub(root, buf, log)
}

func decode(t *testing.T, b []byte) debugview.Frame {
	t.Helper()
	var f debugview.Frame
	require.NoError(t, json.Unmarshal(b, &f))
	return f
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	return conn
}

func TestFrameCollectsRootTraffic(t *testing.T) {
	root, hub := newHub(t, 4)
	_, frames := hub.Subscribe()

	root.Receive(event.PositionFinalized{Actor: 7, Position: event.Vec3{X: 1}, Velocity: event.Vec3{Y: 2}})
	root.Receive(event.ActorSpawned{ID: 8, Template: "spark", Position: event.Vec3{Z: 3}})
	root.Receive(event.ActorReaped{ID: 5})
	require.Equal(t, 1, hub.Flush(42))

	f := decode(t, <-frames)
	assert.Equal(t, uint64(42), f.Tick)
	assert.False(t, f.Debug)
	assert.Equal(t, []debugview.Position{{Actor: 7, Position: event.Vec3{X: 1}, Velocity: event.Vec3{Y: 2}}}, f.Positions)
	assert.Equal(t, []debugview.Spawned{{Actor: 8, Template: "spark", Position: event.Vec3{Z: 3}}}, f.Spawned)
	assert.Equal(t, []uint64{5}, f.Reaped)

	require.Equal(t, 1, hub.Flush(43))
	f = decode(t, <-frames)
	assert.Empty(t, f.Positions, "each flush starts a new frame")
	assert.Empty(t, f.Spawned)
}

func TestFlushWithoutClientsDiscardsFrame(t *testing.T) {
	root, hub := newHub(t, 4)
	root.Receive(event.ActorReaped{ID: 1})
	assert.Equal(t, 0, hub.Flush(1))

	_, frames := hub.Subscribe()
	require.Equal(t, 1, hub.Flush(2))
	assert.Empty(t, decode(t, <-frames).Reaped)
}

func TestSlowClientDropsFrames(t *testing.T) {
	_, hub := newHub(t, 1)
	id, frames := hub.Subscribe()

	assert.Equal(t, 1, hub.Flush(1))
	assert.Equal(t, 0, hub.Flush(2))
	assert.Equal(t, uint64(1), decode(t, <-frames).Tick)

	hub.Unsubscribe(id)
	_, open := <-frames
	assert.False(t, open)
	assert.Equal(t, 0, hub.Clients())
	hub.Unsubscribe(id)
}

func TestFrameReportsDebugDisplay(t *testing.T) {
	root, hub := newHub(t, 4)
	_, frames := hub.Subscribe()

	root.Receive(event.EnableDebugDisplay{})
	hub.Flush(1)
	assert.True(t, decode(t, <-frames).Debug)

	root.Receive(event.DisableDebugDisplay{})
	hub.Flush(2)
	assert.False(t, decode(t, <-frames).Debug)
}

func TestWebsocketStream(t *testing.T) {
	root, hub := newHub(t, 4)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)

	conn := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	root.Receive(event.PositionFinalized{Actor: 3, Position: event.Vec3{X: 9}})
	require.Equal(t, 1, hub.Flush(10))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	f := decode(t, payload)
	assert.Equal(t, uint64(10), f.Tick)
	require.Len(t, f.Positions, 1)
	assert.Equal(t, uint64(3), f.Positions[0].Actor)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestDebugToggleEndpoints(t *testing.T) {
	_, hub := newHub(t, 4)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)

	post := func(path string) int {
		resp, err := http.Post(srv.URL+path, "text/plain", nil)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusAccepted, post("/debug/on"))
	assert.Equal(t, http.StatusAccepted, post("/debug/off"))

	resp, err := http.Get(srv.URL + "/debug/on")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	var got []bool
	assert.Equal(t, 2, hub.DrainCommands(func(on bool) { got = append(got, on) }))
	assert.Equal(t, []bool{true, false}, got)
	assert.Equal(t, 0, hub.DrainCommands(func(bool) { t.Fatal("queue should be empty") }))

	for i := 0; i < 8; i++ {
		require.True(t, hub.RequestDebugDisplay(true))
	}
	assert.Equal(t, http.StatusServiceUnavailable, post("/debug/on"))
}

func TestServerShutdownDisconnectsClients(t *testing.T) {
	_, hub := newHub(t, 4)
	s, err := debugview.NewServer("127.0.0.1:0", hub, zaptest.NewLogger(t))
	require.NoError(t, err)
	go s.Serve()

	conn := dial(t, "ws://"+s.Addr().String()+"/ws")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Clients())
}
