package debugview

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// Handler serves the websocket frame stream on /ws and the debug display
// toggles on POST /debug/on and /debug/off.
func (h *Hub) Handler() http.Handler {
	up := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			h.log.Debug("debug websocket upgrade failed", zap.Error(err))
			return
		}
		h.stream(conn)
	})
	toggle := func(on bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !h.RequestDebugDisplay(on) {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusAccepted)
		}
	}
	mux.HandleFunc("/debug/on", toggle(true))
	mux.HandleFunc("/debug/off", toggle(false))
	return mux
}

// stream pumps frames to conn until either side goes away.
func (h *Hub) stream(conn *websocket.Conn) {
	id, frames := h.Subscribe()
	h.log.Info("debug client connected", zap.Uint64("client", id), zap.String("addr", conn.RemoteAddr().String()))
	defer func() {
		h.Unsubscribe(id)
		conn.Close()
		h.log.Info("debug client disconnected", zap.Uint64("client", id))
	}()

	// Reader: clients send nothing, but reading is how a close is noticed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case b, ok := <-frames:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
					time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}

// Server runs the hub's HTTP handler on its own listener.
type Server struct {
	listener net.Listener
	srv      *http.Server
	hub      *Hub
	log      *zap.Logger
}

func NewServer(bindAddr string, hub *Hub, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: ln,
		srv:      &http.Server{Handler: hub.Handler(), ReadHeaderTimeout: 5 * time.Second},
		hub:      hub,
		log:      log,
	}, nil
}

// Serve runs in its own goroutine until Shutdown.
func (s *Server) Serve() {
	if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("debug view server stopped", zap.Error(err))
	}
}

// Shutdown disconnects clients and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.srv.Shutdown(ctx)
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
