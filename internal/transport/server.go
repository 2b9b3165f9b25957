// Package transport streams tick frames to rendering clients over
// WebSocket and queues their playback commands into the simulation loop.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 25 * time.Second
)

// InboundCommand pairs a parsed command with the client that sent it, so
// replies (orbit frames) go back to the requester only.
type InboundCommand struct {
	Client *Client
	Cmd    Command
}

// Server is the WebSocket hub. Broadcast fan-out is lock-guarded; slow
// readers get frames dropped rather than stalling the simulation.
type Server struct {
	upgrader  websocket.Upgrader
	log       *zap.Logger
	queueSize int

	mu      sync.RWMutex
	clients map[*Client]struct{}

	commands chan InboundCommand
	httpSrv  *http.Server
}

func NewServer(addr string, queueSize int, log *zap.Logger) *Server {
	if queueSize <= 0 {
		queueSize = 64
	}
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Rendering clients are local tools; cross-origin is fine.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:       log,
		queueSize: queueSize,
		clients:   make(map[*Client]struct{}),
		commands:  make(chan InboundCommand, 256),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start begins accepting connections in a background goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("websocket server failed", zap.Error(err))
		}
	}()
	s.log.Info("websocket server listening", zap.String("addr", s.httpSrv.Addr))
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.clients {
		c.close()
	}
	s.clients = make(map[*Client]struct{})
	s.mu.Unlock()
	return s.httpSrv.Shutdown(ctx)
}

// Commands exposes the inbound queue drained by the input system.
func (s *Server) Commands() <-chan InboundCommand { return s.commands }

// Broadcast marshals once and fans out to every client. Frames to
// clients with a full queue are dropped.
func (s *Server) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("marshal frame", zap.Error(err))
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		c.send(data)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(conn, s)
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.log.Info("client connected",
		zap.String("remote", conn.RemoteAddr().String()),
		zap.Int("clients", n))

	go c.writePump()
	go c.readPump()
}

func (s *Server) removeClient(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	n := len(s.clients)
	s.mu.Unlock()
	s.log.Info("client disconnected", zap.Int("clients", n))
}
