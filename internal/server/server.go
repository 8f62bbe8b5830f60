package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendBufferSize = 64

// Envelope is the wire frame for both directions. Requests carry a reqId;
// the matching ack echoes it back.
type Envelope struct {
	Event string          `json:"event"`
	ReqID string          `json:"reqId,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outEnvelope struct {
	Event string      `json:"event"`
	ReqID string      `json:"reqId,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

func New(ctx context.Context, manager *dealbot.Manager, corsOrigins, publicURL string) *Server {
	s := &Server{
		ctx:       ctx,
		manager:   manager,
		conns:     map[string]*conn{},
		publicURL: publicURL,
	}

	origins := strings.Split(corsOrigins, ",")
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(origins, r.Header.Get("Origin"))
		},
	}

	return s
}

// Server owns the WebSocket connections and implements dealbot.Pusher.
type Server struct {
	ctx       context.Context
	manager   *dealbot.Manager
	upgrader  websocket.Upgrader
	publicURL string

	mtx   sync.RWMutex
	conns map[string]*conn
}

type conn struct {
	id   string
	ws   *websocket.Conn
	send chan outEnvelope
	once sync.Once
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// trySend enqueues without blocking; a slow consumer loses pushes rather
// than stalling the room.
func (c *conn) trySend(env outEnvelope) {
	defer func() {
		// Losing the race against close() is acceptable for best-effort pushes.
		_ = recover()
	}()
	select {
	case c.send <- env:
	default:
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/health", HandleHealth(s.ctx))
	mux.HandleFunc("/qr", s.handleQR)
	return mux
}

// Push implements dealbot.Pusher.
func (s *Server) Push(connectionID, event string, data interface{}) {
	s.mtx.RLock()
	c, ok := s.conns[connectionID]
	s.mtx.RUnlock()
	if !ok {
		return
	}
	c.trySend(outEnvelope{Event: event, Data: data})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(s.ctx).Named("server.ws")

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("websocket upgrade: %v", err)
		return
	}

	c := &conn{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan outEnvelope, sendBufferSize),
	}

	s.mtx.Lock()
	s.conns[c.id] = c
	s.mtx.Unlock()

	logger.Infof("connection %s opened", c.id)

	go s.writePump(c)
	s.readPump(c)
}

func (s *Server) readPump(c *conn) {
	logger := logging.FromContext(s.ctx).Named("server.read")
	defer func() {
		s.manager.HandleDisconnect(c.id)
		s.mtx.Lock()
		delete(s.conns, c.id)
		s.mtx.Unlock()
		c.close()
		logger.Infof("connection %s closed", c.id)
	}()

	for {
		var env Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			return
		}

		ack := s.manager.Handle(s.ctx, c.id, env.Event, env.Data)
		if ack != nil && env.ReqID != "" {
			c.trySend(outEnvelope{Event: "ack", ReqID: env.ReqID, Data: ack})
		}
	}
}

func (s *Server) writePump(c *conn) {
	logger := logging.FromContext(s.ctx).Named("server.write")
	defer func() {
		_ = c.ws.Close()
	}()

	for env := range c.send {
		if err := c.ws.WriteJSON(env); err != nil {
			logger.Debugf("write to %s: %v", c.id, err)
			return
		}
	}
}

// ServeHTTP runs the HTTP server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) ServeHTTP(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func originAllowed(origins []string, origin string) bool {
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return origin == ""
}
