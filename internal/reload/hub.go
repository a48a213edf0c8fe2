// Package reload runs the development reload server. Extension background
// scripts connect over a websocket and receive {"type":"reload"} after every
// successful rebuild.
package reload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/crxgen/crxgen/internal/logging"
	"github.com/gorilla/websocket"
)

// Path is the websocket endpoint.
const Path = "/ws"

const (
	clientBuffer = 8
	writeTimeout = 5 * time.Second
)

// Message is sent to connected clients.
type Message struct {
	Type string `json:"type"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: isExtensionOrigin,
}

// isExtensionOrigin accepts extension pages and clients without an Origin.
func isExtensionOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, scheme := range []string{"chrome-extension://", "moz-extension://", "safari-web-extension://", "extension://"} {
		if strings.HasPrefix(origin, scheme) {
			return true
		}
	}
	return false
}

// Hub tracks connected clients and broadcasts to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	log     *logging.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]chan []byte),
		log:     log.OrNop().WithComponent("reload"),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Reload tells every client to reload and returns how many were notified.
func (h *Hub) Reload() int {
	return h.Broadcast(Message{Type: "reload"})
}

// Broadcast sends msg to every client. Clients whose buffer is full are
// disconnected.
func (h *Hub) Broadcast(msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Msg("encoding reload message")
		return 0
	}

	var sent int
	var slow []*websocket.Conn
	h.mu.RLock()
	for conn, ch := range h.clients {
		select {
		case ch <- data:
			sent++
		default:
			slow = append(slow, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range slow {
		h.remove(conn)
		_ = conn.Close()
	}
	h.log.Debug().Str("type", msg.Type).Int("clients", sent).Msg("broadcast")
	return sent
}

func (h *Hub) add(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// ServeHTTP upgrades the connection and forwards broadcasts until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer ws.Close()
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("client connected")

	ch := h.add(ws)
	defer h.remove(ws)

	// Reading is needed to observe close frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case data := <-ch:
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// Server serves a hub on a TCP address.
type Server struct {
	Hub  *Hub
	srv  *http.Server
	ln   net.Listener
	done chan error
}

// Listen binds addr (e.g. 127.0.0.1:35729) and starts serving in the
// background.
func Listen(addr string, hub *Hub) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(Path, hub)
	s := &Server{
		Hub:  hub,
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:   ln,
		done: make(chan error, 1),
	}
	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	hub.log.Info().Str("addr", ln.Addr().String()).Msg("reload server listening")
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// URL returns the websocket URL clients connect to.
func (s *Server) URL() string {
	return "ws://" + s.Addr() + Path
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("stopping reload server: %w", err)
	}
	return <-s.done
}
