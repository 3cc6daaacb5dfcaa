// Package websocket pushes export completion events to browser clients.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fortuna/gridiron/internal/jobs"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Message is the envelope sent to clients.
type Message struct {
	Type string     `json:"type"`
	Data jobs.Event `json:"data"`
}

// Server upgrades connections on /ws/exports and broadcasts job events.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewServer creates a server. allowedOrigin "*" accepts any origin.
func NewServer(allowedOrigin string, log zerolog.Logger) *Server {
	return &Server{
		hub: NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
		log: log.With().Str("component", "websocket").Logger(),
	}
}

// Run drives the hub until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

// HandleExports upgrades the request and subscribes the client.
func (s *Server) HandleExports(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	if !s.hub.add(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// HandleHealth reports the number of connected clients.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// Notify broadcasts a finished job to every client.
func (s *Server) Notify(_ context.Context, ev jobs.Event) error {
	data, err := json.Marshal(Message{Type: "export." + string(ev.Status), Data: ev})
	if err != nil {
		return fmt.Errorf("encode websocket event: %w", err)
	}
	s.hub.Broadcast(data)
	return nil
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}
