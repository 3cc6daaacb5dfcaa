// Package rest exposes export jobs and history over HTTP.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/fortuna/gridiron/internal/jobs"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// ExportService queues and tracks export jobs. *jobs.Service implements it.
type ExportService interface {
	Enqueue(ctx context.Context, req jobs.Request) (*jobs.Job, error)
	Get(id string) (*jobs.Job, error)
}

// HistoryReader reads recorded runs. *repository.ExportRepository implements it.
type HistoryReader interface {
	Get(ctx context.Context, id string) (*store.ExportRun, error)
	ListRecent(ctx context.Context, limit int) ([]*store.ExportRun, error)
}

// WebsocketHandler serves the completion event stream.
type WebsocketHandler interface {
	HandleExports(w http.ResponseWriter, r *http.Request)
	HandleHealth(w http.ResponseWriter, r *http.Request)
}

// Deps wires the server to the rest of the process. History, Websocket
// and Checks are optional.
type Deps struct {
	Exports    ExportService
	History    HistoryReader
	Websocket  WebsocketHandler
	Defaults   jobs.Request
	Checks     map[string]func(context.Context) error
	CORSOrigin string
	Version    string
	Logger     zerolog.Logger
}

// Server represents the REST API server.
type Server struct {
	server *http.Server
	router *mux.Router
}

// NewServer creates a REST API server listening on addr.
func NewServer(addr string, deps Deps) *Server {
	log := deps.Logger.With().Str("component", "rest").Logger()
	handler := NewHandler(deps, log)

	router := mux.NewRouter()
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))
	router.Use(CORSMiddleware(deps.CORSOrigin))

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/exports", handler.CreateExport).Methods("POST", "OPTIONS")
	api.HandleFunc("/exports", handler.ListExports).Methods("GET")
	api.HandleFunc("/exports/{id}", handler.GetExport).Methods("GET")
	api.HandleFunc("/exports/{id}/document", handler.GetExportDocument).Methods("GET")

	if deps.Websocket != nil {
		router.HandleFunc("/ws/exports", deps.Websocket.HandleExports)
		router.HandleFunc("/ws/health", deps.Websocket.HandleHealth).Methods("GET")
	}

	return &Server{
		router: router,
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the REST API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
