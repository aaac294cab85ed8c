// Package httpapi exposes task context intake and execution status reads
// over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/beaconhq/beacon/internal/infrastructure/storage"
	"github.com/beaconhq/beacon/pkg/domain/events"
	"github.com/beaconhq/beacon/pkg/domain/projection"
)

// Server is the beacon HTTP server.
type Server struct {
	addr      string
	store     *storage.MemoryStore
	contexts  *storage.ContextRepository
	eventLog  *storage.EventLog
	publisher events.Publisher
	ws        http.Handler
	server    *http.Server
}

// Options configures a Server. Contexts, Events and WS are optional; a nil
// contexts repository disables persistence, a nil event log disables history,
// a nil WS handler disables the stream endpoint.
type Options struct {
	Addr      string
	Store     *storage.MemoryStore
	Contexts  *storage.ContextRepository
	Events    *storage.EventLog
	Publisher events.Publisher
	WS        http.Handler
}

// NewServer creates the beacon API server.
func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	return &Server{
		addr:      opts.Addr,
		store:     opts.Store,
		contexts:  opts.Contexts,
		eventLog:  opts.Events,
		publisher: opts.Publisher,
		ws:        opts.WS,
	}, nil
}

// Handler returns the route table, exported for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/executions/{id}/context", s.handleIntake)
	mux.HandleFunc("GET /api/executions/{id}/status", s.handleStatus)
	mux.HandleFunc("GET /api/executions/{id}/events", s.handleEvents)
	mux.HandleFunc("GET /api/executions", s.handleList)
	if s.ws != nil {
		mux.Handle("GET /ws", s.ws)
	}

	return mux
}

// Start starts the server. It blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("beacon API listening on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// intakeResponse reports what an accepted context did to the stored record.
type intakeResponse struct {
	Update     storage.UpdateKind           `json:"update"`
	Version    int64                        `json:"version"`
	Projection *projection.StatusProjection `json:"projection"`
}

func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	executionID := r.PathValue("id")

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed JSON body: %v", err))
		return
	}

	if err := validateIntake(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	projectID, _ := body["project_id"].(string)
	taskContext := body["task_context"]

	p, err := projection.FromTaskContext(taskContext, executionID, projectID)
	if err != nil {
		var invalid *projection.InvalidTaskContextError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusUnprocessableEntity, invalid.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	record, kind := s.store.Put(p)
	if kind == storage.UpdateRegressed {
		log.Printf("execution %s regressed to %s", executionID, p.Status)
	}

	if s.contexts != nil {
		if doc, ok := taskContext.(map[string]any); ok {
			if err := s.contexts.SaveContext(executionID, doc); err != nil {
				log.Printf("persist context for %s: %v", executionID, err)
			}
		}
	}

	env := events.NewEnvelope(p)
	if s.eventLog != nil {
		if err := s.eventLog.Append(env); err != nil {
			log.Printf("log envelope for %s: %v", executionID, err)
		}
	}
	if err := s.publisher.Publish(env); err != nil {
		log.Printf("publish update for %s: %v", executionID, err)
	}

	writeJSON(w, http.StatusOK, intakeResponse{
		Update:     kind,
		Version:    record.Version,
		Projection: p,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	record, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown execution")
		return
	}
	writeJSON(w, http.StatusOK, record.Projection)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.eventLog == nil {
		writeError(w, http.StatusNotFound, "event history is disabled")
		return
	}
	history, err := s.eventLog.LoadByExecution(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		history = []events.Envelope{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var records []storage.Record
	if projectID := r.URL.Query().Get("projectId"); projectID != "" {
		records = s.store.ListByProject(projectID)
	} else {
		records = s.store.List()
	}

	projections := make([]*projection.StatusProjection, 0, len(records))
	for _, record := range records {
		projections = append(projections, record.Projection)
	}
	writeJSON(w, http.StatusOK, projections)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
