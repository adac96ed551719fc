// Package web serves analysis sessions over HTTP: a JSON API for running and
// fetching sessions, the reply tree of the latest successful session for
// visualizers, and a websocket stream of live session events.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/sixhats/internal/archive"
	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/event"
	"github.com/Iron-Ham/sixhats/internal/export"
	"github.com/Iron-Ham/sixhats/internal/hat"
	"github.com/Iron-Ham/sixhats/internal/logging"
)

// maxBodyBytes bounds POST /api/analyze request bodies.
const maxBodyBytes = 1 << 20

// Archive is the subset of the session archive the server reads and writes.
type Archive interface {
	Save(ctx context.Context, res *dialogue.Result) error
	Get(ctx context.Context, id string) (*dialogue.Result, error)
	Latest(ctx context.Context, successOnly bool) (*dialogue.Result, error)
	List(ctx context.Context, limit int) ([]archive.Summary, error)
}

// Server is the HTTP front end of an Orchestrator.
type Server struct {
	orch         *dialogue.Orchestrator
	bus          *event.Bus
	broker       *Broker
	archive      Archive
	logger       *logging.Logger
	defaultOrder []string
	dialogMode   bool
	newID        func() string

	mu       sync.RWMutex
	sessions map[string]*dialogue.Result
	order    []string // session IDs, oldest first
	latest   *dialogue.Result
}

// Option configures a Server.
type Option func(*Server)

// WithArchive stores every finished session in a and falls back to it for
// sessions this process has not run.
func WithArchive(a Archive) Option {
	return func(s *Server) {
		s.archive = a
	}
}

// WithLogger sets the server logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaults sets the hat order and dialog mode used when a request leaves
// them out.
func WithDefaults(order []string, dialogMode bool) Option {
	return func(s *Server) {
		s.defaultOrder = order
		s.dialogMode = dialogMode
	}
}

// WithSessionIDs overrides session ID generation.
func WithSessionIDs(gen func() string) Option {
	return func(s *Server) {
		s.newID = gen
	}
}

// NewServer creates a server that runs sessions on orch and publishes their
// events on bus.
func NewServer(orch *dialogue.Orchestrator, bus *event.Bus, opts ...Option) *Server {
	s := &Server{
		orch:         orch,
		bus:          bus,
		broker:       NewBroker(),
		logger:       logging.NopLogger(),
		defaultOrder: hat.Strings(hat.DefaultOrder),
		dialogMode:   true,
		newID:        uuid.NewString,
		sessions:     make(map[string]*dialogue.Result),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.broker.Attach(bus)
	return s
}

// Broker returns the websocket broker fed from the bus.
func (s *Server) Broker() *Broker {
	return s.broker
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /api/dialogue-data", s.handleDialogueData)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	return s.withLogging(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// ─────────────────────────────────────────────
// DTOs
// ─────────────────────────────────────────────

type analyzeRequest struct {
	Topic      string          `json:"topic"`
	Hats       json.RawMessage `json:"hats,omitempty"`
	DialogMode *bool           `json:"dialog_mode,omitempty"`
}

type analyzeResponse struct {
	SessionID string `json:"session_id"`
	Result    any    `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		badRequest(w, "invalid JSON body", "")
		return
	}

	hats, err := parseHats(body.Hats, s.defaultOrder)
	if err != nil {
		writeError(w, err)
		return
	}
	dialogMode := s.dialogMode
	if body.DialogMode != nil {
		dialogMode = *body.DialogMode
	}

	id := s.newID()
	res, err := s.orch.Analyze(r.Context(), dialogue.Request{
		SessionID:  id,
		Topic:      body.Topic,
		Hats:       hats,
		DialogMode: dialogMode,
		Sink:       event.NewBusSink(s.bus, id),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.remember(r.Context(), res)
	writeJSON(w, http.StatusOK, analyzeResponse{
		SessionID: res.SessionID,
		Result:    export.Payload(res),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer", "limit")
			return
		}
		limit = n
	}

	if s.archive != nil {
		list, err := s.archive.List(r.Context(), limit)
		if err != nil {
			internalError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	writeJSON(w, http.StatusOK, s.summaries(limit))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	res, err := s.lookup(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export.NewTranscript(res))
}

func (s *Server) handleDialogueData(w http.ResponseWriter, r *http.Request) {
	res, err := s.latestSuccess(r.Context())
	if err != nil {
		internalError(w, s.logger, err)
		return
	}
	if res == nil {
		writeJSON(w, http.StatusOK, &dialogue.Node{Name: "No data", Children: []*dialogue.Node{}})
		return
	}
	writeJSON(w, http.StatusOK, dialogue.BuildTree(res.Conversation))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.broker.ServeWS(w, r, r.URL.Query().Get("session"))
}

// ─────────────────────────────────────────────
// Session bookkeeping
// ─────────────────────────────────────────────

func (s *Server) remember(ctx context.Context, res *dialogue.Result) {
	s.mu.Lock()
	if _, seen := s.sessions[res.SessionID]; !seen {
		s.order = append(s.order, res.SessionID)
	}
	s.sessions[res.SessionID] = res
	if res.OK() {
		s.latest = res
	}
	s.mu.Unlock()

	if s.archive == nil {
		return
	}
	// The session already ran; a cancelled request must not lose it.
	if err := s.archive.Save(context.WithoutCancel(ctx), res); err != nil {
		s.logger.WithSession(res.SessionID).Warn("archive save failed", "error", err.Error())
	}
}

func (s *Server) lookup(ctx context.Context, id string) (*dialogue.Result, error) {
	s.mu.RLock()
	res, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return res, nil
	}
	if s.archive != nil {
		return s.archive.Get(ctx, id)
	}
	return nil, errors.NewNotFoundError("session", id)
}

func (s *Server) latestSuccess(ctx context.Context) (*dialogue.Result, error) {
	s.mu.RLock()
	res := s.latest
	s.mu.RUnlock()
	if res != nil || s.archive == nil {
		return res, nil
	}

	res, err := s.archive.Latest(ctx, true)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil
	}
	return res, err
}

func (s *Server) summaries(limit int) []archive.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]archive.Summary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		res := s.sessions[s.order[i]]
		out = append(out, archive.Summary{
			ID:         res.SessionID,
			Topic:      res.Topic,
			DialogMode: res.DialogMode,
			Status:     res.Status,
			Messages:   len(res.Conversation),
			StartedAt:  res.StartedAt,
		})
	}
	return out
}

// parseHats decodes the optional hats field. An absent or null field selects
// def; anything other than a JSON array of strings is rejected.
func parseHats(raw json.RawMessage, def []string) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return def, nil
	}
	var hats []string
	if err := json.Unmarshal(raw, &hats); err != nil {
		return nil, errors.NewInvalidInputError("hats must be a JSON array of strings").
			WithField("hats").
			WithValue(string(raw))
	}
	if hats == nil {
		hats = []string{}
	}
	return hats, nil
}
