package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/codimo/promptdiff/internal/auth"
	"github.com/codimo/promptdiff/internal/core"
	"github.com/codimo/promptdiff/internal/diff"
	"github.com/codimo/promptdiff/internal/prompts"
)

// DefaultContext is the unified-diff context used when Options.Context is negative.
const DefaultContext = 3

// maxBodyBytes bounds request bodies; the diff engine applies its own line ceiling on top.
const maxBodyBytes = 4 << 20

// PromptStore is the part of prompts.Store the server needs.
type PromptStore interface {
	Current() (prompts.Version, string, error)
	Set(text string, metadata map[string]string) (prompts.Update, error)
	History() []prompts.Version
	Pair(version int) (prompts.Pair, error)
}

// Options configures a Server. The zero value serves without authentication, rate limiting or
// logging, and with no unified-diff context unless a request asks for some.
type Options struct {
	Verifier  auth.Verifier
	Logger    *slog.Logger
	RateLimit float64 // requests per second per client, 0 disables limiting
	Burst     int
	Context   int // default unified-diff context, negative means DefaultContext
}

type Server struct {
	store   PromptStore
	cache   *diff.Cache
	opts    Options
	logger  *slog.Logger
	limiter *clientLimiter
	handler http.Handler
}

// NewServer creates a new HTTP server
func NewServer(store PromptStore, cache *diff.Cache, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Context < 0 {
		opts.Context = DefaultContext
	}

	s := &Server{
		store:  store,
		cache:  cache,
		opts:   opts,
		logger: opts.Logger,
	}
	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.RateLimit, opts.Burst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /get-prompt", s.handleGetPrompt)
	mux.HandleFunc("POST /prompt", s.handleSetPrompt)
	mux.HandleFunc("GET /prompt-history", s.handleHistory)
	mux.HandleFunc("GET /prompt-diff", s.handlePromptDiff)
	mux.HandleFunc("POST /diff", s.handleDiff)

	s.handler = s.withRequestID(s.withLogging(s.withRateLimit(s.withAuth(mux))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// handleHealth reports liveness (GET /health)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetPrompt returns the current prompt (GET /get-prompt)
func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	v, text, err := s.store.Current()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PromptResponse{Prompt: text, Version: v.Number})
}

// handleSetPrompt stores a new prompt version (POST /prompt)
func (s *Server) handleSetPrompt(w http.ResponseWriter, r *http.Request) {
	var req SetPromptRequest
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.store.Set(req.Prompt, req.Metadata)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("prompt updated", "request_id", requestID(r.Context()), "version", u.Version)
	writeJSON(w, http.StatusCreated, u)
}

// handleHistory lists stored versions (GET /prompt-history)
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.History())
}

// handlePromptDiff diffs a stored version pair (GET /prompt-diff?version=N&mode=M&context=K)
func (s *Server) handlePromptDiff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	version := 0
	if v := q.Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("version %q: %w", v, core.ErrInvalidVersion))
			return
		}
		version = n
	}

	mode := q.Get("mode")
	switch mode {
	case "":
		mode = ModeUnified
	case ModeUnified, ModeSplit:
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid mode %q", mode)})
		return
	}

	contextLines := s.opts.Context
	if c := q.Get("context"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid context %q", c)})
			return
		}
		contextLines = n
	}

	pair, err := s.store.Pair(version)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.cache.Compute(pair.Old, pair.New)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := PromptDiffResponse{
		OldPrompt: pair.Old,
		NewPrompt: pair.New,
		Version:   pair.Version,
		Diff:      d.UnifiedDiff("old_prompt", "new_prompt", contextLines),
		Hunks:     d.Hunks,
		Stats:     d.Stats(),
	}
	if mode == ModeSplit {
		resp.Rows = d.Split()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDiff compares two texts sent by the caller (POST /diff)
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if !s.decode(w, r, &req) {
		return
	}

	d, err := s.cache.Compute(req.Before, req.After)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DiffResponse{Hunks: d.Hunks, Stats: d.Stats()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", requestID(r.Context()), "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrVersionNotFound), errors.Is(err, core.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidVersion), errors.Is(err, core.ErrEmptyPrompt):
		return http.StatusBadRequest
	case errors.Is(err, diff.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
