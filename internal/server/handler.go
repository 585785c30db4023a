// Package server exposes the HTTP API: example search, sentence submission,
// index rebuilds, and cache administration.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/language-coach/sentence-search/internal/gdex"
	"github.com/language-coach/sentence-search/internal/ingest"
	"github.com/language-coach/sentence-search/internal/retriever"
	"github.com/language-coach/sentence-search/internal/search/cache"
	"github.com/language-coach/sentence-search/pkg/config"
	apperrors "github.com/language-coach/sentence-search/pkg/errors"
	"github.com/language-coach/sentence-search/pkg/logger"
)

// Submitter accepts validated sentence events for asynchronous ingestion.
type Submitter interface {
	Publish(ctx context.Context, event ingest.SentenceEvent) error
}

// Handler serves the versioned API. cache and submitter are optional; the
// endpoints that need them answer 503 when they are absent.
type Handler struct {
	searcher  cache.Searcher
	registry  *retriever.Registry
	cache     *cache.QueryCache
	submitter Submitter
	cfg       config.SearchConfig
}

func NewHandler(searcher cache.Searcher, registry *retriever.Registry, qc *cache.QueryCache, submitter Submitter, cfg config.SearchConfig) *Handler {
	return &Handler{
		searcher:  searcher,
		registry:  registry,
		cache:     qc,
		submitter: submitter,
		cfg:       cfg,
	}
}

// Register attaches all API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/examples", h.handleExamples)
	mux.HandleFunc("POST /api/v1/sentences", h.handleSubmitSentence)
	mux.HandleFunc("POST /api/v1/index/{language}/rebuild", h.handleRebuild)
	mux.HandleFunc("GET /api/v1/languages", h.handleLanguages)
	mux.HandleFunc("GET /api/v1/cache/stats", h.handleCacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.handleCacheInvalidate)
}

type examplesResponse struct {
	Query       string              `json:"query"`
	Language    string              `json:"language"`
	Proficiency gdex.Proficiency    `json:"proficiency"`
	Count       int                 `json:"count"`
	Examples    []retriever.Example `json:"examples"`
}

func (h *Handler) handleExamples(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, r, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	language := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("language")))
	if language == "" {
		language = "en"
	}
	proficiency := gdex.ParseProficiency(strings.ToLower(r.URL.Query().Get("proficiency")))

	limit := h.cfg.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	if limit > h.cfg.MaxResults {
		limit = h.cfg.MaxResults
	}

	examples, err := h.searcher.Search(r.Context(), q, language, proficiency, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, examplesResponse{
		Query:       q,
		Language:    language,
		Proficiency: proficiency,
		Count:       len(examples),
		Examples:    examples,
	})
}

func (h *Handler) handleSubmitSentence(w http.ResponseWriter, r *http.Request) {
	if h.submitter == nil {
		writeError(w, r, apperrors.Newf(apperrors.ErrNoCorpusSource, http.StatusServiceUnavailable, "sentence ingestion is not configured"))
		return
	}

	var event ingest.SentenceEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, r, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid JSON body: %v", err))
		return
	}
	event.Language = strings.ToLower(strings.TrimSpace(event.Language))
	if err := event.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.submitter.Publish(r.Context(), event); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":   "accepted",
		"language": event.Language,
	})
}

func (h *Handler) handleRebuild(w http.ResponseWriter, r *http.Request) {
	language := strings.ToLower(r.PathValue("language"))
	if err := h.registry.Rebuild(r.Context(), language); err != nil {
		writeError(w, r, err)
		return
	}

	if h.cache != nil {
		if _, err := h.cache.Invalidate(r.Context()); err != nil {
			logger.FromContext(r.Context()).Warn("cache invalidation after rebuild failed", "error", err)
		}
	}

	idx, err := h.registry.Index(r.Context(), language)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"language":  language,
		"sentences": idx.Len(),
	})
}

func (h *Handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": h.registry.Languages(),
	})
}

func (h *Handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	stats := h.cache.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled": true,
		"hits":    stats.Hits,
		"misses":  stats.Misses,
	})
}

func (h *Handler) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeJSON(w, http.StatusOK, map[string]any{"enabled": false, "deleted": 0})
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"enabled": true, "deleted": deleted})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.FromContext(r.Context()).Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
