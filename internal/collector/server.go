// Package collector is the ingestion endpoint the tracker posts to. It
// authenticates submissions, upserts them into SQLite, serves the education
// document lookup, and exposes Prometheus metrics.
package collector

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jasonmangold/nest-egg-explorer-tool/internal/catalog"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/config"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/tracker"
	"github.com/jasonmangold/nest-egg-explorer-tool/pkg/constants"
)

type handler struct {
	logger       *zap.Logger
	store        *Store
	catalog      *catalog.Catalog
	apiToken     string
	maxBodyBytes int64
}

// NewHandler constructs the HTTP handler for the collector API.
func NewHandler(logger *zap.Logger, cfg config.CollectorConfig, store *Store, cat *catalog.Catalog) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = constants.DefaultMaxBodyBytes
	}

	h := &handler{
		logger:       logger,
		store:        store,
		catalog:      cat,
		apiToken:     cfg.APIToken,
		maxBodyBytes: maxBody,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/leads", h.handleLeads)
	mux.HandleFunc("/api/education", h.handleEducation)
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// leadSubmission shadows the score field with a pointer so a missing score
// can be told apart from zero.
type leadSubmission struct {
	tracker.Payload
	Score *int `json:"score"`
}

func (h *handler) handleLeads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.respondError(w, http.StatusMethodNotAllowed, "method not allowed", "bad_method")
		return
	}
	if !h.authorized(r) {
		h.respondError(w, http.StatusUnauthorized, "missing or invalid authorization", "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var sub leadSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode payload: %v", err), "decode")
		return
	}
	if sub.LeadID == "" || sub.Score == nil || sub.Quality == "" {
		h.respondError(w, http.StatusBadRequest, "missing required fields: leadId, score, quality", "missing_fields")
		return
	}

	payload := sub.Payload
	payload.Score = *sub.Score
	if err := h.store.Upsert(payload); err != nil {
		h.logger.Error("failed to store lead",
			zap.String("op", "collector.handleLeads"),
			zap.String("leadId", payload.LeadID),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "failed to store lead", "storage")
		return
	}

	LeadsReceived.WithLabelValues(payload.Quality).Inc()
	LeadScores.Observe(float64(payload.Score))
	h.logger.Info("lead received",
		zap.String("op", "collector.handleLeads"),
		zap.String("leadId", payload.LeadID),
		zap.Int("score", payload.Score),
		zap.String("quality", payload.Quality),
	)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *handler) handleEducation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, http.StatusMethodNotAllowed, "method not allowed", "bad_method")
		return
	}
	title := r.URL.Query().Get("title")
	if title == "" {
		h.respondError(w, http.StatusBadRequest, "missing title parameter", "missing_fields")
		return
	}
	if h.catalog == nil {
		h.respondError(w, http.StatusNotFound, "document catalog not configured", "catalog")
		return
	}

	url, err := h.catalog.LookupDocumentURL(title)
	if errors.Is(err, catalog.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "document not found", "not_found")
		return
	}
	if err != nil {
		h.logger.Error("document lookup failed",
			zap.String("op", "collector.handleEducation"),
			zap.String("title", title),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "document lookup failed", "catalog")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"title": title, "url": url})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorized checks the bearer token. An empty configured token disables
// auth, which only makes sense for local testing.
func (h *handler) authorized(r *http.Request) bool {
	if h.apiToken == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == h.apiToken
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, reason string) {
	IngestFailures.WithLabelValues(reason).Inc()
	h.logger.Warn("collector request rejected",
		zap.String("op", "collector.respondError"),
		zap.Int("status", status),
		zap.String("reason", reason),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "collector.writeJSON"),
			zap.Error(err),
		)
	}
}
