// Package httpadapter exposes the producer surface: document intake,
// category management, queue introspection, and interactive inference.
package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/linkstash/internal/config"
	"github.com/kirillkom/linkstash/internal/core/ports"
	"github.com/kirillkom/linkstash/internal/observability/metrics"
)

// SummaryStreamer streams an ad-hoc summary for a URL without touching
// stored documents.
type SummaryStreamer interface {
	SummarizeURLStream(ctx context.Context, url string, onChunk func(string) error) error
}

type Router struct {
	cfg config.Config

	documents  ports.DocumentLifecycle
	categories ports.CategoryAssigner
	queue      ports.DurableQueue
	streamer   SummaryStreamer

	metrics *metrics.HTTPServerMetrics
	service string
}

func NewRouter(
	cfg config.Config,
	documents ports.DocumentLifecycle,
	categories ports.CategoryAssigner,
	queue ports.DurableQueue,
	streamer SummaryStreamer,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:        cfg,
		documents:  documents,
		categories: categories,
		queue:      queue,
		streamer:   streamer,
		metrics:    httpMetrics,
		service:    "api",
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("POST /v1/documents", rt.createDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)

	mux.HandleFunc("POST /v1/categories", rt.createCategory)
	mux.HandleFunc("GET /v1/categories", rt.listCategories)
	mux.HandleFunc("GET /v1/categories/{id}", rt.getCategory)
	mux.HandleFunc("PATCH /v1/categories/{id}", rt.updateCategory)
	mux.HandleFunc("DELETE /v1/categories/{id}", rt.deleteCategory)
	mux.HandleFunc("POST /v1/categories/{id}/documents", rt.addCategoryDocuments)
	mux.HandleFunc("DELETE /v1/categories/{id}/documents", rt.removeCategoryDocuments)
	mux.HandleFunc("GET /v1/categories/{id}/documents", rt.listCategoryDocuments)
	mux.HandleFunc("GET /v1/categories/{id}/summary", rt.categorySummary)

	mux.HandleFunc("GET /v1/queue/stats", rt.queueStats)
	mux.HandleFunc("POST /v1/inference/summary", rt.streamSummary)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, rt.cfg.APIBackpressureTimeout)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) queueStats(w http.ResponseWriter, r *http.Request) {
	size, err := rt.queue.Size(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	next, err := rt.queue.Peek(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	payload := map[string]any{"size": size}
	if next != nil {
		payload["next"] = next
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeNotFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": what + " not found"})
}

// userIDFrom reads the owner scope from the query string, falling back
// to the X-User-Id header.
func userIDFrom(r *http.Request) string {
	if userID := strings.TrimSpace(r.URL.Query().Get("user_id")); userID != "" {
		return userID
	}
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}
