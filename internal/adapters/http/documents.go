package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

type createDocumentResponse struct {
	Document   *domain.Document `json:"document"`
	WasCreated bool             `json:"was_created"`
	Queued     bool             `json:"queued"`
}

// createDocument saves the URL and enqueues a processing job. A repeat
// (user_id, url) pair returns the existing document with 200 and does
// not enqueue again.
func (rt *Router) createDocument(w http.ResponseWriter, r *http.Request) {
	var spec domain.DocumentSpec
	if !decodeBody(w, r, &spec) {
		return
	}

	doc, wasCreated, err := rt.documents.CreateDocument(r.Context(), spec)
	if err != nil {
		writeError(w, err)
		return
	}

	queued := false
	if wasCreated {
		added, err := rt.queue.Enqueue(r.Context(), domain.QueueJob{
			DocumentID: doc.ID,
			UserID:     doc.UserID,
			QueuedAt:   time.Now().UTC(),
			Metadata:   map[string]any{"source": "api"},
		})
		if err != nil {
			// The row exists but the job does not; the client can retry
			// via the same POST, which is idempotent on the row.
			slog.Error("enqueue_failed", "document_id", doc.ID, "error", err)
		}
		queued = added && err == nil
		if rt.metrics != nil && err == nil {
			rt.metrics.RecordEnqueue(rt.service, added)
		}
	}

	status := http.StatusOK
	if wasCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, createDocumentResponse{
		Document:   doc,
		WasCreated: wasCreated,
		Queued:     queued,
	})
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 0)

	docs, err := rt.documents.ListDocuments(r.Context(), userID, skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	total, err := rt.documents.CountDocuments(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"total":     total,
	})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.documents.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if doc == nil {
		writeNotFound(w, "document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	ok, err := rt.documents.DeleteDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeNotFound(w, "document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
