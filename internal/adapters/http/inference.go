package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type summaryStreamRequest struct {
	URL string `json:"url"`
}

// streamSummary fetches the URL, summarizes it, and relays the model's
// delta chunks as server-sent events. Failures before the first chunk
// map to a regular JSON error; once streaming has started the error is
// delivered as a terminal event instead.
func (rt *Router) streamSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryStreamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	chunks := 0
	onChunk := func(chunk string) error {
		if chunks == 0 {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
		}
		chunks++
		if err := writeSSEEvent(w, map[string]string{"delta": chunk}); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	err := rt.streamer.SummarizeURLStream(r.Context(), req.URL, onChunk)
	if err != nil {
		if chunks == 0 {
			writeError(w, err)
			return
		}
		_ = writeSSEEvent(w, map[string]string{"error": err.Error()})
		flusher.Flush()
		return
	}
	if chunks == 0 {
		// The model produced an empty stream; surface it as an empty
		// completed stream rather than an error.
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
	}

	if rt.metrics != nil {
		rt.metrics.ObserveStreamedChunks(rt.service, chunks)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeSSEEvent(w http.ResponseWriter, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sse event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write sse event: %w", err)
	}
	return nil
}
