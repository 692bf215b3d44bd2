package changefeed

import (
	"context"
	"encoding/json"
	"net/http"
)

// StreamHandler serves change events over SSE. Clients scope their
// subscription with ?table= and ?order_id= query parameters and react
// to each event by re-querying and recomputing their view.
type StreamHandler struct {
	feed *Feed
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(feed *Feed) *StreamHandler {
	return &StreamHandler{feed: feed}
}

// ServeHTTP handles GET /api/v1/changes/stream.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.feed == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	filter := Filter{
		Table:   r.URL.Query().Get("table"),
		OrderID: r.URL.Query().Get("order_id"),
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Buffered with drop-on-slow: a lost event only delays the next
	// refetch, it cannot corrupt state.
	ch := make(chan []byte, 16)
	cancel := h.feed.Subscribe(filter, func(_ context.Context, e Event) {
		payload, err := json.Marshal(e)
		if err != nil {
			return
		}
		select {
		case ch <- payload:
		default:
		}
	})
	defer cancel()

	_, _ = w.Write([]byte("event: ready\ndata: {}\n\n"))
	flusher.Flush()

	done := r.Context().Done()
	for {
		select {
		case payload := <-ch:
			_, _ = w.Write([]byte("event: change\n"))
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-done:
			return
		}
	}
}
