package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/abgdnv/catalog/internal/product/search"
)

// SnapshotEvent is the SSE event name of a rendered list.
const SnapshotEvent = "snapshot"

// Stream sends the filtered list as Server-Sent Events, once on connect and
// again after every catalog change. Slow clients only get the latest rendering.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	column, order, ok := parseSort(w, r, mLogger)
	if !ok {
		return
	}
	rc := http.NewResponseController(w)
	// streams outlive the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	updates := make(chan search.Result, 1)
	view := search.NewView(h.service, h.opts.StreamDebounce, func(res search.Result) {
		select {
		case <-updates:
		default:
		}
		updates <- res
	})
	defer view.Close()
	view.SetSort(column, order)
	if q := r.URL.Query().Get("q"); q != "" {
		view.ApplyQuery(q)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		mLogger.ErrorContext(r.Context(), "Streaming not supported", "error", err)
		return
	}
	mLogger.DebugContext(r.Context(), "Stream opened")

	keepAlive := time.NewTicker(h.keepAliveInterval())
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			mLogger.DebugContext(r.Context(), "Stream closed by client")
			return
		case <-h.opts.Done:
			mLogger.DebugContext(r.Context(), "Stream closed by server shutdown")
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case res := <-updates:
			data, err := json.Marshal(res)
			if err != nil {
				mLogger.ErrorContext(r.Context(), "Error encoding snapshot", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", SnapshotEvent, data); err != nil {
				mLogger.DebugContext(r.Context(), "Stream write failed", "error", err)
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (h *Handler) keepAliveInterval() time.Duration {
	if h.opts.StreamKeepAlive > 0 {
		return h.opts.StreamKeepAlive
	}
	return 15 * time.Second
}
