package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "hospital-ops/internal/common/errors"
)

func (h *Handler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	stream(h, w, r, "notifications", h.notifications.Notifications(), h.notifications.Subscribe)
}

func (h *Handler) StreamResources(w http.ResponseWriter, r *http.Request) {
	stream(h, w, r, "resources", h.resources.Resources(), h.resources.Subscribe)
}

// stream writes Server-Sent Events: the current state first, then the full
// state after every mutation. The listener never blocks the service; a
// slow client only sees the latest state.
func stream[T any](h *Handler, w http.ResponseWriter, r *http.Request, event string, initial T, subscribe func(func(T)) func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, r, apperrors.NewChannelUnavailableError("sse"))
		return
	}

	latest := make(chan T, 1)
	unsubscribe := subscribe(func(v T) {
		for {
			select {
			case latest <- v:
				return
			default:
			}
			select {
			case <-latest:
			default:
			}
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, event, initial); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case v := <-latest:
			if err := writeEvent(w, event, v); err != nil {
				h.logger.Debug("stream closed", map[string]interface{}{"event": event, "error": err})
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
