package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
	"github.com/jmylchreest/prefstore/internal/store"
)

// SSE event names.
const (
	EventSnapshot = "snapshot"
	EventChange   = "change"
)

// EventSource streams committed changes.
type EventSource interface {
	Events(buffer int) (<-chan store.Change, func())
	SnapshotRevision() (state.State, models.Revision)
}

// EventsHandler serves preference changes as server-sent events.
type EventsHandler struct {
	source            EventSource
	heartbeatInterval time.Duration
	buffer            int
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(source EventSource) *EventsHandler {
	return &EventsHandler{
		source:            source,
		heartbeatInterval: 30 * time.Second,
		buffer:            32,
	}
}

// SetHeartbeatInterval sets the SSE heartbeat interval (for testing).
func (h *EventsHandler) SetHeartbeatInterval(interval time.Duration) {
	h.heartbeatInterval = interval
}

// SetBuffer sets how many changes may queue per client before changes are
// dropped for that client.
func (h *EventsHandler) SetBuffer(n int) {
	h.buffer = n
}

// RegisterSSE registers the SSE endpoint on a chi router.
// Huma doesn't support SSE streaming natively.
func (h *EventsHandler) RegisterSSE(router interface {
	Get(pattern string, handlerFn http.HandlerFunc)
}) {
	router.Get("/api/v1/preferences/events", h.HandleSSEEvents)
}

// HandleSSEEvents streams a snapshot followed by every committed change.
func (h *EventsHandler) HandleSSEEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Subscribe before the snapshot so no change falls between the two.
	events, cancel := h.source.Events(h.buffer)
	defer cancel()

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	heartbeat := time.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()

	fmt.Fprintf(w, ":connected\n\n")
	snap := PreferencesFromState(h.source.SnapshotRevision())
	if err := writeSSEEvent(w, EventSnapshot, snap); err != nil {
		slog.Error("failed to write SSE snapshot", "error", err)
		return
	}
	if err := rc.Flush(); err != nil {
		slog.Error("failed to flush initial SSE connection", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ":heartbeat %d\n\n", time.Now().Unix())
			if err := rc.Flush(); err != nil {
				slog.Debug("heartbeat flush failed, client likely disconnected", "error", err)
				return
			}
		case change, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, EventChange, changeEvent(change)); err != nil {
				slog.Error("failed to write SSE event",
					"revision", change.Revision.String(),
					"error", err,
				)
				return
			}
			if err := rc.Flush(); err != nil {
				slog.Debug("event flush failed, client likely disconnected",
					"revision", change.Revision.String(),
					"error", err,
				)
				return
			}
		}
	}
}

func changeEvent(c store.Change) ChangeEvent {
	return ChangeEvent{
		Revision: c.Revision.String(),
		Intents:  c.Intents,
		Theme:    c.Current.Theme,
		Prefs:    c.Current.Preferences,
		At:       c.At.UTC().Format(time.RFC3339Nano),
	}
}

// writeSSEEvent writes one event in a single write.
func writeSSEEvent(w http.ResponseWriter, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(w, "event: %s\ndata: {\"error\": \"marshal error\"}\n\n", name)
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
