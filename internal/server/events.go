package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinewave/internal/models"
)

// Event is one server-sent change notification.
type Event struct {
	Name string
	Data any
}

// EventsHandler streams session and watchlist changes as server-sent events.
//
// Changes made by other processes sharing the storage are streamed too when the storage reports
// them. Implements [Handler].
type EventsHandler struct {
	sessions  SessionStore
	watchlist WatchlistStore
	logger    *log.Logger
}

// NewEventsHandler creates a new [EventsHandler].
func NewEventsHandler(sessions SessionStore, watchlist WatchlistStore, logger *log.Logger) *EventsHandler {
	return &EventsHandler{sessions: sessions, watchlist: watchlist, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *EventsHandler) Routes() []string {
	return []string{"GET /api/events"}
}

// ServeHTTP streams events until the client disconnects.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if _, ok := h.sessions.Current(); !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events := make(chan Event, 16)
	send := func(ev Event) {
		select {
		case events <- ev:
		default:
			h.logger.Warn("dropping event for slow client", "event", ev.Name)
		}
	}

	cancelSession := h.sessions.OnChange(func(sess *models.Session) {
		send(Event{Name: "session", Data: sessionResponse{Authenticated: sess != nil, Session: viewOf(sess)}})
	})
	defer cancelSession()
	if h.watchlist != nil {
		cancel := h.watchlist.OnChange(func(items []models.WatchlistItem) {
			send(Event{Name: "watchlist", Data: watchlistResponse{Count: len(items), Items: items}})
		})
		defer cancel()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if err := writeEvent(w, ev); err != nil {
				h.logger.Debug("event stream closed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}
