package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/advisor/internal/events"
)

const (
	// Per-message write deadline
	wsWriteWait = 10 * time.Second

	// Heartbeat interval to keep idle connections alive
	wsHeartbeat = 30 * time.Second
)

// EventsStreamHandler streams system events to clients over WebSocket.
type EventsStreamHandler struct {
	eventBus *events.Bus
	log      zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler.
func NewEventsStreamHandler(eventBus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus: eventBus,
		log:      log.With().Str("component", "events_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/events/stream requests.
// An optional ?types=a,b,c query restricts the stream to those event
// types; without it every known type is streamed.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	typesFilter := r.URL.Query().Get("types")

	var subscribeTypes []events.EventType
	if typesFilter != "" {
		for _, t := range strings.Split(typesFilter, ",") {
			subscribeTypes = append(subscribeTypes, events.EventType(strings.TrimSpace(t)))
		}
	} else {
		subscribeTypes = events.AllTypes
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	h.log.Info().Str("types_filter", typesFilter).Msg("Client connected to event stream")

	// Buffered per-connection channel; a slow client drops events
	// instead of blocking the bus.
	eventChan := make(chan *events.Event, 100)

	eventHandler := func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	}

	subscriptions := make(map[events.EventType]int, len(subscribeTypes))
	for _, eventType := range subscribeTypes {
		subscriptions[eventType] = h.eventBus.Subscribe(eventType, eventHandler)
	}
	defer func() {
		for eventType, id := range subscriptions {
			h.eventBus.Unsubscribe(eventType, id)
		}
	}()

	ctx := r.Context()

	// Initial connection message
	if err := h.write(ctx, conn, map[string]interface{}{
		"type":    "connected",
		"message": "Connected to event stream",
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(wsHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event := <-eventChan:
			h.log.Debug().
				Str("event_type", string(event.Type)).
				Msg("Sending event to client")

			if err := h.write(ctx, conn, map[string]interface{}{
				"type":      string(event.Type),
				"module":    event.Module,
				"timestamp": event.Timestamp.Format(time.RFC3339),
				"data":      event.Data,
			}); err != nil {
				h.log.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}

		case <-heartbeat.C:
			if err := h.write(ctx, conn, map[string]interface{}{
				"type":      "heartbeat",
				"timestamp": time.Now().Format(time.RFC3339),
			}); err != nil {
				h.log.Debug().Err(err).Msg("Heartbeat failed, closing stream")
				return
			}
		}
	}
}

// write sends one JSON message with a bounded deadline.
func (h *EventsStreamHandler) write(ctx context.Context, conn *websocket.Conn, payload map[string]interface{}) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteWait)
	defer cancel()
	return wsjson.Write(writeCtx, conn, payload)
}
