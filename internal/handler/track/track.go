// Package track serves the live tracking WebSocket: devices stream position
// reports in and receive their session's events back.
package track

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/wellquest/questmap/internal/gps"
)

const maxConnDuration = 2 * time.Hour

// Session is the part of a tracking session the socket needs. Done is
// closed when the session ends.
type Session interface {
	Apply(gps.Report) error
	Events() (<-chan []byte, func())
	Done() <-chan struct{}
}

// Lookup resolves a session id.
type Lookup func(id string) (Session, bool)

// ErrorFrame is sent when a report is rejected. The connection stays open.
type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type Handler struct {
	logger *slog.Logger
	lookup Lookup
}

func NewHandler(logger *slog.Logger, lookup Lookup) *Handler {
	return &Handler{logger: logger, lookup: lookup}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/sessions/{sessionID}", h.stream)
	return r
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := h.lookup(id)
	if !ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithTimeout(r.Context(), maxConnDuration)
	defer cancel()

	events, unsubscribe := sess.Events()
	defer unsubscribe()

	go h.readReports(ctx, cancel, conn, sess, id)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-sess.Done():
			conn.Close(websocket.StatusGoingAway, "session ended")
			return
		case data := <-events:
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				h.logger.Debug("websocket write failed", "session_id", id, "error", err)
				return
			}
		}
	}
}

// readReports feeds client frames into the session until the socket closes.
func (h *Handler) readReports(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sess Session, id string) {
	defer cancel()

	for {
		var report gps.Report
		if err := wsjson.Read(ctx, conn, &report); err != nil {
			h.logger.Debug("websocket read ended", "session_id", id, "error", err)
			return
		}
		if err := sess.Apply(report); err != nil {
			h.logger.Debug("rejected position report", "session_id", id, "error", err)
			if err := wsjson.Write(ctx, conn, ErrorFrame{Type: "error", Error: err.Error()}); err != nil {
				return
			}
		}
	}
}
