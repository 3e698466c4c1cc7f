package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/thisarray/xoxo/internal/app"
	"github.com/thisarray/xoxo/internal/domain"
)

// writeEvent emits one SSE event; every line of data gets its own prefix.
func writeEvent(w io.Writer, name string, data []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", name)
	for _, line := range bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n")) {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gs, ok := h.svc.Get(r.Context(), id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// plain requests only get the headers
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub := h.svc.Subscribe(ctx, id)
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	writeEvent(w, "board", h.renderBoard(*gs, ""))
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case gs, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "board", h.renderBoard(gs, ""))
			flusher.Flush()
		}
	}
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// snapshot is the JSON view of a game pushed over the websocket.
type snapshot struct {
	ID        string       `json:"id"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	WinLength int          `json:"win_length"`
	Human     string       `json:"human"`
	Computer  string       `json:"computer"`
	Cells     string       `json:"cells"`
	Encoded   string       `json:"encoded"`
	Status    string       `json:"status"`
	LastMove  domain.Point `json:"last_move"`
	Updated   time.Time    `json:"updated"`
}

func newSnapshot(gs app.GameState) snapshot {
	b := gs.Board
	return snapshot{
		ID:        gs.ID,
		Width:     b.Width(),
		Height:    b.Height(),
		WinLength: b.WinLength(),
		Human:     b.PlayerMarker().String(),
		Computer:  b.ComputerMarker().String(),
		Cells:     b.Cells(),
		Encoded:   b.String(),
		Status:    gs.Status(),
		LastMove:  gs.LastMove,
		Updated:   gs.Updated,
	}
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func stateMessage(gs app.GameState) []byte {
	return mustMarshal(wsMessage{Type: "state", Payload: mustMarshal(newSnapshot(gs))})
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (h *handlers) socket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gs, ok := h.svc.Get(r.Context(), id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Str("game", id).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// the request context is not reliable once hijacked
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, unsub := h.svc.Subscribe(ctx, id)
	defer unsub()

	send := make(chan []byte, 4)
	send <- stateMessage(*gs)
	go func() {
		defer close(send)
		for gs := range updates {
			select {
			case send <- stateMessage(gs):
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	if err := writeWithHeartbeat(conn, send, h.heartbeat); err != nil {
		h.log.Debug().Err(err).Str("game", id).Msg("websocket closed")
	}
}

// writeWithHeartbeat writes queued messages and pings when the socket has
// been idle for a full interval. It returns when send is closed.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte, idle time.Duration) error {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idle {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
