// Package stream implements the spectator websocket broadcaster: every
// connected viewer receives each frame's entity snapshot and visual events
// as JSON, at no compiled rate limit of its own since the frame loop
// already bounds publish frequency to 30 Hz (spec.md Section 4.C13).
// Grounded on niceyeti-tabular's fastview websocket client (write deadline,
// upgrader, best-effort discard of a slow peer).
package stream

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dominionforge/dominion-core/model"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Frame is one broadcast unit: a frame's entity snapshot plus whatever
// visual events that frame emitted.
type Frame struct {
	FrameNumber int64              `json:"frame"`
	Entities    []model.Snapshot   `json:"entities"`
	Events      []model.VisualEvent `json:"events,omitempty"`
}

// Broadcaster fans Frame values out to every connected spectator.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request to a websocket and registers it as a
// spectator until the connection closes.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("spectator upgrade failed", "error", err)
		return
	}
	b.mu.Lock()
	b.clients[conn] = struct{}{}
	b.mu.Unlock()

	// Spectators are read-only; drain and discard anything they send so
	// the connection's close is detected promptly.
	go func() {
		defer b.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *Broadcaster) remove(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.clients, conn)
	b.mu.Unlock()
	conn.Close()
}

// Publish pushes frame to every connected spectator, dropping (and
// disconnecting) any peer that can't keep up rather than blocking the
// frame loop.
func (b *Broadcaster) Publish(frame Frame) {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for c := range b.clients {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			slog.Warn("dropping slow spectator", "error", err)
			b.remove(conn)
		}
	}
}
