package ipc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dominionforge/dominion-core/command"
	"github.com/dominionforge/dominion-core/model"
)

// Host bridges one or more Connections to the simulation core's
// CommandQueue & Dispatcher, and broadcasts each frame's snapshot/events
// back out (spec.md Section 6 "External Interfaces").
type Host struct {
	Dispatcher *command.Dispatcher

	mu    sync.Mutex
	conns map[*Connection]struct{}
}

func NewHost(dispatcher *command.Dispatcher) *Host {
	return &Host{Dispatcher: dispatcher, conns: make(map[*Connection]struct{})}
}

// Attach wires hello/command handlers onto conn and tracks it for
// broadcast, then blocks in conn.ReadLoop until the connection closes.
func (h *Host) Attach(conn *Connection) {
	conn.RegisterHandler(TypeHello, h.handleHello)
	conn.RegisterHandler(TypeCommand, h.handleCommand)

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
	}()

	conn.ReadLoop()
}

func (h *Host) handleHello(env Envelope) (*Envelope, error) {
	var msg HelloMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}
	slog.Info("host connection identified", "player", msg.Player, "side", msg.Side)
	resp, err := NewEnvelope(TypeReady, ReadyMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *Host) handleCommand(env Envelope) (*Envelope, error) {
	var wire WireCommand
	if err := json.Unmarshal(env.Data, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal command: %w", err)
	}
	cmd, ok := wire.ToCommand()
	if !ok {
		slog.Warn("unrecognized command kind", "kind", wire.Kind)
		return nil, nil
	}
	h.Dispatcher.Submit(cmd)
	return nil, nil
}

// Broadcast pushes a snapshot and its frame's events to every attached
// connection. Send errors are logged and otherwise ignored -- a single
// slow or closed spectator must not stall the frame loop.
func (h *Host) Broadcast(frame int64, entities []model.Snapshot, events []model.VisualEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.Send(TypeSnapshot, SnapshotMessage{Frame: frame, Entities: entities}); err != nil {
			slog.Error("snapshot send failed", "error", err)
			continue
		}
		if len(events) == 0 {
			continue
		}
		if err := conn.Send(TypeEvents, EventsMessage{Frame: frame, Events: events}); err != nil {
			slog.Error("events send failed", "error", err)
		}
	}
}
