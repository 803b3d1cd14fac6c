// Package httpapi exposes a debug/inspection HTTP API over the simulation
// core's current state: entity snapshots and per-side economy state.
// Grounded on rgonzalez12-dbd-analytics's internal/api route registration
// style (one mux.Router, handler methods on a single Handler struct,
// /health alongside the data endpoints).
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/model"
)

// Handler serves read-only debug views over the live simulation state.
type Handler struct {
	Store *entity.Store
	Sides map[string]*model.SideState
	Frame func() int64
}

func NewHandler(store *entity.Store, sides map[string]*model.SideState, frame func() int64) *Handler {
	return &Handler{Store: store, Sides: sides, Frame: frame}
}

// RegisterRoutes wires every debug endpoint onto router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/snapshot", h.Snapshot).Methods("GET")
	router.HandleFunc("/sides/{side}", h.SideState).Methods("GET")
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "frame": h.Frame()})
}

func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"frame":    h.Frame(),
		"entities": h.Store.GetRenderableEntityStates(),
	})
}

func (h *Handler) SideState(w http.ResponseWriter, r *http.Request) {
	side := mux.Vars(r)["side"]
	ss, ok := h.Sides[side]
	if !ok {
		http.Error(w, "unknown side", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
