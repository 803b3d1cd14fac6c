package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
)

func buildRouter(t *testing.T) *mux.Router {
	t.Helper()
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{{Name: "Rifleman", MaxHealth: 50}},
	})
	store := entity.NewStore(reg)
	store.Spawn("Rifleman", "america", model.Vec3{}, entity.SpawnProperties{})
	sides := map[string]*model.SideState{"america": model.NewSideState("america", "HUMAN")}
	sides["america"].Credits = 1500

	handler := NewHandler(store, sides, func() int64 { return 42 })
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func TestHealthCheckReportsCurrentFrame(t *testing.T) {
	router := buildRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"frame":42`)
}

func TestSnapshotListsEntities(t *testing.T) {
	router := buildRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rifleman")
}

func TestSideStateReturnsNotFoundForUnknownSide(t *testing.T) {
	router := buildRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/sides/nod", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSideStateReturnsCredits(t *testing.T) {
	router := buildRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/sides/america", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Credits":1500`)
}
