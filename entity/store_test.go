package entity

import (
	"testing"

	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/stretchr/testify/assert"
)

func testRegistry() *registry.Registry {
	return registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{
				Name:      "AmericaTank",
				Side:      "america",
				KindOf:    []string{"VEHICLE"},
				MaxHealth: 100,
				Geometry:  model.Geometry{MajorRadius: 5},
			},
		},
	})
}

func TestSpawnMonotonicIDs(t *testing.T) {
	s := NewStore(testRegistry())
	id1 := s.Spawn("AmericaTank", "america", model.Vec3{}, SpawnProperties{})
	id2 := s.Spawn("AmericaTank", "america", model.Vec3{}, SpawnProperties{})
	assert.Greater(t, int64(id2), int64(id1))
}

func TestSpawnUnresolvedTemplate(t *testing.T) {
	s := NewStore(testRegistry())
	id := s.Spawn("DoesNotExist", "china", model.Vec3{}, SpawnProperties{})
	e, ok := s.Get(id)
	assert.True(t, ok)
	assert.False(t, e.Resolved)
	assert.True(t, e.Alive)
}

func TestRemoveThenGetEntityStateMissing(t *testing.T) {
	s := NewStore(testRegistry())
	id := s.Spawn("AmericaTank", "america", model.Vec3{}, SpawnProperties{})
	s.Remove(id)
	_, ok := s.GetEntityState(id)
	assert.False(t, ok)
}

func TestGetRenderableEntityStatesExcludesFullyDead(t *testing.T) {
	s := NewStore(testRegistry())
	id := s.Spawn("AmericaTank", "america", model.Vec3{}, SpawnProperties{})
	e, _ := s.Get(id)
	e.Alive = false
	e.Health = 0

	states := s.GetRenderableEntityStates()
	assert.Len(t, states, 0)

	e.Lifecycle.InSlowDeath = true
	states = s.GetRenderableEntityStates()
	assert.Len(t, states, 1)
}

func TestEntityIDsByTemplateAndSide(t *testing.T) {
	s := NewStore(testRegistry())
	a := s.Spawn("AmericaTank", "america", model.Vec3{}, SpawnProperties{})
	_ = s.Spawn("AmericaTank", "china", model.Vec3{}, SpawnProperties{})

	ids := s.EntityIDsByTemplateAndSide("AmericaTank", "america")
	assert.Equal(t, []model.EntityID{a}, ids)
}
