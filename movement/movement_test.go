package movement

import (
	"testing"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/stretchr/testify/assert"
)

func buildKernel(t *testing.T) (*Kernel, *entity.Store) {
	t.Helper()
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{Name: "Tank", KindOf: []string{"VEHICLE"}, MaxHealth: 100, Speed: 300, CrusherLevel: 1, Geometry: model.Geometry{MajorRadius: 5}},
			{Name: "Infantry", KindOf: []string{"INFANTRY"}, MaxHealth: 50, Speed: 90, CrushableLevel: 0, Geometry: model.Geometry{MajorRadius: 2}},
		},
	})
	store := entity.NewStore(reg)
	return NewKernel(reg, store, event.NewBus()), store
}

func TestMoveGoalStraightLine(t *testing.T) {
	k, store := buildKernel(t)
	id := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})

	ok := k.SetMoveGoal(id, model.Vec3{X: 100})
	assert.True(t, ok)

	for f := int64(0); f < 40; f++ {
		k.Tick(f)
	}
	e, _ := store.Get(id)
	assert.InDelta(t, 100.0, e.X, 15.0)
}

func TestDisabledEntityDoesNotMove(t *testing.T) {
	k, store := buildKernel(t)
	id := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})
	e, _ := store.Get(id)
	e.Status = e.Status.Set(model.DisabledEMP)

	k.SetMoveGoal(id, model.Vec3{X: 100})
	e, _ = store.Get(id)
	assert.Nil(t, e.Locomotor.Path)
}

func TestCrushKillsLowerLevelHostile(t *testing.T) {
	k, store := buildKernel(t)
	crusherID := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})
	victimID := store.Spawn("Infantry", "china", model.Vec3{X: 3}, entity.SpawnProperties{})

	crusher, _ := store.Get(crusherID)
	crusher.Locomotor.Path = []model.Vec3{{X: 50}}
	crusher.Angle = 0

	k.Tick(0)

	victim, _ := store.Get(victimID)
	assert.False(t, victim.Alive)
}

func TestAlliesExemptFromCrush(t *testing.T) {
	k, store := buildKernel(t)
	crusherID := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})
	victimID := store.Spawn("Infantry", "america", model.Vec3{X: 3}, entity.SpawnProperties{})

	crusher, _ := store.Get(crusherID)
	crusher.Locomotor.Path = []model.Vec3{{X: 50}}

	k.Tick(0)

	victim, _ := store.Get(victimID)
	assert.True(t, victim.Alive)
}
