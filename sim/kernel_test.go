package sim

import (
	"testing"

	"github.com/dominionforge/dominion-core/combat"
	"github.com/dominionforge/dominion-core/command"
	"github.com/dominionforge/dominion-core/container"
	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/movement"
	"github.com/dominionforge/dominion-core/production"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/rng"
	"github.com/dominionforge/dominion-core/skirmish"
	"github.com/dominionforge/dominion-core/special"
	"github.com/dominionforge/dominion-core/upgrade"
	"github.com/stretchr/testify/assert"
)

func buildSimKernel(t *testing.T) (*Kernel, *entity.Store) {
	t.Helper()
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{Name: "Rifleman", MaxHealth: 50, KindOf: []string{"INFANTRY"}, VisionRange: 100, Speed: 30},
			{Name: "Barracks", MaxHealth: 500, BuildCost: 1000, BuildTimeSeconds: 10, KindOf: []string{"STRUCTURE"}},
		},
	})
	store := entity.NewStore(reg)
	bus := event.NewBus()
	sides := map[string]*model.SideState{
		"america": model.NewSideState("america", "HUMAN"),
		"gla":     model.NewSideState("gla", "HUMAN"),
	}
	sides["america"].Credits = 5000

	cb := combat.NewKernel(reg, store, rng.NewStream(1), bus, nil)
	mv := movement.NewKernel(reg, store, bus)
	pr := production.NewKernel(reg, store, bus, sides)
	up := upgrade.NewKernel(reg, store, bus, sides)
	ct := container.NewKernel(store, bus)
	sp := special.NewKernel(reg, store, bus, rng.NewStream(1), sides)
	sk := skirmish.NewKernel(reg, store, sides, pr, up, mv, cb)
	disp := command.NewDispatcher(reg, store, sides, cb, mv, pr, up, ct, sp)

	k := New(Config{
		Reg: reg, Store: store, Bus: bus, Sides: sides,
		Dispatcher: disp, Combat: cb, Movement: mv, Production: pr,
		Upgrade: up, Container: ct, Special: sp, Skirmish: sk,
		MapWidth: 1000, MapHeight: 1000,
	})
	return k, store
}

func TestAdvanceRunsExactlyOneWholeFrameAtFrameMs(t *testing.T) {
	k, _ := buildSimKernel(t)
	k.Advance(model.FrameMs)
	assert.Equal(t, int64(1), k.Frame)

	k.Advance(model.FrameMs / 2)
	assert.Equal(t, int64(1), k.Frame, "a half frame's worth of dt should not step")

	k.Advance(model.FrameMs / 2)
	assert.Equal(t, int64(2), k.Frame, "the other half frame completes the second step")
}

func TestDrainedCommandAppliesBeforeMovementPhaseOfSameFrame(t *testing.T) {
	k, store := buildSimKernel(t)
	id := store.Spawn("Rifleman", "america", model.Vec3{}, entity.SpawnProperties{})
	k.Dispatcher.Submit(model.NewMoveCommand(id, model.Vec3{X: 50}))

	k.Advance(model.FrameMs)

	e, _ := store.Get(id)
	assert.Greater(t, e.X, 0.0, "movement should have advanced the unit toward its goal within the same frame the move command drained")
}

func TestFogOfWarStampsVisionAroundAliveUnits(t *testing.T) {
	k, store := buildSimKernel(t)
	store.Spawn("Rifleman", "america", model.Vec3{X: 5, Z: 5}, entity.SpawnProperties{})

	k.Advance(model.FrameMs)

	grid := k.FogOfWar["america"]
	assert.True(t, grid.IsPositionVisible(5, 5))
}

func TestSlowDeathRemovesEntityAfterDestructionWindow(t *testing.T) {
	k, store := buildSimKernel(t)
	id := store.Spawn("Rifleman", "america", model.Vec3{}, entity.SpawnProperties{})
	e, _ := store.Get(id)
	e.Health = 0
	e.Alive = false

	totalMs := float64(defaultSinkDelayMs + defaultDestructionDelayMs)
	frames := int(totalMs/model.FrameMs) + 2
	for i := 0; i < frames; i++ {
		k.Advance(model.FrameMs)
	}

	_, exists := store.Get(id)
	assert.False(t, exists)
}

func TestProductionPhaseSpawnsCompletedUnit(t *testing.T) {
	k, store := buildSimKernel(t)
	barracksID := store.Spawn("Barracks", "america", model.Vec3{}, entity.SpawnProperties{})
	k.Sides["america"].Credits = 5000

	code := k.Production.EnqueueUnit(barracksID, "Rifleman", 0)
	assert.Equal(t, production.ErrNone, code)

	barracks, _ := store.Get(barracksID)
	entry := barracks.Production.Queue[0]
	entry.ElapsedMs = entry.BuildTimeMs

	k.Advance(model.FrameMs) // first tick flips the entry to Ready
	k.Advance(model.FrameMs) // second tick actually spawns it

	ids := store.EntityIDsByTemplateAndSide("Rifleman", "america")
	assert.NotEmpty(t, ids, "production tick should have spawned the completed unit")
}
