package command

import (
	"testing"

	"github.com/dominionforge/dominion-core/combat"
	"github.com/dominionforge/dominion-core/container"
	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/movement"
	"github.com/dominionforge/dominion-core/production"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/rng"
	"github.com/dominionforge/dominion-core/special"
	"github.com/dominionforge/dominion-core/upgrade"
	"github.com/stretchr/testify/assert"
)

func buildDispatcher(t *testing.T) (*Dispatcher, *entity.Store, map[string]*model.SideState) {
	t.Helper()
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{Name: "Rifleman", MaxHealth: 50, KindOf: []string{"INFANTRY"}, CommandSet: "RiflemanCommandSet"},
			{Name: "PowerPlant", MaxHealth: 500, EnergyBonus: 10, BuildCost: 800, BuildTimeSeconds: 10, KindOf: []string{"STRUCTURE"}},
			{Name: "Barracks", MaxHealth: 500, BuildCost: 1000, BuildTimeSeconds: 10, KindOf: []string{"STRUCTURE"}, CommandSet: "BarracksCommandSet"},
			{Name: "Tank", MaxHealth: 300, KindOf: []string{"VEHICLE"}},
		},
		Upgrades: []model.UpgradeDef{
			{Name: "GrantedArmor", Type: "OBJECT", BuildCost: 500},
		},
		CommandButton: []model.CommandButtonDef{
			{Name: "BuildRifleman", Command: "UNIT_BUILD", Object: "Rifleman"},
			{Name: "UpgradeArmor", Command: "OBJECT_UPGRADE", Upgrade: "GrantedArmor"},
		},
		CommandSets: []model.CommandSetDef{
			{Name: "BarracksCommandSet", Slots: map[int]string{0: "BuildRifleman", 1: "UpgradeArmor"}},
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

	d := NewDispatcher(reg, store, sides, cb, mv, pr, up, ct, sp)
	return d, store, sides
}

func TestMoveCommandSetsGoal(t *testing.T) {
	d, store, _ := buildDispatcher(t)
	id := store.Spawn("Rifleman", "america", model.Vec3{}, entity.SpawnProperties{})
	d.Submit(model.NewMoveCommand(id, model.Vec3{X: 10, Z: 10}))
	d.Drain(1, model.FrameMs)

	e, _ := store.Get(id)
	assert.NotNil(t, e.Locomotor.MoveGoal)
	assert.Equal(t, 10.0, e.Locomotor.MoveGoal.X)
}

func TestDrainClearsQueueAndAppliesInOrder(t *testing.T) {
	d, _, sides := buildDispatcher(t)
	d.Submit(model.NewSetSideCreditsCommand("america", 100))
	d.Submit(model.NewAddSideCreditsCommand("america", 50))
	assert.Equal(t, 2, d.QueueLen())

	d.Drain(1, model.FrameMs)

	assert.Equal(t, 0, d.QueueLen())
	assert.Equal(t, int64(150), sides["america"].Credits)
}

func TestQueueUnitProductionRespectsCommandSetGating(t *testing.T) {
	d, store, sides := buildDispatcher(t)
	barracksID := store.Spawn("Barracks", "america", model.Vec3{}, entity.SpawnProperties{})
	sides["america"].Credits = 5000

	d.Submit(model.NewQueueUnitProductionCommand(barracksID, "Tank", 0))
	d.Drain(1, model.FrameMs)

	barracks, _ := store.Get(barracksID)
	assert.Empty(t, barracks.Production.Queue, "Tank is not exposed by BarracksCommandSet")

	d.Submit(model.NewQueueUnitProductionCommand(barracksID, "Rifleman", 0))
	d.Drain(2, model.FrameMs)
	assert.Len(t, barracks.Production.Queue, 1)
}

func TestCaptureEntityTransfersSideAndRespectsDisabled(t *testing.T) {
	d, store, _ := buildDispatcher(t)
	capturerID := store.Spawn("Rifleman", "gla", model.Vec3{}, entity.SpawnProperties{})
	targetID := store.Spawn("PowerPlant", "america", model.Vec3{}, entity.SpawnProperties{})

	d.Submit(model.NewCaptureEntityCommand(capturerID, targetID))
	d.Drain(1, model.FrameMs)

	target, _ := store.Get(targetID)
	assert.Equal(t, "gla", target.Side)

	target.Status = target.Status.Set(model.DisabledEMP)
	d.Submit(model.NewCaptureEntityCommand(capturerID, targetID))
	d.Drain(2, model.FrameMs)
	assert.Equal(t, "gla", target.Side, "disabled entities keep their side assignment")
}

func TestHijackConsumesHijackerAndSetsStatus(t *testing.T) {
	d, store, _ := buildDispatcher(t)
	hijackerID := store.Spawn("Rifleman", "gla", model.Vec3{}, entity.SpawnProperties{})
	targetID := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})

	d.Submit(model.NewEnterObjectCommand(hijackerID, targetID))
	d.Drain(1, model.FrameMs)

	_, stillAlive := store.Get(hijackerID)
	assert.False(t, stillAlive)
	target, _ := store.Get(targetID)
	assert.Equal(t, "gla", target.Side)
	assert.True(t, target.Status.Has(model.Hijacked))
}

func TestCancelDozerConstructionRefundsRemainingCost(t *testing.T) {
	d, store, sides := buildDispatcher(t)
	dozerID := store.Spawn("Rifleman", "america", model.Vec3{}, entity.SpawnProperties{})
	buildingID, ok := d.Production.ConstructBuilding(dozerID, "PowerPlant", model.Vec3{X: 5})
	assert.True(t, ok)
	building, _ := store.Get(buildingID)
	building.ConstructionPercent = 50
	sides["america"].Credits = 0

	d.Submit(model.NewCancelDozerConstructionCommand(buildingID))
	d.Drain(1, model.FrameMs)

	_, exists := store.Get(buildingID)
	assert.False(t, exists)
	assert.Equal(t, int64(400), sides["america"].Credits)
}

func TestToggleOverchargeAddsAndRemovesPowerBonus(t *testing.T) {
	d, store, sides := buildDispatcher(t)
	plantID := store.Spawn("PowerPlant", "america", model.Vec3{}, entity.SpawnProperties{})

	d.Submit(model.NewToggleOverchargeCommand(plantID))
	d.Drain(1, model.FrameMs)
	assert.Equal(t, 10, sides["america"].PowerBonus)

	d.Submit(model.NewToggleOverchargeCommand(plantID))
	d.Drain(2, model.FrameMs)
	assert.Equal(t, 0, sides["america"].PowerBonus)
}

func TestPlaceAndDeleteBeacon(t *testing.T) {
	d, _, sides := buildDispatcher(t)
	d.Submit(model.NewPlaceBeaconCommand("america", model.Vec3{}))
	d.Drain(1, model.FrameMs)
	assert.Equal(t, 1, sides["america"].BeaconCount)

	d.Submit(model.NewBeaconDeleteCommand("america"))
	d.Drain(2, model.FrameMs)
	assert.Equal(t, 0, sides["america"].BeaconCount)
}
