package production

import (
	"testing"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/stretchr/testify/assert"
)

func buildKernel(t *testing.T) (*Kernel, *entity.Store, *model.SideState) {
	t.Helper()
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{Name: "Barracks", MaxHealth: 500, CommandSet: "BarracksCommandSet"},
			{Name: "Rifleman", MaxHealth: 50, BuildCost: 200, BuildTimeSeconds: 3},
		},
		CommandButton: []model.CommandButtonDef{
			{Name: "BuildRifleman", Command: "UNIT_BUILD", Object: "Rifleman"},
		},
		CommandSets: []model.CommandSetDef{
			{Name: "BarracksCommandSet", Slots: map[int]string{0: "BuildRifleman"}},
		},
	})
	store := entity.NewStore(reg)
	side := model.NewSideState("america", "HUMAN")
	side.Credits = 1000
	k := NewKernel(reg, store, event.NewBus(), map[string]*model.SideState{"america": side})
	return k, store, side
}

func TestEnqueueUnitDebitsCredits(t *testing.T) {
	k, store, side := buildKernel(t)
	producerID := store.Spawn("Barracks", "america", model.Vec3{}, entity.SpawnProperties{})

	err := k.EnqueueUnit(producerID, "Rifleman", 5)
	assert.Equal(t, ErrNone, err)
	assert.Equal(t, int64(800), side.Credits)
}

func TestEnqueueUnitRejectsUnknownTemplate(t *testing.T) {
	k, store, _ := buildKernel(t)
	producerID := store.Spawn("Barracks", "america", model.Vec3{}, entity.SpawnProperties{})

	err := k.EnqueueUnit(producerID, "DoesNotExist", 5)
	assert.Equal(t, ErrUnknownTemplate, err)
}

func TestTickSpawnsUnitAfterBuildTime(t *testing.T) {
	k, store, _ := buildKernel(t)
	producerID := store.Spawn("Barracks", "america", model.Vec3{}, entity.SpawnProperties{})
	assert.Equal(t, ErrNone, k.EnqueueUnit(producerID, "Rifleman", 5))

	before := len(store.AllIDs())
	for f := int64(0); f < 120; f++ {
		k.Tick(f, model.FrameMs)
	}
	after := len(store.AllIDs())
	assert.Equal(t, before+1, after)
}

func TestQuantityModifierSpawnsWithExitDelaySpacingNotFullBuildTime(t *testing.T) {
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{Name: "Barracks", MaxHealth: 500, CommandSet: "BarracksCommandSet"},
			{Name: "RedGuard", MaxHealth: 80, BuildCost: 150, BuildTimeSeconds: 1, QuantityModifier: 2, ExitDelaySeconds: 0.5},
		},
		CommandButton: []model.CommandButtonDef{
			{Name: "BuildRedGuard", Command: "UNIT_BUILD", Object: "RedGuard"},
		},
		CommandSets: []model.CommandSetDef{
			{Name: "BarracksCommandSet", Slots: map[int]string{0: "BuildRedGuard"}},
		},
	})
	store := entity.NewStore(reg)
	side := model.NewSideState("america", "HUMAN")
	side.Credits = 1000
	k := NewKernel(reg, store, event.NewBus(), map[string]*model.SideState{"america": side})
	producerID := store.Spawn("Barracks", "america", model.Vec3{}, entity.SpawnProperties{})
	assert.Equal(t, ErrNone, k.EnqueueUnit(producerID, "RedGuard", 5))

	count := func() int { return len(store.EntityIDsByTemplateAndSide("RedGuard", "america")) }

	for f := int64(0); f < 10; f++ {
		k.Tick(f, model.FrameMs)
	}
	assert.Equal(t, 0, count(), "no unit before build time elapses")

	for f := int64(10); f < 40; f++ {
		k.Tick(f, model.FrameMs)
	}
	assert.Equal(t, 1, count(), "first unit spawns once build time elapses")

	for f := int64(40); f < 50; f++ {
		k.Tick(f, model.FrameMs)
	}
	assert.Equal(t, 2, count(), "second unit spawns after ExitDelay rather than a second full build time")

	producer, _ := store.Get(producerID)
	assert.Empty(t, producer.Production.Queue, "entry is dequeued once QuantityTotal is produced")
}

func TestMaxSimultaneousLinkKeyPoolsAcrossTemplates(t *testing.T) {
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{Name: "Barracks", MaxHealth: 500, CommandSet: "BarracksCommandSet"},
			{Name: "WarFactory", MaxHealth: 500, BuildCost: 100, MaxSimultaneousOfType: 1, MaxSimultaneousLinkKey: "PRODUCTION_STRUCTURE"},
			{Name: "WarFactoryUpgraded", MaxHealth: 500, BuildCost: 100, MaxSimultaneousOfType: 1, MaxSimultaneousLinkKey: "PRODUCTION_STRUCTURE"},
		},
		CommandButton: []model.CommandButtonDef{
			{Name: "BuildWarFactoryUpgraded", Command: "UNIT_BUILD", Object: "WarFactoryUpgraded"},
		},
		CommandSets: []model.CommandSetDef{
			{Name: "BarracksCommandSet", Slots: map[int]string{0: "BuildWarFactoryUpgraded"}},
		},
	})
	store := entity.NewStore(reg)
	side := model.NewSideState("america", "HUMAN")
	side.Credits = 1000
	k := NewKernel(reg, store, event.NewBus(), map[string]*model.SideState{"america": side})
	producerID := store.Spawn("Barracks", "america", model.Vec3{}, entity.SpawnProperties{})
	store.Spawn("WarFactory", "america", model.Vec3{}, entity.SpawnProperties{})

	err := k.EnqueueUnit(producerID, "WarFactoryUpgraded", 5)
	assert.Equal(t, ErrMaxSimultaneous, err, "WarFactory already occupies the linked slot")
}

func TestCancelRefundsCost(t *testing.T) {
	k, store, side := buildKernel(t)
	producerID := store.Spawn("Barracks", "america", model.Vec3{}, entity.SpawnProperties{})
	k.EnqueueUnit(producerID, "Rifleman", 5)

	producer, _ := store.Get(producerID)
	prodID := producer.Production.Queue[0].ProductionID

	ok := k.Cancel(producerID, prodID)
	assert.True(t, ok)
	assert.Equal(t, int64(1000), side.Credits)
}
