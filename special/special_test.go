package special

import (
	"testing"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/rng"
	"github.com/stretchr/testify/assert"
)

func buildKernel(t *testing.T, objects []model.ObjectDef, powers []model.SpecialPowerDef, ocls []model.ObjectCreationList) (*Kernel, *entity.Store, map[string]*model.SideState) {
	t.Helper()
	reg := registry.Build(model.DataBundle{Objects: objects, SpecialPowers: powers, OCLs: ocls})
	store := entity.NewStore(reg)
	sides := map[string]*model.SideState{
		"america": model.NewSideState("america", "HUMAN"),
		"gla":     model.NewSideState("gla", "HUMAN"),
	}
	sides["america"].Credits = 1000
	sides["gla"].Credits = 1000
	return NewKernel(reg, store, event.NewBus(), rng.NewStream(1), sides), store, sides
}

func TestBeginSlowDeathRemovesEntityAfterWindow(t *testing.T) {
	k, store, _ := buildKernel(t, []model.ObjectDef{{Name: "Tank", MaxHealth: 100}}, nil, nil)
	id := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})
	e, _ := store.Get(id)

	k.BeginSlowDeath(e, 0, 1000, 2000)
	assert.False(t, e.Alive)

	for f := int64(0); f < 90; f++ {
		k.TickLifecycle(f, model.FrameMs)
		if _, ok := store.Get(id); !ok {
			t.Fatalf("entity removed early at frame %d", f)
		}
	}
	k.TickLifecycle(90, model.FrameMs)
	_, stillThere := store.Get(id)
	assert.False(t, stillThere)
}

func TestHordeGrantsBonusAtThreshold(t *testing.T) {
	k, store, _ := buildKernel(t, []model.ObjectDef{{Name: "Rifleman", MaxHealth: 50, KindOf: []string{"INFANTRY"}}}, nil, nil)
	var lead *entity.Entity
	for i := 0; i < 5; i++ {
		id := store.Spawn("Rifleman", "america", model.Vec3{X: float64(i)}, entity.SpawnProperties{})
		e, _ := store.Get(id)
		if lead == nil {
			lead = e
		}
	}
	k.ApplyHorde(lead, "INFANTRY", 100, 3, 0)
	assert.True(t, lead.WeaponBonusFlags.Has(model.BonusHorde))
}

func TestDispatchSpecialPowerCashHackTransfersCredits(t *testing.T) {
	k, store, sides := buildKernel(t, []model.ObjectDef{
		{Name: "HackerVan", MaxHealth: 100},
		{Name: "CommandCenter", MaxHealth: 1000},
	}, []model.SpecialPowerDef{
		{Name: "CashHack", ReloadTimeMs: 60000, CommandOption: "NEED_TARGET_ENEMY_OBJECT", Kind: "CASH_HACK", Damage: 300},
	}, nil)
	sourceID := store.Spawn("HackerVan", "gla", model.Vec3{}, entity.SpawnProperties{})
	targetID := store.Spawn("CommandCenter", "america", model.Vec3{}, entity.SpawnProperties{})

	ok := k.DispatchSpecialPower(0, "CashHack", sourceID, nil, targetID, nil)
	assert.True(t, ok)
	assert.Equal(t, int64(700), sides["america"].Credits)
	assert.Equal(t, int64(1300), sides["gla"].Credits)
}

func TestDispatchSpecialPowerRespectsCooldown(t *testing.T) {
	k, store, _ := buildKernel(t, []model.ObjectDef{
		{Name: "HackerVan", MaxHealth: 100},
		{Name: "CommandCenter", MaxHealth: 1000},
	}, []model.SpecialPowerDef{
		{Name: "CashHack", ReloadTimeMs: 60000, CommandOption: "NEED_TARGET_ENEMY_OBJECT", Kind: "CASH_HACK", Damage: 300},
	}, nil)
	sourceID := store.Spawn("HackerVan", "gla", model.Vec3{}, entity.SpawnProperties{})
	targetID := store.Spawn("CommandCenter", "america", model.Vec3{}, entity.SpawnProperties{})

	assert.True(t, k.DispatchSpecialPower(0, "CashHack", sourceID, nil, targetID, nil))
	assert.False(t, k.DispatchSpecialPower(1, "CashHack", sourceID, nil, targetID, nil))
}

func TestDispatchSpecialPowerOCLSpawnsUnits(t *testing.T) {
	k, store, _ := buildKernel(t, []model.ObjectDef{
		{Name: "Outpost", MaxHealth: 500},
		{Name: "Rebel", MaxHealth: 50},
	}, []model.SpecialPowerDef{
		{Name: "Paradrop", ReloadTimeMs: 120000, CommandOption: "NEED_TARGET_POS", Kind: "OCL", OCLName: "ParadropOCL"},
	}, []model.ObjectCreationList{
		{Name: "ParadropOCL", Spawns: []model.OCLSpawnEntry{{TemplateName: "Rebel", Count: 3}}},
	})
	sourceID := store.Spawn("Outpost", "gla", model.Vec3{}, entity.SpawnProperties{})
	before := len(store.AllIDs())

	ok := k.DispatchSpecialPower(0, "Paradrop", sourceID, nil, 0, &model.Vec3{X: 10, Z: 10})
	assert.True(t, ok)
	assert.Equal(t, before+3, len(store.AllIDs()))
}
