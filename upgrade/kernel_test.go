package upgrade

import (
	"testing"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/stretchr/testify/assert"
)

func TestGrantPlayerUpgradeDispatchesTriggeredModule(t *testing.T) {
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{
				Name:      "Tank",
				MaxHealth: 100,
				Upgrades: []model.UpgradeModuleDef{
					{Kind: "WeaponBonusUpgrade", TriggeredBy: []string{"UPGRADE_VETERAN_GUNS"}, Params: map[string]any{"bit": "A"}},
				},
			},
		},
		Upgrades: []model.UpgradeDef{{Name: "UPGRADE_VETERAN_GUNS", Type: "PLAYER", BuildCost: 1000}},
	})
	store := entity.NewStore(reg)
	side := model.NewSideState("america", "HUMAN")
	sides := map[string]*model.SideState{"america": side}
	k := NewKernel(reg, store, event.NewBus(), sides)

	id := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})

	ok := k.GrantPlayerUpgrade("america", "upgrade_veteran_guns")
	assert.True(t, ok)

	e, _ := store.Get(id)
	assert.True(t, e.WeaponBonusFlags.Has(model.BonusWeaponBonusA))
}

func TestRemovesUpgradesExecutesBeforeTrigger(t *testing.T) {
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{
				Name: "Tank", MaxHealth: 100,
				Upgrades: []model.UpgradeModuleDef{
					{Kind: "StealthUpgrade", TriggeredBy: []string{"A"}, RemovesUpgrades: []string{"B"}},
				},
			},
		},
	})
	store := entity.NewStore(reg)
	k := NewKernel(reg, store, event.NewBus(), map[string]*model.SideState{})
	id := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})
	e, _ := store.Get(id)
	e.UpgradesOwned["B"] = true

	k.GrantObjectUpgrade(id, "A")

	assert.False(t, e.UpgradesOwned["B"])
	assert.True(t, e.Status.Has(model.Stealthed))
}
