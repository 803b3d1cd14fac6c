package skirmish

import (
	"testing"

	"github.com/dominionforge/dominion-core/combat"
	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/movement"
	"github.com/dominionforge/dominion-core/production"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/rng"
	"github.com/dominionforge/dominion-core/upgrade"
	"github.com/stretchr/testify/assert"
)

func buildKernel(t *testing.T) (*Kernel, *entity.Store, *model.SideState) {
	t.Helper()
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{Name: "Rifleman", MaxHealth: 50, KindOf: []string{"INFANTRY", "CAN_ATTACK"}},
			{Name: "EnemyBarracks", MaxHealth: 500, KindOf: []string{"STRUCTURE"}},
		},
	})
	store := entity.NewStore(reg)
	bus := event.NewBus()
	sides := map[string]*model.SideState{
		"america": model.NewSideState("america", "COMPUTER"),
		"gla":     model.NewSideState("gla", "HUMAN"),
	}
	sides["america"].Credits = 5000

	prod := production.NewKernel(reg, store, bus, sides)
	upg := upgrade.NewKernel(reg, store, bus, sides)
	mv := movement.NewKernel(reg, store, bus)
	cb := combat.NewKernel(reg, store, rng.NewStream(1), bus, nil)

	k := NewKernel(reg, store, sides, prod, upg, mv, cb)
	k.Configs["america"] = Config{Enabled: true, ForceThreshold: 2}
	return k, store, sides["america"]
}

func TestCombatTickDispatchesIdleUnitsAtForceThreshold(t *testing.T) {
	k, store, _ := buildKernel(t)
	for i := 0; i < 3; i++ {
		store.Spawn("Rifleman", "america", model.Vec3{X: float64(i)}, entity.SpawnProperties{})
	}
	enemyID := store.Spawn("EnemyBarracks", "gla", model.Vec3{X: 500, Z: 500}, entity.SpawnProperties{})

	k.combatTick("america", k.Configs["america"])

	for _, id := range store.AllIDs() {
		e, _ := store.Get(id)
		if e.Side != "america" {
			continue
		}
		assert.Equal(t, enemyID, e.AI.AttackTargetEntityID)
	}
}

func TestCombatTickDoesNothingBelowThreshold(t *testing.T) {
	k, store, _ := buildKernel(t)
	store.Spawn("Rifleman", "america", model.Vec3{}, entity.SpawnProperties{})
	store.Spawn("EnemyBarracks", "gla", model.Vec3{X: 500, Z: 500}, entity.SpawnProperties{})

	k.combatTick("america", k.Configs["america"])

	for _, id := range store.AllIDs() {
		e, _ := store.Get(id)
		if e.Side == "america" {
			assert.Equal(t, model.EntityID(0), e.AI.AttackTargetEntityID)
		}
	}
}

func TestBiasRallyPointsPointsAtNearestEnemyStructure(t *testing.T) {
	k, store, _ := buildKernel(t)
	producerID := store.Spawn("Rifleman", "america", model.Vec3{}, entity.SpawnProperties{})
	producer, _ := store.Get(producerID)
	producer.Production = &entity.ProductionState{}
	enemyID := store.Spawn("EnemyBarracks", "gla", model.Vec3{X: 100, Z: 100}, entity.SpawnProperties{})
	enemy, _ := store.Get(enemyID)

	k.BiasRallyPoints("america")

	assert.NotNil(t, producer.Production.RallyPoint)
	assert.Equal(t, enemy.X, producer.Production.RallyPoint.X)
}
