package combat

import (
	"testing"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/rng"
	"github.com/stretchr/testify/assert"
)

func buildKernel(t *testing.T, objects []model.ObjectDef, weapons []model.WeaponDef) (*Kernel, *entity.Store) {
	t.Helper()
	reg := registry.Build(model.DataBundle{Objects: objects, Weapons: weapons})
	store := entity.NewStore(reg)
	bus := event.NewBus()
	stream := rng.NewStream(1)
	k := NewKernel(reg, store, stream, bus, nil)
	return k, store
}

func tankObject(name string, health float64) model.ObjectDef {
	return model.ObjectDef{
		Name:      name,
		KindOf:    []string{"VEHICLE"},
		MaxHealth: health,
		Geometry:  model.Geometry{MajorRadius: 5},
		WeaponSets: []model.WeaponSetDef{
			{Weapons: []model.WeaponSlotRef{{Slot: "PRIMARY", Weapon: "TANKGUN"}}},
		},
	}
}

// TestDirectFireCadence validates the Scenario 1 health timeline: a weapon
// with no pre-attack delay fires every DelayBetweenShots, dealing 30 damage
// per hit against a 100-health target at point-blank range.
func TestDirectFireCadence(t *testing.T) {
	weapon := model.WeaponDef{
		Name:                "TankGun",
		PrimaryDamage:       30,
		AttackRange:         120,
		DelayBetweenShotsMs: 100,
	}
	k, store := buildKernel(t, []model.ObjectDef{tankObject("Tank", 100)}, []model.WeaponDef{weapon})

	attackerID := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})
	targetID := store.Spawn("Tank", "china", model.Vec3{X: 10}, entity.SpawnProperties{})

	ok := k.IssueAttack(attackerID, targetID, model.SourcePlayer)
	assert.True(t, ok)

	want := []float64{70, 70, 70, 40, 40, 40, 10, 10, 10, -1, -1, -1}
	for frame := int64(0); frame < 12; frame++ {
		k.Tick(frame)
		target, ok := store.Get(targetID)
		assert.True(t, ok)
		got := target.Health
		if !target.Alive {
			got = -1
		}
		assert.Equalf(t, want[frame], got, "frame %d", frame)
	}
}

// TestPerShotPreAttackDelay validates the Scenario 2 health timeline: a
// PER_SHOT pre-attack type re-aims every cycle, pushing shots to frames 3
// and 9 instead of 0, 3, 6, 9.
func TestPerShotPreAttackDelay(t *testing.T) {
	weapon := model.WeaponDef{
		Name:                "TankGun",
		PrimaryDamage:       30,
		AttackRange:         120,
		DelayBetweenShotsMs: 100,
		PreAttackDelayMs:    100,
		PreAttackType:       "PER_SHOT",
	}
	k, store := buildKernel(t, []model.ObjectDef{tankObject("Tank", 200)}, []model.WeaponDef{weapon})

	attackerID := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})
	targetID := store.Spawn("Tank", "china", model.Vec3{X: 10}, entity.SpawnProperties{})

	assert.True(t, k.IssueAttack(attackerID, targetID, model.SourcePlayer))

	want := []float64{200, 200, 200, 170, 170, 170, 170, 170, 170, 140, 140, 140}
	for frame := int64(0); frame < 12; frame++ {
		k.Tick(frame)
		target, _ := store.Get(targetID)
		assert.Equalf(t, want[frame], target.Health, "frame %d", frame)
	}
}

// TestContinueAttackSameOwnerOnly validates Scenario 5: after a kill, an
// attacker with ContinueAttackRange retargets only among entities sharing
// the dead target's OriginalOwnerPlayer, never a bystander of another side.
func TestContinueAttackSameOwnerOnly(t *testing.T) {
	weapon := model.WeaponDef{
		Name:                "TankGun",
		PrimaryDamage:       999,
		AttackRange:         120,
		ContinueAttackRange: 50,
		DelayBetweenShotsMs: 33,
	}
	k, store := buildKernel(t, []model.ObjectDef{tankObject("Tank", 10)}, []model.WeaponDef{weapon})

	attackerID := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})
	victimID := store.Spawn("Tank", "china", model.Vec3{X: 10}, entity.SpawnProperties{OriginalOwnerPlayer: "playerA"})
	sameOwnerID := store.Spawn("Tank", "china", model.Vec3{X: 15}, entity.SpawnProperties{OriginalOwnerPlayer: "playerA"})
	bystanderID := store.Spawn("Tank", "gla", model.Vec3{X: 12}, entity.SpawnProperties{OriginalOwnerPlayer: "playerB"})

	assert.True(t, k.IssueAttack(attackerID, victimID, model.SourcePlayer))
	k.Tick(0)

	victim, _ := store.Get(victimID)
	assert.False(t, victim.Alive)

	attacker, _ := store.Get(attackerID)
	assert.Equal(t, sameOwnerID, attacker.AI.AttackTargetEntityID)
	assert.NotEqual(t, bystanderID, attacker.AI.AttackTargetEntityID)
}

// TestOutOfRangeSuppressesFire confirms an attacker beyond AttackRange never
// schedules damage.
func TestOutOfRangeSuppressesFire(t *testing.T) {
	weapon := model.WeaponDef{Name: "TankGun", PrimaryDamage: 30, AttackRange: 10, DelayBetweenShotsMs: 100}
	k, store := buildKernel(t, []model.ObjectDef{tankObject("Tank", 100)}, []model.WeaponDef{weapon})

	attackerID := store.Spawn("Tank", "america", model.Vec3{}, entity.SpawnProperties{})
	targetID := store.Spawn("Tank", "china", model.Vec3{X: 500}, entity.SpawnProperties{})

	assert.True(t, k.IssueAttack(attackerID, targetID, model.SourcePlayer))
	for frame := int64(0); frame < 5; frame++ {
		k.Tick(frame)
	}
	target, _ := store.Get(targetID)
	assert.Equal(t, 100.0, target.Health)
}
