// Package combat implements the CombatKernel (spec.md Section 4.C6): weapon
// selection, the fire state machine, damage delivery, scatter, and
// continue-attack retargeting. This is the spec's largest subsystem.
package combat

import (
	"math"
	"strings"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/model"
)

// canTarget implements "Targeting legality" (spec.md Section 4.C6): alive,
// not masked, not unattackable, matching on/off-map status, stealth gate,
// and NO_ATTACK_FROM_AI.
func canTarget(attacker, target *entity.Entity, source model.CommandSource) bool {
	if target == nil || !target.Alive {
		return false
	}
	if target.Status.Has(model.Masked) {
		return false
	}
	if target.HasKindOf("UNATTACKABLE") {
		return false
	}
	if attacker.OffMap() != target.OffMap() {
		return false
	}
	if target.Status.Has(model.Stealthed) && !target.Status.Has(model.Detected) {
		if !attacker.Status.Has(model.IgnoringStealth) {
			return false
		}
	}
	if target.Status.Has(model.NoAttackFromAI) && source == model.SourceAI {
		return false
	}
	return true
}

func distance3D(a, b *entity.Entity) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// distance3DFromBoundingSphere implements the FROM_BOUNDINGSPHERE_3D
// adjustment (spec.md Section 4.C6, Section 9 Open Questions).
func distance3DFromBoundingSphere(a, b *entity.Entity) float64 {
	d := distance3D(a, b)
	d -= b.BoundingSphereRadius()
	if d < 0 {
		d = 0
	}
	return d
}

func matchesAnyCondition(conditions []string, flags model.WeaponBonusFlags) bool {
	if len(conditions) == 0 {
		return true // NONE is a valid fallback match
	}
	for _, c := range conditions {
		if !conditionSatisfied(c, flags) {
			return false
		}
	}
	return true
}

func conditionSatisfied(condition string, flags model.WeaponBonusFlags) bool {
	switch strings.ToUpper(condition) {
	case "PLAYER_UPGRADE":
		return flags.Has(model.BonusPlayerUpgrade)
	case "BATTLEPLAN_BOMBARDMENT":
		return flags.Has(model.BonusBattlePlanBombardment)
	case "BATTLEPLAN_HOLDTHELINE":
		return flags.Has(model.BonusBattlePlanHoldTheLine)
	case "BATTLEPLAN_SEARCHANDDESTROY":
		return flags.Has(model.BonusBattlePlanSearchAndDestroy)
	case "WEAPON_BONUS_A":
		return flags.Has(model.BonusWeaponBonusA)
	case "WEAPON_BONUS_B":
		return flags.Has(model.BonusWeaponBonusB)
	case "WEAPON_BONUS_C":
		return flags.Has(model.BonusWeaponBonusC)
	default:
		return true
	}
}
