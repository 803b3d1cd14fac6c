package combat

import (
	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
)

// selectWeaponSet implements "Weapon selection" (spec.md Section 4.C6):
// prefer the WeaponSet whose Conditions are a subset of the entity's
// current weapon-bonus flags, exact match preferred, NONE as fallback.
func selectWeaponSet(def model.ObjectDef, flags model.WeaponBonusFlags) (model.WeaponSetDef, bool) {
	var fallback model.WeaponSetDef
	haveFallback := false
	bestScore := -1
	var best model.WeaponSetDef
	found := false

	for _, ws := range def.WeaponSets {
		if len(ws.Conditions) == 0 {
			fallback = ws
			haveFallback = true
			continue
		}
		if matchesAnyCondition(ws.Conditions, flags) {
			score := len(ws.Conditions)
			if score > bestScore {
				bestScore = score
				best = ws
				found = true
			}
		}
	}
	if found {
		return best, true
	}
	if haveFallback {
		return fallback, true
	}
	return model.WeaponSetDef{}, false
}

// effectiveWeapon resolves the attacker's current PRIMARY weapon
// definition, or ok=false if unresolved/absent.
func effectiveWeapon(reg *registry.Registry, def model.ObjectDef, attacker *entity.Entity) (model.WeaponDef, bool) {
	ws, ok := selectWeaponSet(def, attacker.WeaponBonusFlags)
	if !ok {
		return model.WeaponDef{}, false
	}
	for _, slot := range ws.Weapons {
		if slot.Slot == "PRIMARY" {
			return reg.WeaponDef(slot.Weapon)
		}
	}
	if len(ws.Weapons) > 0 {
		return reg.WeaponDef(ws.Weapons[0].Weapon)
	}
	return model.WeaponDef{}, false
}
