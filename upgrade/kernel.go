// Package upgrade implements the UpgradeKernel (spec.md Section 4.C7):
// per-side and per-object upgrade ownership, module dispatch gated by
// TriggeredBy/RequiresAllTriggers, and capture-transfer of side-scoped
// effects.
package upgrade

import (
	"strings"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
)

// Kernel is the UpgradeKernel.
type Kernel struct {
	Reg    *registry.Registry
	Store  *entity.Store
	Bus    *event.Bus
	Sides  map[string]*model.SideState
}

func NewKernel(reg *registry.Registry, store *entity.Store, bus *event.Bus, sides map[string]*model.SideState) *Kernel {
	return &Kernel{Reg: reg, Store: store, Bus: bus, Sides: sides}
}

// GrantPlayerUpgrade adds an upgrade to a side's ownership set and dispatches
// every owned object's matching upgrade modules (spec.md Section 4.C7
// "PLAYER-upgrade production").
func (k *Kernel) GrantPlayerUpgrade(side, upgradeName string) bool {
	ss, ok := k.Sides[side]
	if !ok {
		return false
	}
	upgradeName = registry.Normalize(upgradeName)
	if ss.CompletedPlayerUpgrades == nil {
		ss.CompletedPlayerUpgrades = make(map[string]bool)
	}
	ss.CompletedPlayerUpgrades[upgradeName] = true

	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if e.Side != side {
			continue
		}
		k.dispatchObjectModules(e)
	}
	return true
}

// DispatchForEntity re-evaluates module triggers for an entity without
// changing its ownership set, used by the frame loop's upgrade-dispatch
// phase to apply already-owned side/object upgrades to freshly produced
// entities (spec.md Section 4.C13 phase 7).
func (k *Kernel) DispatchForEntity(e *entity.Entity) {
	k.dispatchObjectModules(e)
}

// GrantObjectUpgrade adds an upgrade to a single object's ownership set and
// re-evaluates its modules.
func (k *Kernel) GrantObjectUpgrade(entityID model.EntityID, upgradeName string) bool {
	e, ok := k.Store.Get(entityID)
	if !ok {
		return false
	}
	upgradeName = registry.Normalize(upgradeName)
	if e.UpgradesOwned == nil {
		e.UpgradesOwned = make(map[string]bool)
	}
	e.UpgradesOwned[upgradeName] = true
	k.dispatchObjectModules(e)
	return true
}

// ownershipFor merges the entity's own owned upgrades with its side's
// PLAYER-scoped owned upgrades, since TriggeredBy checks both scopes.
func (k *Kernel) ownershipFor(e *entity.Entity) map[string]bool {
	merged := make(map[string]bool)
	for u := range e.UpgradesOwned {
		merged[u] = true
	}
	if ss, ok := k.Sides[e.Side]; ok {
		for u := range ss.CompletedPlayerUpgrades {
			merged[u] = true
		}
	}
	return merged
}

// dispatchObjectModules implements the per-module evaluation described in
// spec.md Section 4.C7: RemovesUpgrades executes first, then TriggeredBy is
// evaluated against the resulting ownership set, in declaration order.
func (k *Kernel) dispatchObjectModules(e *entity.Entity) {
	def, ok := k.Reg.ObjectDef(e.TemplateName)
	if !ok {
		return
	}
	for _, mod := range def.Upgrades {
		for _, removed := range mod.RemovesUpgrades {
			delete(e.UpgradesOwned, registry.Normalize(removed))
		}
	}
	ownership := k.ownershipFor(e)
	for _, mod := range def.Upgrades {
		if !triggered(mod, ownership) {
			continue
		}
		k.applyModule(e, mod)
	}
}

func triggered(mod model.UpgradeModuleDef, ownership map[string]bool) bool {
	if len(mod.TriggeredBy) == 0 {
		return true
	}
	if mod.RequiresAllTriggers {
		for _, t := range mod.TriggeredBy {
			if !ownership[registry.Normalize(t)] {
				return false
			}
		}
		return true
	}
	for _, t := range mod.TriggeredBy {
		if ownership[registry.Normalize(t)] {
			return true
		}
	}
	return false
}

func (k *Kernel) applyModule(e *entity.Entity, mod model.UpgradeModuleDef) {
	switch strings.ToUpper(mod.Kind) {
	case "WEAPONSETUPGRADE":
		e.WeaponBonusFlags |= model.BonusPlayerUpgrade
	case "WEAPONBONUSUPGRADE":
		bit := weaponBonusBitFrom(mod.Params)
		e.WeaponBonusFlags |= bit
	case "ARMORUPGRADE":
		if armor, ok := paramString(mod.Params, "armor"); ok {
			e.ArmorSetCurrent = armor
		}
	case "LOCOMOTORSETUPGRADE":
		if set, ok := paramString(mod.Params, "locomotorSet"); ok {
			e.Locomotor.ActiveSet = set
			if ldef, ok := k.Reg.LocomotorDef(set); ok {
				e.Locomotor.Speed = ldef.Speed
			}
		}
	case "MAXHEALTHUPGRADE":
		k.applyMaxHealthUpgrade(e, mod.Params)
	case "STATUSBITSUPGRADE":
		k.applyStatusBits(e, mod.Params)
	case "COMMANDSETUPGRADE":
		if cs, ok := paramString(mod.Params, "commandSet"); ok {
			e.CommandSetOverride = cs
		}
	case "POWERPLANTUPGRADE":
		if !e.Status.Disabled() {
			if ss, ok := k.Sides[e.Side]; ok {
				if def, ok := k.Reg.ObjectDef(e.TemplateName); ok {
					ss.PowerBonus += def.EnergyBonus
				}
			}
		}
	case "RADARUPGRADE":
		if ss, ok := k.Sides[e.Side]; ok {
			ss.RadarCount++
			if disableProof, _ := paramBool(mod.Params, "disableProof"); disableProof {
				ss.RadarDisableProofCount++
			}
		}
	case "GRANTSCIENCEUPGRADE":
		if science, ok := paramString(mod.Params, "science"); ok {
			if ss, ok := k.Sides[e.Side]; ok {
				if ss.SciencesAcquired == nil {
					ss.SciencesAcquired = make(map[string]bool)
				}
				ss.SciencesAcquired[registry.Normalize(science)] = true
			}
		}
	case "COSTMODIFIERUPGRADE":
		k.applyCostModifier(e, mod.Params)
	case "STEALTHUPGRADE":
		e.Status = e.Status.Set(model.Stealthed)
	case "PASSENGERSFIREUPGRADE":
		e.Container.PassengersAllowedToFire = true
	}
}

func weaponBonusBitFrom(params map[string]any) model.WeaponBonusFlags {
	name, _ := paramString(params, "bit")
	switch strings.ToUpper(name) {
	case "B":
		return model.BonusWeaponBonusB
	case "C":
		return model.BonusWeaponBonusC
	default:
		return model.BonusWeaponBonusA
	}
}

func (k *Kernel) applyMaxHealthUpgrade(e *entity.Entity, params map[string]any) {
	add, ok := paramFloat(params, "addMaxHealth")
	if !ok || add == 0 {
		return
	}
	changeType, _ := paramString(params, "changeType")
	oldMax := e.MaxHealth
	e.MaxHealth += add
	switch strings.ToUpper(changeType) {
	case "PRESERVE_RATIO":
		if oldMax > 0 {
			ratio := e.Health / oldMax
			e.Health = e.MaxHealth * ratio
		}
	case "FULL":
		e.Health = e.MaxHealth
	default: // SAME_CURRENTHEALTH
	}
}

func (k *Kernel) applyStatusBits(e *entity.Entity, params map[string]any) {
	if set, ok := paramStringSlice(params, "set"); ok {
		for _, name := range set {
			if bit, ok := statusBitByName(name); ok {
				e.Status = e.Status.Set(bit)
			}
		}
	}
	if clear, ok := paramStringSlice(params, "clear"); ok {
		for _, name := range clear {
			if bit, ok := statusBitByName(name); ok {
				e.Status = e.Status.Clear(bit)
			}
		}
	}
}

func statusBitByName(name string) (model.StatusBits, bool) {
	switch strings.ToUpper(name) {
	case "STEALTHED":
		return model.Stealthed, true
	case "DETECTED":
		return model.Detected, true
	case "NO_ATTACK":
		return model.NoAttack, true
	case "NO_ATTACK_FROM_AI":
		return model.NoAttackFromAI, true
	case "IGNORING_STEALTH":
		return model.IgnoringStealth, true
	case "UNSELECTABLE":
		return model.Unselectable, true
	default:
		return 0, false
	}
}

func (k *Kernel) applyCostModifier(e *entity.Entity, params map[string]any) {
	ss, ok := k.Sides[e.Side]
	if !ok {
		return
	}
	kindOf, _ := paramString(params, "kindOf")
	pct, ok := paramFloat(params, "percentage")
	if !ok {
		return
	}
	if ss.CostModifiers == nil {
		ss.CostModifiers = make(map[string]float64)
	}
	ss.CostModifiers[strings.ToUpper(kindOf)] = pct
}

func paramString(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func paramStringSlice(params map[string]any, key string) ([]string, bool) {
	v, ok := params[key]
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

func paramFloat(params map[string]any, key string) (float64, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

func paramBool(params map[string]any, key string) (bool, bool) {
	v, ok := params[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// TransferSide implements capture (spec.md Section 4.C7 "Capture"): revert
// the entity's side-effect contributions on the old side, then re-apply on
// the new side. DISABLED_* entities keep their original-side assignment.
func (k *Kernel) TransferSide(e *entity.Entity, newSide string) {
	if e.Status.Disabled() {
		return
	}
	oldSide := e.Side
	def, ok := k.Reg.ObjectDef(e.TemplateName)
	if ok {
		if ss, ok := k.Sides[oldSide]; ok {
			ss.PowerBonus -= def.EnergyBonus
		}
	}
	e.Side = strings.ToLower(strings.TrimSpace(newSide))
	if ok {
		if ss, ok := k.Sides[e.Side]; ok {
			ss.PowerBonus += def.EnergyBonus
		}
	}
}
