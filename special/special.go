// Package special implements a grounded subset of SpecialSubsystems
// (spec.md Section 4.C10): SlowDeath, LifetimeUpdate, FireWeaponWhenDead,
// HordeUpdate, BattlePlan, and SpecialPower dispatch. The remaining module
// kinds listed in spec.md (minefields, DeployStyleAI, PointDefenseLaser,
// ProneUpdate, DemoTrap, RebuildHole, AutoDeposit, HackInternet,
// RailedTransport) are out of scope for this build; see DESIGN.md.
package special

import (
	"math"
	"strings"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/rng"
)

// Kernel ticks the frame-counted timers owned by the subsystems below.
type Kernel struct {
	Reg   *registry.Registry
	Store *entity.Store
	Bus   *event.Bus
	RNG   *rng.Stream
	Sides map[string]*model.SideState

	specialPowerCooldowns map[cooldownKey]int64 // ready-at frame
}

type cooldownKey struct {
	scopeID model.EntityID // entity id, or 0 for a side-scoped SharedSyncedTimer
	power   string
}

func NewKernel(reg *registry.Registry, store *entity.Store, bus *event.Bus, stream *rng.Stream, sides map[string]*model.SideState) *Kernel {
	return &Kernel{Reg: reg, Store: store, Bus: bus, RNG: stream, Sides: sides, specialPowerCooldowns: make(map[cooldownKey]int64)}
}

// --- SlowDeath / Lifetime ---

// BeginSlowDeath starts the death sequence on lethal damage (spec.md
// "SlowDeath"): the entity is marked dead and a death event is emitted, and
// TickLifecycle removes it once SinkDelay plus DestructionDelay ms have
// elapsed. No INITIAL or FINAL OCL is spawned and no sinking is modeled.
func (k *Kernel) BeginSlowDeath(e *entity.Entity, frame int64, sinkDelayMs, destructionDelayMs int64) {
	if e.Lifecycle.InSlowDeath {
		return
	}
	e.Alive = false
	e.Lifecycle.InSlowDeath = true
	e.Lifecycle.DeathFrame = frame
	e.Lifecycle.SinkDelayMs = sinkDelayMs
	e.Lifecycle.DestructionDelayMs = destructionDelayMs
	e.AI.AttackTargetEntityID = 0
	k.Bus.EmitDeath(e.ID, model.Vec3{X: e.X, Y: e.Y, Z: e.Z})
}

// TickLifecycle advances slow-death/lifetime timers and removes fully dead
// entities at the end of their destruction window.
func (k *Kernel) TickLifecycle(frame int64, frameMs float64) {
	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if !e.Lifecycle.InSlowDeath {
			k.tickLifetime(e, frameMs)
			continue
		}
		elapsed := float64(frame-e.Lifecycle.DeathFrame) * frameMs
		if elapsed >= float64(e.Lifecycle.SinkDelayMs+e.Lifecycle.DestructionDelayMs) {
			k.Store.Remove(id)
		}
	}
}

func (k *Kernel) tickLifetime(e *entity.Entity, frameMs float64) {
	if e.Lifecycle.LifetimeMs <= 0 || !e.Alive {
		return
	}
	e.Lifecycle.LifetimeMs -= int64(frameMs)
	if e.Lifecycle.LifetimeMs <= 0 {
		e.Alive = false
		k.Bus.EmitDeath(e.ID, model.Vec3{X: e.X, Y: e.Y, Z: e.Z})
	}
}

// --- FireWeaponWhenDead ---

// FireWeaponWhenDead looks up the DeathWeapon named weaponName (spec.md
// "FireWeaponWhenDeadBehavior") and returns its WeaponDef; it does not fire
// the weapon or apply any damage itself.
func (k *Kernel) FireWeaponWhenDead(e *entity.Entity, weaponName string) (model.WeaponDef, bool) {
	return k.Reg.WeaponDef(weaponName)
}

// --- HordeUpdate ---

// ApplyHorde implements spec.md "HordeUpdate": counts same-side, same-kind
// neighbors within Radius; grants the HORDE bit at or above Count, and
// NATIONALISM/FANATICISM bits if the side owns the matching sciences.
func (k *Kernel) ApplyHorde(e *entity.Entity, kindOf string, radius float64, count int, rubOffRadius float64) {
	neighbors := 0
	var nearMembers []*entity.Entity
	for _, id := range k.Store.AllIDs() {
		other, _ := k.Store.Get(id)
		if other.ID == e.ID || !other.Alive || other.Side != e.Side || !other.HasKindOf(strings.ToUpper(kindOf)) {
			continue
		}
		d := dist2D(e, other)
		if d <= radius {
			neighbors++
			nearMembers = append(nearMembers, other)
		}
	}

	hasHorde := neighbors >= count
	if hasHorde {
		e.WeaponBonusFlags |= model.BonusHorde
	} else {
		e.WeaponBonusFlags &^= model.BonusHorde
	}

	if ss, ok := k.Sides[e.Side]; ok {
		if ss.SciencesAcquired["SCIENCE_NATIONALISM"] {
			e.WeaponBonusFlags |= model.BonusNationalism
		}
		if ss.SciencesAcquired["SCIENCE_FANATICISM"] {
			e.WeaponBonusFlags |= model.BonusFanaticism
		}
	}

	if !hasHorde && rubOffRadius > 0 {
		for _, member := range nearMembers {
			if member.WeaponBonusFlags.Has(model.BonusHorde) && dist2D(e, member) <= rubOffRadius {
				e.WeaponBonusFlags |= model.BonusHorde
				break
			}
		}
	}
}

func dist2D(a, b *entity.Entity) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// TickHorde recomputes HordeUpdate bonuses for every alive entity whose
// object template declares a HordeUpdate behavior module (spec.md Section
// 4.C13 phase 2). The bonus is a stateless neighbor recount, not a timer, so
// driving it once per frame rather than on an event is sufficient.
func (k *Kernel) TickHorde() {
	for _, id := range k.Store.AllIDs() {
		e, ok := k.Store.Get(id)
		if !ok || !e.Alive {
			continue
		}
		def, ok := k.Reg.ObjectDef(e.TemplateName)
		if !ok {
			continue
		}
		for _, behavior := range def.Behaviors {
			if !strings.EqualFold(behavior.Kind, "HordeUpdate") {
				continue
			}
			kindOf := paramString(behavior.Params, "kindOf", "")
			if kindOf == "" {
				continue
			}
			radius := paramFloat(behavior.Params, "radius", 0)
			count := int(paramFloat(behavior.Params, "count", 0))
			rubOffRadius := paramFloat(behavior.Params, "rubOffRadius", 0)
			k.ApplyHorde(e, kindOf, radius, count, rubOffRadius)
		}
	}
}

func paramFloat(params map[string]any, key string, fallback float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

func paramString(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return fallback
}

// --- BattlePlan ---

// SwitchBattlePlan begins the PACKING->IDLE->UNPACKING->ACTIVE transition
// (spec.md "BattlePlanUpdate"): bonuses are removed immediately at pack
// start, and matching side units, excluding the Strategy Center itself, are
// set DISABLED_SUBDUED until applyPlanBonuses clears it when the new plan
// turns ACTIVE; paralyzeFrames does not bound the paralysis. bp persists on the center entity so
// TickBattlePlans can drive it every frame without a def lookup.
func (k *Kernel) SwitchBattlePlan(center *entity.Entity, bp *model.BattlePlanState, frame int64, newPlan model.BattlePlanKind, packFrames, unpackFrames, paralyzeFrames int64, validKindOf, invalidKindOf []string) {
	if bp.Active == newPlan && bp.Phase == "ACTIVE" {
		return
	}
	k.removePlanBonuses(center, bp.Active, bp.ValidKindOf, bp.InvalidKindOf)
	bp.Pending = newPlan
	bp.Phase = "PACKING"
	bp.PhaseUntil = frame + packFrames
	bp.UnpackFrames = unpackFrames
	bp.ValidKindOf = validKindOf
	bp.InvalidKindOf = invalidKindOf

	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if e.Side != center.Side || e.ID == center.ID {
			continue
		}
		if !matchesKindOf(e, validKindOf, invalidKindOf) {
			continue
		}
		e.Status = e.Status.Set(model.DisabledSubdued)
	}
	_ = paralyzeFrames // unused: paralysis lasts until the new plan turns ACTIVE
}

// TickBattlePlans advances the pack/unpack state machine for every entity
// carrying an in-progress BattlePlanState (spec.md Section 4.C13 phase 2).
func (k *Kernel) TickBattlePlans(frame int64) {
	for _, id := range k.Store.AllIDs() {
		e, ok := k.Store.Get(id)
		if !ok || !e.Alive || e.BattlePlan == nil {
			continue
		}
		k.TickBattlePlan(e, e.BattlePlan, frame)
	}
}

// TickBattlePlan advances a single center's pack/unpack state machine.
func (k *Kernel) TickBattlePlan(center *entity.Entity, bp *model.BattlePlanState, frame int64) {
	switch bp.Phase {
	case "PACKING":
		if frame >= bp.PhaseUntil {
			bp.Phase = "IDLE"
			bp.Active = model.PlanNone
		}
	case "IDLE":
		if bp.Pending != model.PlanNone {
			bp.Phase = "UNPACKING"
			bp.PhaseUntil = frame + bp.UnpackFrames
		}
	case "UNPACKING":
		if frame >= bp.PhaseUntil {
			bp.Active = bp.Pending
			bp.Pending = model.PlanNone
			bp.Phase = "ACTIVE"
			k.applyPlanBonuses(center, bp.Active, bp.ValidKindOf, bp.InvalidKindOf)
		}
	}
}

func (k *Kernel) applyPlanBonuses(center *entity.Entity, plan model.BattlePlanKind, validKindOf, invalidKindOf []string) {
	var bit model.WeaponBonusFlags
	switch plan {
	case model.PlanBombardment:
		bit = model.BonusBattlePlanBombardment
	case model.PlanHoldTheLine:
		bit = model.BonusBattlePlanHoldTheLine
	case model.PlanSearchAndDestroy:
		bit = model.BonusBattlePlanSearchAndDestroy
	default:
		return
	}
	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if e.Side != center.Side || e.ID == center.ID || !matchesKindOf(e, validKindOf, invalidKindOf) {
			continue
		}
		e.WeaponBonusFlags |= bit
		e.Status = e.Status.Clear(model.DisabledSubdued)
		if plan == model.PlanHoldTheLine {
			e.BattlePlanDamageScalar = 0.5
		}
		if plan == model.PlanSearchAndDestroy {
			e.VisionRange *= 1.5
		}
	}
}

func (k *Kernel) removePlanBonuses(center *entity.Entity, plan model.BattlePlanKind, validKindOf, invalidKindOf []string) {
	var bit model.WeaponBonusFlags
	switch plan {
	case model.PlanBombardment:
		bit = model.BonusBattlePlanBombardment
	case model.PlanHoldTheLine:
		bit = model.BonusBattlePlanHoldTheLine
	case model.PlanSearchAndDestroy:
		bit = model.BonusBattlePlanSearchAndDestroy
	default:
		return
	}
	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if e.Side != center.Side || e.ID == center.ID || !matchesKindOf(e, validKindOf, invalidKindOf) {
			continue
		}
		e.WeaponBonusFlags &^= bit
		if plan == model.PlanHoldTheLine {
			e.BattlePlanDamageScalar = 1.0
		}
	}
}

func matchesKindOf(e *entity.Entity, valid, invalid []string) bool {
	ok := len(valid) == 0
	for _, v := range valid {
		if e.HasKindOf(strings.ToUpper(v)) {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}
	for _, v := range invalid {
		if e.HasKindOf(strings.ToUpper(v)) {
			return false
		}
	}
	return true
}

// --- SpecialPower dispatch ---

// DispatchSpecialPower implements spec.md "SpecialPower dispatch": source
// resolution precedence, cooldown gating, and hook selection by
// CommandOption.
func (k *Kernel) DispatchSpecialPower(frame int64, powerName string, sourceEntityID model.EntityID, issuingEntityIDs []model.EntityID, targetEntityID model.EntityID, targetPos *model.Vec3) bool {
	powerName = registry.Normalize(powerName)
	def, ok := k.Reg.SpecialPowerDef(powerName)
	if !ok {
		return false
	}

	source := sourceEntityID
	if source == 0 && len(issuingEntityIDs) > 0 {
		source = issuingEntityIDs[0]
	}
	if source == 0 {
		return false
	}
	e, ok := k.Store.Get(source)
	if !ok || !e.Alive {
		return false
	}

	key := cooldownKey{scopeID: source, power: powerName}
	if def.SharedSyncedTimer {
		key = cooldownKey{scopeID: 0, power: e.Side + "|" + powerName}
	}
	if readyAt, ok := k.specialPowerCooldowns[key]; ok && frame < readyAt {
		return false
	}

	dispatch := &model.SpecialPowerDispatch{
		SpecialPowerTemplateName: powerName,
		ModuleType:               def.Kind,
		CommandOption:            def.CommandOption,
		TargetEntityID:           targetEntityID,
	}
	if targetPos != nil {
		dispatch.TargetX = &targetPos.X
		dispatch.TargetZ = &targetPos.Z
	}
	k.specialPowerCooldowns[key] = frame + model.MsToFrames(def.ReloadTimeMs)

	switch strings.ToUpper(def.CommandOption) {
	case "NEED_TARGET_ENEMY_OBJECT":
		dispatch.DispatchType = "onTargetObject"
		e.LastSpecialPowerDispatch = dispatch
		return k.onTargetObject(e, def, targetEntityID)
	case "NEED_TARGET_POS":
		dispatch.DispatchType = "onTargetPosition"
		e.LastSpecialPowerDispatch = dispatch
		return k.onTargetPosition(e, def, targetPos)
	default:
		dispatch.DispatchType = "onNoTarget"
		e.LastSpecialPowerDispatch = dispatch
		return k.onNoTarget(frame, e, def)
	}
}

func (k *Kernel) onTargetObject(source *entity.Entity, def model.SpecialPowerDef, targetID model.EntityID) bool {
	target, ok := k.Store.Get(targetID)
	if !ok || !target.Alive {
		return false
	}
	switch strings.ToUpper(def.Kind) {
	case "CASHHACKSPECIALPOWER", "CASH_HACK":
		return k.cashHack(source, target, def.Damage)
	case "DEFECTORSPECIALPOWER", "DEFECTOR":
		target.Side = source.Side
		return true
	case "AREA_DAMAGE":
		k.areaDamage(model.Vec3{X: target.X, Y: target.Y, Z: target.Z}, def.Damage, def.Radius)
		return true
	default:
		return true
	}
}

func (k *Kernel) cashHack(source, target *entity.Entity, amount float64) bool {
	targetSS, ok1 := k.Sides[target.Side]
	sourceSS, ok2 := k.Sides[source.Side]
	if !ok1 || !ok2 {
		return false
	}
	stolen := int64(amount)
	if stolen > targetSS.Credits {
		stolen = targetSS.Credits
	}
	targetSS.Credits -= stolen
	sourceSS.Credits += stolen
	return true
}

func (k *Kernel) onTargetPosition(source *entity.Entity, def model.SpecialPowerDef, pos *model.Vec3) bool {
	if pos == nil {
		return false
	}
	switch strings.ToUpper(def.Kind) {
	case "OCLSPECIALPOWER", "OCL":
		return k.spawnOCL(def.OCLName, source.Side, *pos)
	case "AREA_DAMAGE":
		k.areaDamage(*pos, def.Damage, def.Radius)
		return true
	default:
		return true
	}
}

func (k *Kernel) onNoTarget(frame int64, source *entity.Entity, def model.SpecialPowerDef) bool {
	switch {
	case strings.EqualFold(def.Kind, "OCL") || strings.EqualFold(def.Kind, "OCLSpecialPower"):
		return k.spawnOCL(def.OCLName, source.Side, model.Vec3{X: source.X, Y: source.Y, Z: source.Z})
	case strings.EqualFold(def.Kind, "BATTLEPLAN"):
		return k.switchBattlePlanFor(frame, source, def)
	}
	return true
}

// switchBattlePlanFor begins a BattlePlan special power's pack/unpack cycle
// on source, allocating its BattlePlanState on first use.
func (k *Kernel) switchBattlePlanFor(frame int64, source *entity.Entity, def model.SpecialPowerDef) bool {
	newPlan := model.BattlePlanKind(strings.ToUpper(def.BattlePlan))
	if newPlan == model.PlanNone {
		return false
	}
	if source.BattlePlan == nil {
		source.BattlePlan = &model.BattlePlanState{Phase: "IDLE"}
	}
	k.SwitchBattlePlan(source, source.BattlePlan, frame, newPlan,
		model.MsToFrames(def.PackTimeMs), model.MsToFrames(def.UnpackTimeMs), model.MsToFrames(def.ParalyzeTimeMs),
		def.ValidKindOf, def.InvalidKindOf)
	return true
}

func (k *Kernel) spawnOCL(oclName, side string, pos model.Vec3) bool {
	ocl, ok := k.Reg.ObjectCreationList(oclName)
	if !ok {
		return false
	}
	for _, spawn := range ocl.Spawns {
		count := spawn.Count
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			k.Store.Spawn(spawn.TemplateName, side, model.Vec3{X: pos.X + spawn.OffsetX, Y: pos.Y, Z: pos.Z + spawn.OffsetY}, entity.SpawnProperties{})
		}
	}
	return true
}

func (k *Kernel) areaDamage(pos model.Vec3, damage, radius float64) {
	if radius <= 0 {
		return
	}
	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if !e.Alive {
			continue
		}
		dx := e.X - pos.X
		dz := e.Z - pos.Z
		if dx*dx+dz*dz > radius*radius {
			continue
		}
		e.Health -= damage
		if e.Health <= 0 {
			e.Health = 0
			e.Alive = false
			k.Bus.EmitDeath(e.ID, model.Vec3{X: e.X, Y: e.Y, Z: e.Z})
		}
	}
}
