package combat

import (
	"math"
	"strings"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/rng"
)

// SideRelationship is injected by the owning World so the kernel never
// needs to know about side-table storage directly.
type SideRelationship func(side, other string) int

// Kernel is the CombatKernel (spec.md Section 4.C6).
type Kernel struct {
	Reg      *registry.Registry
	Store    *entity.Store
	RNG      *rng.Stream
	Bus      *event.Bus
	Relation SideRelationship

	experienceRequired map[string][]int
	experienceValue    map[string][]int

	// pendingDamage holds damage events scheduled for a future frame, keyed
	// by the frame they resolve on (spec.md "damage resolves on impact
	// frame").
	pendingDamage map[int64][]pendingHit
}

type pendingHit struct {
	attacker model.EntityID
	target   model.EntityID
	weapon   model.WeaponDef
	origin   model.Vec3
	impact   model.Vec3
}

func NewKernel(reg *registry.Registry, store *entity.Store, stream *rng.Stream, bus *event.Bus, rel SideRelationship) *Kernel {
	return &Kernel{
		Reg:           reg,
		Store:         store,
		RNG:           stream,
		Bus:           bus,
		Relation:      rel,
		pendingDamage: make(map[int64][]pendingHit),
	}
}

// IssueAttack validates and sets an attack intent (spec.md Section 4.C6
// "Targeting legality"). Illegal commands are silently rejected, returning
// false, per spec.md Section 7.
func (k *Kernel) IssueAttack(attackerID, targetID model.EntityID, source model.CommandSource) bool {
	attacker, ok := k.Store.Get(attackerID)
	if !ok || !attacker.Alive {
		return false
	}
	target, ok := k.Store.Get(targetID)
	if !ok {
		return false
	}
	if !canTarget(attacker, target, source) {
		return false
	}
	attacker.AI.AttackTargetEntityID = targetID
	attacker.AI.CommandSource = source
	if attacker.Fire.AimTarget != targetID {
		// New target: clear any scheduled engagement so PER_ATTACK/PER_CLIP
		// re-aims appropriately on the next Tick.
		attacker.Fire.AimTarget = 0
	}
	return true
}

// Stop clears the attack intent and resets the fire state machine to IDLE.
func (k *Kernel) Stop(attackerID model.EntityID) {
	e, ok := k.Store.Get(attackerID)
	if !ok {
		return
	}
	e.AI.AttackTargetEntityID = 0
	e.Fire.AimTarget = 0
	e.Fire.Phase = "IDLE"
	e.Status = e.Status.Clear(model.IsAimingWeapon).Clear(model.IsFiringWeapon).Clear(model.IsAttacking)
}

// Tick advances every attacker's fire state machine by one frame and
// resolves any damage scheduled to land this frame (spec.md Section 4.C6
// "Fire state machine", "Damage delivery").
func (k *Kernel) Tick(frame int64) {
	for _, id := range k.Store.AllIDs() {
		attacker, _ := k.Store.Get(id)
		if !attacker.Alive || attacker.AI.AttackTargetEntityID == 0 {
			continue
		}
		k.tickAttacker(frame, attacker)
	}

	k.resolvePendingDamage(frame)
}

func (k *Kernel) tickAttacker(frame int64, attacker *entity.Entity) {
	targetID := attacker.AI.AttackTargetEntityID
	target, ok := k.Store.Get(targetID)
	if !ok || !canTarget(attacker, target, attacker.AI.CommandSource) {
		attacker.AI.AttackTargetEntityID = 0
		attacker.Fire.Phase = "IDLE"
		attacker.Status = attacker.Status.Clear(model.IsAimingWeapon).Clear(model.IsAttacking)
		return
	}

	def, ok := k.Reg.ObjectDef(attacker.TemplateName)
	if !ok {
		return
	}
	weapon, ok := effectiveWeapon(k.Reg, def, attacker)
	if !ok {
		return
	}

	dist := distance3DFromBoundingSphere(attacker, target)
	if weapon.AttackRange > 0 && dist > weapon.AttackRange {
		return // out of range this frame; host is responsible for repositioning
	}
	if weapon.MinimumAttackRange > 0 && dist < weapon.MinimumAttackRange {
		return // suppressed by MinimumAttackRange
	}

	fs := &attacker.Fire

	if fs.Phase == "" {
		fs.Phase = "IDLE"
	}

	// FIRE phase: scheduled shot lands this frame.
	if fs.Phase == "AIM" && frame >= fs.PhaseUntilMs {
		k.fire(frame, attacker, target, weapon)
		return
	}
	if fs.Phase == "AIM" {
		attacker.Status = attacker.Status.Set(model.IsAimingWeapon).Set(model.IsAttacking)
		return
	}

	// COOLDOWN: not ready yet.
	if fs.Phase == "COOLDOWN" && frame < fs.PhaseUntilMs {
		attacker.Status = attacker.Status.Set(model.IsAttacking).Clear(model.IsAimingWeapon).Clear(model.IsFiringWeapon)
		return
	}

	// Ready to engage: decide whether an aim phase is required.
	aimFrames := k.aimFramesFor(attacker, weapon, targetID)
	if aimFrames > 0 {
		fs.Phase = "AIM"
		fs.PhaseUntilMs = frame + aimFrames
		attacker.Status = attacker.Status.Set(model.IsAimingWeapon).Set(model.IsAttacking)
		return
	}
	k.fire(frame, attacker, target, weapon)
}

// aimFramesFor implements PreAttackType gating (spec.md Section 4.C6).
func (k *Kernel) aimFramesFor(attacker *entity.Entity, weapon model.WeaponDef, targetID model.EntityID) int64 {
	if weapon.PreAttackDelayMs <= 0 {
		return 0
	}
	switch strings.ToUpper(weapon.PreAttackType) {
	case "PER_SHOT":
		return model.MsToFrames(weapon.PreAttackDelayMs)
	case "PER_CLIP":
		if attacker.Fire.Slots != nil {
			if slot, ok := attacker.Fire.Slots["PRIMARY"]; ok && slot.ClipRemaining <= 0 {
				return model.MsToFrames(weapon.PreAttackDelayMs)
			}
		}
		if attacker.Fire.AimTarget != targetID {
			return model.MsToFrames(weapon.PreAttackDelayMs)
		}
		return 0
	case "PER_ATTACK":
		fallthrough
	default:
		if attacker.Fire.AimTarget != targetID {
			return model.MsToFrames(weapon.PreAttackDelayMs)
		}
		return 0
	}
}

func (k *Kernel) fire(frame int64, attacker, target *entity.Entity, weapon model.WeaponDef) {
	fs := &attacker.Fire
	fs.Phase = "COOLDOWN"
	fs.PhaseUntilMs = frame + model.MsToFrames(weapon.DelayBetweenShotsMs)
	fs.LastShotFrame = frame
	fs.AimTarget = target.ID
	attacker.Status = attacker.Status.Set(model.IsFiringWeapon).Set(model.IsAttacking).Clear(model.IsAimingWeapon)

	if weapon.ClipSize > 0 {
		if fs.Slots == nil {
			fs.Slots = make(map[string]*entity.WeaponSlotState)
		}
		slot, ok := fs.Slots["PRIMARY"]
		if !ok {
			slot = &entity.WeaponSlotState{ClipRemaining: weapon.ClipSize}
			fs.Slots["PRIMARY"] = slot
		}
		slot.ClipRemaining--
		if slot.ClipRemaining <= 0 {
			fs.PhaseUntilMs = frame + model.MsToFrames(weapon.ClipReloadTimeMs)
			slot.ClipRemaining = weapon.ClipSize
		}
	}

	impact := model.Vec3{X: target.X, Y: target.Y, Z: target.Z}
	impact = k.applyScatter(frame, attacker, weapon, impact)
	origin := model.Vec3{X: attacker.X, Y: attacker.Y, Z: attacker.Z}
	if weapon.DamageDealtAtSelfPos {
		impact = origin
	}

	travelFrames := k.travelFrames(attacker, target, weapon)
	hit := pendingHit{attacker: attacker.ID, target: target.ID, weapon: weapon, origin: origin, impact: impact}
	if strings.EqualFold(weapon.DeliveryType, "PROJECTILE") && weapon.ProjectileObject != "" {
		k.Bus.EmitProjectileSpawn(attacker.ID, origin, weapon.Name)
	}
	k.pendingDamage[frame+travelFrames] = append(k.pendingDamage[frame+travelFrames], hit)
}

func (k *Kernel) travelFrames(attacker, target *entity.Entity, weapon model.WeaponDef) int64 {
	speed := weapon.WeaponSpeed
	if speed <= 0 || speed >= 999999 {
		return 0
	}
	if weapon.ScaleWeaponSpeed && weapon.AttackRange > 0 {
		dist := distance3D(attacker, target)
		scale := dist / weapon.AttackRange
		speed = speed * scale
		if speed < weapon.MinWeaponSpeed {
			speed = weapon.MinWeaponSpeed
		}
		if speed <= 0 {
			return 0
		}
	}
	dist := distance3D(attacker, target)
	return int64(math.Ceil(dist / speed))
}

// applyScatter implements ScatterRadius/ScatterRadiusVsInfantry and
// ScatterTarget cycling (spec.md Section 4.C6 "Scatter").
func (k *Kernel) applyScatter(frame int64, attacker *entity.Entity, weapon model.WeaponDef, impact model.Vec3) model.Vec3 {
	if len(weapon.ScatterTargets) > 0 {
		fs := &attacker.Fire
		idx := fs.ScatterCursor % len(weapon.ScatterTargets)
		fs.ScatterCursor++
		off := weapon.ScatterTargets[idx]
		scalar := weapon.ScatterTargetScalar
		if scalar == 0 {
			scalar = 1
		}
		impact.X += off[0] * scalar
		impact.Z += off[1] * scalar
		return impact
	}
	radius := weapon.ScatterRadius
	if radius <= 0 {
		return impact
	}
	angle := k.RNG.Draw(frame, int64(attacker.ID), "scatter-angle") * 2 * math.Pi
	mag := k.RNG.Draw(frame, int64(attacker.ID), "scatter-mag") * radius
	impact.X += math.Cos(angle) * mag
	impact.Z += math.Sin(angle) * mag
	return impact
}
