package combat

import (
	"math"
	"strings"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/model"
)

// resolvePendingDamage applies every hit scheduled to land on frame
// (spec.md Section 4.C6 "Damage delivery"): direct damage, radius/secondary
// damage gated by RadiusDamageAffects and RadiusDamageAngle, armor
// coefficient lookup, death, veterancy XP, and continue-attack retarget.
func (k *Kernel) resolvePendingDamage(frame int64) {
	hits := k.pendingDamage[frame]
	if len(hits) == 0 {
		return
	}
	delete(k.pendingDamage, frame)

	for _, h := range hits {
		attacker, attackerOK := k.Store.Get(h.attacker)
		target, ok := k.Store.Get(h.target)
		if !ok {
			continue
		}
		k.applyHit(attacker, attackerOK, target, h)
	}
}

func (k *Kernel) applyHit(attacker *entity.Entity, attackerOK bool, primary *entity.Entity, h pendingHit) {
	if primary.Alive {
		k.damageOne(attacker, primary, h.weapon, h.weapon.PrimaryDamage)
		k.Bus.EmitWeaponImpact(h.attacker, h.target, h.impact, h.weapon.Name)
	}

	radius := h.weapon.PrimaryDamageRadius
	if radius > 0 {
		for _, id := range k.Store.AllIDs() {
			if id == primary.ID {
				continue
			}
			victim, ok := k.Store.Get(id)
			if !ok || !victim.Alive {
				continue
			}
			if !k.inRadiusDamage(victim, h, radius) {
				continue
			}
			k.damageOne(attacker, victim, h.weapon, h.weapon.PrimaryDamage)
		}
	}

	secRadius := h.weapon.SecondaryDamageRadius
	if secRadius > 0 && h.weapon.SecondaryDamage > 0 {
		for _, id := range k.Store.AllIDs() {
			victim, ok := k.Store.Get(id)
			if !ok || !victim.Alive {
				continue
			}
			d := math.Hypot(victim.X-h.impact.X, victim.Z-h.impact.Z)
			if d > secRadius || d <= radius {
				continue
			}
			if !k.matchesRadiusDamageAffects(attacker, victim, h.weapon) {
				continue
			}
			k.damageOne(attacker, victim, h.weapon, h.weapon.SecondaryDamage)
		}
	}

	if attackerOK {
		k.continueAttackRetarget(attacker, primary, h.weapon)
	}
}

func (k *Kernel) inRadiusDamage(victim *entity.Entity, h pendingHit, radius float64) bool {
	d := math.Hypot(victim.X-h.impact.X, victim.Z-h.impact.Z)
	if d > radius {
		return false
	}
	if h.weapon.RadiusDamageAngle > 0 {
		dx := victim.X - h.impact.X
		dz := victim.Z - h.impact.Z
		angle := math.Atan2(dz, dx) * 180 / math.Pi
		attackDir := math.Atan2(h.impact.Z-h.origin.Z, h.impact.X-h.origin.X) * 180 / math.Pi
		delta := math.Mod(angle-attackDir+540, 360) - 180
		if math.Abs(delta) > h.weapon.RadiusDamageAngle/2 {
			return false
		}
	}
	return k.matchesRadiusDamageAffectsByOwner(victim, h)
}

// matchesRadiusDamageAffectsByOwner resolves the RadiusDamageAffects mask
// (SELF|ALLIES|ENEMIES|SUICIDE|NEUTRALS) relative to the attacker that fired
// the hit.
func (k *Kernel) matchesRadiusDamageAffectsByOwner(victim *entity.Entity, h pendingHit) bool {
	attacker, ok := k.Store.Get(h.attacker)
	if !ok {
		return true
	}
	return k.matchesRadiusDamageAffects(attacker, victim, h.weapon)
}

func (k *Kernel) matchesRadiusDamageAffects(attacker, victim *entity.Entity, weapon model.WeaponDef) bool {
	if len(weapon.RadiusDamageAffects) == 0 {
		return true
	}
	if victim.ID == attacker.ID {
		return containsFold(weapon.RadiusDamageAffects, "SELF") || containsFold(weapon.RadiusDamageAffects, "SUICIDE")
	}
	rel := model.RelationNeutral
	if k.Relation != nil {
		rel = k.Relation(attacker.Side, victim.Side)
	} else if attacker.Side == victim.Side {
		rel = model.RelationAlly
	} else {
		rel = model.RelationEnemy
	}
	switch rel {
	case model.RelationAlly:
		return containsFold(weapon.RadiusDamageAffects, "ALLIES")
	case model.RelationEnemy:
		return containsFold(weapon.RadiusDamageAffects, "ENEMIES")
	default:
		return containsFold(weapon.RadiusDamageAffects, "NEUTRALS")
	}
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func (k *Kernel) damageOne(attacker, victim *entity.Entity, weapon model.WeaponDef, baseDamage float64) {
	if !victim.Alive || baseDamage <= 0 {
		return
	}
	coeff := 1.0
	if victim.ArmorSetCurrent != "" {
		if armor, ok := k.Reg.ArmorDef(victim.ArmorSetCurrent); ok {
			coeff = armor.CoefficientFor(weapon.DamageType)
		}
	}
	dmg := baseDamage * coeff * victim.DamageScalar
	if victim.DamageScalar == 0 {
		dmg = baseDamage * coeff
	}
	victim.Health -= dmg
	if victim.Health < 0 {
		victim.Health = 0
	}
	if victim.Health <= 0 {
		k.kill(attacker, victim)
	}
}

func (k *Kernel) kill(attacker, victim *entity.Entity) {
	if !victim.Alive {
		return
	}
	victim.Alive = false
	victim.Lifecycle.DeathFrame = victim.Fire.LastShotFrame
	k.Bus.EmitDeath(victim.ID, model.Vec3{X: victim.X, Y: victim.Y, Z: victim.Z})

	if attacker == nil || !attacker.Alive {
		return
	}
	if attacker.AI.AttackTargetEntityID == victim.ID {
		attacker.AI.AttackTargetEntityID = 0
	}
	k.awardExperience(attacker, victim)
}

// awardExperience implements veterancy XP gain on kill (ExperienceValue on
// the victim's def, ExperienceRequired thresholds on the attacker's def).
func (k *Kernel) awardExperience(attacker, victim *entity.Entity) {
	victimDef, ok := k.Reg.ObjectDef(victim.TemplateName)
	if !ok || len(victimDef.ExperienceValue) == 0 {
		return
	}
	attackerDef, ok := k.Reg.ObjectDef(attacker.TemplateName)
	if !ok || len(attackerDef.ExperienceRequired) == 0 {
		return
	}
	gain := victimDef.ExperienceValue[0]
	if int(attacker.Veterancy.Level) < len(victimDef.ExperienceValue) {
		gain = victimDef.ExperienceValue[attacker.Veterancy.Level]
	}
	attacker.Veterancy.CurrentExperience += gain

	for lvl := len(attackerDef.ExperienceRequired) - 1; lvl >= 0; lvl-- {
		if attacker.Veterancy.CurrentExperience >= attackerDef.ExperienceRequired[lvl] {
			newLevel := model.VeterancyLevel(lvl + 1)
			if newLevel > attacker.Veterancy.Level {
				attacker.Veterancy.Level = newLevel
				k.Bus.EmitStatusChange(attacker.ID)
			}
			break
		}
	}
}

// continueAttackRetarget implements ContinueAttackRange retargeting (spec.md
// Section 4.C6 "Continue attack", Section 8 Scenario 5): after a kill, an
// attacker with remaining ContinueAttackRange may retarget to another enemy
// of the same OriginalOwnerPlayer within range, gaining IgnoringStealth for
// the purpose.
func (k *Kernel) continueAttackRetarget(attacker, deadTarget *entity.Entity, weapon model.WeaponDef) {
	if deadTarget.Alive || !attacker.Alive {
		return
	}
	if weapon.ContinueAttackRange <= 0 {
		return
	}
	if attacker.AI.AttackTargetEntityID != 0 {
		return
	}

	var bestID model.EntityID
	bestDist := math.MaxFloat64
	for _, id := range k.Store.AllIDs() {
		cand, ok := k.Store.Get(id)
		if !ok || !cand.Alive || id == attacker.ID {
			continue
		}
		if cand.OriginalOwnerPlayer != deadTarget.OriginalOwnerPlayer {
			continue
		}
		d := distance3DFromBoundingSphere(attacker, cand)
		if d > weapon.ContinueAttackRange {
			continue
		}
		wasIgnoring := attacker.Status.Has(model.IgnoringStealth)
		attacker.Status = attacker.Status.Set(model.IgnoringStealth)
		legal := canTarget(attacker, cand, attacker.AI.CommandSource)
		if !wasIgnoring {
			attacker.Status = attacker.Status.Clear(model.IgnoringStealth)
		}
		if !legal {
			continue
		}
		if d < bestDist {
			bestDist = d
			bestID = id
		}
	}
	if bestID != 0 {
		attacker.Status = attacker.Status.Set(model.IgnoringStealth)
		attacker.AI.AttackTargetEntityID = bestID
	}
}
