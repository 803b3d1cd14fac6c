// Package skirmish implements the SkirmishAI (spec.md Section 4.C11): a
// per-side periodic evaluator running on a staggered cadence, adapted from
// the doctrine/rule-engine idiom (compiled expr conditions evaluated in
// priority order) down to the five behaviors spec.md names.
package skirmish

import (
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dominionforge/dominion-core/combat"
	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/movement"
	"github.com/dominionforge/dominion-core/production"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/upgrade"
)

const (
	combatCadenceFrames   = 90
	economyCadenceFrames  = 60
	upgradeCadenceFrames  = 120
)

// Config is a side's SkirmishAI tuning (spec.md "enableSkirmishAI").
type Config struct {
	Enabled        bool
	ForceThreshold int
	DozerTemplate  string
	PowerPlantKind string
	BarracksKind   string
	DozerKind      string
}

type thresholdEnv struct {
	IdleCombatUnits int
	Threshold       int
}

// Kernel ties together the production/upgrade/movement/combat kernels that
// SkirmishAI drives.
type Kernel struct {
	Reg        *registry.Registry
	Store      *entity.Store
	Sides      map[string]*model.SideState
	Production *production.Kernel
	Upgrade    *upgrade.Kernel
	Movement   *movement.Kernel
	Combat     *combat.Kernel

	Configs map[string]Config

	thresholdProgram *vm.Program
}

func NewKernel(reg *registry.Registry, store *entity.Store, sides map[string]*model.SideState, prod *production.Kernel, upg *upgrade.Kernel, mv *movement.Kernel, cb *combat.Kernel) *Kernel {
	prog, err := expr.Compile("IdleCombatUnits >= Threshold", expr.Env(thresholdEnv{}), expr.AsBool())
	if err != nil {
		panic(err)
	}
	return &Kernel{
		Reg: reg, Store: store, Sides: sides,
		Production: prod, Upgrade: upg, Movement: mv, Combat: cb,
		Configs:          make(map[string]Config),
		thresholdProgram: prog,
	}
}

// Tick drives the staggered cadence for every enabled side.
func (k *Kernel) Tick(frame int64) {
	for side, cfg := range k.Configs {
		if !cfg.Enabled {
			continue
		}
		if frame%combatCadenceFrames == 0 {
			k.combatTick(side, cfg)
		}
		if frame%economyCadenceFrames == 0 {
			k.economyTick(side, cfg)
			k.BiasRallyPoints(side)
		}
		if frame%upgradeCadenceFrames == 0 {
			k.upgradeTick(side)
		}
	}
}

// combatTick dispatches idle combat units at the nearest enemy structure
// once their count reaches the side's force threshold. Fog of war is not
// consulted, so the chosen structure need not be visible to the side.
func (k *Kernel) combatTick(side string, cfg Config) {
	idle := k.idleCombatUnits(side)
	env := thresholdEnv{IdleCombatUnits: len(idle), Threshold: cfg.ForceThreshold}
	result, err := vm.Run(k.thresholdProgram, env)
	if err != nil {
		return
	}
	ready, _ := result.(bool)
	if !ready || len(idle) == 0 {
		return
	}

	target := k.nearestEnemyStructure(side, centroid(idle))
	if target == nil {
		return
	}
	for _, u := range idle {
		k.Movement.SetMoveGoal(u.ID, model.Vec3{X: target.X, Y: target.Y, Z: target.Z})
		k.Combat.IssueAttack(u.ID, target.ID, model.SourceAI)
	}
}

// economyTick queues a replacement Dozer when none is alive, and dispatches
// idle Dozers to construct a missing power-plant or barracks.
func (k *Kernel) economyTick(side string, cfg Config) {
	ss, ok := k.Sides[side]
	if !ok {
		return
	}

	if cfg.DozerKind != "" && cfg.DozerTemplate != "" && !k.hasAliveOfKind(side, cfg.DozerKind) {
		if producerID, ok := k.findProducerFor(side, cfg.DozerTemplate); ok {
			k.Production.EnqueueUnit(producerID, cfg.DozerTemplate, 0)
		}
	}

	needsPower := cfg.PowerPlantKind != "" && !k.hasAliveOfKind(side, cfg.PowerPlantKind)
	needsBarracks := cfg.BarracksKind != "" && !k.hasAliveOfKind(side, cfg.BarracksKind)
	if !needsPower && !needsBarracks {
		return
	}
	dozer := k.firstIdle(side, cfg.DozerKind)
	if dozer == nil {
		return
	}
	templateName := cfg.PowerPlantKind
	if !needsPower {
		templateName = cfg.BarracksKind
	}
	def, ok := k.Reg.ObjectDef(templateName)
	if !ok || int64(def.BuildCost) > ss.Credits {
		return
	}
	pos := model.Vec3{X: dozer.X + 20, Y: dozer.Y, Z: dozer.Z + 20}
	if buildingID, ok := k.Production.ConstructBuilding(dozer.ID, templateName, pos); ok {
		ss.Credits -= int64(def.BuildCost)
		_ = buildingID
	}
}

// upgradeTick queues every affordable PLAYER/OBJECT upgrade exposed by any
// idle producer on the side.
func (k *Kernel) upgradeTick(side string) {
	ss, ok := k.Sides[side]
	if !ok {
		return
	}
	for _, id := range k.Store.AllIDs() {
		producer, _ := k.Store.Get(id)
		if producer.Side != side || !producer.Alive || producer.Status.Disabled() || producer.Status.Has(model.UnderConstruction) {
			continue
		}
		producerDef, ok := k.Reg.ObjectDef(producer.TemplateName)
		if !ok || producerDef.CommandSet == "" {
			continue
		}
		cs := producerDef.CommandSet
		if producer.CommandSetOverride != "" {
			cs = producer.CommandSetOverride
		}
		commandSet, ok := k.Reg.CommandSet(cs)
		if !ok {
			continue
		}
		for _, buttonName := range commandSet.Slots {
			btn, ok := k.Reg.CommandButton(buttonName)
			if !ok {
				continue
			}
			switch btn.Command {
			case "PLAYER_UPGRADE":
				k.tryUpgrade(ss, btn.Upgrade, func(name string) bool {
					return k.Upgrade.GrantPlayerUpgrade(side, name)
				}, ss.CompletedPlayerUpgrades)
			case "OBJECT_UPGRADE":
				k.tryUpgrade(ss, btn.Upgrade, func(name string) bool {
					return k.Upgrade.GrantObjectUpgrade(id, name)
				}, producer.UpgradesOwned)
			}
		}
	}
}

func (k *Kernel) tryUpgrade(ss *model.SideState, upgradeName string, grant func(string) bool, owned map[string]bool) {
	if upgradeName == "" {
		return
	}
	norm := registry.Normalize(upgradeName)
	if owned[norm] {
		return
	}
	def, ok := k.Reg.UpgradeDef(upgradeName)
	if !ok || int64(def.BuildCost) > ss.Credits {
		return
	}
	if grant(upgradeName) {
		ss.Credits -= int64(def.BuildCost)
	}
}

// BiasRallyPoints points every producer's rally point at the nearest enemy
// structure (spec.md "Bias rally points ... toward the nearest enemy
// structure"); called from the economy cadence.
func (k *Kernel) BiasRallyPoints(side string) {
	for _, id := range k.Store.AllIDs() {
		producer, _ := k.Store.Get(id)
		if producer.Side != side || producer.Production == nil {
			continue
		}
		target := k.nearestEnemyStructure(side, model.Vec3{X: producer.X, Y: producer.Y, Z: producer.Z})
		if target == nil {
			continue
		}
		rally := model.Vec3{X: target.X, Y: target.Y, Z: target.Z}
		producer.Production.RallyPoint = &rally
	}
}

func (k *Kernel) idleCombatUnits(side string) []*entity.Entity {
	var out []*entity.Entity
	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if e.Side != side || !e.Alive || e.Status.Disabled() {
			continue
		}
		if e.HasKindOf("STRUCTURE") || !e.HasKindOf("CAN_ATTACK") {
			continue
		}
		if e.AI.AttackTargetEntityID != 0 || len(e.Locomotor.Path) > 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (k *Kernel) hasAliveOfKind(side, kindOf string) bool {
	kindOf = strings.ToUpper(kindOf)
	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if e.Side == side && e.Alive && e.HasKindOf(kindOf) {
			return true
		}
	}
	return false
}

func (k *Kernel) firstIdle(side, kindOf string) *entity.Entity {
	kindOf = strings.ToUpper(kindOf)
	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if e.Side == side && e.Alive && e.HasKindOf(kindOf) && len(e.Locomotor.Path) == 0 {
			return e
		}
	}
	return nil
}

func (k *Kernel) findProducerFor(side, templateName string) (model.EntityID, bool) {
	for _, id := range k.Store.AllIDs() {
		producer, _ := k.Store.Get(id)
		if producer.Side != side || !producer.Alive {
			continue
		}
		def, ok := k.Reg.ObjectDef(producer.TemplateName)
		if !ok || def.CommandSet == "" {
			continue
		}
		if k.Reg.CommandSetExposes(def.CommandSet, "object", templateName) {
			return id, true
		}
	}
	return 0, false
}

func (k *Kernel) nearestEnemyStructure(side string, from model.Vec3) *entity.Entity {
	var nearest *entity.Entity
	best := math.MaxFloat64
	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if e.Side == side || e.Side == "" || !e.Alive || !e.HasKindOf("STRUCTURE") {
			continue
		}
		dx := e.X - from.X
		dz := e.Z - from.Z
		d := dx*dx + dz*dz
		if d < best {
			best = d
			nearest = e
		}
	}
	return nearest
}

func centroid(units []*entity.Entity) model.Vec3 {
	var sx, sz float64
	for _, u := range units {
		sx += u.X
		sz += u.Z
	}
	n := float64(len(units))
	return model.Vec3{X: sx / n, Z: sz / n}
}
