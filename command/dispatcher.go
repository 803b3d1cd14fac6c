// Package command implements the CommandQueue & Dispatcher (spec.md Section
// 4.C4): every submitted model.Command is deferred into a per-frame queue
// and routed to the kernel owning its effect only during the frame loop's
// designated drain phase, never mid-frame.
package command

import (
	"strings"

	"github.com/dominionforge/dominion-core/combat"
	"github.com/dominionforge/dominion-core/container"
	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/movement"
	"github.com/dominionforge/dominion-core/production"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/special"
	"github.com/dominionforge/dominion-core/upgrade"
)

// Dispatcher owns the command queue and every kernel that can be the
// target of a routed command.
type Dispatcher struct {
	Reg   *registry.Registry
	Store *entity.Store
	Sides map[string]*model.SideState

	Combat     *combat.Kernel
	Movement   *movement.Kernel
	Production *production.Kernel
	Upgrade    *upgrade.Kernel
	Container  *container.Kernel
	Special    *special.Kernel

	queue []model.Command
}

func NewDispatcher(reg *registry.Registry, store *entity.Store, sides map[string]*model.SideState,
	cb *combat.Kernel, mv *movement.Kernel, pr *production.Kernel, up *upgrade.Kernel, ct *container.Kernel, sp *special.Kernel) *Dispatcher {
	return &Dispatcher{
		Reg: reg, Store: store, Sides: sides,
		Combat: cb, Movement: mv, Production: pr, Upgrade: up, Container: ct, Special: sp,
	}
}

// Submit defers a command onto the queue; it takes effect on the next Drain.
func (d *Dispatcher) Submit(cmd model.Command) {
	d.queue = append(d.queue, cmd)
}

// Drain applies every queued command in submission order, then clears the
// queue. Called once per frame from the designated command phase (spec.md
// Section 4.C13).
func (d *Dispatcher) Drain(frame int64, frameMs float64) {
	pending := d.queue
	d.queue = nil
	for _, cmd := range pending {
		d.apply(frame, frameMs, cmd)
	}
}

// QueueLen reports the number of commands currently pending drain.
func (d *Dispatcher) QueueLen() int { return len(d.queue) }

func (d *Dispatcher) apply(frame int64, frameMs float64, cmd model.Command) bool {
	switch c := cmd.(type) {
	case model.MoveCommand:
		return d.Movement.SetMoveGoal(c.EntityID, c.Dest)
	case model.AttackEntityCommand:
		return d.Combat.IssueAttack(c.Attacker, c.Target, c.Source)
	case model.StopCommand:
		d.Combat.Stop(c.EntityID)
		d.Movement.Stop(c.EntityID)
		return true
	case model.ApplyUpgradeCommand:
		return d.applyUpgrade(c)
	case model.ApplyPlayerUpgradeCommand:
		return d.Upgrade.GrantPlayerUpgrade(c.Side, c.UpgradeName)
	case model.QueueUnitProductionCommand:
		return d.Production.EnqueueUnit(c.ProducerID, c.TemplateName, c.Quantity) == production.ErrNone
	case model.CancelUnitProductionCommand:
		return d.Production.Cancel(c.ProducerID, c.ProductionID)
	case model.QueueUpgradeProductionCommand:
		return d.queueUpgradeProduction(c)
	case model.CancelUpgradeProductionCommand:
		return d.cancelUpgradeProduction(c)
	case model.SetSideCreditsCommand:
		return d.withSide(c.Side, func(ss *model.SideState) { ss.Credits = c.Amount })
	case model.AddSideCreditsCommand:
		return d.withSide(c.Side, func(ss *model.SideState) { ss.Credits += c.Amount })
	case model.GrantSideScienceCommand:
		return d.withSide(c.Side, func(ss *model.SideState) {
			ss.SciencesAcquired[registry.Normalize(c.Science)] = true
		})
	case model.PurchaseScienceCommand:
		return d.purchaseScience(c)
	case model.SetSidePlayerTypeCommand:
		return d.withSide(c.Side, func(ss *model.SideState) { ss.PlayerType = c.PlayerType })
	case model.SetTeamRelationshipCommand:
		return d.withSide(c.Side, func(ss *model.SideState) { ss.Relationship[c.OtherSide] = c.Relationship })
	case model.CaptureEntityCommand:
		return d.captureEntity(c)
	case model.ConstructBuildingCommand:
		_, ok := d.Production.ConstructBuilding(c.DozerID, c.TemplateName, c.Position)
		return ok
	case model.CancelDozerConstructionCommand:
		return d.cancelDozerConstruction(c)
	case model.RepairBuildingCommand:
		return d.repairBuilding(c, frameMs)
	case model.SellCommand:
		d.Production.CompleteSell(c.EntityID)
		return true
	case model.EnterTransportCommand:
		return d.Container.Enter(c.TransportID, c.PassengerID)
	case model.EvacuateCommand:
		return d.Container.Evacuate(c.ContainerID)
	case model.ExitContainerCommand:
		return d.exitContainer(c)
	case model.GarrisonBuildingCommand:
		return d.Container.Enter(c.BuildingID, c.PassengerID)
	case model.CombatDropCommand:
		return d.combatDrop(c)
	case model.EnterObjectCommand:
		return d.hijack(c)
	case model.ToggleOverchargeCommand:
		return d.toggleOvercharge(c)
	case model.PlaceBeaconCommand:
		return d.withSide(c.Side, func(ss *model.SideState) { ss.BeaconCount++ })
	case model.BeaconDeleteCommand:
		return d.beaconDelete(c)
	case model.HackInternetCommand:
		return d.validEntity(c.EntityID)
	case model.ExecuteRailedTransportCommand:
		return d.validEntity(c.EntityID)
	case model.IssueSpecialPowerCommand:
		return d.issueSpecialPower(frame, c)
	case model.ToggleDemoTrapModeCommand:
		return d.validEntity(c.EntityID)
	case model.DetonateDemoTrapCommand:
		return d.validEntity(c.EntityID)
	case model.SetPlayerSideCommand:
		return d.setPlayerSide(c)
	}
	return false
}

func (d *Dispatcher) withSide(side string, fn func(*model.SideState)) bool {
	ss, ok := d.Sides[side]
	if !ok {
		return false
	}
	fn(ss)
	return true
}

// commandSetExposes gates an upgrade/specialPower command behind the
// entity's effective command set (spec.md Section 4.C4 "Command-set
// gating"); entities without a configured command set are ungated.
func (d *Dispatcher) commandSetExposes(e *entity.Entity, kind, name string) bool {
	def, ok := d.Reg.ObjectDef(e.TemplateName)
	if !ok || def.CommandSet == "" {
		return true
	}
	cs := def.CommandSet
	if e.CommandSetOverride != "" {
		cs = e.CommandSetOverride
	}
	return d.Reg.CommandSetExposes(cs, kind, name)
}

func (d *Dispatcher) applyUpgrade(c model.ApplyUpgradeCommand) bool {
	e, ok := d.Store.Get(c.EntityID)
	if !ok || !e.Alive {
		return false
	}
	if !d.commandSetExposes(e, "upgrade", c.UpgradeName) {
		return false
	}
	return d.Upgrade.GrantObjectUpgrade(c.EntityID, c.UpgradeName)
}

// queueUpgradeProduction validates the producer, cost, and command-set
// gating then grants the upgrade immediately; upgrade prerequisites are not
// checked, and unlike unit production there is no FIFO build-time window
// modeled for upgrades.
func (d *Dispatcher) queueUpgradeProduction(c model.QueueUpgradeProductionCommand) bool {
	producer, ok := d.Store.Get(c.ProducerID)
	if !ok || !producer.Alive || producer.Status.Disabled() {
		return false
	}
	ss, ok := d.Sides[producer.Side]
	if !ok {
		return false
	}
	def, ok := d.Reg.UpgradeDef(c.UpgradeName)
	if !ok || int64(def.BuildCost) > ss.Credits {
		return false
	}
	if !d.commandSetExposes(producer, "upgrade", c.UpgradeName) {
		return false
	}

	var granted bool
	if strings.EqualFold(def.Type, "PLAYER") {
		granted = d.Upgrade.GrantPlayerUpgrade(producer.Side, c.UpgradeName)
	} else {
		granted = d.Upgrade.GrantObjectUpgrade(c.ProducerID, c.UpgradeName)
	}
	if granted {
		ss.Credits -= int64(def.BuildCost)
	}
	return granted
}

// cancelUpgradeProduction undoes an already-granted upgrade and refunds its
// cost. Module side-effects the upgrade already applied (armor swaps,
// weapon bonuses) are not retroactively reverted.
func (d *Dispatcher) cancelUpgradeProduction(c model.CancelUpgradeProductionCommand) bool {
	producer, ok := d.Store.Get(c.ProducerID)
	if !ok {
		return false
	}
	ss, ok := d.Sides[producer.Side]
	if !ok {
		return false
	}
	def, ok := d.Reg.UpgradeDef(c.UpgradeName)
	if !ok {
		return false
	}
	norm := registry.Normalize(c.UpgradeName)
	refunded := false
	if producer.UpgradesOwned[norm] {
		delete(producer.UpgradesOwned, norm)
		refunded = true
	}
	if ss.CompletedPlayerUpgrades[norm] {
		delete(ss.CompletedPlayerUpgrades, norm)
		refunded = true
	}
	if refunded {
		ss.Credits += int64(def.BuildCost)
	}
	return refunded
}

func (d *Dispatcher) purchaseScience(c model.PurchaseScienceCommand) bool {
	ss, ok := d.Sides[c.Side]
	if !ok {
		return false
	}
	for _, prereq := range d.Reg.SciencePrerequisites(c.Science) {
		if !ss.SciencesAcquired[registry.Normalize(prereq)] {
			return false
		}
	}
	cost := d.Reg.ScienceCost(c.Science)
	if ss.PurchasePoints < cost {
		return false
	}
	ss.PurchasePoints -= cost
	ss.SciencesAcquired[registry.Normalize(c.Science)] = true
	return true
}

// captureEntity implements spec.md Section 4.C7 "Capture": TransferSide
// already reverts the old side's aggregate contribution and re-applies on
// the new side, and leaves DISABLED_* entities unchanged until re-enabled.
func (d *Dispatcher) captureEntity(c model.CaptureEntityCommand) bool {
	capturer, ok := d.Store.Get(c.CapturerID)
	if !ok || !capturer.Alive {
		return false
	}
	target, ok := d.Store.Get(c.TargetID)
	if !ok || !target.Alive {
		return false
	}
	d.Upgrade.TransferSide(target, capturer.Side)
	return true
}

func (d *Dispatcher) setPlayerSide(c model.SetPlayerSideCommand) bool {
	e, ok := d.Store.Get(c.EntityID)
	if !ok {
		return false
	}
	d.Upgrade.TransferSide(e, c.NewSide)
	return true
}

// cancelDozerConstruction removes a building mid-construction, refunding
// the fraction of BuildCost not yet progressed.
func (d *Dispatcher) cancelDozerConstruction(c model.CancelDozerConstructionCommand) bool {
	e, ok := d.Store.Get(c.BuildingID)
	if !ok || !e.Status.Has(model.UnderConstruction) {
		return false
	}
	if def, ok := d.Reg.ObjectDef(e.TemplateName); ok {
		if ss, ok := d.Sides[e.Side]; ok {
			refund := float64(def.BuildCost) * (1 - e.ConstructionPercent/100)
			ss.Credits += int64(refund)
		}
	}
	d.Store.Remove(c.BuildingID)
	return true
}

// repairBuilding heals a completed building linearly over the same
// BuildTimeSeconds window its original construction used (spec.md Section
// 4.C8 "Repair command dispatches a dozer to resume"), applied once per
// frame the command is resubmitted.
func (d *Dispatcher) repairBuilding(c model.RepairBuildingCommand, frameMs float64) bool {
	dozer, ok := d.Store.Get(c.DozerID)
	if !ok || !dozer.Alive {
		return false
	}
	building, ok := d.Store.Get(c.BuildingID)
	if !ok || !building.Alive || building.Health >= building.MaxHealth {
		return false
	}
	def, ok := d.Reg.ObjectDef(building.TemplateName)
	if !ok || def.BuildTimeSeconds <= 0 {
		return false
	}
	totalMs := def.BuildTimeSeconds * 1000
	building.Health += building.MaxHealth * (frameMs / totalMs)
	if building.Health > building.MaxHealth {
		building.Health = building.MaxHealth
	}
	return true
}

func (d *Dispatcher) exitContainer(c model.ExitContainerCommand) bool {
	p, ok := d.Store.Get(c.PassengerID)
	if !ok || p.Container.ContainerOf == 0 {
		return false
	}
	return d.Container.Exit(p.Container.ContainerOf, c.PassengerID)
}

// combatDrop evacuates every passenger at the transport's current position
// then sends each to Dest, approximating the parachute drop (spec.md
// Section 4.C9).
func (d *Dispatcher) combatDrop(c model.CombatDropCommand) bool {
	transport, ok := d.Store.Get(c.TransportID)
	if !ok {
		return false
	}
	passengers := append([]model.EntityID(nil), transport.Container.PassengerIDs...)
	if len(passengers) == 0 {
		return false
	}
	if !d.Container.Evacuate(c.TransportID) {
		return false
	}
	for _, pid := range passengers {
		d.Movement.SetMoveGoal(pid, c.Dest)
	}
	return true
}

// hijack consumes the hijacker and transfers the target vehicle's side
// (spec.md Section 4.C9 "Hijack conversion consumes the hijacker and
// transfers the target vehicle's side").
func (d *Dispatcher) hijack(c model.EnterObjectCommand) bool {
	hijacker, ok := d.Store.Get(c.HijackerID)
	if !ok || !hijacker.Alive {
		return false
	}
	target, ok := d.Store.Get(c.TargetID)
	if !ok || !target.Alive {
		return false
	}
	d.Upgrade.TransferSide(target, hijacker.Side)
	target.Status = target.Status.Set(model.Hijacked)
	d.Store.Remove(c.HijackerID)
	return true
}

// toggleOvercharge mirrors the PowerPlantUpgrade EnergyBonus bookkeeping
// (upgrade.Kernel POWERPLANTUPGRADE) to model overcharge's temporary power
// boost.
func (d *Dispatcher) toggleOvercharge(c model.ToggleOverchargeCommand) bool {
	e, ok := d.Store.Get(c.EntityID)
	if !ok || !e.Alive {
		return false
	}
	def, ok := d.Reg.ObjectDef(e.TemplateName)
	if !ok {
		return false
	}
	ss, ok := d.Sides[e.Side]
	if !ok {
		return false
	}
	e.Overcharged = !e.Overcharged
	if e.Overcharged {
		ss.PowerBonus += def.EnergyBonus
	} else {
		ss.PowerBonus -= def.EnergyBonus
	}
	return true
}

func (d *Dispatcher) beaconDelete(c model.BeaconDeleteCommand) bool {
	ss, ok := d.Sides[c.Side]
	if !ok || ss.BeaconCount == 0 {
		return false
	}
	ss.BeaconCount--
	return true
}

// issueSpecialPower gates the command-button behind the source entity's
// command set before handing off to special.DispatchSpecialPower, which
// performs its own source-resolution/cooldown logic.
func (d *Dispatcher) issueSpecialPower(frame int64, c model.IssueSpecialPowerCommand) bool {
	sourceID := c.SourceEntityID
	if sourceID == 0 && len(c.IssuingEntityIDs) > 0 {
		sourceID = c.IssuingEntityIDs[0]
	}
	if e, ok := d.Store.Get(sourceID); ok && !d.commandSetExposes(e, "specialPower", c.SpecialPowerName) {
		return false
	}
	return d.Special.DispatchSpecialPower(frame, c.SpecialPowerName, c.SourceEntityID, c.IssuingEntityIDs, c.TargetEntityID, c.TargetPos)
}

// validEntity backs commands whose special-subsystem behavior is out of
// scope (special.go's package doc: HackInternetAIUpdate, RailedTransportAIUpdate,
// DemoTrapUpdate): it confirms the entity exists without modeling any
// further effect.
func (d *Dispatcher) validEntity(id model.EntityID) bool {
	e, ok := d.Store.Get(id)
	return ok && e.Alive
}
