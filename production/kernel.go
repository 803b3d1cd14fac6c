// Package production implements the ProductionKernel (spec.md Section
// 4.C8): FIFO production queues, parking reservation for aircraft,
// cost/prerequisite/command-set validation, and dozer construction.
package production

import (
	"strings"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
)

// Kernel is the ProductionKernel.
type Kernel struct {
	Reg   *registry.Registry
	Store *entity.Store
	Bus   *event.Bus
	Sides map[string]*model.SideState
}

func NewKernel(reg *registry.Registry, store *entity.Store, bus *event.Bus, sides map[string]*model.SideState) *Kernel {
	return &Kernel{Reg: reg, Store: store, Bus: bus, Sides: sides}
}

// ValidationError names why a queue request was rejected (spec.md Section
// 4.C8 "Queue validation"); callers treat any non-empty reason as a silent
// command rejection per spec.md Section 9.
type ValidationError string

const (
	ErrNone               ValidationError = ""
	ErrInsufficientFunds  ValidationError = "INSUFFICIENT_FUNDS"
	ErrCommandSetDenied   ValidationError = "COMMAND_SET_DENIED"
	ErrPrerequisites      ValidationError = "PREREQUISITES_NOT_MET"
	ErrMaxSimultaneous    ValidationError = "MAX_SIMULTANEOUS"
	ErrOnlyByAI           ValidationError = "ONLY_BY_AI"
	ErrProducerDisabled   ValidationError = "PRODUCER_DISABLED"
	ErrParkingFull        ValidationError = "PARKING_FULL"
	ErrQueueFull          ValidationError = "QUEUE_FULL"
	ErrUnknownTemplate    ValidationError = "UNKNOWN_TEMPLATE"
)

// EnqueueUnit validates and enqueues a unit production request (spec.md
// Section 4.C8 "Queue validation").
func (k *Kernel) EnqueueUnit(producerID model.EntityID, templateName string, maxQueueEntries int) ValidationError {
	producer, ok := k.Store.Get(producerID)
	if !ok || !producer.Alive {
		return ErrUnknownTemplate
	}
	if producer.Status.Has(model.UnderConstruction) || producer.Status.Has(model.DisabledHacked) ||
		producer.Status.Has(model.DisabledEMP) || producer.Status.Has(model.DisabledSubdued) {
		return ErrProducerDisabled
	}
	def, ok := k.Reg.ObjectDef(templateName)
	if !ok {
		return ErrUnknownTemplate
	}
	ss, ok := k.Sides[producer.Side]
	if !ok {
		return ErrUnknownTemplate
	}

	cost := k.effectiveCost(def, ss)
	if int64(cost) > ss.Credits {
		return ErrInsufficientFunds
	}
	if producerDef, ok := k.Reg.ObjectDef(producer.TemplateName); ok && producerDef.CommandSet != "" {
		cs := producerDef.CommandSet
		if producer.CommandSetOverride != "" {
			cs = producer.CommandSetOverride
		}
		if !k.Reg.CommandSetExposes(cs, "object", templateName) {
			return ErrCommandSetDenied
		}
	}
	if def.Buildable == "Only_By_AI" && ss.PlayerType != "COMPUTER" {
		return ErrOnlyByAI
	}
	if def.Buildable != "Ignore_Prerequisites" && !k.prerequisitesMet(def, ss) {
		return ErrPrerequisites
	}
	if def.MaxSimultaneousOfType > 0 && k.countOfClass(producer.Side, def) >= def.MaxSimultaneousOfType {
		return ErrMaxSimultaneous
	}

	if producer.Production == nil {
		producer.Production = &entity.ProductionState{}
	}
	ps := producer.Production
	if maxQueueEntries > 0 && len(ps.Queue) >= maxQueueEntries {
		return ErrQueueFull
	}

	reservedParking := false
	if isAircraftNeedingParking(def) {
		if ps.ParkingRows*ps.ParkingCols > 0 && ps.ParkingUsed >= ps.ParkingRows*ps.ParkingCols {
			return ErrParkingFull
		}
		ps.ParkingUsed++
		reservedParking = true
	}

	quantityTotal := 1
	if def.QuantityModifier > 1 {
		quantityTotal = def.QuantityModifier
	}

	ss.Credits -= int64(cost)
	ps.NextProdID++
	ps.Queue = append(ps.Queue, &entity.ProductionEntry{
		ProductionID:    ps.NextProdID,
		Kind:            "UNIT",
		TemplateName:    templateName,
		BuildTimeMs:     int64(def.BuildTimeSeconds * 1000),
		Cost:            int64(cost),
		QuantityTotal:   quantityTotal,
		ExitDelayMs:     int64(def.ExitDelaySeconds * 1000),
		ReservedParking: reservedParking,
	})
	return ErrNone
}

func isAircraftNeedingParking(def model.ObjectDef) bool {
	hasAircraft, hasHelipad := false, false
	for _, k := range def.KindOf {
		u := strings.ToUpper(k)
		if u == "AIRCRAFT" {
			hasAircraft = true
		}
		if u == "PRODUCED_AT_HELIPAD" {
			hasHelipad = true
		}
	}
	return hasAircraft && !hasHelipad
}

func (k *Kernel) effectiveCost(def model.ObjectDef, ss *model.SideState) int {
	cost := float64(def.BuildCost)
	for _, kindOf := range def.KindOf {
		if mult, ok := ss.CostModifiers[strings.ToUpper(kindOf)]; ok {
			cost *= mult
		}
	}
	return int(cost)
}

func (k *Kernel) prerequisitesMet(def model.ObjectDef, ss *model.SideState) bool {
	for _, block := range def.Prereqs {
		if !k.blockSatisfied(block, ss) {
			return false
		}
	}
	return true
}

func (k *Kernel) blockSatisfied(block model.PrerequisiteBlock, ss *model.SideState) bool {
	for _, obj := range block.Objects {
		if len(k.Store.EntityIDsByTemplateAndSide(obj, ss.Side)) > 0 {
			return true
		}
	}
	for _, sci := range block.Sciences {
		if ss.SciencesAcquired[registry.Normalize(sci)] {
			return true
		}
	}
	return len(block.Objects) == 0 && len(block.Sciences) == 0
}

// countOfClass counts, for MaxSimultaneousOfType, every entity that shares
// def's build-variation class. When def declares a MaxSimultaneousLinkKey,
// the count instead pools across every template sharing that key, ignoring
// build-variation class entirely (spec.md Section 4.C8 "optional
// MaxSimultaneousLinkKey groups templates").
func (k *Kernel) countOfClass(side string, def model.ObjectDef) int {
	linkKey := strings.TrimSpace(def.MaxSimultaneousLinkKey)
	class := k.Reg.BuildVariationClass(def.Name)
	count := 0
	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if e.Side != side {
			continue
		}
		if linkKey != "" {
			otherDef, ok := k.Reg.ObjectDef(e.TemplateName)
			if ok && strings.TrimSpace(otherDef.MaxSimultaneousLinkKey) == linkKey {
				count++
			}
			continue
		}
		if k.Reg.BuildVariationClass(e.TemplateName) == class {
			count++
		}
	}
	return count
}

// Cancel removes a queued entry, refunds its cost, and releases any parking
// reservation (spec.md Section 4.C8 "Cancel").
func (k *Kernel) Cancel(producerID model.EntityID, productionID int) bool {
	producer, ok := k.Store.Get(producerID)
	if !ok || producer.Production == nil {
		return false
	}
	ps := producer.Production
	for i, entry := range ps.Queue {
		if entry.ProductionID != productionID {
			continue
		}
		if ss, ok := k.Sides[producer.Side]; ok {
			ss.Credits += entry.Cost
		}
		if entry.ReservedParking {
			ps.ParkingUsed--
		}
		ps.Queue = append(ps.Queue[:i], ps.Queue[i+1:]...)
		return true
	}
	return false
}

// Tick advances the front-of-queue entry for every producer by one frame,
// spawning completed units after ExitDelay (spec.md Section 4.C8).
func (k *Kernel) Tick(frame int64, frameMs float64) {
	for _, id := range k.Store.AllIDs() {
		producer, _ := k.Store.Get(id)
		if producer.Production == nil || len(producer.Production.Queue) == 0 {
			continue
		}
		k.tickProducer(frame, frameMs, producer)
	}
}

func (k *Kernel) tickProducer(frame int64, frameMs float64, producer *entity.Entity) {
	ps := producer.Production
	entry := ps.Queue[0]
	if !entry.Ready {
		entry.ElapsedMs += int64(frameMs)
		if entry.ElapsedMs >= entry.BuildTimeMs {
			entry.Ready = true
		}
		return
	}
	// Subsequent units of a QuantityModifier entry wait ExitDelayMs after
	// the previous one spawned, rather than re-running the full build time.
	if entry.ExitDelayRemainingMs > 0 {
		entry.ExitDelayRemainingMs -= int64(frameMs)
		return
	}

	spawnPos := model.Vec3{X: producer.X, Y: producer.Y, Z: producer.Z}
	newID := k.Store.Spawn(entry.TemplateName, producer.Side, spawnPos, entity.SpawnProperties{
		OriginalOwnerPlayer: producer.OriginalOwnerPlayer,
		SpawnFrame:          frame,
	})
	k.Bus.EmitBuildComplete(newID)
	if ps.RallyPoint != nil {
		if newUnit, ok := k.Store.Get(newID); ok {
			rally := *ps.RallyPoint
			newUnit.Locomotor.MoveGoal = &rally
			newUnit.Locomotor.Path = []model.Vec3{rally}
		}
	}

	entry.QuantityProduced++
	if entry.QuantityProduced < entry.QuantityTotal {
		entry.ExitDelayRemainingMs = entry.ExitDelayMs
		return
	}
	if entry.ReservedParking {
		ps.ParkingUsed--
	}
	ps.Queue = ps.Queue[1:]
}

// ProducerDied refunds every in-flight entry (spec.md Section 4.C8 "If
// producer dies with entries in flight, all are refunded and cleared").
func (k *Kernel) ProducerDied(producer *entity.Entity) {
	if producer.Production == nil {
		return
	}
	ss, ok := k.Sides[producer.Side]
	for _, entry := range producer.Production.Queue {
		if ok {
			ss.Credits += entry.Cost
		}
	}
	producer.Production.Queue = nil
}

// ConstructBuilding spawns a dozer-built structure in UNDER_CONSTRUCTION
// state (spec.md Section 4.C8 "ConstructBuilding").
func (k *Kernel) ConstructBuilding(dozerID model.EntityID, templateName string, pos model.Vec3) (model.EntityID, bool) {
	dozer, ok := k.Store.Get(dozerID)
	if !ok || !dozer.Alive {
		return 0, false
	}
	def, ok := k.Reg.ObjectDef(templateName)
	if !ok {
		return 0, false
	}
	id := k.Store.Spawn(templateName, dozer.Side, pos, entity.SpawnProperties{OriginalOwnerPlayer: dozer.OriginalOwnerPlayer})
	e, _ := k.Store.Get(id)
	e.Status = e.Status.Set(model.UnderConstruction)
	e.Health = 1
	e.ConstructionPercent = 0
	_ = def
	return id, true
}

// AdvanceConstruction is called while a dozer is in proximity, advancing a
// building's construction progress toward BuildTimeSeconds at 30 Hz.
func (k *Kernel) AdvanceConstruction(buildingID model.EntityID, frameMs float64) {
	e, ok := k.Store.Get(buildingID)
	if !ok || !e.Status.Has(model.UnderConstruction) {
		return
	}
	def, ok := k.Reg.ObjectDef(e.TemplateName)
	if !ok || def.BuildTimeSeconds <= 0 {
		return
	}
	totalMs := def.BuildTimeSeconds * 1000
	step := frameMs / totalMs
	e.ConstructionPercent += step * 100
	e.Health += def.MaxHealth * step
	if e.ConstructionPercent >= 100 {
		e.ConstructionPercent = -1
		e.Health = def.MaxHealth
		e.Status = e.Status.Clear(model.UnderConstruction)
		k.Bus.EmitBuildComplete(buildingID)
	}
}

// CompleteSell immediately credits the owning side with the building's
// RefundValue (or SellPercentage of BuildCost when RefundValue is zero) and
// removes the building; no sell timer is modeled.
func (k *Kernel) CompleteSell(buildingID model.EntityID) {
	e, ok := k.Store.Get(buildingID)
	if !ok {
		return
	}
	def, ok := k.Reg.ObjectDef(e.TemplateName)
	refund := 0.0
	if ok {
		refund = float64(def.RefundValue)
		if refund == 0 {
			refund = def.SellPercentage * float64(def.BuildCost)
		}
	}
	if ss, ok := k.Sides[e.Side]; ok {
		ss.Credits += int64(refund)
	}
	k.Store.Remove(buildingID)
}
