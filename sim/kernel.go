// Package sim implements the frame loop (spec.md Section 4.C13): the fixed
// ten-phase ordering that ties every other kernel together. No subsystem
// reads uncommitted state from a later phase of the same frame.
package sim

import (
	"math"

	"github.com/dominionforge/dominion-core/combat"
	"github.com/dominionforge/dominion-core/command"
	"github.com/dominionforge/dominion-core/container"
	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/fow"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/movement"
	"github.com/dominionforge/dominion-core/production"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/skirmish"
	"github.com/dominionforge/dominion-core/special"
	"github.com/dominionforge/dominion-core/upgrade"
)

// Defaults used where no DataBundle field carries the value: SlowDeath
// timings and TunnelContain's heal-to-full window.
const (
	defaultSinkDelayMs        = 3000
	defaultDestructionDelayMs = 5000
	tunnelFullHealMs          = 10000
)

// Kernel owns every subsystem kernel and advances them in lockstep, one
// fixed 1000/30 ms frame at a time.
type Kernel struct {
	Reg   *registry.Registry
	Store *entity.Store
	Bus   *event.Bus
	Sides map[string]*model.SideState

	Dispatcher *command.Dispatcher
	Combat     *combat.Kernel
	Movement   *movement.Kernel
	Production *production.Kernel
	Upgrade    *upgrade.Kernel
	Container  *container.Kernel
	Special    *special.Kernel
	Skirmish   *skirmish.Kernel

	// FogOfWar is one visibility Grid per side (spec.md Section 4.C2).
	FogOfWar map[string]*fow.Grid

	Frame      int64
	accumMs    float64
}

// Config bundles every constructed kernel plus the fog-of-war grids needed
// to build a sim.Kernel. Callers assemble the dependency graph once at
// startup (registry.Build -> entity.NewStore -> each kernel -> sim.Kernel).
type Config struct {
	Reg        *registry.Registry
	Store      *entity.Store
	Bus        *event.Bus
	Sides      map[string]*model.SideState
	Dispatcher *command.Dispatcher
	Combat     *combat.Kernel
	Movement   *movement.Kernel
	Production *production.Kernel
	Upgrade    *upgrade.Kernel
	Container  *container.Kernel
	Special    *special.Kernel
	Skirmish   *skirmish.Kernel
	MapWidth   float64
	MapHeight  float64
}

// New builds the frame-loop Kernel and one fog-of-war Grid per side.
func New(cfg Config) *Kernel {
	grids := make(map[string]*fow.Grid, len(cfg.Sides))
	for side := range cfg.Sides {
		grids[side] = fow.NewGrid(cfg.MapWidth, cfg.MapHeight)
	}
	return &Kernel{
		Reg: cfg.Reg, Store: cfg.Store, Bus: cfg.Bus, Sides: cfg.Sides,
		Dispatcher: cfg.Dispatcher, Combat: cfg.Combat, Movement: cfg.Movement,
		Production: cfg.Production, Upgrade: cfg.Upgrade, Container: cfg.Container,
		Special: cfg.Special, Skirmish: cfg.Skirmish, FogOfWar: grids,
	}
}

// Advance accumulates wall-clock dt and runs every whole 1000/30 ms frame
// that has elapsed, in order, returning the visual events emitted across
// all of them (spec.md Section 5 "update(dt) is the only mutation point").
func (k *Kernel) Advance(dtMs float64) []model.VisualEvent {
	k.accumMs += dtMs
	var events []model.VisualEvent
	for k.accumMs >= model.FrameMs {
		k.accumMs -= model.FrameMs
		events = append(events, k.stepFrame()...)
	}
	return events
}

// stepFrame runs the ten ordered phases for a single frame (spec.md Section
// 4.C13).
func (k *Kernel) stepFrame() []model.VisualEvent {
	k.Frame++
	frame := k.Frame
	frameMs := model.FrameMs

	// (1) drain queued commands
	k.Dispatcher.Drain(frame, frameMs)

	// (2) tick AI: special subsystems' internal clocks (SkirmishAI cadence,
	// HordeUpdate neighbor recount, BattlePlan pack/unpack)
	if k.Skirmish != nil {
		k.Skirmish.Tick(frame)
	}
	k.Special.TickHorde()
	k.Special.TickBattlePlans(frame)

	// (3) resolve movement
	k.Movement.Tick(frame)

	// (4) resolve combat state machines and projectile motion
	k.Combat.Tick(frame)

	// (5) container heal/cave-in/evacuate
	k.tickContainers()

	// (6) production progress -- track entities spawned this phase so
	// phase 7 can dispatch already-owned upgrades onto them.
	before := k.snapshotIDs()
	k.Production.Tick(frame, frameMs)
	spawned := k.newIDsSince(before)

	// (7) upgrade dispatch
	for _, id := range spawned {
		if e, ok := k.Store.Get(id); ok {
			k.Upgrade.DispatchForEntity(e)
		}
	}

	// (8) fog-of-war update
	k.tickFogOfWar()

	// (9) slow-death & cleanup
	k.tickSlowDeath(frame, frameMs)

	// (10) emit events
	return k.Bus.DrainVisualEvents()
}

func (k *Kernel) snapshotIDs() map[model.EntityID]bool {
	ids := k.Store.AllIDs()
	set := make(map[model.EntityID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (k *Kernel) newIDsSince(before map[model.EntityID]bool) []model.EntityID {
	var fresh []model.EntityID
	for _, id := range k.Store.AllIDs() {
		if !before[id] {
			fresh = append(fresh, id)
		}
	}
	return fresh
}

// tickContainers runs TunnelContain's linear heal-over-time on every tunnel
// passenger (spec.md Section 4.C9 "TunnelContain"). Evacuate/Exit/cave-in
// are command-driven (phase 1) or event-driven (TunnelDestroyed, called by
// the host when a tunnel's HP reaches zero) rather than polled here.
func (k *Kernel) tickContainers() {
	for _, id := range k.Store.AllIDs() {
		e, ok := k.Store.Get(id)
		if !ok || !e.Alive || e.Container.Kind != "TUNNEL" {
			continue
		}
		k.Container.HealPassengers(id, tunnelFullHealMs, model.FrameMs)
	}
}

// tickFogOfWar demotes CLEAR cells to FOGGED and re-stamps every alive,
// uncontained entity's vision circle per side (spec.md Section 4.C2).
func (k *Kernel) tickFogOfWar() {
	for _, grid := range k.FogOfWar {
		grid.BeginFrame()
	}
	for _, id := range k.Store.AllIDs() {
		e, ok := k.Store.Get(id)
		if !ok || !e.Alive || e.Container.ContainerOf != 0 {
			continue
		}
		grid, ok := k.FogOfWar[e.Side]
		if !ok || e.VisionRange <= 0 {
			continue
		}
		grid.StampVision(e.X, e.Z, e.VisionRange)
	}
}

// tickSlowDeath hands every newly-dead entity to special.Kernel's SlowDeath
// timeline, then advances lifetime/slow-death timers and removes entities
// whose destruction window has elapsed (spec.md Section 4.C10 "SlowDeath",
// Section 4.C13 phase 9).
func (k *Kernel) tickSlowDeath(frame int64, frameMs float64) {
	for _, id := range k.Store.AllIDs() {
		e, ok := k.Store.Get(id)
		if !ok || e.Alive || e.Lifecycle.InSlowDeath {
			continue
		}
		k.Special.BeginSlowDeath(e, frame, defaultSinkDelayMs, defaultDestructionDelayMs)
	}
	k.Special.TickLifecycle(frame, frameMs)
}

// DistanceXZ is the 2D ground-plane distance used throughout the frame loop
// for range and vision checks (spec.md Section 4.C6 "3D distance uses XZ
// plus elevation delta" -- the XZ component shared across subsystems).
func DistanceXZ(a, b model.Vec3) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}
