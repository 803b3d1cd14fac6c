// Package event implements the VisualEventBus (spec.md Section 4.C12): a
// frame-end buffer of visual events drained once per frame by the host.
package event

import "github.com/dominionforge/dominion-core/model"

// Bus buffers visual events until DrainVisualEvents is called. It is not
// safe for concurrent use, matching the single-threaded frame loop
// (spec.md Section 5).
type Bus struct {
	buffered []model.VisualEvent
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Emit(ev model.VisualEvent) {
	b.buffered = append(b.buffered, ev)
}

func (b *Bus) EmitWeaponImpact(source, victim model.EntityID, pos model.Vec3, weapon string) {
	p := pos
	b.Emit(model.VisualEvent{Type: model.EventWeaponImpact, SourceEntityID: source, VictimEntityID: victim, Position: &p, WeaponName: weapon})
}

func (b *Bus) EmitDeath(victim model.EntityID, pos model.Vec3) {
	p := pos
	b.Emit(model.VisualEvent{Type: model.EventDeath, VictimEntityID: victim, Position: &p})
}

func (b *Bus) EmitStatusChange(id model.EntityID) {
	b.Emit(model.VisualEvent{Type: model.EventStatusChange, SourceEntityID: id})
}

func (b *Bus) EmitBuildComplete(id model.EntityID) {
	b.Emit(model.VisualEvent{Type: model.EventBuildComplete, SourceEntityID: id})
}

func (b *Bus) EmitUpgradeComplete(side string, id model.EntityID) {
	b.Emit(model.VisualEvent{Type: model.EventUpgradeComplete, SourceEntityID: id})
}

func (b *Bus) EmitCaveIn(containerID, victimID model.EntityID) {
	b.Emit(model.VisualEvent{Type: model.EventCaveIn, SourceEntityID: containerID, VictimEntityID: victimID})
}

func (b *Bus) EmitProjectileSpawn(source model.EntityID, pos model.Vec3, weapon string) {
	p := pos
	b.Emit(model.VisualEvent{Type: model.EventProjectileSpawn, SourceEntityID: source, Position: &p, WeaponName: weapon})
}

// DrainVisualEvents moves the buffered events out, resetting the buffer
// (spec.md Section 4.C12 "drainVisualEvents() moves the buffered events
// out").
func (b *Bus) DrainVisualEvents() []model.VisualEvent {
	out := b.buffered
	b.buffered = nil
	return out
}
