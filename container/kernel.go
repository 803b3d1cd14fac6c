// Package container implements the ContainerKernel (spec.md Section 4.C9):
// Open/Transport/Overlord/Helix/Garrison/Tunnel contain modules, the
// PassengersAllowedToFire cascade, and tunnel cave-in semantics.
package container

import (
	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
)

// Kernel is the ContainerKernel.
type Kernel struct {
	Store *entity.Store
	Bus   *event.Bus

	// tunnelCapacityBySide tracks shared tunnel capacity (spec.md "shared
	// capacity across all tunnels on the side").
	tunnelCapacityBySide map[string]int
}

func NewKernel(store *entity.Store, bus *event.Bus) *Kernel {
	return &Kernel{Store: store, Bus: bus, tunnelCapacityBySide: make(map[string]int)}
}

// Enter places a passenger into a container, respecting capacity and
// DISABLED_SUBDUED blocking both bulk and individual boarding.
func (k *Kernel) Enter(containerID, passengerID model.EntityID) bool {
	c, ok := k.Store.Get(containerID)
	if !ok || !c.Alive || c.Status.Has(model.DisabledSubdued) {
		return false
	}
	p, ok := k.Store.Get(passengerID)
	if !ok || !p.Alive {
		return false
	}
	capacity := c.Container.Capacity
	if c.Container.Kind == "TUNNEL" {
		capacity = k.tunnelCapacityBySide[c.Side]
	}
	if capacity > 0 && len(c.Container.PassengerIDs) >= capacity {
		return false
	}
	c.Container.PassengerIDs = append(c.Container.PassengerIDs, passengerID)
	p.Container.ContainerOf = containerID

	if c.Container.Kind == "TUNNEL" {
		p.Status = p.Status.Set(model.DisabledHeld).Set(model.Masked).Set(model.Unselectable)
	}
	return true
}

// Evacuate removes every passenger from a container, blocked entirely while
// the container is DISABLED_SUBDUED.
func (k *Kernel) Evacuate(containerID model.EntityID) bool {
	c, ok := k.Store.Get(containerID)
	if !ok || c.Status.Has(model.DisabledSubdued) {
		return false
	}
	for _, pid := range c.Container.PassengerIDs {
		k.exitOne(c, pid)
	}
	c.Container.PassengerIDs = nil
	return true
}

// Exit removes a single passenger, blocked while the container is
// DISABLED_SUBDUED.
func (k *Kernel) Exit(containerID, passengerID model.EntityID) bool {
	c, ok := k.Store.Get(containerID)
	if !ok || c.Status.Has(model.DisabledSubdued) {
		return false
	}
	for i, pid := range c.Container.PassengerIDs {
		if pid != passengerID {
			continue
		}
		k.exitOne(c, pid)
		c.Container.PassengerIDs = append(c.Container.PassengerIDs[:i], c.Container.PassengerIDs[i+1:]...)
		return true
	}
	return false
}

func (k *Kernel) exitOne(c *entity.Entity, pid model.EntityID) {
	p, ok := k.Store.Get(pid)
	if !ok {
		return
	}
	p.Container.ContainerOf = 0
	p.X, p.Z = c.X, c.Z
	if c.Container.Kind == "TUNNEL" {
		p.Status = p.Status.Clear(model.DisabledHeld).Clear(model.Masked).Clear(model.Unselectable)
	}
}

// CanFire reports whether a passenger may fire from inside its container
// (spec.md Section 4.C9, per contain-kind rules).
func (k *Kernel) CanFire(passenger *entity.Entity) bool {
	if passenger.Container.ContainerOf == 0 {
		return true
	}
	c, ok := k.Store.Get(passenger.Container.ContainerOf)
	if !ok {
		return false
	}
	isInfantry := passenger.HasKindOf("INFANTRY")

	switch c.Container.Kind {
	case "OPEN":
		if !(c.Container.PassengersAllowedToFire) {
			return false
		}
		// Nested OpenContain: every outer OpenContain must allow.
		if c.Container.ContainerOf != 0 {
			outer, ok := k.Store.Get(c.Container.ContainerOf)
			if ok && outer.Container.Kind == "OPEN" {
				return k.CanFire(c)
			}
		}
		return true
	case "TRANSPORT", "OVERLORD":
		return isInfantry && c.Container.PassengersAllowedToFire
	case "HELIX":
		if c.Container.ActivePortableRider == passenger.ID {
			return true
		}
		return isInfantry && c.Container.PassengersAllowedToFire
	case "GARRISON":
		return isInfantry && !c.Status.Has(model.DisabledSubdued)
	case "TUNNEL":
		return false
	default:
		return false
	}
}

// RegisterTunnel adds capacity shared across a side's tunnels.
func (k *Kernel) RegisterTunnel(side string, capacity int) {
	k.tunnelCapacityBySide[side] += capacity
}

// TunnelDestroyed implements the cave-in rule (spec.md Section 4.C9
// "TunnelContain"): if sibling tunnels remain, passengers are reassigned to
// one; if this was the last tunnel, every passenger inside any tunnel dies.
func (k *Kernel) TunnelDestroyed(tunnelID model.EntityID, remainingSiblingID model.EntityID) {
	tunnel, ok := k.Store.Get(tunnelID)
	if !ok {
		return
	}
	if remainingSiblingID != 0 {
		sibling, ok := k.Store.Get(remainingSiblingID)
		if ok {
			sibling.Container.PassengerIDs = append(sibling.Container.PassengerIDs, tunnel.Container.PassengerIDs...)
			for _, pid := range tunnel.Container.PassengerIDs {
				if p, ok := k.Store.Get(pid); ok {
					p.Container.ContainerOf = remainingSiblingID
				}
			}
		}
		tunnel.Container.PassengerIDs = nil
		return
	}
	for _, pid := range tunnel.Container.PassengerIDs {
		p, ok := k.Store.Get(pid)
		if !ok {
			continue
		}
		p.Alive = false
		p.Health = 0
		k.Bus.EmitCaveIn(tunnelID, pid)
	}
	tunnel.Container.PassengerIDs = nil
}

// HealPassengers applies TunnelContain's linear heal-over-time (spec.md
// "Heals passengers linearly over TimeForFullHeal ms").
func (k *Kernel) HealPassengers(containerID model.EntityID, timeForFullHealMs float64, frameMs float64) {
	c, ok := k.Store.Get(containerID)
	if !ok {
		return
	}
	for _, pid := range c.Container.PassengerIDs {
		p, ok := k.Store.Get(pid)
		if !ok || p.MaxHealth <= 0 || timeForFullHealMs <= 0 {
			continue
		}
		healPerFrame := p.MaxHealth * (frameMs / timeForFullHealMs)
		p.Health += healPerFrame
		if p.Health > p.MaxHealth {
			p.Health = p.MaxHealth
		}
	}
}
