package container

import (
	"testing"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/stretchr/testify/assert"
)

func buildKernel(t *testing.T) (*Kernel, *entity.Store) {
	t.Helper()
	reg := registry.Build(model.DataBundle{
		Objects: []model.ObjectDef{
			{Name: "Transport", MaxHealth: 200},
			{Name: "Rifleman", MaxHealth: 50, KindOf: []string{"INFANTRY"}},
		},
	})
	store := entity.NewStore(reg)
	return NewKernel(store, event.NewBus()), store
}

func TestTransportInfantryRequiresPassengersAllowedToFire(t *testing.T) {
	k, store := buildKernel(t)
	transportID := store.Spawn("Transport", "america", model.Vec3{}, entity.SpawnProperties{})
	riflemanID := store.Spawn("Rifleman", "america", model.Vec3{}, entity.SpawnProperties{})

	transport, _ := store.Get(transportID)
	transport.Container.Kind = "TRANSPORT"
	transport.Container.Capacity = 5

	assert.True(t, k.Enter(transportID, riflemanID))

	rifleman, _ := store.Get(riflemanID)
	assert.False(t, k.CanFire(rifleman))

	transport.Container.PassengersAllowedToFire = true
	assert.True(t, k.CanFire(rifleman))
}

func TestTunnelCaveInOnLastTunnel(t *testing.T) {
	k, store := buildKernel(t)
	tunnelID := store.Spawn("Transport", "america", model.Vec3{}, entity.SpawnProperties{})
	riflemanID := store.Spawn("Rifleman", "america", model.Vec3{}, entity.SpawnProperties{})

	tunnel, _ := store.Get(tunnelID)
	tunnel.Container.Kind = "TUNNEL"
	k.RegisterTunnel("america", 10)
	assert.True(t, k.Enter(tunnelID, riflemanID))

	k.TunnelDestroyed(tunnelID, 0)

	rifleman, _ := store.Get(riflemanID)
	assert.False(t, rifleman.Alive)
}
