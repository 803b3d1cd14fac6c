package entity

import (
	"strings"

	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
)

// Store is the monotonic-id entity table and sole owner of all Entity
// values (spec.md Section 4.C3). IDs are 1-based and never reused.
type Store struct {
	reg      *registry.Registry
	nextID   model.EntityID
	entities map[model.EntityID]*Entity
	order    []model.EntityID // insertion order, for deterministic iteration
}

func NewStore(reg *registry.Registry) *Store {
	return &Store{reg: reg, entities: make(map[model.EntityID]*Entity)}
}

// SpawnProperties carries optional overrides at spawn time.
type SpawnProperties struct {
	OriginalOwnerPlayer string
	Angle               float64
	SpawnFrame          int64
}

// Spawn allocates a new entity id and initializes it from the object
// template. A missing template still spawns the entity with
// Resolved=false (spec.md Section 4.C1 Failure semantics: "unresolved
// object templates are kept... spawn but render as placeholders and do
// not participate in combat").
func (s *Store) Spawn(templateName, side string, pos model.Vec3, props SpawnProperties) model.EntityID {
	s.nextID++
	id := s.nextID

	e := &Entity{
		ID:                  id,
		TemplateName:        templateName,
		Side:                strings.ToLower(strings.TrimSpace(side)),
		OriginalOwnerPlayer: props.OriginalOwnerPlayer,
		X:                   pos.X,
		Y:                   pos.Y,
		Z:                   pos.Z,
		Angle:               props.Angle,
		Alive:               true,
		ConstructionPercent: -1,
		SpawnFrame:          props.SpawnFrame,
		UpgradesOwned:       make(map[string]bool),
		KindOf:              make(map[string]bool),
	}

	def, ok := s.reg.ObjectDef(templateName)
	if !ok {
		e.Resolved = false
		s.entities[id] = e
		s.order = append(s.order, id)
		return id
	}

	e.Resolved = true
	e.Geometry = def.Geometry
	e.MaxHealth = def.MaxHealth
	e.Health = def.MaxHealth
	e.DamageScalar = 1.0
	e.VisionRange = def.VisionRange
	e.Locomotor.Speed = def.Speed
	for _, k := range def.KindOf {
		e.KindOf[strings.ToUpper(k)] = true
	}
	if len(def.WeaponSets) > 0 {
		e.Fire.ActiveWeaponSet = selectDefaultWeaponSet(def)
		e.Fire.Slots = make(map[string]*WeaponSlotState)
	}
	if len(def.ArmorSets) > 0 {
		e.ArmorSetCurrent = def.ArmorSets[0].Armor
	}
	e.Render.AnimationClips = make(map[string]string)
	for state, candidates := range def.RenderStates {
		if len(candidates) > 0 {
			e.Render.AnimationClips[state] = candidates[0]
		}
	}

	s.entities[id] = e
	s.order = append(s.order, id)
	return id
}

func selectDefaultWeaponSet(def model.ObjectDef) string {
	for _, ws := range def.WeaponSets {
		if len(ws.Conditions) == 0 {
			return conditionsKey(ws.Conditions)
		}
	}
	return conditionsKey(def.WeaponSets[0].Conditions)
}

func conditionsKey(conditions []string) string {
	if len(conditions) == 0 {
		return "NONE"
	}
	return strings.Join(conditions, "+")
}

// Get returns a mutable pointer to an entity, or false if it never existed.
func (s *Store) Get(id model.EntityID) (*Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Remove deletes an entity permanently. The id is never reallocated.
func (s *Store) Remove(id model.EntityID) {
	delete(s.entities, id)
}

// AllIDs returns every currently-stored entity id in spawn order
// (including dead-but-not-yet-removed slow-death entities).
func (s *Store) AllIDs() []model.EntityID {
	out := make([]model.EntityID, 0, len(s.order))
	for _, id := range s.order {
		if _, ok := s.entities[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// EntityIDsByTemplate returns ids whose TemplateName matches (case-
// insensitive), in spawn order.
func (s *Store) EntityIDsByTemplate(name string) []model.EntityID {
	n := registry.Normalize(name)
	var out []model.EntityID
	for _, id := range s.AllIDs() {
		e := s.entities[id]
		if registry.Normalize(e.TemplateName) == n {
			out = append(out, id)
		}
	}
	return out
}

// EntityIDsByTemplateAndSide further filters by side.
func (s *Store) EntityIDsByTemplateAndSide(name, side string) []model.EntityID {
	side = strings.ToLower(strings.TrimSpace(side))
	var out []model.EntityID
	for _, id := range s.EntityIDsByTemplate(name) {
		if s.entities[id].Side == side {
			out = append(out, id)
		}
	}
	return out
}

// GetEntityState projects an entity to its public Snapshot, or ok=false if
// the entity is not present at all (spec.md Section 4.C3).
func (s *Store) GetEntityState(id model.EntityID) (model.Snapshot, bool) {
	e, ok := s.entities[id]
	if !ok {
		return model.Snapshot{}, false
	}
	return project(e), true
}

// GetRenderableEntityStates returns snapshots for every alive entity plus
// slow-death entities still in their destruction grace window (spec.md
// Section 4.C3).
func (s *Store) GetRenderableEntityStates() []model.Snapshot {
	out := make([]model.Snapshot, 0, len(s.entities))
	for _, id := range s.AllIDs() {
		e := s.entities[id]
		if e.Alive || e.Lifecycle.InSlowDeath {
			out = append(out, project(e))
		}
	}
	return out
}

func project(e *Entity) model.Snapshot {
	animState := e.Render.AnimationState
	if animState == "" {
		animState = "IDLE"
	}
	snap := model.Snapshot{
		EntityID:                  e.ID,
		TemplateName:              e.TemplateName,
		Side:                      e.Side,
		Resolved:                  e.Resolved,
		X:                         e.X,
		Y:                         e.Y,
		Z:                         e.Z,
		Angle:                     e.Angle,
		Health:                    e.Health,
		MaxHealth:                 e.MaxHealth,
		Alive:                     e.Alive,
		StatusFlags:               e.Status.SortedBits(),
		AnimationState:            animState,
		RenderAssetPath:           e.Render.AssetPath,
		RenderAssetCandidates:     e.Render.AssetCandidates,
		ConstructionPercent:       e.ConstructionPercent,
		Speed:                     e.Locomotor.Speed,
		VisionRange:               e.VisionRange,
		AttackTargetEntityID:      e.AI.AttackTargetEntityID,
		BattlePlanDamageScalar:    e.BattlePlanDamageScalar,
		WeaponBonusConditionFlags: uint32(e.WeaponBonusFlags),
		VeterancyLevel:            e.Veterancy.Level.String(),
		CurrentExperience:         e.Veterancy.CurrentExperience,
		LastSpecialPowerDispatch:  e.LastSpecialPowerDispatch,
	}
	return snap
}
