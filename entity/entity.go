// Package entity implements the EntityStore (spec.md Section 4.C3): the
// sole owner of all simulated entities, addressed everywhere else purely by
// model.EntityID (spec.md Section 9 "Cyclic structures" design note).
package entity

import "github.com/dominionforge/dominion-core/model"

// WeaponSlotState is per-slot clip/reload runtime state.
type WeaponSlotState struct {
	ClipRemaining int
	ReloadUntilMs int64
	Jammed        bool
}

// FireState is the attacker's per-frame weapon state machine (spec.md
// Section 4.C6 "Fire state machine").
type FireState struct {
	ActiveWeaponSet string
	Slots           map[string]*WeaponSlotState // slot -> state
	Phase           string                      // IDLE|AIM|FIRE|COOLDOWN
	PhaseUntilMs    int64
	LastShotFrame   int64
	PreAttackType   string
	AimTarget       model.EntityID
	ScatterCursor   int // index into ScatterTargets, cycling
}

// LocomotorState tracks movement profile and path.
type LocomotorState struct {
	ActiveSet string
	Speed     float64
	MoveGoal  *model.Vec3
	Path      []model.Vec3
}

// ProductionEntry is one FIFO queue slot (spec.md Section 3). A
// QuantityModifier > 1 template enqueues as a single entry that spawns
// QuantityTotal units one at a time: the first once Ready flips (ElapsedMs
// reaches BuildTimeMs), and each following one after ExitDelayMs of
// cooldown (spec.md Section 4.C8).
type ProductionEntry struct {
	ProductionID         int
	Kind                 string // UNIT | UPGRADE
	TemplateName         string
	UpgradeName          string
	BuildTimeMs          int64
	ElapsedMs            int64
	Cost                 int64
	QuantityTotal        int
	QuantityProduced     int
	ReservedParking      bool
	ExitDelayMs          int64
	ExitDelayRemainingMs int64
	Ready                bool
}

// ProductionState is carried on producer entities.
type ProductionState struct {
	Queue          []*ProductionEntry
	NextProdID     int
	MaxQueueLen    int
	ParkingRows    int
	ParkingCols    int
	ParkingUsed    int

	// RallyPoint, when set, is where freshly produced units are sent
	// (SkirmishAI "Bias rally points of producer buildings toward the
	// nearest enemy structure", spec.md Section 4.C11).
	RallyPoint *model.Vec3
}

// ContainerState tracks container/passenger relationships by id only.
type ContainerState struct {
	Kind               string // OPEN|TRANSPORT|OVERLORD|HELIX|GARRISON|TUNNEL
	Capacity           int
	PassengerIDs       []model.EntityID
	ContainerOf        model.EntityID // the container this entity is inside, if any
	PassengersAllowedToFire bool
	ActivePortableRider model.EntityID // HelixContain
}

// Veterancy tracks experience.
type Veterancy struct {
	Level             model.VeterancyLevel
	CurrentExperience int
}

// AIState carries targeting/command provenance.
type AIState struct {
	AttackTargetEntityID model.EntityID
	ContinueAttackAnchor *model.Vec3
	ContinueAttackOwner  string
	CommandSource        model.CommandSource
}

// RenderState carries rendering metadata the host consumes (spec.md
// Section 3 "Rendering metadata").
type RenderState struct {
	AssetPath       string
	AssetResolved   bool
	AssetCandidates []string
	AnimationClips  map[string]string // IDLE|MOVE|ATTACK|DIE -> clip name
	AnimationState  string
}

// LifecycleState carries destruction/expiry timers.
type LifecycleState struct {
	DestructionDelayMs int64
	SinkDelayMs        int64
	LifetimeMs         int64
	SlowDeathFrame     int64
	InSlowDeath        bool
	DeathFrame         int64
}

// Entity is the full mutable per-entity record. Other subsystems obtain a
// pointer via Store.Get and mutate in place during their assigned frame
// phase only (spec.md Section 13 ordering guarantee).
type Entity struct {
	ID                 model.EntityID
	TemplateName       string
	Side               string
	OriginalOwnerPlayer string
	Resolved           bool
	KindOf             map[string]bool
	Geometry           model.Geometry

	X, Y, Z float64
	Angle   float64

	Alive         bool
	Health        float64
	MaxHealth     float64
	DamageScalar  float64
	ArmorSetCurrent string

	Fire      FireState
	Locomotor LocomotorState
	Status    model.StatusBits
	WeaponBonusFlags model.WeaponBonusFlags

	UpgradesOwned map[string]bool

	Container   ContainerState
	Veterancy   Veterancy
	AI          AIState
	Production  *ProductionState
	Render      RenderState
	Lifecycle   LifecycleState

	ConstructionPercent float64 // -1 = complete/not under construction

	// CommandSetOverride, when non-empty, supersedes the template's
	// CommandSet (CommandSetUpgrade module, spec.md Section 4.C7).
	CommandSetOverride string

	BattlePlanDamageScalar float64
	LastSpecialPowerDispatch *model.SpecialPowerDispatch
	VisionRange float64

	// BattlePlan is non-nil only on strategy-center entities that have
	// dispatched at least one BattlePlan special power (spec.md
	// "BattlePlanUpdate"); the frame loop ticks it every frame once set.
	BattlePlan *model.BattlePlanState

	// Overcharged tracks toggleOvercharge's temporary power-plant boost
	// (spec.md Section 4.C4 command list).
	Overcharged bool

	SpawnFrame int64
}

// BaseHeight derives render/collision base height from geometry, used by
// 3D distance math (spec.md Section 4.C6 "3D distance uses XZ plus
// elevation delta").
func (e *Entity) BaseHeight() float64 {
	return e.Geometry.Height
}

// BoundingSphereRadius implements the FROM_BOUNDINGSPHERE_3D adjustment.
// spec.md Section 9 Open Questions adopts bsr = max(majorRadius,
// baseHeight) as the faithful reconstruction.
func (e *Entity) BoundingSphereRadius() float64 {
	r := e.Geometry.MajorRadius
	if h := e.BaseHeight(); h > r {
		r = h
	}
	return r
}

func (e *Entity) HasKindOf(k string) bool { return e.KindOf != nil && e.KindOf[k] }

// OffMap reports whether the entity uses the negative-X off-map marker
// convention (spec.md Section 4.C6 "Targeting legality").
func (e *Entity) OffMap() bool { return e.X < 0 }
