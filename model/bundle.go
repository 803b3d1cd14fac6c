// Package model defines the data shapes that cross the GameLogicSubsystem
// boundary: the declarative DataBundle (objects, weapons, armors, upgrades,
// sciences, locomotors, command buttons/sets, special powers, OCLs), the
// MapData the world is built from, and the Command union the host submits
// each frame. Nothing in this package performs lookups or validation — that
// is the registry package's job.
package model

// DataBundle is the normalized, pre-parsed output of the external INI
// parser. All name fields are expected already trimmed+uppercased by the
// time they reach the registry; the registry re-normalizes defensively.
type DataBundle struct {
	Objects       []ObjectDef         `yaml:"objects" json:"objects"`
	Weapons       []WeaponDef         `yaml:"weapons" json:"weapons"`
	Armors        []ArmorDef          `yaml:"armors" json:"armors"`
	Upgrades      []UpgradeDef        `yaml:"upgrades" json:"upgrades"`
	Sciences      []ScienceDef        `yaml:"sciences" json:"sciences"`
	Locomotors    []LocomotorDef      `yaml:"locomotors" json:"locomotors"`
	CommandButton []CommandButtonDef  `yaml:"commandButtons" json:"commandButtons"`
	CommandSets   []CommandSetDef     `yaml:"commandSets" json:"commandSets"`
	SpecialPowers []SpecialPowerDef   `yaml:"specialPowers" json:"specialPowers"`
	OCLs          []ObjectCreationList `yaml:"objectCreationLists" json:"objectCreationLists"`
}

// Geometry is a cylinder or box collision/vision footprint.
type Geometry struct {
	IsBox       bool    `yaml:"isBox" json:"isBox"`
	MajorRadius float64 `yaml:"majorRadius" json:"majorRadius"`
	MinorRadius float64 `yaml:"minorRadius" json:"minorRadius"`
	Height      float64 `yaml:"height" json:"height"`
}

// WeaponSlotRef names the weapon bound to a weapon-set slot.
type WeaponSlotRef struct {
	Slot   string `yaml:"slot" json:"slot"` // PRIMARY | SECONDARY | TERTIARY
	Weapon string `yaml:"weapon" json:"weapon"`
}

// WeaponSetDef is one Conditions-gated weapon loadout.
type WeaponSetDef struct {
	Conditions []string        `yaml:"conditions" json:"conditions"`
	Weapons    []WeaponSlotRef `yaml:"weapons" json:"weapons"`
}

// ArmorSetDef is one Conditions-gated armor loadout.
type ArmorSetDef struct {
	Conditions []string `yaml:"conditions" json:"conditions"`
	Armor      string   `yaml:"armor" json:"armor"`
}

// LocomotorSetRef binds a locomotor condition (e.g. "SET_NORMAL") to a
// LocomotorDef by name.
type LocomotorSetRef struct {
	Condition string `yaml:"condition" json:"condition"`
	Locomotor string `yaml:"locomotor" json:"locomotor"`
}

// PrerequisiteBlock is OR'd internally; blocks are AND'd together.
type PrerequisiteBlock struct {
	Objects  []string `yaml:"objects" json:"objects"`
	Sciences []string `yaml:"sciences" json:"sciences"`
}

// BehaviorModule is a tagged-variant module declaration carried verbatim
// from the object's Behavior blocks; Kind selects which kernel dispatches
// it and Params carries kind-specific fields as a loosely typed map so new
// module kinds never require a bundle schema migration.
type BehaviorModule struct {
	Kind   string         `yaml:"kind" json:"kind"`
	Params map[string]any `yaml:"params" json:"params"`
}

// ObjectDef is a normalized object template.
type ObjectDef struct {
	Name                   string   `yaml:"name" json:"name"`
	Side                   string   `yaml:"side" json:"side"`
	KindOf                 []string `yaml:"kindOf" json:"kindOf"`
	Geometry               Geometry `yaml:"geometry" json:"geometry"`
	BuildCost              int      `yaml:"buildCost" json:"buildCost"`
	BuildTimeSeconds       float64  `yaml:"buildTime" json:"buildTime"`
	// QuantityModifier, when greater than one, expands a single queued
	// production entry into N sub-productions spawned one at a time, the
	// first after BuildTimeSeconds and each following one after
	// ExitDelaySeconds (spec.md Section 4.C8).
	QuantityModifier       int      `yaml:"quantityModifier" json:"quantityModifier"`
	ExitDelaySeconds       float64  `yaml:"exitDelay" json:"exitDelay"`
	MaxSimultaneousOfType  int      `yaml:"maxSimultaneousOfType" json:"maxSimultaneousOfType"`
	// MaxSimultaneousLinkKey, when set, pools MaxSimultaneousOfType's count
	// across every template sharing the same key instead of just this
	// template's own BuildVariations class (spec.md Section 4.C8).
	MaxSimultaneousLinkKey string   `yaml:"maxSimultaneousLinkKey" json:"maxSimultaneousLinkKey"`
	Buildable              string   `yaml:"buildable" json:"buildable"` // Yes | Ignore_Prerequisites | Only_By_AI | No
	VisionRange            float64  `yaml:"visionRange" json:"visionRange"`
	CommandSet             string   `yaml:"commandSet" json:"commandSet"`
	EnergyBonus            int      `yaml:"energyBonus" json:"energyBonus"`
	Speed                  float64  `yaml:"speed" json:"speed"`
	CrusherLevel           int      `yaml:"crusherLevel" json:"crusherLevel"`
	CrushableLevel         int      `yaml:"crushableLevel" json:"crushableLevel"`
	ExperienceRequired     []int    `yaml:"experienceRequired" json:"experienceRequired"`
	ExperienceValue        []int    `yaml:"experienceValue" json:"experienceValue"`
	RefundValue            int      `yaml:"refundValue" json:"refundValue"`
	SellPercentage         float64  `yaml:"sellPercentage" json:"sellPercentage"`
	BuildVariations        []string `yaml:"buildVariations" json:"buildVariations"`
	MaxHealth              float64  `yaml:"maxHealth" json:"maxHealth"`

	WeaponSets   []WeaponSetDef        `yaml:"weaponSets" json:"weaponSets"`
	ArmorSets    []ArmorSetDef         `yaml:"armorSets" json:"armorSets"`
	Locomotors   []LocomotorSetRef     `yaml:"locomotorSets" json:"locomotorSets"`
	Prereqs      []PrerequisiteBlock   `yaml:"prerequisites" json:"prerequisites"`
	Behaviors    []BehaviorModule      `yaml:"behaviors" json:"behaviors"`
	RenderStates map[string][]string   `yaml:"renderStates" json:"renderStates"` // ModelConditionState -> candidate asset paths
	Upgrades     []UpgradeModuleDef    `yaml:"upgradeModules" json:"upgradeModules"`
}

// UpgradeModuleDef is a module attached to an object (or, via Type=PLAYER
// dispatch, conceptually to a side) reacting to upgrade ownership changes.
type UpgradeModuleDef struct {
	Kind                string         `yaml:"kind" json:"kind"`
	TriggeredBy         []string       `yaml:"triggeredBy" json:"triggeredBy"`
	RequiresAllTriggers bool           `yaml:"requiresAllTriggers" json:"requiresAllTriggers"`
	RemovesUpgrades     []string       `yaml:"removesUpgrades" json:"removesUpgrades"`
	Params              map[string]any `yaml:"params" json:"params"`
}

// WeaponDef is a normalized weapon template.
type WeaponDef struct {
	Name                     string   `yaml:"name" json:"name"`
	PrimaryDamage            float64  `yaml:"primaryDamage" json:"primaryDamage"`
	PrimaryDamageRadius      float64  `yaml:"primaryDamageRadius" json:"primaryDamageRadius"`
	SecondaryDamage          float64  `yaml:"secondaryDamage" json:"secondaryDamage"`
	SecondaryDamageRadius    float64  `yaml:"secondaryDamageRadius" json:"secondaryDamageRadius"`
	RadiusDamageAffects      []string `yaml:"radiusDamageAffects" json:"radiusDamageAffects"`
	RadiusDamageAngle        float64  `yaml:"radiusDamageAngle" json:"radiusDamageAngle"`
	DamageDealtAtSelfPos     bool     `yaml:"damageDealtAtSelfPosition" json:"damageDealtAtSelfPosition"`
	AttackRange              float64  `yaml:"attackRange" json:"attackRange"`
	MinimumAttackRange       float64  `yaml:"minimumAttackRange" json:"minimumAttackRange"`
	ContinueAttackRange      float64  `yaml:"continueAttackRange" json:"continueAttackRange"`
	WeaponSpeed              float64  `yaml:"weaponSpeed" json:"weaponSpeed"`
	MinWeaponSpeed           float64  `yaml:"minWeaponSpeed" json:"minWeaponSpeed"`
	ScaleWeaponSpeed         bool     `yaml:"scaleWeaponSpeed" json:"scaleWeaponSpeed"`
	DelayBetweenShotsMs      int      `yaml:"delayBetweenShots" json:"delayBetweenShots"`
	ClipSize                 int      `yaml:"clipSize" json:"clipSize"`
	ClipReloadTimeMs         int      `yaml:"clipReloadTime" json:"clipReloadTime"`
	PreAttackDelayMs         int      `yaml:"preAttackDelay" json:"preAttackDelay"`
	PreAttackType            string   `yaml:"preAttackType" json:"preAttackType"` // PER_SHOT|PER_ATTACK|PER_CLIP
	AutoReloadWhenIdleMs     int      `yaml:"autoReloadWhenIdle" json:"autoReloadWhenIdle"`
	ProjectileObject         string   `yaml:"projectileObject" json:"projectileObject"`
	ProjectileCollidesWith   []string `yaml:"projectileCollidesWith" json:"projectileCollidesWith"`
	ScatterRadius            float64  `yaml:"scatterRadius" json:"scatterRadius"`
	ScatterRadiusVsInfantry  float64  `yaml:"scatterRadiusVsInfantry" json:"scatterRadiusVsInfantry"`
	ScatterTargets           [][2]float64 `yaml:"scatterTargets" json:"scatterTargets"`
	ScatterTargetScalar      float64  `yaml:"scatterTargetScalar" json:"scatterTargetScalar"`
	DamageType               string   `yaml:"damageType" json:"damageType"`
	DeliveryType             string   `yaml:"deliveryType" json:"deliveryType"` // DIRECT|PROJECTILE
}

// ArmorDef maps damage-type names to coefficients; "Default" is the
// fallback when a DamageType key is absent.
type ArmorDef struct {
	Name         string             `yaml:"name" json:"name"`
	Coefficients map[string]float64 `yaml:"coefficients" json:"coefficients"`
}

// CoefficientFor resolves a damage type against this armor, falling back to
// the Default key and finally 1.0.
func (a ArmorDef) CoefficientFor(damageType string) float64 {
	if c, ok := a.Coefficients[damageType]; ok {
		return c
	}
	if c, ok := a.Coefficients["Default"]; ok {
		return c
	}
	return 1.0
}

// UpgradeDef describes a purchasable upgrade's cost and scope.
type UpgradeDef struct {
	Name      string `yaml:"name" json:"name"`
	Type      string `yaml:"type" json:"type"` // PLAYER | OBJECT
	BuildCost int    `yaml:"buildCost" json:"buildCost"`
	BuildTime float64 `yaml:"buildTime" json:"buildTime"` // seconds
}

// ScienceDef describes a purchasable science/rank unlock.
type ScienceDef struct {
	Name                  string   `yaml:"name" json:"name"`
	PurchasePointCost     int      `yaml:"purchasePointCost" json:"purchasePointCost"`
	PrerequisiteSciences  []string `yaml:"prerequisiteSciences" json:"prerequisiteSciences"`
	IsGrantable           bool     `yaml:"isGrantable" json:"isGrantable"`
}

// LocomotorDef carries movement speed and surface mask.
type LocomotorDef struct {
	Name     string   `yaml:"name" json:"name"`
	Speed    float64  `yaml:"speed" json:"speed"`
	Surfaces []string `yaml:"surfaces" json:"surfaces"`
}

// CommandButtonDef is one button exposed by a CommandSet.
type CommandButtonDef struct {
	Name             string `yaml:"name" json:"name"`
	Command          string `yaml:"command" json:"command"` // UNIT_BUILD|PLAYER_UPGRADE|OBJECT_UPGRADE|DOZER_CONSTRUCT|SPECIAL_POWER
	Object           string `yaml:"object" json:"object"`
	Upgrade          string `yaml:"upgrade" json:"upgrade"`
	SpecialPower     string `yaml:"specialPower" json:"specialPower"`
}

// CommandSetDef maps slot index to button name.
type CommandSetDef struct {
	Name  string         `yaml:"name" json:"name"`
	Slots map[int]string `yaml:"slots" json:"slots"`
}

// SpecialPowerDef describes a dispatchable special power.
type SpecialPowerDef struct {
	Name             string  `yaml:"name" json:"name"`
	ReloadTimeMs     int     `yaml:"reloadTime" json:"reloadTime"`
	SharedSyncedTimer bool   `yaml:"sharedSyncedTimer" json:"sharedSyncedTimer"`
	CommandOption    string  `yaml:"commandOption" json:"commandOption"` // NEED_TARGET_ENEMY_OBJECT|NEED_TARGET_POS|NONE
	Kind             string  `yaml:"kind" json:"kind"`                   // OCL|CASH_HACK|DEFECTOR|AREA_DAMAGE|BATTLEPLAN
	OCLName          string  `yaml:"oclName" json:"oclName"`
	Damage           float64 `yaml:"damage" json:"damage"`
	Radius           float64 `yaml:"radius" json:"radius"`

	// BattlePlan fields apply only when Kind == "BATTLEPLAN" (spec.md
	// "BattlePlanUpdate").
	BattlePlan     string   `yaml:"battlePlan" json:"battlePlan"` // BOMBARDMENT|HOLD_THE_LINE|SEARCH_AND_DESTROY
	PackTimeMs     int      `yaml:"packTime" json:"packTime"`
	UnpackTimeMs   int      `yaml:"unpackTime" json:"unpackTime"`
	ParalyzeTimeMs int      `yaml:"paralyzeTime" json:"paralyzeTime"`
	ValidKindOf    []string `yaml:"validKindOf" json:"validKindOf"`
	InvalidKindOf  []string `yaml:"invalidKindOf" json:"invalidKindOf"`
}

// ObjectCreationList is a reusable spawn recipe.
type ObjectCreationList struct {
	Name    string          `yaml:"name" json:"name"`
	Spawns  []OCLSpawnEntry `yaml:"spawns" json:"spawns"`
}

type OCLSpawnEntry struct {
	TemplateName string  `yaml:"templateName" json:"templateName"`
	OffsetX      float64 `yaml:"offsetX" json:"offsetX"`
	OffsetY      float64 `yaml:"offsetY" json:"offsetY"`
	Count        int     `yaml:"count" json:"count"`
}
