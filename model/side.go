package model

// SideState bundles every piece of per-side global mutable state: credits,
// power, radar, sciences, completed upgrades. spec.md Section 9 requires
// this be an explicit table keyed by normalized side name, never a
// process-scope singleton.
type SideState struct {
	Side          string
	PlayerType    string // HUMAN | COMPUTER
	Credits       int64
	Relationship  map[string]int // other side -> 0 enemy, 1 neutral, 2 ally

	PowerProduction  int
	PowerConsumption int
	PowerBonus       int
	Brownout         bool

	RadarCount          int
	RadarDisableProofCount int
	RadarDisabled       bool

	SciencesAcquired map[string]bool
	PurchasePoints   int

	CompletedPlayerUpgrades map[string]bool
	InProductionUpgrades    map[string]bool

	BeaconCount int

	// CostModifierUpgrade state: kindOf -> percentage multiplier applied to
	// subsequent unit production costs of matching kind.
	CostModifiers map[string]float64
}

// NewSideState returns a zero-value side ready for play.
func NewSideState(side, playerType string) *SideState {
	return &SideState{
		Side:                    side,
		PlayerType:              playerType,
		Relationship:            make(map[string]int),
		SciencesAcquired:        make(map[string]bool),
		CompletedPlayerUpgrades: make(map[string]bool),
		InProductionUpgrades:    make(map[string]bool),
		CostModifiers:           make(map[string]float64),
	}
}

// PowerAvailable reports spare power capacity (spec.md PowerPlantUpgrade /
// RadarUpgrade brown-out interplay).
func (s *SideState) PowerAvailable() int {
	return s.PowerProduction + s.PowerBonus - s.PowerConsumption
}

// RelationshipTo returns the relationship code to another side, defaulting
// to "enemies" (0) for any side never explicitly configured.
func (s *SideState) RelationshipTo(other string) int {
	if s.Side == other {
		return 2
	}
	if rel, ok := s.Relationship[other]; ok {
		return rel
	}
	return 0
}

const (
	RelationEnemy   = 0
	RelationNeutral = 1
	RelationAlly    = 2
)
