package model

// BattlePlanKind enumerates the three mutually exclusive strategy-center
// plans (spec.md "BattlePlanUpdate").
type BattlePlanKind string

const (
	PlanNone             BattlePlanKind = ""
	PlanBombardment      BattlePlanKind = "BOMBARDMENT"
	PlanHoldTheLine      BattlePlanKind = "HOLD_THE_LINE"
	PlanSearchAndDestroy BattlePlanKind = "SEARCH_AND_DESTROY"
)

// BattlePlanState tracks one strategy center's pack/unpack state machine.
// It lives on the owning entity (not the special package) so the frame
// loop can drive every active plan each tick without reaching into
// special-package internals.
type BattlePlanState struct {
	Active        BattlePlanKind
	Pending       BattlePlanKind
	Phase         string // IDLE|PACKING|UNPACKING|ACTIVE
	PhaseUntil    int64
	UnpackFrames  int64
	ValidKindOf   []string
	InvalidKindOf []string
}
