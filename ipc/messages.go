package ipc

import "github.com/dominionforge/dominion-core/model"

// Message type constants carried in Envelope.Type.
const (
	TypeHello    = "hello"
	TypeReady    = "ready"
	TypeCommand  = "command"
	TypeSnapshot = "snapshot"
	TypeEvents   = "events"
)

// HelloMessage identifies which side a connection controls (spec.md
// Section 6 "Input bundle").
type HelloMessage struct {
	Player string `json:"player"`
	Side   string `json:"side"`
}

type ReadyMessage struct {
	Status string `json:"status"`
}

// WireCommand is the flattened wire shape of model.Command: one struct
// carrying every field any command kind needs, tagged by Kind. A real
// per-kind struct set (35 of them) would duplicate model.Command's own
// constructors field-for-field; ToCommand below is the one place that
// narrows a wire message back down to the concrete domain type (spec.md
// Section 4.C4 command list; Section 6 "Command schema").
type WireCommand struct {
	Kind string `json:"kind"`

	EntityID     model.EntityID  `json:"entityId,omitempty"`
	AttackerID   model.EntityID  `json:"attackerId,omitempty"`
	TargetID     model.EntityID  `json:"targetId,omitempty"`
	ProducerID   model.EntityID  `json:"producerId,omitempty"`
	CapturerID   model.EntityID  `json:"capturerId,omitempty"`
	DozerID      model.EntityID  `json:"dozerId,omitempty"`
	BuildingID   model.EntityID  `json:"buildingId,omitempty"`
	PassengerID  model.EntityID  `json:"passengerId,omitempty"`
	TransportID  model.EntityID  `json:"transportId,omitempty"`
	ContainerID  model.EntityID  `json:"containerId,omitempty"`
	HijackerID   model.EntityID  `json:"hijackerId,omitempty"`
	SourceID     model.EntityID  `json:"sourceId,omitempty"`
	IssuingIDs   []model.EntityID `json:"issuingIds,omitempty"`

	Side      string `json:"side,omitempty"`
	OtherSide string `json:"otherSide,omitempty"`
	NewSide   string `json:"newSide,omitempty"`

	TemplateName string `json:"templateName,omitempty"`
	UpgradeName  string `json:"upgradeName,omitempty"`
	Science      string `json:"science,omitempty"`
	PlayerType   string `json:"playerType,omitempty"`
	SpecialPower string `json:"specialPower,omitempty"`

	Dest      model.Vec3  `json:"dest,omitempty"`
	Position  model.Vec3  `json:"position,omitempty"`
	TargetPos *model.Vec3 `json:"targetPos,omitempty"`

	Amount          int64                `json:"amount,omitempty"`
	Relationship    int                  `json:"relationship,omitempty"`
	Quantity        int                  `json:"quantity,omitempty"`
	ProductionID    int                  `json:"productionId,omitempty"`
	Source          model.CommandSource  `json:"source,omitempty"`
}

// ToCommand narrows a WireCommand down to the concrete model.Command its
// Kind names. An unrecognized Kind returns (nil, false), which callers
// treat as a silent rejection the same way an invalid in-process command
// would be (spec.md Section 9 "invalid commands fail silently").
func (w WireCommand) ToCommand() (model.Command, bool) {
	switch w.Kind {
	case model.CmdMove:
		return model.NewMoveCommand(w.EntityID, w.Dest), true
	case model.CmdAttackEntity:
		return model.NewAttackEntityCommand(w.AttackerID, w.TargetID, w.Source), true
	case model.CmdStop:
		return model.NewStopCommand(w.EntityID), true
	case model.CmdApplyUpgrade:
		return model.NewApplyUpgradeCommand(w.EntityID, w.UpgradeName), true
	case model.CmdApplyPlayerUpgrade:
		return model.NewApplyPlayerUpgradeCommand(w.Side, w.UpgradeName), true
	case model.CmdQueueUnitProduction:
		return model.NewQueueUnitProductionCommand(w.ProducerID, w.TemplateName, w.Quantity), true
	case model.CmdCancelUnitProduction:
		return model.NewCancelUnitProductionCommand(w.ProducerID, w.ProductionID), true
	case model.CmdQueueUpgradeProd:
		return model.NewQueueUpgradeProductionCommand(w.ProducerID, w.UpgradeName), true
	case model.CmdCancelUpgradeProd:
		return model.NewCancelUpgradeProductionCommand(w.ProducerID, w.UpgradeName), true
	case model.CmdSetSideCredits:
		return model.NewSetSideCreditsCommand(w.Side, w.Amount), true
	case model.CmdAddSideCredits:
		return model.NewAddSideCreditsCommand(w.Side, w.Amount), true
	case model.CmdGrantSideScience:
		return model.NewGrantSideScienceCommand(w.Side, w.Science), true
	case model.CmdPurchaseScience:
		return model.NewPurchaseScienceCommand(w.Side, w.Science), true
	case model.CmdSetSidePlayerType:
		return model.NewSetSidePlayerTypeCommand(w.Side, w.PlayerType), true
	case model.CmdSetTeamRelationship:
		return model.NewSetTeamRelationshipCommand(w.Side, w.OtherSide, w.Relationship), true
	case model.CmdCaptureEntity:
		return model.NewCaptureEntityCommand(w.CapturerID, w.TargetID), true
	case model.CmdConstructBuilding:
		return model.NewConstructBuildingCommand(w.DozerID, w.TemplateName, w.Position), true
	case model.CmdCancelDozerConstruct:
		return model.NewCancelDozerConstructionCommand(w.BuildingID), true
	case model.CmdRepairBuilding:
		return model.NewRepairBuildingCommand(w.DozerID, w.BuildingID), true
	case model.CmdSell:
		return model.NewSellCommand(w.EntityID), true
	case model.CmdEnterTransport:
		return model.NewEnterTransportCommand(w.PassengerID, w.TransportID), true
	case model.CmdEvacuate:
		return model.NewEvacuateCommand(w.ContainerID), true
	case model.CmdExitContainer:
		return model.NewExitContainerCommand(w.PassengerID), true
	case model.CmdGarrisonBuilding:
		return model.NewGarrisonBuildingCommand(w.PassengerID, w.BuildingID), true
	case model.CmdCombatDrop:
		return model.NewCombatDropCommand(w.TransportID, w.Dest), true
	case model.CmdEnterObject:
		return model.NewEnterObjectCommand(w.HijackerID, w.TargetID), true
	case model.CmdToggleOvercharge:
		return model.NewToggleOverchargeCommand(w.EntityID), true
	case model.CmdPlaceBeacon:
		return model.NewPlaceBeaconCommand(w.Side, w.Position), true
	case model.CmdBeaconDelete:
		return model.NewBeaconDeleteCommand(w.Side), true
	case model.CmdHackInternet:
		return model.NewHackInternetCommand(w.EntityID), true
	case model.CmdExecuteRailedTransport:
		return model.NewExecuteRailedTransportCommand(w.EntityID), true
	case model.CmdIssueSpecialPower:
		cmd := model.NewIssueSpecialPowerCommand(w.SpecialPower, w.SourceID)
		cmd.IssuingEntityIDs = w.IssuingIDs
		cmd.TargetEntityID = w.TargetID
		cmd.TargetPos = w.TargetPos
		return cmd, true
	case model.CmdToggleDemoTrapMode:
		return model.NewToggleDemoTrapModeCommand(w.EntityID), true
	case model.CmdDetonateDemoTrap:
		return model.NewDetonateDemoTrapCommand(w.EntityID), true
	case model.CmdSetPlayerSide:
		return model.NewSetPlayerSideCommand(w.EntityID, w.NewSide), true
	default:
		return nil, false
	}
}

// SnapshotMessage is one frame's entity projection (spec.md Section 6
// "Snapshot schema: entity projection as described in 4.C12").
type SnapshotMessage struct {
	Frame    int64            `json:"frame"`
	Entities []model.Snapshot `json:"entities"`
}

// EventsMessage carries the visual events a frame emitted (spec.md Section
// 6 "visual events as {type, sourceEntityId?, victimEntityId?, position?,
// weaponName?}").
type EventsMessage struct {
	Frame  int64              `json:"frame"`
	Events []model.VisualEvent `json:"events"`
}
