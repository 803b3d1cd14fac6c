package model

// Command is the tagged union the host submits each frame (spec.md
// Section 4.C4). Each concrete type below implements Command via Type().
// CommandSource distinguishes player-issued from AI-issued intents so
// NO_ATTACK_FROM_AI can be enforced without re-deriving provenance later.
type Command interface {
	Type() string
}

type CommandSource string

const (
	SourcePlayer CommandSource = "PLAYER"
	SourceAI     CommandSource = "AI"
)

const (
	CmdMove                  = "move"
	CmdAttackEntity          = "attackEntity"
	CmdStop                  = "stop"
	CmdApplyUpgrade          = "applyUpgrade"
	CmdApplyPlayerUpgrade    = "applyPlayerUpgrade"
	CmdQueueUnitProduction   = "queueUnitProduction"
	CmdCancelUnitProduction  = "cancelUnitProduction"
	CmdQueueUpgradeProd      = "queueUpgradeProduction"
	CmdCancelUpgradeProd     = "cancelUpgradeProduction"
	CmdSetSideCredits        = "setSideCredits"
	CmdAddSideCredits        = "addSideCredits"
	CmdGrantSideScience      = "grantSideScience"
	CmdPurchaseScience       = "purchaseScience"
	CmdSetSidePlayerType     = "setSidePlayerType"
	CmdSetTeamRelationship   = "setTeamRelationship"
	CmdCaptureEntity         = "captureEntity"
	CmdConstructBuilding     = "constructBuilding"
	CmdCancelDozerConstruct  = "cancelDozerConstruction"
	CmdRepairBuilding        = "repairBuilding"
	CmdSell                  = "sell"
	CmdEnterTransport        = "enterTransport"
	CmdEvacuate              = "evacuate"
	CmdExitContainer         = "exitContainer"
	CmdGarrisonBuilding      = "garrisonBuilding"
	CmdCombatDrop            = "combatDrop"
	CmdEnterObject           = "enterObject" // hijack
	CmdToggleOvercharge      = "toggleOvercharge"
	CmdPlaceBeacon           = "placeBeacon"
	CmdBeaconDelete          = "beaconDelete"
	CmdHackInternet          = "hackInternet"
	CmdExecuteRailedTransport = "executeRailedTransport"
	CmdIssueSpecialPower     = "issueSpecialPower"
	CmdToggleDemoTrapMode    = "toggleDemoTrapMode"
	CmdDetonateDemoTrap      = "detonateDemoTrap"
	CmdSetPlayerSide         = "setPlayerSide"
)

type baseCmd struct{ T string }

func (b baseCmd) Type() string { return b.T }

type MoveCommand struct {
	baseCmd
	EntityID EntityID
	Dest     Vec3
}

func NewMoveCommand(id EntityID, dest Vec3) MoveCommand {
	return MoveCommand{baseCmd{CmdMove}, id, dest}
}

type AttackEntityCommand struct {
	baseCmd
	Attacker EntityID
	Target   EntityID
	Source   CommandSource
}

func NewAttackEntityCommand(attacker, target EntityID, source CommandSource) AttackEntityCommand {
	return AttackEntityCommand{baseCmd{CmdAttackEntity}, attacker, target, source}
}

type StopCommand struct {
	baseCmd
	EntityID EntityID
}

func NewStopCommand(id EntityID) StopCommand { return StopCommand{baseCmd{CmdStop}, id} }

type ApplyUpgradeCommand struct {
	baseCmd
	EntityID    EntityID
	UpgradeName string
}

func NewApplyUpgradeCommand(id EntityID, upgrade string) ApplyUpgradeCommand {
	return ApplyUpgradeCommand{baseCmd{CmdApplyUpgrade}, id, upgrade}
}

type ApplyPlayerUpgradeCommand struct {
	baseCmd
	Side        string
	UpgradeName string
}

func NewApplyPlayerUpgradeCommand(side, upgrade string) ApplyPlayerUpgradeCommand {
	return ApplyPlayerUpgradeCommand{baseCmd{CmdApplyPlayerUpgrade}, side, upgrade}
}

type QueueUnitProductionCommand struct {
	baseCmd
	ProducerID   EntityID
	TemplateName string
	Quantity     int
}

func NewQueueUnitProductionCommand(producer EntityID, template string, qty int) QueueUnitProductionCommand {
	return QueueUnitProductionCommand{baseCmd{CmdQueueUnitProduction}, producer, template, qty}
}

type CancelUnitProductionCommand struct {
	baseCmd
	ProducerID   EntityID
	ProductionID int
}

func NewCancelUnitProductionCommand(producer EntityID, productionID int) CancelUnitProductionCommand {
	return CancelUnitProductionCommand{baseCmd{CmdCancelUnitProduction}, producer, productionID}
}

type QueueUpgradeProductionCommand struct {
	baseCmd
	ProducerID  EntityID
	UpgradeName string
}

func NewQueueUpgradeProductionCommand(producer EntityID, upgrade string) QueueUpgradeProductionCommand {
	return QueueUpgradeProductionCommand{baseCmd{CmdQueueUpgradeProd}, producer, upgrade}
}

type CancelUpgradeProductionCommand struct {
	baseCmd
	ProducerID  EntityID
	UpgradeName string
}

func NewCancelUpgradeProductionCommand(producer EntityID, upgrade string) CancelUpgradeProductionCommand {
	return CancelUpgradeProductionCommand{baseCmd{CmdCancelUpgradeProd}, producer, upgrade}
}

type SetSideCreditsCommand struct {
	baseCmd
	Side   string
	Amount int64
}

func NewSetSideCreditsCommand(side string, amount int64) SetSideCreditsCommand {
	return SetSideCreditsCommand{baseCmd{CmdSetSideCredits}, side, amount}
}

type AddSideCreditsCommand struct {
	baseCmd
	Side   string
	Amount int64
}

func NewAddSideCreditsCommand(side string, amount int64) AddSideCreditsCommand {
	return AddSideCreditsCommand{baseCmd{CmdAddSideCredits}, side, amount}
}

type GrantSideScienceCommand struct {
	baseCmd
	Side    string
	Science string
}

func NewGrantSideScienceCommand(side, science string) GrantSideScienceCommand {
	return GrantSideScienceCommand{baseCmd{CmdGrantSideScience}, side, science}
}

type PurchaseScienceCommand struct {
	baseCmd
	Side    string
	Science string
}

func NewPurchaseScienceCommand(side, science string) PurchaseScienceCommand {
	return PurchaseScienceCommand{baseCmd{CmdPurchaseScience}, side, science}
}

type SetSidePlayerTypeCommand struct {
	baseCmd
	Side       string
	PlayerType string
}

func NewSetSidePlayerTypeCommand(side, playerType string) SetSidePlayerTypeCommand {
	return SetSidePlayerTypeCommand{baseCmd{CmdSetSidePlayerType}, side, playerType}
}

type SetTeamRelationshipCommand struct {
	baseCmd
	Side         string
	OtherSide    string
	Relationship int
}

func NewSetTeamRelationshipCommand(side, other string, rel int) SetTeamRelationshipCommand {
	return SetTeamRelationshipCommand{baseCmd{CmdSetTeamRelationship}, side, other, rel}
}

type CaptureEntityCommand struct {
	baseCmd
	CapturerID EntityID
	TargetID   EntityID
}

func NewCaptureEntityCommand(capturer, target EntityID) CaptureEntityCommand {
	return CaptureEntityCommand{baseCmd{CmdCaptureEntity}, capturer, target}
}

type ConstructBuildingCommand struct {
	baseCmd
	DozerID      EntityID
	TemplateName string
	Position     Vec3
	LineEnd      *Vec3
}

func NewConstructBuildingCommand(dozer EntityID, template string, pos Vec3) ConstructBuildingCommand {
	return ConstructBuildingCommand{baseCmd{CmdConstructBuilding}, dozer, template, pos, nil}
}

type CancelDozerConstructionCommand struct {
	baseCmd
	BuildingID EntityID
}

func NewCancelDozerConstructionCommand(id EntityID) CancelDozerConstructionCommand {
	return CancelDozerConstructionCommand{baseCmd{CmdCancelDozerConstruct}, id}
}

type RepairBuildingCommand struct {
	baseCmd
	DozerID    EntityID
	BuildingID EntityID
}

func NewRepairBuildingCommand(dozer, building EntityID) RepairBuildingCommand {
	return RepairBuildingCommand{baseCmd{CmdRepairBuilding}, dozer, building}
}

type SellCommand struct {
	baseCmd
	EntityID EntityID
}

func NewSellCommand(id EntityID) SellCommand { return SellCommand{baseCmd{CmdSell}, id} }

type EnterTransportCommand struct {
	baseCmd
	PassengerID EntityID
	TransportID EntityID
}

func NewEnterTransportCommand(passenger, transport EntityID) EnterTransportCommand {
	return EnterTransportCommand{baseCmd{CmdEnterTransport}, passenger, transport}
}

type EvacuateCommand struct {
	baseCmd
	ContainerID EntityID
}

func NewEvacuateCommand(id EntityID) EvacuateCommand { return EvacuateCommand{baseCmd{CmdEvacuate}, id} }

type ExitContainerCommand struct {
	baseCmd
	PassengerID EntityID
}

func NewExitContainerCommand(id EntityID) ExitContainerCommand {
	return ExitContainerCommand{baseCmd{CmdExitContainer}, id}
}

type GarrisonBuildingCommand struct {
	baseCmd
	PassengerID EntityID
	BuildingID  EntityID
}

func NewGarrisonBuildingCommand(passenger, building EntityID) GarrisonBuildingCommand {
	return GarrisonBuildingCommand{baseCmd{CmdGarrisonBuilding}, passenger, building}
}

type CombatDropCommand struct {
	baseCmd
	TransportID EntityID
	Dest        Vec3
}

func NewCombatDropCommand(transport EntityID, dest Vec3) CombatDropCommand {
	return CombatDropCommand{baseCmd{CmdCombatDrop}, transport, dest}
}

type EnterObjectCommand struct {
	baseCmd
	HijackerID EntityID
	TargetID   EntityID
}

func NewEnterObjectCommand(hijacker, target EntityID) EnterObjectCommand {
	return EnterObjectCommand{baseCmd{CmdEnterObject}, hijacker, target}
}

type ToggleOverchargeCommand struct {
	baseCmd
	EntityID EntityID
}

func NewToggleOverchargeCommand(id EntityID) ToggleOverchargeCommand {
	return ToggleOverchargeCommand{baseCmd{CmdToggleOvercharge}, id}
}

type PlaceBeaconCommand struct {
	baseCmd
	Side string
	Pos  Vec3
}

func NewPlaceBeaconCommand(side string, pos Vec3) PlaceBeaconCommand {
	return PlaceBeaconCommand{baseCmd{CmdPlaceBeacon}, side, pos}
}

type BeaconDeleteCommand struct {
	baseCmd
	Side string
}

func NewBeaconDeleteCommand(side string) BeaconDeleteCommand {
	return BeaconDeleteCommand{baseCmd{CmdBeaconDelete}, side}
}

type HackInternetCommand struct {
	baseCmd
	EntityID EntityID
}

func NewHackInternetCommand(id EntityID) HackInternetCommand {
	return HackInternetCommand{baseCmd{CmdHackInternet}, id}
}

type ExecuteRailedTransportCommand struct {
	baseCmd
	EntityID EntityID
}

func NewExecuteRailedTransportCommand(id EntityID) ExecuteRailedTransportCommand {
	return ExecuteRailedTransportCommand{baseCmd{CmdExecuteRailedTransport}, id}
}

// IssueSpecialPowerCommand. SourceEntityID, if zero, falls back to
// IssuingEntityIDs[0] per spec.md Section 4.C10.
type IssueSpecialPowerCommand struct {
	baseCmd
	SpecialPowerName string
	SourceEntityID   EntityID
	IssuingEntityIDs []EntityID
	TargetEntityID   EntityID
	TargetPos        *Vec3
}

func NewIssueSpecialPowerCommand(name string, source EntityID) IssueSpecialPowerCommand {
	return IssueSpecialPowerCommand{baseCmd: baseCmd{CmdIssueSpecialPower}, SpecialPowerName: name, SourceEntityID: source}
}

type ToggleDemoTrapModeCommand struct {
	baseCmd
	EntityID EntityID
}

func NewToggleDemoTrapModeCommand(id EntityID) ToggleDemoTrapModeCommand {
	return ToggleDemoTrapModeCommand{baseCmd{CmdToggleDemoTrapMode}, id}
}

type DetonateDemoTrapCommand struct {
	baseCmd
	EntityID EntityID
}

func NewDetonateDemoTrapCommand(id EntityID) DetonateDemoTrapCommand {
	return DetonateDemoTrapCommand{baseCmd{CmdDetonateDemoTrap}, id}
}

type SetPlayerSideCommand struct {
	baseCmd
	EntityID EntityID
	NewSide  string
}

func NewSetPlayerSideCommand(id EntityID, side string) SetPlayerSideCommand {
	return SetPlayerSideCommand{baseCmd{CmdSetPlayerSide}, id, side}
}
