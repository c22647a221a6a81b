package sim

import "github.com/mverberg/broadside/internal/domain/command"

const (
	commandTypeProfileCreate   command.Type = "profile.create"
	commandTypeQuestEmbark     command.Type = "quest.embark"
	commandTypeBattleStart     command.Type = "sys.tactical.battle.start"
	commandTypeHandMulligan    command.Type = "sys.tactical.hand.mulligan"
	commandTypeCardDeploy      command.Type = "sys.tactical.card.deploy"
	commandTypeShipAttack      command.Type = "sys.tactical.ship.attack"
	commandTypeAbilityActivate command.Type = "sys.tactical.ability.activate"
	commandTypeCardDraw        command.Type = "sys.tactical.card.draw"
	commandTypeReserveUse      command.Type = "sys.tactical.reserve.use"
	commandTypeTurnEnd         command.Type = "sys.tactical.turn.end"
)

// Rejection codes the runner treats as "already done" when it replays
// the setup sequence against a journal that has seen a previous run.
const (
	rejectionCodeProfileAlreadyExists = "PROFILE_ALREADY_EXISTS"
	rejectionCodePhaseInvalid         = "PHASE_INVALID"
)
