package engine

import (
	"fmt"
	"strings"

	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/game"
)

const rejectionCodeBattleActive = "BATTLE_ACTIVE"

// DecisionGate enforces battle gate policy before command decisions run.
//
// While a battle is in progress the outer game is frozen: collection and
// quest commands wait until the battle resolves, and a second battle
// cannot start. Tactical commands opt out via AllowWhenActive.
type DecisionGate struct {
	Registry *command.Registry
}

// Check returns a rejection when the active battle blocks the command.
//
// Gate evaluation is centralized so domain packages declare a GatePolicy on
// their definitions and policy enforcement stays consistent across commands.
func (g DecisionGate) Check(state game.State, cmd command.Command) command.Decision {
	if g.Registry == nil {
		return command.Decision{}
	}
	def, ok := g.Registry.Definition(cmd.Type)
	if !ok {
		return command.Decision{}
	}
	if def.Gate.Scope != command.GateScopeBattle {
		return command.Decision{}
	}
	if def.Gate.AllowWhenActive || state.CurrentPhase() != game.PhaseBattling {
		return command.Decision{}
	}
	message := "a battle is in progress"
	if questID := strings.TrimSpace(state.ActiveQuestID); questID != "" {
		message = fmt.Sprintf("a battle is in progress during quest %s", questID)
	}
	return command.Reject(command.Rejection{
		Code:    rejectionCodeBattleActive,
		Message: message,
	})
}
