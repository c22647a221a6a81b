package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/mverberg/broadside/internal/catalog"
	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/battle"
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/engine"
	"github.com/mverberg/broadside/internal/domain/game"
	"github.com/mverberg/broadside/internal/i18n"
)

// CommandExecutor runs one command against the journal and returns the
// decision plus the folded state. *engine.Handler satisfies it.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd command.Command) (engine.Result, error)
}

// DefaultFlagshipHull is the demo flagship hull when the config leaves
// it unset.
const DefaultFlagshipHull = 20

// maxMatchCommands backstops a policy that stops making progress. A
// default match resolves in well under half of this.
const maxMatchCommands = 1000

// MatchConfig describes one scripted match.
type MatchConfig struct {
	GameID     string
	PlayerName string
	QuestID    string
	// Seed drives shuffles and initiative. Zero lets the decider pick
	// the clock, losing reproducibility.
	Seed int64
	// PlayerDeck and OpponentDeck default to the starter collection.
	PlayerDeck   []string
	OpponentDeck []string
	// Flagship hulls default to DefaultFlagshipHull.
	PlayerFlagshipHull   int
	OpponentFlagshipHull int
	// RoundLimit zero defers to the battle rule default.
	RoundLimit int
}

func (cfg MatchConfig) withDefaults() MatchConfig {
	if cfg.PlayerName == "" {
		cfg.PlayerName = "Captain"
	}
	if cfg.QuestID == "" {
		cfg.QuestID = "first-sortie"
	}
	if len(cfg.PlayerDeck) == 0 {
		cfg.PlayerDeck = catalog.StarterCardIDs()
	}
	if len(cfg.OpponentDeck) == 0 {
		cfg.OpponentDeck = catalog.StarterCardIDs()
	}
	if cfg.PlayerFlagshipHull == 0 {
		cfg.PlayerFlagshipHull = DefaultFlagshipHull
	}
	if cfg.OpponentFlagshipHull == 0 {
		cfg.OpponentFlagshipHull = DefaultFlagshipHull
	}
	return cfg
}

// MatchResult summarizes a resolved scripted match.
type MatchResult struct {
	BattleID string                  `json:"battle_id"`
	Winner   battle.Winner           `json:"winner"`
	Victory  battle.VictoryCondition `json:"victory_condition"`
	Turns    int                     `json:"turns"`
	// Flagship hull remaining per side at resolution.
	PlayerHull   int `json:"player_hull"`
	OpponentHull int `json:"opponent_hull"`
	// Ships each side destroyed.
	PlayerShipsDestroyed   int `json:"player_ships_destroyed"`
	OpponentShipsDestroyed int `json:"opponent_ships_destroyed"`
	// Commands counts every command issued including setup;
	// CommandsRejected is the subset the decider refused.
	Commands         int `json:"commands"`
	CommandsRejected int `json:"commands_rejected"`
	// Stats is the profile's lifetime record after this battle folded.
	Stats game.Stats `json:"stats"`
}

// Runner plays scripted matches through a CommandExecutor.
type Runner struct {
	Executor CommandExecutor
	// Policy defaults to ScriptedPolicy.
	Policy Policy
	// Trace, when set, receives one line per command.
	Trace io.Writer
}

// RunMatch drives one match to resolution: create the profile, embark
// on the quest, start the battle, take both mulligans, then alternate
// policy turns until the battle resolves. Profile and quest commands
// tolerate "already done" rejections so a seeded game can host repeat
// matches; a battle already in progress is an error.
func (r *Runner) RunMatch(ctx context.Context, cfg MatchConfig) (MatchResult, error) {
	if r.Executor == nil {
		return MatchResult{}, fmt.Errorf("sim: executor is required")
	}
	cfg = cfg.withDefaults()
	if cfg.GameID == "" {
		return MatchResult{}, fmt.Errorf("sim: game id is required")
	}
	policy := r.Policy
	if policy == nil {
		policy = ScriptedPolicy{}
	}

	run := &matchRun{runner: r, cfg: cfg}

	if err := run.setUpProfile(ctx); err != nil {
		return MatchResult{}, err
	}
	state, err := run.startBattle(ctx)
	if err != nil {
		return MatchResult{}, err
	}
	if state, err = run.takeMulligans(ctx, policy, state); err != nil {
		return MatchResult{}, err
	}
	final, err := run.playTurns(ctx, policy, state)
	if err != nil {
		return MatchResult{}, err
	}

	return MatchResult{
		BattleID:               final.battle.BattleID,
		Winner:                 final.battle.Winner,
		Victory:                final.battle.Victory,
		Turns:                  final.battle.TurnNumber,
		PlayerHull:             final.battle.Player.FlagshipHull,
		OpponentHull:           final.battle.Opponent.FlagshipHull,
		PlayerShipsDestroyed:   final.battle.Player.ShipsDestroyed,
		OpponentShipsDestroyed: final.battle.Opponent.ShipsDestroyed,
		Commands:               run.commands,
		CommandsRejected:       run.rejected,
		Stats:                  final.game.Stats,
	}, nil
}

// matchRun carries per-match identity and counters so a single Runner
// can serve concurrent matches.
type matchRun struct {
	runner   *Runner
	cfg      MatchConfig
	battleID string
	commands int
	rejected int
}

// finalState pairs the battle outcome with the profile state folded
// from the same resolution batch.
type finalState struct {
	battle *battle.State
	game   game.State
}

func (m *matchRun) setUpProfile(ctx context.Context) error {
	cmd, err := m.coreCommand(commandTypeProfileCreate, game.ProfileCreatePayload{PlayerName: m.cfg.PlayerName})
	if err != nil {
		return err
	}
	_, rejection, err := m.issue(ctx, cmd)
	if err != nil {
		return err
	}
	if rejection != nil && rejection.Code != rejectionCodeProfileAlreadyExists {
		return fmt.Errorf("sim: create profile: %s: %s", rejection.Code, rejectionText(*rejection))
	}

	cmd, err = m.coreCommand(commandTypeQuestEmbark, game.QuestEmbarkPayload{QuestID: m.cfg.QuestID})
	if err != nil {
		return err
	}
	_, rejection, err = m.issue(ctx, cmd)
	if err != nil {
		return err
	}
	if rejection != nil && rejection.Code != rejectionCodePhaseInvalid {
		return fmt.Errorf("sim: embark on quest: %s: %s", rejection.Code, rejectionText(*rejection))
	}
	return nil
}

func (m *matchRun) startBattle(ctx context.Context) (*battle.State, error) {
	cmd, err := m.battleCommand(battle.SidePlayer, commandTypeBattleStart, battle.BattleStartPayload{
		QuestID:              m.cfg.QuestID,
		DeckCardIDs:          m.cfg.PlayerDeck,
		OpponentDeckCardIDs:  m.cfg.OpponentDeck,
		PlayerFlagshipHull:   m.cfg.PlayerFlagshipHull,
		OpponentFlagshipHull: m.cfg.OpponentFlagshipHull,
		RoundLimit:           m.cfg.RoundLimit,
		Seed:                 m.cfg.Seed,
	})
	if err != nil {
		return nil, err
	}
	result, rejection, err := m.issue(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		return nil, fmt.Errorf("sim: start battle: %s: %s", rejection.Code, rejectionText(*rejection))
	}
	state, err := battleStateOf(result)
	if err != nil {
		return nil, err
	}
	m.battleID = state.BattleID
	return state, nil
}

func (m *matchRun) takeMulligans(ctx context.Context, policy Policy, state *battle.State) (*battle.State, error) {
	for _, side := range []battle.Side{battle.SidePlayer, battle.SideOpponent} {
		if state.Phase != battle.PhaseMulligan || state.Combatant(side).MulliganTaken {
			continue
		}
		cmd, err := m.battleCommand(side, commandTypeHandMulligan, battle.HandMulliganPayload{
			Combatant: side,
			CardIDs:   policy.MulliganCards(state, side),
			Seed:      mulliganSeed(m.cfg.Seed, side),
		})
		if err != nil {
			return nil, err
		}
		result, rejection, err := m.issue(ctx, cmd)
		if err != nil {
			return nil, err
		}
		if rejection != nil {
			return nil, fmt.Errorf("sim: %s mulligan: %s: %s", side, rejection.Code, rejectionText(*rejection))
		}
		if state, err = battleStateOf(result); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (m *matchRun) playTurns(ctx context.Context, policy Policy, state *battle.State) (finalState, error) {
	var last engine.Result
	for state.Active() {
		if err := ctx.Err(); err != nil {
			return finalState{}, err
		}
		if m.commands >= maxMatchCommands {
			return finalState{}, fmt.Errorf("sim: match exceeded %d commands without resolving", maxMatchCommands)
		}
		side := state.ActiveSide
		action := policy.NextAction(state, side)
		cmd, err := m.battleCommand(side, action.Type, action.Payload)
		if err != nil {
			return finalState{}, err
		}
		result, rejection, err := m.issue(ctx, cmd)
		if err != nil {
			return finalState{}, err
		}
		if rejection != nil {
			if action.Type == commandTypeTurnEnd {
				return finalState{}, fmt.Errorf("sim: %s turn end rejected: %s: %s", side, rejection.Code, rejectionText(*rejection))
			}
			// The policy proposed an illegal move; forfeit the rest
			// of the turn instead of spinning on it.
			cmd, err = m.battleCommand(side, commandTypeTurnEnd, battle.TurnEndPayload{Combatant: side})
			if err != nil {
				return finalState{}, err
			}
			if result, rejection, err = m.issue(ctx, cmd); err != nil {
				return finalState{}, err
			}
			if rejection != nil {
				return finalState{}, fmt.Errorf("sim: %s forfeit turn end rejected: %s: %s", side, rejection.Code, rejectionText(*rejection))
			}
		}
		last = result
		if state, err = battleStateOf(result); err != nil {
			return finalState{}, err
		}
	}
	if state.Phase != battle.PhaseResolved {
		return finalState{}, fmt.Errorf("sim: battle left the active phase as %s, want %s", state.Phase, battle.PhaseResolved)
	}
	snapshot, err := aggregate.AssertState[aggregate.State](last.State)
	if err != nil {
		return finalState{}, fmt.Errorf("sim: final state: %w", err)
	}
	return finalState{battle: state, game: snapshot.Game}, nil
}

// issue executes one command, counts it, and surfaces the first
// rejection separately from infrastructure errors.
func (m *matchRun) issue(ctx context.Context, cmd command.Command) (engine.Result, *command.Rejection, error) {
	result, err := m.runner.Executor.Execute(ctx, cmd)
	if err != nil {
		return engine.Result{}, nil, fmt.Errorf("sim: execute %s: %w", cmd.Type, err)
	}
	m.commands++
	if len(result.Decision.Rejections) > 0 {
		rejection := result.Decision.Rejections[0]
		m.rejected++
		m.tracef("%s rejected %s: %s", cmd.Type, rejection.Code, rejectionText(rejection))
		return result, &rejection, nil
	}
	m.tracef("%s accepted, %d event(s)", cmd.Type, len(result.Decision.Events))
	return result, nil, nil
}

func (m *matchRun) coreCommand(cmdType command.Type, payload any) (command.Command, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return command.Command{}, fmt.Errorf("sim: marshal %s payload: %w", cmdType, err)
	}
	return command.Command{
		GameID:      m.cfg.GameID,
		Type:        cmdType,
		ActorType:   command.ActorTypePlayer,
		ActorID:     "sim",
		RequestID:   uuid.NewString(),
		PayloadJSON: body,
	}, nil
}

func (m *matchRun) battleCommand(side battle.Side, cmdType command.Type, payload any) (command.Command, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return command.Command{}, fmt.Errorf("sim: marshal %s payload: %w", cmdType, err)
	}
	actorType, actorID := command.ActorTypePlayer, "sim"
	if side == battle.SideOpponent {
		actorType, actorID = command.ActorTypeOpponent, "sim-opponent"
	}
	return command.Command{
		GameID:        m.cfg.GameID,
		Type:          cmdType,
		ActorType:     actorType,
		ActorID:       actorID,
		BattleID:      m.battleID,
		RequestID:     uuid.NewString(),
		SystemID:      battle.SystemID,
		SystemVersion: battle.SystemVersion,
		PayloadJSON:   body,
	}, nil
}

func (m *matchRun) tracef(format string, args ...any) {
	if m.runner.Trace == nil {
		return
	}
	fmt.Fprintf(m.runner.Trace, format+"\n", args...)
}

// rejectionText renders the human-readable line for rejections on trace
// and error surfaces, falling back through the decider's own message.
func rejectionText(rejection command.Rejection) string {
	return i18n.RejectionText("", rejection)
}

// mulliganSeed derives per-side mulligan seeds from the match seed so
// a reshuffling policy stays reproducible. Zero stays zero.
func mulliganSeed(seed int64, side battle.Side) int64 {
	if seed == 0 {
		return 0
	}
	if side == battle.SideOpponent {
		return seed + 2
	}
	return seed + 1
}

func battleStateOf(result engine.Result) (*battle.State, error) {
	snapshot, err := aggregate.AssertState[aggregate.State](result.State)
	if err != nil {
		return nil, fmt.Errorf("sim: battle state: %w", err)
	}
	raw := snapshot.SystemState(battle.SystemID, battle.SystemVersion)
	switch typed := raw.(type) {
	case *battle.State:
		if typed != nil {
			return typed, nil
		}
	case battle.State:
		return &typed, nil
	}
	return nil, fmt.Errorf("sim: battle state missing from snapshot (%T)", raw)
}
