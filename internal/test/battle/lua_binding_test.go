//go:build scenario

package battle

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/mverberg/broadside/internal/catalog"
)

const (
	scenarioTypeName      = "scenario"
	commandActionTypeName = "command_action"
)

type Scenario struct {
	Name  string
	Steps []Step
}

type Step struct {
	Kind string
	Args map[string]any
}

// commandAction lets a script amend the step it came from, so a command
// can be marked as an expected rejection or an expected validation
// failure with a trailing method call.
type commandAction struct {
	scenario  *Scenario
	stepIndex int
}

func loadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	registerScenarioType(state)
	registerCommandActionType(state)
	registerScenarioConstructor(state)
	registerDeckHelpers(state)
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerCommandActionType(state *lua.State) {
	lua.NewMetaTable(state, commandActionTypeName)
	state.NewTable()
	lua.SetFunctions(state, commandActionMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

func registerDeckHelpers(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, deckHelpers, 0)
	state.SetGlobal("Decks")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

var deckHelpers = []lua.RegistryFunction{
	{Name: "starter", Function: starterDeckHelper},
}

// starterDeckHelper returns the starter collection as a fresh Lua array
// so scripts can slice or corrupt a copy without touching the catalog.
func starterDeckHelper(state *lua.State) int {
	ids := catalog.StarterCardIDs()
	state.CreateTable(len(ids), 0)
	for i, id := range ids {
		state.PushString(id)
		state.RawSetInt(-2, i+1)
	}
	return 1
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "profile", Function: scenarioProfile},
	{Name: "grant_cards", Function: scenarioGrantCards},
	{Name: "embark", Function: scenarioEmbark},
	{Name: "abandon", Function: scenarioAbandon},
	{Name: "start_battle", Function: scenarioStartBattle},
	{Name: "mulligan", Function: scenarioMulligan},
	{Name: "deploy", Function: scenarioDeploy},
	{Name: "deploy_any", Function: scenarioDeployAny},
	{Name: "attack", Function: scenarioAttack},
	{Name: "ability", Function: scenarioAbility},
	{Name: "move", Function: scenarioMove},
	{Name: "draw", Function: scenarioDraw},
	{Name: "use_reserve", Function: scenarioUseReserve},
	{Name: "end_turn", Function: scenarioEndTurn},
	{Name: "auto_play", Function: scenarioAutoPlay},
	{Name: "expect_phase", Function: scenarioExpectPhase},
	{Name: "expect_battle", Function: scenarioExpectBattle},
	{Name: "expect_combatant", Function: scenarioExpectCombatant},
	{Name: "expect_winner", Function: scenarioExpectWinner},
	{Name: "expect_stats", Function: scenarioExpectStats},
	{Name: "verify_journal", Function: scenarioVerifyJournal},
	{Name: "replay", Function: scenarioReplay},
}

func scenarioProfile(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	return appendCommandStep(state, scenario, "profile", map[string]any{"name": name})
}

func scenarioGrantCards(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	return appendCommandStep(state, scenario, "grant_cards", data)
}

func scenarioEmbark(state *lua.State) int {
	scenario := checkScenario(state)
	quest := lua.CheckString(state, 2)
	return appendCommandStep(state, scenario, "embark", map[string]any{"quest": quest})
}

func scenarioAbandon(state *lua.State) int {
	scenario := checkScenario(state)
	return appendCommandStep(state, scenario, "abandon", optionalTable(state, 2))
}

func scenarioStartBattle(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	return appendCommandStep(state, scenario, "start_battle", data)
}

func scenarioMulligan(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	return appendCommandStep(state, scenario, "mulligan", data)
}

func scenarioDeploy(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	return appendCommandStep(state, scenario, "deploy", data)
}

func scenarioDeployAny(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	return appendCommandStep(state, scenario, "deploy_any", data)
}

func scenarioAttack(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	return appendCommandStep(state, scenario, "attack", data)
}

func scenarioAbility(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	return appendCommandStep(state, scenario, "ability", data)
}

func scenarioMove(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	return appendCommandStep(state, scenario, "move", data)
}

func scenarioDraw(state *lua.State) int {
	scenario := checkScenario(state)
	return appendCommandStep(state, scenario, "draw", optionalTable(state, 2))
}

func scenarioUseReserve(state *lua.State) int {
	scenario := checkScenario(state)
	return appendCommandStep(state, scenario, "use_reserve", optionalTable(state, 2))
}

func scenarioEndTurn(state *lua.State) int {
	scenario := checkScenario(state)
	return appendCommandStep(state, scenario, "end_turn", optionalTable(state, 2))
}

func scenarioAutoPlay(state *lua.State) int {
	scenario := checkScenario(state)
	return appendCommandStep(state, scenario, "auto_play", optionalTable(state, 2))
}

func scenarioExpectPhase(state *lua.State) int {
	scenario := checkScenario(state)
	phase := lua.CheckString(state, 2)
	appendStep(scenario, "expect_phase", map[string]any{"phase": phase})
	return 0
}

func scenarioExpectBattle(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, "expect_battle", data)
	return 0
}

func scenarioExpectCombatant(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, "expect_combatant", data)
	return 0
}

func scenarioExpectWinner(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_winner", optionalTable(state, 2))
	return 0
}

func scenarioExpectStats(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, "expect_stats", data)
	return 0
}

func scenarioVerifyJournal(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "verify_journal", nil)
	return 0
}

func scenarioReplay(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "replay", nil)
	return 0
}

var commandActionMethods = []lua.RegistryFunction{
	{Name: "rejected", Function: commandActionRejected},
	{Name: "invalid", Function: commandActionInvalid},
}

// commandActionRejected flips the originating step from "must be
// accepted" to "must be rejected with this code".
func commandActionRejected(state *lua.State) int {
	action := checkCommandAction(state)
	code := lua.CheckString(state, 2)
	amendStep(state, action, "reject", code)
	return 0
}

// commandActionInvalid marks the step as a payload the command registry
// refuses outright, before any decision is made.
func commandActionInvalid(state *lua.State) int {
	action := checkCommandAction(state)
	amendStep(state, action, "invalid", true)
	return 0
}

func checkCommandAction(state *lua.State) *commandAction {
	ud := lua.CheckUserData(state, 1, commandActionTypeName)
	if action, ok := ud.(*commandAction); ok && action != nil {
		return action
	}
	lua.ArgumentError(state, 1, "command action expected")
	return nil
}

func amendStep(state *lua.State, action *commandAction, key string, value any) {
	if action.stepIndex < 0 || action.stepIndex >= len(action.scenario.Steps) {
		lua.Errorf(state, "command action is out of range")
		return
	}
	step := &action.scenario.Steps[action.stepIndex]
	if step.Args == nil {
		step.Args = map[string]any{}
	}
	step.Args[key] = value
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendCommandStep(state *lua.State, scenario *Scenario, kind string, data map[string]any) int {
	stepIndex := appendStep(scenario, kind, data)
	state.PushUserData(&commandAction{scenario: scenario, stepIndex: stepIndex})
	lua.SetMetaTableNamed(state, commandActionTypeName)
	return 1
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	case lua.TypeUserData:
		return state.ToUserData(index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
