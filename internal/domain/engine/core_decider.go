package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/game"
	"github.com/mverberg/broadside/internal/domain/module"
)

const (
	rejectionCodeStateInvalid  = "STATE_INVALID"
	rejectionCodeSystemRouting = "SYSTEM_ROUTING_FAILED"
)

// CoreDecider routes validated commands to the core game decider or to the
// battle-system module addressed by the command's system metadata.
type CoreDecider struct {
	Systems *module.Registry
}

// NewCoreDecider builds the composite decider used by the write path.
func NewCoreDecider(systems *module.Registry) (CoreDecider, error) {
	if systems == nil {
		return CoreDecider{}, errors.New("system module registry is required")
	}
	return CoreDecider{Systems: systems}, nil
}

// Decide dispatches the command and returns the resulting decision.
//
// Commands with system metadata go through the module registry; everything
// else is offered to the core decider. A command no decider claims rejects
// rather than silently producing an empty decision.
func (d CoreDecider) Decide(state any, cmd command.Command, now func() time.Time) command.Decision {
	snapshot, err := aggregate.AssertState[aggregate.State](state)
	if err != nil {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeStateInvalid,
			Message: err.Error(),
		})
	}
	if cmd.SystemID != "" || cmd.SystemVersion != "" {
		decision, err := module.RouteCommand(d.Systems, snapshot, cmd, now)
		if err != nil {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeSystemRouting,
				Message: err.Error(),
			})
		}
		return decision
	}
	decision := game.Decide(snapshot.Game, cmd, now)
	if len(decision.Events) == 0 && len(decision.Rejections) == 0 {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodeCommandTypeUnsupported,
			Message: fmt.Sprintf("command type %s is not supported by the core decider", cmd.Type),
		})
	}
	return decision
}
