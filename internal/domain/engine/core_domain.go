package engine

import (
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/game"
)

// CoreDomain bundles the registration hooks that every core domain package
// exports. Adding a new core domain means creating a CoreDomain entry in
// CoreDomains() and wiring its fold function in the aggregate folder; the
// compiler and the startup validators catch the rest.
type CoreDomain struct {
	name                   string
	RegisterCommands       func(*command.Registry) error
	RegisterEvents         func(*event.Registry) error
	EmittableEventTypes    func() []event.Type
	FoldHandledTypes       func() []event.Type
	DeciderHandledCommands func() []command.Type
	ProjectionHandledTypes func() []event.Type
}

// Name returns a human-readable label for error messages and diagnostics.
func (d CoreDomain) Name() string { return d.name }

// CoreDomains returns the authoritative list of core domain registrations.
// BuildRegistries iterates this slice so adding a new domain is a single
// append rather than editing every bootstrap call site.
func CoreDomains() []CoreDomain {
	return []CoreDomain{
		{
			name:                   "game",
			RegisterCommands:       game.RegisterCommands,
			RegisterEvents:         game.RegisterEvents,
			EmittableEventTypes:    game.EmittableEventTypes,
			FoldHandledTypes:       game.FoldHandledTypes,
			DeciderHandledCommands: game.DeciderHandledCommands,
			ProjectionHandledTypes: game.ProjectionHandledTypes,
		},
	}
}
