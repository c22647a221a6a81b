package engine

import (
	"fmt"
	"strings"

	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/event"
)

// ValidateAggregateFoldDispatch verifies that every core event type declared
// in CoreDomains().FoldHandledTypes is actually wired into the aggregate
// folder's dispatch index.
func ValidateAggregateFoldDispatch(events *event.Registry) error {
	if events == nil {
		return fmt.Errorf("event registry is required for aggregate fold dispatch validation")
	}

	folder := &aggregate.Folder{}
	dispatched := make(map[event.Type]struct{})
	for _, t := range folder.FoldDispatchedTypes() {
		dispatched[t] = struct{}{}
	}

	declared := make(map[event.Type]struct{})
	for _, domain := range CoreDomains() {
		for _, t := range domain.FoldHandledTypes() {
			declared[t] = struct{}{}
		}
	}

	var missing []string
	for t := range declared {
		if _, ok := dispatched[t]; !ok {
			missing = append(missing, string(t))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("core fold types declared but not dispatched by aggregate folder: %s",
			strings.Join(missing, ", "))
	}
	return nil
}
