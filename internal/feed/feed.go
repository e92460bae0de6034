// Package feed carries change notifications for the lobby collections.
// Events say what changed, not the new content; subscribers re-query.
package feed

import "context"

type Op string

const (
	OpAdded   Op = "added"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

type Event struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         Op     `json:"op"`
}

// Bus fans events out to subscribers. Subscribe with no collections receives
// every event. The returned channel is closed once ctx is done.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, collections ...string) (<-chan Event, error)
}

const defaultBuffer = 16

func matcher(collections []string) func(string) bool {
	if len(collections) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(collections))
	for _, c := range collections {
		set[c] = struct{}{}
	}
	return func(c string) bool {
		_, ok := set[c]
		return ok
	}
}
