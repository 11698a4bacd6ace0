package calendar

import (
	"context"
	"time"

	"github.com/calendon/calendon/pkg/candidate"
)

// ExistingEvent is a read-only snapshot of a calendar entry used for
// conflict checks. It is valid only for the duration of one decision pass.
type ExistingEvent struct {
	ID       string
	Summary  string
	Start    time.Time
	End      time.Time
	Timezone string
}

// Calendar is the external calendar collaborator. ListBetween must return
// all events materially overlapping the window, ordered by start time.
type Calendar interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]ExistingEvent, error)
	Insert(ctx context.Context, event candidate.EventCandidate) (string, error)
	Update(ctx context.Context, eventID string, event candidate.EventCandidate) (string, error)
}
