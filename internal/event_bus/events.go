package event_bus

import (
	"github.com/calendon/calendon/pkg/candidate"
)

const (
	PlanDecidedEvent EventType = "plan.decided"
	PlanAppliedEvent EventType = "plan.applied"
)

// PlanDecided is published after a decision pass produced a commit plan.
type PlanDecided struct {
	TraceID string
	Entries []candidate.CommitPlanEntry
}

// PlanApplied is published after the executor processed a commit plan.
type PlanApplied struct {
	TraceID string
	DryRun  bool
	Results []candidate.CommitResult
}
