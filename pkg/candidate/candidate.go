package candidate

import (
	"time"
)

// Action is the commit decision for a single candidate.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// EventCandidate is a proposed calendar event produced by the generator.
// Timezone may be empty until the repair step fills it; after repair
// Start is strictly before End and Timezone is a valid IANA name.
type EventCandidate struct {
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Timezone      string    `json:"timezone,omitempty"`
	Attendees     []string  `json:"attendees,omitempty"`
	Location      string    `json:"location,omitempty"`
	Description   string    `json:"description,omitempty"`
	TargetEventID string    `json:"target_event_id,omitempty"`
	SourceTraceID string    `json:"source_trace_id,omitempty"`
}

// Duration returns the length of the candidate's time window.
func (c EventCandidate) Duration() time.Duration {
	return c.End.Sub(c.Start)
}

// RepairFix records a single value adjustment applied by a repair rule.
type RepairFix struct {
	Field    string `json:"field"`
	Original string `json:"original_value"`
	New      string `json:"new_value"`
	RuleID   string `json:"rule_id"`
}

// RepairReport is the ordered, append-only list of fixes applied to one
// candidate during the repair step.
type RepairReport []RepairFix

// CommitPlanEntry is the decided action for one candidate. Exactly one
// entry is produced per input candidate in a decision pass.
type CommitPlanEntry struct {
	Candidate     EventCandidate `json:"candidate"`
	Action        Action         `json:"action"`
	TargetEventID string         `json:"target_event_id,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Report        RepairReport   `json:"repair_report,omitempty"`
}

// ActionTaken reports what the executor actually did with a plan entry.
type ActionTaken string

const (
	TakenCreated ActionTaken = "created"
	TakenUpdated ActionTaken = "updated"
	TakenSkipped ActionTaken = "skipped"
)

// CommitResult is the executor's outcome for one CommitPlanEntry.
type CommitResult struct {
	TargetEventID string      `json:"target_event_id,omitempty"`
	ActionTaken   ActionTaken `json:"action_taken"`
	Error         string      `json:"error,omitempty"`
}
