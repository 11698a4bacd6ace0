package audit

import (
	"time"

	"github.com/calendon/calendon/pkg/candidate"
)

// PlanRecord is the stored trail of one decision pass.
type PlanRecord struct {
	TraceID   string
	DecidedAt time.Time
	Entries   []EntryRecord
}

// EntryRecord is one decided candidate as it went into the commit plan.
// Position preserves the generator's ordering within the batch.
type EntryRecord struct {
	Position      int
	Title         string
	Start         time.Time
	End           time.Time
	Timezone      string
	Action        candidate.Action
	TargetEventID string
	Reason        string
	Report        candidate.RepairReport
}

// ResultRecord is the executor outcome for one plan entry.
type ResultRecord struct {
	Position      int
	ActionTaken   candidate.ActionTaken
	TargetEventID string
	Error         string
}

// ApplicationRecord is the stored trail of one commit plan execution.
type ApplicationRecord struct {
	TraceID   string
	DryRun    bool
	AppliedAt time.Time
	Results   []ResultRecord
}

// Trail bundles everything recorded under one trace id.
type Trail struct {
	Plan         PlanRecord
	Applications []ApplicationRecord
}
