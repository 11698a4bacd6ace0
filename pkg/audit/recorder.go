package audit

import (
	"github.com/calendon/calendon/internal/event_bus"
	"github.com/calendon/calendon/internal/utils"
	"github.com/calendon/calendon/pkg/candidate"
)

// Recorder persists decided plans and their execution results as they are
// published on the application event bus.
type Recorder struct {
	repo  Repository
	clock utils.Clock
}

func NewRecorder(repo Repository, clock utils.Clock) *Recorder {
	return &Recorder{repo: repo, clock: clock}
}

// Observe wires the recorder to the application event bus.
func (r *Recorder) Observe(bus *event_bus.EventBus) {
	bus.Subscribe(event_bus.PlanDecidedEvent, func(e event_bus.Event) error {
		decided, ok := e.Data.(event_bus.PlanDecided)
		if !ok {
			return nil
		}
		return r.repo.StorePlan(e.Context(), r.toPlanRecord(decided))
	})

	bus.Subscribe(event_bus.PlanAppliedEvent, func(e event_bus.Event) error {
		applied, ok := e.Data.(event_bus.PlanApplied)
		if !ok {
			return nil
		}
		return r.repo.StoreApplication(e.Context(), r.toApplicationRecord(applied))
	})
}

func (r *Recorder) toPlanRecord(decided event_bus.PlanDecided) PlanRecord {
	entries := make([]EntryRecord, 0, len(decided.Entries))
	for i, entry := range decided.Entries {
		entries = append(entries, EntryRecord{
			Position:      i,
			Title:         entry.Candidate.Title,
			Start:         entry.Candidate.Start,
			End:           entry.Candidate.End,
			Timezone:      entry.Candidate.Timezone,
			Action:        entry.Action,
			TargetEventID: entry.TargetEventID,
			Reason:        entry.Reason,
			Report:        entry.Report,
		})
	}
	return PlanRecord{
		TraceID:   decided.TraceID,
		DecidedAt: r.clock.Now(),
		Entries:   entries,
	}
}

func (r *Recorder) toApplicationRecord(applied event_bus.PlanApplied) ApplicationRecord {
	results := make([]ResultRecord, 0, len(applied.Results))
	for i, result := range applied.Results {
		results = append(results, toResultRecord(i, result))
	}
	return ApplicationRecord{
		TraceID:   applied.TraceID,
		DryRun:    applied.DryRun,
		AppliedAt: r.clock.Now(),
		Results:   results,
	}
}

func toResultRecord(position int, result candidate.CommitResult) ResultRecord {
	return ResultRecord{
		Position:      position,
		ActionTaken:   result.ActionTaken,
		TargetEventID: result.TargetEventID,
		Error:         result.Error,
	}
}
