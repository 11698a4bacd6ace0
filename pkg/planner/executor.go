package planner

import (
	"context"

	"github.com/calendon/calendon/pkg/calendar"
	"github.com/calendon/calendon/pkg/candidate"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Executor applies commit plan entries against the calendar write
// collaborator. In dry-run mode no write is issued, but a CommitResult
// mirroring the planned action is still produced and logged, so the
// decision logic upstream behaves identically in both modes.
type Executor struct {
	cal    calendar.Calendar
	dryRun bool
}

func NewExecutor(cal calendar.Calendar, dryRun bool) *Executor {
	return &Executor{cal: cal, dryRun: dryRun}
}

func (e *Executor) DryRun() bool { return e.dryRun }

// Apply executes a single plan entry and always returns a result: commit
// failures are reported per entry, never escalated to the batch.
func (e *Executor) Apply(ctx context.Context, entry candidate.CommitPlanEntry) candidate.CommitResult {
	switch entry.Action {
	case candidate.ActionCreate:
		return e.create(ctx, entry)
	case candidate.ActionUpdate:
		return e.update(ctx, entry)
	default:
		return candidate.CommitResult{
			TargetEventID: entry.TargetEventID,
			ActionTaken:   candidate.TakenSkipped,
		}
	}
}

func (e *Executor) create(ctx context.Context, entry candidate.CommitPlanEntry) candidate.CommitResult {
	if e.dryRun {
		id := "dry-run-" + uuid.NewString()
		log.Infof("dry-run: would create event %q (%s - %s)", entry.Candidate.Title, entry.Candidate.Start, entry.Candidate.End)
		return candidate.CommitResult{TargetEventID: id, ActionTaken: candidate.TakenCreated}
	}

	id, err := e.cal.Insert(ctx, entry.Candidate)
	if err != nil {
		log.Errorf("failed to create event %q: %v", entry.Candidate.Title, err)
		return candidate.CommitResult{ActionTaken: candidate.TakenSkipped, Error: err.Error()}
	}
	return candidate.CommitResult{TargetEventID: id, ActionTaken: candidate.TakenCreated}
}

func (e *Executor) update(ctx context.Context, entry candidate.CommitPlanEntry) candidate.CommitResult {
	if e.dryRun {
		log.Infof("dry-run: would update event %s to %q (%s - %s)", entry.TargetEventID, entry.Candidate.Title, entry.Candidate.Start, entry.Candidate.End)
		return candidate.CommitResult{TargetEventID: entry.TargetEventID, ActionTaken: candidate.TakenUpdated}
	}

	id, err := e.cal.Update(ctx, entry.TargetEventID, entry.Candidate)
	if err != nil {
		log.Errorf("failed to update event %s: %v", entry.TargetEventID, err)
		return candidate.CommitResult{TargetEventID: entry.TargetEventID, ActionTaken: candidate.TakenSkipped, Error: err.Error()}
	}
	return candidate.CommitResult{TargetEventID: id, ActionTaken: candidate.TakenUpdated}
}
