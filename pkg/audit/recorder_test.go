package audit

import (
	"context"
	"testing"
	"time"

	"github.com/calendon/calendon/internal/event_bus"
	"github.com/calendon/calendon/internal/utils"
	"github.com/calendon/calendon/pkg/candidate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, time.March, 10, 7, 0, 0, 0, time.UTC)

	newRecorder := func() (*RepositoryStub, *event_bus.EventBus) {
		repo := NewRepositoryStub()
		bus := event_bus.NewEventBus()
		NewRecorder(repo, &utils.MockClock{FixedNow: now}).Observe(bus)
		return repo, bus
	}

	t.Run("records a decided plan with entry positions", func(t *testing.T) {
		repo, bus := newRecorder()

		bus.Publish(event_bus.NewEvent(ctx, event_bus.PlanDecidedEvent, event_bus.PlanDecided{
			TraceID: "trace-1",
			Entries: []candidate.CommitPlanEntry{
				{
					Candidate: candidate.EventCandidate{Title: "Deep Work", Start: start, End: start.Add(time.Hour), Timezone: "UTC"},
					Action:    candidate.ActionCreate,
					Report:    candidate.RepairReport{{Field: "timezone", New: "UTC", RuleID: "timezone_fill"}},
				},
				{
					Candidate: candidate.EventCandidate{Title: "Standup"},
					Action:    candidate.ActionSkip,
					Reason:    "no free slot",
				},
			},
		}))

		trail, err := repo.GetTrail(ctx, "trace-1")
		require.NoError(t, err)
		assert.Equal(t, now, trail.Plan.DecidedAt)
		require.Len(t, trail.Plan.Entries, 2)
		assert.Equal(t, 0, trail.Plan.Entries[0].Position)
		assert.Equal(t, candidate.ActionCreate, trail.Plan.Entries[0].Action)
		assert.Len(t, trail.Plan.Entries[0].Report, 1)
		assert.Equal(t, 1, trail.Plan.Entries[1].Position)
		assert.Equal(t, "no free slot", trail.Plan.Entries[1].Reason)
	})

	t.Run("records every execution of a plan", func(t *testing.T) {
		repo, bus := newRecorder()

		bus.Publish(event_bus.NewEvent(ctx, event_bus.PlanDecidedEvent, event_bus.PlanDecided{TraceID: "trace-2"}))
		bus.Publish(event_bus.NewEvent(ctx, event_bus.PlanAppliedEvent, event_bus.PlanApplied{
			TraceID: "trace-2",
			DryRun:  true,
			Results: []candidate.CommitResult{{ActionTaken: candidate.TakenCreated, TargetEventID: "dry-run-1"}},
		}))
		bus.Publish(event_bus.NewEvent(ctx, event_bus.PlanAppliedEvent, event_bus.PlanApplied{
			TraceID: "trace-2",
			Results: []candidate.CommitResult{{ActionTaken: candidate.TakenCreated, TargetEventID: "ev-1"}},
		}))

		trail, err := repo.GetTrail(ctx, "trace-2")
		require.NoError(t, err)
		require.Len(t, trail.Applications, 2)
		assert.True(t, trail.Applications[0].DryRun)
		assert.False(t, trail.Applications[1].DryRun)
		require.Len(t, trail.Applications[1].Results, 1)
		assert.Equal(t, "ev-1", trail.Applications[1].Results[0].TargetEventID)
	})

	t.Run("unknown trace reports not found", func(t *testing.T) {
		repo, _ := newRecorder()

		_, err := repo.GetTrail(ctx, "missing")
		assert.ErrorIs(t, err, ErrTrailNotFound)
	})
}
