package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/calendon/calendon/internal/event_bus"
	"github.com/calendon/calendon/internal/utils"
	"github.com/calendon/calendon/pkg/calendar"
	"github.com/calendon/calendon/pkg/candidate"
	"github.com/calendon/calendon/pkg/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(gen generator.Generator, cal calendar.Calendar, dryRun bool) (*ServiceImpl, *event_bus.EventBus) {
	bus := event_bus.NewEventBus()
	engine := newTestEngine()
	service := NewService(gen, cal, engine, NewExecutor(cal, dryRun), bus, "UTC")
	service.clock = &utils.MockClock{FixedNow: time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC)}
	return service, bus
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, time.March, 10, 7, 0, 0, 0, time.UTC)

	t.Run("produces a traced plan for generated candidates", func(t *testing.T) {
		gen := &generator.StubGenerator{Items: []json.RawMessage{
			rawCandidate("Deep Work", start, start.Add(2*time.Hour)),
		}}
		service, _ := newTestService(gen, calendar.NewStubCalendar(), true)

		response, err := service.Suggest(ctx, SuggestRequest{Instruction: "deep work tomorrow morning"})
		require.NoError(t, err)
		assert.NotEmpty(t, response.TraceID)
		require.Len(t, response.Entries, 1)
		assert.Equal(t, candidate.ActionCreate, response.Entries[0].Action)
		assert.Equal(t, response.TraceID, response.Entries[0].Candidate.SourceTraceID)
	})

	t.Run("passes instruction context to the generator", func(t *testing.T) {
		gen := &generator.StubGenerator{}
		service, _ := newTestService(gen, calendar.NewStubCalendar(), true)

		_, err := service.Suggest(ctx, SuggestRequest{Instruction: "lunch on friday", Timezone: "Europe/Riga"})
		require.NoError(t, err)
		assert.Equal(t, "lunch on friday", gen.LastInstruction)
		assert.Equal(t, "Europe/Riga", gen.LastTimezone)
		assert.False(t, gen.LastNow.IsZero())
	})

	t.Run("decides against the calendar snapshot", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		cal.Seed(calendar.ExistingEvent{ID: "busy", Start: start, End: start.Add(time.Hour), Timezone: "UTC"})
		gen := &generator.StubGenerator{Items: []json.RawMessage{
			rawCandidate("Review", start, start.Add(time.Hour)),
		}}
		service, _ := newTestService(gen, cal, true)

		response, err := service.Suggest(ctx, SuggestRequest{Instruction: "review at seven"})
		require.NoError(t, err)
		require.Len(t, response.Entries, 1)
		assert.Equal(t, ReasonShifted, response.Entries[0].Reason)
	})

	t.Run("unavailable generator yields an empty plan", func(t *testing.T) {
		gen := &generator.StubGenerator{Err: fmt.Errorf("%w: connection refused", generator.ErrUnavailable)}
		service, _ := newTestService(gen, calendar.NewStubCalendar(), true)

		response, err := service.Suggest(ctx, SuggestRequest{Instruction: "anything"})
		require.NoError(t, err)
		assert.Empty(t, response.Entries)
		assert.NotEmpty(t, response.TraceID)
	})

	t.Run("malformed generator output fails the request", func(t *testing.T) {
		gen := &generator.StubGenerator{Err: &generator.MalformedOutputError{Raw: "not json"}}
		service, _ := newTestService(gen, calendar.NewStubCalendar(), true)

		_, err := service.Suggest(ctx, SuggestRequest{Instruction: "anything"})
		assert.Error(t, err)
	})

	t.Run("publishes the decided plan on the bus", func(t *testing.T) {
		gen := &generator.StubGenerator{Items: []json.RawMessage{
			rawCandidate("Deep Work", start, start.Add(time.Hour)),
		}}
		service, bus := newTestService(gen, calendar.NewStubCalendar(), true)

		var published *event_bus.PlanDecided
		bus.Subscribe(event_bus.PlanDecidedEvent, func(e event_bus.Event) error {
			decided := e.Data.(event_bus.PlanDecided)
			published = &decided
			return nil
		})

		response, err := service.Suggest(ctx, SuggestRequest{Instruction: "deep work"})
		require.NoError(t, err)
		require.NotNil(t, published)
		assert.Equal(t, response.TraceID, published.TraceID)
		assert.Len(t, published.Entries, 1)
	})
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, time.March, 10, 7, 0, 0, 0, time.UTC)

	plan := func(action candidate.Action) candidate.CommitPlanEntry {
		return candidate.CommitPlanEntry{
			Candidate: candidate.EventCandidate{Title: "Deep Work", Start: start, End: start.Add(time.Hour), Timezone: "UTC"},
			Action:    action,
		}
	}

	t.Run("writes creates to the calendar", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		service, _ := newTestService(&generator.StubGenerator{}, cal, false)

		results, err := service.Sync(ctx, "trace-1", []candidate.CommitPlanEntry{plan(candidate.ActionCreate)})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, candidate.TakenCreated, results[0].ActionTaken)
		assert.NotEmpty(t, results[0].TargetEventID)

		stored, err := cal.ListBetween(ctx, start.Add(-time.Hour), start.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("skip entries never reach the calendar", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		service, _ := newTestService(&generator.StubGenerator{}, cal, false)

		results, err := service.Sync(ctx, "trace-2", []candidate.CommitPlanEntry{plan(candidate.ActionSkip)})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, candidate.TakenSkipped, results[0].ActionTaken)

		stored, err := cal.ListBetween(ctx, start.Add(-time.Hour), start.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("dry-run mirrors the plan without writing", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		service, _ := newTestService(&generator.StubGenerator{}, cal, true)

		results, err := service.Sync(ctx, "trace-3", []candidate.CommitPlanEntry{plan(candidate.ActionCreate)})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, candidate.TakenCreated, results[0].ActionTaken)
		assert.Contains(t, results[0].TargetEventID, "dry-run-")

		stored, err := cal.ListBetween(ctx, start.Add(-time.Hour), start.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("update failures are reported per entry", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		service, _ := newTestService(&generator.StubGenerator{}, cal, false)

		entry := plan(candidate.ActionUpdate)
		entry.TargetEventID = "missing"

		results, err := service.Sync(ctx, "trace-4", []candidate.CommitPlanEntry{
			entry,
			plan(candidate.ActionCreate),
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, candidate.TakenSkipped, results[0].ActionTaken)
		assert.NotEmpty(t, results[0].Error)
		assert.Equal(t, candidate.TakenCreated, results[1].ActionTaken)
	})

	t.Run("publishes the applied plan on the bus", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		service, bus := newTestService(&generator.StubGenerator{}, cal, true)

		var published *event_bus.PlanApplied
		bus.Subscribe(event_bus.PlanAppliedEvent, func(e event_bus.Event) error {
			applied := e.Data.(event_bus.PlanApplied)
			published = &applied
			return nil
		})

		_, err := service.Sync(ctx, "trace-5", []candidate.CommitPlanEntry{plan(candidate.ActionCreate)})
		require.NoError(t, err)
		require.NotNil(t, published)
		assert.True(t, published.DryRun)
		assert.Equal(t, "trace-5", published.TraceID)
	})
}
