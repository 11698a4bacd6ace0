package planner

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/calendon/calendon/internal/event_bus"
	"github.com/calendon/calendon/internal/utils"
	"github.com/calendon/calendon/pkg/calendar"
	"github.com/calendon/calendon/pkg/candidate"
	"github.com/calendon/calendon/pkg/generator"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SuggestRequest carries one natural-language scheduling instruction.
// Now and Timezone are optional overrides for the wall clock and the
// configured default timezone.
type SuggestRequest struct {
	Instruction string
	Now         time.Time
	Timezone    string
}

// SuggestResponse is the decided commit plan for one instruction.
type SuggestResponse struct {
	TraceID string
	Entries []candidate.CommitPlanEntry
}

type Service interface {
	Suggest(ctx context.Context, req SuggestRequest) (SuggestResponse, error)
	Sync(ctx context.Context, traceID string, entries []candidate.CommitPlanEntry) ([]candidate.CommitResult, error)
}

type ServiceImpl struct {
	gen      generator.Generator
	cal      calendar.Calendar
	engine   *Engine
	executor *Executor
	bus      *event_bus.EventBus
	clock    utils.Clock
	timezone string
}

func NewService(gen generator.Generator, cal calendar.Calendar, engine *Engine, executor *Executor, bus *event_bus.EventBus, timezone string) *ServiceImpl {
	return &ServiceImpl{
		gen:      gen,
		cal:      cal,
		engine:   engine,
		executor: executor,
		bus:      bus,
		clock:    utils.SystemClock{},
		timezone: timezone,
	}
}

// Suggest runs the full generate, validate, repair, conflict-check and
// decide pass for one instruction. One calendar read covers the whole
// batch; the decision engine then works on that snapshot only.
//
// A malformed generator payload fails the request so the caller can ask
// for regeneration. An unreachable generator degrades to an empty plan.
func (s *ServiceImpl) Suggest(ctx context.Context, req SuggestRequest) (SuggestResponse, error) {
	traceID := uuid.NewString()
	timezone := req.Timezone
	if timezone == "" {
		timezone = s.timezone
	}
	now := req.Now
	if now.IsZero() {
		now = s.clock.Now()
	}
	if loc, err := time.LoadLocation(timezone); err == nil {
		now = now.In(loc)
	}

	items, err := s.gen.SuggestEvents(ctx, req.Instruction, now, timezone)
	if err != nil {
		if errors.Is(err, generator.ErrUnavailable) {
			log.Warnf("generator unavailable, returning empty plan: %v", err)
			items = nil
		} else {
			return SuggestResponse{}, err
		}
	}

	existing := s.listExisting(ctx, items)

	entries := s.engine.Decide(items, existing)
	for i := range entries {
		if entries[i].Candidate.SourceTraceID == "" {
			entries[i].Candidate.SourceTraceID = traceID
		}
	}

	s.bus.Publish(event_bus.NewEvent(ctx, event_bus.PlanDecidedEvent, event_bus.PlanDecided{
		TraceID: traceID,
		Entries: entries,
	}))

	log.Infof("decided plan %s: %d entries for instruction of %d chars", traceID, len(entries), len(req.Instruction))
	return SuggestResponse{TraceID: traceID, Entries: entries}, nil
}

// Sync applies a previously decided plan. Exactly one result is returned
// per entry; skips never reach the calendar.
func (s *ServiceImpl) Sync(ctx context.Context, traceID string, entries []candidate.CommitPlanEntry) ([]candidate.CommitResult, error) {
	results := make([]candidate.CommitResult, 0, len(entries))
	for _, entry := range entries {
		results = append(results, s.executor.Apply(ctx, entry))
	}

	s.bus.Publish(event_bus.NewEvent(ctx, event_bus.PlanAppliedEvent, event_bus.PlanApplied{
		TraceID: traceID,
		DryRun:  s.executor.DryRun(),
		Results: results,
	}))

	return results, nil
}

// listExisting performs the single calendar read for a batch. The window
// spans every parseable candidate window, padded so the same-day slot
// probe always stays inside the snapshot. A failed read degrades to an
// empty snapshot rather than failing the batch.
func (s *ServiceImpl) listExisting(ctx context.Context, items []json.RawMessage) []calendar.ExistingEvent {
	from, to, ok := batchWindow(items)
	if !ok {
		return nil
	}

	existing, err := s.cal.ListBetween(ctx, from, to)
	if err != nil {
		log.Warnf("failed to list existing events, deciding against an empty calendar: %v", err)
		return nil
	}
	return existing
}

func batchWindow(items []json.RawMessage) (time.Time, time.Time, bool) {
	var from, to time.Time
	for _, raw := range items {
		var probe struct {
			Start string `json:"start"`
			End   string `json:"end"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			continue
		}
		start, err := time.Parse(time.RFC3339, probe.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, probe.End)
		if err != nil || end.Before(start) {
			end = start
		}
		if from.IsZero() || start.Before(from) {
			from = start
		}
		if to.IsZero() || end.After(to) {
			to = end
		}
	}
	if from.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	// Pad to cover backward probing and the end-of-day forward horizon.
	return from.Add(-24 * time.Hour), to.Add(24 * time.Hour), true
}
