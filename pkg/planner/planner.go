package planner

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/calendon/calendon/pkg/calendar"
	"github.com/calendon/calendon/pkg/candidate"
	"github.com/calendon/calendon/pkg/conflict"
	"github.com/calendon/calendon/pkg/repair"
	log "github.com/sirupsen/logrus"
)

const (
	ReasonShifted    = "shifted"
	ReasonNoFreeSlot = "no free slot"
)

// SlotConfig is the configurable part of the free-slot search. The probe
// horizon is always the end of the candidate's day in its own timezone;
// EarliestOffset bounds the optional backward probe relative to the
// candidate's start (zero disables it).
type SlotConfig struct {
	Step           time.Duration
	EarliestOffset time.Duration
	BackwardFirst  bool
}

// Engine classifies candidates into commit plan entries. One pass runs
// validate, repair, conflict check and slot adjustment per candidate, in
// input order, and produces exactly one entry per input payload.
type Engine struct {
	repairer *repair.Engine
	slot     SlotConfig
}

func NewEngine(repairer *repair.Engine, slot SlotConfig) *Engine {
	return &Engine{repairer: repairer, slot: slot}
}

// Decide processes a batch of raw candidate payloads against a read-only
// snapshot of existing events. Candidates are handled sequentially, and
// every window this pass decides to commit is treated as busy for the
// later candidates of the same batch, so two candidates from one
// instruction cannot be scheduled into each other.
//
// No error aborts the batch: validation failures, unrepairable candidates
// and exhausted slot searches all degrade to a skip entry carrying the
// reason.
func (e *Engine) Decide(items []json.RawMessage, existing []calendar.ExistingEvent) []candidate.CommitPlanEntry {
	working := make([]calendar.ExistingEvent, len(existing))
	copy(working, existing)

	entries := make([]candidate.CommitPlanEntry, 0, len(items))
	for i, raw := range items {
		entry := e.decideOne(raw, working)
		if entry.Action != candidate.ActionSkip {
			working = append(working, calendar.ExistingEvent{
				ID:       fmt.Sprintf("pending-%d", i),
				Summary:  entry.Candidate.Title,
				Start:    entry.Candidate.Start,
				End:      entry.Candidate.End,
				Timezone: entry.Candidate.Timezone,
			})
		}
		entries = append(entries, entry)
	}
	return entries
}

func (e *Engine) decideOne(raw json.RawMessage, existing []calendar.ExistingEvent) candidate.CommitPlanEntry {
	c, err := candidate.Validate(raw)
	if err != nil {
		log.Infof("candidate rejected by validator: %v", err)
		return candidate.CommitPlanEntry{
			Action: candidate.ActionSkip,
			Reason: err.Error(),
		}
	}

	repaired, report, err := e.repairer.Repair(c)
	if err != nil {
		log.Infof("candidate %q is unrepairable: %v", c.Title, err)
		return candidate.CommitPlanEntry{
			Candidate: c,
			Action:    candidate.ActionSkip,
			Reason:    err.Error(),
			Report:    report,
		}
	}

	conflicts := conflict.FindConflicts(repaired, existing)
	if len(conflicts) == 0 {
		return e.clearEntry(repaired, report, "")
	}

	log.Debugf("candidate %q conflicts with %d events, probing for a free slot", repaired.Title, len(conflicts))
	shifted, err := conflict.FindNearestFreeSlot(repaired, existing, e.searchPolicyFor(repaired))
	if err != nil {
		log.Infof("no free slot for candidate %q: %v", repaired.Title, err)
		return candidate.CommitPlanEntry{
			Candidate: repaired,
			Action:    candidate.ActionSkip,
			Reason:    ReasonNoFreeSlot,
			Report:    report,
		}
	}

	return e.clearEntry(shifted, report, ReasonShifted)
}

// clearEntry builds the create/update entry for a conflict-free window.
// An update is planned only when the instruction carried a target event
// hint.
func (e *Engine) clearEntry(c candidate.EventCandidate, report candidate.RepairReport, reason string) candidate.CommitPlanEntry {
	action := candidate.ActionCreate
	if c.TargetEventID != "" {
		action = candidate.ActionUpdate
	}
	return candidate.CommitPlanEntry{
		Candidate:     c,
		Action:        action,
		TargetEventID: c.TargetEventID,
		Reason:        reason,
		Report:        report,
	}
}

// searchPolicyFor bounds the slot probe to the candidate's own day in its
// repaired timezone.
func (e *Engine) searchPolicyFor(c candidate.EventCandidate) conflict.SearchPolicy {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		loc = time.UTC
	}
	day := c.Start.In(loc)
	horizon := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)

	policy := conflict.SearchPolicy{
		Step:          e.slot.Step,
		Horizon:       horizon,
		BackwardFirst: e.slot.BackwardFirst,
	}
	if e.slot.EarliestOffset > 0 {
		policy.EarliestAllowed = c.Start.Add(-e.slot.EarliestOffset)
	}
	return policy
}
