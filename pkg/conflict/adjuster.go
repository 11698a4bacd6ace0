package conflict

import (
	"fmt"
	"time"

	"github.com/calendon/calendon/pkg/calendar"
	"github.com/calendon/calendon/pkg/candidate"
)

// SearchPolicy bounds the free-slot probe. Horizon is the latest instant a
// shifted window may end at. A zero EarliestAllowed disables backward
// probing. BackwardFirst flips the default forward-first precedence.
type SearchPolicy struct {
	Step            time.Duration
	Horizon         time.Time
	EarliestAllowed time.Time
	BackwardFirst   bool
}

// NoSlotFoundError reports the bounds the adjuster exhausted without
// finding a conflict-free window.
type NoSlotFoundError struct {
	SearchedFrom time.Time
	SearchedTo   time.Time
	Step         time.Duration
}

func (e *NoSlotFoundError) Error() string {
	return fmt.Sprintf("no free slot between %s and %s (step %s)",
		e.SearchedFrom.Format(time.RFC3339), e.SearchedTo.Format(time.RFC3339), e.Step)
}

// FindNearestFreeSlot probes for the nearest window of the candidate's
// exact duration that conflicts with nothing in existing. The probe is a
// bounded linear scan in SearchPolicy.Step increments, so it always
// terminates. On success the returned candidate is a copy with only the
// time window replaced.
func FindNearestFreeSlot(c candidate.EventCandidate, existing []calendar.ExistingEvent, policy SearchPolicy) (candidate.EventCandidate, error) {
	duration := c.Duration()

	probes := []func() (time.Time, bool){
		func() (time.Time, bool) { return probeForward(c.Start, duration, existing, policy) },
		func() (time.Time, bool) { return probeBackward(c.Start, duration, existing, policy) },
	}
	if policy.BackwardFirst {
		probes[0], probes[1] = probes[1], probes[0]
	}

	for _, probe := range probes {
		if start, ok := probe(); ok {
			c.Start = start
			c.End = start.Add(duration)
			return c, nil
		}
	}

	searchedFrom := c.Start
	if !policy.EarliestAllowed.IsZero() {
		searchedFrom = policy.EarliestAllowed
	}
	return candidate.EventCandidate{}, &NoSlotFoundError{
		SearchedFrom: searchedFrom,
		SearchedTo:   policy.Horizon,
		Step:         policy.Step,
	}
}

func probeForward(from time.Time, duration time.Duration, existing []calendar.ExistingEvent, policy SearchPolicy) (time.Time, bool) {
	for start := from; !start.Add(duration).After(policy.Horizon); start = start.Add(policy.Step) {
		if len(windowConflicts(start, start.Add(duration), existing)) == 0 {
			return start, true
		}
	}
	return time.Time{}, false
}

func probeBackward(from time.Time, duration time.Duration, existing []calendar.ExistingEvent, policy SearchPolicy) (time.Time, bool) {
	if policy.EarliestAllowed.IsZero() {
		return time.Time{}, false
	}
	for start := from.Add(-policy.Step); !start.Before(policy.EarliestAllowed); start = start.Add(-policy.Step) {
		if len(windowConflicts(start, start.Add(duration), existing)) == 0 {
			return start, true
		}
	}
	return time.Time{}, false
}
