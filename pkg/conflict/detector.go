package conflict

import (
	"time"

	"github.com/calendon/calendon/pkg/calendar"
	"github.com/calendon/calendon/pkg/candidate"
)

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share a window of non-zero duration. Back-to-back
// intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FindConflicts returns the subset of existing events overlapping the
// candidate's window, preserving the input ordering so callers can reason
// about earliest-first precedence. The existing slice is expected to be
// pre-filtered to the relevant time window by the caller; no I/O happens
// here.
func FindConflicts(c candidate.EventCandidate, existing []calendar.ExistingEvent) []calendar.ExistingEvent {
	return windowConflicts(c.Start, c.End, existing)
}

func windowConflicts(start, end time.Time, existing []calendar.ExistingEvent) []calendar.ExistingEvent {
	conflicts := make([]calendar.ExistingEvent, 0)
	for _, event := range existing {
		if Overlaps(start, end, event.Start, event.End) {
			conflicts = append(conflicts, event)
		}
	}
	return conflicts
}
