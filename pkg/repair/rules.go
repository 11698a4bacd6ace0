package repair

import (
	"time"

	"github.com/calendon/calendon/pkg/candidate"
)

const (
	ruleTimezoneFill    = "timezone_fill"
	ruleDegenerateRange = "degenerate_range"
)

// timezoneFillRule fills a missing timezone from the defaults and replaces
// a timezone that is not a resolvable IANA name. A candidate with a valid
// explicit timezone passes through untouched.
type timezoneFillRule struct{}

func (timezoneFillRule) ID() string { return ruleTimezoneFill }

func (r timezoneFillRule) Apply(c candidate.EventCandidate, d Defaults) (candidate.EventCandidate, *candidate.RepairFix, error) {
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err == nil {
			return c, nil, nil
		}
	}
	if d.Timezone == "" {
		return candidate.EventCandidate{}, nil, &UnrepairableError{
			RuleID:       r.ID(),
			Precondition: "candidate has no usable timezone and no default timezone is configured",
		}
	}
	if _, err := time.LoadLocation(d.Timezone); err != nil {
		return candidate.EventCandidate{}, nil, &UnrepairableError{
			RuleID:       r.ID(),
			Precondition: "default timezone is not a valid IANA name: " + d.Timezone,
		}
	}
	fix := &candidate.RepairFix{
		Field:    "timezone",
		Original: c.Timezone,
		New:      d.Timezone,
		RuleID:   r.ID(),
	}
	c.Timezone = d.Timezone
	return c, fix, nil
}

// degenerateRangeRule stretches a zero or negative time range to the
// configured minimum duration, keeping the start anchored.
type degenerateRangeRule struct{}

func (degenerateRangeRule) ID() string { return ruleDegenerateRange }

func (r degenerateRangeRule) Apply(c candidate.EventCandidate, d Defaults) (candidate.EventCandidate, *candidate.RepairFix, error) {
	if c.End.After(c.Start) {
		return c, nil, nil
	}
	if d.MinDuration <= 0 {
		return candidate.EventCandidate{}, nil, &UnrepairableError{
			RuleID:       r.ID(),
			Precondition: "minimum event duration is not configured",
		}
	}
	fix := &candidate.RepairFix{
		Field:    "end",
		Original: c.End.Format(time.RFC3339),
		New:      c.Start.Add(d.MinDuration).Format(time.RFC3339),
		RuleID:   r.ID(),
	}
	c.End = c.Start.Add(d.MinDuration)
	return c, fix, nil
}
