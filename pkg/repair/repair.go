package repair

import (
	"fmt"
	"time"

	"github.com/calendon/calendon/pkg/candidate"
	log "github.com/sirupsen/logrus"
)

// Defaults are the configured values repair rules may fall back to.
type Defaults struct {
	Timezone    string
	MinDuration time.Duration
}

// UnrepairableError is returned when a rule cannot determine a safe fix,
// e.g. the candidate is missing a timezone and no default is configured.
type UnrepairableError struct {
	RuleID       string
	Precondition string
}

func (e *UnrepairableError) Error() string {
	return fmt.Sprintf("candidate is unrepairable by rule %s: %s", e.RuleID, e.Precondition)
}

// Rule is a single repair policy. Apply either returns the candidate
// unchanged with a nil fix, or a modified candidate plus the fix record.
// Rules must be pure and idempotent.
type Rule interface {
	ID() string
	Apply(c candidate.EventCandidate, d Defaults) (candidate.EventCandidate, *candidate.RepairFix, error)
}

// Engine applies an ordered, open set of repair rules to a structurally
// valid candidate. New rules can be registered without touching the
// engine's control flow.
type Engine struct {
	defaults Defaults
	rules    []Rule
}

// NewEngine builds an engine with the built-in rules (timezone fill,
// degenerate range fix) followed by any extra rules in registration order.
func NewEngine(defaults Defaults, extra ...Rule) *Engine {
	rules := []Rule{
		timezoneFillRule{},
		degenerateRangeRule{},
	}
	rules = append(rules, extra...)
	return &Engine{defaults: defaults, rules: rules}
}

// Repair runs all rules in order and returns the repaired candidate with
// the report of applied fixes. It never rejects a valid candidate on value
// grounds; the only failure mode is an UnrepairableError from a rule whose
// precondition is unmet.
func (e *Engine) Repair(c candidate.EventCandidate) (candidate.EventCandidate, candidate.RepairReport, error) {
	report := candidate.RepairReport{}
	for _, rule := range e.rules {
		repaired, fix, err := rule.Apply(c, e.defaults)
		if err != nil {
			return candidate.EventCandidate{}, nil, err
		}
		if fix != nil {
			log.Debugf("repair rule %s fixed %s: %q -> %q", rule.ID(), fix.Field, fix.Original, fix.New)
			report = append(report, *fix)
		}
		c = repaired
	}
	return c, report, nil
}
