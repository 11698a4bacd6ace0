package repair

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/calendon/calendon/pkg/candidate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = Defaults{
	Timezone:    "Europe/Riga",
	MinDuration: 30 * time.Minute,
}

func TestRepair(t *testing.T) {
	start := time.Date(2025, time.March, 10, 7, 0, 0, 0, time.UTC)

	t.Run("valid candidate is a no-op", func(t *testing.T) {
		engine := NewEngine(testDefaults)
		c := candidate.EventCandidate{
			Title:    "Deep Work",
			Start:    start,
			End:      start.Add(2 * time.Hour),
			Timezone: "Europe/Warsaw",
		}

		repaired, report, err := engine.Repair(c)
		require.NoError(t, err)
		assert.Equal(t, c, repaired)
		assert.Empty(t, report)
	})

	t.Run("missing timezone is filled from defaults", func(t *testing.T) {
		engine := NewEngine(testDefaults)
		c := candidate.EventCandidate{Title: "Deep Work", Start: start, End: start.Add(time.Hour)}

		repaired, report, err := engine.Repair(c)
		require.NoError(t, err)
		assert.Equal(t, "Europe/Riga", repaired.Timezone)
		require.Len(t, report, 1)
		assert.Equal(t, "timezone", report[0].Field)
		assert.Equal(t, "timezone_fill", report[0].RuleID)
	})

	t.Run("unknown timezone is replaced with default", func(t *testing.T) {
		engine := NewEngine(testDefaults)
		c := candidate.EventCandidate{Title: "Deep Work", Start: start, End: start.Add(time.Hour), Timezone: "Mars/Olympus"}

		repaired, report, err := engine.Repair(c)
		require.NoError(t, err)
		assert.Equal(t, "Europe/Riga", repaired.Timezone)
		require.Len(t, report, 1)
		assert.Equal(t, "Mars/Olympus", report[0].Original)
	})

	t.Run("degenerate range is stretched to minimum duration", func(t *testing.T) {
		engine := NewEngine(testDefaults)
		c := candidate.EventCandidate{Title: "Deep Work", Start: start, End: start, Timezone: "Europe/Riga"}

		repaired, report, err := engine.Repair(c)
		require.NoError(t, err)
		assert.Equal(t, testDefaults.MinDuration, repaired.Duration())
		require.Len(t, report, 1)
		assert.Equal(t, "end", report[0].Field)
		assert.Equal(t, "degenerate_range", report[0].RuleID)
		assert.Equal(t, start.Format(time.RFC3339), report[0].Original)
	})

	t.Run("end before start is stretched as well", func(t *testing.T) {
		engine := NewEngine(testDefaults)
		c := candidate.EventCandidate{Title: "Deep Work", Start: start, End: start.Add(-time.Hour), Timezone: "Europe/Riga"}

		repaired, report, err := engine.Repair(c)
		require.NoError(t, err)
		assert.Equal(t, start.Add(testDefaults.MinDuration), repaired.End)
		assert.Len(t, report, 1)
	})

	t.Run("repair is idempotent", func(t *testing.T) {
		engine := NewEngine(testDefaults)
		c := candidate.EventCandidate{Title: "Deep Work", Start: start, End: start}

		once, report1, err := engine.Repair(c)
		require.NoError(t, err)
		twice, report2, err := engine.Repair(once)
		require.NoError(t, err)

		assert.Equal(t, once, twice)
		assert.Len(t, report1, 2)
		assert.Empty(t, report2)
	})

	t.Run("missing timezone without default is unrepairable", func(t *testing.T) {
		engine := NewEngine(Defaults{MinDuration: 30 * time.Minute})
		c := candidate.EventCandidate{Title: "Deep Work", Start: start, End: start.Add(time.Hour)}

		_, _, err := engine.Repair(c)
		var uErr *UnrepairableError
		require.True(t, errors.As(err, &uErr))
		assert.Equal(t, "timezone_fill", uErr.RuleID)
	})

	t.Run("extra registered rules run after built-ins", func(t *testing.T) {
		engine := NewEngine(testDefaults, titleTrimRule{})
		c := candidate.EventCandidate{Title: "  Deep Work  ", Start: start, End: start.Add(time.Hour), Timezone: "Europe/Riga"}

		repaired, report, err := engine.Repair(c)
		require.NoError(t, err)
		assert.Equal(t, "Deep Work", repaired.Title)
		require.Len(t, report, 1)
		assert.Equal(t, "title_trim", report[0].RuleID)
	})
}

// titleTrimRule exercises the open rule registration extension point.
type titleTrimRule struct{}

func (titleTrimRule) ID() string { return "title_trim" }

func (r titleTrimRule) Apply(c candidate.EventCandidate, _ Defaults) (candidate.EventCandidate, *candidate.RepairFix, error) {
	trimmed := strings.TrimSpace(c.Title)
	if trimmed == c.Title {
		return c, nil, nil
	}
	fix := &candidate.RepairFix{Field: "title", Original: c.Title, New: trimmed, RuleID: r.ID()}
	c.Title = trimmed
	return c, fix, nil
}
