package candidate

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {

	t.Run("accepts a complete candidate", func(t *testing.T) {
		raw := json.RawMessage(`{
			"title": "Deep Work",
			"start": "2025-03-10T07:00:00+02:00",
			"end": "2025-03-10T09:00:00+02:00",
			"timezone": "Europe/Riga",
			"attendees": ["anna@example.com"],
			"location": "Home office",
			"description": "Focus block"
		}`)

		c, err := Validate(raw)
		require.NoError(t, err)
		assert.Equal(t, "Deep Work", c.Title)
		assert.Equal(t, "Europe/Riga", c.Timezone)
		assert.Equal(t, []string{"anna@example.com"}, c.Attendees)
		assert.Equal(t, 2*time.Hour, c.Duration())
	})

	t.Run("accepts missing timezone and attendees", func(t *testing.T) {
		raw := json.RawMessage(`{
			"title": "Standup",
			"start": "2025-03-10T09:00:00Z",
			"end": "2025-03-10T09:15:00Z"
		}`)

		c, err := Validate(raw)
		require.NoError(t, err)
		assert.Empty(t, c.Timezone)
		assert.Empty(t, c.Attendees)
	})

	t.Run("rejects unknown fields naming them", func(t *testing.T) {
		raw := json.RawMessage(`{
			"title": "Standup",
			"start": "2025-03-10T09:00:00Z",
			"end": "2025-03-10T09:15:00Z",
			"priority": "high"
		}`)

		_, err := Validate(raw)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		require.Len(t, vErr.Violations, 1)
		assert.Equal(t, "priority", vErr.Violations[0].Field)
		assert.Equal(t, "unknown field", vErr.Violations[0].Constraint)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		raw := json.RawMessage(`{"title": "No times"}`)

		_, err := Validate(raw)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))

		fields := make([]string, 0, len(vErr.Violations))
		for _, v := range vErr.Violations {
			fields = append(fields, v.Field)
		}
		assert.ElementsMatch(t, []string{"start", "end"}, fields)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		raw := json.RawMessage(`{
			"title": "",
			"start": "2025-03-10T09:00:00Z",
			"end": "2025-03-10T09:15:00Z"
		}`)

		_, err := Validate(raw)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "title", vErr.Violations[0].Field)
	})

	t.Run("rejects naive timestamps", func(t *testing.T) {
		raw := json.RawMessage(`{
			"title": "Lunch",
			"start": "2025-03-10 12:00:00",
			"end": "2025-03-10T13:00:00Z"
		}`)

		_, err := Validate(raw)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "start", vErr.Violations[0].Field)
		assert.Contains(t, vErr.Violations[0].Constraint, "RFC3339")
	})

	t.Run("rejects wrong primitive types", func(t *testing.T) {
		raw := json.RawMessage(`{
			"title": 42,
			"start": "2025-03-10T09:00:00Z",
			"end": "2025-03-10T09:15:00Z",
			"attendees": "anna@example.com"
		}`)

		_, err := Validate(raw)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))

		constraints := map[string]string{}
		for _, v := range vErr.Violations {
			constraints[v.Field] = v.Constraint
		}
		assert.Equal(t, "must be a string", constraints["title"])
		assert.Equal(t, "must be an array of strings", constraints["attendees"])
	})

	t.Run("rejects non-object payloads", func(t *testing.T) {
		_, err := Validate(json.RawMessage(`["not", "an", "object"]`))
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "$", vErr.Violations[0].Field)
	})
}
