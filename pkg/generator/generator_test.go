package generator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {

	t.Run("parses a single object", func(t *testing.T) {
		items, err := ParsePayload(`{"title": "Standup"}`)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("parses an array", func(t *testing.T) {
		items, err := ParsePayload(`[{"title": "A"}, {"title": "B"}]`)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("parses a candidates envelope", func(t *testing.T) {
		items, err := ParsePayload(`{"candidates": [{"title": "A"}, {"title": "B"}, {"title": "C"}]}`)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("rejects free text", func(t *testing.T) {
		_, err := ParsePayload(`Sure! I scheduled your meeting for tomorrow.`)
		var mErr *MalformedOutputError
		require.True(t, errors.As(err, &mErr))
	})

	t.Run("rejects empty output", func(t *testing.T) {
		_, err := ParsePayload("   ")
		var mErr *MalformedOutputError
		assert.True(t, errors.As(err, &mErr))
	})

	t.Run("rejects truncated json", func(t *testing.T) {
		_, err := ParsePayload(`{"candidates": [{"title": "A"`)
		var mErr *MalformedOutputError
		assert.True(t, errors.As(err, &mErr))
	})
}

func TestOfflineGenerator(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("emits one candidate for a dated instruction", func(t *testing.T) {
		g := NewOfflineGenerator()

		items, err := g.SuggestEvents(context.Background(), "dentist appointment tomorrow at 7am", now, "UTC")
		require.NoError(t, err)
		require.Len(t, items, 1)

		var c struct {
			Title string `json:"title"`
			Start string `json:"start"`
			End   string `json:"end"`
		}
		require.NoError(t, json.Unmarshal(items[0], &c))
		assert.Contains(t, c.Title, "dentist")

		start, err := time.Parse(time.RFC3339, c.Start)
		require.NoError(t, err)
		assert.True(t, start.After(now))
		assert.Equal(t, c.Start, c.End)
	})

	t.Run("returns nothing without a date expression", func(t *testing.T) {
		g := NewOfflineGenerator()

		items, err := g.SuggestEvents(context.Background(), "hello there", now, "UTC")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
