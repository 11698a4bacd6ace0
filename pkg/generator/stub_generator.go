package generator

import (
	"context"
	"encoding/json"
	"time"
)

// StubGenerator returns canned payloads, for tests.
type StubGenerator struct {
	Items []json.RawMessage
	Err   error

	LastInstruction string
	LastNow         time.Time
	LastTimezone    string
}

func (g *StubGenerator) SuggestEvents(_ context.Context, instruction string, now time.Time, timezone string) ([]json.RawMessage, error) {
	g.LastInstruction = instruction
	g.LastNow = now
	g.LastTimezone = timezone
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Items, nil
}
