package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Generator produces raw event candidate payloads for one scheduling
// instruction. The returned items are JSON objects that still have to pass
// the candidate validator; the generator makes no schema promises.
type Generator interface {
	SuggestEvents(ctx context.Context, instruction string, now time.Time, timezone string) ([]json.RawMessage, error)
}

// MalformedOutputError is returned when the generator's text cannot be
// deserialized into candidate payloads at all. Partial parsing is never
// attempted; the caller decides whether to request regeneration.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("generator output is not parseable: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// ParsePayload deserializes generator text into individual candidate
// payloads. Accepted shapes: a single object, an array of objects, or an
// envelope {"candidates": [...]}.
func ParsePayload(text string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &MalformedOutputError{Raw: text, Err: fmt.Errorf("empty output")}
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, &MalformedOutputError{Raw: text, Err: err}
		}
		return items, nil
	}

	var envelope struct {
		Candidates []json.RawMessage `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		return nil, &MalformedOutputError{Raw: text, Err: err}
	}
	if envelope.Candidates != nil {
		return envelope.Candidates, nil
	}

	// A single candidate object.
	var object map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &object); err != nil {
		return nil, &MalformedOutputError{Raw: text, Err: err}
	}
	return []json.RawMessage{json.RawMessage(trimmed)}, nil
}
