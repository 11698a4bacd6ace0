package candidate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Violation names a single field constraint that a payload failed.
type Violation struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

// ValidationError is returned by Validate when the payload does not match
// the closed candidate schema. It always names the offending fields.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Constraint))
	}
	return "invalid event candidate: " + strings.Join(parts, "; ")
}

var allowedFields = map[string]struct{}{
	"title":           {},
	"start":           {},
	"end":             {},
	"timezone":        {},
	"attendees":       {},
	"location":        {},
	"description":     {},
	"target_event_id": {},
	"source_trace_id": {},
}

// Validate checks a deserialized generator payload against the strict
// candidate schema and returns a typed EventCandidate. The schema is
// closed: unknown fields are rejected, not ignored. Missing timezone and
// attendees are accepted and left for the repair step.
//
// Validate is pure; the raw payload is never retained.
func Validate(raw json.RawMessage) (EventCandidate, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return EventCandidate{}, &ValidationError{Violations: []Violation{
			{Field: "$", Constraint: "must be a JSON object"},
		}}
	}

	var violations []Violation

	unknown := make([]string, 0)
	for name := range fields {
		if _, ok := allowedFields[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		violations = append(violations, Violation{Field: name, Constraint: "unknown field"})
	}

	var c EventCandidate

	if title, ok := requireString(fields, "title", &violations); ok {
		if title == "" {
			violations = append(violations, Violation{Field: "title", Constraint: "must not be empty"})
		}
		c.Title = title
	}
	if start, ok := requireInstant(fields, "start", &violations); ok {
		c.Start = start
	}
	if end, ok := requireInstant(fields, "end", &violations); ok {
		c.End = end
	}

	c.Timezone = optionalString(fields, "timezone", &violations)
	c.Location = optionalString(fields, "location", &violations)
	c.Description = optionalString(fields, "description", &violations)
	c.TargetEventID = optionalString(fields, "target_event_id", &violations)
	c.SourceTraceID = optionalString(fields, "source_trace_id", &violations)

	if rawAttendees, ok := fields["attendees"]; ok {
		var attendees []string
		if err := json.Unmarshal(rawAttendees, &attendees); err != nil {
			violations = append(violations, Violation{Field: "attendees", Constraint: "must be an array of strings"})
		} else {
			c.Attendees = attendees
		}
	}

	if len(violations) > 0 {
		return EventCandidate{}, &ValidationError{Violations: violations}
	}
	return c, nil
}

func requireString(fields map[string]json.RawMessage, name string, violations *[]Violation) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		*violations = append(*violations, Violation{Field: name, Constraint: "required field is missing"})
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		*violations = append(*violations, Violation{Field: name, Constraint: "must be a string"})
		return "", false
	}
	return s, true
}

func requireInstant(fields map[string]json.RawMessage, name string, violations *[]Violation) (time.Time, bool) {
	s, ok := requireString(fields, name, violations)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		*violations = append(*violations, Violation{
			Field:      name,
			Constraint: "must be a timezone-aware RFC3339 instant",
		})
		return time.Time{}, false
	}
	return t, true
}

func optionalString(fields map[string]json.RawMessage, name string, violations *[]Violation) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		*violations = append(*violations, Violation{Field: name, Constraint: "must be a string"})
		return ""
	}
	return s
}
