package calendar

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/calendon/calendon/pkg/candidate"
	"github.com/google/uuid"
)

// StubCalendar is an in-memory Calendar used by tests and by the executor's
// dry-run mode.
type StubCalendar struct {
	data map[string]ExistingEvent
}

func NewStubCalendar() *StubCalendar {
	return &StubCalendar{data: map[string]ExistingEvent{}}
}

// Seed stores an event under a fixed id, for test setup.
func (c *StubCalendar) Seed(event ExistingEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	c.data[event.ID] = event
}

func (c *StubCalendar) ListBetween(_ context.Context, from, to time.Time) ([]ExistingEvent, error) {
	var events []ExistingEvent
	for _, event := range c.data {
		if event.Start.Before(to) && event.End.After(from) {
			events = append(events, event)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})

	return events, nil
}

func (c *StubCalendar) Insert(_ context.Context, event candidate.EventCandidate) (string, error) {
	id := uuid.NewString()
	c.data[id] = ExistingEvent{
		ID:       id,
		Summary:  event.Title,
		Start:    event.Start,
		End:      event.End,
		Timezone: event.Timezone,
	}
	return id, nil
}

func (c *StubCalendar) Update(_ context.Context, eventID string, event candidate.EventCandidate) (string, error) {
	if _, ok := c.data[eventID]; !ok {
		return "", errors.New("event with given id not found")
	}
	c.data[eventID] = ExistingEvent{
		ID:       eventID,
		Summary:  event.Title,
		Start:    event.Start,
		End:      event.End,
		Timezone: event.Timezone,
	}
	return eventID, nil
}

func (c *StubCalendar) Cleanup() {
	c.data = map[string]ExistingEvent{}
}
