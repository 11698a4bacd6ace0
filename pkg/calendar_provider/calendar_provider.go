package calendar_provider

import (
	"context"
	"fmt"
	"time"

	"github.com/calendon/calendon/pkg/calendar"
	"github.com/calendon/calendon/pkg/candidate"
	"github.com/calendon/calendon/pkg/google"
)

// CalendarProvider resolves the configured Google calendar on every call,
// so a freshly completed OAuth flow takes effect without a restart.
type CalendarProvider struct {
	googleService google.Service
	calendarId    string
}

func NewCalendarProvider(googleService google.Service, calendarId string) *CalendarProvider {
	return &CalendarProvider{
		googleService: googleService,
		calendarId:    calendarId,
	}
}

func (c *CalendarProvider) getCalendar(ctx context.Context) (calendar.Calendar, error) {
	return c.googleService.GetCalendar(ctx, c.calendarId)
}

func (c *CalendarProvider) ListBetween(ctx context.Context, from time.Time, to time.Time) ([]calendar.ExistingEvent, error) {
	cal, err := c.getCalendar(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar when listing events: %w", err)
	}
	return cal.ListBetween(ctx, from, to)
}

func (c *CalendarProvider) Insert(ctx context.Context, event candidate.EventCandidate) (string, error) {
	cal, err := c.getCalendar(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get calendar when inserting event: %w", err)
	}
	return cal.Insert(ctx, event)
}

func (c *CalendarProvider) Update(ctx context.Context, eventId string, event candidate.EventCandidate) (string, error) {
	cal, err := c.getCalendar(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get calendar when updating event: %w", err)
	}
	return cal.Update(ctx, eventId, event)
}
