package google

import (
	"context"
	"fmt"
	"time"

	"github.com/calendon/calendon/pkg/calendar"
	"github.com/calendon/calendon/pkg/candidate"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

var ErrUnauthenticated = fmt.Errorf("google account is not connected, authentication is required")

// Calendar adapts a Google Calendar to the planner's calendar contract.
type Calendar struct {
	service    *gcal.Service
	calendarId string
}

func newGoogleCalendar(service *gcal.Service, calendarId string) *Calendar {
	return &Calendar{
		service:    service,
		calendarId: calendarId,
	}
}

func (c *Calendar) ListBetween(ctx context.Context, from time.Time, to time.Time) ([]calendar.ExistingEvent, error) {
	googleEvents, err := c.service.Events.List(c.calendarId).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()

	if err != nil {
		err := fmt.Errorf("unable to retrieve events from Google Calendar: %v", err)
		log.Error(err)
		return nil, err
	}

	events := make([]calendar.ExistingEvent, 0, len(googleEvents.Items))
	for _, item := range googleEvents.Items {
		if item.Start == nil || item.Start.DateTime == "" || item.End == nil || item.End.DateTime == "" {
			// All-day events carry only a date, they do not block timed slots.
			log.Debugf("skipping all-day event: %s", item.Summary)
			continue
		}
		startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			log.Warnf("skipping event with unparseable start: %s (%s)", item.Summary, item.Start.DateTime)
			continue
		}
		endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			log.Warnf("skipping event with unparseable end: %s (%s)", item.Summary, item.End.DateTime)
			continue
		}

		events = append(events, calendar.ExistingEvent{
			ID:       item.Id,
			Summary:  item.Summary,
			Start:    startTime,
			End:      endTime,
			Timezone: item.Start.TimeZone,
		})
	}
	return events, nil
}

func (c *Calendar) Insert(ctx context.Context, event candidate.EventCandidate) (string, error) {
	log.Debugf("Inserting event %q into calendar: %s", event.Title, c.calendarId)

	result, err := c.service.Events.Insert(c.calendarId, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to insert event in Google Calendar: %v", err)
		log.Error(err)
		return "", err
	}
	return result.Id, nil
}

func (c *Calendar) Update(ctx context.Context, eventId string, event candidate.EventCandidate) (string, error) {
	log.Debugf("Updating event %s in calendar: %s", eventId, c.calendarId)

	result, err := c.service.Events.Update(c.calendarId, eventId, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to update event in Google Calendar: %v", err)
		log.Error(err)
		return "", err
	}
	return result.Id, nil
}

func toGoogleEvent(event candidate.EventCandidate) *gcal.Event {
	attendees := make([]*gcal.EventAttendee, 0, len(event.Attendees))
	for _, email := range event.Attendees {
		attendees = append(attendees, &gcal.EventAttendee{Email: email})
	}

	return &gcal.Event{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Attendees:   attendees,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: event.Timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: event.Timezone,
		},
	}
}
