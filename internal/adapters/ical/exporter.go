// Package ical renders event availability as an iCalendar document so
// planners can subscribe to the aggregate picture from any calendar app.
package ical

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"planmeet/internal/domain"
)

type exporter struct{}

// NewExporter returns a CalendarExporter producing VCALENDAR output with
// one all-day VEVENT per participant per available day.
func NewExporter() domain.CalendarExporter {
	return &exporter{}
}

func (e *exporter) Export(event *domain.Event, participants []*domain.Participant, usernames map[int64]string) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//planmeet//EN")

	now := time.Now().UTC()
	for _, p := range participants {
		name := usernames[p.UserID]
		if name == "" {
			name = fmt.Sprintf("user %d", p.UserID)
		}
		for _, day := range domain.DecodeAvailability(p.Availability) {
			start := day.UTC().Truncate(24 * time.Hour)
			ve := ical.NewComponent(ical.CompEvent)
			ve.Props.SetText(ical.PropUID, uuid.NewString())
			ve.Props.SetText(ical.PropSummary, fmt.Sprintf("%s available: %s", name, event.Title))
			ve.Props.SetDateTime(ical.PropDateTimeStamp, now)
			ve.Props.SetDate(ical.PropDateTimeStart, start)
			ve.Props.SetDate(ical.PropDateTimeEnd, start.Add(24*time.Hour))
			cal.Children = append(cal.Children, ve)
		}
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}
