package ical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmeet/internal/domain"
)

func TestExporter_Export(t *testing.T) {
	event := &domain.Event{
		ID:         10,
		Title:      "Rehearsal 1",
		PlannerID:  1,
		DateRange:  `{"start":"2024-06-01T00:00:00.000Z","end":"2024-06-08T00:00:00.000Z"}`,
		InviteCode: "AB12CD",
	}
	participants := []*domain.Participant{
		{ID: 1, UserID: 2, EventID: 10, Availability: `["2024-06-01T00:00:00.000Z","2024-06-03T00:00:00.000Z"]`},
		{ID: 2, UserID: 3, EventID: 10, Availability: "corrupt data"},
	}
	usernames := map[int64]string{2: "bob"}

	out, err := NewExporter().Export(event, participants, usernames)
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "BEGIN:VCALENDAR")
	// One VEVENT per decoded day; the corrupt row contributes none.
	assert.Equal(t, 2, strings.Count(s, "BEGIN:VEVENT"))
	assert.Contains(t, s, "SUMMARY:bob available: Rehearsal 1")
	assert.Contains(t, s, "20240601")
	assert.Contains(t, s, "20240603")
}

func TestExporter_ExportNoParticipants(t *testing.T) {
	event := &domain.Event{ID: 10, Title: "Rehearsal 1"}
	out, err := NewExporter().Export(event, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "BEGIN:VCALENDAR")
	assert.NotContains(t, string(out), "BEGIN:VEVENT")
}
