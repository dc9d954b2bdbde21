package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// isoMillis matches JavaScript's Date.toISOString output, which is what
// clients of the original API put on the wire.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// EncodeAvailability serializes calendar dates to the transport string:
// a JSON array of ISO-8601 instants in UTC.
func EncodeAvailability(dates []time.Time) (string, error) {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.UTC().Format(isoMillis)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode availability: %w", err)
	}
	return string(b), nil
}

// DecodeAvailability parses the transport string back into dates.
// Malformed input yields an empty slice, never an error: stored
// availability may be corrupt and callers must render "no availability"
// rather than fail.
func DecodeAvailability(text string) []time.Time {
	var raw []string
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return []time.Time{}
	}
	dates := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			continue
		}
		dates = append(dates, t)
	}
	return dates
}

// ValidAvailability reports whether text is a well-formed availability
// payload (a JSON array of strings). Used to validate request bodies
// before they are stored.
func ValidAvailability(text string) bool {
	var raw []string
	return json.Unmarshal([]byte(text), &raw) == nil
}

// DateRange is the candidate window of an event, stored serialized on
// the Event as {"start": ..., "end": ...}.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange parses an event's serialized date range. Unlike the
// availability codec this is strict: a range is planner input and is
// validated at creation time.
func ParseDateRange(text string) (DateRange, error) {
	var r DateRange
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return DateRange{}, fmt.Errorf("parse date range: %w", err)
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return DateRange{}, fmt.Errorf("date range must have start and end")
	}
	if r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("date range end before start")
	}
	return r, nil
}
