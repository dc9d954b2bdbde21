package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		dates []time.Time
	}{
		{
			name: "single date",
			dates: []time.Time{
				time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "multiple dates across months",
			dates: []time.Time{
				time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "non-UTC input is normalized",
			dates: []time.Time{
				time.Date(2024, 6, 1, 10, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeAvailability(tt.dates)
			require.NoError(t, err)
			decoded := DecodeAvailability(encoded)
			require.Len(t, decoded, len(tt.dates))
			for i, want := range tt.dates {
				assert.True(t, decoded[i].Equal(want), "date %d: got %v want %v", i, decoded[i], want)
			}
		})
	}
}

func TestEncodeAvailabilityWireFormat(t *testing.T) {
	encoded, err := EncodeAvailability([]time.Time{time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	// Must match JavaScript's Date.toISOString form exactly.
	assert.Equal(t, `["2024-06-01T00:00:00.000Z"]`, encoded)
}

func TestEncodeAvailabilityEmpty(t *testing.T) {
	encoded, err := EncodeAvailability(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)
}

func TestDecodeAvailabilityMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"not json", "tuesday and thursday"},
		{"json object", `{"date":"2024-06-01"}`},
		{"array of numbers", `[1717200000]`},
		{"truncated array", `["2024-06-01T00:00:00.000Z"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := DecodeAvailability(tt.text)
			require.NotNil(t, dates)
			assert.Empty(t, dates)
		})
	}
}

func TestDecodeAvailabilitySkipsUnparseableEntries(t *testing.T) {
	dates := DecodeAvailability(`["2024-06-01T00:00:00.000Z","not-a-date"]`)
	require.Len(t, dates, 1)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), dates[0].UTC())
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"valid", `{"start":"2024-06-01T00:00:00.000Z","end":"2024-06-08T00:00:00.000Z"}`, false},
		{"end before start", `{"start":"2024-06-08T00:00:00.000Z","end":"2024-06-01T00:00:00.000Z"}`, true},
		{"missing end", `{"start":"2024-06-01T00:00:00.000Z"}`, true},
		{"not json", "next week", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseDateRange(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, r.Start.Before(r.End))
		})
	}
}
