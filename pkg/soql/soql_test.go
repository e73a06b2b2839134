package soql

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWhere(t *testing.T) {
	tests := []struct {
		name     string
		col      string
		sem      DateSemantics
		start    time.Time
		endExcl  time.Time
		expected string
	}{
		{
			name:     "calendar date renders bare date literals",
			col:      "incident_date",
			sem:      CalendarDate,
			start:    day(2024, time.January, 24),
			endExcl:  day(2024, time.January, 28),
			expected: "incident_date >= '2024-01-24' AND incident_date < '2024-01-28'",
		},
		{
			name:     "floating timestamp renders midnight timestamps",
			col:      "transit_timestamp",
			sem:      FloatingTimestamp,
			start:    day(2024, time.January, 24),
			endExcl:  day(2024, time.January, 28),
			expected: "transit_timestamp >= '2024-01-24T00:00:00' AND transit_timestamp < '2024-01-28T00:00:00'",
		},
		{
			name:     "single day half-open interval",
			col:      "transit_timestamp",
			sem:      FloatingTimestamp,
			start:    day(2024, time.January, 24),
			endExcl:  day(2024, time.January, 25),
			expected: "transit_timestamp >= '2024-01-24T00:00:00' AND transit_timestamp < '2024-01-25T00:00:00'",
		},
		{
			name:     "month boundary",
			col:      "month",
			sem:      FloatingTimestamp,
			start:    day(2024, time.January, 1),
			endExcl:  day(2024, time.February, 1),
			expected: "month >= '2024-01-01T00:00:00' AND month < '2024-02-01T00:00:00'",
		},
		{
			name:     "start equal to end yields zero-row filter not an error",
			col:      "month",
			sem:      CalendarDate,
			start:    day(2024, time.January, 1),
			endExcl:  day(2024, time.January, 1),
			expected: "month >= '2024-01-01' AND month < '2024-01-01'",
		},
		{
			name:     "non-midnight input is anchored to midnight",
			col:      "transit_timestamp",
			sem:      FloatingTimestamp,
			start:    time.Date(2024, time.January, 24, 13, 45, 7, 0, time.UTC),
			endExcl:  time.Date(2024, time.January, 25, 1, 2, 3, 0, time.UTC),
			expected: "transit_timestamp >= '2024-01-24T00:00:00' AND transit_timestamp < '2024-01-25T00:00:00'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Where(tt.col, tt.sem, tt.start, tt.endExcl)
			if got != tt.expected {
				t.Errorf("Where() = %q, want %q", got, tt.expected)
			}
		})
	}
}
