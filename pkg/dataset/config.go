// Package dataset defines the configured Socrata datasets and the fetch
// strategy (single-shot vs per-day) used to pull each one.
package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/transitlab/sodafetch/pkg/soql"
)

// Config describes one dataset pull. Configs are immutable and defined at
// startup; required fields are checked at compile time by construction.
type Config struct {
	// Name is the local dataset name, used in log output and file names.
	Name string

	// ID is the Socrata dataset identifier (e.g., "wujg-7c2s").
	ID string

	// DateColumn is the column the date-range filter applies to.
	DateColumn string

	// DateSemantics selects the filter literal format for DateColumn.
	DateSemantics soql.DateSemantics

	// RangeStart is the inclusive start of the pull range.
	RangeStart time.Time

	// RangeEndExcl is the exclusive end of the pull range.
	RangeEndExcl time.Time

	// Select optionally restricts the returned columns to reduce payload.
	Select []string

	// PerDay splits high-volume pulls into one fetch per calendar day,
	// bounding worst-case payload and isolating failures to a single day.
	PerDay bool
}

// SelectParam renders the column selection as a $select value.
// Returns "" when no selection is configured.
func (c Config) SelectParam() string {
	return strings.Join(c.Select, ",")
}

// OutputFilename returns the output file name for this pull, embedding the
// inclusive start and exclusive end dates.
func (c Config) OutputFilename() string {
	return fmt.Sprintf("%s_%s_to_%s_end_excl.csv",
		c.Name,
		c.RangeStart.Format("2006-01-02"),
		c.RangeEndExcl.Format("2006-01-02"))
}

// Days returns every calendar day in the half-open range [start, endExcl)
// in ascending order.
func Days(start, endExcl time.Time) []time.Time {
	var days []time.Time
	for d := start; d.Before(endExcl); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Builtin returns the configured dataset pulls, in processing order.
func Builtin() []Config {
	// 4 consecutive days: [2024-01-24, 2024-01-28) includes 24..27.
	startDay := time.Date(2024, time.January, 24, 0, 0, 0, 0, time.UTC)
	endDayExcl := time.Date(2024, time.January, 28, 0, 0, 0, 0, time.UTC)

	monthStart := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	monthEndExcl := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	return []Config{
		{
			Name:          "hourly_ridership",
			ID:            "wujg-7c2s",
			DateColumn:    "transit_timestamp",
			DateSemantics: soql.FloatingTimestamp,
			RangeStart:    startDay,
			RangeEndExcl:  endDayExcl,
			Select: []string{
				"transit_timestamp", "transit_mode", "station_complex_id",
				"borough", "payment_method", "fare_class_category",
				"ridership", "transfers", "latitude", "longitude",
			},
			PerDay: true, // high-volume: fetch one day at a time
		},
		{
			Name:          "major_incidents",
			ID:            "j6d2-s8m2",
			DateColumn:    "month",
			DateSemantics: soql.FloatingTimestamp,
			RangeStart:    monthStart,
			RangeEndExcl:  monthEndExcl,
			PerDay:        false, // monthly dataset, fetch once
		},
		{
			Name:          "terminal_otp",
			ID:            "vtvh-gimj",
			DateColumn:    "month",
			DateSemantics: soql.FloatingTimestamp,
			RangeStart:    monthStart,
			RangeEndExcl:  monthEndExcl,
			PerDay:        false, // monthly dataset, fetch once
		},
	}
}
