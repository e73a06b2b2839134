package dataset

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/transitlab/sodafetch/pkg/pagination"
	"github.com/transitlab/sodafetch/pkg/soql"
)

// fakeSource records every FetchAll invocation and serves canned rows
// keyed by the where clause.
type fakeSource struct {
	wheres  []string
	selects []string
	rowsFor map[string][]pagination.Row
	errFor  map[string]error
}

func (f *fakeSource) FetchAll(ctx context.Context, datasetID, where, selectCols string) ([]pagination.Row, error) {
	f.wheres = append(f.wheres, where)
	f.selects = append(f.selects, selectCols)
	if err := f.errFor[where]; err != nil {
		return nil, err
	}
	return f.rowsFor[where], nil
}

func perDayConfig() Config {
	return Config{
		Name:          "hourly_ridership",
		ID:            "wujg-7c2s",
		DateColumn:    "transit_timestamp",
		DateSemantics: soql.FloatingTimestamp,
		RangeStart:    time.Date(2024, time.January, 24, 0, 0, 0, 0, time.UTC),
		RangeEndExcl:  time.Date(2024, time.January, 28, 0, 0, 0, 0, time.UTC),
		PerDay:        true,
	}
}

func dayWhere(d int) string {
	start := time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
	return soql.Where("transit_timestamp", soql.FloatingTimestamp, start, start.AddDate(0, 0, 1))
}

func TestFetch_PerDayIssuesOneFilterPerDay(t *testing.T) {
	source := &fakeSource{rowsFor: map[string][]pagination.Row{}}

	_, err := Fetch(context.Background(), source, perDayConfig())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(source.wheres) != 4 {
		t.Fatalf("Expected 4 day filters, got %d", len(source.wheres))
	}

	for i, d := range []int{24, 25, 26, 27} {
		want := dayWhere(d)
		if source.wheres[i] != want {
			t.Errorf("Filter %d = %q, want %q", i, source.wheres[i], want)
		}
	}

	// Each filter must be a distinct one-day half-open interval.
	seen := map[string]bool{}
	for _, w := range source.wheres {
		if seen[w] {
			t.Errorf("Duplicate day filter %q", w)
		}
		seen[w] = true
		if !strings.Contains(w, ">=") || !strings.Contains(w, "<") {
			t.Errorf("Filter %q is not half-open", w)
		}
	}
}

func TestFetch_PerDaySkipsEmptyDaysAndPreservesOrder(t *testing.T) {
	source := &fakeSource{rowsFor: map[string][]pagination.Row{
		dayWhere(24): {{"id": "24a"}, {"id": "24b"}},
		// Jan 25 yields nothing.
		dayWhere(26): {{"id": "26a"}},
		dayWhere(27): {{"id": "27a"}},
	}}

	rows, err := Fetch(context.Background(), source, perDayConfig())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := []string{"24a", "24b", "26a", "27a"}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(rows))
	}
	for i, id := range want {
		if rows[i]["id"] != id {
			t.Errorf("Row %d id = %v, want %q", i, rows[i]["id"], id)
		}
	}
}

func TestFetch_PerDayFailureAbortsDataset(t *testing.T) {
	dayErr := errors.New("socrata down")
	source := &fakeSource{
		rowsFor: map[string][]pagination.Row{
			dayWhere(24): {{"id": "24a"}},
		},
		errFor: map[string]error{
			dayWhere(25): dayErr,
		},
	}

	rows, err := Fetch(context.Background(), source, perDayConfig())
	if !errors.Is(err, dayErr) {
		t.Fatalf("Expected wrapped day error, got %v", err)
	}
	if rows != nil {
		t.Error("A failing day must yield no partial table")
	}
	if len(source.wheres) != 2 {
		t.Errorf("Fetching must stop at the failing day, got %d calls", len(source.wheres))
	}
}

func TestFetch_SingleShotUsesFullRangeFilter(t *testing.T) {
	cfg := Config{
		Name:          "major_incidents",
		ID:            "j6d2-s8m2",
		DateColumn:    "month",
		DateSemantics: soql.FloatingTimestamp,
		RangeStart:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		RangeEndExcl:  time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		PerDay:        false,
	}

	want := soql.Where("month", soql.FloatingTimestamp, cfg.RangeStart, cfg.RangeEndExcl)
	source := &fakeSource{rowsFor: map[string][]pagination.Row{
		want: {{"month": "2024-01-01T00:00:00.000"}},
	}}

	rows, err := Fetch(context.Background(), source, cfg)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(source.wheres) != 1 {
		t.Fatalf("Expected exactly 1 fetch, got %d", len(source.wheres))
	}
	if source.wheres[0] != want {
		t.Errorf("Filter = %q, want %q", source.wheres[0], want)
	}
	if len(rows) != 1 {
		t.Errorf("Expected 1 row, got %d", len(rows))
	}
}

func TestFetch_SelectionPassedThrough(t *testing.T) {
	cfg := perDayConfig()
	cfg.Select = []string{"transit_timestamp", "ridership"}

	source := &fakeSource{rowsFor: map[string][]pagination.Row{}}
	if _, err := Fetch(context.Background(), source, cfg); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	for i, sel := range source.selects {
		if sel != "transit_timestamp,ridership" {
			t.Errorf("Call %d selection = %q", i, sel)
		}
	}
}
