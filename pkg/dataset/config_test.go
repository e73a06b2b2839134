package dataset

import (
	"testing"
	"time"

	"github.com/transitlab/sodafetch/pkg/soql"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDays(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		endExcl time.Time
		want    []time.Time
	}{
		{
			name:    "four day range excludes end",
			start:   day(2024, time.January, 24),
			endExcl: day(2024, time.January, 28),
			want: []time.Time{
				day(2024, time.January, 24),
				day(2024, time.January, 25),
				day(2024, time.January, 26),
				day(2024, time.January, 27),
			},
		},
		{
			name:    "single day",
			start:   day(2024, time.January, 24),
			endExcl: day(2024, time.January, 25),
			want:    []time.Time{day(2024, time.January, 24)},
		},
		{
			name:    "month boundary crossing",
			start:   day(2024, time.January, 31),
			endExcl: day(2024, time.February, 2),
			want: []time.Time{
				day(2024, time.January, 31),
				day(2024, time.February, 1),
			},
		},
		{
			name:    "empty range",
			start:   day(2024, time.January, 24),
			endExcl: day(2024, time.January, 24),
			want:    nil,
		},
		{
			name:    "inverted range",
			start:   day(2024, time.January, 28),
			endExcl: day(2024, time.January, 24),
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Days(tt.start, tt.endExcl)
			if len(got) != len(tt.want) {
				t.Fatalf("Days() returned %d days, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("Days()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestConfig_OutputFilename(t *testing.T) {
	cfg := Config{
		Name:         "hourly_ridership",
		RangeStart:   day(2024, time.January, 24),
		RangeEndExcl: day(2024, time.January, 28),
	}

	want := "hourly_ridership_2024-01-24_to_2024-01-28_end_excl.csv"
	if got := cfg.OutputFilename(); got != want {
		t.Errorf("OutputFilename() = %q, want %q", got, want)
	}
}

func TestConfig_SelectParam(t *testing.T) {
	cfg := Config{Select: []string{"transit_timestamp", "ridership", "transfers"}}
	if got := cfg.SelectParam(); got != "transit_timestamp,ridership,transfers" {
		t.Errorf("SelectParam() = %q", got)
	}

	empty := Config{}
	if got := empty.SelectParam(); got != "" {
		t.Errorf("SelectParam() for no selection = %q, want empty", got)
	}
}

func TestBuiltin(t *testing.T) {
	configs := Builtin()
	if len(configs) != 3 {
		t.Fatalf("Expected 3 built-in datasets, got %d", len(configs))
	}

	wantOrder := []string{"hourly_ridership", "major_incidents", "terminal_otp"}
	for i, name := range wantOrder {
		if configs[i].Name != name {
			t.Errorf("Builtin()[%d].Name = %q, want %q", i, configs[i].Name, name)
		}
	}

	ridership := configs[0]
	if !ridership.PerDay {
		t.Error("hourly_ridership must be fetched per day")
	}
	if ridership.DateSemantics != soql.FloatingTimestamp {
		t.Errorf("hourly_ridership semantics = %q", ridership.DateSemantics)
	}
	if len(ridership.Select) == 0 {
		t.Error("hourly_ridership should restrict columns")
	}

	for _, cfg := range configs[1:] {
		if cfg.PerDay {
			t.Errorf("%s is monthly and must not be per-day", cfg.Name)
		}
		if cfg.Select != nil {
			t.Errorf("%s should not restrict columns", cfg.Name)
		}
	}
}
