package generator

import (
	"testing"
	"time"

	"github.com/willfong/ledgergen/internal/config"
	apperrors "github.com/willfong/ledgergen/internal/errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func defaultTimeline(t *testing.T) *LocationTimeline {
	t.Helper()
	g := config.DefaultConfig().Generate
	start, end, err := g.Range()
	if err != nil {
		t.Fatal(err)
	}
	tl, err := TimelineFromConfig(g.Timeline, start, end)
	if err != nil {
		t.Fatalf("default timeline rejected: %v", err)
	}
	return tl
}

func TestTimelineLookup(t *testing.T) {
	tl := defaultTimeline(t)

	tests := []struct {
		date    time.Time
		country string
		city    string
	}{
		{day(2024, 9, 1), "Belgium", "Brussels"},
		{day(2025, 2, 28), "Belgium", "Brussels"},
		{day(2025, 3, 1), "Spain", "Barcelona"},
		{day(2025, 8, 31), "Spain", "Barcelona"},
		{day(2025, 9, 1), "Germany", "Berlin"},
		{day(2025, 11, 1), "France", "Paris"},
		{day(2026, 4, 30), "France", "Paris"},
		// Outside the range clamps to the nearest end.
		{day(2026, 6, 15), "France", "Paris"},
		{day(2024, 1, 1), "Belgium", "Brussels"},
		// Time of day is ignored.
		{time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC), "Belgium", "Brussels"},
	}
	for _, tt := range tests {
		country, city := tl.Lookup(tt.date)
		if country != tt.country || city != tt.city {
			t.Errorf("Lookup(%s) = %s/%s, want %s/%s",
				tt.date.Format("2006-01-02"), country, city, tt.country, tt.city)
		}
	}

	want := []string{"Belgium", "Spain", "Germany", "France"}
	got := tl.Countries()
	if len(got) != len(want) {
		t.Fatalf("Countries() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Countries()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTimelineNormalizesEnd(t *testing.T) {
	periods := []LocationPeriod{
		{Country: "Belgium", City: "Brussels", Start: day(2024, 9, 1), End: day(2024, 10, 1)},
		{Country: "Spain", City: "Barcelona", Start: day(2024, 10, 1), End: day(2025, 1, 1)},
		{Country: "France", City: "Paris", Start: day(2025, 1, 1), End: day(2025, 6, 1)},
	}

	tl, err := NewLocationTimeline(periods, day(2024, 9, 1), day(2024, 11, 1))
	if err != nil {
		t.Fatal(err)
	}
	got := tl.Periods()
	if len(got) != 2 {
		t.Fatalf("expected periods past the range to be dropped, got %d", len(got))
	}
	if !got[1].End.Equal(day(2024, 11, 1)) {
		t.Errorf("last period should end at the range end, got %s", got[1].End)
	}

	// Short last period is stretched to the range end.
	tl, err = NewLocationTimeline(periods[:1], day(2024, 9, 1), day(2024, 12, 1))
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := tl.Lookup(day(2024, 11, 30)); c != "Belgium" {
		t.Errorf("stretched period lookup = %s", c)
	}
}

func TestTimelineValidation(t *testing.T) {
	start, end := day(2024, 9, 1), day(2025, 1, 1)

	tests := []struct {
		name    string
		periods []LocationPeriod
	}{
		{"empty", nil},
		{"zero length", []LocationPeriod{
			{Country: "Belgium", Start: day(2024, 9, 1), End: day(2024, 9, 1)},
		}},
		{"gap", []LocationPeriod{
			{Country: "Belgium", Start: day(2024, 9, 1), End: day(2024, 10, 1)},
			{Country: "Spain", Start: day(2024, 10, 5), End: day(2025, 1, 1)},
		}},
		{"overlap", []LocationPeriod{
			{Country: "Belgium", Start: day(2024, 9, 1), End: day(2024, 10, 10)},
			{Country: "Spain", Start: day(2024, 10, 1), End: day(2025, 1, 1)},
		}},
		{"starts late", []LocationPeriod{
			{Country: "Belgium", Start: day(2024, 9, 2), End: day(2025, 1, 1)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLocationTimeline(tt.periods, start, end)
			if !apperrors.Is(err, apperrors.CodeInvalidTimeline) {
				t.Errorf("expected invalid timeline error, got %v", err)
			}
			if apperrors.ExitCode(err) != 4 {
				t.Errorf("exit code = %d, want 4", apperrors.ExitCode(err))
			}
		})
	}

	if _, err := NewLocationTimeline([]LocationPeriod{
		{Country: "Belgium", Start: start, End: end},
	}, end, start); err == nil {
		t.Error("inverted range should be rejected")
	}
}

func TestTimelineFromConfigBadDate(t *testing.T) {
	_, err := TimelineFromConfig([]config.PeriodConfig{
		{Country: "Belgium", City: "Brussels", Start: "2024-13-01", End: "2025-01-01"},
	}, day(2024, 9, 1), day(2025, 1, 1))
	if !apperrors.Is(err, apperrors.CodeInvalidTimeline) {
		t.Errorf("expected invalid timeline error, got %v", err)
	}
}
