package generator

import (
	"sort"
	"time"

	"github.com/willfong/ledgergen/internal/config"
	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/utils"
)

// LocationPeriod is one stay on the timeline. End is exclusive.
type LocationPeriod struct {
	Country string
	City    string
	Start   time.Time
	End     time.Time
}

// Contains reports whether date falls in [Start, End).
func (p LocationPeriod) Contains(date time.Time) bool {
	return !date.Before(p.Start) && date.Before(p.End)
}

// LocationTimeline answers "where was the account holder on this day".
// It is immutable after construction and safe for concurrent lookups.
type LocationTimeline struct {
	periods []LocationPeriod
}

// NewLocationTimeline validates periods against the generation range
// [start, end). Periods must be sorted, non-empty, contiguous and begin on
// or before start. The last period is stretched or cut to end exactly at
// end; periods starting at or after end are discarded.
func NewLocationTimeline(periods []LocationPeriod, start, end time.Time) (*LocationTimeline, error) {
	if len(periods) == 0 {
		return nil, apperrors.Configuration(apperrors.CodeInvalidTimeline, "location timeline is empty")
	}
	if !end.After(start) {
		return nil, apperrors.Configuration(apperrors.CodeInvalidTimeline,
			"timeline range end %s is not after start %s", end.Format(utils.DateLayout), start.Format(utils.DateLayout))
	}

	for i, p := range periods {
		if !p.Contains(p.Start) {
			return nil, apperrors.Configuration(apperrors.CodeInvalidTimeline,
				"period %d (%s/%s) ends on or before it starts", i, p.Country, p.City).
				WithContext("start", p.Start.Format(utils.DateLayout)).
				WithContext("end", p.End.Format(utils.DateLayout))
		}
		if i == 0 {
			continue
		}
		prev := periods[i-1]
		switch {
		case p.Start.Before(prev.End):
			return nil, apperrors.Configuration(apperrors.CodeInvalidTimeline,
				"period %d (%s/%s) overlaps or precedes period %d (%s/%s)", i, p.Country, p.City, i-1, prev.Country, prev.City)
		case p.Start.After(prev.End):
			return nil, apperrors.Configuration(apperrors.CodeInvalidTimeline,
				"gap between period %d ending %s and period %d starting %s",
				i-1, prev.End.Format(utils.DateLayout), i, p.Start.Format(utils.DateLayout))
		}
	}

	if periods[0].Start.After(start) {
		return nil, apperrors.Configuration(apperrors.CodeInvalidTimeline,
			"timeline starts %s, after the range start %s",
			periods[0].Start.Format(utils.DateLayout), start.Format(utils.DateLayout))
	}

	kept := make([]LocationPeriod, 0, len(periods))
	for _, p := range periods {
		if !p.Start.Before(end) {
			break
		}
		kept = append(kept, p)
	}
	kept[len(kept)-1].End = end

	return &LocationTimeline{periods: kept}, nil
}

// TimelineFromConfig parses configured periods.
func TimelineFromConfig(cfg []config.PeriodConfig, start, end time.Time) (*LocationTimeline, error) {
	periods := make([]LocationPeriod, 0, len(cfg))
	for i, pc := range cfg {
		ps, err := utils.ParseDate(pc.Start)
		if err != nil {
			return nil, apperrors.Configuration(apperrors.CodeInvalidTimeline, "timeline[%d].start: %v", i, err)
		}
		pe, err := utils.ParseDate(pc.End)
		if err != nil {
			return nil, apperrors.Configuration(apperrors.CodeInvalidTimeline, "timeline[%d].end: %v", i, err)
		}
		periods = append(periods, LocationPeriod{Country: pc.Country, City: pc.City, Start: ps, End: pe})
	}
	return NewLocationTimeline(periods, start, end)
}

// Lookup returns the country and city for date. Dates on or after the last
// period's end resolve to the last period and dates before the first period
// resolve to the first; schedule drift past the configured end therefore
// keeps the final location.
func (lt *LocationTimeline) Lookup(date time.Time) (country, city string) {
	p := lt.periodFor(utils.TruncateDay(date))
	return p.Country, p.City
}

func (lt *LocationTimeline) periodFor(date time.Time) LocationPeriod {
	// First period whose End is after date.
	i := sort.Search(len(lt.periods), func(i int) bool {
		return lt.periods[i].End.After(date)
	})
	if i == len(lt.periods) {
		return lt.periods[len(lt.periods)-1]
	}
	return lt.periods[i]
}

// Periods returns a copy of the normalized periods.
func (lt *LocationTimeline) Periods() []LocationPeriod {
	out := make([]LocationPeriod, len(lt.periods))
	copy(out, lt.periods)
	return out
}

// Countries returns each distinct country in timeline order.
func (lt *LocationTimeline) Countries() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range lt.periods {
		if !seen[p.Country] {
			seen[p.Country] = true
			out = append(out, p.Country)
		}
	}
	return out
}
