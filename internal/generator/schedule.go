package generator

import (
	"sort"
	"time"

	"github.com/willfong/ledgergen/internal/config"
	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/generator/patterns"
	"github.com/willfong/ledgergen/internal/logging"
	"github.com/willfong/ledgergen/internal/models"
	"github.com/willfong/ledgergen/internal/utils"
)

// Event is a scheduled date and the reason it exists.
type Event struct {
	Date time.Time
	Kind models.EventKind
}

// Anchor is the month a lump sum lands in.
type Anchor struct {
	Year  int
	Month time.Month
}

func (a Anchor) monthStart() time.Time {
	return time.Date(a.Year, a.Month, 1, 0, 0, 0, 0, time.UTC)
}

// ScheduleConfig holds the inputs to BuildSchedule.
type ScheduleConfig struct {
	Start         time.Time
	End           time.Time
	Target        int
	StipendWindow patterns.DayWindow
	LumpSumWindow patterns.DayWindow
	Anchors       []Anchor
	Weekly        *patterns.WeeklyPattern
}

// ScheduleConfigFrom extracts schedule settings from generation settings.
func ScheduleConfigFrom(cfg config.GenerateConfig) (ScheduleConfig, error) {
	start, end, err := cfg.Range()
	if err != nil {
		return ScheduleConfig{}, apperrors.Configuration(apperrors.CodeInvalidSchedule, "%v", err)
	}
	anchors := make([]Anchor, 0, len(cfg.LumpSum.Anchors))
	for _, a := range cfg.LumpSum.Anchors {
		anchors = append(anchors, Anchor{Year: a.Year, Month: time.Month(a.Month)})
	}
	return ScheduleConfig{
		Start:         start,
		End:           end,
		Target:        cfg.NumTransactions,
		StipendWindow: patterns.DayWindow{Start: cfg.Stipend.WindowStart, End: cfg.Stipend.WindowEnd},
		LumpSumWindow: patterns.DayWindow{Start: cfg.LumpSum.WindowStart, End: cfg.LumpSum.WindowEnd},
		Anchors:       anchors,
		Weekly:        patterns.NewWeeklyPattern(cfg.WeekdayBias),
	}, nil
}

// Schedule is the ordered list of event dates plus bookkeeping about what
// was dropped on the way.
type Schedule struct {
	Events []Event

	Stipends int
	LumpSums int
	Free     int

	// Collisions counts free candidates dropped for landing on a forced date.
	Collisions int
	// Overflow counts free candidates shifted past the range end.
	Overflow int
	// Weekend counts free events placed on Saturday or Sunday.
	Weekend int
	// SkippedAnchors lists lump-sum anchors whose window has no day in range.
	SkippedAnchors []Anchor
}

// Forced is the number of pinned events.
func (s *Schedule) Forced() int {
	return s.Stipends + s.LumpSums
}

// BuildSchedule lays out forced income dates and weekday-biased free dates
// over [Start, End). The result is sorted ascending by date; events on the
// same date keep generation order.
func BuildSchedule(cfg ScheduleConfig, rng *utils.Random) (*Schedule, error) {
	log := logging.Component("schedule")

	if !cfg.End.After(cfg.Start) {
		return nil, apperrors.Configuration(apperrors.CodeInvalidSchedule,
			"end date %s must be after start date %s",
			cfg.End.Format(utils.DateLayout), cfg.Start.Format(utils.DateLayout))
	}
	weekly := cfg.Weekly
	if weekly == nil {
		weekly = patterns.NewWeeklyPattern(config.WeekdayBias)
	}

	s := &Schedule{}
	forced := make(map[time.Time]bool)
	stipendByMonth := make(map[time.Time]time.Time)

	for _, month := range patterns.Months(cfg.Start, cfg.End) {
		day := rng.IntRange(cfg.StipendWindow.Start, cfg.StipendWindow.End)
		if last := utils.DaysInMonth(month.Year(), month.Month()); day > last {
			day = last
		}
		date := patterns.ClampToRange(month.AddDate(0, 0, day-1), cfg.Start, cfg.End)
		stipendByMonth[month] = date
		forced[date] = true
		s.Events = append(s.Events, Event{Date: date, Kind: models.EventMonthlyStipend})
		s.Stipends++
	}

	for _, a := range cfg.Anchors {
		month := a.monthStart()
		if _, ok := stipendByMonth[month]; !ok {
			log.Warnf("lump-sum anchor %d-%02d is outside %s..%s, skipping",
				a.Year, a.Month, cfg.Start.Format(utils.DateLayout), cfg.End.Format(utils.DateLayout))
			s.SkippedAnchors = append(s.SkippedAnchors, a)
			continue
		}

		window := cfg.LumpSumWindow.Dates(month, cfg.Start, cfg.End)
		if len(window) == 0 {
			log.Warnf("lump-sum window %d-%d of %d-%02d lies outside %s..%s, skipping",
				cfg.LumpSumWindow.Start, cfg.LumpSumWindow.End, a.Year, a.Month,
				cfg.Start.Format(utils.DateLayout), cfg.End.Format(utils.DateLayout))
			s.SkippedAnchors = append(s.SkippedAnchors, a)
			continue
		}
		var candidates []time.Time
		for _, d := range window {
			if !forced[d] {
				candidates = append(candidates, d)
			}
		}
		if len(candidates) == 0 {
			return nil, apperrors.Configuration(apperrors.CodeInvalidSchedule,
				"no free day in the lump-sum window %d-%d for %d-%02d",
				cfg.LumpSumWindow.Start, cfg.LumpSumWindow.End, a.Year, a.Month).
				WithSuggestion("Widen generate.lump_sum.window_* or move the anchor to another month")
		}

		date := candidates[rng.IntN(len(candidates))]
		forced[date] = true
		s.Events = append(s.Events, Event{Date: date, Kind: models.EventLumpSum})
		s.LumpSums++
	}

	if cfg.Target < s.Forced() {
		return nil, apperrors.Configuration(apperrors.CodeInvalidSchedule,
			"target of %d transactions is below the %d forced income events", cfg.Target, s.Forced()).
			WithSuggestion("Increase --count or shorten the date range")
	}

	for i := cfg.Target - s.Forced(); i > 0; i-- {
		day := rng.Day(cfg.Start, cfg.End)
		target := weekly.TargetWeekday(rng.Float64(), rng.Float64())
		date := patterns.ShiftForward(day, target)

		switch {
		case !date.Before(cfg.End):
			s.Overflow++
		case forced[date]:
			s.Collisions++
		default:
			s.Events = append(s.Events, Event{Date: date, Kind: models.EventFree})
			s.Free++
			if patterns.IsWeekend(date.Weekday()) {
				s.Weekend++
			}
		}
	}

	sort.SliceStable(s.Events, func(i, j int) bool {
		return s.Events[i].Date.Before(s.Events[j].Date)
	})

	log.WithFields(logging.Fields{
		"free":    s.Free,
		"weekend": s.Weekend,
	}).Debugf("placed %d free events", s.Free)
	if s.Collisions > 0 || s.Overflow > 0 {
		log.WithFields(logging.Fields{
			"collisions": s.Collisions,
			"overflow":   s.Overflow,
		}).Debugf("dropped %d free candidates", s.Collisions+s.Overflow)
	}

	return s, nil
}

// ByKind counts events of each kind.
func (s *Schedule) ByKind() map[models.EventKind]int {
	return map[models.EventKind]int{
		models.EventMonthlyStipend: s.Stipends,
		models.EventLumpSum:        s.LumpSums,
		models.EventFree:           s.Free,
	}
}
