package reports

import (
	"errors"
	"strings"
	"time"

	"hardware-backoffice/internal/phtime"
)

const (
	RangeToday     = "today"
	RangeThisWeek  = "this_week"
	RangeThisMonth = "this_month"
	RangeThisYear  = "this_year"
	RangeCustom    = "custom"
	RangeAll       = "all"
)

var (
	// ErrUnknownRange is returned for an unrecognized preset.
	ErrUnknownRange = errors.New("reports: unknown range preset")
	// ErrCustomDatesRequired blocks custom exports missing either bound.
	ErrCustomDatesRequired = errors.New("reports: custom range requires start and end dates")
)

// Range is a resolved export window. All reports "everything"; Start
// and End are zero in that case.
type Range struct {
	Preset string
	Start  time.Time
	End    time.Time
	All    bool
}

// ResolveRange turns a preset (plus custom bounds) into concrete
// instants relative to now. Custom bounds are YYYY-MM-DD literals.
func ResolveRange(preset, customStart, customEnd string, now time.Time) (Range, error) {
	switch preset {
	case RangeToday:
		return Range{Preset: preset, Start: phtime.StartOfDay(now), End: phtime.EndOfDay(now)}, nil
	case RangeThisWeek:
		return Range{Preset: preset, Start: phtime.StartOfWeek(now), End: phtime.EndOfWeek(now)}, nil
	case RangeThisMonth:
		return Range{Preset: preset, Start: phtime.StartOfMonth(now), End: phtime.EndOfMonth(now)}, nil
	case RangeThisYear:
		return Range{Preset: preset, Start: phtime.StartOfYear(now), End: phtime.EndOfYear(now)}, nil
	case RangeCustom:
		if customStart == "" || customEnd == "" {
			return Range{}, ErrCustomDatesRequired
		}
		start, err := phtime.StartOfDateString(customStart)
		if err != nil {
			return Range{}, err
		}
		end, err := phtime.EndOfDateString(customEnd)
		if err != nil {
			return Range{}, err
		}
		if end.Before(start) {
			return Range{}, errors.New("reports: custom range end before start")
		}
		return Range{Preset: preset, Start: start, End: end}, nil
	case RangeAll, "":
		return Range{Preset: RangeAll, All: true}, nil
	default:
		return Range{}, ErrUnknownRange
	}
}

// Label builds the filename-safe descriptor for the range.
func (r Range) Label() string {
	switch r.Preset {
	case RangeToday:
		return sanitizeLabel("TODAY_" + phtime.FormatDate(r.Start))
	case RangeThisWeek:
		return sanitizeLabel("THIS_WEEK_" + phtime.FormatDate(r.Start) + "_to_" + phtime.FormatDate(r.End))
	case RangeThisMonth:
		return sanitizeLabel("THIS_MONTH_" + r.Start.In(phtime.Location).Format("2006-01"))
	case RangeThisYear:
		return sanitizeLabel("THIS_YEAR_" + r.Start.In(phtime.Location).Format("2006"))
	case RangeCustom:
		return sanitizeLabel("CUSTOM_" + phtime.FormatDate(r.Start) + "_to_" + phtime.FormatDate(r.End))
	default:
		return "ALL"
	}
}

// sanitizeLabel keeps filename-safe characters only.
func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
