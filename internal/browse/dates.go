package browse

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used in criteria and front-page queries.
const DateLayout = "2006-01-02"

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// ParseDate parses a YYYY-MM-DD date in the local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
}

// ClampDate returns date unchanged unless it is empty or later than today,
// in which case today's date is returned.
func ClampDate(date string, now time.Time) (string, error) {
	today := now.In(time.Local).Format(DateLayout)
	date = strings.TrimSpace(date)
	if date == "" {
		return today, nil
	}
	if _, err := ParseDate(date); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	// Lexical order matches chronological order for this layout.
	if date > today {
		return today, nil
	}
	return date, nil
}

// Earliest-date presets offered next to the date filter.
const (
	PresetYesterday = "yesterday"
	PresetWeek      = "week"
	PresetMonth     = "month"
	PresetYear      = "year"
)

// Presets lists the presets in display order.
var Presets = []string{PresetYesterday, PresetWeek, PresetMonth, PresetYear}

// ResolvePreset turns a preset name into a YYYY-MM-DD date relative to now.
// "year" means January 1st of the current year.
func ResolvePreset(preset string, now time.Time) (string, bool) {
	now = now.In(time.Local)
	var d time.Time
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case PresetYesterday:
		d = now.AddDate(0, 0, -1)
	case PresetWeek:
		d = now.AddDate(0, 0, -7)
	case PresetMonth:
		d = now.AddDate(0, -1, 0)
	case PresetYear:
		d = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.Local)
	default:
		return "", false
	}
	return d.Format(DateLayout), true
}
