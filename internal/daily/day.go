package daily

import (
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

var dayInputLayouts = []string{
	DayLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDay turns the optional date parameter into a calendar day: midnight in loc.
// Instants carrying an offset are converted to loc first, local times are read in loc.
// An empty input means today.
func ParseDay(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StartOfDay(now, loc), nil
	}

	for _, layout := range dayInputLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return StartOfDay(t, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC3339", raw)
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func FormatDay(day time.Time) string {
	return day.Format(DayLayout)
}

// WeekOf returns the seven days, Sunday first, of the week containing day.
func WeekOf(day time.Time) [7]time.Time {
	var week [7]time.Time
	sunday := day.AddDate(0, 0, -int(day.Weekday()))
	for i := range week {
		week[i] = sunday.AddDate(0, 0, i)
	}
	return week
}
