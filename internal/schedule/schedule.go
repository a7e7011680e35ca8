// Package schedule mines meal hours out of free text published next to the menus.
//
// Two layouts are understood:
//
//   - day range columns: each column carries a header like "Monday - Friday" and a
//     body of timing lines (FromColumns)
//   - weekday keyed text: a flat run of paragraphs where a line starting with a day
//     name (or a day range) opens a block of timing lines (FromText)
//
// Timing lines look like "Breakfast: 7:30 a.m. - 10 a.m.".
package schedule

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"menufetcher/internal/components/chrono"
	"menufetcher/internal/menu"
)

// Hours maps a meal name to its serving window.
type Hours map[string]menu.TimeRange

// ErrNoSchedule is returned when no block applies to the requested day.
var ErrNoSchedule = errors.New("no hours published for day")

const dayNames = `(Mon|Tues|Wednes|Thurs|Fri|Satur|Sun)day`

var dayRangeRegex = regexp.MustCompile(dayNames + `(?:\s*[-–]\s*` + dayNames + `)?`)

var mealTimeRegex = regexp.MustCompile(
	`([A-Z][a-z]*(?: [A-Z][a-z]*)*): ?` +
		`([1-9][0-9]?)(?::([0-9][0-9]))? ?([aApP])\.?[mM]\.?\s*[-–]\s*` +
		`([1-9][0-9]?)(?::([0-9][0-9]))? ?([aApP])\.?[mM]\.?`,
)

var weekdayPrefixes = map[string]time.Weekday{
	"Mon":    time.Monday,
	"Tues":   time.Tuesday,
	"Wednes": time.Wednesday,
	"Thurs":  time.Thursday,
	"Fri":    time.Friday,
	"Satur":  time.Saturday,
	"Sun":    time.Sunday,
}

// DayRange is an inclusive range of weekdays in Monday..Sunday order.
type DayRange struct {
	Start time.Weekday
	End   time.Weekday
}

func (r DayRange) Contains(day time.Weekday) bool {
	d := chrono.ISOWeekday(day)
	return d >= chrono.ISOWeekday(r.Start) && d <= chrono.ISOWeekday(r.End)
}

// ParseDayRange finds the first "Monday" or "Monday-Friday" style range in text.
func ParseDayRange(text string) (DayRange, bool) {
	groups := dayRangeRegex.FindStringSubmatch(text)
	if groups == nil {
		return DayRange{}, false
	}
	start := weekdayPrefixes[groups[1]]
	end := start
	if groups[2] != "" {
		end = weekdayPrefixes[groups[2]]
	}
	return DayRange{Start: start, End: end}, true
}

func clock(hour, minute, meridiem string) menu.TimeOfDay {
	h, _ := strconv.Atoi(hour)
	m := 0
	if minute != "" {
		m, _ = strconv.Atoi(minute)
	}
	h = h % 12
	if strings.EqualFold(meridiem, "p") {
		h += 12
	}
	return menu.TimeOfDay{Hour: h, Minute: m}
}

// MineTimes extracts every timing line out of text.
func MineTimes(text string) Hours {
	hours := Hours{}
	mineInto(hours, text)
	return hours
}

func mineInto(hours Hours, text string) {
	for _, m := range mealTimeRegex.FindAllStringSubmatch(text, -1) {
		name := m[1]
		r := menu.TimeRange{
			Start: clock(m[2], m[3], m[4]),
			End:   clock(m[5], m[6], m[7]),
		}
		hours[name] = r
		if alias, ok := menu.HoursAliases[name]; ok {
			hours[alias] = r
		}
	}
}
