package bitemenu

import (
	"fmt"
	"time"

	"menufetcher/internal/menu"
)

// timestamps are local wall clock times without an offset, ex. "2024-08-28T07:00:00"
const timestampLayout = "2006-01-02T15:04:05"

type menuDay struct {
	Date     string    `json:"date"`
	DayParts []dayPart `json:"dayParts"`
}

type dayPart struct {
	DayPartName string   `json:"dayPartName"`
	Courses     []course `json:"courses"`
}

type course struct {
	CourseName string     `json:"courseName"`
	MenuItems  []menuItem `json:"menuItems"`
}

type menuItem struct {
	FormalName  string `json:"formalName"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

func parseTimestamp(s string) (time.Time, error) {
	if len(s) > len(timestampLayout) {
		s = s[:len(timestampLayout)]
	}
	return time.Parse(timestampLayout, s)
}

func (i menuItem) hours() (menu.TimeRange, error) {
	start, err := parseTimestamp(i.StartTime)
	if err != nil {
		return menu.TimeRange{}, fmt.Errorf("start time of %q: %w", i.FormalName, err)
	}
	end, err := parseTimestamp(i.EndTime)
	if err != nil {
		return menu.TimeRange{}, fmt.Errorf("end time of %q: %w", i.FormalName, err)
	}
	return menu.TimeRange{
		Start: menu.TimeOfDay{Hour: start.Hour(), Minute: start.Minute()},
		End:   menu.TimeOfDay{Hour: end.Hour(), Minute: end.Minute()},
	}, nil
}
