package schedule

import (
	"regexp"
	"strings"
	"time"

	"menufetcher/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var blockHeaderRegex = regexp.MustCompile(`^` + dayRangeRegex.String())

// FromText reads the weekday keyed layout, text is expected to hold one paragraph
// per line (see htmlutil.GetBlockText). A line starting with a day name or range
// opens a block, timing lines that follow belong to it. Timings on the header line
// itself count too.
func FromText(text string, day time.Weekday) (Hours, error) {
	hours := Hours{}
	matched := false
	applies := false

	for _, line := range strings.Split(text, "\n") {
		line = htmlutil.NormalizeSpace(line)
		if line == "" {
			continue
		}
		if loc := blockHeaderRegex.FindStringIndex(line); loc != nil {
			dayRange, _ := ParseDayRange(line[loc[0]:loc[1]])
			applies = dayRange.Contains(day)
			matched = matched || applies
			line = line[loc[1]:]
		}
		if applies {
			mineInto(hours, line)
		}
	}

	if !matched {
		return nil, ErrNoSchedule
	}
	return hours, nil
}

// FromSelection tries the column layout first and falls back to the weekday keyed
// text of the selection.
func FromSelection(sel *goquery.Selection, day time.Weekday) (Hours, error) {
	hours, _, err := FromColumns(sel, day)
	if err == nil {
		return hours, nil
	}
	if sel.Length() == 0 {
		return nil, ErrNoSchedule
	}
	var text strings.Builder
	for _, n := range sel.Nodes {
		text.WriteString(htmlutil.GetBlockText(n))
		text.WriteByte('\n')
	}
	return FromText(text.String(), day)
}
