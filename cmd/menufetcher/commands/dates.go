package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type dateFlags struct {
	dates []string
	from  string
	to    string
	days  int
}

func addDateFlags(cmd *cobra.Command, f *dateFlags) {
	flags := cmd.Flags()
	flags.StringSliceVarP(&f.dates, "date", "d", nil, "A list of dates (YYYY-MM-DD) to fetch.")
	flags.StringVarP(&f.from, "from", "s", "", "The first date to fetch, defaults to today.")
	flags.StringVarP(&f.to, "to", "e", "", "The last date to fetch.")
	flags.IntVarP(&f.days, "days", "n", 1, "How many days to fetch starting at --from.")
	cmd.MarkFlagsMutuallyExclusive("date", "from")
	cmd.MarkFlagsMutuallyExclusive("date", "to")
	cmd.MarkFlagsMutuallyExclusive("date", "days")
	cmd.MarkFlagsMutuallyExclusive("to", "days")
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return day, nil
}

// resolve returns the dates to fetch as midnights in loc. Without flags it is
// just today.
func (f dateFlags) resolve(now time.Time, loc *time.Location) ([]time.Time, error) {
	if len(f.dates) > 0 {
		out := make([]time.Time, 0, len(f.dates))
		for _, s := range f.dates {
			day, err := parseDate(s, loc)
			if err != nil {
				return nil, err
			}
			out = append(out, day)
		}
		return out, nil
	}

	now = now.In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if f.from != "" {
		var err error
		start, err = parseDate(f.from, loc)
		if err != nil {
			return nil, err
		}
	}

	if f.to != "" {
		end, err := parseDate(f.to, loc)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, fmt.Errorf("--to %s is before --from %s", f.to, start.Format(time.DateOnly))
		}
		var out []time.Time
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			out = append(out, day)
		}
		return out, nil
	}

	if f.days < 1 {
		return nil, fmt.Errorf("--days must be at least 1")
	}
	out := make([]time.Time, f.days)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out, nil
}
