package schedule

import (
	"strings"
	"time"

	"menufetcher/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// FromColumns reads the day range column layout:
//
//	<div class="dining-hours-top">
//	  <div class="dining-days-col-1">
//	    <div class="dining-days">Monday - Friday</div>
//	    <div class="dining-hours">Breakfast: 7:30 a.m. - 10 a.m. ...</div>
//	  </div>
//	</div>
//
// The first column whose range contains day wins. Headers that are not a day range
// are skipped and returned so the caller can report them.
func FromColumns(sel *goquery.Selection, day time.Weekday) (Hours, []string, error) {
	var skipped []string
	var found Hours

	sel.Find(".dining-hours-top").EachWithBreak(func(_ int, top *goquery.Selection) bool {
		top.Children().EachWithBreak(func(_ int, column *goquery.Selection) bool {
			class, _ := column.Attr("class")
			if !strings.HasPrefix(class, "dining-days-col-") {
				return true
			}
			header := htmlutil.SelectionOwnText(column.Find(".dining-days").First())
			dayRange, ok := ParseDayRange(header)
			if !ok {
				skipped = append(skipped, header)
				return true
			}
			if !dayRange.Contains(day) {
				return true
			}
			found = MineTimes(htmlutil.NormalizeSpace(column.Find(".dining-hours").First().Text()))
			return false
		})
		return found == nil
	})

	if found == nil {
		return nil, skipped, ErrNoSchedule
	}
	return found, skipped, nil
}
