package bonappetit

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"menufetcher/internal/components/chrono"
	"menufetcher/lib/textutil"

	"github.com/antzucaro/matchr"
	"github.com/mmcdole/gofeed"
)

const (
	report_rss_unresolved = "rss.unresolved-item"
	report_rss_title      = "rss.item-title"
)

const rssTitleLayout = "Mon, 02 Jan 2006"

var (
	mealTitleRegex = regexp.MustCompile(`<h3>([^<]+)</h3>`)
	rssItemRegex   = regexp.MustCompile(`<h4>\s*\[([^\]]+)\]\s*([^<]+)</h4>`)
)

// feedItemFor returns the description of the feed entry published for day.
func (s *Scraper) feedItemFor(feed *gofeed.Feed, day time.Time) (string, bool) {
	for _, entry := range feed.Items {
		date, err := time.ParseInLocation(rssTitleLayout, strings.TrimSpace(entry.Title), day.Location())
		if err != nil {
			s.tel.ReportWarning(report_rss_title, entry.Title, err)
			continue
		}
		if chrono.SameDate(date, day) {
			return entry.Description, true
		}
	}
	return "", false
}

// rssDayparts rebuilds the dayparts of a feed entry:
//
//	<h3>Lunch</h3>
//	<h4>[Grill] Burger</h4>
//	<h4>[Grill] Fries&nbsp;</h4>
//
// Item names are resolved back to ids of the day's item table, rss meals carry no
// hours so they get a 00:00 - 00:00 range.
func (s *Scraper) rssDayparts(text string, items map[string]item) []daypart {
	titles := mealTitleRegex.FindAllStringSubmatchIndex(text, -1)

	dayparts := make([]daypart, 0, len(titles))
	for i, loc := range titles {
		end := len(text)
		if i+1 < len(titles) {
			end = titles[i+1][0]
		}
		dayparts = append(dayparts, daypart{
			Label:     strings.TrimSpace(text[loc[2]:loc[3]]),
			Starttime: "00:00",
			Endtime:   "00:00",
			Stations:  s.rssStations(text[loc[1]:end], items),
		})
	}
	return dayparts
}

func (s *Scraper) rssStations(text string, items map[string]item) []station {
	var stations []station
	index := map[string]int{}
	for _, m := range rssItemRegex.FindAllStringSubmatch(text, -1) {
		stationName := strings.TrimSpace(m[1])
		idx, ok := index[stationName]
		if !ok {
			idx = len(stations)
			index[stationName] = idx
			stations = append(stations, station{Label: stationName, Items: []string{}})
		}

		id, ok := resolveItemId(m[2], items)
		if !ok {
			closest := closestLabel(m[2], items)
			s.tel.ReportWarning(report_rss_unresolved, fmt.Errorf("no item id for %q (closest %q)", m[2], closest))
			continue
		}
		stations[idx].Items = append(stations[idx].Items, id)
	}
	return stations
}

func resolveItemId(name string, items map[string]item) (string, bool) {
	name = textutil.TrimItemName(name)
	for _, id := range sortedItemIds(items) {
		if strings.EqualFold(items[id].Label, name) {
			return id, true
		}
	}
	return "", false
}

func closestLabel(name string, items map[string]item) string {
	name = textutil.TrimItemName(name)
	closest := ""
	var similarity float64
	for _, id := range sortedItemIds(items) {
		sim := matchr.JaroWinkler(strings.ToLower(name), strings.ToLower(items[id].Label), false)
		if sim > similarity {
			similarity = sim
			closest = items[id].Label
		}
	}
	return closest
}
