package sodexo

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"menufetcher/internal/components/chrono"
	"menufetcher/internal/menu"
	"menufetcher/internal/schedule"
	"menufetcher/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// SiteUrl is the root of a sodexomyway site.
func SiteUrl(sitename string) string {
	return fmt.Sprintf("https://%s.sodexomyway.com", sitename)
}

// PortalUrl is the dining choices page, it lists the weekly menus and publishes
// the serving hours.
func PortalUrl(sitename string) string {
	return SiteUrl(sitename) + "/dining-choices/index.html?forcedesktop=true"
}

const portalAccordion = "#accordion_3543"

// PortalHours mines the serving hours for day out of the second accordion panel
// of the portal page. A panel without hours for the day yields empty hours.
func PortalHours(portal *goquery.Document, day time.Weekday) (schedule.Hours, error) {
	bodies := portal.Find(portalAccordion + " .accordionBody")
	if bodies.Length() < 2 {
		return nil, menu.NotAvailablef("portal has no hours panel")
	}
	hours, err := schedule.FromSelection(bodies.Eq(1), day)
	if err == schedule.ErrNoSchedule {
		return schedule.Hours{}, nil
	}
	return hours, err
}

var weekRangeRegex = regexp.MustCompile(`^([0-9][0-9]?)/([0-9][0-9]?)/([0-9]+) - ([0-9][0-9]?)/([0-9][0-9]?)/([0-9]+)$`)

type weekListing struct {
	start time.Time
	end   time.Time
	href  string
}

func parseWeekRange(label string, loc *time.Location) (time.Time, time.Time, bool) {
	groups := weekRangeRegex.FindStringSubmatch(label)
	if groups == nil {
		return time.Time{}, time.Time{}, false
	}
	n := make([]int, 7)
	for i := 1; i <= 6; i++ {
		n[i], _ = strconv.Atoi(groups[i])
	}
	start := time.Date(n[3], time.Month(n[1]), n[2], 0, 0, 0, 0, loc)
	end := time.Date(n[6], time.Month(n[4]), n[5], 0, 0, 0, 0, loc)
	return start, end, true
}

// weekListings reads the menu list of the portal:
//
//	<div id="accordion_3543"><ul>
//	  <li><a href="/images/WeeklyMenu_tcm1567-121819.htm">8/26/2024 - 9/1/2024</a></li>
//	</ul></div>
//
// Entries whose label is not a date range are returned separately.
func weekListings(ctx context.Context, portal *goquery.Document, base *url.URL, loc *time.Location) ([]weekListing, []string, error) {
	list := portal.Find(portalAccordion + " ul").First()
	if list.Length() == 0 {
		return nil, nil, menu.NotAvailablef("portal doesn't list any menus")
	}

	var links []*goquery.Selection
	list.Children().Each(func(_ int, li *goquery.Selection) {
		links = append(links, li.Children().First())
	})

	var listings []weekListing
	var invalid []string
	for _, link := range links {
		label := htmlutil.NormalizeSpace(htmlutil.SelectionOwnText(link))
		start, end, ok := parseWeekRange(label, loc)
		if !ok {
			invalid = append(invalid, label)
			continue
		}
		anchors := htmlutil.GetAnchors(ctx, link, base)
		if len(anchors) == 0 {
			continue
		}
		listings = append(listings, weekListing{start: start, end: end, href: anchors[0].Href})
	}
	return listings, invalid, nil
}

func (w weekListing) contains(day time.Time) bool {
	day = chrono.Date(day)
	return !day.Before(w.start) && !day.After(w.end)
}
