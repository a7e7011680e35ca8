package sodexo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"menufetcher/internal/components/chrono"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/fetch"
	"menufetcher/internal/fetch/fetchtest"
	"menufetcher/internal/menu"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const (
	portalRoute    = "scrippsdining.sodexomyway.com/dining-choices/index.html?forcedesktop=true"
	frontpageRoute = "scrippsdining.sodexomyway.com/?forcedesktop=true"
	listedRoute    = "scrippsdining.sodexomyway.com/images/WeeklyMenu_tcm1567-121819.htm?forcedesktop=true"
	frontpageMenu  = "scrippsdining.sodexomyway.com/Images/WeeklyMenu_tcm1567-130000.htm"
	knownIdRoute   = "scrippsdining.sodexomyway.com/images/WeeklyMenu_tcm1567-121817.htm"
)

const hoursPanel = `
<div class="accordionBody"><p>Welcome to Malott Commons</p></div>
<div class="accordionBody">
	<p>Monday - Friday</p>
	<p>Breakfast: 7:30 a.m. - 10 a.m.</p>
	<p>Lunch: 11 a.m. - 1 p.m.</p>
	<p>Saturday - Sunday</p>
	<p>Brunch: 10 a.m. - 1 p.m.</p>
</div>`

func portalPage(listings string) string {
	return `<html><body><div id="accordion_3543">
<ul>` + listings + `</ul>` + hoursPanel + `
</div></body></html>`
}

const portalWithWeek = `
<li><a href="/images/WeeklyMenu_tcm1567-121819.htm">8/26/2024 - 9/1/2024</a></li>
<li><a href="/images/holiday.htm">Holiday Menu</a></li>`

func weekMenu(monday string) string {
	return `<html><body>
<table><tr><td class="titlecell">Weekly Menu for ` + monday + `</td></tr></table>
<div id="wednesday"><table>
	<tr class="brk"><td class="mealname">BREAKFAST</td></tr>
	<tr class="brk"><td class="station">&nbsp;Grill</td><td class="menuitem"><span>Scrambled Eggs</span> <img class="icon" alt="Vegetarian" src="v.png"></td></tr>
	<tr class="brk"><td class="station">&nbsp;</td><td class="menuitem"><span>Bacon</span></td></tr>
	<tr class="lun"><td class="mealname">LUNCH</td></tr>
	<tr class="lun"><td class="station">&nbsp;Deli</td><td>Turkey Wrap</td></tr>
	<tr class="lun"><td class="station">&nbsp;Grill</td><td>Burger</td></tr>
	<tr class="lun"><td class="station">&nbsp;deli</td><td>Soup</td></tr>
</table></div>
<div id="saturday"><table>
	<tr class="lun"><td class="mealname">LUNCH</td></tr>
	<tr class="lun"><td class="station">&nbsp;Waffle Bar</td><td>Waffles</td></tr>
</table></div>
</body></html>`
}

func newTestScraper(t *testing.T, srv *fetchtest.Server) (*Scraper, *telemetry.RecordingAPI) {
	tel := &telemetry.RecordingAPI{}
	clock := chrono.NewFixedImpl(time.Date(2024, time.August, 28, 9, 0, 0, 0, time.UTC))
	scraper := NewScraper(Options{
		Name:     "Malott",
		ID:       "scripps",
		Sitename: "scrippsdining",
		TcmID:    1567,
		Fetch:    fetch.Options{Transport: srv.Transport(), RequestsPerSecond: 1000},
	}, clock, tel)
	return scraper, tel
}

func date(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)
}

func hoursOf(sh, sm, eh, em int) *menu.TimeRange {
	return &menu.TimeRange{
		Start: menu.TimeOfDay{Hour: sh, Minute: sm},
		End:   menu.TimeOfDay{Hour: eh, Minute: em},
	}
}

func TestGetMenuFromPortal(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		portalRoute: portalPage(portalWithWeek),
		listedRoute: weekMenu("Monday August 26, 2024"),
	})
	scraper, tel := newTestScraper(t, srv)
	ctx := context.Background()

	result, err := scraper.GetMenu(ctx, date(time.August, 28))
	require.NoError(t, err)

	expected := menu.Menu{
		HallName:  "Malott",
		HallID:    "scripps",
		PublicURL: "https://scrippsdining.sodexomyway.com/images/WeeklyMenu_tcm1567-121819.htm?forcedesktop=true#wednesday",
		Meals: []menu.Meal{
			{
				Name:  "Breakfast",
				Hours: hoursOf(7, 30, 10, 0),
				Stations: []menu.Station{{
					Name: "Grill",
					Items: []menu.Item{
						menu.NewItem("Scrambled Eggs", "", "Vegetarian"),
						menu.NewItem("Bacon", ""),
					},
				}},
			},
			{
				Name:  "Lunch",
				Hours: hoursOf(11, 0, 13, 0),
				Stations: []menu.Station{
					{Name: "Deli", Items: []menu.Item{menu.NewItem("Turkey Wrap", ""), menu.NewItem("Soup", "")}},
					{Name: "Grill", Items: []menu.Item{menu.NewItem("Burger", "")}},
				},
			},
		},
	}
	diff := cmp.Diff(expected, result)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Len(t, tel.Find("warning", report_portal_listing), 1)
	require.Equal(t, 0, srv.Hits(frontpageRoute))

	hits := srv.TotalHits()
	again, err := scraper.GetMenu(ctx, date(time.August, 28))
	require.NoError(t, err)
	require.Equal(t, result, again)
	require.Equal(t, hits, srv.TotalHits())
}

func TestGetMenuWeekendBrunch(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		portalRoute: portalPage(portalWithWeek),
		listedRoute: weekMenu("Monday August 26, 2024"),
	})
	scraper, _ := newTestScraper(t, srv)

	result, err := scraper.GetMenu(context.Background(), date(time.August, 31))
	require.NoError(t, err)
	require.Len(t, result.Meals, 1)
	require.Equal(t, "Brunch", result.Meals[0].Name)
	require.Equal(t, hoursOf(10, 0, 13, 0), result.Meals[0].Hours)
	require.Equal(t, "Waffle Bar", result.Meals[0].Stations[0].Name)
}

func TestGetMenuFrontpageAfterRejection(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		portalRoute: portalPage(portalWithWeek),
		// stale page still linked from the portal
		listedRoute:    weekMenu("Monday August 19, 2024"),
		frontpageRoute: `<a href="/Images/WeeklyMenu_tcm1567-130000.htm">This week's menu</a>`,
		frontpageMenu:  weekMenu("Monday August 26, 2024"),
	})
	scraper, _ := newTestScraper(t, srv)

	result, err := scraper.GetMenu(context.Background(), date(time.August, 28))
	require.NoError(t, err)
	require.Equal(t, "https://scrippsdining.sodexomyway.com/Images/WeeklyMenu_tcm1567-130000.htm#wednesday", result.PublicURL)
	require.Len(t, result.Meals, 2)
	require.Equal(t, 1, srv.Hits(listedRoute))
}

func TestGetMenuKnownIds(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		portalRoute:  portalPage(portalWithWeek),
		knownIdRoute: weekMenu("Monday September 2, 2024"),
	})
	scraper, _ := newTestScraper(t, srv)

	// next week, the front page is not consulted
	result, err := scraper.GetMenu(context.Background(), date(time.September, 4))
	require.NoError(t, err)
	require.Len(t, result.Meals, 2)
	require.Equal(t, 0, srv.Hits(frontpageRoute))

	for _, id := range KnownMenuIds[:3] {
		route := fmt.Sprintf("scrippsdining.sodexomyway.com/images/WeeklyMenu_tcm1567-%d.htm", id)
		require.Equal(t, 1, srv.Hits(route), route)
	}
}

func TestGetMenuExhausted(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{})
	scraper, _ := newTestScraper(t, srv)

	_, err := scraper.GetMenu(context.Background(), date(time.August, 28))
	require.ErrorIs(t, err, menu.ErrNotAvailable)
}

func TestGetMenuMissingDay(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		portalRoute: portalPage(portalWithWeek),
		listedRoute: weekMenu("Monday August 26, 2024"),
	})
	scraper, _ := newTestScraper(t, srv)

	_, err := scraper.GetMenu(context.Background(), date(time.August, 26))
	require.ErrorIs(t, err, menu.ErrNotAvailable)
}

func TestParseWeekRange(t *testing.T) {
	start, end, ok := parseWeekRange("8/26/2024 - 9/1/2024", time.UTC)
	require.True(t, ok)
	require.Equal(t, date(time.August, 26), start)
	require.Equal(t, date(time.September, 1), end)

	_, _, ok = parseWeekRange("Holiday Menu", time.UTC)
	require.False(t, ok)
}
