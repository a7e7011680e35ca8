package pomona

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"menufetcher/internal/components/chrono"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/fetch"
	"menufetcher/internal/fetch/fetchtest"
	"menufetcher/internal/grid"
	"menufetcher/internal/menu"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

var la = func() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
	return loc
}()

const infoPage = `<html><body>
<div id="menu-from-google" data-google-spreadsheet-id="SHEET" data-menu-type="frankFrary"></div>
<div class="dining-hours-top">
	<div class="dining-days-col-1">
		<div class="dining-days">Monday - Friday</div>
		<div class="dining-hours">
			<p>Breakfast: 7:30 a.m. - 10 a.m.</p>
			<p>Lunch: 11 a.m. - 1:30 p.m.</p>
			<p>Dinner: 5 p.m. - 7:30 p.m.</p>
		</div>
	</div>
	<div class="dining-days-col-2">
		<div class="dining-days">Saturday - Sunday</div>
		<div class="dining-hours"><p>Brunch: 10:30 a.m. - 1 p.m.</p></div>
	</div>
</div>
</body></html>`

var frankRows = [][]string{
	{"", "", "Brakfast", "Lunch", "Dinner", "Snack"},
	{"Wednesday", "", "", "", "CLOSED", ""},
	{"", "Grill", "Eggs, Bacon", "Burger, Fries", "", ""},
	{"", "Deli", "", "Turkey Sandwich", "", "Cookies"},
	{"Day", "", "", "", "", ""},
	{"", "", "Brunch", "", "", ""},
	{"Saturday", "", "Waffles, Omelets", "", "", ""},
	{"Day", "", "", "", "", ""},
}

func cellFeed(rows [][]string) string {
	type text struct {
		T string `json:"$t"`
	}
	type entry struct {
		Title   text `json:"title"`
		Content text `json:"content"`
	}
	var entries []entry
	cols := 0
	for r, row := range rows {
		cols = max(cols, len(row))
		for c, value := range row {
			if value == "" {
				continue
			}
			entries = append(entries, entry{
				Title:   text{T: fmt.Sprintf("%s%d", grid.EncodeColumn(c+1), r+1)},
				Content: text{T: value},
			})
		}
	}
	out, err := json.Marshal(map[string]any{
		"feed": map[string]any{
			"entry":       entries,
			"gs$rowCount": text{T: fmt.Sprint(len(rows))},
			"gs$colCount": text{T: fmt.Sprint(cols)},
		},
	})
	if err != nil {
		panic(err)
	}
	return string(out)
}

const worksheetsFeed = `{"feed": {"entry": [
	{"title": {"$t": "Template"}, "link": []},
	{"title": {"$t": "8-19-24"}, "link": [
		{"rel": "http://schemas.google.com/spreadsheets/2006#cellsfeed", "href": "https://spreadsheets.google.com/feeds/cells/SHEET/od5/public/basic"}
	]},
	{"title": {"$t": "8-26-24"}, "link": [
		{"rel": "self", "href": "https://spreadsheets.google.com/feeds/worksheets/SHEET/od6"},
		{"rel": "http://schemas.google.com/spreadsheets/2006#cellsfeed", "href": "https://spreadsheets.google.com/feeds/cells/SHEET/od6/public/basic"}
	]}
]}}`

const (
	infoRoute       = "www.pomona.edu/administration/dining/menus/frank"
	worksheetsRoute = "spreadsheets.google.com/feeds/worksheets/SHEET/public/basic?alt=json"
	cellsRoute      = "spreadsheets.google.com/feeds/cells/SHEET/od6/public/basic?alt=json"
	exportRoute     = "docs.google.com/spreadsheets/d/SHEET/export?format=xlsx"
)

func newTestScraper(t *testing.T, srv *fetchtest.Server, layout Layout) (*Scraper, *telemetry.RecordingAPI) {
	tel := &telemetry.RecordingAPI{}
	clock := chrono.NewFixedImpl(time.Date(2024, time.August, 28, 8, 0, 0, 0, la))
	scraper := NewScraper(Options{
		Name:     "Frank",
		ID:       "frank",
		Sitename: "frank",
		Layout:   layout,
		Fetch:    fetch.Options{Transport: srv.Transport(), RequestsPerSecond: 1000},
	}, clock, tel)
	return scraper, tel
}

func hoursOf(sh, sm, eh, em int) *menu.TimeRange {
	return &menu.TimeRange{
		Start: menu.TimeOfDay{Hour: sh, Minute: sm},
		End:   menu.TimeOfDay{Hour: eh, Minute: em},
	}
}

func TestGetMenuFrankFrary(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		infoRoute:       infoPage,
		worksheetsRoute: worksheetsFeed,
		cellsRoute:      cellFeed(frankRows),
	})
	scraper, tel := newTestScraper(t, srv, LayoutFrankFrary)
	ctx := context.Background()

	result, err := scraper.GetMenu(ctx, time.Date(2024, time.August, 28, 0, 0, 0, 0, la))
	require.NoError(t, err)

	expected := menu.Menu{
		HallName:  "Frank",
		HallID:    "frank",
		PublicURL: "http://www.pomona.edu/administration/dining/menus/frank",
		Meals: []menu.Meal{
			{
				Name:  "Breakfast",
				Hours: hoursOf(7, 30, 10, 0),
				Stations: []menu.Station{
					{Name: "Grill", Items: []menu.Item{menu.NewItem("Eggs", ""), menu.NewItem("Bacon", "")}},
				},
			},
			{
				Name:  "Lunch",
				Hours: hoursOf(11, 0, 13, 30),
				Stations: []menu.Station{
					{Name: "Grill", Items: []menu.Item{menu.NewItem("Burger", ""), menu.NewItem("Fries", "")}},
					{Name: "Deli", Items: []menu.Item{menu.NewItem("Turkey Sandwich", "")}},
				},
			},
		},
	}
	diff := cmp.Diff(expected, result)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Len(t, tel.Find("warning", report_scraper_sheet_title), 1)

	hits := srv.TotalHits()
	again, err := scraper.GetMenu(ctx, time.Date(2024, time.August, 28, 0, 0, 0, 0, la))
	require.NoError(t, err)
	require.Equal(t, result, again)
	require.Equal(t, hits, srv.TotalHits())
}

func TestGetMenuFrankFraryBrunchFallback(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		infoRoute:       infoPage,
		worksheetsRoute: worksheetsFeed,
		cellsRoute:      cellFeed(frankRows),
	})
	scraper, _ := newTestScraper(t, srv, LayoutFrankFrary)

	result, err := scraper.GetMenu(context.Background(), time.Date(2024, time.August, 31, 0, 0, 0, 0, la))
	require.NoError(t, err)
	require.Len(t, result.Meals, 1)

	brunch := result.Meals[0]
	require.Equal(t, "Brunch", brunch.Name)
	require.Equal(t, "Waffles, Omelets", brunch.Description)
	require.Equal(t, hoursOf(10, 30, 13, 0), brunch.Hours)
	require.Equal(t, []menu.Station{{
		Name:  "Brunch",
		Items: []menu.Item{menu.NewItem("Waffles", ""), menu.NewItem("Omelets", "")},
	}}, brunch.Stations)
}

func TestGetMenuUnpublishedWeek(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		infoRoute:       infoPage,
		worksheetsRoute: worksheetsFeed,
		cellsRoute:      cellFeed(frankRows),
	})
	scraper, _ := newTestScraper(t, srv, LayoutFrankFrary)

	result, err := scraper.GetMenu(context.Background(), time.Date(2024, time.September, 4, 0, 0, 0, 0, la))
	require.NoError(t, err)
	require.Empty(t, result.Meals)
	require.Equal(t, "frank", result.HallID)
}

func TestGetMenuWrongLayout(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		infoRoute:       infoPage,
		worksheetsRoute: worksheetsFeed,
		cellsRoute:      cellFeed(frankRows),
	})
	scraper, _ := newTestScraper(t, srv, LayoutOldenborg)

	_, err := scraper.GetMenu(context.Background(), time.Date(2024, time.August, 28, 0, 0, 0, 0, la))
	require.ErrorIs(t, err, menu.ErrMalformed)
}

func TestGetMenuInfoPageDown(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{})
	scraper, _ := newTestScraper(t, srv, LayoutFrankFrary)

	_, err := scraper.GetMenu(context.Background(), time.Date(2024, time.August, 28, 0, 0, 0, 0, la))
	require.ErrorIs(t, err, menu.ErrNotAvailable)
}

func workbook(t *testing.T, sheetName string, rows [][]string) string {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	require.NoError(t, err)
	for _, values := range rows {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return buf.String()
}

func TestGetMenuWorkbookFallback(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		infoRoute:   infoPage,
		exportRoute: workbook(t, "8-26-24", frankRows),
	})
	scraper, _ := newTestScraper(t, srv, LayoutFrankFrary)

	result, err := scraper.GetMenu(context.Background(), time.Date(2024, time.August, 28, 0, 0, 0, 0, la))
	require.NoError(t, err)
	require.Len(t, result.Meals, 2)
	require.Equal(t, "Breakfast", result.Meals[0].Name)
	require.Equal(t, 1, srv.Hits(worksheetsRoute))
	require.Equal(t, 1, srv.Hits(exportRoute))
}

func TestParseOldenborg(t *testing.T) {
	g := grid.FromRows([][]string{
		{"Oldenborg", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		{"", "8/26", "8/27", "8/28", "8/29", "8/30"},
		{"", "French Table", "CLOSED", "", "", ""},
		{"Entree", "Coq au Vin", "Pasta", "Tacos", "", ""},
		{"Soup", "Onion", "Minestrone", "", "", ""},
	})
	hours := map[string]menu.TimeRange{"Lunch": *hoursOf(12, 0, 13, 0)}

	meals, err := parseOldenborg(g, time.Monday, hours)
	require.NoError(t, err)
	require.Equal(t, []menu.Meal{{
		Name:        "Lunch",
		Description: "French Table",
		Hours:       hoursOf(12, 0, 13, 0),
		Stations: []menu.Station{
			{Name: "Entree", Items: []menu.Item{menu.NewItem("Coq au Vin", "")}},
			{Name: "Soup", Items: []menu.Item{menu.NewItem("Onion", "")}},
		},
	}}, meals)

	meals, err = parseOldenborg(g, time.Tuesday, hours)
	require.NoError(t, err)
	require.Empty(t, meals)

	meals, err = parseOldenborg(g, time.Wednesday, hours)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	require.Len(t, meals[0].Stations, 1)

	meals, err = parseOldenborg(g, time.Thursday, hours)
	require.NoError(t, err)
	require.Empty(t, meals)

	meals, err = parseOldenborg(g, time.Saturday, hours)
	require.NoError(t, err)
	require.Empty(t, meals)
}

func TestParseSheetTitle(t *testing.T) {
	date, ok := parseSheetTitle("Week of 8-26-24", la)
	require.True(t, ok)
	require.Equal(t, time.Date(2024, time.August, 26, 0, 0, 0, 0, la), date)

	_, ok = parseSheetTitle("2-30-24", la)
	require.False(t, ok)
	_, ok = parseSheetTitle("Template", la)
	require.False(t, ok)
}

func TestParseFrankFraryMissingDay(t *testing.T) {
	_, err := parseFrankFrary(grid.FromRows(frankRows), time.Monday, nil)
	require.ErrorIs(t, err, menu.ErrMalformed)
}

const eatecInfoPage = `<html><body>
<div id="dining-menu-from-json" data-dining-menu-json-url="/eatec/frank.js"></div>
<div class="dining-hours-top">
	<div class="dining-days-col-1">
		<div class="dining-days">Monday - Friday</div>
		<div class="dining-hours">
			<p>Breakfast: 7:30 a.m. - 10 a.m.</p>
			<p>Lunch: 11 a.m. - 1:30 p.m.</p>
		</div>
	</div>
</div>
</body></html>`

const eatecFeedBody = `/**/ menuData({"feed": {"entry": {"EatecExchange": {"menu": [
	{"@servedate": "20240828", "@mealperiodname": "Brakfast", "@menubulletin": "Omelet bar"},
	{"@servedate": "20240828", "@mealperiodname": "Lunch", "@menubulletin": "Taco Tuesday, moved"},
	{"@servedate": "20240828", "@mealperiodname": "Late Night", "@menubulletin": "Pizza"},
	{"@servedate": "20240829", "@mealperiodname": "Lunch", "@menubulletin": "Curry"}
]}}}});`

const eatecRoute = "www.pomona.edu/eatec/frank.js"

func TestGetMenuEatecFeed(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		infoRoute:  eatecInfoPage,
		eatecRoute: eatecFeedBody,
	})
	scraper, tel := newTestScraper(t, srv, LayoutFrankFrary)
	ctx := context.Background()

	result, err := scraper.GetMenu(ctx, time.Date(2024, time.August, 28, 0, 0, 0, 0, la))
	require.NoError(t, err)

	expected := []menu.Meal{
		{Name: "Breakfast", Description: "Omelet bar", Hours: hoursOf(7, 30, 10, 0), Stations: []menu.Station{}},
		{Name: "Lunch", Description: "Taco Tuesday, moved", Hours: hoursOf(11, 0, 13, 30), Stations: []menu.Station{}},
		{Name: "Late Night", Description: "Pizza", Stations: []menu.Station{}},
	}
	diff := cmp.Diff(expected, result.Meals)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Len(t, tel.Find("warning", report_scraper_eatec_hours), 1)

	// the feed covers several days and is fetched once
	_, err = scraper.GetMenu(ctx, time.Date(2024, time.August, 29, 0, 0, 0, 0, la))
	require.NoError(t, err)
	require.Equal(t, 1, srv.Hits(eatecRoute))
	require.Equal(t, 0, srv.Hits(worksheetsRoute))
}

func TestGetMenuEatecNoHours(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		infoRoute:  eatecInfoPage,
		eatecRoute: eatecFeedBody,
	})
	scraper, _ := newTestScraper(t, srv, LayoutFrankFrary)

	// no hours are published for saturday
	_, err := scraper.GetMenu(context.Background(), time.Date(2024, time.August, 31, 0, 0, 0, 0, la))
	require.ErrorIs(t, err, menu.ErrMalformed)
}

func TestParseEatecFeed(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected []eatecMeal
		err      error
	}{
		{
			name: "default",
			body: `/**/ menuData({});`,
		},
		{
			name: "meals",
			body: `menuData({"feed": {"entry": {"EatecExchange": {"menu": [{"@servedate": "20240828", "@mealperiodname": "Dinner", "@menubulletin": "BBQ (outside)"}]}}}})`,
			expected: []eatecMeal{
				{ServeDate: "20240828", Name: "Dinner", Bulletin: "BBQ (outside)"},
			},
		},
		{
			name: "no callback",
			body: `{"feed": {}}`,
			err:  menu.ErrMalformed,
		},
		{
			name: "unterminated",
			body: `menuData(`,
			err:  menu.ErrMalformed,
		},
		{
			name: "not json",
			body: `menuData(<html>)`,
			err:  menu.ErrMalformed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			meals, err := parseEatecFeed([]byte(tc.body))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, meals)
		})
	}
}
