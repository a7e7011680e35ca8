package bitemenu

import (
	"context"
	"testing"
	"time"

	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/fetch"
	"menufetcher/internal/fetch/fetchtest"
	"menufetcher/internal/menu"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const routePrefix = "menus.sodexomyway.com/BiteMenu/MenuOnly?menuId=344&locationId=13147001&startdate="

const page = `<html><body>
<div id="menuContainer">rendered client side</div>
<div id="nutData" style="display:none">[
	{"date": "2024-08-28T00:00:00", "dayParts": [
		{"dayPartName": "Brakfast", "courses": [
			{"courseName": "Grill-Hot", "menuItems": [
				{"formalName": "Pancakes ", "description": "with syrup", "startTime": "2024-08-28T07:30:00", "endTime": "2024-08-28T10:00:00"}
			]},
			{"courseName": "grill", "menuItems": [
				{"formalName": "Eggs", "description": "", "startTime": "2024-08-28T07:30:00", "endTime": "2024-08-28T10:00:00"}
			]}
		]},
		{"dayPartName": "Lunch", "courses": [
			{"courseName": "Deli", "menuItems": [
				{"formalName": "Turkey Club", "description": "on sourdough", "startTime": "2024-08-28T11:00:00", "endTime": "2024-08-28T13:30:00"},
				{"formalName": "Soup &amp; Salad", "description": "", "startTime": "2024-08-28T11:30:00", "endTime": "2024-08-28T13:30:00"}
			]},
			{"courseName": "Dessert", "menuItems": []}
		]}
	]},
	{"date": "2024-08-31T00:00:00", "dayParts": [
		{"dayPartName": "Lunch", "courses": [
			{"courseName": "Grill", "menuItems": [
				{"formalName": "Burger", "description": "", "startTime": "2024-08-31T10:30:00", "endTime": "2024-08-31T13:00:00"}
			]}
		]}
	]}
]</div>
</body></html>`

func newTestScraper(t *testing.T, srv *fetchtest.Server) (*Scraper, *telemetry.RecordingAPI) {
	tel := &telemetry.RecordingAPI{}
	scraper := NewScraper(Options{
		Name:       "The Hoch",
		ID:         "hoch",
		Sitename:   "hmc",
		MenuID:     344,
		LocationID: 13147001,
		HallSlug:   "hoch-100",
		Fetch:      fetch.Options{Transport: srv.Transport(), RequestsPerSecond: 1000},
	}, tel)
	return scraper, tel
}

func date(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)
}

func hours(startHour, startMinute, endHour, endMinute int) *menu.TimeRange {
	return &menu.TimeRange{
		Start: menu.TimeOfDay{Hour: startHour, Minute: startMinute},
		End:   menu.TimeOfDay{Hour: endHour, Minute: endMinute},
	}
}

func TestGetMenu(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		routePrefix + "08/28/2024": page,
	})
	scraper, tel := newTestScraper(t, srv)
	ctx := context.Background()

	result, err := scraper.GetMenu(ctx, date(time.August, 28))
	require.NoError(t, err)

	expected := menu.Menu{
		HallName:  "The Hoch",
		HallID:    "hoch",
		PublicURL: "https://menus.sodexomyway.com/BiteMenu/Menu?menuId=344&locationId=13147001&whereami=http%3A%2F%2Fhmc.sodexomyway.com%2Fdining-near-me%2Fhoch-100&startdate=08/28/2024",
		Meals: []menu.Meal{
			{
				Name:  "Breakfast",
				Hours: hours(7, 30, 10, 0),
				Stations: []menu.Station{{
					Name: "Grill",
					Items: []menu.Item{
						menu.NewItem("Pancakes", "with syrup"),
						menu.NewItem("Eggs", ""),
					},
				}},
			},
			{
				Name:  "Lunch",
				Hours: hours(11, 0, 13, 30),
				Stations: []menu.Station{{
					Name: "Deli",
					Items: []menu.Item{
						menu.NewItem("Turkey Club", "on sourdough"),
						menu.NewItem("Soup & Salad", ""),
					},
				}},
			},
		},
	}
	diff := cmp.Diff(expected, result)
	if diff != "" {
		t.Fatal(diff)
	}

	warnings := tel.Find("warning", "meal.hours")
	require.Len(t, warnings, 1)

	again, err := scraper.GetMenu(ctx, date(time.August, 28))
	require.NoError(t, err)
	require.Equal(t, result, again)

	// the weekend day came with the same page
	weekend, err := scraper.GetMenu(ctx, date(time.August, 31))
	require.NoError(t, err)
	require.Equal(t, "Brunch", weekend.Meals[0].Name)
	require.Equal(t, hours(10, 30, 13, 0), weekend.Meals[0].Hours)
	require.Equal(t, 1, srv.TotalHits())
}

func TestGetMenuFailures(t *testing.T) {
	testCases := []struct {
		name     string
		page     string
		expected error
	}{
		{name: "page down", expected: menu.ErrNotAvailable},
		{name: "no data", page: "<html><body>maintenance</body></html>", expected: menu.ErrNotAvailable},
		{name: "day missing", page: page, expected: menu.ErrNotAvailable},
		{name: "garbage", page: `<div id="nutData">[{"date": </div>`, expected: menu.ErrMalformed},
		{name: "bad date", page: `<div id="nutData">[{"date": "soon", "dayParts": []}]</div>`, expected: menu.ErrMalformed},
		{
			name: "bad time",
			page: `<div id="nutData">[{"date": "2024-09-03T00:00:00", "dayParts": [{"dayPartName": "Lunch", "courses": [
				{"courseName": "Grill", "menuItems": [{"formalName": "Burger", "startTime": "noon", "endTime": "2024-09-03T13:00:00"}]}
			]}]}]</div>`,
			expected: menu.ErrMalformed,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			routes := map[string]string{}
			if test.page != "" {
				routes[routePrefix+"09/03/2024"] = test.page
			}
			srv := fetchtest.NewServer(t, routes)
			scraper, _ := newTestScraper(t, srv)

			_, err := scraper.GetMenu(context.Background(), date(time.September, 3))
			require.ErrorIs(t, err, test.expected)
		})
	}
}
