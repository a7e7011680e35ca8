// Package bitemenu reads the BiteMenu pages Sodexo serves for some locations. A
// page embeds a week of menus as json in the #nutData element.
package bitemenu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"menufetcher/internal/components/assert"
	"menufetcher/internal/components/chrono"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/fetch"
	"menufetcher/internal/menu"
)

const report_meal_hours = "meal.hours"

const DefaultBaseUrl = "https://menus.sodexomyway.com"

type Options struct {
	Name       string
	ID         string
	Sitename   string
	MenuID     int
	LocationID int
	// HallSlug names the hall on the site's dining-near-me pages, it only shows up
	// in the public url.
	HallSlug string
	BaseUrl  string
	Fetch    fetch.Options
}

type Scraper struct {
	opts Options
	http *fetch.Client
	tel  telemetry.API

	// weeks holds every fetched page by url, days every menu day seen so far
	weeks *fetch.Cache[string, []menuDay]
	days  *fetch.Cache[string, menuDay]
}

func NewScraper(opts Options, tel telemetry.API) *Scraper {
	assert.NotEmptyStr(opts.ID)
	assert.NotEmptyStr(opts.Sitename)
	assert.Positive(opts.MenuID)
	assert.Positive(opts.LocationID)
	assert.NotNil(tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}

	tel = telemetry.NewScopedAPI(fmt.Sprintf("bitemenu_scraper(%s)", opts.ID), tel)

	return &Scraper{
		opts:  opts,
		http:  fetch.NewClient(opts.Fetch, tel),
		tel:   tel,
		weeks: fetch.NewCache[string, []menuDay](),
		days:  fetch.NewCache[string, menuDay](),
	}
}

func (s *Scraper) ID() string {
	return s.opts.ID
}

func (s *Scraper) Name() string {
	return s.opts.Name
}

func startDate(day time.Time) string {
	return day.Format("01/02/2006")
}

func (s *Scraper) menuUrl(day time.Time) string {
	return fmt.Sprintf(
		"%s/BiteMenu/MenuOnly?menuId=%d&locationId=%d&startdate=%s",
		s.opts.BaseUrl, s.opts.MenuID, s.opts.LocationID, startDate(day),
	)
}

func (s *Scraper) publicUrl(day time.Time) string {
	whereami := fmt.Sprintf("http://%s.sodexomyway.com/dining-near-me/%s", s.opts.Sitename, s.opts.HallSlug)
	return fmt.Sprintf(
		"%s/BiteMenu/Menu?menuId=%d&locationId=%d&whereami=%s&startdate=%s",
		s.opts.BaseUrl, s.opts.MenuID, s.opts.LocationID, url.QueryEscape(whereami), startDate(day),
	)
}

func (s *Scraper) loadWeek(ctx context.Context, day time.Time) error {
	pageUrl := s.menuUrl(day)
	week, err := s.weeks.Get(pageUrl, func() ([]menuDay, error) {
		doc, err := s.http.GetDocument(ctx, pageUrl)
		if err != nil {
			return nil, err
		}
		data := doc.Find("#nutData")
		if data.Length() == 0 {
			return nil, menu.NotAvailablef("no #nutData on %s", pageUrl)
		}
		var week []menuDay
		err = json.Unmarshal([]byte(strings.TrimSpace(data.Text())), &week)
		if err != nil {
			return nil, menu.Malformed("decode #nutData", err)
		}
		return week, nil
	})
	if err != nil {
		return err
	}

	for _, d := range week {
		date, err := parseTimestamp(d.Date)
		if err != nil {
			return menu.Malformed("menu date", err)
		}
		s.days.Put(date.Format(time.DateOnly), d)
	}
	return nil
}

func (s *Scraper) menuDay(ctx context.Context, day time.Time) (menuDay, error) {
	key := day.Format(time.DateOnly)
	if d, ok := s.days.Lookup(key); ok {
		return d, nil
	}
	err := s.loadWeek(ctx, day)
	if err != nil {
		return menuDay{}, err
	}
	d, ok := s.days.Lookup(key)
	if !ok {
		return menuDay{}, menu.NotAvailablef("no menu published for %s", key)
	}
	return d, nil
}

func (s *Scraper) GetMenu(ctx context.Context, day time.Time) (menu.Menu, error) {
	day = chrono.Date(day)
	d, err := s.menuDay(ctx, day)
	if err != nil {
		return menu.Menu{}, err
	}

	meals := make([]menu.Meal, 0, len(d.DayParts))
	for _, part := range d.DayParts {
		meal, err := s.createMeal(part, day)
		if err != nil {
			return menu.Menu{}, err
		}
		meals = append(meals, meal)
	}

	result := menu.Empty(s.opts.Name, s.opts.ID, s.publicUrl(day))
	result.Meals = meals
	return menu.Prune(result), nil
}

// the meal takes the hours of its first item, items disagreeing with them are
// only reported.
func (s *Scraper) createMeal(part dayPart, day time.Time) (menu.Meal, error) {
	var hours *menu.TimeRange
	stations := make([]menu.Station, 0, len(part.Courses))
	for _, c := range part.Courses {
		items := make([]menu.Item, 0, len(c.MenuItems))
		for _, item := range c.MenuItems {
			r, err := item.hours()
			if err != nil {
				return menu.Meal{}, menu.Malformed(part.DayPartName, err)
			}
			if hours == nil {
				hours = &r
			} else if r != *hours {
				s.tel.ReportWarning(
					report_meal_hours,
					fmt.Errorf("%s: expected %s but %q is served %s", part.DayPartName, *hours, item.FormalName, r),
				)
			}
			items = append(items, menu.NewItem(strings.TrimSpace(item.FormalName), strings.TrimSpace(item.Description)))
		}
		stations = menu.AddStation(stations, menu.Station{
			Name:  menu.CorrectStationName(strings.TrimSpace(c.CourseName)),
			Items: items,
		})
	}

	return menu.Meal{
		Name:     menu.WeekendMealName(menu.CorrectMealName(part.DayPartName), day),
		Hours:    hours,
		Stations: stations,
	}, nil
}
