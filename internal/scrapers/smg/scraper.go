// Package smg reads menus published as a javascript file (the "smg" menu) by
// Sodexo sites. The script assigns every week of the term to menuData and every
// menu item to aData, it is evaluated once and reused for every day.
package smg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"menufetcher/internal/components/assert"
	"menufetcher/internal/components/chrono"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/fetch"
	"menufetcher/internal/menu"
	"menufetcher/internal/schedule"
	"menufetcher/internal/scrapers/sodexo"

	"github.com/PuerkitoBio/goquery"
)

const report_scraper_hours = "scraper.hours"

type Options struct {
	Name     string
	ID       string
	Sitename string
	// SmgName is the (url escaped) name of the menu, ex.
	// "harvey%20mudd%20college%20-%20resident%20dining"
	SmgName string

	// Evaluator defaults to LiteralEvaluator.
	Evaluator Evaluator
	Fetch     fetch.Options
}

type Scraper struct {
	opts  Options
	http  *fetch.Client
	clock chrono.API
	tel   telemetry.API

	data   *fetch.Cache[string, smgData]
	portal *fetch.Cache[string, *goquery.Document]
}

func NewScraper(opts Options, clock chrono.API, tel telemetry.API) *Scraper {
	assert.NotEmptyStr(opts.ID)
	assert.NotEmptyStr(opts.Sitename)
	assert.NotEmptyStr(opts.SmgName)
	assert.NotNil(clock)
	assert.NotNil(tel)

	if opts.Evaluator == nil {
		opts.Evaluator = LiteralEvaluator{}
	}

	tel = telemetry.NewScopedAPI(fmt.Sprintf("smg_scraper(%s)", opts.ID), tel)

	return &Scraper{
		opts:   opts,
		http:   fetch.NewClient(opts.Fetch, tel),
		clock:  clock,
		tel:    tel,
		data:   fetch.NewCache[string, smgData](),
		portal: fetch.NewCache[string, *goquery.Document](),
	}
}

func (s *Scraper) ID() string {
	return s.opts.ID
}

func (s *Scraper) Name() string {
	return s.opts.Name
}

func (s *Scraper) scriptUrl() string {
	return fmt.Sprintf("%s/smgmenu/json/%s?forcedesktop=true", sodexo.SiteUrl(s.opts.Sitename), s.opts.SmgName)
}

func (s *Scraper) publicUrl() string {
	return fmt.Sprintf("%s/smgmenu/display/%s?forcedesktop=true", sodexo.SiteUrl(s.opts.Sitename), s.opts.SmgName)
}

func (s *Scraper) load(ctx context.Context) (smgData, error) {
	url := s.scriptUrl()
	return s.data.Get(url, func() (smgData, error) {
		script, err := s.http.Get(ctx, url)
		if err != nil {
			return smgData{}, err
		}
		evaluated, err := s.opts.Evaluator.Evaluate(ctx, string(script))
		if err != nil {
			return smgData{}, menu.Malformed("evaluate menu script", err)
		}
		var data smgData
		err = json.Unmarshal(evaluated, &data)
		if err != nil {
			return smgData{}, menu.Malformed("decode menu script", err)
		}
		return data, nil
	})
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}

func (s *Scraper) findTab(data smgData, day time.Time) (tab, error) {
	day = chrono.Date(day)
	for _, w := range data.Menu {
		start, err := parseDate(w.StartDate, day.Location())
		if err != nil {
			return tab{}, menu.Malformed("week start", err)
		}
		end, err := parseDate(w.EndDate, day.Location())
		if err != nil {
			return tab{}, menu.Malformed("week end", err)
		}
		if day.Before(start) || day.After(end) {
			continue
		}
		if len(w.Menus) == 0 {
			return tab{}, menu.Malformedf("week of %s has no menus", w.StartDate)
		}
		weekday := day.Weekday().String()
		for _, t := range w.Menus[0].Tabs {
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(t.Title)), strings.ToLower(weekday)) {
				return t, nil
			}
		}
		return tab{}, menu.NotAvailablef("week of %s has no %s tab", w.StartDate, weekday)
	}
	return tab{}, menu.NotAvailablef("no week covers %s", day.Format(time.DateOnly))
}

func (s *Scraper) GetMenu(ctx context.Context, day time.Time) (menu.Menu, error) {
	data, err := s.load(ctx)
	if err != nil {
		return menu.Menu{}, err
	}
	t, err := s.findTab(data, day)
	if err != nil {
		return menu.Menu{}, err
	}

	hours := s.hours(ctx, day)

	meals := make([]menu.Meal, 0, len(t.Groups))
	for _, g := range t.Groups {
		meal, err := createMeal(g, data.Items, day)
		if err != nil {
			return menu.Menu{}, err
		}
		r, ok := hours[meal.Name]
		if ok {
			meal.Hours = &r
		}
		meals = append(meals, meal)
	}

	result := menu.Empty(s.opts.Name, s.opts.ID, s.publicUrl())
	result.Meals = meals
	return result, nil
}

func createMeal(g group, items map[string][]json.RawMessage, day time.Time) (menu.Meal, error) {
	var stations []menu.Station
	for _, c := range g.Category {
		stationItems := make([]menu.Item, 0, len(c.Products))
		for _, id := range c.Products {
			item, err := createItem(string(id), items)
			if err != nil {
				return menu.Meal{}, err
			}
			stationItems = append(stationItems, item)
		}
		stations = menu.AddStation(stations, menu.Station{
			Name:  menu.CorrectStationName(strings.TrimSpace(c.Title)),
			Items: stationItems,
		})
	}
	if stations == nil {
		stations = []menu.Station{}
	}
	return menu.Meal{
		Name:     menu.WeekendMealName(strings.TrimSpace(g.Title), day),
		Stations: stations,
	}, nil
}

func createItem(id string, items map[string][]json.RawMessage) (menu.Item, error) {
	row, ok := items[id]
	if !ok {
		return menu.Item{}, menu.Malformedf("unknown item %s", id)
	}
	name, err := stringField(row, fieldName)
	if err != nil {
		return menu.Item{}, menu.Malformed(fmt.Sprintf("item %s name", id), err)
	}
	description, err := stringField(row, fieldDescription)
	if err != nil {
		return menu.Item{}, menu.Malformed(fmt.Sprintf("item %s description", id), err)
	}
	tags, err := stringField(row, fieldTags)
	if err != nil {
		return menu.Item{}, menu.Malformed(fmt.Sprintf("item %s tags", id), err)
	}
	return menu.NewItem(name, description, strings.Fields(tags)...), nil
}

// hours come from the dining portal of the same site, failing to get them leaves
// the meals without hours.
func (s *Scraper) hours(ctx context.Context, day time.Time) schedule.Hours {
	url := sodexo.PortalUrl(s.opts.Sitename)
	portal, err := s.portal.Get(url, func() (*goquery.Document, error) {
		return s.http.GetDocument(ctx, url)
	})
	if err != nil {
		s.tel.ReportWarning(report_scraper_hours, err)
		return nil
	}
	hours, err := sodexo.PortalHours(portal, day.Weekday())
	if err != nil {
		s.tel.ReportWarning(report_scraper_hours, err)
		return nil
	}
	return hours
}
