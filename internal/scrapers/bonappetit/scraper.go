// Package bonappetit reads the day part json api of Bon Appétit cafes. When a day
// in the current week comes back without day parts, the cafe's rss feed is mined
// instead.
package bonappetit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"menufetcher/internal/components/assert"
	"menufetcher/internal/components/chrono"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/fallback"
	"menufetcher/internal/fetch"
	"menufetcher/internal/menu"
)

const DefaultBaseUrl = "http://legacy.cafebonappetit.com"

type Options struct {
	Name   string
	ID     string
	CafeID int
	// UrlPrefix and UrlCafe build the public menu url
	// http://{UrlPrefix}.cafebonappetit.com/cafe/{UrlCafe}/{date}
	UrlPrefix string
	UrlCafe   string

	BaseUrl string
	Fetch   fetch.Options
}

type Scraper struct {
	opts   Options
	client *client
	clock  chrono.API
	tel    telemetry.API
}

func NewScraper(opts Options, clock chrono.API, tel telemetry.API) *Scraper {
	assert.NotEmptyStr(opts.ID)
	assert.Positive(opts.CafeID)
	assert.NotEmptyStr(opts.UrlPrefix)
	assert.NotEmptyStr(opts.UrlCafe)
	assert.NotNil(clock)
	assert.NotNil(tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}

	tel = telemetry.NewScopedAPI(fmt.Sprintf("bonappetit_scraper(%s)", opts.ID), tel)

	return &Scraper{
		opts:   opts,
		client: newClient(opts, fetch.NewClient(opts.Fetch, tel)),
		clock:  clock,
		tel:    tel,
	}
}

func (s *Scraper) ID() string {
	return s.opts.ID
}

func (s *Scraper) Name() string {
	return s.opts.Name
}

func (s *Scraper) publicUrl(day time.Time) string {
	return fmt.Sprintf("http://%s.cafebonappetit.com/cafe/%s/%s", s.opts.UrlPrefix, s.opts.UrlCafe, day.Format(time.DateOnly))
}

func (s *Scraper) GetMenu(ctx context.Context, day time.Time) (menu.Menu, error) {
	result := menu.Empty(s.opts.Name, s.opts.ID, s.publicUrl(day))

	res, err := s.client.Menu(ctx, day)
	if err != nil {
		return menu.Menu{}, err
	}
	if len(res.Days) == 0 {
		return menu.Menu{}, menu.Malformedf("no days in response for %s", day.Format(time.DateOnly))
	}
	cafe, ok := res.Days[0].Cafes[strconv.Itoa(s.opts.CafeID)]
	if !ok {
		return menu.Menu{}, menu.Malformedf("cafe %d missing from response", s.opts.CafeID)
	}

	dayparts, err := fallback.First(
		ctx, s.tel,
		fallback.Step[[]daypart]{
			Name: "dayparts",
			Run: func(ctx context.Context) ([]daypart, error) {
				if len(cafe.Dayparts) == 0 || len(cafe.Dayparts[0]) == 0 {
					return nil, fallback.ErrSkip
				}
				return cafe.Dayparts[0], nil
			},
		},
		fallback.Step[[]daypart]{
			Name: "rss",
			Run: func(ctx context.Context) ([]daypart, error) {
				// the feed only ever carries the current week
				if !chrono.InCurrentWeek(s.clock, day) {
					return nil, fallback.ErrSkip
				}
				feed, err := s.client.Feed(ctx)
				if err != nil {
					return nil, err
				}
				text, ok := s.feedItemFor(feed, day)
				if !ok {
					return nil, fmt.Errorf("no feed entry for %s: %w", day.Format(time.DateOnly), fallback.ErrSkip)
				}
				return s.rssDayparts(text, res.Items), nil
			},
		},
	)
	if errors.Is(err, fallback.ErrSkip) {
		// nothing published for the day
		return result, nil
	}
	if err != nil {
		return menu.Menu{}, err
	}

	meals := make([]menu.Meal, 0, len(dayparts))
	for _, part := range dayparts {
		meal, err := createMeal(part, res.Items)
		if err != nil {
			return menu.Menu{}, err
		}
		meals = append(meals, meal)
	}
	result.Meals = meals

	return menu.Prune(result), nil
}

func createMeal(part daypart, items map[string]item) (menu.Meal, error) {
	var hours menu.TimeRange
	err := hours.Start.UnmarshalText([]byte(part.Starttime))
	if err != nil {
		return menu.Meal{}, menu.Malformed(fmt.Sprintf("start time of %s", part.Label), err)
	}
	err = hours.End.UnmarshalText([]byte(part.Endtime))
	if err != nil {
		return menu.Meal{}, menu.Malformed(fmt.Sprintf("end time of %s", part.Label), err)
	}

	stations := make([]menu.Station, 0, len(part.Stations))
	for _, st := range part.Stations {
		stationItems := make([]menu.Item, 0, len(st.Items))
		for _, id := range st.Items {
			data, ok := items[id]
			if !ok {
				return menu.Meal{}, menu.Malformedf("station %s references unknown item %s", st.Label, id)
			}
			stationItems = append(stationItems, menu.NewItem(data.Label, data.Description, data.tags()...))
		}
		stations = append(stations, menu.Station{Name: st.Label, Items: stationItems})
	}

	return menu.Meal{
		Name:     part.Label,
		Hours:    &hours,
		Stations: stations,
	}, nil
}
