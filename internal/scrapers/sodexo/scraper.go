// Package sodexo reads the weekly html menus of Sodexo operated halls. The url of
// a week's menu is not predictable, it is discovered through the dining portal,
// then the site's front page, then a list of menu ids that have been seen before.
package sodexo

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"menufetcher/internal/components/assert"
	"menufetcher/internal/components/chrono"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/fallback"
	"menufetcher/internal/fetch"
	"menufetcher/internal/menu"
	"menufetcher/internal/schedule"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_portal_listing = "portal.listing"
	report_portal_hours   = "portal.hours"
)

// KnownMenuIds are WeeklyMenu ids that have been published in the past.
var KnownMenuIds = []int{109893, 110702, 121814, 121817, 121818, 121819}

type Options struct {
	Name     string
	ID       string
	Sitename string
	TcmID    int

	Fetch fetch.Options
}

type Scraper struct {
	opts   Options
	client *client
	clock  chrono.API
	tel    telemetry.API

	frontpageMenuRegex *regexp.Regexp
}

func NewScraper(opts Options, clock chrono.API, tel telemetry.API) *Scraper {
	assert.NotEmptyStr(opts.ID)
	assert.NotEmptyStr(opts.Sitename)
	assert.Positive(opts.TcmID)
	assert.NotNil(clock)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI(fmt.Sprintf("sodexo_scraper(%s)", opts.ID), tel)
	frontpageMenuRegex := regexp.MustCompile(fmt.Sprintf(`/[Ii]mages/WeeklyMenu_tcm%d-([0-9]+)\.htm`, opts.TcmID))

	return &Scraper{
		opts:               opts,
		client:             newClient(fetch.NewClient(opts.Fetch, tel)),
		clock:              clock,
		tel:                tel,
		frontpageMenuRegex: frontpageMenuRegex,
	}
}

func (s *Scraper) ID() string {
	return s.opts.ID
}

func (s *Scraper) Name() string {
	return s.opts.Name
}

func (s *Scraper) menuUrlFromId(menuId int) string {
	return fmt.Sprintf("%s/images/WeeklyMenu_tcm%d-%d.htm", SiteUrl(s.opts.Sitename), s.opts.TcmID, menuId)
}

func (s *Scraper) fromPortal(ctx context.Context, day time.Time) ([]string, error) {
	portalUrl := PortalUrl(s.opts.Sitename)
	portal, err := s.client.Page(ctx, portalUrl)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(portalUrl)
	if err != nil {
		return nil, err
	}

	listings, invalid, err := weekListings(ctx, portal, base, day.Location())
	for _, label := range invalid {
		s.tel.ReportWarning(report_portal_listing, fmt.Errorf("invalid date range %q", label))
	}
	if err != nil {
		return nil, err
	}

	for _, l := range listings {
		if l.contains(day) {
			return []string{l.href + "?forcedesktop=true"}, nil
		}
	}
	return nil, menu.NotAvailablef("portal lists no menu for %s", day.Format(time.DateOnly))
}

func (s *Scraper) fromFrontpage(ctx context.Context, day time.Time) ([]string, error) {
	// the front page only links the current week
	if !chrono.InCurrentWeek(s.clock, day) {
		return nil, fallback.ErrSkip
	}
	body, err := s.client.Raw(ctx, SiteUrl(s.opts.Sitename)+"/?forcedesktop=true")
	if err != nil {
		return nil, err
	}
	match := s.frontpageMenuRegex.Find(body)
	if match == nil {
		return nil, menu.NotAvailablef("front page links no weekly menu")
	}
	return []string{SiteUrl(s.opts.Sitename) + string(match)}, nil
}

func (s *Scraper) fromKnownIds(ctx context.Context, day time.Time) ([]string, error) {
	urls := make([]string, len(KnownMenuIds))
	for i, id := range KnownMenuIds {
		urls[i] = s.menuUrlFromId(id)
	}
	return urls, nil
}

// validate accepts a menu page whose title names the monday of day's week.
func (s *Scraper) validate(ctx context.Context, day time.Time, menuUrl string) (weekPage, error) {
	page, err := s.client.Page(ctx, menuUrl)
	if err != nil {
		return weekPage{}, err
	}
	title := page.Find(".titlecell").Text()
	monday := chrono.MondayOf(day).Format("Monday January 2, 2006")
	if !strings.Contains(title, monday) {
		return weekPage{}, fmt.Errorf("%s is not the week of %s: %w", menuUrl, monday, fallback.ErrRejected)
	}
	return weekPage{url: menuUrl, doc: page}, nil
}

type weekPage struct {
	url string
	doc *goquery.Document
}

func (s *Scraper) findWeek(ctx context.Context, day time.Time) (weekPage, error) {
	discover := func(name string, f func(context.Context, time.Time) ([]string, error)) fallback.Strategy[string] {
		return fallback.Strategy[string]{
			Name: name,
			Discover: func(ctx context.Context) ([]string, error) {
				return f(ctx, day)
			},
		}
	}
	return fallback.Resolve(
		ctx, s.tel,
		[]fallback.Strategy[string]{
			discover("portal", s.fromPortal),
			discover("frontpage", s.fromFrontpage),
			discover("known-ids", s.fromKnownIds),
		},
		func(ctx context.Context, menuUrl string) (weekPage, error) {
			return s.validate(ctx, day, menuUrl)
		},
	)
}

func (s *Scraper) GetMenu(ctx context.Context, day time.Time) (menu.Menu, error) {
	week, err := s.findWeek(ctx, day)
	if err != nil {
		return menu.Menu{}, err
	}

	weekday := strings.ToLower(day.Weekday().String())
	result := menu.Empty(s.opts.Name, s.opts.ID, week.url+"#"+weekday)

	dayMenu := week.doc.Find("#" + weekday).First()
	if dayMenu.Length() == 0 {
		return menu.Menu{}, menu.NotAvailablef("%s has no menu for %s", week.url, weekday)
	}

	meals, err := parseDay(dayMenu, day)
	if err != nil {
		return menu.Menu{}, err
	}

	hours := s.hours(ctx, day)
	for i := range meals {
		r, ok := hours[meals[i].Name]
		if ok {
			meals[i].Hours = &r
		}
	}

	result.Meals = meals
	return result, nil
}

// hours are best effort, a missing portal only costs the serving times.
func (s *Scraper) hours(ctx context.Context, day time.Time) schedule.Hours {
	portal, err := s.client.Page(ctx, PortalUrl(s.opts.Sitename))
	if err != nil {
		s.tel.ReportWarning(report_portal_hours, err)
		return nil
	}
	hours, err := PortalHours(portal, day.Weekday())
	if err != nil {
		s.tel.ReportWarning(report_portal_hours, err)
		return nil
	}
	return hours
}
