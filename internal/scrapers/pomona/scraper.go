// Package pomona reads the menus Pomona College publishes as a weekly google
// spreadsheet, one worksheet per week, next to an html page with the serving hours.
// Halls whose page references an Eatec feed instead are read from that feed.
package pomona

import (
	"context"
	"fmt"
	"time"

	"menufetcher/internal/components/assert"
	"menufetcher/internal/components/chrono"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/fallback"
	"menufetcher/internal/fetch"
	"menufetcher/internal/grid"
	"menufetcher/internal/menu"
	"menufetcher/internal/schedule"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_scraper_sheet_title = "scraper.sheet-title"
	report_scraper_day_range   = "scraper.day-range"
	report_scraper_eatec_hours = "scraper.eatec-hours"
)

type Layout string

const (
	// LayoutFrankFrary has a block of rows per weekday with one column per meal.
	LayoutFrankFrary Layout = "frankFrary"
	// LayoutOldenborg has one column per weekday and a single meal.
	LayoutOldenborg Layout = "oldenborg"
)

type Options struct {
	Name     string
	ID       string
	Sitename string
	Layout   Layout

	InfoBaseUrl   string
	SheetsBaseUrl string
	ExportBaseUrl string

	Fetch fetch.Options
}

const (
	DefaultInfoBaseUrl   = "http://www.pomona.edu/administration/dining/menus/"
	DefaultSheetsBaseUrl = "https://spreadsheets.google.com"
	DefaultExportBaseUrl = "https://docs.google.com"
)

type Scraper struct {
	opts   Options
	client *client
	clock  chrono.API
	tel    telemetry.API
}

func NewScraper(opts Options, clock chrono.API, tel telemetry.API) *Scraper {
	assert.NotEmptyStr(opts.ID)
	assert.NotEmptyStr(opts.Sitename)
	assert.NotNil(clock)
	assert.NotNil(tel)

	if opts.InfoBaseUrl == "" {
		opts.InfoBaseUrl = DefaultInfoBaseUrl
	}
	if opts.SheetsBaseUrl == "" {
		opts.SheetsBaseUrl = DefaultSheetsBaseUrl
	}
	if opts.ExportBaseUrl == "" {
		opts.ExportBaseUrl = DefaultExportBaseUrl
	}
	if opts.Layout == "" {
		opts.Layout = LayoutFrankFrary
	}

	tel = telemetry.NewScopedAPI(fmt.Sprintf("pomona_scraper(%s)", opts.ID), tel)

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

func (s *Scraper) GetMenu(ctx context.Context, day time.Time) (menu.Menu, error) {
	publicUrl := s.client.infoUrl()
	empty := menu.Empty(s.opts.Name, s.opts.ID, publicUrl)

	page, err := s.client.InfoPage(ctx)
	if err != nil {
		return menu.Menu{}, err
	}
	info := page.Find("#menu-from-google").First()
	if info.Length() == 0 {
		if ref := page.Find("#dining-menu-from-json").First(); ref.Length() > 0 {
			return s.eatecMenu(ctx, page, ref, day)
		}
		return menu.Menu{}, menu.NotAvailablef("no spreadsheet reference on %s", publicUrl)
	}
	spreadsheetId, _ := info.Attr("data-google-spreadsheet-id")
	if spreadsheetId == "" {
		return menu.Menu{}, menu.NotAvailablef("empty spreadsheet id on %s", publicUrl)
	}

	sheet, err := s.loadSheet(ctx, spreadsheetId, chrono.MondayOf(day))
	if err != nil {
		return menu.Menu{}, err
	}
	if sheet.missing {
		// the week has not been published
		return empty, nil
	}

	menuType, _ := info.Attr("data-menu-type")
	if Layout(menuType) != s.opts.Layout {
		return menu.Menu{}, menu.Malformedf("wrong menu type %q, expected %q", menuType, s.opts.Layout)
	}

	hours, err := s.hours(page, day.Weekday())
	if err != nil {
		return menu.Menu{}, err
	}
	if len(hours) == 0 {
		// closed for the day
		return empty, nil
	}

	var meals []menu.Meal
	switch s.opts.Layout {
	case LayoutFrankFrary:
		meals, err = parseFrankFrary(sheet.grid, day.Weekday(), hours)
	case LayoutOldenborg:
		meals, err = parseOldenborg(sheet.grid, day.Weekday(), hours)
	default:
		err = menu.Malformedf("unknown layout %q", s.opts.Layout)
	}
	if err != nil {
		return menu.Menu{}, err
	}

	empty.Meals = meals
	return empty, nil
}

func (s *Scraper) hours(page *goquery.Document, day time.Weekday) (schedule.Hours, error) {
	hours, skipped, err := schedule.FromColumns(page.Selection, day)
	for _, header := range skipped {
		s.tel.ReportWarning(report_scraper_day_range, fmt.Errorf("invalid day range %q", header))
	}
	if err != nil {
		return nil, menu.Malformed(fmt.Sprintf("hours for %s", day), err)
	}
	return hours, nil
}

type sheet struct {
	grid    grid.Grid
	missing bool
}

// loadSheet finds the worksheet for the week starting on monday, first through the
// public cells feed and then through the xlsx export of the whole spreadsheet.
func (s *Scraper) loadSheet(ctx context.Context, spreadsheetId string, monday time.Time) (sheet, error) {
	return fallback.First(
		ctx, s.tel,
		fallback.Step[sheet]{
			Name: "cells-feed",
			Run: func(ctx context.Context) (sheet, error) {
				return s.sheetFromCellFeed(ctx, spreadsheetId, monday)
			},
		},
		fallback.Step[sheet]{
			Name: "xlsx-export",
			Run: func(ctx context.Context) (sheet, error) {
				return s.sheetFromWorkbook(ctx, spreadsheetId, monday)
			},
		},
	)
}

func (s *Scraper) sheetFromCellFeed(ctx context.Context, spreadsheetId string, monday time.Time) (sheet, error) {
	worksheets, err := s.client.Worksheets(ctx, spreadsheetId)
	if err != nil {
		return sheet{}, err
	}
	for _, ws := range worksheets {
		if _, ok := parseSheetTitle(ws.Title.Text, monday.Location()); !ok {
			s.tel.ReportWarning(report_scraper_sheet_title, ws.Title.Text)
			continue
		}
		if !sheetMatches(ws.Title.Text, monday) {
			continue
		}
		url, ok := ws.cellsFeedUrl()
		if !ok {
			return sheet{}, menu.Malformedf("worksheet %q has no cells feed", ws.Title.Text)
		}
		g, err := s.client.CellFeed(ctx, url)
		if err != nil {
			return sheet{}, err
		}
		return sheet{grid: g}, nil
	}
	return sheet{missing: true}, nil
}

func (s *Scraper) sheetFromWorkbook(ctx context.Context, spreadsheetId string, monday time.Time) (sheet, error) {
	raw, err := s.client.Workbook(ctx, spreadsheetId)
	if err != nil {
		return sheet{}, err
	}
	names, err := grid.SheetNames(raw)
	if err != nil {
		return sheet{}, menu.Malformed("xlsx export", err)
	}
	for _, name := range names {
		if !sheetMatches(name, monday) {
			continue
		}
		g, err := grid.FromXLSX(raw, name)
		if err != nil {
			return sheet{}, menu.Malformed("xlsx export", err)
		}
		return sheet{grid: g}, nil
	}
	return sheet{missing: true}, nil
}
