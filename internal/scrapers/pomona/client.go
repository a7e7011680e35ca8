package pomona

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"menufetcher/internal/components/chrono"
	"menufetcher/internal/fetch"
	"menufetcher/internal/grid"
	"menufetcher/internal/menu"

	"github.com/PuerkitoBio/goquery"
)

// client wraps the http calls of a single hall and caches every response for the
// lifetime of the scraper.
type client struct {
	opts Options
	http *fetch.Client

	pages      *fetch.Cache[string, *goquery.Document]
	worksheets *fetch.Cache[string, []worksheet]
	cellFeeds  *fetch.Cache[string, grid.Grid]
	workbooks  *fetch.Cache[string, []byte]
	eatecFeeds *fetch.Cache[string, []eatecMeal]
}

func newClient(opts Options, http *fetch.Client) *client {
	return &client{
		opts:       opts,
		http:       http,
		pages:      fetch.NewCache[string, *goquery.Document](),
		worksheets: fetch.NewCache[string, []worksheet](),
		cellFeeds:  fetch.NewCache[string, grid.Grid](),
		workbooks:  fetch.NewCache[string, []byte](),
		eatecFeeds: fetch.NewCache[string, []eatecMeal](),
	}
}

func (c *client) infoUrl() string {
	return c.opts.InfoBaseUrl + c.opts.Sitename
}

func (c *client) InfoPage(ctx context.Context) (*goquery.Document, error) {
	url := c.infoUrl()
	return c.pages.Get(url, func() (*goquery.Document, error) {
		return c.http.GetDocument(ctx, url)
	})
}

func (c *client) Worksheets(ctx context.Context, spreadsheetId string) ([]worksheet, error) {
	url := fmt.Sprintf("%s/feeds/worksheets/%s/public/basic?alt=json", c.opts.SheetsBaseUrl, spreadsheetId)
	return c.worksheets.Get(url, func() ([]worksheet, error) {
		var feed worksheetFeed
		err := c.http.GetJSON(ctx, url, &feed)
		if err != nil {
			return nil, err
		}
		return feed.Feed.Entry, nil
	})
}

func (c *client) CellFeed(ctx context.Context, url string) (grid.Grid, error) {
	return c.cellFeeds.Get(url, func() (grid.Grid, error) {
		body, err := c.http.Get(ctx, url)
		if err != nil {
			return grid.Grid{}, err
		}
		g, err := grid.FromCellFeed(body)
		if err != nil {
			return grid.Grid{}, menu.Malformed("cell feed", err)
		}
		return g, nil
	})
}

func (c *client) Workbook(ctx context.Context, spreadsheetId string) ([]byte, error) {
	url := fmt.Sprintf("%s/spreadsheets/d/%s/export?format=xlsx", c.opts.ExportBaseUrl, spreadsheetId)
	return c.workbooks.Get(url, func() ([]byte, error) {
		return c.http.Get(ctx, url)
	})
}

var sheetTitleRegex = regexp.MustCompile(`([0-9][0-9]?)-([0-9][0-9]?)-([0-9][0-9])`)

// parseSheetTitle reads the M-D-YY week start a worksheet is named after.
func parseSheetTitle(title string, loc *time.Location) (time.Time, bool) {
	groups := sheetTitleRegex.FindStringSubmatch(title)
	if groups == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(groups[1])
	day, _ := strconv.Atoi(groups[2])
	year, _ := strconv.Atoi(groups[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, loc)
	if date.Day() != day {
		// rolled over, ex. 2-30-24
		return time.Time{}, false
	}
	return date, true
}

func sheetMatches(title string, monday time.Time) bool {
	date, ok := parseSheetTitle(title, monday.Location())
	return ok && chrono.SameDate(date, monday)
}
