package bonappetit

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"menufetcher/internal/fetch"
	"menufetcher/internal/menu"

	"github.com/mmcdole/gofeed"
)

type client struct {
	opts Options
	http *fetch.Client

	menus *fetch.Cache[string, menuResponse]
	feeds *fetch.Cache[string, *gofeed.Feed]
}

func newClient(opts Options, http *fetch.Client) *client {
	return &client{
		opts:  opts,
		http:  http,
		menus: fetch.NewCache[string, menuResponse](),
		feeds: fetch.NewCache[string, *gofeed.Feed](),
	}
}

func (c *client) menuUrl(day time.Time) string {
	return fmt.Sprintf("%s/api/2/menus?format=json&cafe=%d&date=%s", c.opts.BaseUrl, c.opts.CafeID, day.Format(time.DateOnly))
}

func (c *client) rssUrl() string {
	return fmt.Sprintf("%s/rss/menu/%d", c.opts.BaseUrl, c.opts.CafeID)
}

func (c *client) Menu(ctx context.Context, day time.Time) (menuResponse, error) {
	url := c.menuUrl(day)
	return c.menus.Get(url, func() (menuResponse, error) {
		var res menuResponse
		err := c.http.GetJSON(ctx, url, &res)
		return res, err
	})
}

func (c *client) Feed(ctx context.Context) (*gofeed.Feed, error) {
	url := c.rssUrl()
	return c.feeds.Get(url, func() (*gofeed.Feed, error) {
		body, err := c.http.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
		if err != nil {
			return nil, menu.Malformed(fmt.Sprintf("parse rss %s", url), err)
		}
		return feed, nil
	})
}
