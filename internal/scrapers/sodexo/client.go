package sodexo

import (
	"context"

	"menufetcher/internal/fetch"

	"github.com/PuerkitoBio/goquery"
)

type client struct {
	http  *fetch.Client
	pages *fetch.Cache[string, *goquery.Document]
	raw   *fetch.Cache[string, []byte]
}

func newClient(http *fetch.Client) *client {
	return &client{
		http:  http,
		pages: fetch.NewCache[string, *goquery.Document](),
		raw:   fetch.NewCache[string, []byte](),
	}
}

func (c *client) Page(ctx context.Context, url string) (*goquery.Document, error) {
	return c.pages.Get(url, func() (*goquery.Document, error) {
		return c.http.GetDocument(ctx, url)
	})
}

func (c *client) Raw(ctx context.Context, url string) ([]byte, error) {
	return c.raw.Get(url, func() ([]byte, error) {
		return c.http.Get(ctx, url)
	})
}
