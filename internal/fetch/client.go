// Package fetch is the HTTP layer shared by every menu source.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"menufetcher/internal/components/assert"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/menu"
	"menufetcher/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("menufetcher.internal.fetch")

const report_client_get = "client.get"

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

type Options struct {
	// Timeout applies to every single request, it defaults to DefaultTimeout.
	Timeout   time.Duration
	UserAgent string
	// RequestsPerSecond limits how quickly a single client hits upstream, 0 means 2.
	RequestsPerSecond float64
	// CloudflareBypass wraps the transport so sites fronted by cloudflare's bot
	// check accept the requests.
	CloudflareBypass bool
	// Transport replaces the default http transport, tests use it to route requests.
	Transport http.RoundTripper
	// Dump receives every http exchange when set.
	Dump restyutil.Output
}

type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts Options, tel telemetry.API) *Client {
	assert.NotNil(tel)

	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 2
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	if opts.Transport != nil {
		httpClient.SetTransport(opts.Transport)
	}
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.Dump(httpClient, opts.Dump)

	return &Client{http: httpClient, tel: tel}
}

// Get fetches url and returns the body. Transport failures, timeouts and non-2xx
// statuses are reported as menu.ErrNotAvailable.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, menu.NotAvailable(fmt.Sprintf("fetch %s", url), err)
	}
	if res.IsError() {
		err := fmt.Errorf("unexpected status %s", res.Status())
		span.SetStatus(codes.Error, err.Error())
		c.tel.ReportDebug(report_client_get, url, res.StatusCode())
		return nil, menu.NotAvailable(fmt.Sprintf("fetch %s", url), err)
	}

	return res.Body(), nil
}

// GetDocument fetches url and parses it as html.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, menu.Malformed(fmt.Sprintf("parse html %s", url), err)
	}
	return doc, nil
}

// GetJSON fetches url and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	err = json.Unmarshal(body, out)
	if err != nil {
		return menu.Malformed(fmt.Sprintf("decode json %s", url), err)
	}
	return nil
}
