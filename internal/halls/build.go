package halls

import (
	"context"
	"fmt"
	"net/http"

	"menufetcher/internal/components/assert"
	"menufetcher/internal/components/chrono"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/menu"
	"menufetcher/internal/scrapers/bitemenu"
	"menufetcher/internal/scrapers/bonappetit"
	"menufetcher/internal/scrapers/pomona"
	"menufetcher/internal/scrapers/smg"
	"menufetcher/internal/scrapers/smg/browser"
	"menufetcher/internal/scrapers/sodexo"
	"menufetcher/lib/restyutil"
)

const report_halls_disabled = "halls.disabled"

type BuildOptions struct {
	// Dump receives every http exchange of every source.
	Dump restyutil.Output
	// Transport replaces the http transport of every source.
	Transport http.RoundTripper
}

// Set is the built list of sources, Close releases the browser when one was
// started.
type Set struct {
	Sources []menu.Source
	Kinds   map[string]Kind

	closers []func() error
}

func (s *Set) Close() error {
	var err error
	for _, c := range s.closers {
		if cerr := c(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Select returns the sources with the given ids in the given order, no ids
// selects every source.
func (s *Set) Select(ids []string) ([]menu.Source, error) {
	if len(ids) == 0 {
		return s.Sources, nil
	}
	out := make([]menu.Source, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, src := range s.Sources {
			if src.ID() == id {
				out = append(out, src)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown hall %q", id)
		}
	}
	return out, nil
}

// Build creates a source for every enabled hall of cfg. Only a browser that
// fails to start is an error, cfg is expected to be validated.
func Build(ctx context.Context, cfg Config, clock chrono.API, tel telemetry.API, opts BuildOptions) (*Set, error) {
	assert.NotNil(clock)
	assert.NotNil(tel)

	fetchOpts := cfg.Fetch.Options()
	fetchOpts.Dump = opts.Dump
	fetchOpts.Transport = opts.Transport

	set := &Set{Kinds: map[string]Kind{}}

	var evaluator smg.Evaluator
	if cfg.Browser.Enabled {
		b, err := browser.New(ctx, browser.Options{
			ControlURL: cfg.Browser.ControlURL,
			Headless:   !cfg.Browser.ShowWindow,
		})
		if err != nil {
			return nil, err
		}
		evaluator = smg.FallbackEvaluator{Literal: smg.LiteralEvaluator{}, Script: b}
		set.closers = append(set.closers, b.Close)
	}

	for _, h := range cfg.Halls {
		if h.Disabled {
			tel.ReportDebug(report_halls_disabled, h.ID)
			continue
		}
		var src menu.Source
		switch h.Kind {
		case KindPomona:
			src = pomona.NewScraper(pomona.Options{
				Name:     h.Name,
				ID:       h.ID,
				Sitename: h.Sitename,
				Layout:   pomona.Layout(h.Layout),
				Fetch:    fetchOpts,
			}, clock, tel)
		case KindBonAppetit:
			src = bonappetit.NewScraper(bonappetit.Options{
				Name:      h.Name,
				ID:        h.ID,
				CafeID:    h.CafeID,
				UrlPrefix: h.UrlPrefix,
				UrlCafe:   h.UrlCafe,
				Fetch:     fetchOpts,
			}, clock, tel)
		case KindSodexo:
			src = sodexo.NewScraper(sodexo.Options{
				Name:     h.Name,
				ID:       h.ID,
				Sitename: h.Sitename,
				TcmID:    h.TcmID,
				Fetch:    fetchOpts,
			}, clock, tel)
		case KindSmg:
			src = smg.NewScraper(smg.Options{
				Name:      h.Name,
				ID:        h.ID,
				Sitename:  h.Sitename,
				SmgName:   h.SmgName,
				Evaluator: evaluator,
				Fetch:     fetchOpts,
			}, clock, tel)
		case KindBiteMenu:
			src = bitemenu.NewScraper(bitemenu.Options{
				Name:       h.Name,
				ID:         h.ID,
				Sitename:   h.Sitename,
				MenuID:     h.MenuID,
				LocationID: h.LocationID,
				HallSlug:   h.HallSlug,
				Fetch:      fetchOpts,
			}, tel)
		default:
			set.Close()
			return nil, fmt.Errorf("hall %s: unknown kind %q", h.ID, h.Kind)
		}
		set.Sources = append(set.Sources, src)
		set.Kinds[h.ID] = h.Kind
	}
	return set, nil
}
