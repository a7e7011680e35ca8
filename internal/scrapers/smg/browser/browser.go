// Package browser evaluates menu scripts in a headless chrome, for scripts the
// literal evaluator cannot read.
package browser

import (
	"context"
	"fmt"

	"menufetcher/internal/components/assert"
	"menufetcher/internal/scrapers/smg"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

type Options struct {
	// ControlURL connects to a running browser, when empty one is launched.
	ControlURL string
	Headless   bool
}

type Evaluator struct {
	browser *rod.Browser
}

var _ smg.Evaluator = (*Evaluator)(nil)

func New(ctx context.Context, opts Options) (*Evaluator, error) {
	controlUrl := opts.ControlURL
	if controlUrl == "" {
		url, err := launcher.New().Headless(opts.Headless).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlUrl = url
	}

	browser := rod.New().ControlURL(controlUrl).Context(ctx)
	err := browser.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	return &Evaluator{browser: browser}, nil
}

// Evaluate runs script in a fresh incognito page so nothing leaks between runs.
func (e *Evaluator) Evaluate(ctx context.Context, script string) ([]byte, error) {
	assert.NotNil(e.browser)

	incognito, err := e.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, err
	}
	defer incognito.Close()

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, err
	}
	defer page.Close()

	res, err := page.Eval(`(src, expr) => (new Function(src + ";\nreturn " + expr))()`, script, smg.Expression)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	if res.Value.Nil() {
		return nil, fmt.Errorf("script produced no value")
	}
	return []byte(res.Value.Str()), nil
}

func (e *Evaluator) Close() error {
	return e.browser.Close()
}
