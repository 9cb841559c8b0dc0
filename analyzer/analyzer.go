// Package analyzer inspects a locally reachable web application and builds
// the structured context that test generation prompts are grounded on.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/target"
)

const (
	// SourceBrowser marks a context built from the rendered DOM.
	SourceBrowser = "browser"
	// SourceStatic marks a context built from raw served HTML.
	SourceStatic = "static"
)

// Source fetches page HTML for extraction.
type Source interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// Config carries analyzer tuning. Zero values pick sensible defaults.
type Config struct {
	Headless        bool
	PageLoadTimeout time.Duration
	ProbeTimeout    time.Duration
	DisableBrowser  bool
}

// Analyzer classifies a target, checks reachability and extracts its UI
// surface. Browser-rendered analysis is preferred; static fetch covers
// hosts without a usable Chromium.
type Analyzer struct {
	prober  *target.Prober
	browser Source
	static  Source
	logger  logger.Logger
}

func New(cfg Config, log logger.Logger) *Analyzer {
	a := &Analyzer{
		prober: target.NewProber(cfg.ProbeTimeout, log),
		static: NewStaticSource(cfg.PageLoadTimeout),
		logger: log,
	}
	if !cfg.DisableBrowser {
		a.browser = NewBrowserSource(cfg.Headless, cfg.PageLoadTimeout, log)
	}
	return a
}

// Analyze builds the application context for rawURL. The target must
// classify as local and answer a probe before any page is fetched.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*Context, error) {
	tgt, err := target.Classify(rawURL)
	if err != nil {
		return nil, err
	}
	if err := tgt.RequireLocal(); err != nil {
		return nil, err
	}
	if err := a.prober.Probe(ctx, tgt.URL); err != nil {
		return nil, err
	}

	pageHTML, source, err := a.fetch(ctx, tgt.URL)
	if err != nil {
		return nil, err
	}

	appCtx, err := Extract(tgt.URL, pageHTML)
	if err != nil {
		return nil, err
	}
	appCtx.Source = source
	appCtx.AnalyzedAt = time.Now().UTC()

	a.logger.Info(ctx, "Application analysis complete", map[string]interface{}{
		"url":          appCtx.URL,
		"source":       appCtx.Source,
		"forms":        len(appCtx.Forms),
		"buttons":      len(appCtx.Buttons),
		"links":        len(appCtx.Links),
		"technologies": len(appCtx.Technologies),
	})
	return appCtx, nil
}

func (a *Analyzer) fetch(ctx context.Context, url string) (string, string, error) {
	if a.browser != nil {
		pageHTML, err := a.browser.FetchHTML(ctx, url)
		if err == nil {
			return pageHTML, SourceBrowser, nil
		}
		a.logger.Warn(ctx, "Browser analysis failed, falling back to static fetch", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}

	pageHTML, err := a.static.FetchHTML(ctx, url)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch application page: %w", err)
	}
	return pageHTML, SourceStatic, nil
}
