package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/gunitk/testforge/logger"
)

const (
	viewportWidth  = 1920
	viewportHeight = 1080
)

// BrowserSource renders a page in headless Chromium and returns the DOM
// after scripts have run. Each fetch launches a fresh browser so analyses
// never share state.
type BrowserSource struct {
	headless    bool
	pageTimeout time.Duration
	logger      logger.Logger
}

func NewBrowserSource(headless bool, pageTimeout time.Duration, log logger.Logger) *BrowserSource {
	if pageTimeout <= 0 {
		pageTimeout = 30 * time.Second
	}
	return &BrowserSource{
		headless:    headless,
		pageTimeout: pageTimeout,
		logger:      log,
	}
}

// FetchHTML navigates to url and returns the rendered page HTML.
func (b *BrowserSource) FetchHTML(ctx context.Context, url string) (string, error) {
	controlURL, err := launcher.New().Headless(b.headless).Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			b.logger.Warn(ctx, "Failed to close browser", map[string]interface{}{"error": err.Error()})
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	err = (proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page)
	if err != nil {
		return "", fmt.Errorf("failed to set viewport: %w", err)
	}

	page = page.Timeout(b.pageTimeout)
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("failed to load %s: %w", url, err)
	}

	pageHTML, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return pageHTML, nil
}
