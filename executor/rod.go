package executor

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/gunitk/testforge/logger"
)

const (
	defaultInputText = "test_data"
	scrollDistance   = 600
	scrollSteps      = 3
)

// clickableSelector covers the elements a click step may land on.
const clickableSelector = "button, a, input[type=submit], input[type=button], [role=button]"

// inputSelector covers the fields a text entry step may land on.
const inputSelector = "input:not([type=hidden]):not([type=submit]):not([type=button]):not([type=checkbox]):not([type=radio]), textarea"

// DriverConfig controls the rod browser driver.
type DriverConfig struct {
	Headless    bool
	PageTimeout time.Duration
}

// RodDriver replays test steps in a headless Chromium page. One driver owns
// one browser and one page; execution within it is serial.
type RodDriver struct {
	browser     *rod.Browser
	page        *rod.Page
	client      *http.Client
	pageTimeout time.Duration
	logger      logger.Logger
}

// NewRodDriver launches a browser and opens a blank page sized to the
// default viewport.
func NewRodDriver(cfg DriverConfig, log logger.Logger) (*RodDriver, error) {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}

	controlURL, err := launcher.New().Headless(cfg.Headless).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	d := &RodDriver{
		browser:     browser,
		page:        page,
		client:      &http.Client{Timeout: cfg.PageTimeout},
		pageTimeout: cfg.PageTimeout,
		logger:      log,
	}
	if err := d.SetViewport(context.Background(), viewportSizes[0].width, viewportSizes[0].height); err != nil {
		_ = browser.Close()
		return nil, err
	}
	return d, nil
}

// Navigate loads url and waits for the load event.
func (d *RodDriver) Navigate(ctx context.Context, url string) error {
	page := d.page.Context(ctx).Timeout(d.pageTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// Perform interprets one free-text step and executes the closest matching
// browser action. Interpretation is best-effort: steps with no recognizable
// action are recorded as observations rather than failed.
func (d *RodDriver) Perform(ctx context.Context, step string) (string, error) {
	action := interpretStep(step)

	switch action.kind {
	case actionNavigate:
		return d.performNavigate(ctx, action)
	case actionClick:
		return d.performClick(ctx, action)
	case actionInput:
		return d.performInput(ctx, action)
	case actionWait:
		return d.performWait(ctx, action)
	case actionScroll:
		return d.performScroll(ctx)
	case actionVerify:
		return d.performVerify(ctx, step)
	default:
		return "noted without automation: " + step, nil
	}
}

// SetViewport resizes the page viewport.
func (d *RodDriver) SetViewport(ctx context.Context, width, height int) error {
	err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(d.page.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to set viewport to %dx%d: %w", width, height, err)
	}
	return nil
}

// ResponseHeaders fetches url outside the browser and returns its headers.
func (d *RodDriver) ResponseHeaders(ctx context.Context, url string) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	return resp.Header, nil
}

// Reset returns the page to about:blank so DOM state from one case cannot
// leak into the next.
func (d *RodDriver) Reset(ctx context.Context) error {
	if err := d.page.Context(ctx).Navigate("about:blank"); err != nil {
		return fmt.Errorf("failed to reset page: %w", err)
	}
	return nil
}

// Close releases the underlying browser.
func (d *RodDriver) Close() error {
	return d.browser.Close()
}

func (d *RodDriver) performNavigate(ctx context.Context, action stepAction) (string, error) {
	switch {
	case action.target == "":
		if err := d.page.Context(ctx).Timeout(d.pageTimeout).Reload(); err != nil {
			return "", fmt.Errorf("failed to reload page: %w", err)
		}
		return "reloaded the page", nil
	case strings.HasPrefix(action.target, "http://") || strings.HasPrefix(action.target, "https://"):
		if err := d.Navigate(ctx, action.target); err != nil {
			return "", err
		}
		return "navigated to " + action.target, nil
	default:
		page := d.page.Context(ctx)
		el, err := page.ElementR("a", textPattern(action.target))
		if err != nil {
			return "", fmt.Errorf("no link matching %q: %w", action.target, err)
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return "", fmt.Errorf("failed to follow link %q: %w", action.target, err)
		}
		if err := page.WaitLoad(); err != nil {
			return "", fmt.Errorf("failed to load page after following %q: %w", action.target, err)
		}
		return fmt.Sprintf("followed link %q", action.target), nil
	}
}

func (d *RodDriver) performClick(ctx context.Context, action stepAction) (string, error) {
	page := d.page.Context(ctx)

	var el *rod.Element
	var err error
	if action.target != "" {
		el, err = page.ElementR(clickableSelector, textPattern(action.target))
		if err != nil {
			return "", fmt.Errorf("no clickable element matching %q: %w", action.target, err)
		}
	} else {
		el, err = page.Element("button, input[type=submit], input[type=button]")
		if err != nil {
			return "", fmt.Errorf("no clickable element found: %w", err)
		}
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", fmt.Errorf("failed to click: %w", err)
	}
	if action.target != "" {
		return fmt.Sprintf("clicked %q", action.target), nil
	}
	return "clicked the first button", nil
}

func (d *RodDriver) performInput(ctx context.Context, action stepAction) (string, error) {
	el, err := d.page.Context(ctx).Element(inputSelector)
	if err != nil {
		return "", fmt.Errorf("no input field found: %w", err)
	}

	value := action.value
	if value == "" {
		value = defaultInputText
	}

	// Replace any preexisting content.
	_ = el.SelectAllText()
	if err := el.Input(value); err != nil {
		return "", fmt.Errorf("failed to enter text: %w", err)
	}
	return fmt.Sprintf("entered %q into the first input field", value), nil
}

func (d *RodDriver) performWait(ctx context.Context, action stepAction) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(action.wait):
		return "waited " + action.wait.String(), nil
	}
}

func (d *RodDriver) performScroll(ctx context.Context) (string, error) {
	if err := d.page.Context(ctx).Mouse.Scroll(0, scrollDistance, scrollSteps); err != nil {
		return "", fmt.Errorf("failed to scroll: %w", err)
	}
	return "scrolled down the page", nil
}

func (d *RodDriver) performVerify(ctx context.Context, step string) (string, error) {
	page := d.page.Context(ctx)
	if _, err := page.Element("body"); err != nil {
		return "", fmt.Errorf("page has no body to verify: %w", err)
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return fmt.Sprintf("observed page %q for: %s", info.Title, step), nil
}

// textPattern builds a case-insensitive rod text regex for an element hint.
func textPattern(text string) string {
	escaped := strings.ReplaceAll(regexp.QuoteMeta(text), "/", `\/`)
	return "/" + escaped + "/i"
}
