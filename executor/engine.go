package executor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/testcase"
)

// DefaultLimit caps how many cases one batch executes when the caller does
// not specify a limit.
const DefaultLimit = 10

// viewportSizes are the desktop, tablet and mobile sizes checked on UI
// cases. The first entry is also the default viewport.
var viewportSizes = []struct{ width, height int }{
	{1920, 1080},
	{768, 1024},
	{375, 667},
}

// securityHeaders are the response headers recorded on security cases.
var securityHeaders = []string{
	"X-Content-Type-Options",
	"X-Frame-Options",
	"X-XSS-Protection",
}

// EngineConfig controls per-step bounds for one execution batch.
type EngineConfig struct {
	// StepTimeout bounds each automation action.
	StepTimeout time.Duration
	// PerformanceThreshold is the page load bound that fails performance
	// cases.
	PerformanceThreshold time.Duration
}

// Engine replays test cases serially through one driver. Cases run in input
// order; callers sort by priority before handing the list over.
type Engine struct {
	driver        Driver
	stepTimeout   time.Duration
	perfThreshold time.Duration
	logger        logger.Logger
}

func NewEngine(driver Driver, cfg EngineConfig, log logger.Logger) *Engine {
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 10 * time.Second
	}
	if cfg.PerformanceThreshold <= 0 {
		cfg.PerformanceThreshold = 5 * time.Second
	}
	return &Engine{
		driver:        driver,
		stepTimeout:   cfg.StepTimeout,
		perfThreshold: cfg.PerformanceThreshold,
		logger:        log,
	}
}

// Execute replays the first limit cases against the target application.
// Per-case failures never abort the batch; the returned error is non-nil
// only when the context ends before the batch does, and the results
// produced up to that point are still returned.
func (e *Engine) Execute(ctx context.Context, cases []testcase.TestCase, targetURL string, limit int) (Summary, []Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > len(cases) {
		limit = len(cases)
	}
	batch := cases[:limit]

	start := time.Now()
	results := make([]Result, 0, len(batch))

	for _, tc := range batch {
		if err := ctx.Err(); err != nil {
			return summarize(start, results), results, err
		}

		run := NewCaseRun(tc)
		e.runCase(ctx, run, targetURL)
		result := run.Result()
		results = append(results, result)

		e.logger.Info(ctx, "Test case executed", map[string]interface{}{
			"name":     result.TestName,
			"category": string(result.Category),
			"status":   string(result.Status),
			"duration": result.DurationSeconds,
		})
	}

	summary := summarize(start, results)
	e.logger.Info(ctx, "Execution batch complete", map[string]interface{}{
		"total":    summary.Total,
		"passed":   summary.Passed,
		"failed":   summary.Failed,
		"duration": summary.DurationSeconds,
	})
	return summary, results, nil
}

func summarize(start time.Time, results []Result) Summary {
	passed := 0
	for _, r := range results {
		if r.Status == CaseStatusPassed {
			passed++
		}
	}
	return Summary{
		Total:           len(results),
		Passed:          passed,
		Failed:          len(results) - passed,
		DurationSeconds: time.Since(start).Seconds(),
		CompletedAt:     time.Now().UTC(),
	}
}

// runCase drives one case through its state machine. The page is reset
// before the case so a crashed predecessor cannot corrupt it, and the first
// failing step is terminal for the case.
func (e *Engine) runCase(ctx context.Context, run *CaseRun, targetURL string) {
	if err := run.Start(); err != nil {
		e.logger.Error(ctx, "Test case could not start", map[string]interface{}{
			"name":  run.Case.Name,
			"error": err.Error(),
		})
		return
	}

	var observations []string
	fail := func(cause error) {
		if err := run.Fail(strings.Join(observations, "; "), cause); err != nil {
			e.logger.Error(ctx, "Test case could not be failed", map[string]interface{}{
				"name":  run.Case.Name,
				"error": err.Error(),
			})
		}
	}

	if err := e.step(ctx, e.driver.Reset); err != nil {
		fail(fmt.Errorf("failed to reset browser state: %w", err))
		return
	}

	navStart := time.Now()
	if err := e.driver.Navigate(ctx, targetURL); err != nil {
		fail(fmt.Errorf("failed to open %s: %w", targetURL, err))
		return
	}
	loadTime := time.Since(navStart)
	observations = append(observations, fmt.Sprintf("opened %s in %.2fs", targetURL, loadTime.Seconds()))

	if run.Case.Category == testcase.CategoryPerformance && loadTime > e.perfThreshold {
		fail(fmt.Errorf("page load took %.2fs, threshold is %.1fs", loadTime.Seconds(), e.perfThreshold.Seconds()))
		return
	}

	for i, stepText := range run.Case.Steps {
		stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
		observation, err := e.driver.Perform(stepCtx, stepText)
		cancel()
		if err != nil {
			fail(fmt.Errorf("step %d (%s): %w", i+1, stepText, err))
			return
		}
		observations = append(observations, observation)
	}

	switch run.Case.Category {
	case testcase.CategoryUI:
		note, err := e.checkViewports(ctx)
		if err != nil {
			fail(err)
			return
		}
		observations = append(observations, note)
	case testcase.CategorySecurity:
		note, err := e.checkSecurityHeaders(ctx, targetURL)
		if err != nil {
			fail(err)
			return
		}
		observations = append(observations, note)
	}

	// Completion is the pass criterion; the expected result is advisory.
	observations = append(observations, "expected: "+run.Case.ExpectedResult)
	if err := run.Pass(strings.Join(observations, "; ")); err != nil {
		e.logger.Error(ctx, "Test case could not be passed", map[string]interface{}{
			"name":  run.Case.Name,
			"error": err.Error(),
		})
	}
}

// step bounds one automation action with the step timeout.
func (e *Engine) step(ctx context.Context, fn func(context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()
	return fn(stepCtx)
}

// checkViewports resizes through the desktop, tablet and mobile sizes and
// restores the default.
func (e *Engine) checkViewports(ctx context.Context) (string, error) {
	sizes := make([]string, 0, len(viewportSizes))
	for _, size := range viewportSizes {
		err := e.step(ctx, func(c context.Context) error {
			return e.driver.SetViewport(c, size.width, size.height)
		})
		if err != nil {
			return "", fmt.Errorf("viewport %dx%d failed: %w", size.width, size.height, err)
		}
		sizes = append(sizes, fmt.Sprintf("%dx%d", size.width, size.height))
	}

	err := e.step(ctx, func(c context.Context) error {
		return e.driver.SetViewport(c, viewportSizes[0].width, viewportSizes[0].height)
	})
	if err != nil {
		return "", fmt.Errorf("failed to restore viewport: %w", err)
	}
	return "page renders at " + strings.Join(sizes, ", "), nil
}

// checkSecurityHeaders records which of the common security headers the
// target sets. A target setting none of them fails the case.
func (e *Engine) checkSecurityHeaders(ctx context.Context, targetURL string) (string, error) {
	var headers http.Header
	err := e.step(ctx, func(c context.Context) error {
		var err error
		headers, err = e.driver.ResponseHeaders(c, targetURL)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to read response headers: %w", err)
	}

	var present, missing []string
	for _, name := range securityHeaders {
		if headers.Get(name) != "" {
			present = append(present, name)
		} else {
			missing = append(missing, name)
		}
	}

	if len(present) == 0 {
		return "", fmt.Errorf("no security headers set, missing %s", strings.Join(missing, ", "))
	}
	if len(missing) == 0 {
		return "all security headers present: " + strings.Join(present, ", "), nil
	}
	return fmt.Sprintf("security headers present: %s; missing: %s",
		strings.Join(present, ", "), strings.Join(missing, ", ")), nil
}
