package executor

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/testcase"
)

const testTarget = "http://localhost:3000"

func makeCase(name string, category testcase.Category, priority testcase.Priority, steps ...string) testcase.TestCase {
	return testcase.TestCase{
		Name:           name,
		Description:    "exercise " + name,
		Category:       category,
		Priority:       priority,
		Steps:          steps,
		ExpectedResult: "the application responds as described",
	}
}

func newTestEngine(driver Driver) *Engine {
	return NewEngine(driver, EngineConfig{PerformanceThreshold: time.Minute}, logger.NewTestLogger())
}

func TestExecute_AllCasesPass(t *testing.T) {
	driver := newFakeDriver()
	engine := newTestEngine(driver)

	cases := []testcase.TestCase{
		makeCase("Home page loads", testcase.CategoryFunctional, testcase.PriorityHigh, "Verify the home page is displayed"),
		makeCase("Task creation", testcase.CategoryFunctional, testcase.PriorityMedium, "Enter a task name", "Click the create button"),
	}

	summary, results, err := engine.Execute(context.Background(), cases, testTarget, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 0, summary.Failed)
	assert.False(t, summary.CompletedAt.IsZero())
	assert.GreaterOrEqual(t, summary.DurationSeconds, 0.0)

	require.Len(t, results, 2)
	for _, result := range results {
		assert.Equal(t, CaseStatusPassed, result.Status)
		assert.Contains(t, result.Details, "opened "+testTarget)
		assert.Contains(t, result.Details, "expected: the application responds as described")
	}
	assert.Contains(t, results[1].Details, "did: Enter a task name")

	// One reset and one navigation per case.
	assert.Equal(t, 2, driver.resets)
	assert.Equal(t, []string{testTarget, testTarget}, driver.navigations)
}

func TestExecute_FailingStepIsTerminalForCaseOnly(t *testing.T) {
	driver := newFakeDriver()
	driver.performErr = map[string]error{"Click the missing button": errTest}
	engine := newTestEngine(driver)

	cases := []testcase.TestCase{
		makeCase("Broken case", testcase.CategoryFunctional, testcase.PriorityHigh,
			"Click the missing button", "Verify the dashboard"),
		makeCase("Healthy case", testcase.CategoryFunctional, testcase.PriorityMedium,
			"Verify the home page"),
	}

	summary, results, err := engine.Execute(context.Background(), cases, testTarget, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, CaseStatusFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "step 1 (Click the missing button)")
	assert.Contains(t, results[0].Error, "scripted failure")

	// The failing step is terminal for its case.
	assert.NotContains(t, driver.performed, "Verify the dashboard")

	// The next case in the batch still executes to completion.
	assert.Equal(t, CaseStatusPassed, results[1].Status)
	assert.Contains(t, driver.performed, "Verify the home page")
	assert.Equal(t, 2, driver.resets)

	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
}

func TestExecute_LimitSelectsFirstCases(t *testing.T) {
	cases := []testcase.TestCase{
		makeCase("first", testcase.CategoryFunctional, testcase.PriorityHigh, "Verify the page"),
		makeCase("second", testcase.CategoryFunctional, testcase.PriorityHigh, "Verify the page"),
		makeCase("third", testcase.CategoryFunctional, testcase.PriorityLow, "Verify the page"),
		makeCase("fourth", testcase.CategoryFunctional, testcase.PriorityLow, "Verify the page"),
	}

	t.Run("caps the batch", func(t *testing.T) {
		driver := newFakeDriver()
		_, results, err := newTestEngine(driver).Execute(context.Background(), cases, testTarget, 2)
		require.NoError(t, err)

		require.Len(t, results, 2)
		assert.Equal(t, "first", results[0].TestName)
		assert.Equal(t, "second", results[1].TestName)
		assert.Len(t, driver.navigations, 2)
	})

	t.Run("zero limit uses the default", func(t *testing.T) {
		driver := newFakeDriver()
		summary, results, err := newTestEngine(driver).Execute(context.Background(), cases, testTarget, 0)
		require.NoError(t, err)

		assert.Len(t, results, 4)
		assert.Equal(t, 4, summary.Total)
	})

	t.Run("limit beyond the list runs everything", func(t *testing.T) {
		driver := newFakeDriver()
		_, results, err := newTestEngine(driver).Execute(context.Background(), cases, testTarget, 50)
		require.NoError(t, err)

		assert.Len(t, results, 4)
	})
}

func TestExecute_ResetFailureFailsOnlyThatCase(t *testing.T) {
	driver := newFakeDriver()
	driver.failResets = 1
	engine := newTestEngine(driver)

	cases := []testcase.TestCase{
		makeCase("first", testcase.CategoryFunctional, testcase.PriorityHigh, "Verify the page"),
		makeCase("second", testcase.CategoryFunctional, testcase.PriorityHigh, "Verify the page"),
	}

	_, results, err := engine.Execute(context.Background(), cases, testTarget, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, CaseStatusFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "failed to reset browser state")
	assert.Equal(t, CaseStatusPassed, results[1].Status)
}

func TestExecute_NavigateFailureFailsCase(t *testing.T) {
	driver := newFakeDriver()
	driver.navigateErr = errTest
	engine := newTestEngine(driver)

	cases := []testcase.TestCase{
		makeCase("unreachable", testcase.CategoryFunctional, testcase.PriorityHigh, "Verify the page"),
	}

	summary, results, err := engine.Execute(context.Background(), cases, testTarget, 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, CaseStatusFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "failed to open "+testTarget)
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, driver.performed)
}

func TestExecute_PerformanceThreshold(t *testing.T) {
	t.Run("slow load fails performance cases", func(t *testing.T) {
		driver := newFakeDriver()
		engine := NewEngine(driver, EngineConfig{PerformanceThreshold: time.Nanosecond}, logger.NewTestLogger())

		cases := []testcase.TestCase{
			makeCase("Page load time", testcase.CategoryPerformance, testcase.PriorityHigh, "Verify the page loads"),
		}

		_, results, err := engine.Execute(context.Background(), cases, testTarget, 10)
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.Equal(t, CaseStatusFailed, results[0].Status)
		assert.Contains(t, results[0].Error, "page load took")
		assert.Empty(t, driver.performed)
	})

	t.Run("threshold only applies to performance cases", func(t *testing.T) {
		driver := newFakeDriver()
		engine := NewEngine(driver, EngineConfig{PerformanceThreshold: time.Nanosecond}, logger.NewTestLogger())

		cases := []testcase.TestCase{
			makeCase("Home page loads", testcase.CategoryFunctional, testcase.PriorityHigh, "Verify the page"),
		}

		_, results, err := engine.Execute(context.Background(), cases, testTarget, 10)
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.Equal(t, CaseStatusPassed, results[0].Status)
	})
}

func TestExecute_UIViewportCheck(t *testing.T) {
	t.Run("resizes through all sizes and restores the default", func(t *testing.T) {
		driver := newFakeDriver()
		engine := newTestEngine(driver)

		cases := []testcase.TestCase{
			makeCase("Responsive layout", testcase.CategoryUI, testcase.PriorityMedium, "Verify the layout"),
		}

		_, results, err := engine.Execute(context.Background(), cases, testTarget, 10)
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.Equal(t, CaseStatusPassed, results[0].Status)
		assert.Contains(t, results[0].Details, "page renders at 1920x1080, 768x1024, 375x667")
		assert.Equal(t, [][2]int{{1920, 1080}, {768, 1024}, {375, 667}, {1920, 1080}}, driver.viewports)
	})

	t.Run("viewport failure fails the case", func(t *testing.T) {
		driver := newFakeDriver()
		driver.viewportErr = errTest
		engine := newTestEngine(driver)

		cases := []testcase.TestCase{
			makeCase("Responsive layout", testcase.CategoryUI, testcase.PriorityMedium, "Verify the layout"),
		}

		_, results, err := engine.Execute(context.Background(), cases, testTarget, 10)
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.Equal(t, CaseStatusFailed, results[0].Status)
		assert.Contains(t, results[0].Error, "viewport 1920x1080 failed")
	})
}

func TestExecute_SecurityHeaderCheck(t *testing.T) {
	securityCase := makeCase("Security headers", testcase.CategorySecurity, testcase.PriorityHigh, "Check the response headers")

	t.Run("partial headers pass with the gaps recorded", func(t *testing.T) {
		driver := newFakeDriver()
		driver.headers = http.Header{"X-Frame-Options": []string{"DENY"}}
		engine := newTestEngine(driver)

		_, results, err := engine.Execute(context.Background(), []testcase.TestCase{securityCase}, testTarget, 10)
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.Equal(t, CaseStatusPassed, results[0].Status)
		assert.Contains(t, results[0].Details, "security headers present: X-Frame-Options")
		assert.Contains(t, results[0].Details, "missing: X-Content-Type-Options, X-XSS-Protection")
	})

	t.Run("all headers present", func(t *testing.T) {
		driver := newFakeDriver()
		driver.headers = http.Header{
			"X-Content-Type-Options": []string{"nosniff"},
			"X-Frame-Options":        []string{"DENY"},
			"X-Xss-Protection":       []string{"1; mode=block"},
		}
		engine := newTestEngine(driver)

		_, results, err := engine.Execute(context.Background(), []testcase.TestCase{securityCase}, testTarget, 10)
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.Equal(t, CaseStatusPassed, results[0].Status)
		assert.Contains(t, results[0].Details, "all security headers present")
	})

	t.Run("no headers fails the case", func(t *testing.T) {
		driver := newFakeDriver()
		engine := newTestEngine(driver)

		_, results, err := engine.Execute(context.Background(), []testcase.TestCase{securityCase}, testTarget, 10)
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.Equal(t, CaseStatusFailed, results[0].Status)
		assert.Contains(t, results[0].Error, "no security headers set")
	})

	t.Run("header fetch failure fails the case", func(t *testing.T) {
		driver := newFakeDriver()
		driver.headersErr = errTest
		engine := newTestEngine(driver)

		_, results, err := engine.Execute(context.Background(), []testcase.TestCase{securityCase}, testTarget, 10)
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.Equal(t, CaseStatusFailed, results[0].Status)
		assert.Contains(t, results[0].Error, "failed to read response headers")
	})
}

func TestExecute_ContextCancelled(t *testing.T) {
	driver := newFakeDriver()
	engine := newTestEngine(driver)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []testcase.TestCase{
		makeCase("never runs", testcase.CategoryFunctional, testcase.PriorityHigh, "Verify the page"),
	}

	summary, results, err := engine.Execute(ctx, cases, testTarget, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Equal(t, 0, summary.Total)
}

func TestExecute_EmptyBatch(t *testing.T) {
	driver := newFakeDriver()
	engine := newTestEngine(driver)

	summary, results, err := engine.Execute(context.Background(), nil, testTarget, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, driver.resets)
}
