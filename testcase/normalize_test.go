package testcase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunitk/testforge/logger"
)

func newNormalizer() *Normalizer {
	return NewNormalizer(logger.NewTestLogger())
}

func TestNormalizeWellFormedJSON(t *testing.T) {
	raw := `[
		{
			"name": "Login with valid credentials",
			"description": "Verify login works",
			"priority": "High",
			"category": "Functional",
			"steps": ["enter username", "enter password", "click submit"],
			"expected_result": "user is redirected to dashboard"
		}
	]`

	cases := newNormalizer().Normalize(context.Background(), raw, CategoryFunctional)
	require.Len(t, cases, 1)

	tc := cases[0]
	assert.Equal(t, "Login with valid credentials", tc.Name)
	assert.Equal(t, CategoryFunctional, tc.Category)
	assert.Equal(t, PriorityHigh, tc.Priority)
	assert.Equal(t, []string{"enter username", "enter password", "click submit"}, tc.Steps)
	assert.Equal(t, "user is redirected to dashboard", tc.ExpectedResult)
}

func TestNormalizeFencedJSON(t *testing.T) {
	raw := "Here are the test cases:\n```json\n" +
		`[{"name": "Fenced Case", "description": "d", "steps": ["s"], "expected_result": "r"}]` +
		"\n```\nLet me know if you need more."

	cases := newNormalizer().Normalize(context.Background(), raw, CategoryUI)
	require.Len(t, cases, 1)
	assert.Equal(t, "Fenced Case", cases[0].Name)
	assert.Equal(t, CategoryUI, cases[0].Category)
}

func TestNormalizeProseWrappedJSON(t *testing.T) {
	raw := `Sure! Based on the analysis I generated the following:
[{"name": "Wrapped", "description": "d", "steps": ["s"], "expected_result": "r"}]
These cover the main flows.`

	cases := newNormalizer().Normalize(context.Background(), raw, CategorySecurity)
	require.Len(t, cases, 1)
	assert.Equal(t, "Wrapped", cases[0].Name)
}

func TestNormalizeRepairsMissingFields(t *testing.T) {
	raw := `[{}, {"name": "Named Only"}]`

	cases := newNormalizer().Normalize(context.Background(), raw, CategoryValidation)
	require.Len(t, cases, 2)

	first := cases[0]
	assert.Equal(t, "Test Case 1", first.Name)
	assert.Equal(t, "Generated test case", first.Description)
	assert.Equal(t, CategoryValidation, first.Category)
	assert.Equal(t, PriorityMedium, first.Priority)
	assert.Equal(t, []string{"Execute: Generated test case"}, first.Steps)
	assert.Equal(t, "Test should pass", first.ExpectedResult)

	second := cases[1]
	assert.Equal(t, "Named Only", second.Name)
	assert.NoError(t, second.Validate())
}

func TestNormalizeFieldRepair(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, tc TestCase)
	}{
		{
			name: "string steps become a list",
			raw:  `[{"name": "n", "steps": "single step"}]`,
			check: func(t *testing.T, tc TestCase) {
				assert.Equal(t, []string{"single step"}, tc.Steps)
			},
		},
		{
			name: "unrecognized priority defaults to medium",
			raw:  `[{"name": "n", "priority": "Critical"}]`,
			check: func(t *testing.T, tc TestCase) {
				assert.Equal(t, PriorityMedium, tc.Priority)
			},
		},
		{
			name: "unrecognized category falls back to requested",
			raw:  `[{"name": "n", "category": "smoke"}]`,
			check: func(t *testing.T, tc TestCase) {
				assert.Equal(t, CategoryPerformance, tc.Category)
			},
		},
		{
			name: "provider category alias is honored",
			raw:  `[{"name": "n", "category": "Data Validation"}]`,
			check: func(t *testing.T, tc TestCase) {
				assert.Equal(t, CategoryValidation, tc.Category)
			},
		},
		{
			name: "test data and estimated time carried through",
			raw:  `[{"name": "n", "test_data": {"username": "admin"}, "estimated_time": "5 minutes"}]`,
			check: func(t *testing.T, tc TestCase) {
				assert.Equal(t, "admin", tc.TestData["username"])
				assert.Equal(t, "5 minutes", tc.EstimatedTime)
			},
		},
		{
			name: "non-string step entries dropped",
			raw:  `[{"name": "n", "steps": ["real step", 42, ""]}]`,
			check: func(t *testing.T, tc TestCase) {
				assert.Equal(t, []string{"real step"}, tc.Steps)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cases := newNormalizer().Normalize(context.Background(), tt.raw, CategoryPerformance)
			require.Len(t, cases, 1)
			tt.check(t, cases[0])
		})
	}
}

func TestNormalizeDeduplicates(t *testing.T) {
	raw := `[
		{"name": "Login Test", "description": "first occurrence"},
		{"name": "login test", "description": "duplicate dropped"},
		{"name": "Login Test", "category": "ui", "description": "different category kept"}
	]`

	cases := newNormalizer().Normalize(context.Background(), raw, CategoryFunctional)
	require.Len(t, cases, 2)
	assert.Equal(t, "first occurrence", cases[0].Description)
	assert.Equal(t, CategoryUI, cases[1].Category)
}

func TestNormalizeGarbageInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty string", raw: ""},
		{name: "plain prose", raw: "I could not generate any test cases this time, sorry."},
		{name: "truncated json", raw: `[{"name": "cut off`},
		{name: "array of scalars", raw: `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cases := newNormalizer().Normalize(context.Background(), tt.raw, CategoryFunctional)
			assert.Empty(t, cases)
		})
	}
}

func TestNormalizeFreeTextExtraction(t *testing.T) {
	raw := `Here are my suggested test cases:

1. Login Form Validation
   Description: Check that empty submissions are rejected
   Priority: High
   Category: Validation
   Steps:
   - Navigate to the login page
   - Click submit without entering data
   Expected Result: Validation errors are shown

2. Navigation Links
   Description: Verify header links work
   Steps:
   1) Open the home page
   2) Click each header link
   Expected: Each link loads its page`

	cases := newNormalizer().Normalize(context.Background(), raw, CategoryFunctional)
	require.Len(t, cases, 2)

	first := cases[0]
	assert.Equal(t, "Login Form Validation", first.Name)
	assert.Equal(t, "Check that empty submissions are rejected", first.Description)
	assert.Equal(t, PriorityHigh, first.Priority)
	assert.Equal(t, CategoryValidation, first.Category)
	assert.Equal(t, []string{"Navigate to the login page", "Click submit without entering data"}, first.Steps)
	assert.Equal(t, "Validation errors are shown", first.ExpectedResult)

	second := cases[1]
	assert.Equal(t, "Navigation Links", second.Name)
	assert.Equal(t, CategoryFunctional, second.Category)
	assert.Equal(t, []string{"Open the home page", "Click each header link"}, second.Steps)
	assert.Equal(t, "Each link loads its page", second.ExpectedResult)
}

func TestNormalizeEveryCaseSatisfiesSchema(t *testing.T) {
	inputs := []string{
		`[{"name": "a"}, {"steps": "x"}, {"priority": "weird"}, {"category": 7}]`,
		"1. Something\nSteps:\n- do it",
		"```json\n[{\"name\": \"fenced\"}]\n```",
	}

	n := newNormalizer()
	for _, raw := range inputs {
		for _, tc := range n.Normalize(context.Background(), raw, CategoryErrorHandling) {
			assert.NoError(t, tc.Validate(), "case %q must satisfy the schema", tc.Name)
		}
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	raw := `[
		{"name": "B", "description": "b"},
		{"name": "A", "description": "a"},
		{"name": "B", "description": "dup"}
	]`

	n := newNormalizer()
	first := n.Normalize(context.Background(), raw, CategoryFunctional)
	second := n.Normalize(context.Background(), raw, CategoryFunctional)
	assert.Equal(t, first, second)
}
