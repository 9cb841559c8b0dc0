package generation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/provider"
	"github.com/gunitk/testforge/testcase"
)

// Placeholders substituted when a template is rendered. {label} and {focus}
// are resolved once at template construction; {context} and {category} are
// resolved per Build call.
const (
	placeholderContext  = "{context}"
	placeholderCategory = "{category}"
	placeholderLabel    = "{label}"
	placeholderFocus    = "{focus}"
)

// templateKey addresses one template. Zero-value fields widen the match:
// an empty Family is family-agnostic, an empty Category is the generic
// fallback.
type templateKey struct {
	Category testcase.Category
	Family   provider.Family
}

// categoryProfile carries the human label and focus line baked into the
// built-in templates for one category.
type categoryProfile struct {
	label string
	focus string
}

var categoryProfiles = map[testcase.Category]categoryProfile{
	testcase.CategoryFunctional:    {"Functional", "forms, buttons, navigation, core features"},
	testcase.CategoryUI:            {"UI/UX", "layout, responsiveness, visual elements"},
	testcase.CategoryValidation:    {"Data Validation", "input validation, form validation, data integrity"},
	testcase.CategoryErrorHandling: {"Error Handling", "invalid inputs, edge cases, error messages"},
	testcase.CategorySecurity:      {"Security", "basic security checks, XSS prevention, authentication"},
	testcase.CategoryPerformance:   {"Performance", "page load times, response times"},
	testcase.CategoryAccessibility: {"Accessibility", "screen readers, keyboard navigation"},
}

const anthropicFrame = `Based on the following web application analysis, generate comprehensive {label} test cases for testing this application.

Application Context:
{context}

Focus this batch on {label} testing: {focus}.

For each test case, provide:
- name: A clear, descriptive name
- description: What the test case validates
- priority: High/Medium/Low
- category: {label}
- steps: Detailed step-by-step instructions
- expected_result: What should happen when the test passes
- test_data: Any specific data needed for the test (if applicable)

Please format your response as a valid JSON array of test case objects. Ensure the JSON is properly formatted and parseable.

Example format:
[
  {
    "name": "Login Form Validation",
    "description": "Verify that login form validates required fields",
    "priority": "High",
    "category": "{label}",
    "steps": [
      "Navigate to login page",
      "Leave username field empty",
      "Click submit button"
    ],
    "expected_result": "Form should display validation errors",
    "test_data": {
      "username": ""
    }
  }
]

Generate 15-20 comprehensive test cases for this category.`

const googleFrame = `You are a QA expert tasked with creating comprehensive test cases for a web application.

Application Analysis:
{context}

Generate {label} test cases covering: {focus}.

For each test case, provide these fields:
- name: Clear, descriptive test name
- description: What the test validates
- priority: "High", "Medium", or "Low"
- category: {label}
- steps: Array of detailed step-by-step instructions
- expected_result: Expected outcome when test passes
- test_data: Object with any test data needed (can be empty {})

IMPORTANT: Respond with ONLY a valid JSON array. No additional text, explanations, or markdown formatting.

Generate 15-20 test cases as a JSON array:`

const neutralFrame = `Generate comprehensive {label} test cases for the following web application.

Application Context:
{context}

Focus on {focus}.

For each test case, provide: name, description, priority (High/Medium/Low), category, steps (ordered list of actions), expected_result, and optional test_data.

Respond with a valid JSON array of test case objects only.

Generate 15-20 test cases.`

const genericTemplate = `Based on the following web application analysis, generate comprehensive test cases for testing this application.

Application Context:
{context}

Generate test cases for the {category} category.

For each test case, provide: name, description, priority (High/Medium/Low), category, steps (ordered list of actions), expected_result, and optional test_data.

Please format your response as a valid JSON array of test case objects. Ensure the JSON is properly formatted and parseable.

Generate 15-20 comprehensive test cases.`

// builtinTemplates maps every (category, family) pair the built-in frames
// cover. Bedrock has no specialized frame and resolves through the
// family-agnostic tier.
var builtinTemplates = buildBuiltinTemplates()

func buildBuiltinTemplates() map[templateKey]string {
	templates := map[templateKey]string{
		{}: genericTemplate,
	}
	for category, profile := range categoryProfiles {
		fill := func(frame string) string {
			frame = strings.ReplaceAll(frame, placeholderLabel, profile.label)
			return strings.ReplaceAll(frame, placeholderFocus, profile.focus)
		}
		templates[templateKey{Category: category, Family: provider.FamilyAnthropic}] = fill(anthropicFrame)
		templates[templateKey{Category: category, Family: provider.FamilyGoogle}] = fill(googleFrame)
		templates[templateKey{Category: category}] = fill(neutralFrame)
	}
	return templates
}

// Builder renders generation prompts. Lookup prefers a template specialized
// for the (category, family) pair, then a family-agnostic template for the
// category, then the generic default; resolution never fails. Operator
// overrides loaded from YAML shadow built-ins tier by tier.
type Builder struct {
	mu        sync.RWMutex
	overrides map[templateKey]string
	logger    logger.Logger
}

func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		overrides: map[templateKey]string{},
		logger:    log,
	}
}

// Build renders the prompt for one category and provider family. Pure with
// respect to its inputs; the only state consulted is the loaded template set.
func (b *Builder) Build(report string, category testcase.Category, family provider.Family) string {
	tmpl := b.lookup(category, family)
	rendered := strings.ReplaceAll(tmpl, placeholderContext, report)
	return strings.ReplaceAll(rendered, placeholderCategory, string(category))
}

func (b *Builder) lookup(category testcase.Category, family provider.Family) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := []templateKey{
		{Category: category, Family: family},
		{Category: category},
		{},
	}
	for _, key := range keys {
		if tmpl, ok := b.overrides[key]; ok {
			return tmpl
		}
		if tmpl, ok := builtinTemplates[key]; ok {
			return tmpl
		}
	}
	return genericTemplate
}

type overrideFile struct {
	Templates []overrideEntry `yaml:"templates"`
}

type overrideEntry struct {
	Category string `yaml:"category"`
	Family   string `yaml:"family"`
	Text     string `yaml:"text"`
}

// LoadOverrides replaces the override set from a YAML file. Entries with an
// unknown category or family are skipped with a warning; a parse failure
// leaves the current set untouched.
func (b *Builder) LoadOverrides(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read prompt overrides: %w", err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse prompt overrides: %w", err)
	}

	overrides := make(map[templateKey]string, len(file.Templates))
	for _, entry := range file.Templates {
		if strings.TrimSpace(entry.Text) == "" {
			continue
		}
		key := templateKey{}
		if entry.Category != "" {
			category, ok := testcase.ParseCategory(entry.Category)
			if !ok {
				b.logger.Warn(ctx, "Skipping prompt override with unknown category", map[string]interface{}{
					"category": entry.Category,
				})
				continue
			}
			key.Category = category
		}
		if entry.Family != "" {
			family, ok := parseFamily(entry.Family)
			if !ok {
				b.logger.Warn(ctx, "Skipping prompt override with unknown family", map[string]interface{}{
					"family": entry.Family,
				})
				continue
			}
			key.Family = family
		}
		overrides[key] = entry.Text
	}

	b.mu.Lock()
	b.overrides = overrides
	b.mu.Unlock()

	b.logger.Info(ctx, "Prompt overrides loaded", map[string]interface{}{
		"path":  path,
		"count": len(overrides),
	})
	return nil
}

func parseFamily(s string) (provider.Family, bool) {
	switch provider.Family(strings.ToLower(strings.TrimSpace(s))) {
	case provider.FamilyAnthropic:
		return provider.FamilyAnthropic, true
	case provider.FamilyGoogle:
		return provider.FamilyGoogle, true
	case provider.FamilyBedrock:
		return provider.FamilyBedrock, true
	default:
		return "", false
	}
}
