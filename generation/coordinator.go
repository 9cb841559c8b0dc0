// Package generation turns an analyzed application context into a persisted
// suite of validated test cases.
package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gunitk/testforge/analyzer"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/provider"
	"github.com/gunitk/testforge/storage"
	"github.com/gunitk/testforge/testcase"
)

// Coordinator drives one generation call: prompt per category, provider
// call with fallback, normalization, persistence and artifact write.
type Coordinator struct {
	providers  *provider.Manager
	builder    *Builder
	normalizer *testcase.Normalizer
	store      Store
	artifacts  storage.BlobStorage
	logger     logger.Logger
}

func NewCoordinator(providers *provider.Manager, builder *Builder, store Store, artifacts storage.BlobStorage, log logger.Logger) *Coordinator {
	return &Coordinator{
		providers:  providers,
		builder:    builder,
		normalizer: testcase.NewNormalizer(log),
		store:      store,
		artifacts:  artifacts,
		logger:     log,
	}
}

// Request carries one generation call.
type Request struct {
	SessionID  string
	TargetURL  string
	Context    *analyzer.Context
	Categories []testcase.Category
	Provider   string
}

// Result is the outcome of one generation call. Failures maps each category
// that produced no cases to the reason; partial failures never abort the
// call.
type Result struct {
	Suite        *Suite
	Cases        []testcase.TestCase
	ProviderUsed string
	ArtifactPath string
	Failures     map[testcase.Category]string
}

// GenerateAll produces test cases for every requested category, in request
// order (all seven categories when none are requested). The returned list is
// never empty: when no provider produces usable output the fixed fallback
// set is served with provenance "fallback".
func (c *Coordinator) GenerateAll(ctx context.Context, req Request) (*Result, error) {
	categories := dedupeCategories(req.Categories)
	if len(categories) == 0 {
		categories = testcase.AllCategories()
	}

	report := ""
	if req.Context != nil {
		report = req.Context.Report()
	}

	// The prompt is rendered for the family of the provider that will be
	// tried first; manager fallback reuses the same prompt.
	family := provider.Family("")
	if primary, err := c.providers.Select(ctx, req.Provider); err == nil {
		family = primary.Describe().Family
	}

	var cases []testcase.TestCase
	failures := map[testcase.Category]string{}
	providerUsed := ""

	for _, category := range categories {
		prompt := c.builder.Build(report, category, family)

		raw, used, err := c.providers.Generate(ctx, prompt, req.Provider)
		if err != nil {
			failures[category] = err.Error()
			c.logger.Warn(ctx, "Test generation failed for category", map[string]interface{}{
				"category": string(category),
				"error":    err.Error(),
			})
			continue
		}

		normalized := c.normalizer.Normalize(ctx, raw, category)
		if len(normalized) == 0 {
			failures[category] = "provider output contained no valid test cases"
			c.logger.Warn(ctx, "Provider output contained no valid test cases", map[string]interface{}{
				"category": string(category),
				"provider": used,
			})
			continue
		}

		if providerUsed == "" {
			providerUsed = used
		}
		cases = append(cases, normalized...)
	}

	if len(cases) == 0 {
		cases = testcase.FallbackSet(categories)
		providerUsed = testcase.FallbackProvider
		c.logger.Warn(ctx, "No provider produced test cases, serving fallback set", map[string]interface{}{
			"session_id": req.SessionID,
			"categories": len(categories),
		})
	}

	suite := &Suite{
		SessionID:    req.SessionID,
		TargetURL:    req.TargetURL,
		ProviderUsed: providerUsed,
		Categories:   joinCategories(categories),
		CaseCount:    len(cases),
		Cases:        testcase.JSONCases(cases),
	}
	if err := c.store.Create(ctx, suite); err != nil {
		return nil, fmt.Errorf("failed to persist test suite: %w", err)
	}

	artifactPath := c.writeArtifact(ctx, suite, cases)

	c.logger.Info(ctx, "Test generation complete", map[string]interface{}{
		"session_id": req.SessionID,
		"provider":   providerUsed,
		"cases":      len(cases),
		"failed":     len(failures),
	})

	return &Result{
		Suite:        suite,
		Cases:        cases,
		ProviderUsed: providerUsed,
		ArtifactPath: artifactPath,
		Failures:     failures,
	}, nil
}

// writeArtifact stores the suite's cases as a downloadable JSON document.
// Artifact failures never fail the generation call; the suite record is the
// source of truth.
func (c *Coordinator) writeArtifact(ctx context.Context, suite *Suite, cases []testcase.TestCase) string {
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		c.logger.Warn(ctx, "Failed to encode test case artifact", map[string]interface{}{
			"session_id": suite.SessionID,
			"error":      err.Error(),
		})
		return ""
	}

	key := storage.TestCasesKey(suite.SessionID)
	if err := c.artifacts.Save(ctx, key, data); err != nil {
		c.logger.Warn(ctx, "Failed to write test case artifact", map[string]interface{}{
			"session_id": suite.SessionID,
			"error":      err.Error(),
		})
		return ""
	}

	if err := c.store.Update(ctx, suite.ID, SetArtifactPath(key)); err != nil {
		c.logger.Warn(ctx, "Failed to record artifact path", map[string]interface{}{
			"suite_id": suite.ID.String(),
			"error":    err.Error(),
		})
		return key
	}
	suite.ArtifactPath = key

	return key
}

func dedupeCategories(categories []testcase.Category) []testcase.Category {
	seen := make(map[testcase.Category]bool, len(categories))
	var out []testcase.Category
	for _, category := range categories {
		if !category.IsValid() || seen[category] {
			continue
		}
		seen[category] = true
		out = append(out, category)
	}
	return out
}
