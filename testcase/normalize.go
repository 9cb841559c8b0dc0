package testcase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gunitk/testforge/logger"
)

// Normalizer converts raw provider output into canonical test cases. It is
// the single gate enforcing the TestCase schema: every case it emits passes
// Validate, and malformed candidates are dropped rather than surfaced as
// errors.
type Normalizer struct {
	logger logger.Logger
}

func NewNormalizer(log logger.Logger) *Normalizer {
	return &Normalizer{logger: log}
}

// Normalize parses raw provider output. Structured decode is attempted
// first; when no JSON array can be recovered, candidates are extracted from
// free text. The result is deterministic for identical input.
func (n *Normalizer) Normalize(ctx context.Context, raw string, category Category) []TestCase {
	if !category.IsValid() {
		category = CategoryFunctional
	}

	candidates, ok := decodeJSONCandidates(raw)
	if !ok {
		candidates = extractTextCandidates(raw)
		if len(candidates) > 0 {
			n.logger.Debug(ctx, "recovered test cases from free text", map[string]interface{}{
				"category": category,
				"count":    len(candidates),
			})
		}
	}

	cases := make([]TestCase, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))

	for i, candidate := range candidates {
		tc := repairCandidate(candidate, i+1, category)
		if err := tc.Validate(); err != nil {
			n.logger.Debug(ctx, "dropped malformed test case candidate", map[string]interface{}{
				"position": i + 1,
				"reason":   err.Error(),
			})
			continue
		}

		key := strings.ToLower(tc.Name) + "|" + string(tc.Category)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cases = append(cases, tc)
	}

	return cases
}

// decodeJSONCandidates locates the outermost JSON array in raw and decodes
// it. Markdown code fences around the payload are tolerated.
func decodeJSONCandidates(raw string) ([]map[string]interface{}, bool) {
	cleaned := stripFences(raw)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}

	var candidates []map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &candidates); err != nil {
		return nil, false
	}
	return candidates, true
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if idx := strings.Index(cleaned, "```json"); idx != -1 {
		cleaned = cleaned[idx+len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[3:]
	}
	if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
		cleaned = cleaned[:idx]
	}
	return cleaned
}

var textBlockStart = regexp.MustCompile(`(?m)^\s*(?:#+\s*)?(?:\d+[.)]\s+|[Tt]est\s+[Cc]ase\s*\d*\s*[:.]\s*)`)

// extractTextCandidates recovers candidates from numbered or labeled
// free-text blocks. Unparseable text yields zero candidates.
func extractTextCandidates(raw string) []map[string]interface{} {
	indices := textBlockStart.FindAllStringIndex(raw, -1)
	if len(indices) == 0 {
		return nil
	}

	var candidates []map[string]interface{}
	for i, loc := range indices {
		end := len(raw)
		if i+1 < len(indices) {
			end = indices[i+1][0]
		}
		block := raw[loc[0]:end]
		if candidate := parseTextBlock(block); candidate != nil {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

func parseTextBlock(block string) map[string]interface{} {
	lines := strings.Split(block, "\n")
	if len(lines) == 0 {
		return nil
	}

	candidate := make(map[string]interface{})

	// The heading line doubles as the name when no Name label follows.
	heading := textBlockStart.ReplaceAllString(lines[0], "")
	heading = strings.TrimSpace(strings.Trim(heading, "*#"))
	if heading != "" {
		candidate["name"] = heading
	}

	var steps []string
	inSteps := false
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(strings.TrimLeft(line, " \t-*"))
		if trimmed == "" {
			continue
		}

		label, value, found := strings.Cut(trimmed, ":")
		if found {
			switch strings.ToLower(strings.TrimSpace(label)) {
			case "name", "test name":
				candidate["name"] = strings.TrimSpace(value)
				inSteps = false
				continue
			case "description":
				candidate["description"] = strings.TrimSpace(value)
				inSteps = false
				continue
			case "priority":
				candidate["priority"] = strings.TrimSpace(value)
				inSteps = false
				continue
			case "category":
				candidate["category"] = strings.TrimSpace(value)
				inSteps = false
				continue
			case "expected result", "expected", "expected_result":
				candidate["expected_result"] = strings.TrimSpace(value)
				inSteps = false
				continue
			case "steps", "test steps":
				inSteps = true
				if rest := strings.TrimSpace(value); rest != "" {
					steps = append(steps, rest)
				}
				continue
			}
		}

		if inSteps {
			steps = append(steps, strings.TrimSpace(stripStepNumber(trimmed)))
		}
	}

	if len(steps) > 0 {
		candidate["steps"] = toInterfaceSlice(steps)
	}
	if len(candidate) == 0 {
		return nil
	}
	return candidate
}

var stepNumber = regexp.MustCompile(`^\d+[.)]\s*`)

func stripStepNumber(s string) string {
	return stepNumber.ReplaceAllString(s, "")
}

func toInterfaceSlice(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// repairCandidate fills missing or unrecognized fields with safe defaults.
// position is the 1-based place of the candidate in the source output.
func repairCandidate(candidate map[string]interface{}, position int, requested Category) TestCase {
	tc := TestCase{
		Name:        stringField(candidate, "name"),
		Description: stringField(candidate, "description"),
	}

	if strings.TrimSpace(tc.Name) == "" {
		tc.Name = fmt.Sprintf("Test Case %d", position)
	}
	if strings.TrimSpace(tc.Description) == "" {
		tc.Description = "Generated test case"
	}

	if parsed, ok := ParseCategory(stringField(candidate, "category")); ok {
		tc.Category = parsed
	} else {
		tc.Category = requested
	}

	if parsed, ok := ParsePriority(stringField(candidate, "priority")); ok {
		tc.Priority = parsed
	} else {
		tc.Priority = PriorityMedium
	}

	tc.Steps = stepsField(candidate)
	if len(tc.Steps) == 0 {
		tc.Steps = []string{"Execute: " + tc.Description}
	}

	tc.ExpectedResult = stringField(candidate, "expected_result")
	if strings.TrimSpace(tc.ExpectedResult) == "" {
		tc.ExpectedResult = "Test should pass"
	}

	if data, ok := candidate["test_data"].(map[string]interface{}); ok && len(data) > 0 {
		tc.TestData = data
	}
	tc.EstimatedTime = stringField(candidate, "estimated_time")

	return tc
}

func stringField(candidate map[string]interface{}, key string) string {
	if v, ok := candidate[key].(string); ok {
		return v
	}
	return ""
}

// stepsField accepts steps as a list of strings or a single string.
func stepsField(candidate map[string]interface{}) []string {
	switch v := candidate["steps"].(type) {
	case []interface{}:
		steps := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				steps = append(steps, s)
			}
		}
		return steps
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}
