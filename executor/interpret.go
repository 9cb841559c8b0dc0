package executor

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// maxWaitSeconds caps explicit wait steps so a single step cannot consume
// the whole step timeout.
const maxWaitSeconds = 5

type actionKind int

const (
	actionObserve actionKind = iota
	actionNavigate
	actionClick
	actionInput
	actionWait
	actionScroll
	actionVerify
)

// stepAction is the parsed form of one free-text test step.
type stepAction struct {
	kind   actionKind
	target string
	value  string
	wait   time.Duration
}

// stepVocabulary maps verbs to actions. Earlier entries win when a step
// mentions several verbs.
var stepVocabulary = []struct {
	kind  actionKind
	verbs []string
}{
	{actionNavigate, []string{"navigate", "go to", "open ", "visit"}},
	{actionClick, []string{"click", "press", "tap"}},
	{actionInput, []string{"enter", "type", "fill", "input"}},
	{actionWait, []string{"wait"}},
	{actionScroll, []string{"scroll"}},
	{actionVerify, []string{"verify", "check", "assert", "confirm", "ensure", "observe"}},
}

// fillerWords are dropped when reducing a step to an element hint.
var fillerWords = map[string]bool{
	"the": true, "a": true, "an": true, "on": true, "to": true, "in": true,
	"into": true, "and": true, "then": true, "button": true, "link": true,
	"page": true, "field": true, "form": true, "element": true,
}

var (
	quotedRe = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	numberRe = regexp.MustCompile(`\d+`)
)

// interpretStep maps one free-text step onto a browser action. Matching is
// best-effort: the first vocabulary verb found in the step decides the
// action, and steps with no recognizable verb become observations.
func interpretStep(step string) stepAction {
	lowered := strings.ToLower(step)

	for _, entry := range stepVocabulary {
		for _, verb := range entry.verbs {
			idx := strings.Index(lowered, verb)
			if idx < 0 {
				continue
			}
			remainder := strings.TrimSpace(step[idx+len(verb):])
			return buildAction(entry.kind, step, remainder)
		}
	}
	return stepAction{kind: actionObserve}
}

func buildAction(kind actionKind, step, remainder string) stepAction {
	action := stepAction{kind: kind}
	switch kind {
	case actionNavigate:
		if url := firstURL(step); url != "" {
			action.target = url
		} else {
			action.target = elementHint(remainder)
		}
	case actionClick:
		if quoted := quotedText(step); quoted != "" {
			action.target = quoted
		} else {
			action.target = elementHint(remainder)
		}
	case actionInput:
		action.value = quotedText(step)
	case actionWait:
		action.wait = waitDuration(step)
	}
	return action
}

// firstURL returns the first http(s) URL token in the step, with
// surrounding punctuation trimmed.
func firstURL(step string) string {
	for _, field := range strings.Fields(step) {
		field = strings.TrimLeft(field, `"'(`)
		if strings.HasPrefix(field, "http://") || strings.HasPrefix(field, "https://") {
			return strings.TrimRight(field, `.,;:)"'`)
		}
	}
	return ""
}

// quotedText returns the first single- or double-quoted text in the step.
func quotedText(step string) string {
	m := quotedRe.FindStringSubmatch(step)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// elementHint reduces the text after a verb to the words likely to name the
// target element.
func elementHint(remainder string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, remainder)

	var kept []string
	for _, word := range strings.Fields(cleaned) {
		if fillerWords[strings.ToLower(word)] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// waitDuration reads an explicit wait length in seconds from the step,
// defaulting to one second.
func waitDuration(step string) time.Duration {
	m := numberRe.FindString(step)
	if m == "" {
		return time.Second
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 {
		return time.Second
	}
	if n > maxWaitSeconds {
		n = maxWaitSeconds
	}
	return time.Duration(n) * time.Second
}
