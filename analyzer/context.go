package analyzer

import (
	"fmt"
	"strings"
	"time"
)

// Context is the structured description of a target application's UI
// surface. It is produced once per analysis and consumed read-only by the
// generation pipeline.
type Context struct {
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Forms        []Form    `json:"forms"`
	Buttons      []Button  `json:"buttons"`
	Links        []Link    `json:"links"`
	Technologies []string  `json:"technologies"`
	Structure    string    `json:"structure"`
	Source       string    `json:"source"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

// Form is one discovered form and its inputs.
type Form struct {
	Action string      `json:"action"`
	Method string      `json:"method"`
	Inputs []FormInput `json:"inputs"`
}

type FormInput struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
}

type Button struct {
	Text string `json:"text"`
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// Link is an internal navigation link (relative href).
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

const reportLinkLimit = 10

// Report renders the analysis as the deterministic text block consumed by
// the prompt templates.
func (c *Context) Report() string {
	var b strings.Builder

	b.WriteString("Web Application Analysis Report:\n\n")
	fmt.Fprintf(&b, "URL: %s\n", c.URL)
	fmt.Fprintf(&b, "Title: %s\n", c.Title)
	fmt.Fprintf(&b, "Description: %s\n\n", c.Description)
	fmt.Fprintf(&b, "Structure: %s\n\n", c.Structure)

	if len(c.Technologies) > 0 {
		fmt.Fprintf(&b, "Technologies Detected: %s\n", strings.Join(c.Technologies, ", "))
	} else {
		b.WriteString("Technologies Detected: None detected\n")
	}

	fmt.Fprintf(&b, "\nForms Found (%d):", len(c.Forms))
	for i, form := range c.Forms {
		action := form.Action
		if action == "" {
			action = "same page"
		}
		fmt.Fprintf(&b, "\n  Form %d: %s to %s", i+1, form.Method, action)
		for _, input := range form.Inputs {
			required := ""
			if input.Required {
				required = " (required)"
			}
			fmt.Fprintf(&b, "\n    - %s field: %s%s", input.Type, input.Name, required)
		}
	}

	fmt.Fprintf(&b, "\n\nButtons Found (%d):", len(c.Buttons))
	for _, btn := range c.Buttons {
		fmt.Fprintf(&b, "\n  - %s (%s)", btn.Text, btn.Type)
	}

	fmt.Fprintf(&b, "\n\nNavigation Links (%d):", len(c.Links))
	for i, link := range c.Links {
		if i == reportLinkLimit {
			fmt.Fprintf(&b, "\n  ... and %d more links", len(c.Links)-reportLinkLimit)
			break
		}
		fmt.Fprintf(&b, "\n  - %s -> %s", link.Text, link.Href)
	}

	return strings.TrimSpace(b.String())
}
