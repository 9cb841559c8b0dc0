package analyzer

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// techIndicators maps a framework name to the page-source markers that give
// it away. Order is fixed so extraction is deterministic.
var techIndicators = []struct {
	name    string
	markers []string
}{
	{"React", []string{"react", "jsx", "react-dom"}},
	{"Angular", []string{"angular", "ng-app", "ng-controller"}},
	{"Vue.js", []string{"vue", "v-if", "v-for"}},
	{"Bootstrap", []string{"bootstrap", "btn-primary", "container-fluid"}},
	{"jQuery", []string{"jquery", "$(", "jquery.min.js"}},
	{"Express.js", []string{"express"}},
	{"Flask", []string{"flask"}},
	{"Django", []string{"django", "csrfmiddlewaretoken"}},
}

// skippedHrefPrefixes excludes external and non-navigational links so the
// link list only carries in-app navigation.
var skippedHrefPrefixes = []string{"http", "mailto:", "tel:", "javascript:"}

// Extract parses rendered page HTML into a Context. The same extractor
// serves both the browser and static fetch paths, so the only difference
// between them is the HTML they hand in.
func Extract(pageURL, pageHTML string) (*Context, error) {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	w := &walker{}
	w.visit(doc)

	return &Context{
		URL:          pageURL,
		Title:        strings.TrimSpace(w.title),
		Description:  strings.TrimSpace(w.description),
		Forms:        w.forms,
		Buttons:      w.buttons,
		Links:        w.links,
		Technologies: detectTechnologies(pageHTML),
		Structure:    w.structure(),
	}, nil
}

func detectTechnologies(pageHTML string) []string {
	source := strings.ToLower(pageHTML)
	var detected []string
	for _, tech := range techIndicators {
		for _, marker := range tech.markers {
			if strings.Contains(source, marker) {
				detected = append(detected, tech.name)
				break
			}
		}
	}
	return detected
}

// walker accumulates page features over a single DOM traversal.
type walker struct {
	title       string
	description string
	forms       []Form
	buttons     []Button
	links       []Link

	hasHeader  bool
	hasMain    bool
	hasSidebar bool
	hasFooter  bool
}

func (w *walker) visit(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if w.title == "" {
				w.title = textContent(n)
			}
		case "meta":
			if strings.EqualFold(attr(n, "name"), "description") {
				w.description = attr(n, "content")
			}
		case "form":
			w.forms = append(w.forms, parseForm(n))
		case "button":
			w.buttons = append(w.buttons, Button{
				Text: strings.TrimSpace(textContent(n)),
				Type: attrDefault(n, "type", "button"),
				ID:   attr(n, "id"),
			})
		case "input":
			if t := attr(n, "type"); t == "submit" || t == "button" {
				w.buttons = append(w.buttons, Button{
					Text: attr(n, "value"),
					Type: t,
					ID:   attr(n, "id"),
				})
			}
		case "a":
			if href := attr(n, "href"); navigational(href) {
				w.links = append(w.links, Link{
					Text: strings.TrimSpace(textContent(n)),
					Href: href,
				})
			}
		case "header", "nav":
			w.hasHeader = true
		case "main":
			w.hasMain = true
		case "aside":
			w.hasSidebar = true
		case "footer":
			w.hasFooter = true
		case "div":
			class := strings.ToLower(attr(n, "class"))
			if strings.Contains(class, "main") {
				w.hasMain = true
			}
			if strings.Contains(class, "sidebar") {
				w.hasSidebar = true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c)
	}
}

func (w *walker) structure() string {
	var parts []string
	if w.hasHeader {
		parts = append(parts, "Header/Navigation section present")
	}
	if w.hasMain {
		parts = append(parts, "Main content area identified")
	}
	if w.hasSidebar {
		parts = append(parts, "Sidebar present")
	}
	if w.hasFooter {
		parts = append(parts, "Footer section present")
	}
	if len(parts) == 0 {
		return "Basic HTML structure"
	}
	return strings.Join(parts, "; ")
}

func parseForm(n *html.Node) Form {
	form := Form{
		Action: attr(n, "action"),
		Method: strings.ToUpper(attrDefault(n, "method", "get")),
	}
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "input":
				t := attrDefault(c, "type", "text")
				if t != "submit" && t != "button" && t != "hidden" {
					form.Inputs = append(form.Inputs, FormInput{
						Type:        t,
						Name:        attr(c, "name"),
						Placeholder: attr(c, "placeholder"),
						Required:    hasAttr(c, "required"),
					})
				}
			case "textarea":
				form.Inputs = append(form.Inputs, FormInput{
					Type:        "textarea",
					Name:        attr(c, "name"),
					Placeholder: attr(c, "placeholder"),
					Required:    hasAttr(c, "required"),
				})
			case "select":
				form.Inputs = append(form.Inputs, FormInput{
					Type:     "select",
					Name:     attr(c, "name"),
					Required: hasAttr(c, "required"),
				})
			}
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			collect(gc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}
	return form
}

func navigational(href string) bool {
	if href == "" || href == "#" {
		return false
	}
	for _, prefix := range skippedHrefPrefixes {
		if strings.HasPrefix(href, prefix) {
			return false
		}
	}
	return true
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func attrDefault(n *html.Node, key, def string) string {
	if v := attr(n, key); v != "" {
		return v
	}
	return def
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
