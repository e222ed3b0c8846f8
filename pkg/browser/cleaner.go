package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// CleanedHTML is the output of cleanHTML: noise-free markup plus the page
// metadata worth keeping.
type CleanedHTML struct {
	HTML      string
	Title     string
	Truncated bool
}

// cleanHTML parses raw markup and re-emits it without scripts, styles, and
// other noise, preserving semantic structure and the attributes useful for
// selector targeting. Output is capped at maxLength bytes of text.
func cleanHTML(rawHTML string, maxLength int) (*CleanedHTML, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &cleaner{budget: maxLength}
	c.walk(doc)

	return &CleanedHTML{
		HTML:      strings.TrimSpace(c.out.String()),
		Title:     findTitle(doc),
		Truncated: c.truncated,
	}, nil
}

// cleaner accumulates cleaned markup under a byte budget.
type cleaner struct {
	out       strings.Builder
	used      int
	budget    int
	truncated bool
}

func (c *cleaner) walk(n *html.Node) {
	if c.truncated {
		return
	}

	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		c.writeText(n.Data)
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if skippedTags[tag] {
			return
		}
		c.writeElement(n, tag)
		return
	default:
		// Document and doctype nodes: descend only.
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			c.walk(child)
		}
	}
}

func (c *cleaner) writeText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if c.used+len(text) > c.budget {
		remaining := c.budget - c.used
		if remaining > 0 {
			c.out.WriteString(text[:remaining])
			c.out.WriteString("...")
		}
		c.used = c.budget
		c.truncated = true
		return
	}

	c.out.WriteString(text)
	c.used += len(text)
}

func (c *cleaner) writeElement(n *html.Node, tag string) {
	if blockTags[tag] {
		c.out.WriteString("\n")
	}

	c.out.WriteString("<")
	c.out.WriteString(tag)
	for _, attr := range n.Attr {
		if keepAttribute(tag, strings.ToLower(attr.Key)) {
			fmt.Fprintf(&c.out, " %s=%q", attr.Key, attr.Val)
		}
	}
	c.out.WriteString(">")

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child)
		if c.truncated {
			break
		}
	}

	if !voidTags[tag] {
		c.out.WriteString("</")
		c.out.WriteString(tag)
		c.out.WriteString(">")
	}
}

// skippedTags are removed entirely, children included.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"embed":    true,
	"object":   true,
	"svg":      true,
}

// blockTags get a leading newline for readability.
var blockTags = map[string]bool{
	"div": true, "p": true, "section": true, "article": true,
	"header": true, "footer": true, "nav": true, "main": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true,
	"table": true, "tr": true, "td": true, "th": true,
	"form": true, "fieldset": true, "blockquote": true, "pre": true,
}

// voidTags have no closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// keepAttribute reports whether an attribute is worth carrying into the
// cleaned output: identity and accessibility attributes everywhere,
// data-* attributes, and the interaction attributes of specific tags.
func keepAttribute(tag, name string) bool {
	switch name {
	case "id", "class", "role", "aria-label", "aria-describedby":
		return true
	}
	if strings.HasPrefix(name, "data-") {
		return true
	}

	switch tag {
	case "a":
		return name == "href" || name == "target"
	case "img":
		return name == "src" || name == "alt"
	case "input", "textarea", "select":
		return name == "name" || name == "type" || name == "placeholder" || name == "value"
	case "button":
		return name == "type" || name == "name"
	case "form":
		return name == "action" || name == "method"
	}
	return false
}

// findTitle returns the text of the document's title element, if any.
func findTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node) bool
	traverse = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if traverse(c) {
				return true
			}
		}
		return false
	}
	traverse(doc)
	return title
}
