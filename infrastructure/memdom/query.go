package memdom

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"ui_automation/domain/entities"
)

// queryNodes finds the element descendants of root matching sel, in document
// order. XPath expressions starting with // search the whole document, as
// they do in a browser.
func queryNodes(root *html.Node, sel entities.Selector) ([]*html.Node, error) {
	switch sel.By {
	case entities.ByXPath:
		nodes, err := htmlquery.QueryAll(root, sel.Value)
		if err != nil {
			return nil, fmt.Errorf("xpath %q: %v: %w", sel.Value, err, entities.ErrUnsupportedSelector)
		}
		out := nodes[:0]
		for _, n := range nodes {
			if n.Type == html.ElementNode {
				out = append(out, n)
			}
		}
		return out, nil
	case entities.ByLinkText, entities.ByPartialLinkText:
		var out []*html.Node
		goquery.NewDocumentFromNode(root).Find("a").Each(func(_ int, a *goquery.Selection) {
			text := visibleText(a.Nodes[0])
			if (sel.By == entities.ByLinkText && text == strings.TrimSpace(sel.Value)) ||
				(sel.By == entities.ByPartialLinkText && strings.Contains(text, sel.Value)) {
				out = append(out, a.Nodes[0])
			}
		})
		return out, nil
	}

	css, err := cssFor(sel)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root).Find(css).Nodes, nil
}

func cssFor(sel entities.Selector) (string, error) {
	switch sel.By {
	case entities.ByID:
		return `[id="` + cssString(sel.Value) + `"]`, nil
	case entities.ByCSS:
		return sel.Value, nil
	case entities.ByName:
		return `[name="` + cssString(sel.Value) + `"]`, nil
	case entities.ByTagName:
		return sel.Value, nil
	case entities.ByClassName:
		return `[class~="` + cssString(sel.Value) + `"]`, nil
	}
	return "", fmt.Errorf("%q: %w", sel.By, entities.ErrUnsupportedSelector)
}

func cssString(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v)
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func inputType(n *html.Node) string {
	t, _ := attr(n, "type")
	return strings.ToLower(t)
}

// selfHidden reports whether n itself is hidden, ignoring its ancestors.
func selfHidden(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "head", "script", "style", "template", "title":
		return true
	case "input":
		if inputType(n) == "hidden" {
			return true
		}
	}
	if _, ok := attr(n, "hidden"); ok {
		return true
	}
	if style, ok := attr(n, "style"); ok {
		style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}

func displayed(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if selfHidden(p) {
			return false
		}
	}
	return true
}

func obstructed(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if _, ok := attr(p, "data-obstructed"); ok {
			return true
		}
	}
	return false
}

func disabled(n *html.Node) bool {
	_, ok := attr(n, "disabled")
	return ok
}

var blockTags = map[string]bool{
	"div": true, "p": true, "tr": true, "li": true, "ul": true, "table": true,
	"tbody": true, "thead": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"form": true, "nav": true, "section": true, "option": true,
}

// visibleText approximates a browser's rendered text: hidden subtrees are
// skipped, blocks break lines, cells are separated by a space.
func visibleText(n *html.Node) string {
	if !displayed(n) {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if selfHidden(c) {
				return
			}
			if c.Data == "br" {
				b.WriteString("\n")
				return
			}
			sep := ""
			if blockTags[c.Data] {
				sep = "\n"
			} else if c.Data == "td" || c.Data == "th" {
				sep = " "
			}
			b.WriteString(sep)
			for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
				walk(ch)
			}
			b.WriteString(sep)
		}
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		walk(ch)
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func collapsed(n *html.Node) string {
	return strings.Join(strings.Fields(htmlquery.InnerText(n)), " ")
}

func optionNodes(sel *html.Node) []*html.Node {
	return goquery.NewDocumentFromNode(sel).Find("option").Nodes
}

func optionValue(opt *html.Node) string {
	if v, ok := attr(opt, "value"); ok {
		return v
	}
	return collapsed(opt)
}

func fieldValue(n *html.Node) string {
	switch n.Data {
	case "select":
		opts := optionNodes(n)
		for _, o := range opts {
			if _, ok := attr(o, "selected"); ok {
				return optionValue(o)
			}
		}
		return ""
	case "textarea":
		if v, ok := attr(n, "value"); ok {
			return v
		}
		return htmlquery.InnerText(n)
	}
	v, _ := attr(n, "value")
	return v
}

// formValues collects field values keyed by name (or id). A select without a
// selected option submits its first option, as a browser does.
func formValues(doc *html.Node) url.Values {
	values := url.Values{}
	goquery.NewDocumentFromNode(doc).Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		n := s.Nodes[0]
		key, ok := attr(n, "name")
		if !ok {
			key, ok = attr(n, "id")
		}
		if !ok || key == "" || disabled(n) {
			return
		}
		switch n.Data {
		case "input":
			switch inputType(n) {
			case "submit", "button", "reset", "image":
				return
			case "checkbox", "radio":
				if _, checked := attr(n, "checked"); !checked {
					return
				}
			}
		case "select":
			v := fieldValue(n)
			if opts := optionNodes(n); v == "" && len(opts) > 0 {
				if _, ok := attr(opts[0], "selected"); !ok {
					v = optionValue(opts[0])
				}
			}
			values.Set(key, v)
			return
		}
		values.Set(key, fieldValue(n))
	})
	return values
}

// sanitize applies what an input of the given type accepts. Typing into a
// number field drops characters a number cannot contain; assigning a
// non-number clears it.
func sanitize(typ, v string, typed bool) string {
	if typ != "number" {
		return v
	}
	if typed {
		return strings.Map(func(r rune) rune {
			if strings.ContainsRune("0123456789.-+eE", r) {
				return r
			}
			return -1
		}, v)
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
		return ""
	}
	return v
}

func autoPostBack(n *html.Node) bool {
	if _, ok := attr(n, "data-autopostback"); ok {
		return true
	}
	onchange, _ := attr(n, "onchange")
	return strings.Contains(onchange, "__doPostBack")
}
