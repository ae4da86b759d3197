package wikipedia

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// parseOptions extracts candidate article titles from disambiguation page
// HTML: the first internal article link of every list item, in page order.
func parseOptions(htmlContent, self string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	var options []string
	seen := map[string]struct{}{strings.ToLower(self): {}}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "table", "style", "script", "math":
				return // navboxes and boilerplate
			case "li":
				if title, ok := firstArticleLink(n); ok {
					key := strings.ToLower(title)
					if _, dup := seen[key]; !dup {
						seen[key] = struct{}{}
						options = append(options, title)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return options, nil
}

func firstArticleLink(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.Data == "a" {
		if title, ok := articleTitle(n); ok {
			return title, true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			continue // nested lists have their own items
		}
		if title, ok := firstArticleLink(c); ok {
			return title, true
		}
	}
	return "", false
}

func articleTitle(a *html.Node) (string, bool) {
	var href, title string
	for _, attr := range a.Attr {
		switch attr.Key {
		case "href":
			href = attr.Val
		case "title":
			title = attr.Val
		case "class":
			for _, cls := range strings.Fields(attr.Val) {
				if cls == "new" || cls == "external" {
					return "", false // red links and off-wiki links
				}
			}
		}
	}
	if !strings.HasPrefix(href, "/wiki/") {
		return "", false
	}
	if title == "" {
		path := strings.TrimPrefix(href, "/wiki/")
		if i := strings.IndexByte(path, '#'); i >= 0 {
			path = path[:i]
		}
		decoded, err := url.PathUnescape(path)
		if err != nil {
			return "", false
		}
		title = strings.ReplaceAll(decoded, "_", " ")
	}
	if title == "" || strings.Contains(title, ":") || strings.HasSuffix(title, "(disambiguation)") {
		return "", false
	}
	return title, true
}
