package page

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Anchor-like element names considered link-bearing.
const (
	htmlElementAnchor = "a"
	htmlElementArea   = "area"
)

// Parse reads an HTML document and returns a Document containing its
// link-bearing elements in document order. Relative hrefs are resolved
// against baseURL so every element carries an absolute target.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like traversal
//  3. More maintainable than complex regex patterns
func Parse(r io.Reader, baseURL string) (*Document, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc := New(base.String())
	doc.Append(extractLinks(root, base)...)
	return doc, nil
}

// ParseFragment reads an HTML fragment (as inserted by a mutation) and
// returns its link-bearing elements. Used by FileWatcher and tests to
// build insertion batches without a full document.
func ParseFragment(r io.Reader, baseURL string) ([]*Element, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return extractLinks(root, base), nil
}

// extractLinks walks the parsed tree depth-first and collects anchor
// and area elements with a resolvable http(s) href.
func extractLinks(root *html.Node, base *url.URL) []*Element {
	var links []*Element

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == htmlElementAnchor || n.Data == htmlElementArea) {
			if el := elementFromNode(n, base); el != nil {
				links = append(links, el)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return links
}

// elementFromNode converts an anchor node into an Element, resolving
// the href against the base URL. Returns nil when the node has no href
// or the resolved target is not http(s).
func elementFromNode(n *html.Node, base *url.URL) *Element {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = strings.TrimSpace(attr.Val)
			break
		}
	}
	if href == "" {
		return nil
	}

	target, err := url.Parse(href)
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(target)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}

	el := NewElement(n.Data, resolved.String())
	el.SetText(nodeText(n))
	return el
}

// nodeText collects the concatenated text content of a node's subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
