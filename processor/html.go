// Package processor extracts translatable texts from structured content and
// substitutes translations back in.
package processor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/lingocache"
	"golang.org/x/net/html"
)

// HTMLProcessor extracts and applies translations to HTML content. Texts
// are keyed by their trimmed verbatim content, matching the cache's keying,
// so repeated nodes collapse onto one translation.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: lingocache.IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// Extract parses HTML and returns the document plus its distinct
// translatable texts.
func (p *HTMLProcessor) Extract(content string) (interface{}, []string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &lingocache.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var texts []string
	seen := make(map[string]bool)

	p.walkDoc(doc, func(n *html.Node) {
		trimmed := strings.TrimSpace(n.Data)
		if trimmed == "" || seen[trimmed] {
			return
		}
		seen[trimmed] = true
		texts = append(texts, trimmed)
	})

	return doc, texts, nil
}

// Apply substitutes translations into the document's text nodes,
// preserving surrounding whitespace.
func (p *HTMLProcessor) Apply(parsed interface{}, translations map[string]string) (string, error) {
	doc, ok := parsed.(*goquery.Document)
	if !ok {
		return "", &lingocache.ProcessorError{
			Message:     "unexpected parsed form",
			ContentType: "html",
		}
	}

	p.walkDoc(doc, func(n *html.Node) {
		trimmed := strings.TrimSpace(n.Data)
		if trimmed == "" {
			return
		}
		translated, ok := translations[trimmed]
		if !ok {
			return
		}
		idx := strings.Index(n.Data, trimmed)
		n.Data = n.Data[:idx] + translated + n.Data[idx+len(trimmed):]
	})

	result, err := doc.Html()
	if err != nil {
		return "", &lingocache.ProcessorError{
			Message:     "failed to render HTML",
			Cause:       err,
			ContentType: "html",
		}
	}
	return result, nil
}

// ContentType identifies this processor's content kind.
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// walkDoc visits every translatable text node, skipping ignored tags and
// data-no-translate subtrees.
func (p *HTMLProcessor) walkDoc(doc *goquery.Document, visit func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if p.ignoredTags[strings.ToLower(n.Data)] {
				return
			}
			for _, attr := range n.Attr {
				if attr.Key == "data-no-translate" {
					return
				}
			}
		}

		if n.Type == html.TextNode {
			visit(n)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, root := range doc.Nodes {
		walk(root)
	}
}

// Verify HTMLProcessor implements ContentProcessor.
var _ lingocache.ContentProcessor = (*HTMLProcessor)(nil)
