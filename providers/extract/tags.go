package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TagSelector matches the elements whose text is collected by [TagExtractor].
const TagSelector = "p, h1, h2, h3, h4, h5, h6, div, span"

// invisible elements never contribute text.
var invisible = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
}

// TagExtractor collects, in document order, the text of every element
// matched by [TagSelector] and joins the fragments with single spaces.
//
// Nested matches are collected again: a <div><p>x</p></div> yields "x x".
// Within one element every text node is whitespace-trimmed and the non-empty
// pieces are concatenated without a separator.
type TagExtractor struct{}

func (TagExtractor) Extract(body []byte, _ string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var fragments []string
	doc.Find(TagSelector).Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			if text := visibleText(node); text != "" {
				fragments = append(fragments, text)
			}
		}
	})

	return strings.Join(fragments, " "), nil
}

func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(strings.TrimSpace(n.Data))
			return
		case html.ElementNode:
			if invisible[n.Data] {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
