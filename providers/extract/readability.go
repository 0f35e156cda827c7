package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// ReadabilityExtractor keeps only the main article text of the page, dropping
// navigation, footers and other boilerplate.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Extract(body []byte, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = &url.URL{}
	}

	article, err := readability.FromReader(bytes.NewReader(body), base)
	if err != nil {
		return "", fmt.Errorf("failed to extract article: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}
