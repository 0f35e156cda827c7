package extract

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// MarkdownExtractor converts the whole page to Markdown, keeping headings,
// lists and links visible to the model.
type MarkdownExtractor struct{}

func (MarkdownExtractor) Extract(body []byte, _ string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
