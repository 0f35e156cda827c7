package extract

import (
	"fmt"
	"strings"
)

// Mode selects how page text is extracted.
type Mode string

const (
	// ModeTags collects the visible text of paragraph, heading, div and span
	// elements in document order. It is the default.
	ModeTags Mode = "tags"
	// ModeMarkdown converts the whole page to Markdown.
	ModeMarkdown Mode = "markdown"
	// ModeReadability keeps only the main article text.
	ModeReadability Mode = "readability"
)

// Modes lists the supported modes.
var Modes = []Mode{ModeTags, ModeMarkdown, ModeReadability}

// ParseMode resolves a mode name. The empty string selects [ModeTags].
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTags:
		return ModeTags, nil
	case ModeMarkdown:
		return ModeMarkdown, nil
	case ModeReadability:
		return ModeReadability, nil
	default:
		return "", fmt.Errorf("unknown extract mode %q (valid: tags, markdown, readability)", s)
	}
}

// Extractor turns a fetched HTML body into plain text for the prompt.
//
// An empty result with a nil error means the page had no extractable text.
// Implementations are stateless and safe for concurrent use.
type Extractor interface {
	Extract(body []byte, pageURL string) (string, error)
}

// New returns the extractor for mode.
func New(mode Mode) (Extractor, error) {
	switch mode {
	case "", ModeTags:
		return TagExtractor{}, nil
	case ModeMarkdown:
		return MarkdownExtractor{}, nil
	case ModeReadability:
		return ReadabilityExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown extract mode %q", mode)
	}
}
