package extract

import (
	"strings"
	"testing"
)

func TestTagExtractor_Extract(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "paragraphs and headings in document order",
			html:     "<html><body><h1>Title</h1><p>First.</p><h6>Small</h6><p>Second.</p></body></html>",
			expected: "Title First. Small Second.",
		},
		{
			name:     "nested matches are collected again",
			html:     "<div><p>Hello</p><span>World</span></div>",
			expected: "HelloWorld Hello World",
		},
		{
			name:     "text nodes are stripped and concatenated",
			html:     "<p>  Hello,\n   <b>big</b>   world  </p>",
			expected: "Hello,bigworld",
		},
		{
			name:     "unmatched tags are ignored",
			html:     "<html><body><ul><li>item</li></ul><table><tr><td>cell</td></tr></table></body></html>",
			expected: "",
		},
		{
			name:     "script only page",
			html:     "<html><head><script>var x = 1;</script></head><body></body></html>",
			expected: "",
		},
		{
			name:     "script and style inside matches are invisible",
			html:     "<div><style>p{color:red}</style><script>alert(1)</script>Visible</div>",
			expected: "Visible",
		},
		{
			name:     "comments are invisible",
			html:     "<p><!-- hidden -->shown</p>",
			expected: "shown",
		},
		{
			name:     "blank elements are skipped",
			html:     "<div>   </div><p>text</p><span>\n\t</span>",
			expected: "text",
		},
		{
			name:     "malformed markup",
			html:     "<p>Unclosed <b>bold",
			expected: "Unclosedbold",
		},
		{
			name:     "empty input",
			html:     "",
			expected: "",
		},
		{
			name:     "plain text without tags",
			html:     "just some text",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TagExtractor{}.Extract([]byte(tt.html), "https://example.com")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMarkdownExtractor_Extract(t *testing.T) {
	html := "<html><body><h1>Title</h1><p>Hello <strong>world</strong></p></body></html>"

	got, err := MarkdownExtractor{}.Extract([]byte(html), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "# Title") {
		t.Errorf("expected markdown heading, got %q", got)
	}
	if !strings.Contains(got, "**world**") {
		t.Errorf("expected bold text, got %q", got)
	}
}

func TestMarkdownExtractor_Empty(t *testing.T) {
	got, err := MarkdownExtractor{}.Extract(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestReadabilityExtractor_Extract(t *testing.T) {
	paragraph := "Bearer tokens are credentials that grant access to whoever holds them, " +
		"which is why they must always travel over an encrypted channel and expire quickly. "
	html := "<html><head><title>Tokens</title></head><body><article><h1>Tokens</h1>" +
		"<p>" + strings.Repeat(paragraph, 4) + "</p>" +
		"<p>" + strings.Repeat(paragraph, 4) + "</p>" +
		"</article></body></html>"

	got, err := ReadabilityExtractor{}.Extract([]byte(html), "https://example.com/article")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Bearer tokens are credentials") {
		t.Errorf("expected article text, got %q", got)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"", ModeTags, false},
		{"tags", ModeTags, false},
		{"Markdown", ModeMarkdown, false},
		{" readability ", ModeReadability, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseMode(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, mode := range Modes {
		extractor, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", mode, err)
		}
		if extractor == nil {
			t.Fatalf("New(%q) returned nil extractor", mode)
		}
	}

	if _, err := New("bogus"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
