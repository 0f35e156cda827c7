package pipeline

import "testing"

func TestPromptTemplate_Build(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		query    string
		expected string
	}{
		{
			name:     "general",
			content:  "Page text.",
			expected: "Analyze this content:\n\nPage text.",
		},
		{
			name:     "focused",
			content:  "Page text.",
			query:    "token expiry",
			expected: "Analyze this content about JWT bearer tokens and OAuth2:\n\nPage text.\n\nFocus on: token expiry",
		},
		{
			name:     "whitespace query is still a query",
			content:  "c",
			query:    " ",
			expected: "Analyze this content about JWT bearer tokens and OAuth2:\n\nc\n\nFocus on:  ",
		},
		{
			name:     "placeholders in content are not expanded",
			content:  "literal {query} and {content}",
			query:    "q",
			expected: "Analyze this content about JWT bearer tokens and OAuth2:\n\nliteral {query} and {content}\n\nFocus on: q",
		},
	}

	prompts := DefaultPromptTemplate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompts.Build(tt.content, tt.query); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
