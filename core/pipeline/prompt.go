package pipeline

import "strings"

// Prompt templates. {content} is replaced by the extracted page text and
// {query} by the caller's focus query. The focused framing is fixed and is
// used whatever the page is about.
const (
	DefaultFocusedTemplate = "Analyze this content about JWT bearer tokens and OAuth2:\n\n{content}\n\nFocus on: {query}"
	DefaultGeneralTemplate = "Analyze this content:\n\n{content}"
)

// PromptTemplate holds the two prompt shapes: Focused when a query is given,
// General otherwise.
type PromptTemplate struct {
	Focused string
	General string
}

// DefaultPromptTemplate returns the built-in templates.
func DefaultPromptTemplate() PromptTemplate {
	return PromptTemplate{
		Focused: DefaultFocusedTemplate,
		General: DefaultGeneralTemplate,
	}
}

func (t PromptTemplate) withDefaults() PromptTemplate {
	if t.Focused == "" {
		t.Focused = DefaultFocusedTemplate
	}
	if t.General == "" {
		t.General = DefaultGeneralTemplate
	}
	return t
}

// Build assembles the prompt. An empty query selects the general template.
// Placeholders are substituted in a single pass, so a page that contains the
// text "{query}" is left as-is.
func (t PromptTemplate) Build(content, query string) string {
	replacer := strings.NewReplacer("{content}", content, "{query}", query)
	if query != "" {
		return replacer.Replace(t.Focused)
	}
	return replacer.Replace(t.General)
}
