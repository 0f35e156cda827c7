package urlanalysis

import (
	"context"

	"github.com/leofalp/pagelens/core/pipeline"
	"github.com/leofalp/pagelens/providers/tool"
)

const (
	// Name is the tool name exposed to MCP clients.
	Name = "process_url_with_llm"
	// Description is shown to MCP clients.
	Description = "Process URL content with Ollama: fetch the page, extract its text and return the model's analysis."
)

// Input is the tool input.
type Input struct {
	URL   string `json:"url" jsonschema:"URL of the page to analyze"`
	Query string `json:"query,omitempty" jsonschema:"optional topic the analysis should focus on"`
}

// Processor runs one analysis. *pipeline.Analyzer implements it.
type Processor interface {
	Process(ctx context.Context, url, query string) pipeline.Envelope
}

// New returns the process_url_with_llm tool backed by processor.
//
// The tool itself never fails: fetch, extraction and inference errors are
// reported inside the returned envelope.
func New(processor Processor) *tool.Tool[Input, pipeline.Envelope] {
	return tool.NewTool(Name,
		func(ctx context.Context, input Input) (pipeline.Envelope, error) {
			return processor.Process(ctx, input.URL, input.Query), nil
		},
		tool.WithDescription(Description),
		tool.WithTitle("Analyze URL"),
		tool.ReadOnly(),
	)
}
