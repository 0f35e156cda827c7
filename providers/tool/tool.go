package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leofalp/pagelens/core/parse"
	"github.com/leofalp/pagelens/providers/observability"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Info describes a tool to its callers.
type Info struct {
	Name        string
	Title       string
	Description string
	ReadOnly    bool
}

// Tool binds a name and description to a strongly typed Go function. The
// input and output JSON schemas are inferred from I and O by the MCP SDK when
// the tool is registered; use `json` and `jsonschema` struct tags to shape
// them.
type Tool[I, O any] struct {
	Info
	Function func(ctx context.Context, input I) (O, error)
}

// GenericTool is the type-erased view of a [Tool], used by [Catalog].
type GenericTool interface {
	// ToolInfo returns the tool metadata.
	ToolInfo() Info

	// Call decodes a (possibly malformed) JSON input, runs the tool and
	// returns its output as JSON.
	Call(ctx context.Context, inputJSON string) (string, error)

	// Register adds the tool to an MCP server.
	Register(server *mcp.Server)
}

// Option configures a tool created by [NewTool].
type Option func(*Info)

// WithDescription sets the description shown to MCP clients.
func WithDescription(description string) Option {
	return func(info *Info) {
		info.Description = description
	}
}

// WithTitle sets a human-readable display name.
func WithTitle(title string) Option {
	return func(info *Info) {
		info.Title = title
	}
}

// ReadOnly marks the tool as free of side effects on its environment.
func ReadOnly() Option {
	return func(info *Info) {
		info.ReadOnly = true
	}
}

// NewTool constructs a [Tool].
//
// Example:
//
//	analyze := tool.NewTool("process_url_with_llm", analyzer.Run,
//	    tool.WithDescription("Process URL content with Ollama"),
//	)
func NewTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...Option) *Tool[I, O] {
	info := Info{Name: name}
	for _, option := range options {
		option(&info)
	}
	return &Tool[I, O]{Info: info, Function: function}
}

// ToolInfo implements [GenericTool].
func (t *Tool[I, O]) ToolInfo() Info {
	return t.Info
}

// Register adds the tool to server. The SDK validates arguments against the
// schema inferred from I and returns O as structured content, together with
// its JSON text for clients that only read text content.
func (t *Tool[I, O]) Register(server *mcp.Server) {
	mcpTool := &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
	}
	if t.Title != "" || t.ReadOnly {
		mcpTool.Annotations = &mcp.ToolAnnotations{Title: t.Title, ReadOnlyHint: t.ReadOnly}
	}

	mcp.AddTool(server, mcpTool, func(ctx context.Context, _ *mcp.CallToolRequest, input I) (*mcp.CallToolResult, O, error) {
		output, err := t.invoke(ctx, input)
		return nil, output, err
	})
}

// Call implements [GenericTool]. Input is decoded with parse.DecodeLenient.
func (t *Tool[I, O]) Call(ctx context.Context, inputJSON string) (string, error) {
	input, err := parse.DecodeLenient[I](inputJSON)
	if err != nil {
		if span := observability.SpanFromContext(ctx); span != nil {
			span.RecordError(err)
		}
		return "", fmt.Errorf("tool %s: %w", t.Name, err)
	}

	output, err := t.invoke(ctx, input)
	if err != nil {
		return "", err
	}

	outputBytes, err := json.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("tool %s: failed to marshal output: %w", t.Name, err)
	}
	return string(outputBytes), nil
}

func (t *Tool[I, O]) invoke(ctx context.Context, input I) (O, error) {
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent("tool.execution.start", observability.String("tool.name", t.Name))
	}

	start := time.Now()
	output, err := t.Function(ctx, input)
	duration := time.Since(start)

	if span != nil {
		if err != nil {
			span.RecordError(err)
		}
		span.AddEvent("tool.execution.end",
			observability.String("tool.name", t.Name),
			observability.Duration(observability.AttrDuration, duration),
		)
	}
	return output, err
}
