package urlanalysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/leofalp/pagelens/core/pipeline"
	"github.com/leofalp/pagelens/providers/tool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type fakeProcessor struct {
	urls    []string
	queries []string
	fail    bool
}

func (f *fakeProcessor) Process(_ context.Context, url, query string) pipeline.Envelope {
	f.urls = append(f.urls, url)
	f.queries = append(f.queries, query)
	if f.fail {
		return pipeline.Failure(url, errors.New("No content extracted from URL"))
	}
	return pipeline.Success(url, "analysis of "+url)
}

func TestTool_Call(t *testing.T) {
	processor := &fakeProcessor{}
	analyze := New(processor)

	got, err := analyze.Call(context.Background(), `{"url": "https://example.com", "query": "jwt"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"status":"success","url":"https://example.com","analysis":"analysis of https://example.com"}`
	if got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
	if processor.queries[0] != "jwt" {
		t.Errorf("expected query to be forwarded, got %q", processor.queries[0])
	}
}

func TestTool_Call_QueryOptional(t *testing.T) {
	processor := &fakeProcessor{}

	if _, err := New(processor).Call(context.Background(), `{url: 'https://example.com'}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processor.queries[0] != "" {
		t.Errorf("expected empty query, got %q", processor.queries[0])
	}
}

func TestTool_OverMCP(t *testing.T) {
	ctx := context.Background()
	processor := &fakeProcessor{fail: true}

	server := mcp.NewServer(&mcp.Implementation{Name: "pagelens-test", Version: "v0.0.1"}, nil)
	tool.NewCatalog(New(processor)).RegisterAll(server)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      Name,
		Arguments: map[string]any{"url": "https://example.com/empty"},
	})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected the failure inside the envelope, got a tool error: %+v", result.Content)
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	var envelope map[string]any
	if err := json.Unmarshal([]byte(text.Text), &envelope); err != nil {
		t.Fatalf("invalid JSON content: %v", err)
	}
	if envelope["status"] != "error" || envelope["url"] != "https://example.com/empty" || envelope["error"] != "No content extracted from URL" {
		t.Errorf("unexpected envelope: %v", envelope)
	}
	if _, has := envelope["analysis"]; has {
		t.Error("error envelope must not carry analysis")
	}
}

func TestTool_OverMCP_MissingURL(t *testing.T) {
	ctx := context.Background()
	processor := &fakeProcessor{}

	server := mcp.NewServer(&mcp.Implementation{Name: "pagelens-test", Version: "v0.0.1"}, nil)
	New(processor).Register(server)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      Name,
		Arguments: map[string]any{"query": "no url"},
	})
	if err == nil && !result.IsError {
		t.Error("expected missing url to be rejected")
	}
	if len(processor.urls) != 0 {
		t.Errorf("expected no invocation, got %v", processor.urls)
	}
}
