// Package tool defines typed tools and exposes them over the Model Context
// Protocol.
//
// A [Tool] wraps a Go function func(ctx, I) (O, error). [Tool.Register] adds
// it to an mcp.Server, where the SDK infers schemas from I and O, and
// [Tool.Call] runs it from a loosely formatted JSON string, which is how the
// CLI invokes tools without a server. [Catalog] groups tools by name.
package tool
