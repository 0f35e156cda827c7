// Package server exposes pagelens tools to MCP clients, either over
// stdin/stdout or over streamable HTTP at /mcp next to /healthz and
// /metrics. Logs never go to stdout, which the stdio transport owns.
package server
