// Package mcpdemo is the top-level facade for the MCP demo server. It
// exposes constructors for the server, its transports, and a quick
// builder for spinning up the demo toolset with one call.
package mcpdemo

import (
	"github.com/YoussefAbdon/mcp-demo-server/internal/demo"
	"github.com/YoussefAbdon/mcp-demo-server/internal/registry"
	"github.com/YoussefAbdon/mcp-demo-server/internal/server"
	"github.com/YoussefAbdon/mcp-demo-server/transport"
)

// ServerName is the default server identity reported by initialize and
// the get_server_info tool.
const ServerName = "demo-server"

// ServerVersion is the default server version.
const ServerVersion = "1.0.0"

// NewServer creates a new MCP server with the default identity
func NewServer() *server.Server {
	return server.NewServer(ServerName, ServerVersion)
}

// Transport constructors

// Stdio creates a stdio transport
func Stdio() transport.Transport {
	return transport.NewStdioTransport(transport.StdioConfig{})
}

// SSE creates an SSE transport
func SSE(host string, port int) transport.Transport {
	return transport.NewSSETransport(transport.HTTPConfig{
		Host: host,
		Port: port,
	})
}

// StreamableHTTP creates a streamable HTTP transport
func StreamableHTTP(host string, port int) transport.Transport {
	return transport.NewStreamableHTTPTransport(transport.HTTPConfig{
		Host: host,
		Port: port,
	})
}

// Quick API for rapid development

// Quick returns a builder for quick server setup
func Quick() *QuickBuilder {
	return &QuickBuilder{
		server: NewServer(),
	}
}

type QuickBuilder struct {
	server *server.Server
	err    error
}

// Tool registers a tool definition
func (qb *QuickBuilder) Tool(def registry.ToolDefinition) *QuickBuilder {
	if qb.err == nil {
		qb.err = qb.server.Registry().RegisterTool(def)
	}
	return qb
}

// Resource registers a resource definition
func (qb *QuickBuilder) Resource(def registry.ResourceDefinition) *QuickBuilder {
	if qb.err == nil {
		qb.err = qb.server.Registry().RegisterResource(def)
	}
	return qb
}

// DemoToolset registers the built-in demo tools and the ping resource
func (qb *QuickBuilder) DemoToolset() *QuickBuilder {
	if qb.err == nil {
		qb.err = demo.Register(qb.server.Registry(), ServerName)
	}
	return qb
}

// Server returns the underlying server, surfacing any registration error
func (qb *QuickBuilder) Server() (*server.Server, error) {
	if qb.err != nil {
		return nil, qb.err
	}
	return qb.server, nil
}

// Run starts the server with stdio transport
func (qb *QuickBuilder) Run() error {
	if qb.err != nil {
		return qb.err
	}
	return qb.server.Start(Stdio())
}

// RunSSE starts the server with SSE transport
func (qb *QuickBuilder) RunSSE(host string, port int) error {
	if qb.err != nil {
		return qb.err
	}
	return qb.server.Start(SSE(host, port))
}

// RunHTTP starts the server with streamable HTTP transport
func (qb *QuickBuilder) RunHTTP(host string, port int) error {
	if qb.err != nil {
		return qb.err
	}
	return qb.server.Start(StreamableHTTP(host, port))
}
