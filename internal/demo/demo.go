// Package demo registers the built-in demonstration tool set: a handful of
// pure functions used to validate that a deployment can stand up a
// reachable server and answer simple invocations.
package demo

import (
	"context"
	"fmt"

	"github.com/YoussefAbdon/mcp-demo-server/internal/registry"
)

// PingURI is the URI of the single static demo resource.
const PingURI = "demo://ping"

// Register adds the demo tools (add, multiply, greet, get_server_info) and
// the demo://ping resource to the registry. serverName is reported by
// get_server_info.
func Register(reg *registry.Registry, serverName string) error {
	tools := []registry.ToolDefinition{
		{
			Name:        "add",
			Description: "Add two numbers together",
			Params: []registry.Param{
				{Name: "a", Type: registry.ParamInteger, Description: "First addend"},
				{Name: "b", Type: registry.ParamInteger, Description: "Second addend"},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return args.Int("a") + args.Int("b"), nil
			},
		},
		{
			Name:        "multiply",
			Description: "Multiply two numbers",
			Params: []registry.Param{
				{Name: "a", Type: registry.ParamInteger, Description: "First factor"},
				{Name: "b", Type: registry.ParamInteger, Description: "Second factor"},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return args.Int("a") * args.Int("b"), nil
			},
		},
		{
			Name:        "greet",
			Description: "Greet someone by name",
			Params: []registry.Param{
				{Name: "name", Type: registry.ParamString, Description: "Name to greet"},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return fmt.Sprintf("Hello, %s!", args.String("name")), nil
			},
		},
		{
			Name:        "get_server_info",
			Description: "Report server name, status and registration counts",
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				// Counts are read live; the registry is fixed after startup.
				return map[string]interface{}{
					"name":           serverName,
					"status":         "running",
					"tool_count":     reg.ToolCount(),
					"resource_count": reg.ResourceCount(),
				}, nil
			},
		},
	}

	for _, def := range tools {
		if err := reg.RegisterTool(def); err != nil {
			return err
		}
	}

	return reg.RegisterResource(registry.ResourceDefinition{
		URI:         PingURI,
		Name:        "ping",
		Description: "Static liveness resource",
		MimeType:    "text/plain",
		Producer: func(ctx context.Context) (string, error) {
			return "pong", nil
		},
	})
}
