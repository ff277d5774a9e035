package server

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/YoussefAbdon/mcp-demo-server/internal/demo"
	"github.com/YoussefAbdon/mcp-demo-server/internal/features/caches"
	"github.com/YoussefAbdon/mcp-demo-server/internal/registry"
	"github.com/YoussefAbdon/mcp-demo-server/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv := NewServer("demo-server", "1.0.0")
	if err := demo.Register(srv.Registry(), "demo-server"); err != nil {
		t.Fatalf("Failed to register demo toolset: %v", err)
	}
	return srv
}

func call(t *testing.T, srv *Server, raw string) *types.Response {
	t.Helper()
	return srv.HandleMessage(context.Background(), []byte(raw))
}

func TestHandleInitialize(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0.1"}}}`)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(*types.InitializeResult)
	if !ok {
		t.Fatalf("Expected InitializeResult, got %T", resp.Result)
	}
	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("Expected protocol version 2024-11-05, got %s", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "demo-server" {
		t.Errorf("Expected server name demo-server, got %s", result.ServerInfo.Name)
	}
	if result.Capabilities.Tools == nil || result.Capabilities.Resources == nil {
		t.Error("Expected tools and resources capabilities")
	}
}

func TestHandleToolsList(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result := resp.Result.(*types.ToolsListResult)
	if len(result.Tools) != 4 {
		t.Fatalf("Expected 4 tools, got %d", len(result.Tools))
	}

	// Listing is sorted by name
	expected := []string{"add", "get_server_info", "greet", "multiply"}
	for i, name := range expected {
		if result.Tools[i].Name != name {
			t.Errorf("Expected tool %s at index %d, got %s", name, i, result.Tools[i].Name)
		}
	}
	for _, tool := range result.Tools {
		if tool.InputSchema.Type != "object" {
			t.Errorf("Expected object schema for %s, got %s", tool.Name, tool.InputSchema.Type)
		}
	}
}

func TestHandleToolsCallAdd(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"add","arguments":{"a":2,"b":3}}}`)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result := resp.Result.(*types.ToolsCallResult)
	if result.IsError {
		t.Fatal("Expected successful tool result")
	}
	if len(result.Content) != 1 || result.Content[0].Text != "5" {
		t.Errorf("Expected content \"5\", got %+v", result.Content)
	}
}

func TestHandleToolsCallGreet(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"greet","arguments":{"name":"Ada"}}}`)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result := resp.Result.(*types.ToolsCallResult)
	if result.Content[0].Text != "Hello, Ada!" {
		t.Errorf("Expected greeting, got %s", result.Content[0].Text)
	}
}

func TestHandleToolsCallUnknownTool(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"subtract","arguments":{"a":1,"b":2}}}`)
	if resp.Error == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if resp.Error.Code != types.ErrCodeInvalidParams {
		t.Errorf("Expected code %d, got %d", types.ErrCodeInvalidParams, resp.Error.Code)
	}

	data, ok := resp.Error.Data.(map[string]interface{})
	if !ok || data["kind"] != string(registry.KindNotFound) {
		t.Errorf("Expected not_found kind in error data, got %v", resp.Error.Data)
	}
}

func TestHandleToolsCallInvalidArguments(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		raw  string
	}{
		{"string for integer", `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"add","arguments":{"a":"2","b":3}}}`},
		{"missing argument", `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"add","arguments":{"a":2}}}`},
		{"extra argument", `{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{"name":"greet","arguments":{"name":"Ada","extra":1}}}`},
		{"fractional number", `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"multiply","arguments":{"a":1.5,"b":2}}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, srv, tc.raw)
			if resp.Error == nil {
				t.Fatal("Expected invalid params error")
			}
			if resp.Error.Code != types.ErrCodeInvalidParams {
				t.Errorf("Expected code %d, got %d", types.ErrCodeInvalidParams, resp.Error.Code)
			}
			data, ok := resp.Error.Data.(map[string]interface{})
			if !ok || data["kind"] != string(registry.KindInvalidArgument) {
				t.Errorf("Expected invalid_argument kind, got %v", resp.Error.Data)
			}
		})
	}
}

func TestHandleToolsCallHandlerError(t *testing.T) {
	srv := newTestServer(t)

	err := srv.Registry().RegisterTool(registry.ToolDefinition{
		Name:        "fail",
		Description: "Always fails",
		Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
			return nil, fmt.Errorf("boom")
		},
	})
	if err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}

	resp := call(t, srv, `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"fail","arguments":{}}}`)
	if resp.Error != nil {
		t.Fatalf("Handler errors should not become protocol errors: %v", resp.Error)
	}

	result := resp.Result.(*types.ToolsCallResult)
	if !result.IsError {
		t.Fatal("Expected IsError result")
	}
	if result.Content[0].Text != "boom" {
		t.Errorf("Expected handler error text, got %s", result.Content[0].Text)
	}
}

func TestHandleResourcesList(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","id":11,"method":"resources/list"}`)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result := resp.Result.(*types.ResourcesListResult)
	if len(result.Resources) != 1 {
		t.Fatalf("Expected 1 resource, got %d", len(result.Resources))
	}
	if result.Resources[0].URI != demo.PingURI {
		t.Errorf("Expected URI %s, got %s", demo.PingURI, result.Resources[0].URI)
	}
}

func TestHandleResourcesRead(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","id":12,"method":"resources/read","params":{"uri":"demo://ping"}}`)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result := resp.Result.(*types.ResourcesReadResult)
	if len(result.Contents) != 1 {
		t.Fatalf("Expected 1 content item, got %d", len(result.Contents))
	}
	if result.Contents[0].Text != "pong" {
		t.Errorf("Expected pong, got %s", result.Contents[0].Text)
	}
	if result.Contents[0].MimeType != "text/plain" {
		t.Errorf("Expected text/plain, got %s", result.Contents[0].MimeType)
	}
}

func TestHandleResourcesReadNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","id":13,"method":"resources/read","params":{"uri":"demo://missing"}}`)
	if resp.Error == nil {
		t.Fatal("Expected error for unknown resource")
	}
	if resp.Error.Code != types.ErrCodeInvalidParams {
		t.Errorf("Expected code %d, got %d", types.ErrCodeInvalidParams, resp.Error.Code)
	}
}

func TestHandleResourcesReadCached(t *testing.T) {
	srv := newTestServer(t)
	srv.SetResourceCache(caches.NewMemory("test", 16))

	for i := 0; i < 3; i++ {
		resp := call(t, srv, `{"jsonrpc":"2.0","id":14,"method":"resources/read","params":{"uri":"demo://ping"}}`)
		if resp.Error != nil {
			t.Fatalf("Unexpected error on read %d: %v", i, resp.Error)
		}
		result := resp.Result.(*types.ResourcesReadResult)
		if result.Contents[0].Text != "pong" {
			t.Errorf("Expected pong on read %d, got %s", i, result.Contents[0].Text)
		}
	}

	stats := srv.GetMetrics()
	if hits := stats["resource_cache_hits"].(int64); hits != 2 {
		t.Errorf("Expected 2 cache hits, got %d", hits)
	}
}

func TestHandleParseError(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{not json`)
	if resp.Error == nil {
		t.Fatal("Expected parse error")
	}
	if resp.Error.Code != types.ErrCodeParseError {
		t.Errorf("Expected code %d, got %d", types.ErrCodeParseError, resp.Error.Code)
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","id":15,"method":"prompts/list"}`)
	if resp.Error == nil {
		t.Fatal("Expected method not found error")
	}
	if resp.Error.Code != types.ErrCodeMethodNotFound {
		t.Errorf("Expected code %d, got %d", types.ErrCodeMethodNotFound, resp.Error.Code)
	}
}

func TestHandleNotification(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","method":"initialized"}`)
	if resp != nil {
		t.Errorf("Expected no response for notification, got %+v", resp)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, `{"jsonrpc":"2.0","id":16,"method":"tools/call","params":{"name":"multiply","arguments":{"a":6,"b":7}}}`)
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["jsonrpc"] != "2.0" {
		t.Errorf("Expected jsonrpc 2.0, got %v", decoded["jsonrpc"])
	}
	if decoded["id"] != float64(16) {
		t.Errorf("Expected id 16, got %v", decoded["id"])
	}
}

func TestServerMetricsAccumulate(t *testing.T) {
	srv := newTestServer(t)

	call(t, srv, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	call(t, srv, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"add","arguments":{"a":1,"b":1}}}`)
	call(t, srv, `{"jsonrpc":"2.0","id":3,"method":"nope"}`)

	stats := srv.GetMetrics()
	if total := stats["requests_total"].(int64); total != 3 {
		t.Errorf("Expected 3 requests, got %d", total)
	}
	if failed := stats["requests_failed"].(int64); failed != 1 {
		t.Errorf("Expected 1 failed request, got %d", failed)
	}
	if invocations := stats["tool_invocations"].(int64); invocations != 1 {
		t.Errorf("Expected 1 tool invocation, got %d", invocations)
	}
}
