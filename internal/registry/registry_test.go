package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

func addTool() ToolDefinition {
	return ToolDefinition{
		Name:        "add",
		Description: "Add two numbers together",
		Params: []Param{
			{Name: "a", Type: ParamInteger},
			{Name: "b", Type: ParamInteger},
		},
		Handler: func(ctx context.Context, args Args) (interface{}, error) {
			return args.Int("a") + args.Int("b"), nil
		},
	}
}

func greetTool() ToolDefinition {
	return ToolDefinition{
		Name:   "greet",
		Params: []Param{{Name: "name", Type: ParamString}},
		Handler: func(ctx context.Context, args Args) (interface{}, error) {
			return fmt.Sprintf("Hello, %s!", args.String("name")), nil
		},
	}
}

func pingResource() ResourceDefinition {
	return ResourceDefinition{
		URI:      "demo://ping",
		Name:     "ping",
		MimeType: "text/plain",
		Producer: func(ctx context.Context) (string, error) {
			return "pong", nil
		},
	}
}

func TestRegisterTool(t *testing.T) {
	reg := New()

	if err := reg.RegisterTool(addTool()); err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}

	if reg.ToolCount() != 1 {
		t.Errorf("Expected 1 tool, got %d", reg.ToolCount())
	}

	if _, exists := reg.Tool("add"); !exists {
		t.Error("Expected tool add to be registered")
	}
}

func TestRegisterToolDuplicate(t *testing.T) {
	reg := New()

	if err := reg.RegisterTool(addTool()); err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}

	err := reg.RegisterTool(addTool())
	if err == nil {
		t.Fatal("Expected error for duplicate tool")
	}
	if !IsDuplicateKey(err) {
		t.Errorf("Expected duplicate_key error, got %v", err)
	}
}

func TestRegisterToolInvalid(t *testing.T) {
	tests := []struct {
		name string
		def  ToolDefinition
	}{
		{"empty name", ToolDefinition{Handler: func(ctx context.Context, args Args) (interface{}, error) { return nil, nil }}},
		{"nil handler", ToolDefinition{Name: "broken"}},
		{"bad param type", ToolDefinition{
			Name:    "broken",
			Params:  []Param{{Name: "x", Type: ParamType("float")}},
			Handler: func(ctx context.Context, args Args) (interface{}, error) { return nil, nil },
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := New().RegisterTool(tt.def); err == nil {
				t.Error("Expected registration error")
			}
		})
	}
}

func TestRegisterResourceDuplicate(t *testing.T) {
	reg := New()

	if err := reg.RegisterResource(pingResource()); err != nil {
		t.Fatalf("RegisterResource failed: %v", err)
	}

	err := reg.RegisterResource(pingResource())
	if !IsDuplicateKey(err) {
		t.Errorf("Expected duplicate_key error, got %v", err)
	}
}

func TestInvokeTool(t *testing.T) {
	reg := New()
	if err := reg.RegisterTool(addTool()); err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}

	tests := []struct {
		name string
		args map[string]interface{}
		want int64
	}{
		{"small", map[string]interface{}{"a": 2, "b": 3}, 5},
		{"negative", map[string]interface{}{"a": -7, "b": 5}, -2},
		{"zero", map[string]interface{}{"a": 0, "b": 0}, 0},
		{"json numbers", map[string]interface{}{"a": float64(40), "b": float64(2)}, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := reg.InvokeTool(context.Background(), "add", tt.args)
			if err != nil {
				t.Fatalf("InvokeTool failed: %v", err)
			}
			if result != tt.want {
				t.Errorf("Expected %d, got %v", tt.want, result)
			}
		})
	}
}

func TestInvokeToolCommutative(t *testing.T) {
	reg := New()
	if err := reg.RegisterTool(addTool()); err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}

	ab, err := reg.InvokeTool(context.Background(), "add", map[string]interface{}{"a": 17, "b": 25})
	if err != nil {
		t.Fatalf("InvokeTool failed: %v", err)
	}
	ba, err := reg.InvokeTool(context.Background(), "add", map[string]interface{}{"a": 25, "b": 17})
	if err != nil {
		t.Fatalf("InvokeTool failed: %v", err)
	}
	if ab != ba {
		t.Errorf("Expected add to be commutative, got %v and %v", ab, ba)
	}
}

func TestInvokeToolNotFound(t *testing.T) {
	reg := New()

	_, err := reg.InvokeTool(context.Background(), "nonexistent", map[string]interface{}{})
	if err == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if !IsNotFound(err) {
		t.Errorf("Expected not_found error, got %v", err)
	}
}

func TestInvokeToolInvalidArguments(t *testing.T) {
	reg := New()
	if err := reg.RegisterTool(addTool()); err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}
	if err := reg.RegisterTool(greetTool()); err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"string for integer", "add", map[string]interface{}{"a": "x", "b": 2}},
		{"bool for integer", "add", map[string]interface{}{"a": true, "b": 2}},
		{"fractional number", "add", map[string]interface{}{"a": 1.5, "b": 2}},
		{"missing parameter", "add", map[string]interface{}{"a": 1}},
		{"no parameters", "add", map[string]interface{}{}},
		{"extra parameter", "add", map[string]interface{}{"a": 1, "b": 2, "c": 3}},
		{"integer for string", "greet", map[string]interface{}{"name": 42}},
		{"nil arguments map", "add", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.InvokeTool(context.Background(), tt.tool, tt.args)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !IsInvalidArgument(err) {
				t.Errorf("Expected invalid_argument error, got %v", err)
			}
		})
	}
}

func TestInvokeToolJSONNumber(t *testing.T) {
	reg := New()
	if err := reg.RegisterTool(addTool()); err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}

	result, err := reg.InvokeTool(context.Background(), "add", map[string]interface{}{
		"a": json.Number("40"),
		"b": json.Number("2"),
	})
	if err != nil {
		t.Fatalf("InvokeTool failed: %v", err)
	}
	if result != int64(42) {
		t.Errorf("Expected 42, got %v", result)
	}

	_, err = reg.InvokeTool(context.Background(), "add", map[string]interface{}{
		"a": json.Number("1.5"),
		"b": json.Number("2"),
	})
	if !IsInvalidArgument(err) {
		t.Errorf("Expected invalid_argument for fractional json.Number, got %v", err)
	}
}

func TestInvokeToolEmptyString(t *testing.T) {
	reg := New()
	if err := reg.RegisterTool(greetTool()); err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}

	result, err := reg.InvokeTool(context.Background(), "greet", map[string]interface{}{"name": ""})
	if err != nil {
		t.Fatalf("InvokeTool failed: %v", err)
	}
	if result != "Hello, !" {
		t.Errorf("Expected greeting for empty name, got %v", result)
	}
}

func TestReadResource(t *testing.T) {
	reg := New()
	if err := reg.RegisterResource(pingResource()); err != nil {
		t.Fatalf("RegisterResource failed: %v", err)
	}

	// Idempotent under repeated calls
	for i := 0; i < 3; i++ {
		value, err := reg.ReadResource(context.Background(), "demo://ping")
		if err != nil {
			t.Fatalf("ReadResource failed: %v", err)
		}
		if value != "pong" {
			t.Errorf("Expected pong, got %s", value)
		}
	}
}

func TestReadResourceNotFound(t *testing.T) {
	reg := New()

	_, err := reg.ReadResource(context.Background(), "demo://missing")
	if !IsNotFound(err) {
		t.Errorf("Expected not_found error, got %v", err)
	}
}

func TestReadResourceCaseSensitive(t *testing.T) {
	reg := New()
	if err := reg.RegisterResource(pingResource()); err != nil {
		t.Fatalf("RegisterResource failed: %v", err)
	}

	_, err := reg.ReadResource(context.Background(), "demo://PING")
	if !IsNotFound(err) {
		t.Errorf("Expected exact-match lookup, got %v", err)
	}
}

func TestToolsSorted(t *testing.T) {
	reg := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		def := greetTool()
		def.Name = name
		if err := reg.RegisterTool(def); err != nil {
			t.Fatalf("RegisterTool failed: %v", err)
		}
	}

	tools := reg.Tools()
	if len(tools) != 3 {
		t.Fatalf("Expected 3 tools, got %d", len(tools))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if tools[i].Name != want {
			t.Errorf("Expected tools[%d] = %s, got %s", i, want, tools[i].Name)
		}
	}
}

func TestInputSchema(t *testing.T) {
	def := addTool()
	schema := def.InputSchema()

	if schema.Type != "object" {
		t.Errorf("Expected object schema, got %s", schema.Type)
	}
	if len(schema.Required) != 2 {
		t.Errorf("Expected 2 required parameters, got %d", len(schema.Required))
	}
	if schema.Properties["a"] == nil || schema.Properties["a"].Type != "integer" {
		t.Error("Expected integer schema for parameter a")
	}
	if schema.AdditionalProperties == nil || *schema.AdditionalProperties {
		t.Error("Expected additionalProperties to be false")
	}
}

func TestConcurrentInvocation(t *testing.T) {
	reg := New()
	if err := reg.RegisterTool(addTool()); err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			result, err := reg.InvokeTool(context.Background(), "add", map[string]interface{}{
				"a": n, "b": n,
			})
			if err != nil {
				errs <- err
				return
			}
			if result != 2*n {
				errs <- fmt.Errorf("expected %d, got %v", 2*n, result)
			}
		}(int64(i))
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent invocation failed: %v", err)
	}
}
