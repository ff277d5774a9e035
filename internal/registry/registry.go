// Package registry holds the fixed set of callable tools and resources and
// executes named calls against supplied arguments. It is built once at
// startup and read-only thereafter, so lookups are safe under arbitrary
// concurrent invocation.
package registry

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"sync"

	"github.com/YoussefAbdon/mcp-demo-server/types"
)

// ParamType is the declared primitive type of a tool parameter.
type ParamType string

const (
	ParamInteger ParamType = "integer"
	ParamString  ParamType = "string"
)

// Param declares a named, required tool parameter.
type Param struct {
	Name        string
	Type        ParamType
	Description string
}

// Args holds validated, type-coerced arguments for a handler call.
// Integer parameters are stored as int64, string parameters as string.
type Args map[string]interface{}

// Int returns the integer argument by name. Only valid for parameters
// declared as ParamInteger.
func (a Args) Int(name string) int64 {
	v, _ := a[name].(int64)
	return v
}

// String returns the string argument by name.
func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

// HandlerFunc executes a tool call with validated arguments.
type HandlerFunc func(ctx context.Context, args Args) (interface{}, error)

// ProducerFunc returns the current value of a resource.
type ProducerFunc func(ctx context.Context) (string, error)

// ToolDefinition describes a callable tool. Immutable once registered.
type ToolDefinition struct {
	Name        string
	Description string
	Params      []Param
	Handler     HandlerFunc
}

// InputSchema renders the declared parameters as a JSON schema for tools/list.
func (td *ToolDefinition) InputSchema() types.JSONSchema {
	noExtras := false
	schema := types.JSONSchema{
		Type:                 "object",
		Properties:           make(map[string]*types.JSONSchema, len(td.Params)),
		Required:             make([]string, 0, len(td.Params)),
		AdditionalProperties: &noExtras,
	}
	for _, p := range td.Params {
		schema.Properties[p.Name] = &types.JSONSchema{
			Type:        string(p.Type),
			Description: p.Description,
		}
		schema.Required = append(schema.Required, p.Name)
	}
	return schema
}

// ResourceDefinition describes a read-only resource addressed by URI.
type ResourceDefinition struct {
	URI         string
	Name        string
	Description string
	MimeType    string
	Producer    ProducerFunc
}

// Registry maps tool names and resource URIs to their definitions.
// Registration happens only during startup; all other operations are
// read-only. Lookups are case-sensitive exact matches.
type Registry struct {
	tools     map[string]*ToolDefinition
	resources map[string]*ResourceDefinition
	mu        sync.RWMutex
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		tools:     make(map[string]*ToolDefinition),
		resources: make(map[string]*ResourceDefinition),
	}
}

// RegisterTool adds a tool definition. Fails with a duplicate_key error if
// the name is already taken.
func (r *Registry) RegisterTool(def ToolDefinition) error {
	if def.Name == "" {
		return InvalidArgumentf("tool name is required")
	}
	if def.Handler == nil {
		return InvalidArgumentf("tool %s: handler is required", def.Name)
	}
	seen := make(map[string]bool, len(def.Params))
	for _, p := range def.Params {
		if p.Name == "" {
			return InvalidArgumentf("tool %s: parameter name is required", def.Name)
		}
		if p.Type != ParamInteger && p.Type != ParamString {
			return InvalidArgumentf("tool %s: unsupported parameter type %q", def.Name, p.Type)
		}
		if seen[p.Name] {
			return DuplicateKeyf("tool %s: duplicate parameter %s", def.Name, p.Name)
		}
		seen[p.Name] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return DuplicateKeyf("tool already registered: %s", def.Name)
	}
	r.tools[def.Name] = &def
	return nil
}

// RegisterResource adds a resource definition. Fails with a duplicate_key
// error if the URI is already taken.
func (r *Registry) RegisterResource(def ResourceDefinition) error {
	if def.URI == "" {
		return InvalidArgumentf("resource uri is required")
	}
	if def.Producer == nil {
		return InvalidArgumentf("resource %s: producer is required", def.URI)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resources[def.URI]; exists {
		return DuplicateKeyf("resource already registered: %s", def.URI)
	}
	r.resources[def.URI] = &def
	return nil
}

// InvokeTool looks up a tool by name, validates the supplied arguments
// against its declared parameters and calls the handler. Returns a
// not_found error for unknown tools and an invalid_argument error on type
// mismatch, missing parameters or unexpected extra parameters.
func (r *Registry) InvokeTool(ctx context.Context, name string, arguments map[string]interface{}) (interface{}, error) {
	r.mu.RLock()
	def, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return nil, NotFoundf("tool not found: %s", name)
	}

	args, err := validateArguments(def, arguments)
	if err != nil {
		return nil, err
	}

	return def.Handler(ctx, args)
}

// ReadResource looks up a resource by URI and returns the producer's
// current value. Returns a not_found error for unknown URIs.
func (r *Registry) ReadResource(ctx context.Context, uri string) (string, error) {
	r.mu.RLock()
	def, exists := r.resources[uri]
	r.mu.RUnlock()

	if !exists {
		return "", NotFoundf("resource not found: %s", uri)
	}

	return def.Producer(ctx)
}

// Tool returns a tool definition by name
func (r *Registry) Tool(name string) (*ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.tools[name]
	return def, exists
}

// Resource returns a resource definition by URI
func (r *Registry) Resource(uri string) (*ResourceDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.resources[uri]
	return def, exists
}

// Tools returns all tool definitions sorted by name
func (r *Registry) Tools() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ToolDefinition, 0, len(r.tools))
	for _, def := range r.tools {
		tools = append(tools, *def)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Resources returns all resource definitions sorted by URI
func (r *Registry) Resources() []ResourceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resources := make([]ResourceDefinition, 0, len(r.resources))
	for _, def := range r.resources {
		resources = append(resources, *def)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].URI < resources[j].URI })
	return resources
}

// ToolCount returns the number of registered tools
func (r *Registry) ToolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// ResourceCount returns the number of registered resources
func (r *Registry) ResourceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}

// validateArguments checks that arguments supplies exactly the declared
// parameters with convertible values.
func validateArguments(def *ToolDefinition, arguments map[string]interface{}) (Args, error) {
	args := make(Args, len(def.Params))

	for _, p := range def.Params {
		raw, exists := arguments[p.Name]
		if !exists {
			return nil, InvalidArgumentf("tool %s: missing required parameter %s", def.Name, p.Name)
		}

		switch p.Type {
		case ParamInteger:
			n, ok := coerceInteger(raw)
			if !ok {
				return nil, InvalidArgumentf("tool %s: parameter %s must be an integer, got %T", def.Name, p.Name, raw)
			}
			args[p.Name] = n
		case ParamString:
			s, ok := raw.(string)
			if !ok {
				return nil, InvalidArgumentf("tool %s: parameter %s must be a string, got %T", def.Name, p.Name, raw)
			}
			args[p.Name] = s
		}
	}

	for name := range arguments {
		if _, exists := args[name]; !exists {
			return nil, InvalidArgumentf("tool %s: unexpected parameter %s", def.Name, name)
		}
	}

	return args, nil
}

// coerceInteger accepts the integer encodings JSON decoding can produce.
// Floating point values are accepted only when integral.
func coerceInteger(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.Trunc(n) != n || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
