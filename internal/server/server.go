package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/YoussefAbdon/mcp-demo-server/internal/registry"
	"github.com/YoussefAbdon/mcp-demo-server/internal/telemetry"
	"github.com/YoussefAbdon/mcp-demo-server/pkg/features"
	"github.com/YoussefAbdon/mcp-demo-server/transport"
	"github.com/YoussefAbdon/mcp-demo-server/types"
)

// resourceCacheTTL bounds staleness of cached resource reads.
const resourceCacheTTL = 30 * time.Second

// Server represents an MCP server. It dispatches JSON-RPC messages read
// from a transport to the tool and resource registry.
type Server struct {
	info     types.ServerInfo
	caps     types.ServerCapabilities
	registry *registry.Registry
	metrics  *ServerMetrics

	tracer          trace.Tracer
	logger          features.Logger
	resourceCache   features.Cache
	metricsProvider features.MetricsProvider
}

// NewServer creates a new MCP server
func NewServer(name, version string) *Server {
	return &Server{
		info: types.ServerInfo{
			Name:    name,
			Version: version,
		},
		caps: types.ServerCapabilities{
			Tools: &types.ToolsCapability{
				ListChanged: false,
			},
			Resources: &types.ResourcesCapability{
				Subscribe:   false,
				ListChanged: false,
			},
			Logging: &types.LoggingCapability{},
		},
		registry: registry.New(),
		metrics:  NewServerMetrics(),
	}
}

// Registry returns the tool and resource registry
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Info returns the server identity
func (s *Server) Info() types.ServerInfo {
	return s.info
}

// SetTracer sets the OpenTelemetry tracer for distributed tracing
func (s *Server) SetTracer(tracer trace.Tracer) {
	s.tracer = tracer
}

// SetLogger sets the structured logger
func (s *Server) SetLogger(logger features.Logger) {
	s.logger = logger
}

// SetResourceCache sets the cache used for resource reads
func (s *Server) SetResourceCache(cache features.Cache) {
	s.resourceCache = cache
}

// SetMetricsProvider sets the metrics backend
func (s *Server) SetMetricsProvider(provider features.MetricsProvider) {
	s.metricsProvider = provider
}

// GetMetrics returns server metrics
func (s *Server) GetMetrics() map[string]interface{} {
	return s.metrics.GetStats()
}

// Start starts the server with the given transport. It returns nil when
// the transport is closed.
func (s *Server) Start(t transport.Transport) error {
	if err := t.Listen(); err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logf(features.INFO, "server started", map[string]interface{}{
		"name":      s.info.Name,
		"version":   s.info.Version,
		"transport": t.Type(),
		"tools":     s.registry.ToolCount(),
		"resources": s.registry.ResourceCount(),
	})

	for {
		conn, err := t.Accept()
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				return nil
			}
			s.logf(features.WARN, "failed to accept connection", map[string]interface{}{"error": err.Error()})
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn transport.Connection) {
	defer conn.Close()

	s.metrics.RecordConnection(true)
	defer s.metrics.RecordConnection(false)

	s.logf(features.DEBUG, "new connection", map[string]interface{}{"remote": conn.RemoteAddr()})

	for {
		data, err := conn.Read()
		if err != nil {
			if err != io.EOF {
				s.logf(features.DEBUG, "read error", map[string]interface{}{"error": err.Error()})
			}
			break
		}

		response := s.HandleMessage(conn.Context(), data)
		if response == nil {
			continue
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			s.logf(features.ERROR, "failed to marshal response", map[string]interface{}{"error": err.Error()})
			continue
		}

		if err := conn.Write(responseData); err != nil {
			s.logf(features.DEBUG, "write error", map[string]interface{}{"error": err.Error()})
			break
		}
	}
}

// HandleMessage processes a single JSON-RPC message and returns the
// response, or nil for notifications.
func (s *Server) HandleMessage(ctx context.Context, data []byte) *types.Response {
	start := time.Now()

	var span trace.Span
	if s.tracer != nil {
		ctx, span = telemetry.StartSpan(ctx, s.tracer, "mcp.handle_message",
			telemetry.NewSpanAttributeBuilder().
				Component("mcp").
				Operation("handle_message").
				String("mcp.server_name", s.info.Name).
				Int("mcp.request_size_bytes", len(data)).
				Build()...)
		defer span.End()
	}

	s.metrics.RecordRequestSize(int64(len(data)))

	var req types.Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.metrics.RecordError(err)
		if span != nil {
			telemetry.RecordError(span, err)
			telemetry.AddEvent(span, "mcp.request.parse_error")
		}
		return &types.Response{
			Message: types.Message{
				JSONRPC: "2.0",
				ID:      nil,
			},
			Error: &types.RPCError{
				Code:    types.ErrCodeParseError,
				Message: "Parse error",
			},
		}
	}

	if span != nil {
		telemetry.SetSpanAttributes(span, telemetry.NewSpanAttributeBuilder().
			MCP(req.Method, "").
			String("mcp.request_id", fmt.Sprintf("%v", req.ID)).
			Build()...)
	}

	// Notifications carry no ID and get no response
	if req.ID == nil && (req.Method == types.MethodInitialized || req.Method == types.MethodCancelled) {
		return nil
	}

	response := &types.Response{
		Message: types.Message{
			JSONRPC: "2.0",
			ID:      req.ID,
		},
	}

	switch req.Method {
	case types.MethodInitialize:
		result, err := s.handleInitialize(ctx, req.Params)
		s.finish(response, result, err)

	case types.MethodToolsList:
		result, err := s.handleToolsList(ctx)
		s.finish(response, result, err)

	case types.MethodToolsCall:
		result, err := s.handleToolsCall(ctx, req.Params)
		s.finish(response, result, err)

	case types.MethodResourcesList:
		result, err := s.handleResourcesList(ctx)
		s.finish(response, result, err)

	case types.MethodResourcesRead:
		result, err := s.handleResourcesRead(ctx, req.Params)
		s.finish(response, result, err)

	default:
		response.Error = &types.RPCError{
			Code:    types.ErrCodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
	}

	latency := time.Since(start)
	success := response.Error == nil
	s.metrics.RecordRequest(req.Method, success, latency)
	s.recordRequestMetrics(req.Method, success, latency)

	responseSize := 0
	if responseData, err := json.Marshal(response); err == nil {
		responseSize = len(responseData)
		s.metrics.RecordResponseSize(int64(responseSize))
	}

	if span != nil {
		telemetry.SetSpanAttributes(span, telemetry.NewSpanAttributeBuilder().
			Bool("mcp.success", success).
			Float64("mcp.latency_ms", float64(latency.Nanoseconds())/1000000.0).
			Int("mcp.response_size_bytes", responseSize).
			Build()...)

		if !success {
			telemetry.SetSpanAttributes(span, telemetry.NewSpanAttributeBuilder().
				String("mcp.error_code", fmt.Sprintf("%d", response.Error.Code)).
				String("mcp.error_message", response.Error.Message).
				Build()...)
		}
		// Errored results are still successful message handling
		telemetry.RecordSuccess(span)
	}

	return response
}

// finish fills in either the result or the mapped RPC error
func (s *Server) finish(response *types.Response, result interface{}, err error) {
	if err != nil {
		s.metrics.RecordError(err)
		response.Error = errorToRPC(err)
		return
	}
	response.Result = result
}

// errorToRPC maps registry errors onto JSON-RPC error codes. Lookup and
// validation failures surface as invalid params with the kind attached;
// everything else is an internal error.
func errorToRPC(err error) *types.RPCError {
	switch kind := registry.KindOf(err); kind {
	case registry.KindNotFound, registry.KindInvalidArgument:
		return &types.RPCError{
			Code:    types.ErrCodeInvalidParams,
			Message: err.Error(),
			Data:    map[string]interface{}{"kind": string(kind)},
		}
	default:
		return &types.RPCError{
			Code:    types.ErrCodeInternalError,
			Message: err.Error(),
		}
	}
}

func (s *Server) handleInitialize(ctx context.Context, params interface{}) (*types.InitializeResult, error) {
	return &types.InitializeResult{
		ProtocolVersion: types.ProtocolVersion,
		Capabilities:    s.caps,
		ServerInfo:      s.info,
	}, nil
}

func (s *Server) handleToolsList(ctx context.Context) (*types.ToolsListResult, error) {
	defs := s.registry.Tools()

	tools := make([]types.Tool, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, types.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema(),
		})
	}

	return &types.ToolsListResult{Tools: tools}, nil
}

func (s *Server) handleToolsCall(ctx context.Context, params interface{}) (*types.ToolsCallResult, error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = telemetry.StartSpan(ctx, s.tracer, "mcp.tools.call",
			telemetry.NewSpanAttributeBuilder().
				Component("mcp").
				Operation("tools_call").
				Build()...)
		defer span.End()
	}

	start := time.Now()

	var req types.ToolsCallRequest
	if err := unmarshalParams(params, &req); err != nil {
		if span != nil {
			telemetry.RecordError(span, err)
		}
		return nil, registry.InvalidArgumentf("invalid tools/call params: %v", err)
	}

	if span != nil {
		telemetry.SetSpanAttributes(span, telemetry.NewSpanAttributeBuilder().
			MCP(types.MethodToolsCall, req.Name).
			Int("mcp.argument_count", len(req.Arguments)).
			Build()...)
	}

	result, err := s.registry.InvokeTool(ctx, req.Name, req.Arguments)
	latency := time.Since(start)

	if err != nil {
		s.metrics.RecordToolInvocation(req.Name, false, latency)
		s.recordToolMetrics(req.Name, "error", latency)
		if span != nil {
			telemetry.RecordError(span, err)
		}

		// Lookup and validation failures are protocol errors; failures
		// inside the tool handler are reported as errored tool results.
		if registry.KindOf(err) != "" {
			return nil, err
		}
		return &types.ToolsCallResult{
			IsError: true,
			Content: []types.ContentItem{{
				Type: "text",
				Text: err.Error(),
			}},
		}, nil
	}

	content := resultToContent(result)

	s.metrics.RecordToolInvocation(req.Name, true, latency)
	s.recordToolMetrics(req.Name, "success", latency)

	if span != nil {
		telemetry.SetSpanAttributes(span, telemetry.NewSpanAttributeBuilder().
			Bool("mcp.tool_success", true).
			Float64("mcp.tool_latency_ms", float64(latency.Nanoseconds())/1000000.0).
			Build()...)
		telemetry.RecordSuccess(span)
	}

	return &types.ToolsCallResult{
		Content: content,
		IsError: false,
	}, nil
}

func (s *Server) handleResourcesList(ctx context.Context) (*types.ResourcesListResult, error) {
	defs := s.registry.Resources()

	resources := make([]types.Resource, 0, len(defs))
	for _, def := range defs {
		resources = append(resources, types.Resource{
			URI:         def.URI,
			Name:        def.Name,
			Description: def.Description,
			MimeType:    def.MimeType,
		})
	}

	return &types.ResourcesListResult{Resources: resources}, nil
}

func (s *Server) handleResourcesRead(ctx context.Context, params interface{}) (*types.ResourcesReadResult, error) {
	start := time.Now()

	var req types.ResourcesReadRequest
	if err := unmarshalParams(params, &req); err != nil {
		return nil, registry.InvalidArgumentf("invalid resources/read params: %v", err)
	}

	def, ok := s.registry.Resource(req.URI)
	if !ok {
		s.metrics.RecordResourceRead(req.URI, false, time.Since(start))
		return nil, registry.NotFoundf("resource not found: %s", req.URI)
	}

	text, cached, err := s.readResourceCached(ctx, req.URI)
	if err != nil {
		s.metrics.RecordResourceRead(req.URI, false, time.Since(start))
		return nil, err
	}
	if cached {
		s.metrics.RecordResourceCacheHit()
	}
	s.metrics.RecordResourceRead(req.URI, true, time.Since(start))

	return &types.ResourcesReadResult{
		Contents: []types.ResourceContent{{
			URI:      req.URI,
			MimeType: def.MimeType,
			Text:     text,
		}},
	}, nil
}

// readResourceCached consults the resource cache before invoking the
// producer. The second return reports a cache hit.
func (s *Server) readResourceCached(ctx context.Context, uri string) (string, bool, error) {
	if s.resourceCache != nil {
		if val, err := s.resourceCache.Get(uri); err == nil {
			if text, ok := val.(string); ok {
				return text, true, nil
			}
		}
	}

	text, err := s.registry.ReadResource(ctx, uri)
	if err != nil {
		return "", false, err
	}

	if s.resourceCache != nil {
		if err := s.resourceCache.Set(uri, text, resourceCacheTTL); err != nil {
			s.logf(features.WARN, "resource cache set failed", map[string]interface{}{
				"uri":   uri,
				"error": err.Error(),
			})
		}
	}

	return text, false, nil
}

func (s *Server) recordRequestMetrics(method string, success bool, latency time.Duration) {
	if s.metricsProvider == nil {
		return
	}

	status := "success"
	if !success {
		status = "error"
	}
	labels := map[string]string{"method": method, "status": status}
	s.metricsProvider.RecordCounter("requests_total", 1, labels)
	s.metricsProvider.RecordHistogram("request_duration_seconds", latency.Seconds(), map[string]string{"method": method})
}

func (s *Server) recordToolMetrics(tool, status string, latency time.Duration) {
	if s.metricsProvider == nil {
		return
	}

	s.metricsProvider.RecordCounter("tool_calls_total", 1, map[string]string{"tool": tool, "status": status})
	s.metricsProvider.RecordHistogram("tool_execution_duration_seconds", latency.Seconds(), map[string]string{"tool": tool})
}

func (s *Server) logf(level features.LogLevel, message string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Log(level, message, fields)
		return
	}
	log.Printf("[%s] %s %v", level.String(), message, fields)
}

func unmarshalParams(params interface{}, target interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func resultToContent(result interface{}) []types.ContentItem {
	if str, ok := result.(string); ok {
		return []types.ContentItem{{
			Type: "text",
			Text: str,
		}}
	}

	if content, ok := result.([]types.ContentItem); ok {
		return content
	}

	// Convert to JSON
	data, _ := json.Marshal(result)
	return []types.ContentItem{{
		Type: "text",
		Text: string(data),
	}}
}
