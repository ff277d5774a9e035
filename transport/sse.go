package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// SSETransport implements MCP over Server-Sent Events
type SSETransport struct {
	config   HTTPConfig
	server   *http.Server
	listener net.Listener
	connCh   chan Connection
	done     chan struct{}
	mu       sync.Mutex
	closed   bool

	sessions  map[string]*SSEConnection
	sessionMu sync.RWMutex
}

// NewSSETransport creates a new SSE transport
func NewSSETransport(config HTTPConfig) *SSETransport {
	if config.Host == "" {
		config.Host = "0.0.0.0"
	}
	if config.Port == 0 {
		config.Port = 8000
	}
	if config.Path == "" {
		config.Path = "/sse"
	}
	if config.HealthPath == "" {
		config.HealthPath = "/health"
	}

	return &SSETransport{
		config:   config,
		connCh:   make(chan Connection, 10),
		done:     make(chan struct{}),
		sessions: make(map[string]*SSEConnection),
	}
}

func (t *SSETransport) Listen() error {
	mux := http.NewServeMux()

	// SSE endpoint for client connections
	mux.HandleFunc(t.config.Path, t.handleSSE)

	// Message endpoint for client requests
	mux.HandleFunc(t.config.Path+"/message", t.handleMessage)

	mux.HandleFunc(t.config.HealthPath, handleHealth)

	if t.config.Metrics != nil {
		mux.Handle("/metrics", t.config.Metrics)
	}

	t.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", t.config.Host, t.config.Port),
		Handler: mux,
	}

	var err error
	t.listener, err = net.Listen("tcp", t.server.Addr)
	if err != nil {
		return err
	}

	go func() {
		if err := t.server.Serve(t.listener); err != nil && err != http.ErrServerClosed {
			log.Printf("SSE server error: %v", err)
		}
	}()

	return nil
}

func (t *SSETransport) Accept() (Connection, error) {
	select {
	case conn := <-t.connCh:
		return conn, nil
	case <-t.done:
		return nil, ErrClosed
	}
}

func (t *SSETransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true
	close(t.done)

	t.sessionMu.Lock()
	for _, conn := range t.sessions {
		conn.Close()
	}
	t.sessions = make(map[string]*SSEConnection)
	t.sessionMu.Unlock()

	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}

	return nil
}

func (t *SSETransport) Type() string {
	return TransportSSE
}

func (t *SSETransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Create SSE connection
	conn := &SSEConnection{
		writer:   w,
		flusher:  flusher,
		ctx:      r.Context(),
		requests: make(chan []byte, 100),
		done:     make(chan struct{}),
	}

	sessionID := sessionIDFrom(r)
	t.sessionMu.Lock()
	t.sessions[sessionID] = conn
	t.sessionMu.Unlock()

	defer func() {
		t.sessionMu.Lock()
		delete(t.sessions, sessionID)
		t.sessionMu.Unlock()
	}()

	// Send connection to Accept()
	select {
	case t.connCh <- conn:
	case <-t.done:
		return
	}

	// Keep connection alive
	select {
	case <-conn.done:
	case <-r.Context().Done():
	}
}

func (t *SSETransport) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Get connection for this session
	t.sessionMu.RLock()
	conn := t.sessions[sessionIDFrom(r)]
	t.sessionMu.RUnlock()
	if conn == nil {
		http.Error(w, "No SSE connection found", http.StatusBadRequest)
		return
	}

	// Read request body
	var requestData json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// Send to connection for processing
	select {
	case conn.requests <- requestData:
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "Request queue full", http.StatusServiceUnavailable)
	}
}

func sessionIDFrom(r *http.Request) string {
	if id := r.Header.Get("X-Session-ID"); id != "" {
		return id
	}
	return r.RemoteAddr
}

// SSEConnection represents an SSE connection
type SSEConnection struct {
	writer   http.ResponseWriter
	flusher  http.Flusher
	ctx      context.Context
	requests chan []byte
	done     chan struct{}
	closed   bool
	mu       sync.Mutex
}

func (c *SSEConnection) Read() ([]byte, error) {
	select {
	case data := <-c.requests:
		return data, nil
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	case <-c.done:
		return nil, fmt.Errorf("connection closed")
	}
}

func (c *SSEConnection) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("connection closed")
	}

	// Format as SSE event
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if _, err := fmt.Fprintf(c.writer, "data: %s\n", line); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(c.writer, "\n"); err != nil {
		return err
	}

	c.flusher.Flush()
	return nil
}

func (c *SSEConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
	}

	return nil
}

func (c *SSEConnection) Context() context.Context {
	return c.ctx
}

func (c *SSEConnection) RemoteAddr() string {
	return "sse-client"
}
