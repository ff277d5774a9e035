package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// StreamableHTTPTransport implements MCP over Streamable HTTP
type StreamableHTTPTransport struct {
	config   HTTPConfig
	server   *http.Server
	listener net.Listener
	connCh   chan Connection
	done     chan struct{}
	mu       sync.Mutex
	closed   bool
}

// NewStreamableHTTPTransport creates a new Streamable HTTP transport
func NewStreamableHTTPTransport(config HTTPConfig) *StreamableHTTPTransport {
	if config.Host == "" {
		config.Host = "0.0.0.0"
	}
	if config.Port == 0 {
		config.Port = 8000
	}
	if config.Path == "" {
		config.Path = "/mcp"
	}
	if config.HealthPath == "" {
		config.HealthPath = "/health"
	}

	return &StreamableHTTPTransport{
		config: config,
		connCh: make(chan Connection, 10),
		done:   make(chan struct{}),
	}
}

func (t *StreamableHTTPTransport) Listen() error {
	mux := http.NewServeMux()

	// Single endpoint for streamable HTTP
	mux.HandleFunc(t.config.Path, t.handleStreamableHTTP)
	mux.HandleFunc(t.config.HealthPath, handleHealth)

	if t.config.Metrics != nil {
		mux.Handle("/metrics", t.config.Metrics)
	}

	// CORS preflight
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	})

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
			log.Printf("Streamable HTTP server error: %v", err)
		}
	}()

	return nil
}

func (t *StreamableHTTPTransport) Accept() (Connection, error) {
	select {
	case conn := <-t.connCh:
		return conn, nil
	case <-t.done:
		return nil, ErrClosed
	}
}

func (t *StreamableHTTPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true
	close(t.done)

	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}

	return nil
}

func (t *StreamableHTTPTransport) Type() string {
	return TransportStreamableHTTP
}

// Addr returns the bound listen address, useful when Port was 0.
func (t *StreamableHTTPTransport) Addr() string {
	if t.listener != nil {
		return t.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", t.config.Host, t.config.Port)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (t *StreamableHTTPTransport) handleStreamableHTTP(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Check if this is a streaming request
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/plain") {
		// Streaming mode
		t.handleStreamingRequest(w, r)
	} else {
		// Single request mode
		t.handleSingleRequest(w, r)
	}
}

func (t *StreamableHTTPTransport) handleStreamingRequest(w http.ResponseWriter, r *http.Request) {
	// Set streaming headers
	w.Header().Set("Content-Type", "text/plain")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Create streaming connection
	conn := &StreamableHTTPConnection{
		reader:   bufio.NewReader(r.Body),
		writer:   w,
		flusher:  flusher,
		ctx:      r.Context(),
		isStream: true,
	}

	// Send connection to Accept()
	select {
	case t.connCh <- conn:
		// Connection accepted, keep processing
		<-conn.ctx.Done()
	case <-t.done:
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
	}
}

func (t *StreamableHTTPTransport) handleSingleRequest(w http.ResponseWriter, r *http.Request) {
	// Read entire request body
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Error reading request", http.StatusBadRequest)
		return
	}

	// Create single-request connection
	conn := &StreamableHTTPConnection{
		requestData: body,
		writer:      w,
		ctx:         r.Context(),
		isStream:    false,
		response:    make(chan []byte, 1),
	}

	// Send connection to Accept()
	select {
	case t.connCh <- conn:
		// Wait for response
		select {
		case response := <-conn.response:
			w.Header().Set("Content-Type", "application/json")
			w.Write(response)
		case <-time.After(30 * time.Second):
			http.Error(w, "Request timeout", http.StatusRequestTimeout)
		case <-r.Context().Done():
			http.Error(w, "Request cancelled", http.StatusRequestTimeout)
		}
	case <-t.done:
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
	}
}

// StreamableHTTPConnection represents a streamable HTTP connection
type StreamableHTTPConnection struct {
	reader      *bufio.Reader
	writer      http.ResponseWriter
	flusher     http.Flusher
	ctx         context.Context
	requestData []byte
	response    chan []byte
	isStream    bool
	readPos     int
	mu          sync.Mutex
}

func (c *StreamableHTTPConnection) Read() ([]byte, error) {
	if c.isStream {
		// Read from streaming body
		if c.reader == nil {
			return nil, io.EOF
		}

		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(line) > 0 {
				return trimLineEnding(line), nil
			}
			return nil, err
		}

		return trimLineEnding(line), nil
	}

	// Return single request data
	if c.readPos >= len(c.requestData) {
		return nil, io.EOF
	}

	data := c.requestData[c.readPos:]
	c.readPos = len(c.requestData)
	return data, nil
}

func (c *StreamableHTTPConnection) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isStream {
		// Write to streaming response
		_, err := c.writer.Write(append(data, '\n'))
		if err != nil {
			return err
		}

		if c.flusher != nil {
			c.flusher.Flush()
		}

		return nil
	}

	// Send single response
	select {
	case c.response <- data:
		return nil
	default:
		return fmt.Errorf("response channel full")
	}
}

func (c *StreamableHTTPConnection) Close() error {
	return nil
}

func (c *StreamableHTTPConnection) Context() context.Context {
	return c.ctx
}

func (c *StreamableHTTPConnection) RemoteAddr() string {
	return "http-client"
}
