package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/toshokan/internal/models"
)

const probeTimeout = 5 * time.Second

// Router dispatches requests across the server pool. It remembers the last
// server that answered and tries it first on the next request. Failover
// happens only on connection-level failures: a timeout or HTTP error means
// the server is alive and retrying elsewhere could duplicate work.
type Router struct {
	servers []ServerDescriptor
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	current int
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) RouterOption {
	return func(r *Router) { r.http = c }
}

// NewRouter creates a router over servers. timeout bounds each attempt.
func NewRouter(servers []ServerDescriptor, timeout time.Duration, opts ...RouterOption) (*Router, error) {
	if len(servers) == 0 {
		return nil, fmt.Errorf("no servers configured")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	r := &Router{
		servers: servers,
		http:    &http.Client{},
		timeout: timeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Current returns the sticky server.
func (r *Router) Current() ServerDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.servers[r.current]
}

// Servers returns the pool.
func (r *Router) Servers() []ServerDescriptor {
	return r.servers
}

// Dispatch sends one request, starting at the sticky server and advancing
// through the pool on connection failures. payload is JSON-encoded when
// non-nil; the response body is decoded into out when non-nil.
func (r *Router) Dispatch(ctx context.Context, method, endpoint string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	r.mu.Lock()
	start := r.current
	r.mu.Unlock()

	var tried []string
	for attempt := 0; attempt < len(r.servers); attempt++ {
		idx := (start + attempt) % len(r.servers)
		server := r.servers[idx]

		data, err := r.send(ctx, server, method, endpoint, body)
		if err == nil {
			// The server answered, so it becomes sticky even if its body
			// turns out to be undecodable.
			r.mu.Lock()
			if r.current != idx {
				r.logger.Info("switched to server", zap.String("server", server.Addr()))
				r.current = idx
			}
			r.mu.Unlock()
			if out != nil {
				if err := json.Unmarshal(data, out); err != nil {
					return fmt.Errorf("failed to decode response from %s: %w", server.Addr(), err)
				}
			}
			return nil
		}

		var unreachable *UnreachableError
		if errors.As(err, &unreachable) {
			r.logger.Warn("server unreachable, trying next",
				zap.String("server", server.Addr()))
			tried = append(tried, server.Addr())
			continue
		}
		// Timeouts and HTTP errors stop the dispatch: the server got the
		// request, so retrying elsewhere is not safe.
		return err
	}
	return &AllUnreachableError{Servers: tried}
}

// send performs one attempt against one server and returns the raw
// response body of a successful status.
func (r *Router) send(ctx context.Context, server ServerDescriptor, method, endpoint string, body []byte) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, server.URL()+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Server: server.Addr(), Timeout: r.timeout}
		}
		return nil, &UnreachableError{Server: server.Addr(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Server: server.Addr(), Timeout: r.timeout}
		}
		return nil, fmt.Errorf("failed to read response from %s: %w", server.Addr(), err)
	}

	if resp.StatusCode >= 400 {
		return nil, &ServerError{
			Server:     server.Addr(),
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(data, resp.StatusCode),
		}
	}
	return data, nil
}

// Probe checks each server's health once and points sticky at the first
// healthy one. Sticky stays where it is when none answer.
func (r *Router) Probe(ctx context.Context) {
	for idx, server := range r.servers {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		data, err := r.send(probeCtx, server, http.MethodGet, "/health", nil)
		cancel()
		if err == nil {
			var health models.HealthResponse
			err = json.Unmarshal(data, &health)
		}
		if err != nil {
			r.logger.Debug("health probe failed",
				zap.String("server", server.Addr()), zap.Error(err))
			continue
		}
		r.mu.Lock()
		r.current = idx
		r.mu.Unlock()
		r.logger.Info("selected healthy server", zap.String("server", server.Addr()))
		return
	}
	r.logger.Warn("no healthy servers found")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}

func errorDetail(body []byte, status int) string {
	var er models.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Detail != "" {
		return er.Detail
	}
	if len(body) > 0 {
		return string(body)
	}
	return http.StatusText(status)
}
