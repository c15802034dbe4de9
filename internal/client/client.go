package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/toshokan/internal/extract"
	"github.com/hyperjump/toshokan/internal/models"
)

// Client exposes the knowledge-base operations over a Router.
type Client struct {
	router      *Router
	registry    *extract.Registry
	maxFileSize int64
	logger      *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the logger.
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client. maxFileSize bounds uploads in bytes; files are
// validated locally before any bytes go over the wire.
func NewClient(router *Router, maxFileSize int64, opts ...ClientOption) *Client {
	c := &Client{
		router:      router,
		registry:    extract.NewRegistry(),
		maxFileSize: maxFileSize,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddDocument uploads the file at path for indexing.
func (c *Client) AddDocument(ctx context.Context, path string) (*models.AddDocumentResponse, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	if !c.registry.Supports(ext) {
		return nil, fmt.Errorf("unsupported file format %q, supported: %s",
			ext, strings.Join(c.registry.Supported(), ", "))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if c.maxFileSize > 0 && info.Size() > c.maxFileSize {
		return nil, fmt.Errorf("file %s is too large (%d bytes, limit %d)", name, info.Size(), c.maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	req := models.AddDocumentRequest{
		Filename:      name,
		ContentBase64: base64.StdEncoding.EncodeToString(content),
	}
	var resp models.AddDocumentResponse
	if err := c.router.Dispatch(ctx, http.MethodPost, "/documents", req, &resp); err != nil {
		return nil, err
	}
	c.logger.Info("document uploaded",
		zap.String("filename", name),
		zap.Int("chunks", resp.ChunksAdded))
	return &resp, nil
}

// Query asks the knowledge base a question.
func (c *Client) Query(ctx context.Context, text string) (*models.QueryResponse, error) {
	var resp models.QueryResponse
	err := c.router.Dispatch(ctx, http.MethodPost, "/query", models.QueryRequest{Query: text}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListDocuments returns the indexed sources.
func (c *Client) ListDocuments(ctx context.Context) (*models.ListDocumentsResponse, error) {
	var resp models.ListDocumentsResponse
	if err := c.router.Dispatch(ctx, http.MethodGet, "/documents", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks the sticky server.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var resp models.HealthResponse
	if err := c.router.Dispatch(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
