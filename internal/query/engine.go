// Package query answers similarity queries over the store.
package query

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/hyperjump/toshokan/internal/models"
	"github.com/hyperjump/toshokan/internal/store"
)

// Searcher is the slice of the store the engine needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]store.ScoredChunk, error)
}

// Engine retrieves the top-k chunks for a query.
type Engine struct {
	store  Searcher
	topK   int
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine returning topK results per query.
func NewEngine(s Searcher, topK int, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		topK:   topK,
		logger: zap.NewNop(),
	}
	if e.topK <= 0 {
		e.topK = 4
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query returns the most similar chunks, best first. store.ErrNoIndex
// propagates unchanged when nothing has been indexed yet.
func (e *Engine) Query(ctx context.Context, text string) ([]models.QueryResult, error) {
	hits, err := e.store.Search(ctx, text, e.topK)
	if err != nil {
		return nil, err
	}

	results := make([]models.QueryResult, 0, len(hits))
	for _, hit := range hits {
		page := "N/A"
		if hit.Meta.Page > 0 {
			page = strconv.Itoa(hit.Meta.Page)
		}
		results = append(results, models.QueryResult{
			Source:  hit.Meta.Source,
			Page:    page,
			Content: hit.Content,
		})
	}

	e.logger.Debug("query answered",
		zap.String("query", text),
		zap.Int("results", len(results)))
	return results, nil
}
