// Package retrieval finds the FAQ entries most similar to a query.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campushelp/faqrag/internal/domain"
)

// Service embeds a query and searches the vector index.
type Service struct {
	embedder Embedder
	index    Index
	logger   *zap.Logger
}

// New creates a retrieval service.
func New(embedder Embedder, index Index, logger *zap.Logger) *Service {
	return &Service{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Retrieve returns up to k matches for the query, strongest first.
// An empty index yields an empty slice, not an error.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]domain.Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if k <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", k)
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.QueryByVector(ctx, emb.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	s.logger.Debug("retrieval finished",
		zap.Int("requested", k),
		zap.Int("matches", len(matches)))

	return matches, nil
}
