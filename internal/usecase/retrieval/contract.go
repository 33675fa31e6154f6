package retrieval

import (
	"context"

	"github.com/campushelp/faqrag/internal/domain"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index answers vector similarity queries.
type Index interface {
	QueryByVector(ctx context.Context, vector []float32, k int) ([]domain.Match, error)
}
