package indexer

import (
	"context"

	"github.com/campushelp/faqrag/internal/domain"
)

// RecordSource reads published FAQ entries from the content store.
type RecordSource interface {
	PublishedRecords(ctx context.Context) ([]domain.Record, error)
	PublishedIDs(ctx context.Context) ([]int64, error)
	RecordsByIDs(ctx context.Context, ids []int64) ([]domain.Record, error)
}

// Index maintains the vector search index.
type Index interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, doc domain.Document) error
	Delete(ctx context.Context, id int64) error
	ListIDs(ctx context.Context) ([]int64, error)
	Refresh(ctx context.Context) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
