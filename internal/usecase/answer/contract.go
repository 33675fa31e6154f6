package answer

import (
	"context"

	"github.com/campushelp/faqrag/internal/domain"
)

// Retriever finds ranked FAQ matches for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.Match, error)
}

// Synthesizer turns a system and user prompt pair into raw completion
// text. Classifying and parsing that text belongs to this package.
type Synthesizer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
