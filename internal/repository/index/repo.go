// Package index maintains the vector search index over RediSearch.
package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/campushelp/faqrag/internal/db"
	"github.com/campushelp/faqrag/internal/db/redis"
	"github.com/campushelp/faqrag/internal/domain"
)

// store is the consumer interface for the index repository (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Config holds index naming and shape settings.
type Config struct {
	Name         string
	KeyPrefix    string
	Dimensions   int
	ListPageSize int
}

// Repo implements the vector index over a RediSearch store.
type Repo struct {
	store store
	cfg   Config
}

// New creates an index repository.
func New(s store, cfg Config) *Repo {
	if cfg.ListPageSize <= 0 {
		cfg.ListPageSize = 1000
	}
	return &Repo{store: s, cfg: cfg}
}

// EnsureSchema creates the FT index if it does not exist yet.
// Safe to call repeatedly.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.cfg.Name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.cfg.Name, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     r.cfg.Name,
		Prefixes: []string{r.cfg.KeyPrefix},
		Fields: []db.IndexField{
			{Name: "question", Type: db.IndexFieldText},
			{Name: "answer", Type: db.IndexFieldText},
			{Name: "category", Type: db.IndexFieldTag},
			{Name: "language", Type: db.IndexFieldTag},
			{Name: "schools", Type: db.IndexFieldTag},
			{
				Name:           "embedding",
				Type:           db.IndexFieldVector,
				VectorDim:      r.cfg.Dimensions,
				VectorAlgo:     db.VectorFlat,
				VectorDistance: db.DistanceCosine,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// Another instance can win the race between the existence
		// check and the create.
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.cfg.Name, err)
	}
	return nil
}

// Upsert writes a document into the index keyspace.
func (r *Repo) Upsert(ctx context.Context, doc domain.Document) error {
	key := r.docKey(doc.ID)
	fields := map[string]string{
		"id":        strconv.FormatInt(doc.ID, 10),
		"question":  doc.Question,
		"answer":    doc.Answer,
		"category":  doc.Category,
		"language":  doc.Language,
		"schools":   doc.Schools,
		"embedding": redis.VectorToBytes(doc.Embedding),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("upsert document %d: %w", doc.ID, err)
	}
	return nil
}

// Delete removes a document from the index keyspace.
// Deleting an absent document is not an error.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	if err := r.store.Del(ctx, r.docKey(id)); err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	return nil
}

// Refresh makes indexed documents visible to search. RediSearch indexes
// hash writes synchronously, so there is nothing to flush; the hook
// exists for backends with a refresh cycle.
func (r *Repo) Refresh(_ context.Context) error {
	return nil
}

// ListIDs returns the IDs of every indexed document, paging through the
// full keyspace so the result is complete regardless of index size.
func (r *Repo) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	offset := 0

	for {
		result, err := r.store.SearchList(ctx, r.cfg.Name, "*", offset, r.cfg.ListPageSize, nil)
		if err != nil {
			return nil, fmt.Errorf("list index ids at offset %d: %w", offset, err)
		}
		if result == nil || len(result.Entries) == 0 {
			break
		}

		for _, entry := range result.Entries {
			id, err := r.idFromKey(entry.Key)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}

		offset += len(result.Entries)
		if offset >= result.Total {
			break
		}
	}

	return ids, nil
}

// QueryByVector runs a KNN search and maps hits to matches.
// Scores are cosine similarity shifted into [0, 2].
func (r *Repo) QueryByVector(ctx context.Context, vector []float32, k int) ([]domain.Match, error) {
	q := &db.KNNQuery{
		IndexName:    r.cfg.Name,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"question", "answer", "language"},
	}

	result, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	matches := make([]domain.Match, 0, len(result.Entries))
	for _, entry := range result.Entries {
		id, err := r.idFromKey(entry.Key)
		if err != nil {
			return nil, err
		}
		matches = append(matches, domain.Match{
			ID:       id,
			Question: entry.Fields["question"],
			Answer:   entry.Fields["answer"],
			Language: entry.Fields["language"],
			Score:    scoreFromDistance(entry.Score),
		})
	}
	return matches, nil
}

// scoreFromDistance converts a cosine distance into cosine similarity
// plus one, clamped to [0, 2].
func scoreFromDistance(distance float64) float64 {
	score := 2.0 - distance
	if score < 0 {
		return 0
	}
	if score > 2 {
		return 2
	}
	return score
}

func (r *Repo) docKey(id int64) string {
	return r.cfg.KeyPrefix + strconv.FormatInt(id, 10)
}

func (r *Repo) idFromKey(key string) (int64, error) {
	raw := strings.TrimPrefix(key, r.cfg.KeyPrefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected index key %q: %w", key, err)
	}
	return id, nil
}
