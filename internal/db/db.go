package db

import (
	"context"
	"time"
)

// Store is the search-index database facade. Consumers depend on the
// narrow sub-interfaces, not the facade.
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based document storage.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*SearchResult, error)
}

// IndexFieldType enumerates supported index field types.
type IndexFieldType string

// Index field types.
const (
	IndexFieldText   IndexFieldType = "TEXT"
	IndexFieldTag    IndexFieldType = "TAG"
	IndexFieldVector IndexFieldType = "VECTOR"
)

// VectorAlgo enumerates vector index algorithms.
type VectorAlgo string

// Vector algorithms.
const (
	VectorFlat VectorAlgo = "FLAT"
	VectorHNSW VectorAlgo = "HNSW"
)

// VectorDistance enumerates distance metrics.
type VectorDistance string

// Distance metrics.
const (
	DistanceCosine VectorDistance = "COSINE"
	DistanceL2     VectorDistance = "L2"
)

// IndexField describes one field of an FT index schema.
type IndexField struct {
	Name              string
	Type              IndexFieldType
	VectorDim         int
	VectorAlgo        VectorAlgo
	VectorDistance    VectorDistance
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition describes an FT index to create.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// KNNQuery is a vector similarity query against an FT index.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchEntry is one hit of a search. Score carries the raw metric the
// engine reported (cosine distance for KNN); callers convert it.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is the outcome of a search call. Total is the engine's
// full hit count, which can exceed len(Entries) for paged listings.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
